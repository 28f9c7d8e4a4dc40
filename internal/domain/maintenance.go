package domain

import (
	"time" // Timestamps

	"gorm.io/gorm" // GORM ORM library
)

// Maintenance statuses
const (
	MaintenancePending    = "pending"
	MaintenanceInProgress = "in-progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

// MaintenanceStatuses lists the accepted maintenance statuses.
var MaintenanceStatuses = []string{MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled}

// MaintenancePriorities lists the accepted priorities.
var MaintenancePriorities = []string{"low", "medium", "high", "urgent"}

// MaintenanceRecord Model
type MaintenanceRecord struct {
	ID            uint       `gorm:"primaryKey" json:"id"`             // Primary key
	PropertyID    uint       `gorm:"index;not null" json:"propertyId"` // Parent property
	RoomID        *uint      `gorm:"index" json:"roomId"`              // Optional room
	Room          *Room      `gorm:"constraint:OnDelete:SET NULL;" json:"room,omitempty"`
	Title         string     `gorm:"size:150;not null" json:"title"`                  // Short summary
	Description   string     `gorm:"type:text" json:"description"`                    // Details
	Status        string     `gorm:"size:20;not null;default:pending" json:"status"`  // One of MaintenanceStatuses
	Priority      string     `gorm:"size:20;not null;default:medium" json:"priority"` // One of MaintenancePriorities
	Cost          float64    `gorm:"not null;default:0" json:"cost"`                  // Estimated or final cost
	ScheduledDate *time.Time `json:"scheduledDate"`                                   // Planned date
	CompletedDate *time.Time `json:"completedDate"`                                   // Set when completed
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BeforeSave stamps or clears the completion date based on the status
func (m *MaintenanceRecord) BeforeSave(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = MaintenancePending
	}
	if m.Priority == "" {
		m.Priority = "medium"
	}
	if m.Status == MaintenanceCompleted {
		if m.CompletedDate == nil {
			now := time.Now().UTC()
			m.CompletedDate = &now
		}
	} else {
		m.CompletedDate = nil
	}
	return nil
}
