package domain

import (
	"time" // Timestamps

	"gorm.io/gorm" // GORM ORM library
)

// Room statuses
const (
	RoomVacant      = "vacant"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// RoomStatuses lists the accepted room statuses.
var RoomStatuses = []string{RoomVacant, RoomOccupied, RoomMaintenance}

// Room Model
type Room struct {
	ID            uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	PropertyID    uint       `gorm:"index;not null" json:"propertyId"`              // Parent property
	RoomNumber    string     `gorm:"size:32;not null" json:"roomNumber"`            // Unit label
	Type          string     `gorm:"size:50" json:"type"`                           // Bedroom, studio, office...
	Size          float64    `json:"size"`                                          // Area in square meters
	Rent          float64    `gorm:"not null;default:0" json:"rent"`                // Monthly rent
	Status        string     `gorm:"size:20;not null;default:vacant" json:"status"` // One of RoomStatuses
	Tenant        *string    `gorm:"size:100" json:"tenant"`                        // Tenant name
	TenantContact *string    `gorm:"size:100" json:"tenantContact"`                 // Tenant phone or email
	RentDueDate   *time.Time `json:"rentDueDate"`                                   // Next rent due date
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ClearTenantIfVacant drops tenant data from a vacant room
func (r *Room) ClearTenantIfVacant() {
	if r.Status == RoomVacant {
		r.Tenant = nil
		r.TenantContact = nil
		r.RentDueDate = nil
	}
}

// BeforeSave keeps vacant rooms free of tenant data on every write path
func (r *Room) BeforeSave(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = RoomVacant
	}
	r.ClearTenantIfVacant()
	return nil
}
