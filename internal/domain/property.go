package domain

import (
	"time" // Timestamps

	"gorm.io/datatypes" // JSON column types
)

// Property types
const (
	PropertyApartment  = "apartment"
	PropertyHouse      = "house"
	PropertyCondo      = "condo"
	PropertyCommercial = "commercial"
	PropertyOther      = "other"
)

// PropertyTypes lists the accepted property types.
var PropertyTypes = []string{PropertyApartment, PropertyHouse, PropertyCondo, PropertyCommercial, PropertyOther}

// Property Model
type Property struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`                                    // Primary key
	UserID             uint                        `gorm:"index;not null" json:"userId"`                            // Owner
	EmployeeID         *uint                       `gorm:"index" json:"employeeId"`                                 // Assigned manager, optional
	Employee           *Employee                   `gorm:"constraint:OnDelete:SET NULL;" json:"employee,omitempty"` // Assigned manager row
	Name               string                      `gorm:"size:150;not null" json:"name"`                           // Display name
	Address            string                      `gorm:"size:255;not null" json:"address"`                        // Street address
	City               string                      `gorm:"size:100" json:"city"`                                    // City
	State              string                      `gorm:"size:100" json:"state"`                                   // State or region
	ZipCode            string                      `gorm:"size:20" json:"zipCode"`                                  // Postal code
	Type               string                      `gorm:"size:32;not null" json:"type"`                            // One of PropertyTypes
	Description        string                      `gorm:"type:text" json:"description"`                            // Free text
	Images             datatypes.JSONSlice[string] `json:"images"`                                                  // 1 to 10 image URLs
	Rooms              []Room                      `gorm:"constraint:OnDelete:CASCADE;" json:"rooms,omitempty"`
	MaintenanceRecords []MaintenanceRecord         `gorm:"constraint:OnDelete:CASCADE;" json:"maintenanceRecords,omitempty"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}
