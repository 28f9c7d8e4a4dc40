package domain

import (
	"time" // Timestamps

	"golang.org/x/crypto/bcrypt" // Password comparison
	"gorm.io/gorm"               // GORM ORM library
)

// Employee Model (staff account managed by a User)
type Employee struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	ManagerID    uint      `gorm:"index;not null" json:"managerId"`            // Managing user
	Manager      *User     `gorm:"foreignKey:ManagerID" json:"-"`              // Managing user row
	Name         string    `gorm:"size:100;not null" json:"name"`              // Display name
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Login key, stored lower-cased
	Password     string    `gorm:"not null" json:"-"`                          // Hashed password
	Phone        string    `gorm:"size:32" json:"phone"`                       // Contact phone
	Position     string    `gorm:"size:100" json:"position"`                   // Job title
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`      // Disabled accounts cannot log in
	HireDate     time.Time `json:"hireDate"`                                   // Hire date
	ProfileImage string    `gorm:"size:512" json:"profileImage"`               // Avatar URL
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeSave normalizes the email and defaults the hire date
func (e *Employee) BeforeSave(tx *gorm.DB) error {
	e.Email = NormalizeEmail(e.Email)
	if e.HireDate.IsZero() {
		e.HireDate = time.Now().UTC()
	}
	return nil
}

// SetPassword replaces the stored hash with a hash of plain
func (e *Employee) SetPassword(plain string) error {
	hashed, err := hashPassword(plain)
	if err != nil {
		return err
	}
	e.Password = hashed
	return nil
}

// CheckPassword compares a plain password with the stored hash
func (e *Employee) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(e.Password), []byte(plain)) == nil
}

// Participant returns the messaging reference for this employee
func (e *Employee) Participant() Participant { return EmployeeParticipant(e.ID) }
