package domain

import (
	"strings" // String manipulation
	"time"    // Timestamps

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// BcryptCost is the cost used when hashing passwords.
var BcryptCost = bcrypt.DefaultCost

// User Model (landlord account)
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	Name             string     `gorm:"size:100;not null" json:"name"`                 // Display name
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`    // Login key, stored lower-cased
	Password         string     `gorm:"not null" json:"-"`                             // Hashed password
	Phone            string     `gorm:"size:32" json:"phone"`                          // Contact phone
	Address          string     `gorm:"size:255" json:"address"`                       // Postal address
	ProfileImage     string     `gorm:"size:512" json:"profileImage"`                  // Avatar URL
	ResetToken       *string    `gorm:"size:64;index" json:"-"`                        // Password reset token
	ResetTokenExpiry *time.Time `json:"-"`                                             // Reset token expiry
	Properties       []Property `gorm:"foreignKey:UserID" json:"properties,omitempty"` // Owned properties
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// BeforeSave normalizes the email
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// SetPassword replaces the stored hash with a hash of plain
func (u *User) SetPassword(plain string) error {
	hashed, err := hashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// CheckPassword compares a plain password with the stored hash
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// Participant returns the messaging reference for this user
func (u *User) Participant() Participant { return UserParticipant(u.ID) }

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword always hashes; callers pass only plain passwords received from clients.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
