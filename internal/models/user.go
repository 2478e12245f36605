package models

import (
	"time"

	"github.com/google/uuid"
)

// User statuses.
const (
	StatusFan      = "fan"
	StatusEmployee = "employee"
)

// User represents an account created through phone activation. Username is
// the phone number at signup time and never changes afterwards.
type User struct {
	BaseModel
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	FullName     string     `json:"full_name"`
	AvatarURL    string     `json:"avatar_url"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	BirthDate    *time.Time `json:"birth_date"`
	Status       string     `gorm:"default:fan" json:"status"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"-"`
	IsAdmin      bool       `json:"-"`
	IsRegistered bool       `json:"is_registered"`
	PasswordHash string     `json:"-"`

	// KeyVersion is compared against the key_version claim of every token.
	// Incrementing it invalidates all previously issued tokens.
	KeyVersion int `gorm:"default:1" json:"-"`

	Companies []UserCompany `json:"-"`
}

// UserQRCode holds the opaque identifier a user presents for discount lookup.
type UserQRCode struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User   *User     `json:"-"`
	Code   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"code"`
}
