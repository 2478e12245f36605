package models

import (
	"time"

	"github.com/google/uuid"
)

// Activation types. Only login is used today.
const (
	ActivationLogin = "login"
)

// Activation is a one-time authentication challenge for a phone number.
// Records are never deleted; a consumed activation stays around with
// IsActive=false as an audit trail.
type Activation struct {
	BaseModel
	UserID         *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	User           *User      `json:"-"`
	Phone          string     `gorm:"index" json:"phone"`
	Code           string     `json:"-"`
	EndTime        time.Time  `json:"end_time"`
	ActivationType string     `gorm:"default:login" json:"activation_type"`
	IsActive       bool       `json:"is_active"`
	Iteration      int        `json:"iteration"`
}

// Expired reports whether the activation is past its validity window.
func (a *Activation) Expired(now time.Time) bool {
	return a.EndTime.Before(now)
}
