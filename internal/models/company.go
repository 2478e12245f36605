package models

import (
	"github.com/google/uuid"
)

// Company is an employer participating in the discount program.
type Company struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	LogoPath    string `json:"logo_path"`

	Discounts []CompanyDiscount `json:"discounts,omitempty"`
	Users     []UserCompany     `json:"-"`
}

// CompanyDiscount is a single discount entry offered by a company, expressed
// either as a percentage or as a flat amount.
type CompanyDiscount struct {
	BaseModel
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"uuid"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null" json:"company_id"`
	Company     *Company  `json:"-"`
	Percent     int       `json:"percent"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
}

// Zero reports whether the discount carries no value and should be skipped
// during lookup.
func (d *CompanyDiscount) Zero() bool {
	return d.Percent == 0 && d.Amount == 0
}

// UserCompany links an employee to a company and the discounts granted
// through that employment. IsEmployer marks the employer-side contact shown
// on the lookup page.
type UserCompany struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User       *User      `json:"-"`
	CompanyID  *uuid.UUID `gorm:"type:uuid" json:"company_id"`
	Company    *Company   `json:"-"`
	IsEmployer bool       `json:"is_employer"`
	Position   string     `json:"position"`

	Discounts []CompanyDiscount `gorm:"many2many:user_company_discounts" json:"discounts,omitempty"`
}

// FanDiscount groups discounts available to every non-employee user.
type FanDiscount struct {
	BaseModel
	Description string `json:"description"`

	Discounts []CompanyDiscount `gorm:"many2many:fan_discount_items" json:"discounts,omitempty"`
}
