package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is embedded in the users table with an address_ column prefix.
type Address struct {
	Country  string `json:"country" gorm:"size:100" validate:"required"`
	City     string `json:"city" gorm:"size:100" validate:"required"`
	Street   string `json:"street" gorm:"size:255" validate:"required"`
	Building int    `json:"building" validate:"required"`
}

// User is an account that can log in. IsAdmin is re-read from the store on every
// privileged request and never cached in sessions or tokens.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string    `json:"phone" gorm:"size:20;not null"`
	Address      Address   `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
