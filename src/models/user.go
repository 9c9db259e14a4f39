package models

import (
	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"default:'user'" json:"role,omitempty"`

	Listings []Listing `gorm:"foreignKey:HostID" json:"listings,omitempty"`
	Bookings []Booking `gorm:"foreignKey:GuestID" json:"bookings,omitempty"`

	types.Timestamps
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
