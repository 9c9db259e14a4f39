package models

import (
	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	HostID        uuid.UUID           `gorm:"type:uuid;index" json:"host_id"`
	Title         string              `json:"title,omitempty"`
	Slug          string              `gorm:"index" json:"slug,omitempty"`
	City          string              `json:"city,omitempty"`
	Country       string              `json:"country,omitempty"`
	PricePerNight float64             `json:"price_per_night,omitempty"`
	MaxGuests     int                 `json:"max_guests,omitempty"`
	Status        types.ListingStatus `gorm:"default:'active'" json:"status,omitempty"`

	Host     *User     `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Bookings []Booking `gorm:"foreignKey:ListingID" json:"bookings,omitempty"`

	types.Timestamps
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
