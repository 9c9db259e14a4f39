package models

import (
	"time"

	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID     uuid.UUID           `gorm:"type:uuid;index" json:"listing_id"`
	GuestID       uuid.UUID           `gorm:"type:uuid;index" json:"guest_id"`
	CheckIn       time.Time           `json:"check_in"`
	CheckOut      time.Time           `json:"check_out"`
	NumGuests     int                 `json:"num_guests,omitempty"`
	Status        types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	PaymentStatus types.PaymentStatus `gorm:"default:'unpaid'" json:"payment_status,omitempty"`
	TotalPrice    float64             `json:"total_price"`
	RefundAmount  float64             `gorm:"default:0" json:"refund_amount"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Guest   *User    `gorm:"foreignKey:GuestID" json:"guest,omitempty"`

	types.Timestamps
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
