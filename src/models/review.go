package models

import (
	"time"

	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID          `gorm:"type:uuid;index:idx_reviews_booking_reviewer,unique" json:"booking_id"`
	ReviewerID uuid.UUID          `gorm:"type:uuid;index:idx_reviews_booking_reviewer,unique" json:"reviewer_id"`
	ListingID  uuid.UUID          `gorm:"type:uuid;index" json:"listing_id"`
	RevieweeID uuid.UUID          `gorm:"type:uuid" json:"reviewee_id"`
	Rating     int                `json:"rating,omitempty"`
	Comment    string             `json:"comment,omitempty"`
	Status     types.ReviewStatus `gorm:"default:'active'" json:"status,omitempty"`
	FlagReason string             `json:"flag_reason,omitempty"`
	FlaggedBy  *uuid.UUID         `gorm:"type:uuid" json:"flagged_by,omitempty"`
	FlaggedAt  *time.Time         `json:"flagged_at,omitempty"`

	Booking  *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Reviewer *User    `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`

	types.Timestamps
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
