package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

// Actor is the authenticated caller as resolved by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

type BookingStatus string

const (
	BOOKING_PENDING                BookingStatus = "pending"
	BOOKING_CONFIRMED              BookingStatus = "confirmed"
	BOOKING_CANCELLATION_REQUESTED BookingStatus = "cancellation_requested"
	BOOKING_CANCELED               BookingStatus = "cancelled"
	BOOKING_COMPLETED              BookingStatus = "completed"
)

type PaymentStatus string

const (
	PAYMENT_UNPAID   PaymentStatus = "unpaid"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

type ListingStatus string

const (
	LISTING_ACTIVE   ListingStatus = "active"
	LISTING_INACTIVE ListingStatus = "inactive"
)

type ReviewStatus string

const (
	REVIEW_ACTIVE  ReviewStatus = "active"
	REVIEW_FLAGGED ReviewStatus = "flagged"
	REVIEW_REMOVED ReviewStatus = "removed"
)

type RefundType string

const (
	REFUND_FULL    RefundType = "full"
	REFUND_PARTIAL RefundType = "partial"
	REFUND_NONE    RefundType = "none"
)

type Refund struct {
	Amount float64    `json:"amount"`
	Type   RefundType `json:"type"`
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateListingRequestBody struct {
	Title         string  `json:"title" binding:"required"`
	City          string  `json:"city" binding:"required"`
	Country       string  `json:"country" binding:"required"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
	MaxGuests     int     `json:"max_guests" binding:"required,min=1"`
}

type UpdateListingStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type CreateBookingRequestBody struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
	CheckIn   string `json:"check_in" binding:"required,staydate"`
	CheckOut  string `json:"check_out" binding:"required,staydate,gtdate=CheckIn"`
	NumGuests int    `json:"num_guests" binding:"required,min=1"`
}

type UpdateBookingRequestBody struct {
	CheckIn   *string `json:"check_in,omitempty" binding:"omitempty,staydate"`
	CheckOut  *string `json:"check_out,omitempty" binding:"omitempty,staydate"`
	NumGuests *int    `json:"num_guests,omitempty" binding:"omitempty,min=1"`
}

type PayBookingRequestBody struct {
	// Outcome forces the simulated charge result; omitted means the
	// configured payment simulation decides.
	Outcome *bool `json:"outcome,omitempty"`
}

type SetBookingStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=cancelled completed"`
}

type CreateReviewRequestBody struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty"`
}

type FlagReviewRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type UUIDRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type AvailabilityQueryParams struct {
	CheckIn  string `form:"check_in" binding:"required,staydate"`
	CheckOut string `form:"check_out" binding:"required,staydate,gtdate=CheckIn"`
}
