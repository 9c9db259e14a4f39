package common

import (
	"time"

	"stays/src/db"
	"stays/src/models"
	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stays are half-open [checkIn, checkOut) ranges: a check-out and a check-in
// on the same day do not collide, so back-to-back bookings are allowed. Only
// pending and confirmed bookings hold their dates.
func listingAvailable(tx *gorm.DB, listingID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *uuid.UUID) (bool, error) {
	q := tx.
		Model(&models.Booking{}).
		Where("listing_id = ?", listingID).
		Where("status IN ?", []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
		Where("NOT (check_out <= ? OR check_in >= ?)", checkIn, checkOut)
	if excludeBookingID != nil {
		q = q.Where("id <> ?", *excludeBookingID)
	}
	var blocking int64
	if err := q.Count(&blocking).Error; err != nil {
		return false, err
	}
	return blocking == 0, nil
}

// IsListingAvailable answers an availability probe outside any booking
// mutation. Booking writes never rely on this: they re-run the same check
// inside their own transaction so a concurrent insert cannot slip between
// check and write.
func IsListingAvailable(listingID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *uuid.UUID) (bool, error) {
	var available bool
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := listingAvailable(tx, listingID, checkIn, checkOut, excludeBookingID)
		if err != nil {
			return err
		}
		available = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}
