package common

import (
	"context"
	"log"
	"time"

	"stays/src/db"
	"stays/src/lib"
	"stays/src/models"
	"stays/src/types"

	"gorm.io/gorm"
)

// Bookings whose payment failed get this long to retry before they expire.
const paymentExpiryWindow = 48 * time.Hour

const sweepLockKey = "jobs:payment_expiry:lock"

// ExpireFailedBookings cancels pending bookings whose payment failed and sat
// unresolved past the grace window. Nothing was ever collected on these, so
// no refund is issued and paymentStatus stays failed. The UPDATE re-applies
// the stale predicate per row, so anything claimed by a concurrent writer in
// the meantime is left alone, and a second sweep right after finds nothing:
// expired rows are no longer pending.
func ExpireFailedBookings() ([]models.Booking, error) {
	cutoff := lib.GetClock().Now().Add(-paymentExpiryWindow)
	expired := make([]models.Booking, 0)
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var stale []models.Booking
		err := tx.
			Where("status = ? AND payment_status = ? AND updated_at < ?",
				types.BOOKING_PENDING, types.PAYMENT_FAILED, cutoff).
			Find(&stale).
			Error
		if err != nil {
			return err
		}
		for i := range stale {
			res := tx.
				Model(&models.Booking{}).
				Where("id = ? AND status = ? AND payment_status = ? AND updated_at < ?",
					stale[i].ID, types.BOOKING_PENDING, types.PAYMENT_FAILED, cutoff).
				Update("status", types.BOOKING_CANCELED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			stale[i].Status = types.BOOKING_CANCELED
			expired = append(expired, stale[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// RunPaymentExpirySweep is the scheduled entry point. With redis configured a
// short-lived lock keeps overlapping sweep runs from piling up; without it
// the conditional UPDATE alone keeps the sweep safe, just noisier.
func RunPaymentExpirySweep() {
	if rd := lib.GetRedisClient(); rd != nil {
		ctx := context.Background()
		ok, err := rd.SetNX(ctx, sweepLockKey, 1, time.Minute).Result()
		if err == nil && !ok {
			return
		}
		defer rd.Del(ctx, sweepLockKey)
	}
	expired, err := ExpireFailedBookings()
	if err != nil {
		log.Printf("[paymentExpiry] Error expiring bookings: %s\n", err.Error())
		return
	}
	if len(expired) > 0 {
		log.Printf("[paymentExpiry] Cancelled %d booking(s) with failed payment\n", len(expired))
	}
}
