package common

import (
	"errors"
	"fmt"
	"time"

	"stays/src/config"
	"stays/src/db"
	"stays/src/lib"
	"stays/src/models"
	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Authorization rules for booking transitions, kept in one place so the
// guest/host/admin branching stays auditable.

func isBookingGuest(actor types.Actor, b *models.Booking) bool {
	return actor.ID == b.GuestID
}

func isListingHost(actor types.Actor, l *models.Listing) bool {
	return actor.ID == l.HostID
}

func IsAdmin(actor types.Actor) bool {
	return actor.Role == "admin"
}

func parseStayDate(s string) (time.Time, error) {
	d, err := time.Parse(config.DATE_PARSE_FORMAT, s)
	if err != nil {
		return time.Time{}, validationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

func checkInNotPast(checkIn time.Time) error {
	today := lib.GetClock().Now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return validationError("check-in date cannot be in the past")
	}
	return nil
}

func findBooking(tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.Where(&models.Booking{ID: id}).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func findListing(tx *gorm.DB, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := tx.Where(&models.Listing{ID: id}).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("listing not found")
		}
		return nil, err
	}
	return &listing, nil
}

// lockForUpdate takes a row lock on whatever the query selects, so
// concurrent booking writes on the same listing serialize and the
// availability check cannot race the insert. Drivers without row locks
// (sqlite) drop the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: clause.CurrentTable},
	})
}

// CreateBooking opens a booking for the actor on an active listing they do
// not own. The listing row stays locked for the duration of the transaction,
// so the availability check and the insert cannot interleave with another
// booking write on the same listing: two guests racing for overlapping dates
// cannot both end up pending.
func CreateBooking(actor types.Actor, body *types.CreateBookingRequestBody) (*models.Booking, error) {
	listingID, err := uuid.Parse(body.ListingID)
	if err != nil {
		return nil, validationError("invalid listing id")
	}
	checkIn, err := parseStayDate(body.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseStayDate(body.CheckOut)
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, validationError("check-out must be after check-in")
	}
	if err := checkInNotPast(checkIn); err != nil {
		return nil, err
	}

	var booking models.Booking
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		listing, err := findListing(lockForUpdate(tx), listingID)
		if err != nil {
			return err
		}
		if isListingHost(actor, listing) {
			return invalidOperationError("cannot book your own listing")
		}
		if listing.Status != types.LISTING_ACTIVE {
			return invalidOperationError("listing is not available")
		}
		if body.NumGuests > listing.MaxGuests {
			return validationError("exceeds maximum guests for this listing")
		}
		available, err := listingAvailable(tx, listing.ID, checkIn, checkOut, nil)
		if err != nil {
			return err
		}
		if !available {
			return conflictError("listing not available for these dates")
		}
		booking = models.Booking{
			ListingID:     listing.ID,
			GuestID:       actor.ID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			NumGuests:     body.NumGuests,
			Status:        types.BOOKING_PENDING,
			PaymentStatus: types.PAYMENT_UNPAID,
			TotalPrice:    TotalPrice(checkIn, checkOut, listing.PricePerNight),
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBooking edits dates and guest count on a pending, unpaid booking
// owned by the actor. A booking with a failed payment attempt is not
// editable; it must go through cancel or expiry. All create-time validation
// re-runs against the resolved values, with the booking itself excluded from
// the availability check, and the total price is recomputed.
func UpdateBooking(actor types.Actor, bookingID uuid.UUID, body *types.UpdateBookingRequestBody) (*models.Booking, error) {
	var booking *models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if !isBookingGuest(actor, booking) {
			return notAuthorizedError("not authorized")
		}
		if booking.Status != types.BOOKING_PENDING || booking.PaymentStatus != types.PAYMENT_UNPAID {
			return invalidOperationError("only pending unpaid bookings can be updated")
		}

		checkIn, checkOut := booking.CheckIn, booking.CheckOut
		if body.CheckIn != nil {
			if checkIn, err = parseStayDate(*body.CheckIn); err != nil {
				return err
			}
		}
		if body.CheckOut != nil {
			if checkOut, err = parseStayDate(*body.CheckOut); err != nil {
				return err
			}
		}
		if !checkOut.After(checkIn) {
			return validationError("check-out must be after check-in")
		}
		if err := checkInNotPast(checkIn); err != nil {
			return err
		}

		listing, err := findListing(lockForUpdate(tx), booking.ListingID)
		if err != nil {
			return err
		}
		numGuests := booking.NumGuests
		if body.NumGuests != nil {
			numGuests = *body.NumGuests
		}
		if numGuests > listing.MaxGuests {
			return validationError("exceeds maximum guests for this listing")
		}
		available, err := listingAvailable(tx, listing.ID, checkIn, checkOut, &booking.ID)
		if err != nil {
			return err
		}
		if !available {
			return conflictError("listing not available for these dates")
		}

		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{
				"check_in":    checkIn,
				"check_out":   checkOut,
				"num_guests":  numGuests,
				"total_price": TotalPrice(checkIn, checkOut, listing.PricePerNight),
			}).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// PayBooking settles a booking with the simulated processor. When outcome is
// nil the configured simulation decides. A failed charge is a committed
// state change (paymentStatus=failed, status back to pending) signalled with
// a PaymentFailed error; the guest may simply pay again.
func PayBooking(actor types.Actor, bookingID uuid.UUID, outcome *bool) (*models.Booking, error) {
	var booking *models.Booking
	var succeeded bool
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if !isBookingGuest(actor, booking) {
			return notAuthorizedError("not authorized")
		}
		if booking.Status == types.BOOKING_CANCELED {
			return invalidOperationError("cannot pay for a cancelled booking")
		}
		if booking.PaymentStatus == types.PAYMENT_PAID {
			return invalidOperationError("booking already paid")
		}
		if booking.PaymentStatus == types.PAYMENT_REFUNDED {
			return invalidOperationError("cannot pay for a refunded booking")
		}

		succeeded = lib.SimulateCharge()
		if outcome != nil {
			succeeded = *outcome
		}
		status, paymentStatus := types.BOOKING_CONFIRMED, types.PAYMENT_PAID
		if !succeeded {
			status, paymentStatus = types.BOOKING_PENDING, types.PAYMENT_FAILED
		}
		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{"status": status, "payment_status": paymentStatus}).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !succeeded {
		return booking, paymentFailedError("payment failed")
	}
	return booking, nil
}

// CancelBooking handles both guest- and host-initiated cancellation of a
// pending or confirmed booking. A guest cancelling a paid booking only
// requests cancellation; the host adjudicates. A host cancelling a paid
// booking triggers an unconditional full refund. Returns the refund issued,
// if any.
func CancelBooking(actor types.Actor, bookingID uuid.UUID) (*models.Booking, *types.Refund, error) {
	var booking *models.Booking
	var refund *types.Refund
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		listing, err := findListing(tx, booking.ListingID)
		if err != nil {
			return err
		}
		guest := isBookingGuest(actor, booking)
		host := isListingHost(actor, listing)
		if !guest && !host {
			return notAuthorizedError("not authorized")
		}
		if booking.Status != types.BOOKING_PENDING && booking.Status != types.BOOKING_CONFIRMED {
			return invalidOperationError("cannot cancel this booking")
		}

		if guest && booking.PaymentStatus == types.PAYMENT_PAID {
			err = tx.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: booking.ID}).
				Update("status", types.BOOKING_CANCELLATION_REQUESTED).
				Error
			if err != nil {
				return err
			}
			booking, err = findBooking(tx, bookingID)
			return err
		}

		updates := map[string]any{"status": types.BOOKING_CANCELED}
		if host && booking.PaymentStatus == types.PAYMENT_PAID {
			r := ComputeRefund(booking, CancelledByHost)
			refund = &r
			updates["payment_status"] = types.PAYMENT_REFUNDED
			updates["refund_amount"] = r.Amount
		}
		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(updates).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, refund, nil
}

// ApproveCancellation lets the listing's host grant a requested cancellation.
// The refund tier is computed now, against the approval-time clock.
func ApproveCancellation(actor types.Actor, bookingID uuid.UUID) (*models.Booking, *types.Refund, error) {
	var booking *models.Booking
	var refund types.Refund
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		listing, err := findListing(tx, booking.ListingID)
		if err != nil {
			return err
		}
		if !isListingHost(actor, listing) {
			return notAuthorizedError("not authorized")
		}
		if booking.Status != types.BOOKING_CANCELLATION_REQUESTED {
			return invalidOperationError("booking is not awaiting cancellation approval")
		}
		refund = ComputeRefund(booking, CancelledByGuest)
		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{
				"status":         types.BOOKING_CANCELED,
				"payment_status": types.PAYMENT_REFUNDED,
				"refund_amount":  refund.Amount,
			}).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, &refund, nil
}

// RejectCancellation restores a requested cancellation to confirmed; the
// booking stands, payment untouched.
func RejectCancellation(actor types.Actor, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		listing, err := findListing(tx, booking.ListingID)
		if err != nil {
			return err
		}
		if !isListingHost(actor, listing) {
			return notAuthorizedError("not authorized")
		}
		if booking.Status != types.BOOKING_CANCELLATION_REQUESTED {
			return invalidOperationError("booking is not awaiting cancellation approval")
		}
		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_CONFIRMED).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// SetBookingStatus is the administrative override: force a booking to
// cancelled or completed with no further business-rule checks.
func SetBookingStatus(bookingID uuid.UUID, status types.BookingStatus) (*models.Booking, error) {
	if status != types.BOOKING_CANCELED && status != types.BOOKING_COMPLETED {
		return nil, validationError("invalid status")
	}
	var booking *models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		err = tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", status).
			Error
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetBooking returns one booking, visible to its guest, the listing's host
// and admins.
func GetBooking(actor types.Actor, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingID}).
		Preload("Listing").
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("booking not found")
		}
		return nil, err
	}
	if !isBookingGuest(actor, &booking) && actor.ID != booking.Listing.HostID && !IsAdmin(actor) {
		return nil, notAuthorizedError("not authorized")
	}
	return &booking, nil
}

// GetGuestBookings lists the actor's own bookings, newest first.
func GetGuestBookings(actor types.Actor) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{GuestID: actor.ID}).
		Preload("Listing").
		Order("created_at DESC").
		Find(&bookings).
		Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetListingBookings lists every booking on a listing for its host.
func GetListingBookings(actor types.Actor, listingID uuid.UUID) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		listing, err := findListing(tx, listingID)
		if err != nil {
			return err
		}
		if !isListingHost(actor, listing) {
			return notAuthorizedError("not authorized")
		}
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ListingID: listingID}).
			Preload("Guest").
			Order("created_at DESC").
			Find(&bookings).
			Error
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
