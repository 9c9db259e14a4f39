package common

import (
	"errors"
	"time"

	"stays/src/db"
	"stays/src/lib"
	"stays/src/models"
	"stays/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// A completed stay may be reviewed for this long after checkout.
const reviewWindow = 14 * 24 * time.Hour

func reviewEligible(tx *gorm.DB, reviewerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := findBooking(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != reviewerID {
		return nil, notAuthorizedError("not authorized")
	}
	if booking.Status != types.BOOKING_COMPLETED {
		return nil, invalidOperationError("can only review completed bookings")
	}
	if lib.GetClock().Now().Sub(booking.CheckOut) > reviewWindow {
		return nil, validationError("review window has expired")
	}
	var existing int64
	err = tx.
		Model(&models.Review{}).
		Where(&models.Review{BookingID: bookingID, ReviewerID: reviewerID}).
		Count(&existing).
		Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, conflictError("already reviewed this booking")
	}
	return booking, nil
}

// CheckReviewEligibility reports whether the actor may review the booking;
// a nil error means eligible, otherwise the OpError names the blocking rule.
func CheckReviewEligibility(actor types.Actor, bookingID uuid.UUID) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		_, err := reviewEligible(tx, actor.ID, bookingID)
		return err
	})
}

// CreateReview writes a review for a completed stay. One review per
// (booking, reviewer); a duplicate attempt is rejected, never merged.
func CreateReview(actor types.Actor, body *types.CreateReviewRequestBody) (*models.Review, error) {
	bookingID, err := uuid.Parse(body.BookingID)
	if err != nil {
		return nil, validationError("invalid booking id")
	}
	var review models.Review
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		booking, err := reviewEligible(tx, actor.ID, bookingID)
		if err != nil {
			return err
		}
		listing, err := findListing(tx, booking.ListingID)
		if err != nil {
			return err
		}
		review = models.Review{
			BookingID:  booking.ID,
			ListingID:  booking.ListingID,
			ReviewerID: actor.ID,
			RevieweeID: listing.HostID,
			Rating:     body.Rating,
			Comment:    body.Comment,
			Status:     types.REVIEW_ACTIVE,
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListingReviews lists a listing's active reviews, newest first. Flagged and
// removed reviews stay out of public view.
func ListingReviews(listingID uuid.UUID) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findListing(tx, listingID); err != nil {
			return err
		}
		return tx.
			Model(&models.Review{}).
			Where(&models.Review{ListingID: listingID, Status: types.REVIEW_ACTIVE}).
			Preload("Reviewer").
			Order("created_at DESC").
			Find(&reviews).
			Error
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// UserReviews lists reviews written by the actor, newest first.
func UserReviews(actor types.Actor) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	db := db.GetDb()
	err := db.
		Model(&models.Review{}).
		Where(&models.Review{ReviewerID: actor.ID}).
		Order("created_at DESC").
		Find(&reviews).
		Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// FlagReview lets the reviewed listing's host flag an active review for
// moderation.
func FlagReview(actor types.Actor, reviewID uuid.UUID, reason string) (*models.Review, error) {
	var review models.Review
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Review{ID: reviewID}).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("review not found")
			}
			return err
		}
		listing, err := findListing(tx, review.ListingID)
		if err != nil {
			return err
		}
		if !isListingHost(actor, listing) {
			return notAuthorizedError("not authorized")
		}
		if review.Status != types.REVIEW_ACTIVE {
			return invalidOperationError("review is not active")
		}
		now := lib.GetClock().Now()
		err = tx.
			Model(&models.Review{}).
			Where(&models.Review{ID: reviewID}).
			Updates(map[string]any{
				"status":      types.REVIEW_FLAGGED,
				"flag_reason": reason,
				"flagged_by":  actor.ID,
				"flagged_at":  now,
			}).
			Error
		if err != nil {
			return err
		}
		return tx.Where(&models.Review{ID: reviewID}).First(&review).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FlaggedReviews lists reviews awaiting moderation, most recently flagged
// first. Admin only, gated at the route.
func FlaggedReviews() ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	db := db.GetDb()
	err := db.
		Model(&models.Review{}).
		Where(&models.Review{Status: types.REVIEW_FLAGGED}).
		Preload("Reviewer").
		Order("flagged_at DESC").
		Find(&reviews).
		Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// RemoveReview retires a flagged review. Reviews are never deleted, only
// marked removed, so the moderation trail survives.
func RemoveReview(reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Review{ID: reviewID}).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("review not found")
			}
			return err
		}
		if review.Status != types.REVIEW_FLAGGED {
			return invalidOperationError("review is not flagged")
		}
		err := tx.
			Model(&models.Review{}).
			Where(&models.Review{ID: reviewID}).
			Update("status", types.REVIEW_REMOVED).
			Error
		if err != nil {
			return err
		}
		return tx.Where(&models.Review{ID: reviewID}).First(&review).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}
