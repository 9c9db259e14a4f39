package common

import (
	"stays/src/db"
	"stays/src/models"
	"stays/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CreateListing registers a new listing owned by the actor. Listings start
// out active and bookable immediately.
func CreateListing(actor types.Actor, body *types.CreateListingRequestBody) (*models.Listing, error) {
	listing := models.Listing{
		HostID:        actor.ID,
		Title:         body.Title,
		Slug:          slug.Make(body.Title),
		City:          body.City,
		Country:       body.Country,
		PricePerNight: body.PricePerNight,
		MaxGuests:     body.MaxGuests,
		Status:        types.LISTING_ACTIVE,
	}
	dbconn := db.GetDb()
	if err := dbconn.Create(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// SetListingStatus lets the host take a listing off the market or put it
// back up. Inactive listings keep their existing bookings.
func SetListingStatus(actor types.Actor, listingID uuid.UUID, status types.ListingStatus) (*models.Listing, error) {
	var listing *models.Listing
	dbconn := db.GetDb()
	err := dbconn.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = findListing(tx, listingID)
		if err != nil {
			return err
		}
		if !isListingHost(actor, listing) {
			return notAuthorizedError("only the host can change this listing")
		}
		if err := tx.Model(listing).Update("status", status).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// ActiveListings returns the listings currently open for booking.
func ActiveListings() ([]models.Listing, error) {
	var listings []models.Listing
	dbconn := db.GetDb()
	err := dbconn.
		Where("status = ?", types.LISTING_ACTIVE).
		Order("created_at DESC").
		Find(&listings).
		Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// GetListing loads one listing with its host. Inactive listings stay
// visible so existing guests can still reach them.
func GetListing(listingID uuid.UUID) (*models.Listing, error) {
	dbconn := db.GetDb()
	listing, err := findListing(dbconn.Preload("Host"), listingID)
	if err != nil {
		return nil, err
	}
	return listing, nil
}
