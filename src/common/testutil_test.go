package common

import (
	"fmt"
	"testing"
	"time"

	"stays/src/db"
	"stays/src/lib"
	"stays/src/models"
	"stays/src/types"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Every suite pins the clock here so date fixtures stay stable.
var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestDB swaps the shared connection for an in-memory sqlite database.
// A single connection forces concurrent transactions to serialize, which is
// exactly what the race tests need to be deterministic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	err = gdb.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
	)
	require.NoError(t, err)
	db.NewDB(gdb)
	return gdb
}

func newTestClock() *clockwork.FakeClock {
	c := clockwork.NewFakeClockAt(testNow)
	lib.NewClock(c)
	return c
}

var userSeq int

func seedUser(t *testing.T, role string) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Name:         fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.test", userSeq),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.GetDb().Create(&user).Error)
	return &user
}

func seedListing(t *testing.T, host *models.User, pricePerNight float64, maxGuests int) *models.Listing {
	t.Helper()
	listing := models.Listing{
		HostID:        host.ID,
		Title:         "Seaside flat",
		Slug:          "seaside-flat",
		City:          "Lisbon",
		Country:       "PT",
		PricePerNight: pricePerNight,
		MaxGuests:     maxGuests,
		Status:        types.LISTING_ACTIVE,
	}
	require.NoError(t, db.GetDb().Create(&listing).Error)
	return &listing
}

func actorFor(u *models.User) types.Actor {
	return types.Actor{ID: u.ID, Role: u.Role}
}

func bookingRequest(listing *models.Listing, checkIn, checkOut string, numGuests int) *types.CreateBookingRequestBody {
	return &types.CreateBookingRequestBody{
		ListingID: listing.ID.String(),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		NumGuests: numGuests,
	}
}

func requireOpError(t *testing.T, err error, kind ErrorKind) *OpError {
	t.Helper()
	require.Error(t, err)
	opErr, ok := err.(*OpError)
	require.True(t, ok, "expected *OpError, got %T: %v", err, err)
	require.Equal(t, kind, opErr.Kind, "unexpected error kind: %s", opErr.Message)
	return opErr
}
