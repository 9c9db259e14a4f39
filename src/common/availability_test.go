package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsListingAvailable(t *testing.T) {
	newTestDB(t)
	newTestClock()
	host := seedUser(t, "user")
	guest := seedUser(t, "user")
	listing := seedListing(t, host, 100, 4)

	booking, err := CreateBooking(actorFor(guest), bookingRequest(listing, "2026-05-21", "2026-05-24", 2))
	require.NoError(t, err)

	available, err := IsListingAvailable(listing.ID, date(2026, 5, 22), date(2026, 5, 25), nil)
	require.NoError(t, err)
	assert.False(t, available)

	// The booking's own range is free when it is excluded from the probe.
	available, err = IsListingAvailable(listing.ID, date(2026, 5, 22), date(2026, 5, 25), &booking.ID)
	require.NoError(t, err)
	assert.True(t, available)

	available, err = IsListingAvailable(listing.ID, date(2026, 5, 24), date(2026, 5, 27), nil)
	require.NoError(t, err)
	assert.True(t, available)
}
