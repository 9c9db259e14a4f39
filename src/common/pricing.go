package common

import (
	"math"
	"time"
)

// Nights counts billable nights between check-in and check-out. Partial days
// round up and a stay is never shorter than one night.
func Nights(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// TotalPrice is nights × nightly rate at currency precision. It is recomputed
// on every date or guest change, not just at creation.
func TotalPrice(checkIn, checkOut time.Time, pricePerNight float64) float64 {
	return round2(float64(Nights(checkIn, checkOut)) * pricePerNight)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
