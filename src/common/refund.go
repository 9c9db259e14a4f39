package common

import (
	"math"

	"stays/src/lib"
	"stays/src/models"
	"stays/src/types"
)

const (
	CancelledByGuest = "guest"
	CancelledByHost  = "host"

	fullRefundDays    = 14
	partialRefundDays = 7
	partialRefundRate = 0.5
)

// ComputeRefund applies the cancellation refund policy. Host-initiated
// cancellations refund in full no matter how close check-in is; guest-initiated
// ones are tiered by days until check-in, measured at the moment the refund is
// decided (for a requested cancellation that is approval time, not request
// time).
func ComputeRefund(booking *models.Booking, cancelledBy string) types.Refund {
	if booking.PaymentStatus != types.PAYMENT_PAID {
		return types.Refund{Amount: 0, Type: types.REFUND_NONE}
	}
	if cancelledBy == CancelledByHost {
		return types.Refund{Amount: booking.TotalPrice, Type: types.REFUND_FULL}
	}
	now := lib.GetClock().Now()
	daysUntil := int(math.Ceil(booking.CheckIn.Sub(now).Hours() / 24))
	switch {
	case daysUntil > fullRefundDays:
		return types.Refund{Amount: booking.TotalPrice, Type: types.REFUND_FULL}
	case daysUntil > partialRefundDays:
		return types.Refund{Amount: round2(booking.TotalPrice * partialRefundRate), Type: types.REFUND_PARTIAL}
	default:
		return types.Refund{Amount: 0, Type: types.REFUND_NONE}
	}
}
