package lib

import (
	"math/rand"
)

// The default simulated processor approves roughly four out of five charges.
var chargeFunc = func() bool { return rand.Float64() > 0.2 }

// SimulateCharge runs the configured payment simulation and reports whether
// the charge went through.
func SimulateCharge() bool {
	return chargeFunc()
}

// NewChargeFunc replaces the simulated payment outcome source.
func NewChargeFunc(f func() bool) {
	chargeFunc = f
}
