package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Rate is floor(balance / hours). It is zero when no time has elapsed.
func Rate(balance int64, elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	num := decimal.NewFromInt(balance).Mul(nanosPerHour)
	quo, rem := num.QuoRem(decimal.NewFromInt(int64(elapsed)), 0)
	if rem.IsNegative() {
		quo = quo.Sub(decimal.NewFromInt(1))
	}
	return quo.IntPart()
}
