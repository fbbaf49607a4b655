package signals

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// digitsOnly strips formatting such as "12.345.678/0001-90".
func digitsOnly(taxID string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, taxID)
}

// firstDigit reports the leading digit of the digits-only tax ID, so
// "12.345.678/0001-90" and "X12345678000190" both read 1. ok is false when the
// identifier carries no digit at all.
func firstDigit(taxID string) (int, bool) {
	d := digitsOnly(taxID)
	if d == "" {
		return 0, false
	}
	return int(d[0] - '0'), true
}

// lastDigits parses the trailing n digits of the digits-only tax ID.
func lastDigits(taxID string, n int) (int, bool) {
	d := digitsOnly(taxID)
	if d == "" {
		return 0, false
	}
	if len(d) > n {
		d = d[len(d)-n:]
	}
	v, err := strconv.Atoi(d)
	if err != nil {
		return 0, false
	}
	return v, true
}

// wait simulates a remote round-trip.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
