package signals

import (
	"context"
	"time"

	"github.com/yourorg/loancheck/internal/seed"
)

type scoreBand struct {
	minDigit int
	lo, hi   float64
}

// Ordered high to low; the first band whose minDigit the leading digit reaches wins.
var scoreBands = []scoreBand{
	{minDigit: 8, lo: 850, hi: 1000},
	{minDigit: 5, lo: 650, hi: 800},
	{minDigit: 3, lo: 450, hi: 600},
	{minDigit: 0, lo: 200, hi: 400},
}

var neutralScoreBand = scoreBand{lo: 300, hi: 400}

// SimulatedBureau stands in for the credit bureau API.
type SimulatedBureau struct {
	Latency time.Duration
	Now     func() time.Time
}

func (b SimulatedBureau) Score(ctx context.Context, taxID string) (BureauSignal, error) {
	if err := wait(ctx, b.Latency); err != nil {
		return BureauSignal{}, err
	}
	score := SimulatedScore(taxID)
	rating, history := RateScore(score)
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return BureauSignal{
		Score:       score,
		Rating:      rating,
		History:     history,
		ConsultedAt: now().UTC(),
	}, nil
}

// SimulatedScore derives a score from the leading digit of the tax ID.
func SimulatedScore(taxID string) float64 {
	band := neutralScoreBand
	if d, ok := firstDigit(taxID); ok {
		for _, b := range scoreBands {
			if d >= b.minDigit {
				band = b
				break
			}
		}
	}
	return seed.Uniform(seed.New("bureau", taxID), band.lo, band.hi)
}

// RateScore maps a bureau score to its rating and a short description.
func RateScore(score float64) (Rating, string) {
	switch {
	case score >= 800:
		return RatingExcellent, "EXCELLENT - spotless payment record"
	case score >= 600:
		return RatingGood, "GOOD - positive record with minor variations"
	case score >= 400:
		return RatingRegular, "REGULAR - record with some late payments"
	default:
		return RatingPoor, "POOR - record with defaults"
	}
}
