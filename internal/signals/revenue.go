package signals

import (
	"context"
	"math"
	"time"

	"github.com/yourorg/loancheck/internal/seed"
)

type revenueBand struct {
	minSuffix int
	lo, hi    float64
}

var revenueBands = []revenueBand{
	{minSuffix: 800, lo: 1_500_000, hi: 2_000_000},
	{minSuffix: 500, lo: 200_000, hi: 500_000},
	{minSuffix: 200, lo: 30_000, hi: 100_000},
	{minSuffix: 0, lo: 5_000, hi: 15_000},
}

var trendLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// SimulatedRevenue stands in for the revenue system, which has no API and
// would be scraped or imported from files in production.
type SimulatedRevenue struct {
	Latency time.Duration
	Now     func() time.Time
}

func (s SimulatedRevenue) Revenue(ctx context.Context, taxID string) (RevenueSignal, error) {
	if err := wait(ctx, s.Latency); err != nil {
		return RevenueSignal{}, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now()
	r := seed.New("revenue", taxID)
	band := pickRevenueBand(taxID)
	base := seed.Uniform(r, band.lo, band.hi)

	trend := make([]TrendPoint, 0, len(trendLabels))
	for _, label := range trendLabels {
		factor := seed.Uniform(r, 0.8, 1.2)
		trend = append(trend, TrendPoint{Label: label, Value: math.Round(base * factor)})
	}
	return RevenueSignal{
		MonthlyRevenue: base,
		Month:          t.Month().String(),
		Year:           t.Year(),
		Trend:          trend,
	}, nil
}

// SimulatedMonthlyRevenue returns only the monthly revenue figure.
func SimulatedMonthlyRevenue(taxID string) float64 {
	band := pickRevenueBand(taxID)
	return seed.Uniform(seed.New("revenue", taxID), band.lo, band.hi)
}

// pickRevenueBand keys on the last three digits; identifiers without digits
// land in the lowest band.
func pickRevenueBand(taxID string) revenueBand {
	suffix, ok := lastDigits(taxID, 3)
	if !ok {
		return revenueBands[len(revenueBands)-1]
	}
	for _, b := range revenueBands {
		if suffix >= b.minSuffix {
			return b
		}
	}
	return revenueBands[len(revenueBands)-1]
}
