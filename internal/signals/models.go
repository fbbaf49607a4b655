package signals

import (
	"context"
	"time"
)

// Rating is the qualitative label shared by the bureau and payment history signals.
type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingRegular   Rating = "REGULAR"
	RatingPoor      Rating = "POOR"
)

type BureauSignal struct {
	Score       float64   `json:"score"`
	Rating      Rating    `json:"rating"`
	History     string    `json:"history"`
	ConsultedAt time.Time `json:"consultedAt"`
}

type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type RevenueSignal struct {
	MonthlyRevenue float64      `json:"monthlyRevenue"`
	Month          string       `json:"month"`
	Year           int          `json:"year"`
	Trend          []TrendPoint `json:"trend"`
}

type PaymentChart struct {
	Debt float64 `json:"debt"`
	Paid float64 `json:"paid"`
}

type PaymentHistorySignal struct {
	TotalDebt      float64      `json:"totalDebt"`
	TotalPaid      float64      `json:"totalPaid"`
	PercentPaid    float64      `json:"percentPaid"`
	Classification Rating       `json:"classification"`
	Chart          PaymentChart `json:"chart"`
}

// BureauSource yields the credit bureau score for a business.
type BureauSource interface {
	Score(ctx context.Context, taxID string) (BureauSignal, error)
}

// RevenueSource yields the monthly revenue for a business.
type RevenueSource interface {
	Revenue(ctx context.Context, taxID string) (RevenueSignal, error)
}

// PaymentHistorySource yields debt repayment history for a business.
type PaymentHistorySource interface {
	History(ctx context.Context, taxID string) (PaymentHistorySignal, error)
}

// Sources bundles one implementation of each provider for wiring.
type Sources struct {
	Bureau   BureauSource
	Revenue  RevenueSource
	Payments PaymentHistorySource
}

// NewSimulated wires the three simulated providers from config.
func NewSimulated(cfg Config) Sources {
	return Sources{
		Bureau:   SimulatedBureau{Latency: cfg.BureauLatency, Now: time.Now},
		Revenue:  SimulatedRevenue{Latency: cfg.RevenueLatency, Now: time.Now},
		Payments: SimulatedPaymentHistory{Latency: cfg.PaymentLatency},
	}
}
