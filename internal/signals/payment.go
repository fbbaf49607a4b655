package signals

import (
	"context"
	"time"
)

const (
	baseDebt       = 50_000
	debtPerUnit    = 100
	neutralPercent = 50
)

type paidBand struct {
	minDigit int
	percent  float64
}

// Same digit boundaries as the bureau bands.
var paidBands = []paidBand{
	{minDigit: 8, percent: 95},
	{minDigit: 5, percent: 80},
	{minDigit: 3, percent: 65},
	{minDigit: 0, percent: 40},
}

// SimulatedPaymentHistory stands in for the good-payer registry.
type SimulatedPaymentHistory struct {
	Latency time.Duration
}

func (p SimulatedPaymentHistory) History(ctx context.Context, taxID string) (PaymentHistorySignal, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return PaymentHistorySignal{}, err
	}
	return BuildPaymentHistory(SimulatedDebt(taxID), SimulatedPercentPaid(taxID)), nil
}

// SimulatedDebt is 50 000 plus 100 per unit of the last four digits.
func SimulatedDebt(taxID string) float64 {
	last4, _ := lastDigits(taxID, 4)
	return float64(baseDebt + last4*debtPerUnit)
}

func SimulatedPercentPaid(taxID string) float64 {
	d, ok := firstDigit(taxID)
	if !ok {
		return neutralPercent
	}
	for _, b := range paidBands {
		if d >= b.minDigit {
			return b.percent
		}
	}
	return paidBands[len(paidBands)-1].percent
}

// BuildPaymentHistory assembles the signal from a debt total and a paid percentage.
func BuildPaymentHistory(debt, percent float64) PaymentHistorySignal {
	paid := debt * percent / 100
	return PaymentHistorySignal{
		TotalDebt:      debt,
		TotalPaid:      paid,
		PercentPaid:    percent,
		Classification: ClassifyPayer(percent),
		Chart:          PaymentChart{Debt: debt, Paid: paid},
	}
}

func ClassifyPayer(percent float64) Rating {
	switch {
	case percent >= 90:
		return RatingExcellent
	case percent >= 65:
		return RatingGood
	case percent >= 50:
		return RatingRegular
	default:
		return RatingPoor
	}
}
