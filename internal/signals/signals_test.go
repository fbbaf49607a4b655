package signals

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func TestSimulatedScoreBands(t *testing.T) {
	tests := []struct {
		taxID  string
		lo, hi float64
	}{
		{"92345678000195", 850, 1000},
		{"82345678000195", 850, 1000},
		{"52345678000100", 650, 800},
		{"32345678000100", 450, 600},
		{"12345678000190", 200, 400},
		{"02345678000190", 200, 400},
		{"X92345678000195", 850, 1000},
		{" 12.345.678/0001-90", 200, 400},
		{"ABC", 300, 400},
		{"", 300, 400},
	}
	for _, tt := range tests {
		t.Run(tt.taxID, func(t *testing.T) {
			score := SimulatedScore(tt.taxID)
			if score < tt.lo || score >= tt.hi {
				t.Fatalf("score %v outside [%v, %v)", score, tt.lo, tt.hi)
			}
		})
	}
}

func TestSimulatedPercentPaidIgnoresFormatting(t *testing.T) {
	tests := map[string]float64{
		"X92345678000195":    95,
		"52.345.678/0001-00": 80,
		"  32345678000100":   65,
		"no digits":          neutralPercent,
	}
	for taxID, want := range tests {
		if got := SimulatedPercentPaid(taxID); got != want {
			t.Errorf("SimulatedPercentPaid(%q) = %v, want %v", taxID, got, want)
		}
	}
}

func TestSimulatedScoreDeterministic(t *testing.T) {
	a := SimulatedScore("52345678000100")
	b := SimulatedScore("52345678000100")
	if a != b {
		t.Fatalf("expected deterministic score, got %v and %v", a, b)
	}
	if SimulatedScore("52345678000101") == a {
		t.Fatalf("expected different ids to draw different scores")
	}
}

func TestRateScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Rating
	}{
		{1000, RatingExcellent},
		{800, RatingExcellent},
		{799.99, RatingGood},
		{600, RatingGood},
		{400, RatingRegular},
		{399.9, RatingPoor},
	}
	for _, tt := range tests {
		if got, _ := RateScore(tt.score); got != tt.want {
			t.Errorf("RateScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSimulatedRevenueBands(t *testing.T) {
	tests := []struct {
		taxID  string
		lo, hi float64
	}{
		{"12345678000999", 1_500_000, 2_000_000},
		{"12345678000800", 1_500_000, 2_000_000},
		{"12345678000500", 200_000, 500_000},
		{"12345678000200", 30_000, 100_000},
		{"12345678000190", 5_000, 15_000},
		{"12.345.678/0001-90", 5_000, 15_000},
		{"ABC", 5_000, 15_000},
	}
	for _, tt := range tests {
		t.Run(tt.taxID, func(t *testing.T) {
			v := SimulatedMonthlyRevenue(tt.taxID)
			if v < tt.lo || v >= tt.hi {
				t.Fatalf("revenue %v outside [%v, %v)", v, tt.lo, tt.hi)
			}
		})
	}
}

func TestSimulatedRevenueSignal(t *testing.T) {
	src := SimulatedRevenue{Now: fixedNow}
	sig, err := src.Revenue(context.Background(), "12345678000500")
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}
	if sig.MonthlyRevenue != SimulatedMonthlyRevenue("12345678000500") {
		t.Fatalf("signal revenue %v differs from SimulatedMonthlyRevenue", sig.MonthlyRevenue)
	}
	if sig.Month != "March" || sig.Year != 2025 {
		t.Fatalf("unexpected reporting period %s/%d", sig.Month, sig.Year)
	}
	if len(sig.Trend) != 6 {
		t.Fatalf("expected 6 trend points, got %d", len(sig.Trend))
	}
	for _, p := range sig.Trend {
		if p.Value < sig.MonthlyRevenue*0.8-1 || p.Value > sig.MonthlyRevenue*1.2+1 {
			t.Errorf("trend %s=%v outside ±20%% of %v", p.Label, p.Value, sig.MonthlyRevenue)
		}
		if p.Value != float64(int64(p.Value)) {
			t.Errorf("trend %s=%v is not rounded", p.Label, p.Value)
		}
	}
}

func TestPaymentHistory(t *testing.T) {
	tests := []struct {
		taxID   string
		debt    float64
		percent float64
		class   Rating
	}{
		{"92345678000195", 50_000 + 195*100, 95, RatingExcellent},
		{"52345678001234", 50_000 + 1234*100, 80, RatingGood},
		{"32345678000100", 50_000 + 100*100, 65, RatingGood},
		{"12345678000190", 50_000 + 190*100, 40, RatingPoor},
		{"A2345678009999", 50_000 + 9999*100, 50, RatingRegular},
	}
	src := SimulatedPaymentHistory{}
	for _, tt := range tests {
		t.Run(tt.taxID, func(t *testing.T) {
			sig, err := src.History(context.Background(), tt.taxID)
			if err != nil {
				t.Fatalf("History() error = %v", err)
			}
			if sig.TotalDebt != tt.debt {
				t.Errorf("debt = %v, want %v", sig.TotalDebt, tt.debt)
			}
			if sig.PercentPaid != tt.percent {
				t.Errorf("percent = %v, want %v", sig.PercentPaid, tt.percent)
			}
			if sig.Classification != tt.class {
				t.Errorf("class = %s, want %s", sig.Classification, tt.class)
			}
			if want := tt.debt * tt.percent / 100; sig.TotalPaid != want {
				t.Errorf("paid = %v, want %v", sig.TotalPaid, want)
			}
		})
	}
}

func TestClassifyPayerBoundaries(t *testing.T) {
	tests := []struct {
		percent float64
		want    Rating
	}{
		{90, RatingExcellent},
		{89.999, RatingGood},
		{65, RatingGood},
		{64.999, RatingRegular},
		{50, RatingRegular},
		{49.999, RatingPoor},
	}
	for _, tt := range tests {
		if got := ClassifyPayer(tt.percent); got != tt.want {
			t.Errorf("ClassifyPayer(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SimulatedBureau{Latency: time.Hour}.Score(ctx, "12345678000190")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type countingBureau struct{ calls int }

func (c *countingBureau) Score(_ context.Context, taxID string) (BureauSignal, error) {
	c.calls++
	return BureauSignal{Score: SimulatedScore(taxID)}, nil
}

func TestWithCache(t *testing.T) {
	counter := &countingBureau{}
	src := WithCache(Sources{Bureau: counter, Revenue: SimulatedRevenue{}, Payments: SimulatedPaymentHistory{}}, time.Minute)
	for i := 0; i < 3; i++ {
		if _, err := src.Bureau.Score(context.Background(), "52345678000100"); err != nil {
			t.Fatalf("Score() error = %v", err)
		}
	}
	if counter.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", counter.calls)
	}

	plain := WithCache(Sources{Bureau: counter}, 0)
	if plain.Bureau != counter {
		t.Fatalf("expected zero ttl to leave sources untouched")
	}
}
