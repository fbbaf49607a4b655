package credit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/loancheck/internal/signals"
)

// SignalError reports a provider that failed to answer. It is a decisioning
// failure, never a rejection.
type SignalError struct {
	Source string
	Err    error
}

func (e SignalError) Error() string {
	return fmt.Sprintf("%s signal: %v", e.Source, e.Err)
}

func (e SignalError) Unwrap() error { return e.Err }

// Engine aggregates the three risk signals into a credit decision.
type Engine struct {
	bureau   signals.BureauSource
	revenue  signals.RevenueSource
	payments signals.PaymentHistorySource
	logger   *slog.Logger
}

func NewEngine(bureau signals.BureauSource, revenue signals.RevenueSource, payments signals.PaymentHistorySource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{bureau: bureau, revenue: revenue, payments: payments, logger: logger}
}

// Decide queries all providers concurrently and evaluates the application once
// every signal is in.
func (e *Engine) Decide(ctx context.Context, app Application) (Decision, error) {
	log := e.logger.With("taxId", app.TaxID)
	log.Info("credit analysis started", "company", app.CompanyName, "requestedAmount", app.RequestedAmount)

	var (
		bureau   signals.BureauSignal
		revenue  signals.RevenueSignal
		payments signals.PaymentHistorySignal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if bureau, err = e.bureau.Score(gctx, app.TaxID); err != nil {
			return SignalError{Source: "bureau", Err: err}
		}
		log.Debug("bureau signal received", "score", bureau.Score)
		return nil
	})
	g.Go(func() error {
		var err error
		if revenue, err = e.revenue.Revenue(gctx, app.TaxID); err != nil {
			return SignalError{Source: "revenue", Err: err}
		}
		log.Debug("revenue signal received", "monthlyRevenue", revenue.MonthlyRevenue)
		return nil
	})
	g.Go(func() error {
		var err error
		if payments, err = e.payments.History(gctx, app.TaxID); err != nil {
			return SignalError{Source: "payment history", Err: err}
		}
		log.Debug("payment history received", "percentPaid", payments.PercentPaid)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("credit analysis failed", "error", err)
		return Decision{}, err
	}

	d := Evaluate(app, bureau, revenue, payments)
	log.Info("credit analysis finished", "approved", d.Approved, "tier", d.Tier)
	return d, nil
}

// Evaluate applies the decision rules to already collected signals.
func Evaluate(app Application, bureau signals.BureauSignal, revenue signals.RevenueSignal, payments signals.PaymentHistorySignal) Decision {
	d := Decision{
		Tier:           TierNone,
		Bureau:         bureau,
		Revenue:        revenue,
		PaymentHistory: payments,
	}
	percent := payments.PercentPaid
	score := bureau.Score
	monthly := revenue.MonthlyRevenue

	if percent < EliminationPercent {
		d.RejectionReason = eliminationReason
		d.Recommendations = append([]string(nil), eliminationRecommendations...)
		return d
	}

	tier := Classify(score, monthly)
	if percent >= PromotionPercent {
		tier = Promote(tier)
	}
	if tier == TierNone {
		d.RejectionReason = ineligibleReason(score, monthly)
		d.Recommendations = ineligibleRecommendations(score, monthly)
		return d
	}

	limit := MaxAmount(tier, monthly)
	d.Tier = tier
	d.MaxApprovedAmount = &limit

	switch {
	case percent < ApprovalPercent:
		d.RejectionReason = insufficientHistoryReason
		d.Recommendations = insufficientHistoryRecommendations(tier)
	case app.RequestedAmount > limit:
		d.RejectionReason = excessReason(app.RequestedAmount, limit)
		d.Recommendations = excessRecommendations(app.RequestedAmount, limit)
	default:
		d.Approved = true
		d.Recommendations = approvalRecommendations(tier, percent)
	}
	return d
}
