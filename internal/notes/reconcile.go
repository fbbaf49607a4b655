package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/loancheck/internal/money"
)

// NoteValidator checks one candidate against the authenticity service.
type NoteValidator interface {
	Validate(ctx context.Context, key string, declared float64) (FiscalNote, error)
}

// DefaultExtractors registers the XML tree extractor and the fixed-width extractor.
func DefaultExtractors() map[Format]Extractor {
	return map[Format]Extractor{
		FormatGenericTree: NewTreeExtractor(),
		FormatFixedWidth:  NewFixedWidthExtractor(),
	}
}

// Reconciler checks that the valid notes of a document justify a loan amount.
type Reconciler struct {
	extractors map[Format]Extractor
	validator  NoteValidator
	cfg        Config
	logger     *slog.Logger
}

func NewReconciler(extractors map[Format]Extractor, validator NoteValidator, cfg Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return &Reconciler{extractors: extractors, validator: validator, cfg: cfg, logger: logger}
}

func (r *Reconciler) Reconcile(ctx context.Context, req ReconciliationRequest) (ReconciliationResult, error) {
	log := r.logger.With("taxId", req.TaxID, "format", req.Format)
	if math.IsNaN(req.LoanAmount) || math.IsInf(req.LoanAmount, 0) || req.LoanAmount <= 0 {
		return ReconciliationResult{}, &InputError{Field: "loanAmount", Message: "must be greater than zero"}
	}
	ex, ok := r.extractors[req.Format]
	if !ok {
		return ReconciliationResult{}, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}
	if fa, ok := ex.(filenameAware); ok && req.Filename != "" {
		ex = fa.ForFilename(req.Filename)
	}

	candidates, err := ex.Extract(req.Content)
	if err != nil {
		var perr *ParseError
		if !errors.As(err, &perr) {
			perr = &ParseError{Format: req.Format, Err: err}
		}
		log.Error("document parse failed", "filename", req.Filename, "cause", perr.Err)
		return ReconciliationResult{}, perr
	}
	log.Info("notes extracted", "count", len(candidates))

	notes, err := r.validateAll(ctx, candidates)
	if err != nil {
		log.Error("note validation failed", "error", err)
		return ReconciliationResult{}, err
	}

	res := Aggregate(notes, req.LoanAmount, r.cfg.Tolerance)
	if math.IsInf(res.ValidTotal, 0) || math.IsInf(res.CoveragePercent, 0) {
		log.Warn("note totals overflow", "notes", res.ValidNotes)
		return ReconciliationResult{}, &InputError{Field: "file", Message: "note values exceed the supported range"}
	}
	log.Info("reconciliation finished",
		"valid", res.ValidNotes,
		"invalid", res.InvalidNotes,
		"validTotal", res.ValidTotal,
		"approved", res.Approved,
	)
	return res, nil
}

// validateAll fans out one validation per candidate and keeps extraction order.
func (r *Reconciler) validateAll(ctx context.Context, candidates []Candidate) ([]FiscalNote, error) {
	notes := make([]FiscalNote, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	if r.cfg.MaxParallelValidations > 0 {
		g.SetLimit(r.cfg.MaxParallelValidations)
	}
	for i, c := range candidates {
		g.Go(func() error {
			note, err := r.validator.Validate(gctx, c.Key, c.Value)
			if err != nil {
				return fmt.Errorf("validate note %s: %w", c.Key, err)
			}
			notes[i] = note
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return notes, nil
}

// Aggregate partitions validated notes and checks the valid total against the
// tolerance band around loanAmount.
func Aggregate(notes []FiscalNote, loanAmount, tolerance float64) ReconciliationResult {
	valid := make([]float64, 0, len(notes))
	for _, n := range notes {
		if n.Status == StatusValid {
			valid = append(valid, n.Value)
		}
	}
	total := money.Sum(valid)
	within := money.ToleranceBand(loanAmount, tolerance).Contains(total)
	approved := within && len(valid) > 0
	validTotal := total.InexactFloat64()

	if notes == nil {
		notes = []FiscalNote{}
	}
	return ReconciliationResult{
		NotesSent:       len(notes),
		ValidNotes:      len(valid),
		InvalidNotes:    len(notes) - len(valid),
		ValidTotal:      validTotal,
		LoanAmount:      loanAmount,
		CoveragePercent: money.Percent(total, decimal.NewFromFloat(loanAmount)),
		WithinTolerance: within,
		Approved:        approved,
		Notes:           notes,
		Message:         verdictMessage(approved, within, validTotal, tolerance),
	}
}

// verdictMessage picks one of three templates. The last one is only reachable
// when the band includes zero, i.e. with a tolerance of 100% or more.
func verdictMessage(approved, within bool, validTotal, tolerance float64) string {
	switch {
	case approved:
		return fmt.Sprintf("Approved! Valid notes total (%s) is within the %s%% tolerance of the requested loan.",
			money.BRL(validTotal), strconv.FormatFloat(money.Round(tolerance*100, 2), 'f', -1, 64))
	case !within:
		return fmt.Sprintf("Rejected! Valid notes total (%s) is outside the allowed tolerance.", money.BRL(validTotal))
	default:
		return "Rejected! No valid notes found."
	}
}
