package notes

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourorg/loancheck/internal/logging"
)

func validNote(key string, value float64) FiscalNote {
	return FiscalNote{Key: key, Value: value, Status: StatusValid, Tags: authorizedTags}
}

func invalidNote(key string, value float64) FiscalNote {
	return Classify(key, value, refusedTags)
}

func TestAggregateToleranceBounds(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		within bool
	}{
		{"lower bound", 85_000, true},
		{"one cent below", 84_999.99, false},
		{"upper bound", 115_000, true},
		{"one cent above", 115_000.01, false},
		{"exact", 100_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Aggregate([]FiscalNote{validNote("NF-2", tt.total)}, 100_000, DefaultTolerance)
			if res.WithinTolerance != tt.within || res.Approved != tt.within {
				t.Fatalf("total %v: within=%v approved=%v, want %v", tt.total, res.WithinTolerance, res.Approved, tt.within)
			}
		})
	}
}

func TestAggregateSumsInDecimal(t *testing.T) {
	notes := []FiscalNote{validNote("a", 28_333.33), validNote("b", 28_333.33), validNote("c", 28_333.34)}
	res := Aggregate(notes, 100_000, DefaultTolerance)
	if res.ValidTotal != 85_000 {
		t.Fatalf("ValidTotal = %v, want 85000", res.ValidTotal)
	}
	if !res.WithinTolerance {
		t.Fatalf("total landing on the lower bound must be within tolerance")
	}
	if res.CoveragePercent != 85 {
		t.Fatalf("CoveragePercent = %v, want 85", res.CoveragePercent)
	}
}

func TestAggregatePartitions(t *testing.T) {
	notes := []FiscalNote{
		validNote("NF-2", 60_000),
		invalidNote("NF-10", 500_000),
		validNote("NF-3", 40_000),
	}
	res := Aggregate(notes, 100_000, DefaultTolerance)
	if res.NotesSent != 3 || res.ValidNotes != 2 || res.InvalidNotes != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.ValidTotal != 100_000 || !res.Approved {
		t.Fatalf("invalid note must not count: %+v", res)
	}
	if !strings.HasPrefix(res.Message, "Approved!") || !strings.Contains(res.Message, "R$ 100.000,00") || !strings.Contains(res.Message, "15%") {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if res.Notes[1].Key != "NF-10" {
		t.Fatalf("notes must keep their order")
	}
}

func TestAggregateNoValidNotes(t *testing.T) {
	notes := []FiscalNote{invalidNote("NF-10", 90_000)}
	res := Aggregate(notes, 100_000, DefaultTolerance)
	if res.ValidTotal != 0 || res.CoveragePercent != 0 || res.WithinTolerance || res.Approved {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.Contains(res.Message, "outside the allowed tolerance") {
		t.Fatalf("with a positive band the outside template wins, got %q", res.Message)
	}

	// A band reaching down to zero is the only way to hit the third template.
	res = Aggregate(notes, 100_000, 1)
	if !res.WithinTolerance || res.Approved {
		t.Fatalf("expected within=true approved=false, got %+v", res)
	}
	if res.Message != "Rejected! No valid notes found." {
		t.Fatalf("unexpected message %q", res.Message)
	}

	res = Aggregate(nil, 100_000, DefaultTolerance)
	if res.Notes == nil || res.NotesSent != 0 {
		t.Fatalf("empty documents must yield an empty note list, got %+v", res)
	}
}

func TestVerdictMessageOrder(t *testing.T) {
	if got := verdictMessage(true, true, 1, 0.15); !strings.HasPrefix(got, "Approved!") {
		t.Fatalf("approved: %q", got)
	}
	if got := verdictMessage(false, false, 0, 0.15); !strings.Contains(got, "outside") {
		t.Fatalf("outside: %q", got)
	}
	if got := verdictMessage(false, true, 0, 0.15); got != "Rejected! No valid notes found." {
		t.Fatalf("no valid notes: %q", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	candidates, err := NewTreeExtractor().Extract([]byte(sampleXML))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	notes := make([]FiscalNote, 0, len(candidates))
	for _, c := range candidates {
		notes = append(notes, Classify(c.Key, c.Value, lookupTags(c.Key)))
	}
	first := Aggregate(notes, 5_000, DefaultTolerance)

	again := make([]FiscalNote, 0, len(first.Notes))
	for _, n := range first.Notes {
		again = append(again, Classify(n.Key, n.Value, lookupTags(n.Key)))
	}
	second := Aggregate(again, 5_000, DefaultTolerance)
	if first.ValidTotal != second.ValidTotal || first.ValidNotes != second.ValidNotes {
		t.Fatalf("aggregation not idempotent: %v vs %v", first.ValidTotal, second.ValidTotal)
	}
}

// delayedValidator sleeps per key and records peak concurrency.
type delayedValidator struct {
	delays   map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	err      error
}

func (v *delayedValidator) Validate(ctx context.Context, key string, declared float64) (FiscalNote, error) {
	n := v.inFlight.Add(1)
	defer v.inFlight.Add(-1)
	for {
		p := v.peak.Load()
		if n <= p || v.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if v.err != nil && strings.HasSuffix(key, "9") {
		return FiscalNote{}, v.err
	}
	select {
	case <-time.After(v.delays[key]):
	case <-ctx.Done():
		return FiscalNote{}, ctx.Err()
	}
	return Classify(key, declared, lookupTags(key)), nil
}

func sampleFixedWidth(keys ...string) []byte {
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fixedLine(k))
	}
	return []byte(strings.Join(lines, "\n"))
}

func newTestReconciler(v NoteValidator, cfg Config) *Reconciler {
	extractors := DefaultExtractors()
	extractors[FormatFixedWidth] = FixedWidthExtractor{Values: constValues(25_000)}
	return NewReconciler(extractors, v, cfg, logging.Discard())
}

func TestReconcileKeepsExtractionOrder(t *testing.T) {
	v := &delayedValidator{delays: map[string]time.Duration{
		"NF-A2": 40 * time.Millisecond,
		"NF-B3": 20 * time.Millisecond,
		"NF-C0": 0,
	}}
	r := newTestReconciler(v, Config{})
	res, err := r.Reconcile(context.Background(), ReconciliationRequest{
		TaxID:      "12345678000190",
		LoanAmount: 50_000,
		Content:    sampleFixedWidth("NF-A2", "NF-B3", "NF-C0"),
		Format:     FormatFixedWidth,
	})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	got := []string{res.Notes[0].Key, res.Notes[1].Key, res.Notes[2].Key}
	if strings.Join(got, ",") != "NF-A2,NF-B3,NF-C0" {
		t.Fatalf("order = %v", got)
	}
	if res.ValidNotes != 2 || res.InvalidNotes != 1 || res.ValidTotal != 50_000 || !res.Approved {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Notes[2].Status != StatusInvalid || res.Notes[2].InvalidationReason == "" {
		t.Fatalf("key ending in 0 must be invalid: %+v", res.Notes[2])
	}
}

func TestReconcileBoundedFanOut(t *testing.T) {
	delays := map[string]time.Duration{}
	keys := make([]string, 0, 8)
	for _, k := range []string{"NF-12", "NF-13", "NF-14", "NF-15", "NF-16", "NF-17", "NF-18", "NF-22"} {
		delays[k] = 10 * time.Millisecond
		keys = append(keys, k)
	}
	v := &delayedValidator{delays: delays}
	r := newTestReconciler(v, Config{MaxParallelValidations: 2})
	res, err := r.Reconcile(context.Background(), ReconciliationRequest{
		LoanAmount: 200_000,
		Content:    sampleFixedWidth(keys...),
		Format:     FormatFixedWidth,
	})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if res.NotesSent != 8 {
		t.Fatalf("NotesSent = %d", res.NotesSent)
	}
	if peak := v.peak.Load(); peak > 2 {
		t.Fatalf("peak concurrency %d exceeds the limit", peak)
	}
}

func TestReconcileFilenameSelectsSyntax(t *testing.T) {
	r := newTestReconciler(&delayedValidator{}, Config{})
	res, err := r.Reconcile(context.Background(), ReconciliationRequest{
		LoanAmount: 1_000,
		Content:    []byte(`[{"key":"NF-2","value":1000}]`),
		Format:     FormatGenericTree,
		Filename:   "notas.json",
	})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if res.ValidNotes != 1 || !res.Approved {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestReconcileErrors(t *testing.T) {
	r := newTestReconciler(&delayedValidator{}, Config{})
	ctx := context.Background()

	_, err := r.Reconcile(ctx, ReconciliationRequest{LoanAmount: 0, Format: FormatFixedWidth})
	var inErr *InputError
	if !errors.As(err, &inErr) || inErr.Field != "loanAmount" {
		t.Fatalf("expected loanAmount InputError, got %v", err)
	}

	_, err = r.Reconcile(ctx, ReconciliationRequest{LoanAmount: 1000, Format: "PDF"})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	_, err = r.Reconcile(ctx, ReconciliationRequest{LoanAmount: 1000, Format: FormatGenericTree, Content: []byte("<broken>")})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}

	boom := errors.New("authenticity service down")
	r = newTestReconciler(&delayedValidator{err: boom}, Config{})
	_, err = r.Reconcile(ctx, ReconciliationRequest{
		LoanAmount: 1000,
		Format:     FormatFixedWidth,
		Content:    sampleFixedWidth("NF-12", "NF-19"),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected validator failure, got %v", err)
	}
}

func TestReconcileRejectsOverflowingTotals(t *testing.T) {
	r := newTestReconciler(&delayedValidator{}, Config{})
	doc := `<lote><nota><chave>NF-2</chave><valor>1e308</valor></nota><nota><chave>NF-3</chave><valor>1e308</valor></nota></lote>`
	_, err := r.Reconcile(context.Background(), ReconciliationRequest{
		LoanAmount: 100_000,
		Format:     FormatGenericTree,
		Content:    []byte(doc),
	})
	var inErr *InputError
	if !errors.As(err, &inErr) || inErr.Field != "file" {
		t.Fatalf("expected file InputError, got %v", err)
	}

	// One huge note fits a float64 but its coverage against a tiny loan does not.
	_, err = r.Reconcile(context.Background(), ReconciliationRequest{
		LoanAmount: 0.01,
		Format:     FormatGenericTree,
		Content:    []byte(`<lote><nota><chave>NF-2</chave><valor>1e307</valor></nota></lote>`),
	})
	if !errors.As(err, &inErr) {
		t.Fatalf("expected InputError for overflowing coverage, got %v", err)
	}
}

func TestReconcileHonoursCancellation(t *testing.T) {
	v := AuthenticityValidator{Latency: time.Second}
	r := newTestReconciler(v, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Reconcile(ctx, ReconciliationRequest{
		LoanAmount: 1000,
		Format:     FormatFixedWidth,
		Content:    sampleFixedWidth("NF-12"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
