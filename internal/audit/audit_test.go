package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func sampleEntry(i int) Entry {
	return Entry{
		AuditID: fmt.Sprintf("a-%d", i),
		CorrID:  fmt.Sprintf("c-%d", i),
		TaxID:   "12345678000190",
		Actor:   "system",
		Action:  "credit.decide",
		Outcome: "rejected",
		Ts:      time.Date(2025, 3, 10, 12, 0, i, 0, time.UTC),
	}
}

func TestRecordChainsEntries(t *testing.T) {
	rec := NewMemoryRecorder()
	log := NewLog(rec)
	ctx := context.Background()

	first, err := log.Record(ctx, sampleEntry(1))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first.PrevHash != "" || first.Hash == "" {
		t.Fatalf("first entry must start the chain, got %+v", first)
	}
	second, err := log.Record(ctx, sampleEntry(2))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if second.PrevHash != first.Hash {
		t.Fatalf("second entry must link to the first")
	}

	other := sampleEntry(3)
	other.TaxID = "98765432000100"
	third, err := log.Record(ctx, other)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if third.PrevHash != "" {
		t.Fatalf("chains are per tax ID")
	}

	if err := Verify(rec.Entries("12345678000190")); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	rec := NewMemoryRecorder()
	log := NewLog(rec)
	for i := 0; i < 3; i++ {
		if _, err := log.Record(context.Background(), sampleEntry(i)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	entries := rec.Entries("12345678000190")
	entries[1].Outcome = "approved"
	if err := Verify(entries); err == nil {
		t.Fatalf("expected tampering to be detected")
	}
}

func TestRecordConcurrentKeepsChainIntact(t *testing.T) {
	rec := NewMemoryRecorder()
	log := NewLog(rec)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := log.Record(context.Background(), sampleEntry(i)); err != nil {
				t.Errorf("Record() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
	entries := rec.Entries("12345678000190")
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
	if err := Verify(entries); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

type failingRecorder struct{ *MemoryRecorder }

func (failingRecorder) Last(context.Context, string) (Entry, error) {
	return Entry{}, errors.New("store offline")
}

func TestRecordSurfacesStoreErrors(t *testing.T) {
	log := NewLog(failingRecorder{MemoryRecorder: NewMemoryRecorder()})
	if _, err := log.Record(context.Background(), sampleEntry(1)); err == nil {
		t.Fatalf("expected error from the recorder")
	}
}
