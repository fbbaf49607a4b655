// Package audit keeps a tamper-evident trail of credit decisions and
// reconciliations. Each entry hashes its predecessor for the same tax ID.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrEmpty is returned by Last when a tax ID has no entries yet.
var ErrEmpty = errors.New("no audit entries")

type Entry struct {
	AuditID  string    `json:"auditId"`
	CorrID   string    `json:"corrId"`
	TaxID    string    `json:"taxId"`
	Actor    string    `json:"actor"`
	Action   string    `json:"action"`
	Outcome  string    `json:"outcome"`
	Ts       time.Time `json:"timestamp"`
	Hash     string    `json:"hash"`
	PrevHash string    `json:"prevHash"`
}

type Recorder interface {
	Append(ctx context.Context, entry Entry) error
	Last(ctx context.Context, taxID string) (Entry, error)
}

// Log serializes chain appends so concurrent requests for one tax ID cannot
// both link to the same predecessor.
type Log struct {
	mu  sync.Mutex
	rec Recorder
}

func NewLog(rec Recorder) *Log {
	return &Log{rec: rec}
}

// Record links entry to the last one for its tax ID and appends it.
func (l *Log) Record(ctx context.Context, entry Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, err := l.rec.Last(ctx, entry.TaxID)
	if err != nil && !errors.Is(err, ErrEmpty) {
		return Entry{}, fmt.Errorf("read chain head: %w", err)
	}
	entry.PrevHash = prev.Hash
	entry.Hash = hashEntry(entry)
	return entry, l.rec.Append(ctx, entry)
}

func hashEntry(e Entry) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		e.AuditID, e.CorrID, e.TaxID, e.Actor, e.Action, e.Outcome, e.Ts.UTC().Format(time.RFC3339Nano), e.PrevHash)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Verify walks a chain in append order and reports the first broken link.
func Verify(entries []Entry) error {
	prev := ""
	for i, e := range entries {
		if e.PrevHash != prev {
			return fmt.Errorf("entry %d (%s): previous hash mismatch", i, e.AuditID)
		}
		if hashEntry(e) != e.Hash {
			return fmt.Errorf("entry %d (%s): hash mismatch", i, e.AuditID)
		}
		prev = e.Hash
	}
	return nil
}

// MemoryRecorder keeps entries per tax ID in process memory.
type MemoryRecorder struct {
	mu    sync.RWMutex
	byTax map[string][]Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byTax: map[string][]Entry{}}
}

func (m *MemoryRecorder) Append(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTax[entry.TaxID] = append(m.byTax[entry.TaxID], entry)
	return nil
}

func (m *MemoryRecorder) Last(_ context.Context, taxID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byTax[taxID]
	if len(list) == 0 {
		return Entry{}, ErrEmpty
	}
	return list[len(list)-1], nil
}

// Entries returns a copy of the chain for taxID.
func (m *MemoryRecorder) Entries(taxID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry{}, m.byTax[taxID]...)
}
