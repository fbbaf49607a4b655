package report

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T, retention time.Duration) *InMemoryStorage {
	t.Helper()
	s, err := NewInMemoryStorage("http://localhost:8080/reports", []byte("test-secret"), retention)
	if err != nil {
		t.Fatalf("NewInMemoryStorage() error = %v", err)
	}
	return s
}

func TestInMemoryStorageRoundTrip(t *testing.T) {
	s := newTestStorage(t, 0)
	ctx := context.Background()

	if err := s.PutObject(ctx, "r-1", []byte("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	body, meta, err := s.GetObject(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if string(body) != "%PDF" || meta.Size != 4 || meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected object %q %+v", body, meta)
	}

	link, err := s.GetSignedURL(ctx, "r-1", time.Minute)
	if err != nil {
		t.Fatalf("GetSignedURL() error = %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("bad link %q: %v", link, err)
	}
	if u.Path != "/reports/r-1" || u.Query().Get("exp") == "" || u.Query().Get("sig") == "" {
		t.Fatalf("unexpected link %q", link)
	}
	exp, err := time.Parse(time.RFC3339, u.Query().Get("exp"))
	if err != nil || exp.Before(time.Now()) {
		t.Fatalf("exp must be in the future, got %q", u.Query().Get("exp"))
	}
	if err := s.VerifySignedURL("r-1", u.Query(), time.Now()); err != nil {
		t.Fatalf("VerifySignedURL() error = %v", err)
	}
}

func TestVerifySignedURL(t *testing.T) {
	s := newTestStorage(t, 0)
	ctx := context.Background()
	if err := s.PutObject(ctx, "r-1", []byte("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	link, err := s.GetSignedURL(ctx, "r-1", time.Minute)
	if err != nil {
		t.Fatalf("GetSignedURL() error = %v", err)
	}
	u, _ := url.Parse(link)
	valid := u.Query()

	edited := url.Values{"exp": {"2999-01-01T00:00:00Z"}, "sig": {valid.Get("sig")}}
	tests := []struct {
		name  string
		key   string
		query url.Values
		now   time.Time
		want  error
	}{
		{"expired", "r-1", valid, time.Now().Add(time.Hour), ErrLinkExpired},
		{"no exp", "r-1", url.Values{"sig": {valid.Get("sig")}}, time.Now(), ErrLinkInvalid},
		{"no sig", "r-1", url.Values{"exp": {valid.Get("exp")}}, time.Now(), ErrLinkInvalid},
		{"edited exp", "r-1", edited, time.Now(), ErrLinkInvalid},
		{"other key", "r-2", valid, time.Now(), ErrLinkInvalid},
		{"garbage sig", "r-1", url.Values{"exp": {valid.Get("exp")}, "sig": {"zz"}}, time.Now(), ErrLinkInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.VerifySignedURL(tt.key, tt.query, tt.now); !errors.Is(err, tt.want) {
				t.Fatalf("VerifySignedURL() = %v, want %v", err, tt.want)
			}
		})
	}

	other := newTestStorage(t, 0)
	other.secret = []byte("another-secret")
	if err := other.VerifySignedURL("r-1", valid, time.Now()); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("link signed with another secret verified: %v", err)
	}
}

func TestInMemoryStorageRetention(t *testing.T) {
	s := newTestStorage(t, 20*time.Millisecond)
	ctx := context.Background()
	if err := s.PutObject(ctx, "r-1", []byte("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, _, err := s.GetObject(ctx, "r-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetObject() after retention = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStorageMissing(t *testing.T) {
	s := newTestStorage(t, 0)
	if _, _, err := s.GetObject(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetObject() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetSignedURL(context.Background(), "nope", time.Minute); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSignedURL() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetSignedURL(context.Background(), "nope", 0); !errors.Is(err, ErrInvalidTTL) {
		t.Fatalf("GetSignedURL() with zero ttl = %v, want ErrInvalidTTL", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.PutObject(ctx, "k", []byte("x"), "text/plain"); err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("PutObject() on a canceled context = %v", err)
	}
}

func TestNewInMemoryStorageRandomSecret(t *testing.T) {
	a, err := NewInMemoryStorage("http://x/reports", nil, 0)
	if err != nil {
		t.Fatalf("NewInMemoryStorage() error = %v", err)
	}
	b, err := NewInMemoryStorage("http://x/reports", nil, 0)
	if err != nil {
		t.Fatalf("NewInMemoryStorage() error = %v", err)
	}
	if len(a.secret) != 32 || string(a.secret) == string(b.secret) {
		t.Fatalf("expected distinct random secrets")
	}
}
