package report

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	// ErrNotFound is returned for a report key that was never stored or has
	// already been dropped.
	ErrNotFound = errors.New("report not found")
	// ErrLinkExpired is returned for a correctly signed link past its exp.
	ErrLinkExpired = errors.New("report link expired")
	// ErrLinkInvalid covers links with a missing or altered exp or signature.
	ErrLinkInvalid = errors.New("report link invalid")
	ErrInvalidTTL  = errors.New("signed url ttl must be positive")
)

type ObjectMeta struct {
	Key         string
	Size        int
	ContentType string
	UpdatedAt   time.Time
}

// Storage keeps rendered reports so they can be downloaded again.
type Storage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, ObjectMeta, error)
	GetSignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// VerifySignedURL checks the exp and sig parameters of a link issued by GetSignedURL.
	VerifySignedURL(key string, query url.Values, now time.Time) error
}

type storedObject struct {
	body []byte
	meta ObjectMeta
}

// InMemoryStorage backs local runs and tests. Objects are dropped after the
// retention period.
type InMemoryStorage struct {
	baseURL string
	secret  []byte
	objects *cache.Cache
	now     func() time.Time
}

// NewInMemoryStorage signs URLs under baseURL, e.g. "http://localhost:8080/reports".
// An empty secret is replaced by a random one, so links die with the process.
// A non-positive retention keeps objects forever.
func NewInMemoryStorage(baseURL string, secret []byte, retention time.Duration) (*InMemoryStorage, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
	}
	if retention <= 0 {
		retention = cache.NoExpiration
	}
	return &InMemoryStorage{
		baseURL: baseURL,
		secret:  secret,
		objects: cache.New(retention, retention),
		now:     time.Now,
	}, nil
}

func (s *InMemoryStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.objects.SetDefault(key, storedObject{
		body: append([]byte(nil), body...),
		meta: ObjectMeta{
			Key:         key,
			Size:        len(body),
			ContentType: contentType,
			UpdatedAt:   s.now().UTC(),
		},
	})
	return nil
}

func (s *InMemoryStorage) GetObject(_ context.Context, key string) ([]byte, ObjectMeta, error) {
	v, ok := s.objects.Get(key)
	if !ok {
		return nil, ObjectMeta{}, ErrNotFound
	}
	obj := v.(storedObject)
	return obj.body, obj.meta, nil
}

func (s *InMemoryStorage) GetSignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	if _, ok := s.objects.Get(key); !ok {
		return "", ErrNotFound
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(key)
	exp := s.now().UTC().Add(ttl).Format(time.RFC3339)
	q := url.Values{}
	q.Set("exp", exp)
	q.Set("sig", s.sign(key, exp))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *InMemoryStorage) VerifySignedURL(key string, query url.Values, now time.Time) error {
	exp, sig := query.Get("exp"), query.Get("sig")
	if exp == "" || sig == "" {
		return ErrLinkInvalid
	}
	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(got, s.mac(key, exp)) {
		return ErrLinkInvalid
	}
	t, err := time.Parse(time.RFC3339, exp)
	if err != nil {
		return ErrLinkInvalid
	}
	if now.After(t) {
		return ErrLinkExpired
	}
	return nil
}

func (s *InMemoryStorage) sign(key, exp string) string {
	return hex.EncodeToString(s.mac(key, exp))
}

func (s *InMemoryStorage) mac(key, exp string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(key + "|" + exp))
	return h.Sum(nil)
}
