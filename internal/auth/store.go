package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/patrickmn/go-cache"
)

// ErrUnknownKey is returned when no stored hash matches.
var ErrUnknownKey = errors.New("invalid API key")

// Operator is the authenticated caller.
type Operator struct {
	KeyID     string `json:"keyId"`
	KeyPrefix string `json:"keyPrefix"`
}

type KeyStore interface {
	Match(ctx context.Context, rawKey string) (Operator, error)
}

// StaticKeyStore matches keys against hashes loaded from configuration.
// With a positive KeyCacheTTL, verified keys are cached under their SHA-256.
type StaticKeyStore struct {
	mu       sync.RWMutex
	hashes   []string
	verified *cache.Cache
}

func NewStaticKeyStore(cfg Config) *StaticKeyStore {
	s := &StaticKeyStore{hashes: append([]string(nil), cfg.KeyHashes...)}
	if cfg.KeyCacheTTL > 0 {
		s.verified = cache.New(cfg.KeyCacheTTL, 2*cfg.KeyCacheTTL)
	}
	return s
}

// Add registers another stored hash.
func (s *StaticKeyStore) Add(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes = append(s.hashes, hash)
}

func (s *StaticKeyStore) Match(_ context.Context, rawKey string) (Operator, error) {
	fp := fingerprint(rawKey)
	if s.verified != nil {
		if op, ok := s.verified.Get(fp); ok {
			return op.(Operator), nil
		}
	}
	s.mu.RLock()
	hashes := s.hashes
	s.mu.RUnlock()
	for _, h := range hashes {
		if VerifyKey(rawKey, h) {
			op := Operator{KeyID: keyID(h), KeyPrefix: ExtractKeyPrefix(rawKey)}
			if s.verified != nil {
				s.verified.SetDefault(fp, op)
			}
			return op, nil
		}
	}
	return Operator{}, ErrUnknownKey
}

func fingerprint(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// keyID is a stable short identifier derived from the stored hash.
func keyID(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
