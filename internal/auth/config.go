package auth

import (
	"time"

	"github.com/yourorg/loancheck/internal/env"
)

// Config holds operator API key settings.
type Config struct {
	// Enabled turns the key check on for the loan endpoints.
	Enabled bool
	// KeyHashes are the stored hashes of accepted keys (bcrypt or argon2id),
	// whitespace separated in AUTH_KEY_HASHES.
	KeyHashes []string
	// APIKeyHashAlgorithm is used when hashing new keys (bcrypt or argon2).
	APIKeyHashAlgorithm string
	BcryptCost          int
	Argon2Time          uint32
	// Argon2Memory is in KiB.
	Argon2Memory  uint32
	Argon2Threads uint8
	// KeyCacheTTL is how long a verified key skips the hash comparison.
	KeyCacheTTL time.Duration
}

func LoadConfig() Config {
	return Config{
		Enabled:             env.Bool("AUTH_ENABLED", false),
		KeyHashes:           env.Fields("AUTH_KEY_HASHES", nil),
		APIKeyHashAlgorithm: env.String("AUTH_HASH_ALGORITHM", "bcrypt"),
		BcryptCost:          env.Int("AUTH_BCRYPT_COST", 12),
		Argon2Time:          uint32(env.Int("AUTH_ARGON2_TIME", 1)),
		Argon2Memory:        uint32(env.Int("AUTH_ARGON2_MEMORY", 64*1024)),
		Argon2Threads:       uint8(env.Int("AUTH_ARGON2_THREADS", 4)),
		KeyCacheTTL:         env.Duration("AUTH_KEY_CACHE_TTL", 5*time.Minute),
	}
}
