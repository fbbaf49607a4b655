package signals

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// WithCache fronts each source with a shared TTL cache keyed by tax ID. A
// non-positive ttl returns the sources untouched. Simulated values are
// deterministic, so caching only matters once real integrations sit behind
// these interfaces.
func WithCache(src Sources, ttl time.Duration) Sources {
	if ttl <= 0 {
		return src
	}
	c := cache.New(ttl, 2*ttl)
	return Sources{
		Bureau:   cachedBureau{next: src.Bureau, cache: c},
		Revenue:  cachedRevenue{next: src.Revenue, cache: c},
		Payments: cachedPayments{next: src.Payments, cache: c},
	}
}

func cached[T any](c *cache.Cache, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.SetDefault(key, v)
	return v, nil
}

type cachedBureau struct {
	next  BureauSource
	cache *cache.Cache
}

func (c cachedBureau) Score(ctx context.Context, taxID string) (BureauSignal, error) {
	return cached(c.cache, "bureau:"+taxID, func() (BureauSignal, error) {
		return c.next.Score(ctx, taxID)
	})
}

type cachedRevenue struct {
	next  RevenueSource
	cache *cache.Cache
}

func (c cachedRevenue) Revenue(ctx context.Context, taxID string) (RevenueSignal, error) {
	return cached(c.cache, "revenue:"+taxID, func() (RevenueSignal, error) {
		return c.next.Revenue(ctx, taxID)
	})
}

type cachedPayments struct {
	next  PaymentHistorySource
	cache *cache.Cache
}

func (c cachedPayments) History(ctx context.Context, taxID string) (PaymentHistorySignal, error) {
	return cached(c.cache, "payments:"+taxID, func() (PaymentHistorySignal, error) {
		return c.next.History(ctx, taxID)
	})
}
