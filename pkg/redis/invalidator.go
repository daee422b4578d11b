package redis

import (
	"context"
	"time"
)

// Invalidator drops cached score payloads after a pipeline commit, so the
// read API never serves a stale recompute.
type Invalidator struct {
	cache *Cache
}

// NewInvalidator creates a cache invalidator over the shared cache helper.
func NewInvalidator(cache *Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

// InvalidateDate removes the cached per-date payload and every per-ticker
// key for the date, so single-ticker reads cannot serve pre-recompute rows.
func (i *Invalidator) InvalidateDate(ctx context.Context, date time.Time, tickers []string) error {
	day := date.Format("2006-01-02")
	keys := make([]string, 0, len(tickers)+1)
	keys = append(keys, ScoresKey(day))
	for _, ticker := range tickers {
		keys = append(keys, ScoreKey(ticker, day))
	}
	return i.cache.Delete(ctx, keys...)
}
