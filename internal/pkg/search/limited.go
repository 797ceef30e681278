package search

import (
	"context"
	"fmt"
	"time"

	"zvaintel/internal/models"

	"golang.org/x/time/rate"
)

// LimitedAdapter spaces calls to the wrapped adapter by a fixed delay, no
// matter how many goroutines or callers share it.
type LimitedAdapter struct {
	Adapter
	limiter *rate.Limiter
}

// Limited wraps a with a minimum gap between calls. A delay <= 0 returns a
// unchanged, and an adapter that is already limited is not wrapped twice.
func Limited(a Adapter, delay time.Duration) Adapter {
	if delay <= 0 {
		return a
	}
	if _, ok := a.(*LimitedAdapter); ok {
		return a
	}
	return &LimitedAdapter{Adapter: a, limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

func (l *LimitedAdapter) Search(ctx context.Context, query, locale string) ([]models.VendorCandidate, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return []models.VendorCandidate{}, fmt.Errorf("%s: %w", l.Name(), err)
	}
	return l.Adapter.Search(ctx, query, locale)
}
