package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/platesense/platesense/pkg/models"
)

// Aggregator fetches reviews from every registered source concurrently and
// merges the results. Individual source failures are non-fatal; the caller
// gets whatever could be fetched plus a joined error describing what failed.
type Aggregator struct {
	sources []ReviewSource
	cache   *Cache
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(sources ...ReviewSource) *Aggregator {
	return &Aggregator{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
	}
}

// Sources returns all registered review sources.
func (a *Aggregator) Sources() []ReviewSource { return a.sources }

// FetchReviews gathers reviews for one branch across all sources. The
// returned error is non-nil only when every source failed.
func (a *Aggregator) FetchReviews(ctx context.Context, branch models.Branch, limit int) ([]models.Review, error) {
	cacheKey := fmt.Sprintf("agg:%s:%d", branch.ID, limit)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]models.Review), nil
	}

	var mu sync.Mutex
	var all []models.Review
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range a.sources {
		g.Go(func() error {
			reviews, err := src.FetchReviews(gctx, branch, 0)
			if err != nil {
				if errors.Is(err, ErrNotConfigured) {
					return nil
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				mu.Unlock()
				return nil // non-fatal
			}
			mu.Lock()
			all = append(all, reviews...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all = dedupeReviews(all)
	sortReviewsByDate(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	if len(all) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	a.cache.Set(cacheKey, all)
	return all, nil
}

// dedupeReviews drops duplicates that arrive through multiple sources.
// Identity is the (author, text) pair; URL differs across mirrors.
func dedupeReviews(reviews []models.Review) []models.Review {
	seen := make(map[string]bool, len(reviews))
	out := reviews[:0]
	for _, r := range reviews {
		key := r.Author + "\x00" + r.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
