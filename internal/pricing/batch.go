package pricing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/types"
)

// Fetcher is the slice of the price client that batch fetching needs.
type Fetcher interface {
	ProductByEAN(ctx context.Context, ean string, date string) (*types.Product, error)
}

// BatchResult holds the outcome of one parallel fetch. Failed EANs are
// listed but do not poison the rest of the batch.
type BatchResult struct {
	Products   map[string]*types.Product
	Failed     []string
	Generation uint64
}

// BatchFetcher fetches many products concurrently. Every call is
// stamped with a generation token so that callers refreshing the same
// list can discard results that a newer fetch has superseded.
type BatchFetcher struct {
	client Fetcher
	gen    atomic.Uint64
}

// NewBatchFetcher constructs a BatchFetcher over the given client.
func NewBatchFetcher(client Fetcher) *BatchFetcher {
	return &BatchFetcher{client: client}
}

// Stale reports whether a newer fetch has started since this result's
// fetch began.
func (b *BatchFetcher) Stale(r BatchResult) bool {
	return r.Generation != b.gen.Load()
}

// FetchAll resolves all EANs in parallel. A failing or unknown EAN
// yields no entry in Products and is recorded in Failed; the other
// items are unaffected.
func (b *BatchFetcher) FetchAll(ctx context.Context, eans []string) BatchResult {
	result := BatchResult{
		Products:   make(map[string]*types.Product, len(eans)),
		Generation: b.gen.Add(1),
	}
	if len(eans) == 0 {
		return result
	}

	logger := logging.FromContext(ctx)

	// Duplicate EANs are fetched once.
	unique := make([]string, 0, len(eans))
	seen := make(map[string]struct{}, len(eans))
	for _, ean := range eans {
		if _, ok := seen[ean]; ok {
			continue
		}
		seen[ean] = struct{}{}
		unique = append(unique, ean)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, ean := range unique {
		wg.Add(1)
		go func(ean string) {
			defer wg.Done()

			product, err := b.client.ProductByEAN(ctx, ean, "")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.WithField("ean", ean).WithError(err).Warn("product fetch failed")
				result.Failed = append(result.Failed, ean)
				return
			}
			if product == nil {
				result.Failed = append(result.Failed, ean)
				return
			}
			result.Products[ean] = product
		}(ean)
	}
	wg.Wait()

	return result
}
