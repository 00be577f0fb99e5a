package pricing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/types"
)

// earliestHistoryDate is the first day the price source carries data
// for. Walks never go further back than this.
var earliestHistoryDate = time.Date(2025, time.May, 16, 0, 0, 0, 0, time.UTC)

// maxHistoryDays bounds a single history walk.
const maxHistoryDays = 400

// HistoryPoint is a product's chain quotes on one day. Days where the
// source had no data are absent from the series.
type HistoryPoint struct {
	Date   string             `json:"date"`
	Chains []types.ChainQuote `json:"chains"`
}

// Series is a history ready for charting: the points, the set of chains
// that appear anywhere in them, and a padded price domain.
type Series struct {
	Points []HistoryPoint `json:"points"`
	Chains []string       `json:"chains"`
	YMin   float64        `json:"yMin"`
	YMax   float64        `json:"yMax"`
}

// seriesPadding widens the Y-domain so the extreme prices do not sit on
// the chart edge.
const seriesPadding = 0.10

// BuildSeries shapes raw history points into a chartable series. The
// chain set is sorted by display name. The Y-domain spans every present
// min/avg/max value, padded by 10% on each side and floored at zero.
func BuildSeries(points []HistoryPoint) Series {
	chainSet := make(map[string]struct{})
	var min, max float64
	seen := false

	observe := func(v *float64) {
		if v == nil {
			return
		}
		if !seen || *v < min {
			min = *v
		}
		if !seen || *v > max {
			max = *v
		}
		seen = true
	}

	for _, p := range points {
		for _, q := range p.Chains {
			chainSet[q.Chain] = struct{}{}
			observe(q.MinPrice)
			observe(q.AvgPrice)
			observe(q.MaxPrice)
		}
	}

	chains := make([]string, 0, len(chainSet))
	for name := range chainSet {
		chains = append(chains, name)
	}
	sort.Strings(chains)

	series := Series{Points: points, Chains: chains}
	if seen {
		series.YMin = min * (1 - seriesPadding)
		if series.YMin < 0 {
			series.YMin = 0
		}
		series.YMax = max * (1 + seriesPadding)
	}
	return series
}

// HistoryFetcher walks a product's daily quotes backwards in time with
// bounded parallelism.
type HistoryFetcher struct {
	client      Fetcher
	maxParallel int
}

// NewHistoryFetcher constructs a HistoryFetcher. maxParallel values
// below 1 fall back to a sane default.
func NewHistoryFetcher(client Fetcher, maxParallel int) *HistoryFetcher {
	if maxParallel < 1 {
		maxParallel = 64
	}
	return &HistoryFetcher{client: client, maxParallel: maxParallel}
}

// Fetch returns the daily quote series of one product from `from` back
// in time, clamped to the earliest date the source supports. The series
// is sorted ascending by date.
func (h *HistoryFetcher) Fetch(ctx context.Context, ean string, from time.Time, days int) ([]HistoryPoint, error) {
	if days < 1 || days > maxHistoryDays {
		days = maxHistoryDays
	}

	logger := logging.FromContext(ctx).WithField("ean", ean)

	dates := make([]time.Time, 0, days)
	day := from.UTC().Truncate(24 * time.Hour)
	for i := 0; i < days; i++ {
		if day.Before(earliestHistoryDate) {
			break
		}
		dates = append(dates, day)
		day = day.AddDate(0, 0, -1)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	points := make([]HistoryPoint, 0, len(dates))
	sem := make(chan struct{}, h.maxParallel)

	for _, d := range dates {
		wg.Add(1)
		go func(d time.Time) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			product, err := h.client.ProductByEAN(ctx, ean, formatDate(d))
			if err != nil {
				logger.WithField("date", formatDate(d)).WithError(err).Debug("history day fetch failed")
				return
			}
			if product == nil || len(product.Chains) == 0 {
				return
			}

			mu.Lock()
			points = append(points, HistoryPoint{
				Date:   formatDate(d),
				Chains: product.Chains,
			})
			mu.Unlock()
		}(d)
	}
	wg.Wait()

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points, nil
}
