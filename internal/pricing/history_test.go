package pricing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocery-pricer/internal/types"
)

type fakeHistorySource struct {
	mu     sync.Mutex
	calls  map[string]int
	byDate map[string]*types.Product
}

func (f *fakeHistorySource) ProductByEAN(ctx context.Context, ean string, date string) (*types.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[date]++
	return f.byDate[date], nil
}

func TestHistoryFetch_SortedAndSparse(t *testing.T) {
	source := &fakeHistorySource{
		calls: make(map[string]int),
		byDate: map[string]*types.Product{
			"2025-06-01": {EAN: "1", Chains: []types.ChainQuote{quote("KONZUM", 1.50)}},
			"2025-06-03": {EAN: "1", Chains: []types.ChainQuote{quote("KONZUM", 1.40)}},
		},
	}

	fetcher := NewHistoryFetcher(source, 8)
	from := time.Date(2025, time.June, 3, 12, 0, 0, 0, time.UTC)

	points, err := fetcher.Fetch(context.Background(), "1", from, 5)
	require.NoError(t, err)

	// Days without data are absent, remaining days ascend.
	require.Len(t, points, 2)
	assert.Equal(t, "2025-06-01", points[0].Date)
	assert.Equal(t, "2025-06-03", points[1].Date)
}

func TestHistoryFetch_ClampsToEarliestDate(t *testing.T) {
	source := &fakeHistorySource{
		calls:  make(map[string]int),
		byDate: map[string]*types.Product{},
	}

	fetcher := NewHistoryFetcher(source, 8)
	from := time.Date(2025, time.May, 18, 0, 0, 0, 0, time.UTC)

	_, err := fetcher.Fetch(context.Background(), "1", from, 30)
	require.NoError(t, err)

	// 2025-05-16 is the oldest day the source carries.
	assert.Len(t, source.calls, 3)
	_, walked := source.calls["2025-05-15"]
	assert.False(t, walked)
}

func TestBuildSeries(t *testing.T) {
	points := []HistoryPoint{
		{Date: "2025-06-01", Chains: []types.ChainQuote{
			{Chain: "Konzum", Code: types.ChainKonzum, MinPrice: pricePtr(1.00), AvgPrice: pricePtr(1.50), MaxPrice: pricePtr(2.00)},
		}},
		{Date: "2025-06-02", Chains: []types.ChainQuote{
			{Chain: "Lidl", Code: types.ChainLidl, AvgPrice: pricePtr(1.20)},
			{Chain: "Konzum", Code: types.ChainKonzum, AvgPrice: pricePtr(1.45)},
		}},
	}

	series := BuildSeries(points)

	assert.Equal(t, []string{"Konzum", "Lidl"}, series.Chains)
	assert.InDelta(t, 0.90, series.YMin, 1e-9)
	assert.InDelta(t, 2.20, series.YMax, 1e-9)
	assert.Len(t, series.Points, 2)
}

func TestBuildSeries_Empty(t *testing.T) {
	series := BuildSeries(nil)

	assert.Empty(t, series.Chains)
	assert.Zero(t, series.YMin)
	assert.Zero(t, series.YMax)
}
