package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocery-pricer/internal/types"
)

type countingSource struct {
	calls    int
	products map[string]*types.Product
	fail     bool
}

func (s *countingSource) ProductByEAN(ctx context.Context, ean string, date string) (*types.Product, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("source down")
	}
	return s.products[ean], nil
}

func setupQuoteCache(t *testing.T, source *countingSource, ttl time.Duration) (*CachedQuoteSource, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedQuoteSource(source, NewRedisCacheFromClient(client), ttl), mr
}

func TestCachedQuoteSource_MissThenHit(t *testing.T) {
	avg := 1.49
	source := &countingSource{products: map[string]*types.Product{
		"A": {EAN: "A", Name: "Mlijeko", Chains: []types.ChainQuote{
			{Chain: "KONZUM", Code: types.ChainKonzum, AvgPrice: &avg},
		}},
	}}
	cached, _ := setupQuoteCache(t, source, time.Hour)

	ctx := context.Background()

	first, err := cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, source.calls)

	second, err := cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.Name, second.Name)
	require.Len(t, second.Chains, 1)
	require.NotNil(t, second.Chains[0].AvgPrice)
	assert.InDelta(t, 1.49, *second.Chains[0].AvgPrice, 1e-9)
}

func TestCachedQuoteSource_UnknownProductTombstoned(t *testing.T) {
	source := &countingSource{products: map[string]*types.Product{}}
	cached, _ := setupQuoteCache(t, source, time.Hour)

	ctx := context.Background()

	product, err := cached.ProductByEAN(ctx, "404", "")
	require.NoError(t, err)
	assert.Nil(t, product)

	product, err = cached.ProductByEAN(ctx, "404", "")
	require.NoError(t, err)
	assert.Nil(t, product)
	assert.Equal(t, 1, source.calls)
}

func TestCachedQuoteSource_TTLExpiryRefetches(t *testing.T) {
	avg := 2.00
	source := &countingSource{products: map[string]*types.Product{
		"A": {EAN: "A", Chains: []types.ChainQuote{{Chain: "LIDL", Code: types.ChainLidl, AvgPrice: &avg}}},
	}}
	cached, mr := setupQuoteCache(t, source, time.Minute)

	ctx := context.Background()

	_, err := cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedQuoteSource_DateKeyedSeparately(t *testing.T) {
	avg := 2.00
	source := &countingSource{products: map[string]*types.Product{
		"A": {EAN: "A", Chains: []types.ChainQuote{{Chain: "LIDL", Code: types.ChainLidl, AvgPrice: &avg}}},
	}}
	cached, _ := setupQuoteCache(t, source, time.Hour)

	ctx := context.Background()

	_, err := cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	_, err = cached.ProductByEAN(ctx, "A", "2025-06-01")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
}

func TestCachedQuoteSource_CorruptEntryRefetched(t *testing.T) {
	avg := 2.00
	source := &countingSource{products: map[string]*types.Product{
		"A": {EAN: "A", Chains: []types.ChainQuote{{Chain: "LIDL", Code: types.ChainLidl, AvgPrice: &avg}}},
	}}
	cached, mr := setupQuoteCache(t, source, time.Hour)

	require.NoError(t, mr.Set(quoteKey("A", ""), "not-json"))

	product, err := cached.ProductByEAN(context.Background(), "A", "")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, 1, source.calls)
}

func TestCachedQuoteSource_Invalidate(t *testing.T) {
	avg := 2.00
	source := &countingSource{products: map[string]*types.Product{
		"A": {EAN: "A", Chains: []types.ChainQuote{{Chain: "LIDL", Code: types.ChainLidl, AvgPrice: &avg}}},
	}}
	cached, _ := setupQuoteCache(t, source, time.Hour)

	ctx := context.Background()

	_, err := cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	require.NoError(t, cached.Invalidate(ctx, "A"))

	_, err = cached.ProductByEAN(ctx, "A", "")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedQuoteSource_SourceErrorNotCached(t *testing.T) {
	source := &countingSource{fail: true}
	cached, _ := setupQuoteCache(t, source, time.Hour)

	ctx := context.Background()

	_, err := cached.ProductByEAN(ctx, "A", "")
	require.Error(t, err)

	_, err = cached.ProductByEAN(ctx, "A", "")
	require.Error(t, err)
	assert.Equal(t, 2, source.calls)
}
