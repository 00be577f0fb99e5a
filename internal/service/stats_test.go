package service

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

func resolutionWithAvg(ean string, avg float64) pricing.Resolution {
	product := &types.Product{EAN: ean, Chains: []types.ChainQuote{avgOnlyQuote("KONZUM", avg)}}
	return pricing.NewResolver().Resolve(product, nil)
}

func TestCompute_CheckedItemUsesFrozenPrices(t *testing.T) {
	calc := NewStatsCalculator()

	code := types.ChainKonzum
	item := &models.ShoppingListItem{
		ID:         "i1",
		EAN:        "A",
		Amount:     3,
		IsChecked:  true,
		ChainCode:  &code,
		AvgPrice:   pricePtr(2.00),
		StorePrice: pricePtr(1.80),
	}

	stats := calc.Compute([]*models.ShoppingListItem{item}, nil)

	assert.InDelta(t, 5.40, stats.MoneySpent, 1e-9)
	assert.InDelta(t, 6.00, stats.PotentialCostForChecked, 1e-9)
	assert.InDelta(t, 0.60, stats.SavedAmount, 1e-9)
	assert.InDelta(t, 10.0, stats.SavedPercentage, 1e-9)
	assert.Equal(t, 1, stats.CheckedCount)
	assert.Equal(t, 1, stats.TotalCount)
}

func TestCompute_LiveTotalsUseSpreadBand(t *testing.T) {
	calc := NewStatsCalculator()

	items := []*models.ShoppingListItem{
		{ID: "i1", EAN: "A", Amount: 2},
	}
	resolutions := map[string]pricing.Resolution{
		"A": resolutionWithAvg("A", 5.00),
	}

	stats := calc.Compute(items, resolutions)

	assert.InDelta(t, 10.00, stats.AvgTotal, 1e-9)
	assert.InDelta(t, 9.00, stats.MinTotal, 1e-9)
	assert.InDelta(t, 11.00, stats.MaxTotal, 1e-9)
	// Unchecked, so the whole total is still to spend.
	assert.InDelta(t, stats.AvgTotal, stats.AvgToSpend, 1e-9)
}

func TestCompute_CheckedItemsLeaveToSpend(t *testing.T) {
	calc := NewStatsCalculator()

	items := []*models.ShoppingListItem{
		{ID: "i1", EAN: "A", Amount: 1, IsChecked: true, AvgPrice: pricePtr(2.00)},
		{ID: "i2", EAN: "B", Amount: 1},
	}
	resolutions := map[string]pricing.Resolution{
		"A": resolutionWithAvg("A", 2.10),
		"B": resolutionWithAvg("B", 3.00),
	}

	stats := calc.Compute(items, resolutions)

	assert.InDelta(t, 5.10, stats.AvgTotal, 1e-9)
	assert.InDelta(t, 3.00, stats.AvgToSpend, 1e-9)
}

func TestCompute_CheckedWithoutStorePriceSpendsNothing(t *testing.T) {
	calc := NewStatsCalculator()

	item := &models.ShoppingListItem{
		ID: "i1", EAN: "A", Amount: 2, IsChecked: true, AvgPrice: pricePtr(1.50),
	}

	stats := calc.Compute([]*models.ShoppingListItem{item}, nil)

	// No captured store price means no money spent; the potential cost
	// still accumulates from the frozen average.
	assert.InDelta(t, 0.0, stats.MoneySpent, 1e-9)
	assert.InDelta(t, 3.00, stats.PotentialCostForChecked, 1e-9)
	assert.InDelta(t, 3.00, stats.SavedAmount, 1e-9)
	assert.InDelta(t, 100.0, stats.SavedPercentage, 1e-9)
}

func TestCompute_CheckedWithoutAvgPriceStillSpends(t *testing.T) {
	calc := NewStatsCalculator()

	item := &models.ShoppingListItem{
		ID: "i1", EAN: "A", Amount: 2, IsChecked: true, StorePrice: pricePtr(1.80),
	}

	stats := calc.Compute([]*models.ShoppingListItem{item}, nil)

	assert.InDelta(t, 3.60, stats.MoneySpent, 1e-9)
	assert.InDelta(t, 0.0, stats.PotentialCostForChecked, 1e-9)
	assert.InDelta(t, -3.60, stats.SavedAmount, 1e-9)
	// Zero denominator keeps the percentage at 0, never NaN.
	assert.InDelta(t, 0.0, stats.SavedPercentage, 1e-9)
}

func TestCompute_CheckedWithoutAnyPricesOnlyCounts(t *testing.T) {
	calc := NewStatsCalculator()

	item := &models.ShoppingListItem{ID: "i1", EAN: "A", Amount: 4, IsChecked: true}

	stats := calc.Compute([]*models.ShoppingListItem{item}, nil)

	assert.Zero(t, stats.MoneySpent)
	assert.Zero(t, stats.SavedPercentage)
	assert.Equal(t, 1, stats.CheckedCount)
}

func TestCompute_SavedPercentageAlwaysFinite(t *testing.T) {
	calc := NewStatsCalculator()

	properties := gopter.NewProperties(nil)

	genPrice := gen.PtrOf(gen.Float64Range(0.01, 500))

	properties.Property("savedPercentage is finite for any item mix", prop.ForAll(
		func(amounts []int, checked []bool, avg *float64, store *float64) bool {
			items := make([]*models.ShoppingListItem, 0, len(amounts))
			for i, a := range amounts {
				item := &models.ShoppingListItem{
					ID:     string(rune('a' + i%26)),
					EAN:    string(rune('a' + i%26)),
					Amount: a%10 + 1,
				}
				if i < len(checked) && checked[i] {
					item.IsChecked = true
					item.AvgPrice = avg
					item.StorePrice = store
				}
				items = append(items, item)
			}

			stats := calc.Compute(items, nil)
			return !math.IsNaN(stats.SavedPercentage) && !math.IsInf(stats.SavedPercentage, 0)
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.SliceOf(gen.Bool()),
		genPrice,
		genPrice,
	))

	properties.TestingRun(t)
}

func TestCompute_EmptyList(t *testing.T) {
	calc := NewStatsCalculator()

	stats := calc.Compute(nil, nil)

	assert.Zero(t, stats.TotalCount)
	assert.Zero(t, stats.AvgTotal)
	assert.Zero(t, stats.SavedPercentage)
}
