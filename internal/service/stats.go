package service

import (
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

// spreadBand is the assumed spread around a live average when building
// the min and max estimates of a list total.
const spreadBand = 0.10

// StatsCalculator derives the summary figures of a list.
//
// Two price sources feed the figures and must not be mixed up: totals
// and to-spend estimates use today's live averages, while spent and
// saved figures use the prices frozen on each item at check time.
type StatsCalculator struct{}

// NewStatsCalculator creates a StatsCalculator.
func NewStatsCalculator() *StatsCalculator {
	return &StatsCalculator{}
}

// Compute builds the stats of a list given the live resolution of each
// item keyed by EAN. Items without any price data contribute only to
// the counts.
func (s *StatsCalculator) Compute(items []*models.ShoppingListItem, resolutions map[string]pricing.Resolution) types.ListStats {
	var stats types.ListStats

	for _, item := range items {
		stats.TotalCount++
		if item.IsChecked {
			stats.CheckedCount++
		}

		amount := float64(item.EffectiveAmount())

		if res, ok := resolutions[item.EAN]; ok && res.OverallAvg != nil {
			avg := *res.OverallAvg * amount
			min := avg * (1 - spreadBand)
			max := avg * (1 + spreadBand)

			stats.MinTotal += min
			stats.AvgTotal += avg
			stats.MaxTotal += max
			if !item.IsChecked {
				stats.MinToSpend += min
				stats.AvgToSpend += avg
				stats.MaxToSpend += max
			}
		}

		if !item.IsChecked {
			continue
		}

		// Spent and potential accumulate independently from their own
		// frozen snapshot; a missing snapshot contributes zero, never
		// the other field's value.
		if item.StorePrice != nil {
			stats.MoneySpent += *item.StorePrice * amount
		}
		if item.AvgPrice != nil {
			stats.PotentialCostForChecked += *item.AvgPrice * amount
		}
	}

	stats.SavedAmount = stats.PotentialCostForChecked - stats.MoneySpent
	if stats.PotentialCostForChecked > 0 {
		stats.SavedPercentage = stats.SavedAmount / stats.PotentialCostForChecked * 100
	}
	return stats
}
