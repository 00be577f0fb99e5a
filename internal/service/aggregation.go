package service

import (
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/types"
)

// Aggregator folds a list's item quotes into per-chain totals.
//
// The fold is a stable left fold over items in list order and, within an
// item, over quotes in source order. "First wins" tie-breaks downstream
// depend on this ordering, so it is a contract, not an accident.
type Aggregator struct{}

// NewAggregator creates an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Classification splits chain aggregates by coverage.
type Classification struct {
	Complete []types.ChainAggregate `json:"complete"`
	Partial  []types.ChainAggregate `json:"partial"`
	// BestComplete and WorstComplete are the cheapest and dearest
	// complete chains by average total. Nil when no chain is complete.
	BestComplete  *types.ChainAggregate `json:"bestComplete,omitempty"`
	WorstComplete *types.ChainAggregate `json:"worstComplete,omitempty"`
}

// AggregateChains totals every quoted chain across the list's items.
// A chain participates in an item iff the item's quote for it carries
// an average price; min and max fall back to the average when absent.
// Items without a product resolve to no contribution. Duplicate EANs
// held as separate items each contribute their own line.
func (a *Aggregator) AggregateChains(items []*models.ShoppingListItem, products map[string]*types.Product) []types.ChainAggregate {
	order := make([]types.ChainCode, 0)
	byCode := make(map[types.ChainCode]*types.ChainAggregate)

	for _, item := range items {
		product := products[item.EAN]
		if product == nil {
			continue
		}
		amount := float64(item.EffectiveAmount())

		for _, quote := range product.Chains {
			if quote.AvgPrice == nil {
				continue
			}

			agg, ok := byCode[quote.Code]
			if !ok {
				agg = &types.ChainAggregate{Chain: quote.Chain, Code: quote.Code}
				byCode[quote.Code] = agg
				order = append(order, quote.Code)
			}

			avg := *quote.AvgPrice
			min := avg
			if quote.MinPrice != nil {
				min = *quote.MinPrice
			}
			max := avg
			if quote.MaxPrice != nil {
				max = *quote.MaxPrice
			}

			agg.TotalMin += min * amount
			agg.TotalAvg += avg * amount
			agg.TotalMax += max * amount
			agg.ItemCount++
		}
	}

	result := make([]types.ChainAggregate, 0, len(order))
	for _, code := range order {
		result = append(result, *byCode[code])
	}
	return result
}

// ClassifyCompleteness partitions aggregates into chains that quote
// every item and chains that quote a strict subset. Best and worst are
// picked by a strictly-better reduce, so ties keep the earlier chain.
func (a *Aggregator) ClassifyCompleteness(aggregates []types.ChainAggregate, totalItems int) Classification {
	var c Classification
	c.Complete = make([]types.ChainAggregate, 0)
	c.Partial = make([]types.ChainAggregate, 0)

	bestIdx, worstIdx := -1, -1
	for i := range aggregates {
		agg := aggregates[i]
		if totalItems > 0 && agg.ItemCount == totalItems {
			c.Complete = append(c.Complete, agg)
			idx := len(c.Complete) - 1
			if bestIdx < 0 || agg.TotalAvg < c.Complete[bestIdx].TotalAvg {
				bestIdx = idx
			}
			if worstIdx < 0 || agg.TotalAvg > c.Complete[worstIdx].TotalAvg {
				worstIdx = idx
			}
		} else {
			c.Partial = append(c.Partial, agg)
		}
	}

	if bestIdx >= 0 {
		c.BestComplete = &c.Complete[bestIdx]
		c.WorstComplete = &c.Complete[worstIdx]
	}
	return c
}

// LowestPriceChains returns the codes of every chain that offers the
// lowest average price for at least one item on the list, in the order
// the chains are first encountered. Ties on an item's minimum include
// every chain sharing it.
func (a *Aggregator) LowestPriceChains(items []*models.ShoppingListItem, products map[string]*types.Product) []types.ChainCode {
	seen := make(map[types.ChainCode]bool)
	var codes []types.ChainCode

	for _, item := range items {
		product := products[item.EAN]
		if product == nil {
			continue
		}

		var min *float64
		for i := range product.Chains {
			avg := product.Chains[i].AvgPrice
			if avg == nil {
				continue
			}
			if min == nil || *avg < *min {
				min = avg
			}
		}
		if min == nil {
			continue
		}

		for i := range product.Chains {
			quote := &product.Chains[i]
			if quote.AvgPrice == nil || *quote.AvgPrice != *min {
				continue
			}
			if !seen[quote.Code] {
				seen[quote.Code] = true
				codes = append(codes, quote.Code)
			}
		}
	}
	return codes
}
