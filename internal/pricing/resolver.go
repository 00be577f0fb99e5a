package pricing

import (
	"strings"

	"github.com/grocery-pricer/internal/types"
)

// Resolution is the priced view of a single product: which chain is
// cheapest, which pinned chain carries it, and the average across all
// chains that quote it.
type Resolution struct {
	Product    *types.Product
	Cheapest   *types.ChainQuote
	Preferred  *types.ChainQuote
	OverallAvg *float64
}

// Empty reports whether the resolution carries no price data at all.
func (r Resolution) Empty() bool {
	return r.Product == nil || len(r.Product.Chains) == 0
}

// EffectiveChain is the quote shown as the item's cheapest chain. A
// pinned chain wins over the globally cheapest one even when the
// pinned quote is dearer.
func (r Resolution) EffectiveChain() *types.ChainQuote {
	if r.Preferred != nil {
		return r.Preferred
	}
	return r.Cheapest
}

// Resolver derives per-item price resolutions from raw product quotes.
type Resolver struct{}

// NewResolver constructs a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve computes the resolution of one product against the user's
// pinned chains. Only quotes with a present average participate; a tie
// on the cheapest chain keeps the first quote encountered.
func (r *Resolver) Resolve(product *types.Product, pinnedNames []string) Resolution {
	res := Resolution{Product: product}
	if product == nil {
		return res
	}

	var sum float64
	var count int
	for i := range product.Chains {
		quote := &product.Chains[i]
		if quote.AvgPrice == nil {
			continue
		}
		sum += *quote.AvgPrice
		count++

		if res.Cheapest == nil || *quote.AvgPrice < *res.Cheapest.AvgPrice {
			res.Cheapest = quote
		}
		if matchesAny(quote.Chain, pinnedNames) &&
			(res.Preferred == nil || *quote.AvgPrice < *res.Preferred.AvgPrice) {
			res.Preferred = quote
		}
	}

	if count > 0 {
		avg := sum / float64(count)
		res.OverallAvg = &avg
	}
	return res
}

// matchesAny reports whether the chain name matches one of the pinned
// names. A match is a case insensitive substring hit in either
// direction, so "Konzum" pins both "KONZUM" and "Konzum maxi".
func matchesAny(chain string, pinned []string) bool {
	lowerChain := strings.ToLower(chain)
	for _, p := range pinned {
		lowerPin := strings.ToLower(strings.TrimSpace(p))
		if lowerPin == "" {
			continue
		}
		if strings.Contains(lowerChain, lowerPin) || strings.Contains(lowerPin, lowerChain) {
			return true
		}
	}
	return false
}
