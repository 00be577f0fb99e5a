package service

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/grocery-pricer/internal/types"
)

// Ranker orders chain aggregates for display. The comparator applies
// four tie-breaks in order:
//
//  1. pinned chains before unpinned ones
//  2. higher item coverage first
//  3. lower average total first
//  4. chain name, Croatian collation, accent and case insensitive
//
// The name compare makes the order total: two distinct chains never
// compare equal.
type Ranker struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewRanker creates a Ranker with a Croatian collator.
func NewRanker() *Ranker {
	return &Ranker{
		collator: collate.New(language.Croatian, collate.Loose),
	}
}

// Compare reports the order of a relative to b under the pinned set.
// Negative means a ranks before b.
func (r *Ranker) Compare(a, b types.ChainAggregate, pinned map[types.ChainCode]bool) int {
	aPinned := pinned[a.Code]
	bPinned := pinned[b.Code]
	if aPinned != bPinned {
		if aPinned {
			return -1
		}
		return 1
	}

	if a.ItemCount != b.ItemCount {
		if a.ItemCount > b.ItemCount {
			return -1
		}
		return 1
	}

	if a.TotalAvg != b.TotalAvg {
		if a.TotalAvg < b.TotalAvg {
			return -1
		}
		return 1
	}

	return r.CompareNames(a.Chain, b.Chain)
}

// CompareNames orders two display names under the same collation the
// chain ranking uses.
func (r *Ranker) CompareNames(a, b string) int {
	// The collator keeps internal buffers and is not safe for
	// concurrent use.
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collator.CompareString(a, b)
}

// Sort orders aggregates in place under the pinned set.
func (r *Ranker) Sort(aggregates []types.ChainAggregate, pinnedCodes []types.ChainCode) {
	pinned := make(map[types.ChainCode]bool, len(pinnedCodes))
	for _, code := range pinnedCodes {
		pinned[code] = true
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return r.Compare(aggregates[i], aggregates[j], pinned) < 0
	})
}
