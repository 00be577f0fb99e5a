package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocery-pricer/internal/types"
)

func chainAgg(chain string, itemCount int, totalAvg float64) types.ChainAggregate {
	return types.ChainAggregate{
		Chain:     chain,
		Code:      types.NormalizeChainName(chain),
		ItemCount: itemCount,
		TotalAvg:  totalAvg,
	}
}

func TestSort_PinnedChainsFirst(t *testing.T) {
	ranker := NewRanker()

	aggregates := []types.ChainAggregate{
		chainAgg("LIDL", 3, 10.00),
		chainAgg("KONZUM", 1, 50.00),
	}

	ranker.Sort(aggregates, []types.ChainCode{types.ChainKonzum})

	// A pinned chain outranks better coverage and a better price.
	assert.Equal(t, types.ChainKonzum, aggregates[0].Code)
	assert.Equal(t, types.ChainLidl, aggregates[1].Code)
}

func TestSort_CoverageBeforePrice(t *testing.T) {
	ranker := NewRanker()

	aggregates := []types.ChainAggregate{
		chainAgg("SPAR", 2, 5.00),
		chainAgg("TOMMY", 3, 20.00),
	}

	ranker.Sort(aggregates, nil)

	assert.Equal(t, types.ChainTommy, aggregates[0].Code)
}

func TestSort_PriceBreaksEqualCoverage(t *testing.T) {
	ranker := NewRanker()

	aggregates := []types.ChainAggregate{
		chainAgg("SPAR", 2, 8.00),
		chainAgg("TOMMY", 2, 6.00),
	}

	ranker.Sort(aggregates, nil)

	assert.Equal(t, types.ChainTommy, aggregates[0].Code)
}

func TestSort_NameBreaksFullTie(t *testing.T) {
	ranker := NewRanker()

	aggregates := []types.ChainAggregate{
		chainAgg("Tommy", 2, 6.00),
		chainAgg("Konzum", 2, 6.00),
	}

	ranker.Sort(aggregates, nil)

	assert.Equal(t, "Konzum", aggregates[0].Chain)
}

func TestCompare_NameCompareIsCaseInsensitive(t *testing.T) {
	ranker := NewRanker()

	a := chainAgg("konzum", 1, 1.00)
	b := chainAgg("KONZUM", 1, 1.00)

	assert.Equal(t, 0, ranker.Compare(a, b, nil))
}

func TestCompareNames_AccentAndCaseInsensitive(t *testing.T) {
	ranker := NewRanker()

	assert.Equal(t, 0, ranker.CompareNames("Čaj", "caj"))
	assert.Equal(t, 0, ranker.CompareNames("mlijeko", "MLIJEKO"))

	// Š collates next to S, unlike a byte comparison where it would
	// land after Z.
	assert.Less(t, ranker.CompareNames("Šunka", "Tuna"), 0)
}

func TestCompare_TotalOrderProperties(t *testing.T) {
	ranker := NewRanker()

	names := []string{"Konzum", "Lidl", "Spar", "Tommy", "Plodine", "Studenac"}

	genAgg := gopter.CombineGens(
		gen.IntRange(0, len(names)-1),
		gen.IntRange(0, 5),
		gen.Float64Range(0, 100),
	).Map(func(vals []interface{}) types.ChainAggregate {
		return chainAgg(names[vals[0].(int)], vals[1].(int), vals[2].(float64))
	})

	properties := gopter.NewProperties(nil)

	properties.Property("comparator is antisymmetric", prop.ForAll(
		func(a, b types.ChainAggregate) bool {
			ab := ranker.Compare(a, b, nil)
			ba := ranker.Compare(b, a, nil)
			return sign(ab) == -sign(ba)
		},
		genAgg, genAgg,
	))

	properties.Property("comparator is transitive", prop.ForAll(
		func(a, b, c types.ChainAggregate) bool {
			if ranker.Compare(a, b, nil) <= 0 && ranker.Compare(b, c, nil) <= 0 {
				return ranker.Compare(a, c, nil) <= 0
			}
			return true
		},
		genAgg, genAgg, genAgg,
	))

	properties.Property("distinct chains never tie", prop.ForAll(
		func(a, b types.ChainAggregate) bool {
			if a.Chain == b.Chain {
				return true
			}
			return ranker.Compare(a, b, nil) != 0
		},
		genAgg, genAgg,
	))

	properties.TestingRun(t)
}

func TestSort_StableUnderRepetition(t *testing.T) {
	ranker := NewRanker()

	aggregates := []types.ChainAggregate{
		chainAgg("Lidl", 2, 4.00),
		chainAgg("Konzum", 3, 9.00),
		chainAgg("Spar", 2, 3.50),
		chainAgg("Tommy", 3, 7.00),
	}

	ranker.Sort(aggregates, []types.ChainCode{types.ChainSpar})
	first := make([]types.ChainCode, len(aggregates))
	for i, a := range aggregates {
		first[i] = a.Code
	}

	ranker.Sort(aggregates, []types.ChainCode{types.ChainSpar})
	for i, a := range aggregates {
		require.Equal(t, first[i], a.Code)
	}

	assert.Equal(t, types.ChainSpar, first[0])
	assert.Equal(t, types.ChainTommy, first[1])
	assert.Equal(t, types.ChainKonzum, first[2])
	assert.Equal(t, types.ChainLidl, first[3])
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
