package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocery-pricer/internal/types"
)

func pricePtr(v float64) *float64 { return &v }

func quote(chain string, avg float64) types.ChainQuote {
	return types.ChainQuote{
		Chain:    chain,
		Code:     types.NormalizeChainName(chain),
		AvgPrice: pricePtr(avg),
	}
}

func TestResolve_CheapestChain(t *testing.T) {
	resolver := NewResolver()

	product := &types.Product{
		EAN:  "3850100000001",
		Name: "Mlijeko 2.8%",
		Chains: []types.ChainQuote{
			quote("KONZUM", 1.49),
			quote("LIDL", 1.19),
			quote("SPAR", 1.35),
		},
	}

	res := resolver.Resolve(product, nil)

	require.NotNil(t, res.Cheapest)
	assert.Equal(t, "LIDL", res.Cheapest.Chain)
	require.NotNil(t, res.OverallAvg)
	assert.InDelta(t, (1.49+1.19+1.35)/3, *res.OverallAvg, 1e-9)
	assert.Nil(t, res.Preferred)
	assert.Equal(t, "LIDL", res.EffectiveChain().Chain)
}

func TestResolve_PreferredChainWinsOverCheaper(t *testing.T) {
	resolver := NewResolver()

	product := &types.Product{
		EAN:  "3850100000002",
		Name: "Kruh polubijeli",
		Chains: []types.ChainQuote{
			quote("KONZUM", 2.50),
			quote("LIDL", 2.00),
		},
	}

	res := resolver.Resolve(product, []string{"Konzum"})

	require.NotNil(t, res.Cheapest)
	assert.Equal(t, "LIDL", res.Cheapest.Chain)
	require.NotNil(t, res.Preferred)
	assert.Equal(t, "KONZUM", res.Preferred.Chain)
	assert.Equal(t, types.ChainKonzum, res.EffectiveChain().Code)
}

func TestResolve_CheapestPreferredMatchWins(t *testing.T) {
	resolver := NewResolver()

	product := &types.Product{
		EAN:  "3850100000007",
		Name: "Jogurt",
		Chains: []types.ChainQuote{
			quote("KONZUM", 2.50),
			quote("Konzum maxi", 2.00),
		},
	}

	res := resolver.Resolve(product, []string{"Konzum"})

	// Both quotes match the pin; the cheaper one is preferred.
	require.NotNil(t, res.Preferred)
	assert.Equal(t, "Konzum maxi", res.Preferred.Chain)
	assert.InDelta(t, 2.00, *res.Preferred.AvgPrice, 1e-9)
}

func TestResolve_PreferredMatchIsSubstringBothWays(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		name   string
		chain  string
		pinned string
		match  bool
	}{
		{"exact case insensitive", "KONZUM", "konzum", true},
		{"pin is substring of chain", "Konzum maxi", "Konzum", true},
		{"chain is substring of pin", "NTL", "NTL Maloprodaja", true},
		{"no relation", "LIDL", "Konzum", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := &types.Product{
				EAN:    "3850100000003",
				Chains: []types.ChainQuote{quote(tt.chain, 1.00)},
			}
			res := resolver.Resolve(product, []string{tt.pinned})
			if tt.match {
				assert.NotNil(t, res.Preferred)
			} else {
				assert.Nil(t, res.Preferred)
			}
		})
	}
}

func TestResolve_SkipsQuotesWithoutAverage(t *testing.T) {
	resolver := NewResolver()

	product := &types.Product{
		EAN: "3850100000004",
		Chains: []types.ChainQuote{
			{Chain: "KONZUM", Code: types.ChainKonzum},
			quote("SPAR", 3.10),
		},
	}

	res := resolver.Resolve(product, nil)

	require.NotNil(t, res.Cheapest)
	assert.Equal(t, "SPAR", res.Cheapest.Chain)
	require.NotNil(t, res.OverallAvg)
	assert.InDelta(t, 3.10, *res.OverallAvg, 1e-9)
}

func TestResolve_TieKeepsFirstQuote(t *testing.T) {
	resolver := NewResolver()

	product := &types.Product{
		EAN: "3850100000005",
		Chains: []types.ChainQuote{
			quote("TOMMY", 2.20),
			quote("STUDENAC", 2.20),
		},
	}

	res := resolver.Resolve(product, nil)

	require.NotNil(t, res.Cheapest)
	assert.Equal(t, "TOMMY", res.Cheapest.Chain)
}

func TestResolve_NoProduct(t *testing.T) {
	resolver := NewResolver()

	res := resolver.Resolve(nil, []string{"Konzum"})

	assert.True(t, res.Empty())
	assert.Nil(t, res.Cheapest)
	assert.Nil(t, res.OverallAvg)
	assert.Nil(t, res.EffectiveChain())
}
