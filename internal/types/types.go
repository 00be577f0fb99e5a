// Package types provides common type definitions for the grocery price
// comparison system.
package types

import "strings"

// ChainCode identifies a retail chain in its canonical backend form.
type ChainCode string

// Known retail chains. Codes mirror the persisted chain identifiers.
const (
	ChainPlodine          ChainCode = "PLODINE"
	ChainTommy            ChainCode = "TOMMY"
	ChainKonzum           ChainCode = "KONZUM"
	ChainLidl             ChainCode = "LIDL"
	ChainStudenac         ChainCode = "STUDENAC"
	ChainSpar             ChainCode = "SPAR"
	ChainKaufland         ChainCode = "KAUFLAND"
	ChainMetro            ChainCode = "METRO"
	ChainEurospin         ChainCode = "EUROSPIN"
	ChainJadrankaTrgovina ChainCode = "JADRANKA_TRGOVINA"
	ChainDM               ChainCode = "DM"
	ChainKTC              ChainCode = "KTC"
	ChainTrgocentar       ChainCode = "TRGOCENTAR"
	ChainVrutak           ChainCode = "VRUTAK"
	ChainZabac            ChainCode = "ZABAC"
	ChainNTL              ChainCode = "NTL"
	ChainRibola           ChainCode = "RIBOLA"
	ChainRoto             ChainCode = "ROTO"
	ChainBoso             ChainCode = "BOSO"
	ChainBrodokomerc      ChainCode = "BRODOKOMERC"
	ChainTrgovinaKrk      ChainCode = "TRGOVINA_KRK"
	ChainLorenco          ChainCode = "LORENCO"
)

// chainSynonyms maps normalized display names that the price API reports
// under a different name than the canonical code. The same physical chain
// must always collapse to one code.
var chainSynonyms = map[string]ChainCode{
	"JADRANKA": ChainJadrankaTrgovina,
}

// NormalizeChainName converts a chain display name reported by the price
// API into its canonical code. Normalization is case-insensitive and
// collapses whitespace runs to underscores, e.g. "Trgovina Krk" ->
// "TRGOVINA_KRK".
func NormalizeChainName(name string) ChainCode {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.Join(strings.Fields(normalized), "_")
	if code, ok := chainSynonyms[normalized]; ok {
		return code
	}
	return ChainCode(normalized)
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ChainQuote holds one chain's price statistics for a single product on a
// given day. Numeric fields are optional: the upstream payload carries
// decimal strings, and a malformed value is absent here, never zero.
type ChainQuote struct {
	Chain    string    `json:"chain"` // display name as reported by the price API
	Code     ChainCode `json:"code"`
	MinPrice *float64  `json:"minPrice,omitempty"`
	AvgPrice *float64  `json:"avgPrice,omitempty"`
	MaxPrice *float64  `json:"maxPrice,omitempty"`
	AsOfDate string    `json:"asOfDate,omitempty"` // YYYY-MM-DD
}

// Product is the price API's view of one product, identified by EAN.
type Product struct {
	EAN      string       `json:"ean"`
	Name     string       `json:"name"`
	Brand    *string      `json:"brand,omitempty"`
	Quantity *string      `json:"quantity,omitempty"`
	Unit     *string      `json:"unit,omitempty"`
	Chains   []ChainQuote `json:"chains"`
}

// StoreInfo identifies a physical store location.
type StoreInfo struct {
	City    string `json:"city"`
	Address string `json:"address"`
}

// StorePrice is a store-level price row for one product.
type StorePrice struct {
	Chain        string    `json:"chain"` // display name as reported by the price API
	Code         ChainCode `json:"code"`
	EAN          string    `json:"ean"`
	Store        StoreInfo `json:"store"`
	RegularPrice *float64  `json:"regularPrice,omitempty"`
	SpecialPrice *float64  `json:"specialPrice,omitempty"`
}

// DisplayPrice returns the price shown to the user, preferring the special
// (promotional) price over the regular one. Nil when neither is present.
func (p *StorePrice) DisplayPrice() *float64 {
	if p.SpecialPrice != nil {
		return p.SpecialPrice
	}
	return p.RegularPrice
}

// ChainAggregate holds one chain's totals across a whole shopping list.
// Totals are quantity-weighted sums; ItemCount is the number of list items
// this chain has a quote for. Always derivable from the list and the
// fetched quotes, never persisted.
type ChainAggregate struct {
	Chain     string    `json:"chain"` // display name, aggregation key
	Code      ChainCode `json:"code"`
	TotalMin  float64   `json:"totalMin"`
	TotalAvg  float64   `json:"totalAvg"`
	TotalMax  float64   `json:"totalMax"`
	ItemCount int       `json:"itemCount"`
}

// ListStats holds derived summary figures for a whole shopping list.
//
// The total estimates always use live market averages so that "what would
// the whole list cost today" stays comparable over time. Spent and saved
// figures use the prices frozen at check time so that past purchases do
// not drift as today's prices move.
type ListStats struct {
	MinTotal                float64 `json:"minTotal"`
	AvgTotal                float64 `json:"avgTotal"`
	MaxTotal                float64 `json:"maxTotal"`
	MinToSpend              float64 `json:"minToSpend"`
	AvgToSpend              float64 `json:"avgToSpend"`
	MaxToSpend              float64 `json:"maxToSpend"`
	MoneySpent              float64 `json:"moneySpent"`
	PotentialCostForChecked float64 `json:"potentialCostForChecked"`
	SavedAmount             float64 `json:"savedAmount"`
	SavedPercentage         float64 `json:"savedPercentage"`
	CheckedCount            int     `json:"checkedCount"`
	TotalCount              int     `json:"totalCount"`
}
