package service

import (
	"context"
	"sort"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

// PreferenceRepository interface for user preference persistence
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
}

// ItemView is one priced item line of an overview.
type ItemView struct {
	Item          *models.ShoppingListItem `json:"item"`
	Product       *types.Product           `json:"product,omitempty"`
	CheapestChain *types.ChainQuote        `json:"cheapestChain,omitempty"`
	OverallAvg    *float64                 `json:"overallAvg,omitempty"`
	HasPrices     bool                     `json:"hasPrices"`
}

// Overview is the full priced view of one list: every item resolved,
// chains totalled and ranked, and summary stats.
type Overview struct {
	List           *models.ShoppingList   `json:"list"`
	Items          []ItemView             `json:"items"`
	Chains         []types.ChainAggregate `json:"chains"`
	Classification Classification         `json:"classification"`
	Stats          types.ListStats        `json:"stats"`
	// LowestPriceChains are the chains offering the lowest average
	// price for at least one item on the list.
	LowestPriceChains []types.ChainCode `json:"lowestPriceChains,omitempty"`
	// FailedEANs lists items whose quotes could not be loaded. They
	// render as "no price", never as an error.
	FailedEANs []string `json:"failedEans,omitempty"`
}

// OverviewService assembles list overviews by combining live quotes
// with stored list state.
type OverviewService struct {
	lists      *ListService
	prefRepo   PreferenceRepository
	batch      *pricing.BatchFetcher
	resolver   *pricing.Resolver
	aggregator *Aggregator
	ranker     *Ranker
	stats      *StatsCalculator
}

// NewOverviewService creates a new overview service
func NewOverviewService(
	lists *ListService,
	prefRepo PreferenceRepository,
	batch *pricing.BatchFetcher,
) *OverviewService {
	return &OverviewService{
		lists:      lists,
		prefRepo:   prefRepo,
		batch:      batch,
		resolver:   pricing.NewResolver(),
		aggregator: NewAggregator(),
		ranker:     NewRanker(),
		stats:      NewStatsCalculator(),
	}
}

// GetOverview builds the priced overview of one list. Quote failures
// degrade to items without prices; only list access errors propagate.
func (s *OverviewService) GetOverview(ctx context.Context, listID string, userID string) (*Overview, error) {
	list, err := s.lists.GetList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	prefs := s.loadPreferences(ctx, userID)
	pinnedNames := prefs.PinnedChainNames()
	pinnedCodes := prefs.PinnedChainCodes()

	eans := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		eans = append(eans, item.EAN)
	}
	fetched := s.batch.FetchAll(ctx, eans)

	resolutions := make(map[string]pricing.Resolution, len(fetched.Products))
	for ean, product := range fetched.Products {
		resolutions[ean] = s.resolver.Resolve(product, pinnedNames)
	}

	aggregates := s.aggregator.AggregateChains(list.Items, fetched.Products)
	classification := s.aggregator.ClassifyCompleteness(aggregates, len(list.Items))
	s.ranker.Sort(aggregates, pinnedCodes)

	overview := &Overview{
		List:              list,
		Items:             s.buildItemViews(list.Items, resolutions),
		Chains:            aggregates,
		Classification:    classification,
		Stats:             s.stats.Compute(list.Items, resolutions),
		LowestPriceChains: s.aggregator.LowestPriceChains(list.Items, fetched.Products),
		FailedEANs:        fetched.Failed,
	}
	return overview, nil
}

func (s *OverviewService) loadPreferences(ctx context.Context, userID string) *models.UserPreferences {
	prefs, err := s.prefRepo.GetPreferences(ctx, userID)
	if err != nil {
		// Missing preferences never block an overview.
		logging.FromContext(ctx).WithField("userId", userID).
			WithError(err).Warn("loading preferences failed, ranking without pins")
		return &models.UserPreferences{}
	}
	return prefs
}

// buildItemViews resolves each item line and orders them priced-first,
// then by name.
func (s *OverviewService) buildItemViews(items []*models.ShoppingListItem, resolutions map[string]pricing.Resolution) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{Item: item}
		if res, ok := resolutions[item.EAN]; ok && !res.Empty() {
			view.Product = res.Product
			view.CheapestChain = res.EffectiveChain()
			view.OverallAvg = res.OverallAvg
			view.HasPrices = res.OverallAvg != nil
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].HasPrices != views[j].HasPrices {
			return views[i].HasPrices
		}
		return s.ranker.CompareNames(views[i].Item.Name, views[j].Item.Name) < 0
	})
	return views
}
