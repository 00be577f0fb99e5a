package models

import (
	"time"

	"github.com/grocery-pricer/internal/types"
)

// PinnedChain is a retail chain the user pinned, ordered by Position.
// The first pinned chain acts as the user's preferred store.
type PinnedChain struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"userId" db:"user_id"`
	Code      types.ChainCode `json:"code" db:"code"`
	Name      string          `json:"name" db:"name"` // display name used for matching against quotes
	Position  int             `json:"position" db:"position"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// PinnedPlace is a city/place the user pinned for store-level price
// display, ordered by Position.
type PinnedPlace struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserPreferences bundles a user's pinned chains and places. The pricing
// engine treats it as read-only input.
type UserPreferences struct {
	UserID       string        `json:"userId"`
	PinnedChains []PinnedChain `json:"pinnedChains"`
	PinnedPlaces []PinnedPlace `json:"pinnedPlaces"`
}

// PinnedChainNames returns the pinned chain display names in pin order.
func (p *UserPreferences) PinnedChainNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.PinnedChains))
	for _, c := range p.PinnedChains {
		names = append(names, c.Name)
	}
	return names
}

// PinnedChainCodes returns the pinned chain codes in pin order.
func (p *UserPreferences) PinnedChainCodes() []types.ChainCode {
	if p == nil {
		return nil
	}
	codes := make([]types.ChainCode, 0, len(p.PinnedChains))
	for _, c := range p.PinnedChains {
		codes = append(codes, c.Code)
	}
	return codes
}
