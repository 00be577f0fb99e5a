// Package models defines the persisted entities of the shopping list
// service.
package models

import (
	"time"

	"github.com/grocery-pricer/internal/types"
)

// ShoppingList is a user's shopping list. Items carry unique identities
// within the list. Deleted lists are soft-deleted via DeletedAt.
type ShoppingList struct {
	ID        string              `json:"id" db:"id"`
	OwnerID   string              `json:"ownerId" db:"owner_id"`
	Title     string              `json:"title" db:"title"`
	IsPublic  bool                `json:"isPublic" db:"is_public"`
	Items     []*ShoppingListItem `json:"items"`
	CreatedAt time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time           `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time          `json:"-" db:"deleted_at"`
}

// ShoppingListItem is one line on a shopping list.
//
// AvgPrice and StorePrice are snapshots captured at the moment the item
// was checked and are frozen thereafter: while IsChecked is true they
// reflect prices at check time, not current market prices. For unchecked
// items any displayed price is a live estimate re-derived from the price
// source.
type ShoppingListItem struct {
	ID             string           `json:"id" db:"id"`
	ShoppingListID string           `json:"shoppingListId" db:"shopping_list_id"`
	EAN            string           `json:"ean" db:"ean"`
	Name           string           `json:"name" db:"name"`
	Brand          *string          `json:"brand,omitempty" db:"brand"`
	Quantity       *string          `json:"quantity,omitempty" db:"quantity"`
	Unit           *string          `json:"unit,omitempty" db:"unit"`
	Amount         int              `json:"amount" db:"amount"`
	IsChecked      bool             `json:"isChecked" db:"is_checked"`
	ChainCode      *types.ChainCode `json:"chainCode,omitempty" db:"chain_code"`
	AvgPrice       *float64         `json:"avgPrice,omitempty" db:"avg_price"`
	StorePrice     *float64         `json:"storePrice,omitempty" db:"store_price"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	DeletedAt      *time.Time       `json:"-" db:"deleted_at"`
}

// EffectiveAmount returns the item amount, defaulting to 1 when unset.
func (i *ShoppingListItem) EffectiveAmount() int {
	if i.Amount < 1 {
		return 1
	}
	return i.Amount
}

// Clone returns a deep copy of the item.
func (i *ShoppingListItem) Clone() *ShoppingListItem {
	if i == nil {
		return nil
	}
	dup := *i
	dup.Brand = clonePtr(i.Brand)
	dup.Quantity = clonePtr(i.Quantity)
	dup.Unit = clonePtr(i.Unit)
	dup.ChainCode = clonePtr(i.ChainCode)
	dup.AvgPrice = clonePtr(i.AvgPrice)
	dup.StorePrice = clonePtr(i.StorePrice)
	dup.DeletedAt = clonePtr(i.DeletedAt)
	return &dup
}

// Clone returns a deep copy of the list, including all items.
func (l *ShoppingList) Clone() *ShoppingList {
	if l == nil {
		return nil
	}
	dup := *l
	dup.DeletedAt = clonePtr(l.DeletedAt)
	if l.Items != nil {
		dup.Items = make([]*ShoppingListItem, len(l.Items))
		for idx, item := range l.Items {
			dup.Items[idx] = item.Clone()
		}
	}
	return &dup
}

// FindItem returns the item with the given id, or nil.
func (l *ShoppingList) FindItem(itemID string) *ShoppingListItem {
	for _, item := range l.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
