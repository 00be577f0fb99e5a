package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/types"
)

// ItemRepository interface for shopping list item persistence
type ItemRepository interface {
	Create(ctx context.Context, item *models.ShoppingListItem) error
	GetByID(ctx context.Context, id string) (*models.ShoppingListItem, error)
	Update(ctx context.Context, item *models.ShoppingListItem) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// ItemService handles item lines within a shopping list. Every item
// write also bumps the parent list's updatedAt so list ordering and
// sync freshness follow item activity.
type ItemService struct {
	listRepo ListRepository
	itemRepo ItemRepository
}

// NewItemService creates a new item service
func NewItemService(listRepo ListRepository, itemRepo ItemRepository) *ItemService {
	return &ItemService{listRepo: listRepo, itemRepo: itemRepo}
}

// AddItemInput represents input for adding an item to a list
type AddItemInput struct {
	EAN      string  `json:"ean"`
	Name     string  `json:"name"`
	Brand    *string `json:"brand,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Amount   int     `json:"amount"`
}

// UpdateItemInput represents a partial update of an item. Price fields
// only apply together with a check transition.
type UpdateItemInput struct {
	Amount     *int             `json:"amount,omitempty"`
	IsChecked  *bool            `json:"isChecked,omitempty"`
	ChainCode  *types.ChainCode `json:"chainCode,omitempty"`
	AvgPrice   *float64         `json:"avgPrice,omitempty"`
	StorePrice *float64         `json:"storePrice,omitempty"`
}

// AddItem appends an item line to a list owned by the user. An amount
// below 1 is rejected before anything is written.
func (s *ItemService) AddItem(ctx context.Context, listID string, userID string, input *AddItemInput) (*models.ShoppingListItem, error) {
	if input.Amount < 1 {
		return nil, errors.NewInvalidAmountError(input.Amount)
	}
	if strings.TrimSpace(input.EAN) == "" {
		return nil, errors.NewInvalidEANError(input.EAN)
	}

	list, err := s.ownedList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.ShoppingListItem{
		ID:             uuid.New().String(),
		ShoppingListID: list.ID,
		EAN:            strings.TrimSpace(input.EAN),
		Name:           input.Name,
		Brand:          input.Brand,
		Quantity:       input.Quantity,
		Unit:           input.Unit,
		Amount:         input.Amount,
		CreatedAt:      now,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, errors.NewDatabaseError("add item", err)
	}
	if err := s.listRepo.TouchUpdatedAt(ctx, list.ID, now); err != nil {
		return nil, errors.NewDatabaseError("touch list", err)
	}
	return item, nil
}

// UpdateItem applies a partial update to an item.
//
// Checking an item freezes the prices supplied with the transition.
// Re-saving an already checked item without explicit new prices keeps
// the frozen values untouched; unchecking clears them.
func (s *ItemService) UpdateItem(ctx context.Context, listID string, itemID string, userID string, input *UpdateItemInput) (*models.ShoppingListItem, error) {
	if input.Amount != nil && *input.Amount < 1 {
		return nil, errors.NewInvalidAmountError(*input.Amount)
	}

	list, err := s.ownedList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ShoppingListID != list.ID {
		return nil, errors.NewNotFoundError("item", itemID)
	}

	if input.Amount != nil {
		item.Amount = *input.Amount
	}

	if input.IsChecked != nil {
		switch {
		case *input.IsChecked && !item.IsChecked:
			item.IsChecked = true
			item.ChainCode = input.ChainCode
			item.AvgPrice = input.AvgPrice
			item.StorePrice = input.StorePrice
		case !*input.IsChecked && item.IsChecked:
			item.IsChecked = false
			item.ChainCode = nil
			item.AvgPrice = nil
			item.StorePrice = nil
		default:
			// Same checked state: frozen prices change only when the
			// caller explicitly supplies new ones.
			if item.IsChecked && (input.AvgPrice != nil || input.StorePrice != nil) {
				if input.AvgPrice != nil {
					item.AvgPrice = input.AvgPrice
				}
				if input.StorePrice != nil {
					item.StorePrice = input.StorePrice
				}
				if input.ChainCode != nil {
					item.ChainCode = input.ChainCode
				}
			}
		}
	}

	now := time.Now().UTC()
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, errors.NewDatabaseError("update item", err)
	}
	if err := s.listRepo.TouchUpdatedAt(ctx, list.ID, now); err != nil {
		return nil, errors.NewDatabaseError("touch list", err)
	}
	return item, nil
}

// RemoveItem soft deletes an item line
func (s *ItemService) RemoveItem(ctx context.Context, listID string, itemID string, userID string) error {
	list, err := s.ownedList(ctx, listID, userID)
	if err != nil {
		return err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.ShoppingListID != list.ID {
		return errors.NewNotFoundError("item", itemID)
	}

	now := time.Now().UTC()
	if err := s.itemRepo.SoftDelete(ctx, itemID, now); err != nil {
		return errors.NewDatabaseError("remove item", err)
	}
	if err := s.listRepo.TouchUpdatedAt(ctx, list.ID, now); err != nil {
		return errors.NewDatabaseError("touch list", err)
	}
	return nil
}

func (s *ItemService) ownedList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error) {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != userID {
		return nil, errors.NewForbiddenError("only the owner can modify a list")
	}
	return list, nil
}
