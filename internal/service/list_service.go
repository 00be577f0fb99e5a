package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/models"
)

const (
	minTitleLength = 3
	maxTitleLength = 100

	// copySuffix marks a duplicated list's title.
	copySuffix = " (Kopija)"
)

// ListRepository interface for shopping list persistence
type ListRepository interface {
	Create(ctx context.Context, list *models.ShoppingList) error
	GetByID(ctx context.Context, id string) (*models.ShoppingList, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*models.ShoppingList, error)
	Update(ctx context.Context, list *models.ShoppingList) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	TouchUpdatedAt(ctx context.Context, id string, at time.Time) error
}

// ListService handles shopping list lifecycle operations
type ListService struct {
	listRepo ListRepository
	itemRepo ItemRepository
}

// NewListService creates a new list service
func NewListService(listRepo ListRepository, itemRepo ItemRepository) *ListService {
	return &ListService{listRepo: listRepo, itemRepo: itemRepo}
}

// CreateListInput represents input for creating a list
type CreateListInput struct {
	OwnerID  string `json:"ownerId"`
	Title    string `json:"title"`
	IsPublic bool   `json:"isPublic"`
}

// UpdateListInput represents a partial update of a list
type UpdateListInput struct {
	Title    *string `json:"title,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// CreateList creates a new shopping list for a user
func (s *ListService) CreateList(ctx context.Context, input *CreateListInput) (*models.ShoppingList, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list := &models.ShoppingList{
		ID:        uuid.New().String(),
		OwnerID:   input.OwnerID,
		Title:     title,
		IsPublic:  input.IsPublic,
		Items:     []*models.ShoppingListItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, errors.NewDatabaseError("create list", err)
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"listId":  list.ID,
		"ownerId": list.OwnerID,
	}).Info("shopping list created")

	return list, nil
}

// GetList returns a list visible to the user. Owners see their own
// lists; everyone sees public ones.
func (s *ListService) GetList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error) {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != userID && !list.IsPublic {
		return nil, errors.NewForbiddenError("list is not public")
	}
	return list, nil
}

// ListsForUser returns all of the user's lists, most recently updated
// first.
func (s *ListService) ListsForUser(ctx context.Context, userID string) ([]*models.ShoppingList, error) {
	lists, err := s.listRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list lists", err)
	}
	return lists, nil
}

// UpdateList applies a partial update to a list owned by the user
func (s *ListService) UpdateList(ctx context.Context, listID string, userID string, input *UpdateListInput) (*models.ShoppingList, error) {
	list, err := s.ownedList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		list.Title = title
	}
	if input.IsPublic != nil {
		list.IsPublic = *input.IsPublic
	}
	list.UpdatedAt = time.Now().UTC()

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, errors.NewDatabaseError("update list", err)
	}
	return list, nil
}

// DeleteList soft deletes a list owned by the user. Reads filter
// deleted lists out; the row stays behind.
func (s *ListService) DeleteList(ctx context.Context, listID string, userID string) error {
	if _, err := s.ownedList(ctx, listID, userID); err != nil {
		return err
	}
	if err := s.listRepo.SoftDelete(ctx, listID, time.Now().UTC()); err != nil {
		return errors.NewDatabaseError("delete list", err)
	}

	logging.FromContext(ctx).WithField("listId", listID).Info("shopping list deleted")
	return nil
}

// CopyList duplicates a visible list into the user's own lists. The
// copy gets fresh item lines: everything unchecked, no frozen prices.
func (s *ListService) CopyList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error) {
	source, err := s.GetList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copied := &models.ShoppingList{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Title:     source.Title + copySuffix,
		IsPublic:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	copied.Items = make([]*models.ShoppingListItem, 0, len(source.Items))
	for _, item := range source.Items {
		copied.Items = append(copied.Items, &models.ShoppingListItem{
			ID:             uuid.New().String(),
			ShoppingListID: copied.ID,
			EAN:            item.EAN,
			Name:           item.Name,
			Brand:          item.Brand,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			Amount:         item.Amount,
			CreatedAt:      now,
		})
	}

	if err := s.listRepo.Create(ctx, copied); err != nil {
		return nil, errors.NewDatabaseError("copy list", err)
	}
	for _, item := range copied.Items {
		if err := s.itemRepo.Create(ctx, item); err != nil {
			return nil, errors.NewDatabaseError("copy list items", err)
		}
	}
	return copied, nil
}

func (s *ListService) ownedList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error) {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != userID {
		return nil, errors.NewForbiddenError("only the owner can modify a list")
	}
	return list, nil
}

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < minTitleLength || len(trimmed) > maxTitleLength {
		return "", errors.NewInvalidParameterError("title",
			"must be between 3 and 100 characters")
	}
	return trimmed, nil
}
