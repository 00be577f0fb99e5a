package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/models"
)

// ListRepository handles shopping list persistence
type ListRepository struct {
	db *PostgresDB
}

// NewListRepository creates a new list repository
func NewListRepository(db *PostgresDB) *ListRepository {
	return &ListRepository{db: db}
}

// Create creates a new shopping list
func (r *ListRepository) Create(ctx context.Context, list *models.ShoppingList) error {
	query := `
		INSERT INTO shopping_lists (id, owner_id, title, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		list.ID,
		list.OwnerID,
		list.Title,
		list.IsPublic,
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shopping list: %w", err)
	}
	return nil
}

// GetByID retrieves a list with its live items. Soft deleted lists and
// items are invisible here.
func (r *ListRepository) GetByID(ctx context.Context, id string) (*models.ShoppingList, error) {
	query := `
		SELECT id, owner_id, title, is_public, created_at, updated_at, deleted_at
		FROM shopping_lists
		WHERE id = $1 AND deleted_at IS NULL
	`

	var list models.ShoppingList
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&list.ID,
		&list.OwnerID,
		&list.Title,
		&list.IsPublic,
		&list.CreatedAt,
		&list.UpdatedAt,
		&list.DeletedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NewNotFoundError("list", id)
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	list.Items = items
	return &list, nil
}

// GetByOwner retrieves all of a user's lists, most recently updated
// first, items included.
func (r *ListRepository) GetByOwner(ctx context.Context, ownerID string) ([]*models.ShoppingList, error) {
	query := `
		SELECT id, owner_id, title, is_public, created_at, updated_at, deleted_at
		FROM shopping_lists
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.ShoppingList
	for rows.Next() {
		var list models.ShoppingList
		if err := rows.Scan(
			&list.ID,
			&list.OwnerID,
			&list.Title,
			&list.IsPublic,
			&list.CreatedAt,
			&list.UpdatedAt,
			&list.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		lists = append(lists, &list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}

	for _, list := range lists {
		items, err := r.loadItems(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		list.Items = items
	}
	return lists, nil
}

// Update persists title and visibility changes
func (r *ListRepository) Update(ctx context.Context, list *models.ShoppingList) error {
	query := `
		UPDATE shopping_lists
		SET title = $2, is_public = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Pool().Exec(ctx, query, list.ID, list.Title, list.IsPublic, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update shopping list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("list", list.ID)
	}
	return nil
}

// SoftDelete marks a list deleted without dropping the row
func (r *ListRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE shopping_lists
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Pool().Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("list", id)
	}
	return nil
}

// TouchUpdatedAt bumps a list's freshness timestamp
func (r *ListRepository) TouchUpdatedAt(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE shopping_lists
		SET updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	if _, err := r.db.Pool().Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to touch shopping list: %w", err)
	}
	return nil
}

func (r *ListRepository) loadItems(ctx context.Context, listID string) ([]*models.ShoppingListItem, error) {
	query := `
		SELECT id, shopping_list_id, ean, name, brand, quantity, unit,
		       amount, is_checked, chain_code, avg_price, store_price,
		       created_at, deleted_at
		FROM shopping_list_items
		WHERE shopping_list_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.ShoppingListItem, 0)
	for rows.Next() {
		var item models.ShoppingListItem
		if err := rows.Scan(
			&item.ID,
			&item.ShoppingListID,
			&item.EAN,
			&item.Name,
			&item.Brand,
			&item.Quantity,
			&item.Unit,
			&item.Amount,
			&item.IsChecked,
			&item.ChainCode,
			&item.AvgPrice,
			&item.StorePrice,
			&item.CreatedAt,
			&item.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list items: %w", err)
	}
	return items, nil
}
