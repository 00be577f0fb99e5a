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

// ItemRepository handles shopping list item persistence
type ItemRepository struct {
	db *PostgresDB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *PostgresDB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item line
func (r *ItemRepository) Create(ctx context.Context, item *models.ShoppingListItem) error {
	query := `
		INSERT INTO shopping_list_items
			(id, shopping_list_id, ean, name, brand, quantity, unit,
			 amount, is_checked, chain_code, avg_price, store_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		item.ID,
		item.ShoppingListID,
		item.EAN,
		item.Name,
		item.Brand,
		item.Quantity,
		item.Unit,
		item.Amount,
		item.IsChecked,
		item.ChainCode,
		item.AvgPrice,
		item.StorePrice,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create list item: %w", err)
	}
	return nil
}

// GetByID retrieves a live item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.ShoppingListItem, error) {
	query := `
		SELECT id, shopping_list_id, ean, name, brand, quantity, unit,
		       amount, is_checked, chain_code, avg_price, store_price,
		       created_at, deleted_at
		FROM shopping_list_items
		WHERE id = $1 AND deleted_at IS NULL
	`

	var item models.ShoppingListItem
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
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
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NewNotFoundError("item", id)
		}
		return nil, fmt.Errorf("failed to get list item: %w", err)
	}
	return &item, nil
}

// Update persists an item's mutable fields, frozen prices included
func (r *ItemRepository) Update(ctx context.Context, item *models.ShoppingListItem) error {
	query := `
		UPDATE shopping_list_items
		SET amount = $2, is_checked = $3, chain_code = $4,
		    avg_price = $5, store_price = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Pool().Exec(ctx, query,
		item.ID,
		item.Amount,
		item.IsChecked,
		item.ChainCode,
		item.AvgPrice,
		item.StorePrice,
	)
	if err != nil {
		return fmt.Errorf("failed to update list item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("item", item.ID)
	}
	return nil
}

// SoftDelete marks an item deleted without dropping the row
func (r *ItemRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE shopping_list_items
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Pool().Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("item", id)
	}
	return nil
}
