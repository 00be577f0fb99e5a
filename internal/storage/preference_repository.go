package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grocery-pricer/internal/models"
)

// PreferenceRepository handles pinned chain and place persistence
type PreferenceRepository struct {
	db *PostgresDB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *PostgresDB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetPreferences loads a user's pinned chains and places in pin order.
// A user with no pins gets empty preferences, not an error.
func (r *PreferenceRepository) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{UserID: userID}

	chainQuery := `
		SELECT id, user_id, code, name, position, created_at
		FROM pinned_chains
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Pool().Query(ctx, chainQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pinned chains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pin models.PinnedChain
		if err := rows.Scan(&pin.ID, &pin.UserID, &pin.Code, &pin.Name, &pin.Position, &pin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pinned chain: %w", err)
		}
		prefs.PinnedChains = append(prefs.PinnedChains, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pinned chains: %w", err)
	}

	placeQuery := `
		SELECT id, user_id, name, position, created_at
		FROM pinned_places
		WHERE user_id = $1
		ORDER BY position ASC
	`

	placeRows, err := r.db.Pool().Query(ctx, placeQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pinned places: %w", err)
	}
	defer placeRows.Close()

	for placeRows.Next() {
		var pin models.PinnedPlace
		if err := placeRows.Scan(&pin.ID, &pin.UserID, &pin.Name, &pin.Position, &pin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pinned place: %w", err)
		}
		prefs.PinnedPlaces = append(prefs.PinnedPlaces, pin)
	}
	if err := placeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pinned places: %w", err)
	}

	return prefs, nil
}

// ReplacePinnedChains swaps the user's pinned chains for a new ordered
// set in one transaction.
func (r *PreferenceRepository) ReplacePinnedChains(ctx context.Context, userID string, pins []models.PinnedChain) error {
	return r.replacePins(ctx, userID, "pinned_chains", func(tx pgx.Tx) error {
		for i, pin := range pins {
			id := pin.ID
			if id == "" {
				id = uuid.New().String()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO pinned_chains (id, user_id, code, name, position, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
			`, id, userID, pin.Code, pin.Name, i)
			if err != nil {
				return fmt.Errorf("failed to insert pinned chain: %w", err)
			}
		}
		return nil
	})
}

// ReplacePinnedPlaces swaps the user's pinned places for a new ordered
// set in one transaction.
func (r *PreferenceRepository) ReplacePinnedPlaces(ctx context.Context, userID string, pins []models.PinnedPlace) error {
	return r.replacePins(ctx, userID, "pinned_places", func(tx pgx.Tx) error {
		for i, pin := range pins {
			id := pin.ID
			if id == "" {
				id = uuid.New().String()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO pinned_places (id, user_id, name, position, created_at)
				VALUES ($1, $2, $3, $4, NOW())
			`, id, userID, pin.Name, i)
			if err != nil {
				return fmt.Errorf("failed to insert pinned place: %w", err)
			}
		}
		return nil
	})
}

func (r *PreferenceRepository) replacePins(ctx context.Context, userID string, table string, insert func(tx pgx.Tx) error) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", table), userID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s update: %w", table, err)
	}
	return nil
}
