package listsync

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

// ErrMutationInFlight rejects a second write to a list whose previous
// write has not settled yet. The caller retries after the first one
// resolves; nothing is queued.
var ErrMutationInFlight = &types.ServiceError{
	Code:    "MUTATION_IN_FLIGHT",
	Message: "another change to this list is still in flight",
}

// RemoteAPI is the backend surface the coordinator writes through.
// Implementations map transport failures to the transport error
// category and 4xx rejections to mutation rejections.
type RemoteAPI interface {
	CreateList(ctx context.Context, ownerID string, title string, isPublic bool) (*models.ShoppingList, error)
	UpdateList(ctx context.Context, listID string, title *string, isPublic *bool) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, listID string) error
	AddItem(ctx context.Context, listID string, item *models.ShoppingListItem) (*models.ShoppingListItem, error)
	UpdateItem(ctx context.Context, listID string, itemID string, patch ItemPatch) (*models.ShoppingListItem, error)
	RemoveItem(ctx context.Context, listID string, itemID string) error
}

// ItemPatch is a partial item update sent to the backend.
type ItemPatch struct {
	Amount     *int             `json:"amount,omitempty"`
	IsChecked  *bool            `json:"isChecked,omitempty"`
	ChainCode  *types.ChainCode `json:"chainCode,omitempty"`
	AvgPrice   *float64         `json:"avgPrice,omitempty"`
	StorePrice *float64         `json:"storePrice,omitempty"`
}

// PriceCapture freezes the prices shown at the moment an item is
// checked off.
type PriceCapture struct {
	ChainCode  *types.ChainCode
	AvgPrice   *float64
	StorePrice *float64
}

// CaptureFromResolution builds a capture from the item's current
// resolution: the effective chain's code and average, plus the store
// price actually paid when known.
func CaptureFromResolution(res pricing.Resolution, storePrice *float64) PriceCapture {
	capture := PriceCapture{StorePrice: storePrice}
	if chain := res.EffectiveChain(); chain != nil {
		code := chain.Code
		capture.ChainCode = &code
		capture.AvgPrice = chain.AvgPrice
	}
	if capture.AvgPrice == nil {
		capture.AvgPrice = res.OverallAvg
	}
	return capture
}

// Coordinator owns all optimistic writes against the local mirror.
// Each list has at most one write in flight; the write holds exactly
// one snapshot, and a failure restores the mirror to it.
type Coordinator struct {
	store  *Store
	remote RemoteAPI

	mu       sync.Mutex
	inflight map[string]bool

	// OnMutated, when set, is invoked after every settled successful
	// write, outside any lock. Used to kick off a background refresh.
	OnMutated func(listID string)
}

// NewCoordinator creates a coordinator over the given mirror and
// backend.
func NewCoordinator(store *Store, remote RemoteAPI) *Coordinator {
	return &Coordinator{
		store:    store,
		remote:   remote,
		inflight: make(map[string]bool),
	}
}

// Store exposes the local mirror for reads.
func (c *Coordinator) Store() *Store {
	return c.store
}

func (c *Coordinator) acquire(listID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[listID] {
		return ErrMutationInFlight
	}
	c.inflight[listID] = true
	return nil
}

func (c *Coordinator) release(listID string) {
	c.mu.Lock()
	delete(c.inflight, listID)
	c.mu.Unlock()
}

func (c *Coordinator) notify(listID string) {
	if c.OnMutated != nil {
		go c.OnMutated(listID)
	}
}

// CreateList creates a list optimistically: a temporary list appears in
// the mirror at once and is swapped for the server's version when the
// call settles.
func (c *Coordinator) CreateList(ctx context.Context, ownerID string, title string, isPublic bool) (*models.ShoppingList, error) {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 3 || len(trimmed) > 100 {
		return nil, errors.NewInvalidParameterError("title", "must be between 3 and 100 characters")
	}

	tempID := "local-" + uuid.New().String()
	if err := c.acquire(tempID); err != nil {
		return nil, err
	}
	defer c.release(tempID)

	now := time.Now().UTC()
	temp := &models.ShoppingList{
		ID: tempID, OwnerID: ownerID, Title: trimmed, IsPublic: isPublic,
		Items: []*models.ShoppingListItem{}, CreatedAt: now, UpdatedAt: now,
	}
	c.store.Put(temp)

	created, err := c.remote.CreateList(ctx, ownerID, trimmed, isPublic)
	if err != nil {
		c.store.Remove(tempID)
		return nil, err
	}

	c.store.Rename(tempID, created)
	c.notify(created.ID)
	return created.Clone(), nil
}

// UpdateList applies a title or visibility change optimistically.
func (c *Coordinator) UpdateList(ctx context.Context, listID string, title *string, isPublic *bool) error {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if len(trimmed) < 3 || len(trimmed) > 100 {
			return errors.NewInvalidParameterError("title", "must be between 3 and 100 characters")
		}
		title = &trimmed
	}

	if err := c.acquire(listID); err != nil {
		return err
	}
	defer c.release(listID)

	snapshot := c.store.Snapshot(listID)
	if snapshot == nil {
		return errors.NewNotFoundError("list", listID)
	}

	updated := snapshot.Clone()
	if title != nil {
		updated.Title = *title
	}
	if isPublic != nil {
		updated.IsPublic = *isPublic
	}
	updated.UpdatedAt = time.Now().UTC()
	c.store.Put(updated)

	if _, err := c.remote.UpdateList(ctx, listID, title, isPublic); err != nil {
		c.store.Restore(listID, snapshot)
		return err
	}

	c.notify(listID)
	return nil
}

// DeleteList removes a list optimistically.
func (c *Coordinator) DeleteList(ctx context.Context, listID string) error {
	if err := c.acquire(listID); err != nil {
		return err
	}
	defer c.release(listID)

	snapshot := c.store.Snapshot(listID)
	if snapshot == nil {
		return errors.NewNotFoundError("list", listID)
	}

	c.store.Remove(listID)

	if err := c.remote.DeleteList(ctx, listID); err != nil {
		c.store.Restore(listID, snapshot)
		return err
	}

	c.notify(listID)
	return nil
}

// AddItem appends an item optimistically. An amount below 1 is
// rejected before the snapshot is taken and before any remote call.
func (c *Coordinator) AddItem(ctx context.Context, listID string, item *models.ShoppingListItem) (*models.ShoppingListItem, error) {
	if item.Amount < 1 {
		return nil, errors.NewInvalidAmountError(item.Amount)
	}

	if err := c.acquire(listID); err != nil {
		return nil, err
	}
	defer c.release(listID)

	snapshot := c.store.Snapshot(listID)
	if snapshot == nil {
		return nil, errors.NewNotFoundError("list", listID)
	}

	pending := item.Clone()
	if pending.ID == "" {
		pending.ID = "local-" + uuid.New().String()
	}
	pending.ShoppingListID = listID

	updated := snapshot.Clone()
	updated.Items = append(updated.Items, pending)
	updated.UpdatedAt = time.Now().UTC()
	c.store.Put(updated)

	created, err := c.remote.AddItem(ctx, listID, pending)
	if err != nil {
		c.store.Restore(listID, snapshot)
		return nil, err
	}

	settled := updated.Clone()
	for i, existing := range settled.Items {
		if existing.ID == pending.ID {
			settled.Items[i] = created.Clone()
			break
		}
	}
	c.store.Put(settled)

	c.notify(listID)
	return created.Clone(), nil
}

// UpdateItem applies a partial item change optimistically.
func (c *Coordinator) UpdateItem(ctx context.Context, listID string, itemID string, patch ItemPatch) error {
	if patch.Amount != nil && *patch.Amount < 1 {
		return errors.NewInvalidAmountError(*patch.Amount)
	}

	if err := c.acquire(listID); err != nil {
		return err
	}
	defer c.release(listID)

	snapshot := c.store.Snapshot(listID)
	if snapshot == nil {
		return errors.NewNotFoundError("list", listID)
	}

	updated := snapshot.Clone()
	item := updated.FindItem(itemID)
	if item == nil {
		return errors.NewNotFoundError("item", itemID)
	}
	applyPatch(item, patch)
	updated.UpdatedAt = time.Now().UTC()
	c.store.Put(updated)

	if _, err := c.remote.UpdateItem(ctx, listID, itemID, patch); err != nil {
		c.store.Restore(listID, snapshot)
		return err
	}

	c.notify(listID)
	return nil
}

// applyPatch mirrors the backend's item update rules on the local
// copy, so the optimistic state matches what the server will store.
// Checking freezes the supplied prices, unchecking clears them, and a
// same-state save only touches prices given explicitly.
func applyPatch(item *models.ShoppingListItem, patch ItemPatch) {
	if patch.Amount != nil {
		item.Amount = *patch.Amount
	}
	if patch.IsChecked == nil {
		return
	}

	switch {
	case *patch.IsChecked && !item.IsChecked:
		item.IsChecked = true
		item.ChainCode = patch.ChainCode
		item.AvgPrice = patch.AvgPrice
		item.StorePrice = patch.StorePrice
	case !*patch.IsChecked && item.IsChecked:
		item.IsChecked = false
		item.ChainCode = nil
		item.AvgPrice = nil
		item.StorePrice = nil
	default:
		if item.IsChecked && (patch.AvgPrice != nil || patch.StorePrice != nil) {
			if patch.AvgPrice != nil {
				item.AvgPrice = patch.AvgPrice
			}
			if patch.StorePrice != nil {
				item.StorePrice = patch.StorePrice
			}
			if patch.ChainCode != nil {
				item.ChainCode = patch.ChainCode
			}
		}
	}
}

// CheckItem marks an item bought and freezes the capture's prices onto
// it. Unchecking goes through UpdateItem with IsChecked false.
func (c *Coordinator) CheckItem(ctx context.Context, listID string, itemID string, capture PriceCapture) error {
	checked := true
	return c.UpdateItem(ctx, listID, itemID, ItemPatch{
		IsChecked:  &checked,
		ChainCode:  capture.ChainCode,
		AvgPrice:   capture.AvgPrice,
		StorePrice: capture.StorePrice,
	})
}

// RemoveItem drops an item optimistically.
func (c *Coordinator) RemoveItem(ctx context.Context, listID string, itemID string) error {
	if err := c.acquire(listID); err != nil {
		return err
	}
	defer c.release(listID)

	snapshot := c.store.Snapshot(listID)
	if snapshot == nil {
		return errors.NewNotFoundError("list", listID)
	}

	updated := snapshot.Clone()
	removed := false
	for i, item := range updated.Items {
		if item.ID == itemID {
			updated.Items = append(updated.Items[:i], updated.Items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return errors.NewNotFoundError("item", itemID)
	}
	updated.UpdatedAt = time.Now().UTC()
	c.store.Put(updated)

	if err := c.remote.RemoveItem(ctx, listID, itemID); err != nil {
		c.store.Restore(listID, snapshot)
		return err
	}

	c.notify(listID)
	return nil
}

// CreateListAndAddItem creates a list and puts a first item into it as
// one user action but two remote calls. When the second call fails the
/// created list stays, both remotely and in the mirror: only the item
// is rolled back.
func (c *Coordinator) CreateListAndAddItem(ctx context.Context, ownerID string, title string, item *models.ShoppingListItem) (*models.ShoppingList, error) {
	if item.Amount < 1 {
		return nil, errors.NewInvalidAmountError(item.Amount)
	}

	created, err := c.CreateList(ctx, ownerID, title, false)
	if err != nil {
		return nil, err
	}

	if _, err := c.AddItem(ctx, created.ID, item); err != nil {
		logging.FromContext(ctx).WithFields(map[string]interface{}{
			"listId": created.ID,
		}).WithError(err).Warn("list created but first item failed")
		return c.store.Get(created.ID), err
	}

	return c.store.Get(created.ID), nil
}
