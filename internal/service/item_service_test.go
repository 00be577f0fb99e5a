package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/types"
)

func newItemServiceForTest() (*ItemService, *mockListRepository, *mockItemRepository) {
	listRepo := newMockListRepository()
	itemRepo := newMockItemRepository()

	now := time.Now().UTC().Add(-time.Hour)
	listRepo.lists["l1"] = &models.ShoppingList{
		ID: "l1", OwnerID: "alice", Title: "Lista", CreatedAt: now, UpdatedAt: now,
	}

	return NewItemService(listRepo, itemRepo), listRepo, itemRepo
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestAddItem(t *testing.T) {
	svc, listRepo, itemRepo := newItemServiceForTest()

	item, err := svc.AddItem(context.Background(), "l1", "alice", &AddItemInput{
		EAN:    "3850100000001",
		Name:   "Mlijeko",
		Amount: 2,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "l1", item.ShoppingListID)
	assert.False(t, item.IsChecked)
	assert.Contains(t, itemRepo.items, item.ID)

	// Item writes bump the list's freshness.
	_, touched := listRepo.touched["l1"]
	assert.True(t, touched)
}

func TestAddItem_RejectsInvalidAmountBeforeAnyWrite(t *testing.T) {
	svc, listRepo, itemRepo := newItemServiceForTest()

	for _, amount := range []int{0, -1, -100} {
		_, err := svc.AddItem(context.Background(), "l1", "alice", &AddItemInput{
			EAN: "3850100000001", Name: "Mlijeko", Amount: amount,
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	}

	assert.Empty(t, itemRepo.items)
	assert.Empty(t, listRepo.touched)
}

func TestAddItem_RejectsEmptyEAN(t *testing.T) {
	svc, _, _ := newItemServiceForTest()

	_, err := svc.AddItem(context.Background(), "l1", "alice", &AddItemInput{
		EAN: "  ", Name: "Mlijeko", Amount: 1,
	})
	require.Error(t, err)
}

func TestAddItem_OnlyOwner(t *testing.T) {
	svc, _, _ := newItemServiceForTest()

	_, err := svc.AddItem(context.Background(), "l1", "bob", &AddItemInput{
		EAN: "3850100000001", Name: "Mlijeko", Amount: 1,
	})
	require.Error(t, err)
}

func TestUpdateItem_CheckFreezesPrices(t *testing.T) {
	svc, _, itemRepo := newItemServiceForTest()

	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 1,
	}

	code := types.ChainKonzum
	updated, err := svc.UpdateItem(context.Background(), "l1", "i1", "alice", &UpdateItemInput{
		IsChecked:  boolPtr(true),
		ChainCode:  &code,
		AvgPrice:   pricePtr(2.00),
		StorePrice: pricePtr(1.80),
	})
	require.NoError(t, err)

	assert.True(t, updated.IsChecked)
	require.NotNil(t, updated.AvgPrice)
	assert.InDelta(t, 2.00, *updated.AvgPrice, 1e-9)
	require.NotNil(t, updated.StorePrice)
	assert.InDelta(t, 1.80, *updated.StorePrice, 1e-9)
}

func TestUpdateItem_RecheckWithoutPricesKeepsFrozenValues(t *testing.T) {
	svc, _, itemRepo := newItemServiceForTest()

	code := types.ChainKonzum
	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 1,
		IsChecked: true, ChainCode: &code,
		AvgPrice: pricePtr(2.00), StorePrice: pricePtr(1.80),
	}

	updated, err := svc.UpdateItem(context.Background(), "l1", "i1", "alice", &UpdateItemInput{
		IsChecked: boolPtr(true),
		Amount:    intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Amount)
	require.NotNil(t, updated.AvgPrice)
	assert.InDelta(t, 2.00, *updated.AvgPrice, 1e-9)
	require.NotNil(t, updated.StorePrice)
	assert.InDelta(t, 1.80, *updated.StorePrice, 1e-9)
	require.NotNil(t, updated.ChainCode)
	assert.Equal(t, types.ChainKonzum, *updated.ChainCode)
}

func TestUpdateItem_UncheckClearsFrozenPrices(t *testing.T) {
	svc, _, itemRepo := newItemServiceForTest()

	code := types.ChainKonzum
	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 1,
		IsChecked: true, ChainCode: &code,
		AvgPrice: pricePtr(2.00), StorePrice: pricePtr(1.80),
	}

	updated, err := svc.UpdateItem(context.Background(), "l1", "i1", "alice", &UpdateItemInput{
		IsChecked: boolPtr(false),
	})
	require.NoError(t, err)

	assert.False(t, updated.IsChecked)
	assert.Nil(t, updated.ChainCode)
	assert.Nil(t, updated.AvgPrice)
	assert.Nil(t, updated.StorePrice)
}

func TestUpdateItem_AmountInvariant(t *testing.T) {
	svc, _, itemRepo := newItemServiceForTest()

	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 2,
	}

	_, err := svc.UpdateItem(context.Background(), "l1", "i1", "alice", &UpdateItemInput{
		Amount: intPtr(0),
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvariantViolation(err))

	// Nothing was written.
	assert.Equal(t, 2, itemRepo.items["i1"].Amount)
}

func TestUpdateItem_WrongList(t *testing.T) {
	svc, listRepo, itemRepo := newItemServiceForTest()

	now := time.Now().UTC()
	listRepo.lists["l2"] = &models.ShoppingList{
		ID: "l2", OwnerID: "alice", Title: "Druga", CreatedAt: now, UpdatedAt: now,
	}
	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 1,
	}

	_, err := svc.UpdateItem(context.Background(), "l2", "i1", "alice", &UpdateItemInput{
		Amount: intPtr(2),
	})
	require.Error(t, err)
}

func TestRemoveItem(t *testing.T) {
	svc, listRepo, itemRepo := newItemServiceForTest()

	itemRepo.items["i1"] = &models.ShoppingListItem{
		ID: "i1", ShoppingListID: "l1", EAN: "A", Name: "Mlijeko", Amount: 1,
	}

	require.NoError(t, svc.RemoveItem(context.Background(), "l1", "i1", "alice"))

	assert.NotNil(t, itemRepo.items["i1"].DeletedAt)
	_, touched := listRepo.touched["l1"]
	assert.True(t, touched)
}
