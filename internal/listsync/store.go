// Package listsync keeps a local mirror of the user's shopping lists
// and coordinates optimistic writes against the remote backend. Every
// mutation is applied locally first, snapshotted, and rolled back
// exactly to the snapshot when the remote call fails.
package listsync

import (
	"sync"

	"github.com/grocery-pricer/internal/models"
)

// Store is the local mirror of all known lists. Reads hand out deep
// copies; the only way to change stored state is a whole-value swap of
// a list, so a snapshot taken before a mutation stays untouched by it.
type Store struct {
	mu    sync.RWMutex
	lists map[string]*models.ShoppingList
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{lists: make(map[string]*models.ShoppingList)}
}

// Get returns a copy of one list, or nil when unknown.
func (s *Store) Get(listID string) *models.ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if list, ok := s.lists[listID]; ok {
		return list.Clone()
	}
	return nil
}

// All returns copies of every list in insertion order.
func (s *Store) All() []*models.ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.ShoppingList, 0, len(s.order))
	for _, id := range s.order {
		if list, ok := s.lists[id]; ok {
			result = append(result, list.Clone())
		}
	}
	return result
}

// Put stores a copy of the list, inserting or replacing whole.
func (s *Store) Put(list *models.ShoppingList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[list.ID]; !ok {
		s.order = append(s.order, list.ID)
	}
	s.lists[list.ID] = list.Clone()
}

// Remove drops a list from the mirror.
func (s *Store) Remove(listID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[listID]; !ok {
		return
	}
	delete(s.lists, listID)
	for i, id := range s.order {
		if id == listID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ReplaceAll swaps the whole mirror for fresh server state.
func (s *Store) ReplaceAll(lists []*models.ShoppingList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = make(map[string]*models.ShoppingList, len(lists))
	s.order = make([]string, 0, len(lists))
	for _, list := range lists {
		s.lists[list.ID] = list.Clone()
		s.order = append(s.order, list.ID)
	}
}

// Snapshot captures one list for a later rollback. Nil means the list
// did not exist, which Restore honours by removing it again.
func (s *Store) Snapshot(listID string) *models.ShoppingList {
	return s.Get(listID)
}

// Restore puts a list back into its snapshotted state.
func (s *Store) Restore(listID string, snapshot *models.ShoppingList) {
	if snapshot == nil {
		s.Remove(listID)
		return
	}
	s.Put(snapshot)
}

// Rename swaps a list's key, used when a temporary local ID is replaced
// by the server-assigned one.
func (s *Store) Rename(oldID string, list *models.ShoppingList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, oldID)
	s.lists[list.ID] = list.Clone()
	for i, id := range s.order {
		if id == oldID {
			s.order[i] = list.ID
			break
		}
	}
}
