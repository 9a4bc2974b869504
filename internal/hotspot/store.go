// Package hotspot holds the ordered hotspot collection of the current model.
package hotspot

import (
	"fmt"

	"hotspot-service/internal/models"
)

// Store is the authoritative, insertion-ordered list of hotspots for one
// model session. It is not safe for concurrent use; the session controller
// serializes every access.
type Store struct {
	items []models.Hotspot
	index map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add appends h. Callers must supply a unique ID; a duplicate is a bug in
// the caller and panics.
func (s *Store) Add(h models.Hotspot) {
	if _, exists := s.index[h.ID]; exists {
		panic(fmt.Sprintf("hotspot: duplicate id %q", h.ID))
	}
	s.index[h.ID] = len(s.items)
	s.items = append(s.items, h)
}

// Update applies patch to the hotspot with the given id and returns the
// result. It reports false and leaves the store untouched if id is absent.
func (s *Store) Update(id string, patch models.HotspotPatch) (models.Hotspot, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Hotspot{}, false
	}
	patch.Apply(&s.items[i])
	return s.items[i], true
}

// Remove deletes the hotspot with the given id, reporting whether it existed.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return true
}

// Reset discards every hotspot.
func (s *Store) Reset() {
	s.items = nil
	s.index = make(map[string]int)
}

// Get returns the hotspot with the given id.
func (s *Store) Get(id string) (models.Hotspot, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Hotspot{}, false
	}
	return s.items[i], true
}

// Len returns the number of hotspots.
func (s *Store) Len() int {
	return len(s.items)
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []models.Hotspot {
	out := make([]models.Hotspot, len(s.items))
	copy(out, s.items)
	return out
}
