// Package npcstore maps NPC vendors to their store configuration.
package npcstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"serverrewards/internal/catalog"
	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"
)

// Store is the configuration of one NPC vendor. When CustomStore is set the
// NPC sells its own Products instead of the global catalog.
type Store struct {
	Name        string                `json:"Name"`
	CustomStore bool                  `json:"CustomStore"`
	Navigation  model.StoreNavigation `json:"Navigation"`
	Products    *catalog.Catalog      `json:"Products"`
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := *s
	c.Products = s.Products.Clone()
	return &c
}

// Registry holds every NPC store. It is not safe for concurrent use.
type Registry struct {
	stores map[uint64]*Store
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{stores: make(map[uint64]*Store)}
}

// Add registers npcID as a store using the given navigation.
func (r *Registry) Add(npcID uint64, nav model.StoreNavigation) (*Store, error) {
	if _, ok := r.stores[npcID]; ok {
		return nil, apierror.Conflict(fmt.Sprintf("NPC %d is already a store", npcID))
	}
	s := &Store{
		Name:       "NPC Store",
		Navigation: nav,
		Products:   catalog.New(),
	}
	r.stores[npcID] = s
	return s, nil
}

// Put installs a store wholesale.
func (r *Registry) Put(npcID uint64, s *Store) {
	if s.Products == nil {
		s.Products = catalog.New()
	}
	r.stores[npcID] = s
}

// Remove deletes a store.
func (r *Registry) Remove(npcID uint64) error {
	if _, ok := r.stores[npcID]; !ok {
		return notAStore(npcID)
	}
	delete(r.stores, npcID)
	return nil
}

// Get returns the live store for npcID.
func (r *Registry) Get(npcID uint64) (*Store, bool) {
	s, ok := r.stores[npcID]
	return s, ok
}

// SetName renames a store.
func (r *Registry) SetName(npcID uint64, name string) error {
	s, ok := r.stores[npcID]
	if !ok {
		return notAStore(npcID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apierror.InvalidField("name", "name cannot be empty")
	}
	s.Name = name
	return nil
}

// ToggleNavigation flips one navigation flag and returns its new value.
func (r *Registry) ToggleNavigation(npcID uint64, c model.NavigationCategory) (bool, error) {
	s, ok := r.stores[npcID]
	if !ok {
		return false, notAStore(npcID)
	}
	if c == model.NavNone {
		return false, apierror.InvalidField("category", "unknown navigation category")
	}
	return s.Navigation.Toggle(c), nil
}

// ToggleCustom flips CustomStore and returns its new value.
func (r *Registry) ToggleCustom(npcID uint64) (bool, error) {
	s, ok := r.stores[npcID]
	if !ok {
		return false, notAStore(npcID)
	}
	s.CustomStore = !s.CustomStore
	return s.CustomStore, nil
}

// IDs returns every NPC ID in sorted order.
func (r *Registry) IDs() []uint64 {
	ids := make([]uint64, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of stores.
func (r *Registry) Len() int {
	return len(r.stores)
}

// Scope resolves the catalog and navigation in effect for a session. npcID 0
// means no NPC.
func (r *Registry) Scope(npcID uint64, global *catalog.Catalog, nav model.StoreNavigation) (*catalog.Catalog, model.StoreNavigation, *Store) {
	s, ok := r.stores[npcID]
	if npcID == 0 || !ok {
		return global, nav, nil
	}
	if s.CustomStore {
		return s.Products, s.Navigation, s
	}
	return global, s.Navigation, s
}

// MarshalJSON encodes {"<npcId>": store}.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.stores)
}

// UnmarshalJSON replaces the registry's contents.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var stores map[uint64]*Store
	if err := json.Unmarshal(data, &stores); err != nil {
		return err
	}
	r.stores = make(map[uint64]*Store, len(stores))
	for id, s := range stores {
		if s == nil {
			continue
		}
		r.Put(id, s)
	}
	return nil
}

func notAStore(npcID uint64) error {
	return apierror.NotFound(fmt.Sprintf("NPC %d is not a store", npcID))
}
