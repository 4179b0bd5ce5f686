package store

import (
	"math"

	"serverrewards/internal/model"
)

// View is a consistent copy of what a session at npcID can see.
type View struct {
	NpcID          uint64
	NpcName        string
	IsNpc          bool
	CustomStore    bool
	Navigation     model.StoreNavigation
	Items          []*model.Product
	Kits           []*model.Product
	Commands       []*model.Product
	ItemCategories []model.ItemCategory
	Balance        int
	Cooldowns      map[int]int
}

// Products returns the list shown under a product category.
func (v View) Products(t model.ProductType) []*model.Product {
	switch t {
	case model.ProductItem:
		return v.Items
	case model.ProductKit:
		return v.Kits
	case model.ProductCommand:
		return v.Commands
	}
	return nil
}

// View copies the catalog, navigation and the user's balance and cooldowns
// for npcID in one critical section.
func (s *Store) View(user, npcID uint64) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, nav, npc := s.npcs.Scope(npcID, s.catalog, s.opts.Navigation)
	v := View{
		NpcID:          npcID,
		Navigation:     nav,
		Items:          cat.List(model.ProductItem),
		Kits:           cat.List(model.ProductKit),
		Commands:       cat.List(model.ProductCommand),
		ItemCategories: cat.ItemCategories(),
		Balance:        s.ledger.Balance(user),
		Cooldowns:      make(map[int]int),
	}
	if npc != nil {
		v.IsNpc = true
		v.NpcName = npc.Name
		v.CustomStore = npc.CustomStore
	}
	for _, list := range [][]*model.Product{v.Items, v.Kits, v.Commands} {
		for _, p := range list {
			if active, remaining := s.cooldowns.HasCooldown(user, p.ID); active {
				v.Cooldowns[p.ID] = int(math.Ceil(remaining.Seconds()))
			}
		}
	}
	return v
}

// IsNpcStore reports whether npcID is a registered store.
func (s *Store) IsNpcStore(npcID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.npcs.Get(npcID)
	return ok
}
