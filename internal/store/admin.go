package store

import (
	"context"
	"fmt"

	"serverrewards/internal/audit"
	"serverrewards/internal/catalog"
	"serverrewards/internal/model"
	"serverrewards/internal/npcstore"
	"serverrewards/internal/pricing"
	"serverrewards/pkg/apierror"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Products
// =============================================================================

// SaveProduct adds a draft or updates a saved product in the catalog sold at
// npcID and returns its ID.
func (s *Store) SaveProduct(npcID uint64, draft *model.Product) (int, error) {
	if !catalog.HasRequiredFields(draft) {
		return draft.ID, apierror.InvalidField("product", "Fill in every required field before saving")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, doc := s.catalogFor(npcID)
	id, err := cat.Save(draft)
	if err != nil {
		return id, err
	}
	s.markDirty(doc)
	return id, nil
}

// DeleteProduct removes a product from the catalog sold at npcID.
func (s *Store) DeleteProduct(npcID uint64, t model.ProductType, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, doc := s.catalogFor(npcID)
	if err := cat.Delete(t, id); err != nil {
		return err
	}
	s.markDirty(doc)
	return nil
}

// FindProduct returns a copy of a product sold at npcID.
func (s *Store) FindProduct(npcID uint64, t model.ProductType, id int) (*model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, _ := s.catalogFor(npcID)
	return cat.Find(t, id)
}

// =============================================================================
// Points
// =============================================================================

// AddPoints credits a user and notifies them.
func (s *Store) AddPoints(ctx context.Context, user uint64, amount int) (int, error) {
	s.mu.Lock()
	balance, err := s.ledger.Credit(user, amount)
	if err == nil {
		s.markDirty(model.DocBalances)
	}
	s.mu.Unlock()

	record("add_points", err)
	if err != nil {
		return balance, err
	}
	s.audit.Record(audit.CategoryAPI, fmt.Sprintf("added %d RP to %d", amount, user), logrus.Fields{"user": user, "amount": amount})
	s.caps.PointsUpdated(ctx, user, balance)
	return balance, nil
}

// TakePoints debits a user; it fails when the balance cannot cover amount.
func (s *Store) TakePoints(ctx context.Context, user uint64, amount int) (int, error) {
	s.mu.Lock()
	balance, err := s.ledger.Debit(user, amount)
	if err == nil {
		s.markDirty(model.DocBalances)
	}
	s.mu.Unlock()

	record("take_points", err)
	if err != nil {
		return balance, err
	}
	s.audit.Record(audit.CategoryAPI, fmt.Sprintf("took %d RP from %d", amount, user), logrus.Fields{"user": user, "amount": amount})
	s.caps.PointsUpdated(ctx, user, balance)
	return balance, nil
}

// CheckPoints returns a user's balance and whether they have an entry.
func (s *Store) CheckPoints(user uint64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance(user), s.ledger.Has(user)
}

// PointsAction is an admin points command.
type PointsAction string

const (
	PointsAdd   PointsAction = "add"
	PointsTake  PointsAction = "take"
	PointsClear PointsAction = "clear"
	PointsCheck PointsAction = "check"
)

// AdminPointsResult reports the users an admin points command touched.
type AdminPointsResult struct {
	Action   PointsAction   `json:"action"`
	Users    int            `json:"users"`
	Balances map[string]int `json:"balances,omitempty"`
}

// AdminPoints runs an admin points command against one user, or every known
// user when all is set. Take stops at zero; take and clear need an existing
// entry.
func (s *Store) AdminPoints(ctx context.Context, action PointsAction, user uint64, all bool, amount int) (AdminPointsResult, error) {
	s.mu.Lock()
	res, notices, err := s.adminPoints(action, user, all, amount)
	s.mu.Unlock()

	record("admin_points", err)
	if err == nil && action != PointsCheck {
		s.audit.Record(audit.CategoryAPI, fmt.Sprintf("admin %s %d RP", action, amount), logrus.Fields{"user": user, "all": all, "users": res.Users})
	}
	s.send(ctx, notices)
	return res, err
}

func (s *Store) adminPoints(action PointsAction, user uint64, all bool, amount int) (AdminPointsResult, []notice, error) {
	res := AdminPointsResult{Action: action, Balances: make(map[string]int)}
	var users []uint64
	var err error

	switch action {
	case PointsAdd:
		if all {
			users, err = s.ledger.CreditAll(amount)
		} else {
			_, err = s.ledger.Credit(user, amount)
			users = []uint64{user}
		}
	case PointsTake:
		if all {
			users, err = s.ledger.TakeAll(amount)
		} else {
			_, err = s.ledger.Take(user, amount)
			users = []uint64{user}
		}
	case PointsClear:
		if all {
			users = s.ledger.ClearAll()
		} else {
			err = s.ledger.Clear(user)
			users = []uint64{user}
		}
	case PointsCheck:
		if all {
			return res, nil, apierror.BadRequest("check does not accept a wildcard")
		}
		if !s.ledger.Has(user) {
			return res, nil, apierror.NotFound(fmt.Sprintf("%d does not have any RP", user))
		}
		res.Users = 1
		res.Balances[fmt.Sprint(user)] = s.ledger.Balance(user)
		return res, nil, nil
	default:
		return res, nil, apierror.BadRequest(fmt.Sprintf("unknown action %q", action))
	}
	if err != nil {
		return res, nil, err
	}

	s.markDirty(model.DocBalances)
	notices := make([]notice, 0, len(users))
	for _, u := range users {
		bal := s.ledger.Balance(u)
		res.Balances[fmt.Sprint(u)] = bal
		notices = append(notices, notice{user: u, balance: bal, points: true})
	}
	res.Users = len(users)
	return res, notices, nil
}

// =============================================================================
// Sell prices
// =============================================================================

func (s *Store) checkShortname(ctx context.Context, shortname string) error {
	if s.caps.Items == nil {
		return nil
	}
	if _, ok := s.caps.Items.Definition(ctx, shortname); !ok {
		return apierror.NotFound(fmt.Sprintf("%s is not a valid item shortname", shortname))
	}
	return nil
}

// SetSellPrice sets the base price (skin 0) or a skin override.
func (s *Store) SetSellPrice(ctx context.Context, shortname string, skinID uint64, price decimal.Decimal) error {
	if err := s.checkShortname(ctx, shortname); err != nil {
		return err
	}
	if price.IsNegative() {
		return apierror.InvalidAmount("price cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices.SetSkinOverride(shortname, skinID, price)
	s.markDirty(model.DocPrices)
	return nil
}

// SetSkinMultiplier sets the multiplier applied to skinned items without an override.
func (s *Store) SetSkinMultiplier(ctx context.Context, shortname string, multiplier decimal.Decimal) error {
	if err := s.checkShortname(ctx, shortname); err != nil {
		return err
	}
	if multiplier.IsNegative() {
		return apierror.InvalidAmount("multiplier cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices.SetSkinMultiplier(shortname, multiplier)
	s.markDirty(model.DocPrices)
	return nil
}

// SellInfo returns the price entry for shortname.
func (s *Store) SellInfo(ctx context.Context, shortname string) (pricing.Info, error) {
	if err := s.checkShortname(ctx, shortname); err != nil {
		return pricing.Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.prices.Info(shortname)
	if !ok {
		return pricing.Info{}, apierror.NotFound(fmt.Sprintf("%s has no sell price", shortname))
	}
	return info, nil
}

// ReconcileSellPrices adds a zero price for every item definition that has
// none. It reports whether anything was added.
func (s *Store) ReconcileSellPrices(ctx context.Context) bool {
	if s.caps.Items == nil {
		return false
	}
	defs := s.caps.Items.Definitions(ctx)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Shortname)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prices.Reconcile(names) {
		return false
	}
	s.markDirty(model.DocPrices)
	return true
}

// =============================================================================
// NPC stores
// =============================================================================

// AddNpc makes npcID a store using the global navigation.
func (s *Store) AddNpc(npcID uint64) (*npcstore.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.npcs.Add(npcID, s.opts.Navigation)
	if err != nil {
		return nil, err
	}
	s.markDirty(model.DocNpcStores)
	return st.Clone(), nil
}

// RemoveNpc removes the store at npcID.
func (s *Store) RemoveNpc(npcID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.npcs.Remove(npcID); err != nil {
		return err
	}
	s.markDirty(model.DocNpcStores)
	return nil
}

// SetNpcName renames the store at npcID.
func (s *Store) SetNpcName(npcID uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.npcs.SetName(npcID, name); err != nil {
		return err
	}
	s.markDirty(model.DocNpcStores)
	return nil
}

// ToggleNpcNavigation flips one tab of the store at npcID.
func (s *Store) ToggleNpcNavigation(npcID uint64, c model.NavigationCategory) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	on, err := s.npcs.ToggleNavigation(npcID, c)
	if err != nil {
		return false, err
	}
	s.markDirty(model.DocNpcStores)
	return on, nil
}

// ToggleNpcCustom switches the store at npcID between its own products and
// the global catalog.
func (s *Store) ToggleNpcCustom(npcID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	on, err := s.npcs.ToggleCustom(npcID)
	if err != nil {
		return false, err
	}
	s.markDirty(model.DocNpcStores)
	return on, nil
}

// Npc returns a copy of the store at npcID.
func (s *Store) Npc(npcID uint64) (*npcstore.Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.npcs.Get(npcID)
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// NpcSummary is the admin listing entry for an NPC store.
type NpcSummary struct {
	ID          uint64                `json:"id,string"`
	Name        string                `json:"name"`
	CustomStore bool                  `json:"custom_store"`
	Navigation  model.StoreNavigation `json:"navigation"`
	Products    int                   `json:"products"`
}

// Npcs lists every NPC store.
func (s *Store) Npcs() []NpcSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.npcs.IDs()
	out := make([]NpcSummary, 0, len(ids))
	for _, id := range ids {
		st, _ := s.npcs.Get(id)
		out = append(out, NpcSummary{
			ID:          id,
			Name:        st.Name,
			CustomStore: st.CustomStore,
			Navigation:  st.Navigation,
			Products:    st.Products.Count(),
		})
	}
	return out
}
