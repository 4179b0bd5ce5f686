// Package store executes purchases, sales, transfers and exchanges against
// the ledger, catalogs, cooldowns and sell prices.
//
// Every mutation happens under one mutex. Calls to external capabilities made
// while holding it are bounded by the caller's context; notifications are
// sent after the lock is released.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"serverrewards/internal/audit"
	"serverrewards/internal/catalog"
	"serverrewards/internal/cooldown"
	"serverrewards/internal/ledger"
	"serverrewards/internal/metrics"
	"serverrewards/internal/model"
	"serverrewards/internal/npcstore"
	"serverrewards/internal/pricing"
	"serverrewards/internal/provider"
	"serverrewards/pkg/apierror"

	"github.com/shopspring/decimal"
)

// Options are the store-wide settings.
type Options struct {
	Navigation   model.StoreNavigation
	ExchangeRate decimal.Decimal
	HideDlc      bool
	OwnedSkins   bool
	NpcOnly      bool
}

// Deps wires a Store.
type Deps struct {
	Providers provider.Set
	Audit     *audit.Logger
	Clock     cooldown.Clock
	Options   Options
}

// Store owns the economy state.
type Store struct {
	mu sync.Mutex

	ledger    *ledger.Ledger
	catalog   *catalog.Catalog
	npcs      *npcstore.Registry
	cooldowns *cooldown.Tracker
	prices    *pricing.SellPricing

	caps  provider.Set
	opts  Options
	audit *audit.Logger
	dirty map[model.DocumentName]bool
}

// New creates an empty store.
func New(deps Deps) *Store {
	opts := deps.Options
	if !opts.ExchangeRate.IsPositive() {
		opts.ExchangeRate = decimal.NewFromInt(1)
	}
	return &Store{
		ledger:    ledger.New(),
		catalog:   catalog.New(),
		npcs:      npcstore.New(),
		cooldowns: cooldown.New(deps.Clock),
		prices:    pricing.New(),
		caps:      deps.Providers,
		opts:      opts,
		audit:     deps.Audit,
		dirty:     make(map[model.DocumentName]bool),
	}
}

// Options returns the store-wide settings.
func (s *Store) Options() Options {
	return s.opts
}

// Providers returns the configured capabilities.
func (s *Store) Providers() provider.Set {
	return s.caps
}

// CatalogEnv returns the lookups used for product field edits.
func (s *Store) CatalogEnv() catalog.Env {
	return catalog.Env{Items: s.caps.Items, Kits: s.caps.Kits}
}

// notice is a notification queued while the lock is held.
type notice struct {
	user    uint64
	balance int
	points  bool
	message string
}

func (s *Store) send(ctx context.Context, notices []notice) {
	for _, n := range notices {
		if n.points {
			s.caps.PointsUpdated(ctx, n.user, n.balance)
		}
		if n.message != "" {
			s.caps.Message(ctx, n.user, n.message)
		}
	}
}

func (s *Store) markDirty(names ...model.DocumentName) {
	for _, n := range names {
		s.dirty[n] = true
	}
}

// catalogFor resolves the catalog sold at npcID. The returned document name is
// the one to mark dirty when that catalog changes.
func (s *Store) catalogFor(npcID uint64) (*catalog.Catalog, model.DocumentName) {
	cat, _, npc := s.npcs.Scope(npcID, s.catalog, s.opts.Navigation)
	if npc != nil && npc.CustomStore {
		return cat, model.DocNpcStores
	}
	return cat, model.DocProducts
}

func record(op string, err error) {
	metrics.RecordOperation(op, apierror.CodeOf(err))
}

// Balance returns the user's point balance.
func (s *Store) Balance(user uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance(user)
}

// CooldownRemaining reports the remaining cooldown of a product in seconds.
func (s *Store) CooldownRemaining(user uint64, productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, remaining := s.cooldowns.HasCooldown(user, productID)
	return int(math.Ceil(remaining.Seconds()))
}

// PruneCooldowns drops expired cooldowns.
func (s *Store) PruneCooldowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.cooldowns.Prune()
	if n > 0 {
		s.markDirty(model.DocCooldowns)
	}
	return n
}

// MarkDirty flags documents for the next save.
func (s *Store) MarkDirty(names ...model.DocumentName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDirty(names...)
}

// Snapshot encodes the dirty documents, or all of them when all is set, and
// clears their dirty flags.
func (s *Store) Snapshot(all bool) (map[model.DocumentName][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[model.DocumentName][]byte)
	for _, name := range model.CurrentDocuments {
		if !all && !s.dirty[name] {
			continue
		}
		data, err := json.Marshal(s.documentFor(name))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		out[name] = data
	}
	for name := range out {
		delete(s.dirty, name)
	}
	return out, nil
}

func (s *Store) documentFor(name model.DocumentName) json.Marshaler {
	switch name {
	case model.DocBalances:
		return s.ledger
	case model.DocNpcStores:
		return s.npcs
	case model.DocProducts:
		return s.catalog
	case model.DocPrices:
		return s.prices
	case model.DocCooldowns:
		return s.cooldowns
	}
	return nil
}

// Restore replaces one document's state from its encoded form.
func (s *Store) Restore(name model.DocumentName, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch name {
	case model.DocBalances:
		l := ledger.New()
		if err = json.Unmarshal(data, l); err == nil {
			s.ledger = l
		}
	case model.DocNpcStores:
		r := npcstore.New()
		if err = json.Unmarshal(data, r); err == nil {
			s.npcs = r
		}
	case model.DocProducts:
		c := catalog.New()
		if err = json.Unmarshal(data, c); err == nil {
			s.catalog = c
		}
	case model.DocPrices:
		p := pricing.New()
		if err = json.Unmarshal(data, p); err == nil {
			s.prices = p
		}
	case model.DocCooldowns:
		err = json.Unmarshal(data, s.cooldowns)
	default:
		return fmt.Errorf("unknown document %s", name)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// Stats summarizes the economy for the admin API.
func (s *Store) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"accounts":        s.ledger.Len(),
		"points_total":    s.ledger.Total(),
		"items":           s.catalog.Len(model.ProductItem),
		"kits":            s.catalog.Len(model.ProductKit),
		"commands":        s.catalog.Len(model.ProductCommand),
		"npc_stores":      s.npcs.Len(),
		"sell_prices":     s.prices.Len(),
		"cooldowns":       s.cooldowns.Len(),
		"dirty_documents": len(s.dirty),
	}
}
