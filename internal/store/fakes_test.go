package store

import (
	"context"
	"time"

	"serverrewards/internal/model"
	"serverrewards/internal/provider"

	"github.com/shopspring/decimal"
)

type fakeFulfiller struct {
	ok       bool
	items    []string
	kits     []string
	commands [][]string
}

func (f *fakeFulfiller) GiveItem(_ context.Context, _ uint64, shortname string, _ int, _ uint64, _ bool) bool {
	if f.ok {
		f.items = append(f.items, shortname)
	}
	return f.ok
}

func (f *fakeFulfiller) GiveKit(_ context.Context, _ uint64, kit string) bool {
	if f.ok {
		f.kits = append(f.kits, kit)
	}
	return f.ok
}

func (f *fakeFulfiller) RunCommands(_ context.Context, _ uint64, cmds []string) bool {
	if f.ok {
		f.commands = append(f.commands, cmds)
	}
	return f.ok
}

type fakeCurrency struct {
	balances   map[uint64]decimal.Decimal
	rejectAll  bool
	deposits   []decimal.Decimal
	withdrawal []decimal.Decimal
}

func newFakeCurrency() *fakeCurrency {
	return &fakeCurrency{balances: make(map[uint64]decimal.Decimal)}
}

func (c *fakeCurrency) Balance(_ context.Context, user uint64) decimal.Decimal {
	return c.balances[user]
}

func (c *fakeCurrency) Deposit(_ context.Context, user uint64, amount decimal.Decimal) bool {
	if c.rejectAll {
		return false
	}
	c.deposits = append(c.deposits, amount)
	c.balances[user] = c.balances[user].Add(amount)
	return true
}

func (c *fakeCurrency) Withdraw(_ context.Context, user uint64, amount decimal.Decimal) bool {
	if c.rejectAll || amount.GreaterThan(c.balances[user]) {
		return false
	}
	c.withdrawal = append(c.withdrawal, amount)
	c.balances[user] = c.balances[user].Sub(amount)
	return true
}

type fakeInventory struct {
	items map[uint64][]model.HeldItem
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{items: make(map[uint64][]model.HeldItem)}
}

func (i *fakeInventory) Items(_ context.Context, user uint64) []model.HeldItem {
	return append([]model.HeldItem(nil), i.items[user]...)
}

func (i *fakeInventory) Find(_ context.Context, user, ref uint64) (model.HeldItem, bool) {
	for _, h := range i.items[user] {
		if h.Ref == ref {
			return h, true
		}
	}
	return model.HeldItem{}, false
}

func (i *fakeInventory) Take(_ context.Context, user, ref uint64, amount int) bool {
	held := i.items[user]
	for idx, h := range held {
		if h.Ref != ref || h.Amount < amount {
			continue
		}
		if h.Amount == amount {
			i.items[user] = append(held[:idx], held[idx+1:]...)
		} else {
			held[idx].Amount -= amount
		}
		return true
	}
	return false
}

type pointsEvent struct {
	user    uint64
	balance int
}

type fakeNotifier struct {
	points   []pointsEvent
	messages map[uint64][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[uint64][]string)}
}

func (n *fakeNotifier) PointsUpdated(_ context.Context, user uint64, balance int) {
	n.points = append(n.points, pointsEvent{user, balance})
}

func (n *fakeNotifier) Message(_ context.Context, user uint64, text string) {
	n.messages[user] = append(n.messages[user], text)
}

type fixture struct {
	store     *Store
	fulfiller *fakeFulfiller
	currency  *fakeCurrency
	inventory *fakeInventory
	notifier  *fakeNotifier
	now       time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture() *fixture {
	f := &fixture{
		fulfiller: &fakeFulfiller{ok: true},
		currency:  newFakeCurrency(),
		inventory: newFakeInventory(),
		notifier:  newFakeNotifier(),
		now:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	f.store = New(Deps{
		Providers: provider.Set{
			Fulfiller: f.fulfiller,
			Currency:  f.currency,
			Inventory: f.inventory,
			Notifier:  f.notifier,
		},
		Clock: func() time.Time { return f.now },
		Options: Options{
			Navigation:   model.DefaultNavigation(),
			ExchangeRate: decimal.NewFromInt(1),
		},
	})
	return f
}

var (
	alice = model.Player{ID: 1, Name: "alice"}
	bob   = model.Player{ID: 2, Name: "bob"}
)

type fakeItems struct {
	defs map[string]model.ItemDefinition
}

func (i *fakeItems) Definition(_ context.Context, shortname string) (model.ItemDefinition, bool) {
	d, ok := i.defs[shortname]
	return d, ok
}

func (i *fakeItems) Definitions(_ context.Context) []model.ItemDefinition {
	out := make([]model.ItemDefinition, 0, len(i.defs))
	for _, d := range i.defs {
		out = append(out, d)
	}
	return out
}

// fakeOwnership refuses the listed item IDs and skins.
type fakeOwnership struct {
	lockedItems map[int]bool
	lockedSkins map[uint64]bool
	calls       int
}

func (o *fakeOwnership) IsOwnedOrFree(_ context.Context, _ uint64, itemID int, skinID uint64) bool {
	o.calls++
	return !o.lockedItems[itemID] && !o.lockedSkins[skinID]
}

// withOwnership rebuilds the fixture's store with item definitions and an
// ownership provider.
func (f *fixture) withOwnership(defs map[string]model.ItemDefinition, own *fakeOwnership) *fixture {
	f.store = New(Deps{
		Providers: provider.Set{
			Fulfiller: f.fulfiller,
			Currency:  f.currency,
			Inventory: f.inventory,
			Notifier:  f.notifier,
			Items:     &fakeItems{defs: defs},
			Ownership: own,
		},
		Clock: func() time.Time { return f.now },
		Options: Options{
			Navigation:   model.DefaultNavigation(),
			ExchangeRate: decimal.NewFromInt(1),
		},
	})
	return f
}
