package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"serverrewards/internal/model"
	"serverrewards/internal/provider"
	"serverrewards/internal/store"
	"serverrewards/pkg/apierror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okFulfiller struct{ items []string }

func (f *okFulfiller) GiveItem(_ context.Context, _ uint64, shortname string, _ int, _ uint64, _ bool) bool {
	f.items = append(f.items, shortname)
	return true
}
func (f *okFulfiller) GiveKit(context.Context, uint64, string) bool       { return true }
func (f *okFulfiller) RunCommands(context.Context, uint64, []string) bool { return true }

type bag struct{ held map[uint64][]model.HeldItem }

func (b *bag) Items(_ context.Context, user uint64) []model.HeldItem { return b.held[user] }
func (b *bag) Find(_ context.Context, user, ref uint64) (model.HeldItem, bool) {
	for _, h := range b.held[user] {
		if h.Ref == ref {
			return h, true
		}
	}
	return model.HeldItem{}, false
}
func (b *bag) Take(_ context.Context, user, ref uint64, amount int) bool {
	for i, h := range b.held[user] {
		if h.Ref == ref && h.Amount >= amount {
			b.held[user][i].Amount -= amount
			if b.held[user][i].Amount == 0 {
				b.held[user] = append(b.held[user][:i], b.held[user][i+1:]...)
			}
			return true
		}
	}
	return false
}

type wallet struct{ balances map[uint64]decimal.Decimal }

func (w *wallet) Balance(_ context.Context, user uint64) decimal.Decimal { return w.balances[user] }
func (w *wallet) Deposit(_ context.Context, user uint64, amount decimal.Decimal) bool {
	w.balances[user] = w.balances[user].Add(amount)
	return true
}
func (w *wallet) Withdraw(_ context.Context, user uint64, amount decimal.Decimal) bool {
	w.balances[user] = w.balances[user].Sub(amount)
	return true
}

var (
	ctx   = context.Background()
	admin = model.Player{ID: 10, Name: "admin", Admin: true}
	alice = model.Player{ID: 1, Name: "alice"}
	bob   = model.Player{ID: 2, Name: "bob"}
)

type env struct {
	store     *store.Store
	manager   *Manager
	fulfiller *okFulfiller
	inventory *bag
}

func newEnv(opts store.Options, withCurrency bool) *env {
	e := &env{fulfiller: &okFulfiller{}, inventory: &bag{held: map[uint64][]model.HeldItem{}}}
	caps := provider.Set{Fulfiller: e.fulfiller, Inventory: e.inventory}
	if withCurrency {
		caps.Currency = &wallet{balances: map[uint64]decimal.Decimal{}}
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.store = store.New(store.Deps{
		Providers: caps,
		Clock:     func() time.Time { return now },
		Options:   opts,
	})
	e.manager = NewManager(e.store)
	return e
}

func defaultEnv() *env {
	return newEnv(store.Options{Navigation: model.DefaultNavigation()}, false)
}

func (e *env) run(t *testing.T, actor model.Player, verb string, args ...string) RenderModel {
	t.Helper()
	rm, err := e.manager.Handle(ctx, actor, Command{Verb: verb, Args: args})
	require.NoError(t, err)
	return rm
}

func errorCode(rm RenderModel) string {
	if rm.Toast == nil || rm.Toast.Kind != ToastError {
		return ""
	}
	return rm.Toast.Code
}

func (e *env) addItem(t *testing.T, name string, cost int) {
	t.Helper()
	e.run(t, admin, "open")
	e.run(t, admin, "admintoggle")
	e.run(t, admin, "navigation", "items")
	e.run(t, admin, "addproduct")
	e.run(t, admin, "setfield", "shortname", name)
	e.run(t, admin, "setfield", "displayname", name)
	rm := e.run(t, admin, "setfield", "cost", strconv.Itoa(cost))
	require.Equal(t, ScreenAddEdit, rm.Screen)
	rm = e.run(t, admin, "saveproduct")
	require.Equal(t, ScreenStore, rm.Screen, "toast: %+v", rm.Toast)
	e.run(t, admin, "admintoggle")
}

func TestHandle_UnknownVerb(t *testing.T) {
	e := defaultEnv()
	_, err := e.manager.Handle(ctx, alice, Command{Verb: "fly"})
	assert.True(t, errors.Is(err, ErrUnknownVerb))
	assert.Zero(t, e.manager.Active())
}

func TestOpen_GlobalStoreCategories(t *testing.T) {
	e := defaultEnv()

	rm := e.run(t, alice, "open")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Equal(t, DefaultTitle, rm.Title)
	assert.Equal(t, []model.NavigationCategory{model.NavSell, model.NavTransfer}, rm.Categories,
		"empty product tabs and exchange without a currency are hidden")
	assert.Equal(t, model.NavSell, rm.Category)

	e.addItem(t, "wood", 5)
	rm = e.run(t, alice, "open")
	assert.Equal(t, model.NavItems, rm.Category)
	require.Len(t, rm.Products, 1)
	assert.Equal(t, "wood", rm.Products[0].DisplayName)
	assert.False(t, rm.Products[0].CanAfford)
}

func TestAdminVerbsRejectedBeforeMutation(t *testing.T) {
	e := defaultEnv()
	e.run(t, alice, "open")

	for _, verb := range []string{"admintoggle", "addproduct", "saveproduct", "deleteproduct", "setfield"} {
		rm := e.run(t, alice, verb, "item", "0")
		assert.Equal(t, apierror.CodeForbidden, errorCode(rm), verb)
		assert.False(t, rm.AdminMode)
		assert.Nil(t, rm.Draft)
	}

	rm := e.run(t, alice, "openselector", "item")
	assert.Equal(t, apierror.CodeForbidden, errorCode(rm))

	rm = e.run(t, admin, "addproduct")
	assert.Equal(t, apierror.CodeForbidden, errorCode(rm), "admins must enable admin mode first")
}

func TestProductEditing(t *testing.T) {
	e := defaultEnv()
	e.run(t, admin, "open")
	e.run(t, admin, "admintoggle")
	e.run(t, admin, "navigation", "items")
	e.run(t, admin, "search", "0", "rifle")

	rm := e.run(t, admin, "addproduct")
	require.Equal(t, ScreenAddEdit, rm.Screen)
	assert.Empty(t, rm.Search, "entering the editor resets the search")
	assert.Equal(t, model.ProductItem, rm.DraftType)
	assert.Equal(t, model.DraftID, rm.Draft.ID)

	rm = e.run(t, admin, "setfield", "cost", "lots")
	assert.Equal(t, apierror.CodeInvalidField, errorCode(rm))
	assert.Equal(t, ScreenAddEdit, rm.Screen)

	e.run(t, admin, "setfield", "cost", "25")
	rm = e.run(t, admin, "saveproduct")
	require.Equal(t, ScreenStore, rm.Screen)
	require.Len(t, rm.Products, 1)
	assert.Equal(t, 25, rm.Products[0].Cost)
	assert.Equal(t, ToastInfo, rm.Toast.Kind)

	rm = e.run(t, admin, "editproduct", "item", "0")
	require.Equal(t, ScreenAddEdit, rm.Screen)
	e.run(t, admin, "setfield", "cost", "30")

	p, _ := e.store.FindProduct(0, model.ProductItem, 0)
	assert.Equal(t, 25, p.Cost, "drafts are invisible until saved")

	rm = e.run(t, admin, "cancelproduct")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Nil(t, rm.Draft)

	rm = e.run(t, admin, "deleteproduct", "item", "0")
	require.Equal(t, ScreenConfirmDelete, rm.Screen)
	assert.Equal(t, "Assault Rifle", rm.ConfirmDelete.Name)

	rm = e.run(t, admin, "confirmdelete", "item", "0")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Empty(t, rm.Products)
}

func TestCommandProductEditing(t *testing.T) {
	e := defaultEnv()
	e.run(t, admin, "open")
	e.run(t, admin, "admintoggle")
	e.run(t, admin, "navigation", "commands")
	e.run(t, admin, "addproduct")
	e.run(t, admin, "setfield", "displayname", "Heal")

	rm := e.run(t, admin, "saveproduct")
	assert.Equal(t, apierror.CodeInvalidField, errorCode(rm), "commands are required")

	e.run(t, admin, "setcommand", "add", "0", "heal", "$player.id")
	rm = e.run(t, admin, "setcommand", "edit", "0", "heal $player.id 100")
	assert.Equal(t, []string{"heal $player.id 100"}, rm.Draft.Command.Commands)

	rm = e.run(t, admin, "saveproduct")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Len(t, rm.Products, 1)
}

func TestPurchaseThroughSession(t *testing.T) {
	e := defaultEnv()
	e.addItem(t, "wood", 30)
	e.run(t, alice, "open")

	rm := e.run(t, alice, "purchase", "item", "0")
	assert.Equal(t, apierror.CodeInsufficientFunds, errorCode(rm))
	assert.Zero(t, rm.Balance)

	_, err := e.store.AddPoints(ctx, alice.ID, 40)
	require.NoError(t, err)
	rm = e.run(t, alice, "purchase", "item", "0")
	require.NotNil(t, rm.Toast)
	assert.Equal(t, ToastInfo, rm.Toast.Kind)
	assert.Equal(t, 10, rm.Balance)
	assert.Equal(t, []string{"wood"}, e.fulfiller.items)
}

func TestToastSequence(t *testing.T) {
	e := defaultEnv()
	e.run(t, alice, "open")

	rm := e.run(t, alice, "purchase", "item", "7")
	require.NotNil(t, rm.Toast)
	first := rm.Toast.Seq

	rm = e.run(t, alice, "purchase", "item", "8")
	require.NotNil(t, rm.Toast)
	second := rm.Toast.Seq
	assert.Greater(t, second, first)

	rm = e.run(t, alice, "closetoast", strconv.Itoa(first))
	assert.NotNil(t, rm.Toast, "a stale sequence number leaves the current toast")

	rm = e.run(t, alice, "closetoast", strconv.Itoa(second))
	assert.Nil(t, rm.Toast)
}

func TestSearchAndItemCategory(t *testing.T) {
	e := defaultEnv()
	e.addItem(t, "wood", 1)
	e.addItem(t, "stones", 1)
	e.run(t, alice, "open")

	rm := e.run(t, alice, "search", "0", "sto")
	require.Len(t, rm.Products, 1)
	assert.Equal(t, "stones", rm.Products[0].DisplayName)

	rm = e.run(t, alice, "search", "0")
	assert.Len(t, rm.Products, 2)

	rm = e.run(t, alice, "itemcategory", "Medical")
	assert.Empty(t, rm.Products)

	rm = e.run(t, alice, "returntostore")
	assert.Equal(t, model.CategoryAll, rm.ItemCategory)
	assert.Len(t, rm.Products, 2)
}

func TestSellThroughSession(t *testing.T) {
	e := defaultEnv()
	require.NoError(t, e.store.SetSellPrice(ctx, "wood", 0, decimal.NewFromInt(3)))
	e.inventory.held[alice.ID] = []model.HeldItem{{Ref: 55, Shortname: "wood", DisplayName: "Wood", Amount: 10}}
	e.run(t, alice, "open")

	rm := e.run(t, alice, "navigation", "sell")
	require.Len(t, rm.Sellable, 1)
	assert.Equal(t, 30, rm.Sellable[0].Total)

	rm = e.run(t, alice, "sell", "55", "4")
	require.Equal(t, ScreenSellConfirm, rm.Screen)
	assert.Equal(t, 12, rm.Sale.Total)

	rm = e.run(t, alice, "cancelsell")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Zero(t, rm.Balance)

	rm = e.run(t, alice, "confirmsell", "55", "4")
	assert.Equal(t, 12, rm.Balance)
	assert.Equal(t, 6, e.inventory.held[alice.ID][0].Amount)
}

func TestTransferThroughSession(t *testing.T) {
	e := defaultEnv()
	_, err := e.store.AddPoints(ctx, alice.ID, 50)
	require.NoError(t, err)
	e.manager.Connect(bob)
	e.run(t, alice, "open")

	rm := e.run(t, alice, "navigation", "transfer")
	require.Equal(t, ScreenTransfer, rm.Screen)

	rm = e.run(t, alice, "confirmtransfer")
	assert.Equal(t, apierror.CodeInvalidAmount, errorCode(rm))

	rm = e.run(t, alice, "openselector", "player")
	require.Equal(t, ScreenSelector, rm.Screen)
	require.Len(t, rm.Selector.Options, 1)
	assert.Equal(t, "bob", rm.Selector.Options[0].Label)

	rm = e.run(t, alice, "select", "player", "2")
	require.Equal(t, ScreenTransfer, rm.Screen)
	assert.Equal(t, "bob", rm.Transfer.TargetName)

	rm = e.run(t, alice, "transfer", "2", "500")
	assert.Equal(t, 50, rm.Transfer.Amount, "amount is clamped to the balance")

	e.run(t, alice, "transfer", "2", "20")
	rm = e.run(t, alice, "confirmtransfer")
	assert.Equal(t, ScreenStore, rm.Screen)
	assert.Equal(t, 30, rm.Balance)
	assert.Equal(t, 20, e.store.Balance(bob.ID))

	rm = e.run(t, alice, "transfer", "99", "5")
	assert.Equal(t, apierror.CodeNoTarget, errorCode(rm))
}

func TestExchangeThroughSession(t *testing.T) {
	e := newEnv(store.Options{Navigation: model.DefaultNavigation(), ExchangeRate: decimal.NewFromInt(2)}, true)
	_, err := e.store.AddPoints(ctx, alice.ID, 10)
	require.NoError(t, err)
	e.run(t, alice, "open")

	rm := e.run(t, alice, "navigation", "exchange")
	require.Equal(t, ScreenExchange, rm.Screen)

	rm = e.run(t, alice, "exchange", "0", "0", "rp", "50")
	assert.Equal(t, 10, rm.Exchange.Points)
	assert.Equal(t, "20", rm.Exchange.PointsValue.String())

	rm = e.run(t, alice, "converttoexternal", "4")
	assert.Equal(t, 6, rm.Balance)
	assert.Equal(t, "8", rm.Exchange.ExternalBalance.String())

	rm = e.run(t, alice, "exchange", "0", "0", "external", "7")
	assert.Equal(t, "6", rm.Exchange.External.String(), "rounded down to a whole point")

	rm = e.run(t, alice, "converttopoints", "6")
	assert.Equal(t, 9, rm.Balance)
}

func TestExchangeUnavailable(t *testing.T) {
	e := defaultEnv()
	e.run(t, alice, "open")
	rm := e.run(t, alice, "converttoexternal", "1")
	assert.Equal(t, apierror.CodeInsufficientFunds, errorCode(rm), "the balance is checked before the provider")

	_, err := e.store.AddPoints(ctx, alice.ID, 5)
	require.NoError(t, err)
	rm = e.run(t, alice, "converttoexternal", "1")
	assert.Equal(t, apierror.CodeProviderUnavailable, errorCode(rm))
}

func TestNpcStoreExitToGame(t *testing.T) {
	e := defaultEnv()
	const npc = 77
	_, err := e.store.AddNpc(npc)
	require.NoError(t, err)
	for _, c := range []model.NavigationCategory{model.NavSell, model.NavExchange} {
		_, err := e.store.ToggleNpcNavigation(npc, c)
		require.NoError(t, err)
	}

	rm := e.run(t, alice, "open", "77")
	assert.Equal(t, ScreenTransfer, rm.Screen)
	assert.True(t, rm.ExitToGame)

	rm = e.run(t, alice, "returntostore")
	assert.Equal(t, ScreenClosed, rm.Screen)
	assert.Zero(t, e.manager.Active())
}

func TestNpcStoreWithoutCategories(t *testing.T) {
	e := defaultEnv()
	const npc = 78
	_, err := e.store.AddNpc(npc)
	require.NoError(t, err)
	for _, c := range []model.NavigationCategory{model.NavSell, model.NavTransfer, model.NavExchange} {
		_, err := e.store.ToggleNpcNavigation(npc, c)
		require.NoError(t, err)
	}

	rm := e.run(t, alice, "open", "78")
	assert.Equal(t, ScreenClosed, rm.Screen)
	assert.Equal(t, apierror.CodeNotFound, errorCode(rm))

	rm = e.run(t, alice, "open", "79")
	assert.Equal(t, apierror.CodeNotFound, errorCode(rm), "unknown NPCs are not stores")
}

func TestNpcOnly(t *testing.T) {
	e := newEnv(store.Options{Navigation: model.DefaultNavigation(), NpcOnly: true}, false)

	rm := e.run(t, alice, "open")
	assert.Equal(t, apierror.CodeForbidden, errorCode(rm))
	assert.Equal(t, ScreenClosed, rm.Screen)

	rm = e.run(t, admin, "open")
	assert.Equal(t, ScreenStore, rm.Screen)
}

func TestCustomNpcTitle(t *testing.T) {
	e := defaultEnv()
	const npc = 90
	_, err := e.store.AddNpc(npc)
	require.NoError(t, err)
	require.NoError(t, e.store.SetNpcName(npc, "Bandit Camp"))
	_, err = e.store.ToggleNpcCustom(npc)
	require.NoError(t, err)

	rm := e.run(t, alice, "open", "90")
	assert.Equal(t, "Bandit Camp", rm.Title)
	assert.Equal(t, uint64(npc), rm.NpcID)
}

func TestManagerLifecycle(t *testing.T) {
	e := defaultEnv()
	e.run(t, alice, "open")
	e.run(t, bob, "open")
	assert.Equal(t, 2, e.manager.Active())

	same := e.manager.Session(alice.ID)
	assert.Same(t, same, e.manager.Session(alice.ID))

	e.manager.Disconnect(alice.ID)
	assert.Equal(t, 1, e.manager.Active())
	_, online := e.manager.Player(alice.ID)
	assert.False(t, online)

	rm := e.run(t, bob, "close")
	assert.Equal(t, ScreenClosed, rm.Screen)
	assert.Zero(t, e.manager.Active())
}

func TestArgs(t *testing.T) {
	a := Args{"12", " x ", "7.5", "tail", "words"}
	assert.Equal(t, 12, a.Int(0, -1))
	assert.Equal(t, -1, a.Int(1, -1))
	assert.Equal(t, "x", a.String(1))
	assert.Equal(t, uint64(12), a.Uint(0))
	assert.Equal(t, "7.5", a.Decimal(2).String())
	assert.Equal(t, "tail words", a.Rest(3))
	assert.Equal(t, "", a.Rest(9))
	assert.False(t, a.Has(5))
	assert.Equal(t, SelectTarget, ParseSelectorKind("3"))
	assert.Equal(t, SelectKit, ParseSelectorKind("kit"))
}

type itemDefs map[string]model.ItemDefinition

func (d itemDefs) Definition(_ context.Context, shortname string) (model.ItemDefinition, bool) {
	def, ok := d[shortname]
	return def, ok
}

func (d itemDefs) Definitions(context.Context) []model.ItemDefinition {
	out := make([]model.ItemDefinition, 0, len(d))
	for _, def := range d {
		out = append(out, def)
	}
	return out
}

// lockedItems refuses ownership of the listed item IDs.
type lockedItems map[int]bool

func (l lockedItems) IsOwnedOrFree(_ context.Context, _ uint64, itemID int, _ uint64) bool {
	return !l[itemID]
}

func newDlcEnv(hideDlc bool) *env {
	e := &env{fulfiller: &okFulfiller{}, inventory: &bag{held: map[uint64][]model.HeldItem{}}}
	e.store = store.New(store.Deps{
		Providers: provider.Set{
			Fulfiller: e.fulfiller,
			Inventory: e.inventory,
			Items: itemDefs{
				"wood":     {ItemID: 1, Shortname: "wood", DisplayName: "Wood"},
				"rifle.ak": {ItemID: 2, Shortname: "rifle.ak", DisplayName: "Assault Rifle"},
			},
			Ownership: lockedItems{2: true},
		},
		Options: store.Options{Navigation: model.DefaultNavigation(), HideDlc: hideDlc},
	})
	e.manager = NewManager(e.store)
	return e
}

func TestDlcLockedProducts(t *testing.T) {
	e := newDlcEnv(false)
	e.addItem(t, "wood", 0)
	e.addItem(t, "rifle.ak", 0)

	rm := e.run(t, alice, "open")
	require.Len(t, rm.Products, 2)
	locked := map[string]bool{}
	for _, p := range rm.Products {
		locked[p.Item.Shortname] = p.DlcLocked
	}
	assert.Equal(t, map[string]bool{"wood": false, "rifle.ak": true}, locked)

	rm = e.run(t, alice, "purchase", "item", "1")
	assert.Equal(t, apierror.CodeForbidden, errorCode(rm))
	assert.Empty(t, e.fulfiller.items)

	rm = e.run(t, alice, "purchase", "item", "0")
	assert.Empty(t, errorCode(rm))
	assert.Equal(t, []string{"wood"}, e.fulfiller.items)
}

func TestDlcLockedProductsHidden(t *testing.T) {
	e := newDlcEnv(true)
	e.addItem(t, "wood", 0)
	e.addItem(t, "rifle.ak", 0)

	rm := e.run(t, alice, "open")
	require.Len(t, rm.Products, 1)
	assert.Equal(t, "wood", rm.Products[0].Item.Shortname)

	e.run(t, admin, "open")
	rm = e.run(t, admin, "admintoggle")
	assert.Len(t, rm.Products, 2, "admin mode lists locked items")
}

func TestCancelVerbsAreIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		actor model.Player
		setup [][]string
		verb  []string
	}{
		{
			name:  "cancelproduct without a draft",
			actor: admin,
			setup: [][]string{{"open"}, {"admintoggle"}, {"search", "0", "sto"}},
			verb:  []string{"cancelproduct"},
		},
		{
			name:  "cancelsell outside the sale screen",
			actor: alice,
			setup: [][]string{{"open"}, {"search", "0", "sto"}},
			verb:  []string{"cancelsell"},
		},
		{
			name:  "closeselector without a selector",
			actor: alice,
			setup: [][]string{{"open"}, {"search", "0", "sto"}},
			verb:  []string{"closeselector", "target"},
		},
		{
			name:  "failed purchase re-renders",
			actor: alice,
			setup: [][]string{{"open"}, {"search", "0", "sto"}},
			verb:  []string{"purchase", "item", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := defaultEnv()
			e.addItem(t, "wood", 5)
			e.addItem(t, "stones", 5)

			var before RenderModel
			for _, step := range tt.setup {
				before = e.run(t, tt.actor, step[0], step[1:]...)
			}
			require.Len(t, before.Products, 1)

			rm := e.run(t, tt.actor, tt.verb[0], tt.verb[1:]...)
			assert.Equal(t, ScreenStore, rm.Screen)
			assert.Equal(t, "sto", rm.Search)
			require.Len(t, rm.Products, 1)
			assert.Equal(t, "stones", rm.Products[0].DisplayName)
		})
	}
}

func TestFiltersResetWhenLeavingEditScreens(t *testing.T) {
	tests := []struct {
		name  string
		steps [][]string
	}{
		{
			name:  "add and cancel",
			steps: [][]string{{"addproduct"}, {"cancelproduct"}},
		},
		{
			name:  "edit and save",
			steps: [][]string{{"editproduct", "item", "1"}, {"saveproduct"}},
		},
		{
			name:  "selector and back",
			steps: [][]string{{"addproduct"}, {"openselector", "item"}, {"search", "item", "wo"}, {"closeselector", "item"}, {"cancelproduct"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := defaultEnv()
			e.addItem(t, "wood", 5)
			e.addItem(t, "stones", 5)
			e.run(t, admin, "open")
			e.run(t, admin, "admintoggle")
			e.run(t, admin, "navigation", "items")
			rm := e.run(t, admin, "itemcategory", "Resources")
			require.Equal(t, model.ItemCategory("Resources"), rm.ItemCategory)
			rm = e.run(t, admin, "search", "0", "sto")
			require.Equal(t, "sto", rm.Search)

			for _, step := range tt.steps {
				rm = e.run(t, admin, step[0], step[1:]...)
				require.Empty(t, errorCode(rm), "%v", step)
			}
			assert.Equal(t, ScreenStore, rm.Screen)
			assert.Empty(t, rm.Search)
			assert.Equal(t, model.CategoryAll, rm.ItemCategory)
			assert.Len(t, rm.Products, 2)
		})
	}
}
