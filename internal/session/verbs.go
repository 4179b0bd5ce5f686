package session

import (
	"fmt"

	"serverrewards/internal/catalog"
	"serverrewards/internal/model"
	"serverrewards/internal/store"
	"serverrewards/pkg/apierror"
)

// verb is a command handler. admin verbs need an admin actor; adminMode verbs
// additionally need the session to be in admin mode. Both are checked before
// the handler runs.
type verb struct {
	admin     bool
	adminMode bool
	fn        func(c *call) error
}

var verbs = map[string]verb{
	"open":         {fn: (*call).open},
	"close":        {fn: (*call).close},
	"navigation":   {fn: (*call).navigation},
	"search":       {fn: (*call).searchFor},
	"itemcategory": {fn: (*call).selectItemCategory},
	"returntostore": {fn: func(c *call) error {
		if c.s.exitToGame {
			return c.close()
		}
		c.s.draft = nil
		c.s.resetFilters()
		return c.openStore()
	}},
	"closetoast": {fn: func(c *call) error {
		c.s.closeToast(c.args.Int(0, 0))
		return nil
	}},

	"purchase":    {fn: (*call).purchase},
	"sell":        {fn: (*call).sell},
	"confirmsell": {fn: (*call).confirmSell},
	"cancelsell":  {fn: (*call).cancelSell},

	"admintoggle": {admin: true, fn: func(c *call) error {
		c.s.adminMode = !c.s.adminMode
		c.s.search = ""
		return c.openStore()
	}},
	"addproduct":    {admin: true, adminMode: true, fn: (*call).addProduct},
	"editproduct":   {admin: true, adminMode: true, fn: (*call).editProduct},
	"setfield":      {admin: true, adminMode: true, fn: (*call).setField},
	"setcommand":    {admin: true, adminMode: true, fn: (*call).setCommand},
	"saveproduct":   {admin: true, adminMode: true, fn: (*call).saveProduct},
	"cancelproduct": {admin: true, adminMode: true, fn: (*call).cancelProduct},
	"deleteproduct": {admin: true, adminMode: true, fn: (*call).deleteProduct},
	"confirmdelete": {admin: true, adminMode: true, fn: (*call).confirmDelete},

	"openselector":  {fn: (*call).openSelector},
	"closeselector": {fn: (*call).closeSelector},
	"select":        {fn: (*call).selectOption},

	"transfer":        {fn: (*call).transfer},
	"confirmtransfer": {fn: (*call).confirmTransfer},

	"exchange":          {fn: (*call).exchange},
	"converttoexternal": {fn: (*call).convertToExternal},
	"converttopoints":   {fn: (*call).convertToPoints},
}

// Verbs lists the accepted command verbs.
func Verbs() []string {
	out := make([]string, 0, len(verbs))
	for v := range verbs {
		out = append(out, v)
	}
	return out
}

// =============================================================================
// Navigation
// =============================================================================

func (c *call) open() error {
	npcID := c.args.Uint(0)
	if npcID != 0 && !c.m.store.IsNpcStore(npcID) {
		return apierror.NotFound("That NPC does not run a store")
	}
	if npcID == 0 && c.m.store.Options().NpcOnly && !c.actor.Admin {
		return apierror.Forbidden("The store can only be opened at an NPC")
	}

	s := c.s
	s.npcID = npcID
	s.category = model.NavNone
	s.exitToGame = false
	s.draft = nil
	s.resetFilters()
	s.resetTransfer()
	s.resetExchange()
	return c.openStore()
}

func (c *call) close() error {
	c.s.show(ScreenClosed)
	c.m.remove(c.s)
	return nil
}

// openStore shows the store at the current category. An NPC store without
// anything to buy or sell goes straight to its transfer or exchange screen.
func (c *call) openStore() error {
	s := c.s
	v := c.m.store.View(c.actor.ID, s.npcID)
	available := availableCategories(v, s.adminMode, c.m.store.ExchangeAvailable())

	if v.IsNpc && s.category == model.NavNone {
		if len(available) == 0 {
			_ = c.close()
			return apierror.NotFound("This store has no categories to show")
		}
		shopping := hasCategory(available, model.NavItems) || hasCategory(available, model.NavKits) ||
			hasCategory(available, model.NavCommands) || hasCategory(available, model.NavSell)
		if !shopping {
			s.exitToGame = true
			if hasCategory(available, model.NavTransfer) {
				s.resetTransfer()
				s.show(ScreenTransfer)
				return nil
			}
			s.resetExchange()
			s.show(ScreenExchange)
			return nil
		}
	}

	if len(available) > 0 && (s.category == model.NavNone || !hasCategory(available, s.category) ||
		s.category == model.NavTransfer || s.category == model.NavExchange) {
		s.category = firstStoreCategory(available)
	}
	s.show(ScreenStore)
	return nil
}

// firstStoreCategory picks the first tab that is drawn on the store screen.
func firstStoreCategory(available []model.NavigationCategory) model.NavigationCategory {
	for _, c := range available {
		if c != model.NavTransfer && c != model.NavExchange {
			return c
		}
	}
	return model.NavNone
}

func (c *call) navigation() error {
	s := c.s
	category := model.ParseNavigationCategory(c.args.String(0))
	v := c.m.store.View(c.actor.ID, s.npcID)
	if !hasCategory(availableCategories(v, s.adminMode, c.m.store.ExchangeAvailable()), category) {
		return apierror.NotFound(fmt.Sprintf("The %s category is not available", category))
	}

	switch category {
	case model.NavTransfer:
		s.resetTransfer()
		s.show(ScreenTransfer)
		return nil
	case model.NavExchange:
		s.resetExchange()
		s.show(ScreenExchange)
		return nil
	}
	s.category = category
	return c.openStore()
}

func (c *call) searchFor() error {
	s := c.s
	s.search = c.args.Rest(1)

	switch kind := ParseSelectorKind(c.args.String(0)); kind {
	case SelectItem, SelectKit:
		if !s.adminMode || s.draft.Type() != kind.draftType() {
			return c.openStore()
		}
		s.selector = kind
		s.show(ScreenSelector)
		return nil
	case SelectTarget:
		s.selector = kind
		s.show(ScreenSelector)
		return nil
	}
	return c.openStore()
}

func (c *call) selectItemCategory() error {
	c.s.itemCategory = model.ParseItemCategory(c.args.String(0))
	if c.s.screen == ScreenSelector {
		c.s.show(ScreenSelector)
		return nil
	}
	return c.openStore()
}

// =============================================================================
// Buying and selling
// =============================================================================

func (c *call) purchase() error {
	t := model.ParseProductType(c.args.String(0))
	id := c.args.Int(1, model.DraftID)

	receipt, err := c.m.store.Purchase(c.ctx, c.actor, c.s.npcID, t, id)
	if err != nil {
		return err
	}
	if err := c.openStore(); err != nil {
		return err
	}
	if receipt.Cost > 0 {
		c.info("Purchase", "You purchased %s for %d RP", receipt.Name, receipt.Cost)
	} else {
		c.info("Purchase", "You received %s for free", receipt.Name)
	}
	return nil
}

func (c *call) sell() error {
	ref := c.args.Uint(0)
	if ref == 0 {
		return apierror.NotFound("Select an item to sell")
	}
	amount := max(c.args.Int(1, 1), 1)

	q, err := c.m.store.QuoteSale(c.ctx, c.actor.ID, ref, amount)
	if err != nil {
		return err
	}
	c.s.sale = q
	c.s.show(ScreenSellConfirm)
	return nil
}

// cancelSell leaves the sale confirmation. Anywhere else it only re-renders.
func (c *call) cancelSell() error {
	if c.s.screen != ScreenSellConfirm {
		return nil
	}
	c.s.sale = store.SaleQuote{}
	return c.openStore()
}

func (c *call) confirmSell() error {
	ref := c.args.Uint(0)
	if ref == 0 {
		return apierror.NotFound("Select an item to sell")
	}
	amount := max(c.args.Int(1, 0), 0)

	r, err := c.m.store.Sell(c.ctx, c.actor, ref, amount)
	if err != nil {
		return err
	}
	c.s.sale = store.SaleQuote{}
	if err := c.openStore(); err != nil {
		return err
	}
	c.info("Sold", "You sold %d x %s for %d RP", r.Amount, r.DisplayName, r.Total)
	return nil
}

// =============================================================================
// Product editing
// =============================================================================

func (c *call) addProduct() error {
	s := c.s
	draft, err := catalog.NewDraft(s.category.ProductTypeOf())
	if err != nil {
		return apierror.InvalidField("category", "Select the items, kits or commands category first")
	}
	s.draft = draft
	s.resetFilters()
	s.show(ScreenAddEdit)
	return nil
}

func (c *call) editProduct() error {
	s := c.s
	t := model.ParseProductType(c.args.String(0))
	id := c.args.Int(1, model.DraftID)
	if t == model.ProductNone || id < 0 {
		return apierror.NotFound("product not found")
	}
	p, ok := c.m.store.FindProduct(s.npcID, t, id)
	if !ok {
		return apierror.NotFound(fmt.Sprintf("%s %d not found", t, id))
	}
	s.draft = p
	s.resetFilters()
	s.show(ScreenAddEdit)
	return nil
}

func (c *call) requireDraft() (*model.Product, error) {
	if c.s.draft == nil {
		return nil, apierror.NotFound("No product is being edited")
	}
	return c.s.draft, nil
}

func (c *call) setField() error {
	draft, err := c.requireDraft()
	if err != nil {
		return err
	}
	err = catalog.SetField(c.ctx, c.m.store.CatalogEnv(), draft, c.args.String(0), c.args.Rest(1))
	c.s.show(ScreenAddEdit)
	return err
}

func (c *call) setCommand() error {
	draft, err := c.requireDraft()
	if err != nil {
		return err
	}
	action := catalog.CommandAction(c.args.String(0))
	switch action {
	case "0":
		action = catalog.CommandAdd
	case "1":
		action = catalog.CommandEdit
	case "2":
		action = catalog.CommandRemove
	}
	err = catalog.SetCommand(draft, action, c.args.Int(1, -1), c.args.Rest(2))
	c.s.show(ScreenAddEdit)
	return err
}

func (c *call) saveProduct() error {
	draft, err := c.requireDraft()
	if err != nil {
		return err
	}
	if _, err := c.m.store.SaveProduct(c.s.npcID, draft); err != nil {
		return err
	}
	name := draft.DisplayName
	c.s.draft = nil
	c.s.resetFilters()
	if err := c.openStore(); err != nil {
		return err
	}
	c.info("Saved", "%s has been saved", name)
	return nil
}

func (c *call) cancelProduct() error {
	if c.s.draft == nil && c.s.screen == ScreenStore {
		return nil
	}
	c.s.draft = nil
	c.s.resetFilters()
	return c.openStore()
}

func (c *call) deleteProduct() error {
	t := model.ParseProductType(c.args.String(0))
	id := c.args.Int(1, model.DraftID)
	if t == model.ProductNone || id < 0 {
		return apierror.NotFound("product not found")
	}
	if _, ok := c.m.store.FindProduct(c.s.npcID, t, id); !ok {
		return apierror.NotFound(fmt.Sprintf("%s %d not found", t, id))
	}
	c.s.deleteType, c.s.deleteID = t, id
	c.s.show(ScreenConfirmDelete)
	return nil
}

func (c *call) confirmDelete() error {
	t := model.ParseProductType(c.args.String(0))
	id := c.args.Int(1, model.DraftID)
	if t == model.ProductNone || id < 0 {
		return apierror.NotFound("product not found")
	}
	if err := c.m.store.DeleteProduct(c.s.npcID, t, id); err != nil {
		return err
	}
	if err := c.openStore(); err != nil {
		return err
	}
	c.info("Deleted", "%s %d has been deleted", t, id)
	return nil
}

// =============================================================================
// Selectors
// =============================================================================

// checkSelector enforces that item and kit selectors only edit a matching
// draft in admin mode.
func (c *call) checkSelector(kind SelectorKind) error {
	if !kind.adminOnly() {
		return nil
	}
	if !c.actor.Admin || !c.s.adminMode {
		return apierror.Forbidden("You do not have permission to do that")
	}
	if c.s.draft.Type() != kind.draftType() {
		return apierror.NotFound(fmt.Sprintf("No %s product is being edited", kind))
	}
	return nil
}

func (c *call) openSelector() error {
	kind := ParseSelectorKind(c.args.String(0))
	if kind == SelectStore {
		return nil
	}
	if err := c.checkSelector(kind); err != nil {
		return err
	}
	c.s.selector = kind
	c.s.resetFilters()
	c.s.show(ScreenSelector)
	return nil
}

// leaveSelector returns to the screen the selector was opened from.
func (c *call) leaveSelector(kind SelectorKind) {
	c.s.resetFilters()
	if kind == SelectTarget {
		c.s.show(ScreenTransfer)
		return
	}
	c.s.show(ScreenAddEdit)
}

func (c *call) closeSelector() error {
	kind := ParseSelectorKind(c.args.String(0))
	if kind == SelectStore {
		return nil
	}
	if err := c.checkSelector(kind); err != nil {
		return err
	}
	if c.s.screen != ScreenSelector {
		return nil
	}
	c.leaveSelector(kind)
	return nil
}

func (c *call) selectOption() error {
	kind := ParseSelectorKind(c.args.String(0))
	if err := c.checkSelector(kind); err != nil {
		return err
	}
	value := c.args.Rest(1)

	var err error
	switch kind {
	case SelectItem:
		err = catalog.SetField(c.ctx, c.m.store.CatalogEnv(), c.s.draft, catalog.FieldShortname, value)
	case SelectKit:
		err = catalog.SetField(c.ctx, c.m.store.CatalogEnv(), c.s.draft, catalog.FieldKitName, value)
	case SelectTarget:
		err = c.setTransferTarget(c.args.String(1))
	default:
		return nil
	}
	if err != nil {
		return err
	}
	c.leaveSelector(kind)
	return nil
}

// =============================================================================
// Transfer
// =============================================================================

func (c *call) setTransferTarget(raw string) error {
	c.s.transferTarget = 0
	if raw == "" {
		return nil
	}
	id := Args{raw}.Uint(0)
	p, ok := c.m.Player(id)
	if !ok || p.ID == c.actor.ID {
		return apierror.NoTarget("That player is not online")
	}
	c.s.transferTarget = p.ID
	return nil
}

func (c *call) transfer() error {
	s := c.s
	err := c.setTransferTarget(c.args.String(0))
	if c.args.Has(1) {
		balance := c.m.store.Balance(c.actor.ID)
		s.transferAmount = min(max(c.args.Int(1, 0), 0), balance)
	}
	s.show(ScreenTransfer)
	return err
}

func (c *call) confirmTransfer() error {
	s := c.s
	target, _ := c.m.Player(s.transferTarget)

	r, err := c.m.store.Transfer(c.ctx, c.actor, target, s.transferAmount)
	if err != nil {
		return err
	}
	s.resetTransfer()
	if err := c.openStore(); err != nil {
		return err
	}
	c.info("Transfer", "You sent %d RP to %s", r.Amount, target.Name)
	return nil
}

// =============================================================================
// Exchange
// =============================================================================

func (c *call) exchange() error {
	s := c.s
	if !c.m.store.ExchangeAvailable() {
		return apierror.ProviderUnavailable("Currency exchange is unavailable")
	}
	s.exchangePoints = max(c.args.Int(0, 0), 0)
	s.exchangeExternal = c.args.Decimal(1).Abs()

	switch parseExchangeDirection(c.args.String(2)) {
	case exchangePoints:
		balance := c.m.store.Balance(c.actor.ID)
		s.exchangePoints = min(max(c.args.Int(3, 0), 0), balance)
	case exchangeExternal:
		value := c.args.Decimal(3).Abs()
		available, _ := c.m.store.ExternalBalance(c.ctx, c.actor.ID)
		if value.GreaterThan(available) {
			value = available
		}
		s.exchangeExternal = store.FloorToRate(value, c.m.store.ExchangeRate())
	}
	s.show(ScreenExchange)
	return nil
}

func (c *call) convertToExternal() error {
	r, err := c.m.store.ExchangeToExternal(c.ctx, c.actor, c.args.Int(0, 0))
	if err != nil {
		return err
	}
	c.s.resetExchange()
	c.s.show(ScreenExchange)
	c.info("Exchange", "You exchanged %d RP for %s", r.Points, r.External.StringFixed(2))
	return nil
}

func (c *call) convertToPoints() error {
	r, err := c.m.store.ExchangeToPoints(c.ctx, c.actor, c.args.Decimal(0))
	if err != nil {
		return err
	}
	c.s.resetExchange()
	c.s.show(ScreenExchange)
	c.info("Exchange", "You exchanged %s for %d RP", r.External.StringFixed(2), r.Points)
	return nil
}
