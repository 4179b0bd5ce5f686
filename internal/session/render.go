package session

import (
	"sort"
	"strings"

	"serverrewards/internal/model"
	"serverrewards/internal/store"

	"github.com/shopspring/decimal"
)

// DefaultTitle is shown when the store has no name of its own.
const DefaultTitle = "Server Rewards"

// Screen is the coarse state of a session.
type Screen string

const (
	ScreenClosed        Screen = "closed"
	ScreenStore         Screen = "store"
	ScreenSelector      Screen = "selector"
	ScreenAddEdit       Screen = "addedit"
	ScreenConfirmDelete Screen = "confirmdelete"
	ScreenTransfer      Screen = "transfer"
	ScreenExchange      Screen = "exchange"
	ScreenSellConfirm   Screen = "sellconfirm"
)

// ToastKind colours a toast.
type ToastKind string

const (
	ToastInfo  ToastKind = "info"
	ToastError ToastKind = "error"
)

// Toast is a short-lived notification over the current screen.
type Toast struct {
	Seq     int       `json:"seq"`
	Kind    ToastKind `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// ProductView is a product as listed to one user.
type ProductView struct {
	*model.Product
	Type              model.ProductType `json:"type"`
	CooldownRemaining int               `json:"cooldown_remaining,omitempty"`
	CanAfford         bool              `json:"can_afford"`
	DlcLocked         bool              `json:"dlc_locked,omitempty"`
}

// SelectorOption is one selectable row.
type SelectorOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// SelectorView is the content of a selector screen.
type SelectorView struct {
	Kind    SelectorKind     `json:"kind"`
	Options []SelectorOption `json:"options"`
}

// DeleteView asks to confirm a product deletion.
type DeleteView struct {
	Type model.ProductType `json:"type"`
	ID   int               `json:"id"`
	Name string            `json:"name"`
}

// TransferView is the transfer draft.
type TransferView struct {
	Target     uint64 `json:"target,string,omitempty"`
	TargetName string `json:"target_name,omitempty"`
	Amount     int    `json:"amount"`
}

// ExchangeView is the exchange draft with both conversions precomputed.
type ExchangeView struct {
	Rate            decimal.Decimal `json:"rate"`
	Points          int             `json:"points"`
	PointsValue     decimal.Decimal `json:"points_value"`
	External        decimal.Decimal `json:"external"`
	ExternalValue   int             `json:"external_value"`
	ExternalBalance decimal.Decimal `json:"external_balance"`
}

// RenderModel is everything needed to draw the current screen.
type RenderModel struct {
	Screen         Screen                     `json:"screen"`
	Title          string                     `json:"title,omitempty"`
	NpcID          uint64                     `json:"npc_id,string,omitempty"`
	AdminMode      bool                       `json:"admin_mode,omitempty"`
	ExitToGame     bool                       `json:"exit_to_game,omitempty"`
	Balance        int                        `json:"balance"`
	Categories     []model.NavigationCategory `json:"categories,omitempty"`
	Category       model.NavigationCategory   `json:"category"`
	ItemCategories []model.ItemCategory       `json:"item_categories,omitempty"`
	ItemCategory   model.ItemCategory         `json:"item_category,omitempty"`
	Search         string                     `json:"search,omitempty"`
	Products       []ProductView              `json:"products,omitempty"`
	Sellable       []store.SaleQuote          `json:"sellable,omitempty"`
	Sale           *store.SaleQuote           `json:"sale,omitempty"`
	Draft          *model.Product             `json:"draft,omitempty"`
	DraftType      model.ProductType          `json:"draft_type,omitempty"`
	Selector       *SelectorView              `json:"selector,omitempty"`
	ConfirmDelete  *DeleteView                `json:"confirm_delete,omitempty"`
	Transfer       *TransferView              `json:"transfer,omitempty"`
	Exchange       *ExchangeView              `json:"exchange,omitempty"`
	Toast          *Toast                     `json:"toast,omitempty"`
}

// availableCategories lists the tabs a user can switch to. Product tabs need
// something to show unless the user is editing the store.
func availableCategories(v store.View, admin, exchange bool) []model.NavigationCategory {
	nav := v.Navigation
	var out []model.NavigationCategory
	for _, c := range []model.NavigationCategory{model.NavItems, model.NavKits, model.NavCommands} {
		if (nav.Enabled(c) && len(v.Products(c.ProductTypeOf())) > 0) || admin {
			out = append(out, c)
		}
	}
	if nav.Seller {
		out = append(out, model.NavSell)
	}
	if nav.Transfer {
		out = append(out, model.NavTransfer)
	}
	if nav.Exchange && exchange {
		out = append(out, model.NavExchange)
	}
	return out
}

func hasCategory(list []model.NavigationCategory, c model.NavigationCategory) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// render builds the model for the session's current screen.
func (c *call) render() RenderModel {
	s := c.s
	if s.screen == ScreenClosed {
		return RenderModel{Screen: ScreenClosed, Toast: s.toast}
	}

	v := c.m.store.View(c.actor.ID, s.npcID)
	rm := RenderModel{
		Screen:       s.screen,
		Title:        DefaultTitle,
		NpcID:        s.npcID,
		AdminMode:    s.adminMode,
		ExitToGame:   s.exitToGame,
		Balance:      v.Balance,
		Categories:   availableCategories(v, s.adminMode, c.m.store.ExchangeAvailable()),
		Category:     s.category,
		ItemCategory: s.itemCategory,
		Search:       s.search,
		Toast:        s.toast,
	}
	if v.CustomStore && v.NpcName != "" {
		rm.Title = v.NpcName
	}

	switch s.screen {
	case ScreenStore:
		c.renderStore(&rm, v)
	case ScreenSellConfirm:
		sale := s.sale
		rm.Sale = &sale
	case ScreenAddEdit:
		rm.Draft = s.draft.Clone()
		rm.DraftType = s.draft.Type()
	case ScreenSelector:
		rm.Draft = s.draft.Clone()
		rm.DraftType = s.draft.Type()
		rm.Selector = c.renderSelector()
	case ScreenConfirmDelete:
		rm.ConfirmDelete = &DeleteView{Type: s.deleteType, ID: s.deleteID}
		if p, ok := c.m.store.FindProduct(s.npcID, s.deleteType, s.deleteID); ok {
			rm.ConfirmDelete.Name = p.DisplayName
		}
	case ScreenTransfer:
		rm.Transfer = &TransferView{Target: s.transferTarget, Amount: s.transferAmount}
		if p, ok := c.m.Player(s.transferTarget); ok {
			rm.Transfer.TargetName = p.Name
		}
	case ScreenExchange:
		rate := c.m.store.ExchangeRate()
		ext, _ := c.m.store.ExternalBalance(c.ctx, c.actor.ID)
		rm.Exchange = &ExchangeView{
			Rate:            rate,
			Points:          s.exchangePoints,
			PointsValue:     store.PointsToExternal(s.exchangePoints, rate),
			External:        s.exchangeExternal,
			ExternalValue:   store.ExternalToPoints(s.exchangeExternal, rate),
			ExternalBalance: ext,
		}
	}
	return rm
}

func (c *call) renderStore(rm *RenderModel, v store.View) {
	s := c.s
	if s.category == model.NavSell {
		c.renderSellable(rm)
		return
	}
	t := s.category.ProductTypeOf()
	if t == model.ProductItem {
		rm.ItemCategories = v.ItemCategories
	}
	hideDlc := c.m.store.Options().HideDlc && !s.adminMode
	for _, p := range v.Products(t) {
		if !c.visible(p) {
			continue
		}
		locked := c.m.store.DlcLocked(c.ctx, c.actor.ID, p)
		if locked && hideDlc {
			continue
		}
		rm.Products = append(rm.Products, ProductView{
			Product:           p,
			Type:              t,
			CooldownRemaining: v.Cooldowns[p.ID],
			CanAfford:         p.Cost <= v.Balance,
			DlcLocked:         locked,
		})
	}
	sort.SliceStable(rm.Products, func(i, j int) bool {
		return rm.Products[i].DisplayName < rm.Products[j].DisplayName
	})
}

// visible applies the search, category and permission filters to a listed
// product.
func (c *call) visible(p *model.Product) bool {
	s := c.s
	if p.Permission != "" && !c.actor.Admin && !c.actor.HasPermission(p.Permission) {
		return false
	}
	switch {
	case p.Item != nil:
		if s.itemCategory != model.CategoryAll && p.Item.Category.Normalize() != s.itemCategory {
			return false
		}
		if s.search != "" && !contains(p.DisplayName, s.search) && !contains(p.Item.Shortname, s.search) {
			return false
		}
	case p.Kit != nil:
		if s.search != "" && !contains(p.DisplayName, s.search) && !contains(p.Kit.KitName, s.search) {
			return false
		}
	case p.Command != nil:
		if s.search != "" && !contains(p.DisplayName, s.search) && !contains(p.Command.Description, s.search) {
			return false
		}
	}
	return true
}

func (c *call) definition(shortname string) (model.ItemDefinition, bool) {
	items := c.m.store.Providers().Items
	if items == nil {
		return model.ItemDefinition{}, false
	}
	return items.Definition(c.ctx, shortname)
}

func (c *call) renderSellable(rm *RenderModel) {
	s := c.s
	seen := map[model.ItemCategory]bool{}
	for _, q := range c.m.store.SellableItems(c.ctx, c.actor.ID) {
		category := model.CategoryAll
		if def, ok := c.definition(q.Shortname); ok {
			category = def.Category.Normalize()
		}
		if category != model.CategoryAll && !seen[category] {
			seen[category] = true
			rm.ItemCategories = append(rm.ItemCategories, category)
		}
		if s.itemCategory != model.CategoryAll && category != s.itemCategory {
			continue
		}
		if s.search != "" && !contains(q.DisplayName, s.search) && !contains(q.Shortname, s.search) {
			continue
		}
		rm.Sellable = append(rm.Sellable, q)
	}
	if len(rm.ItemCategories) > 0 {
		sort.Slice(rm.ItemCategories, func(i, j int) bool { return rm.ItemCategories[i] < rm.ItemCategories[j] })
		rm.ItemCategories = append([]model.ItemCategory{model.CategoryAll}, rm.ItemCategories...)
	}
}

func (c *call) renderSelector() *SelectorView {
	s := c.s
	sv := &SelectorView{Kind: s.selector, Options: []SelectorOption{}}
	caps := c.m.store.Providers()

	switch s.selector {
	case SelectItem:
		if caps.Items == nil {
			return sv
		}
		current := ""
		if s.draft != nil && s.draft.Item != nil {
			current = s.draft.Item.Shortname
		}
		for _, d := range caps.Items.Definitions(c.ctx) {
			if s.itemCategory != model.CategoryAll && d.Category.Normalize() != s.itemCategory {
				continue
			}
			if s.search != "" && !contains(d.DisplayName, s.search) && !contains(d.Shortname, s.search) {
				continue
			}
			sv.Options = append(sv.Options, SelectorOption{Value: d.Shortname, Label: d.DisplayName, Selected: d.Shortname == current})
		}
	case SelectKit:
		if caps.Kits == nil {
			return sv
		}
		current := ""
		if s.draft != nil && s.draft.Kit != nil {
			current = s.draft.Kit.KitName
		}
		for _, k := range caps.Kits.Kits(c.ctx) {
			if s.search != "" && !contains(k.Name, s.search) {
				continue
			}
			sv.Options = append(sv.Options, SelectorOption{Value: k.Name, Label: k.Name, Selected: k.Name == current})
		}
	case SelectTarget:
		for _, p := range c.m.Online() {
			if p.ID == c.actor.ID {
				continue
			}
			if s.search != "" && !contains(p.Name, s.search) {
				continue
			}
			sv.Options = append(sv.Options, SelectorOption{
				Value:    formatID(p.ID),
				Label:    p.Name,
				Selected: p.ID == s.transferTarget,
			})
		}
	}
	sort.SliceStable(sv.Options, func(i, j int) bool { return sv.Options[i].Label < sv.Options[j].Label })
	return sv
}
