// Package pricing holds sell-back prices for items and their skins.
package pricing

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultSkinMultiplier scales the base price for skinned items without an override.
var DefaultSkinMultiplier = decimal.NewFromFloat(1.5)

// Info is the sell configuration for one item shortname.
type Info struct {
	Price          decimal.Decimal            `json:"Price"`
	SkinMultiplier decimal.Decimal            `json:"SkinMultiplier"`
	SkinOverrides  map[uint64]decimal.Decimal `json:"SkinOverrides"`
}

func newInfo(price decimal.Decimal) *Info {
	return &Info{
		Price:          price,
		SkinMultiplier: DefaultSkinMultiplier,
		SkinOverrides:  make(map[uint64]decimal.Decimal),
	}
}

func (i *Info) clone() Info {
	c := *i
	c.SkinOverrides = make(map[uint64]decimal.Decimal, len(i.SkinOverrides))
	for k, v := range i.SkinOverrides {
		c.SkinOverrides[k] = v
	}
	return c
}

// SellPricing maps shortnames to their sell info. It is not safe for
// concurrent use.
type SellPricing struct {
	items map[string]*Info
}

// New returns an empty price list.
func New() *SellPricing {
	return &SellPricing{items: make(map[string]*Info)}
}

// TryGetSellPrice returns the unit price for a shortname and skin. Skinned
// items use their override when one exists, otherwise the base price scaled
// by the skin multiplier.
func (p *SellPricing) TryGetSellPrice(shortname string, skinID uint64) (decimal.Decimal, bool) {
	info, ok := p.items[shortname]
	if !ok {
		return decimal.Zero, false
	}
	if skinID == 0 {
		return info.Price, true
	}
	if override, ok := info.SkinOverrides[skinID]; ok {
		return override, true
	}
	return info.Price.Mul(info.SkinMultiplier), true
}

// TryAdd registers a shortname at price unless it is already present.
func (p *SellPricing) TryAdd(shortname string, price decimal.Decimal) bool {
	if _, ok := p.items[shortname]; ok {
		return false
	}
	p.items[shortname] = newInfo(price)
	return true
}

// SetBasePrice sets the unskinned price, creating the entry if needed.
func (p *SellPricing) SetBasePrice(shortname string, price decimal.Decimal) {
	p.entry(shortname).Price = price
}

// SetSkinOverride sets the price for one skin. Skin 0 sets the base price.
func (p *SellPricing) SetSkinOverride(shortname string, skinID uint64, price decimal.Decimal) {
	if skinID == 0 {
		p.SetBasePrice(shortname, price)
		return
	}
	p.entry(shortname).SkinOverrides[skinID] = price
}

// SetSkinMultiplier sets the multiplier, creating the entry at price 0 if needed.
func (p *SellPricing) SetSkinMultiplier(shortname string, multiplier decimal.Decimal) {
	p.entry(shortname).SkinMultiplier = multiplier
}

func (p *SellPricing) entry(shortname string) *Info {
	info, ok := p.items[shortname]
	if !ok {
		info = newInfo(decimal.Zero)
		p.items[shortname] = info
	}
	return info
}

// Info returns a copy of the entry for shortname.
func (p *SellPricing) Info(shortname string) (Info, bool) {
	info, ok := p.items[shortname]
	if !ok {
		return Info{}, false
	}
	return info.clone(), true
}

// Reconcile adds every known shortname that is missing, at price 0. It
// reports whether anything was added.
func (p *SellPricing) Reconcile(shortnames []string) bool {
	changed := false
	for _, s := range shortnames {
		if p.TryAdd(s, decimal.Zero) {
			changed = true
		}
	}
	return changed
}

// Shortnames returns every priced shortname in sorted order.
func (p *SellPricing) Shortnames() []string {
	names := make([]string, 0, len(p.items))
	for s := range p.items {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (p *SellPricing) Len() int {
	return len(p.items)
}

// UnitSellPrice scales a unit price by item condition, rounded to cents.
func UnitSellPrice(price decimal.Decimal, condition float64) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(condition)).Round(2)
}

// SaleTotal returns unit × amount rounded to whole points, halves to even.
func SaleTotal(unit decimal.Decimal, amount int) int {
	return int(unit.Mul(decimal.NewFromInt(int64(amount))).RoundBank(0).IntPart())
}

type document struct {
	Items map[string]*Info `json:"Items"`
}

// MarshalJSON encodes {"Items": {...}}.
func (p *SellPricing) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Items: p.items})
}

// UnmarshalJSON replaces the price list.
func (p *SellPricing) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	p.items = make(map[string]*Info, len(doc.Items))
	for name, info := range doc.Items {
		if info == nil {
			continue
		}
		if info.SkinOverrides == nil {
			info.SkinOverrides = make(map[uint64]decimal.Decimal)
		}
		p.items[name] = info
	}
	return nil
}
