package model

import "strings"

// NavigationCategory is a top-level store tab.
type NavigationCategory int

const (
	NavNone NavigationCategory = iota
	NavItems
	NavKits
	NavCommands
	NavSell
	NavTransfer
	NavExchange
)

var navigationNames = map[NavigationCategory]string{
	NavNone:     "none",
	NavItems:    "items",
	NavKits:     "kits",
	NavCommands: "commands",
	NavSell:     "sell",
	NavTransfer: "transfer",
	NavExchange: "exchange",
}

func (c NavigationCategory) String() string {
	if name, ok := navigationNames[c]; ok {
		return name
	}
	return "none"
}

// MarshalText renders the category by name.
func (c NavigationCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts a category name.
func (c *NavigationCategory) UnmarshalText(b []byte) error {
	*c = ParseNavigationCategory(string(b))
	return nil
}

// ParseNavigationCategory accepts the category name, a few aliases, or the
// numeric value.
func ParseNavigationCategory(s string) NavigationCategory {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "seller", "sales":
		return NavSell
	case "1":
		return NavItems
	case "2":
		return NavKits
	case "3":
		return NavCommands
	case "4":
		return NavSell
	case "5":
		return NavTransfer
	case "6":
		return NavExchange
	}
	for c, name := range navigationNames {
		if name == s {
			return c
		}
	}
	return NavNone
}

// ProductTypeOf returns the product type listed under a product category.
func (c NavigationCategory) ProductTypeOf() ProductType {
	switch c {
	case NavItems:
		return ProductItem
	case NavKits:
		return ProductKit
	case NavCommands:
		return ProductCommand
	}
	return ProductNone
}

// StoreNavigation enables or disables each store tab.
type StoreNavigation struct {
	Items    bool `json:"Items" yaml:"items"`
	Kits     bool `json:"Kits" yaml:"kits"`
	Commands bool `json:"Commands" yaml:"commands"`
	Exchange bool `json:"Exchange" yaml:"exchange"`
	Transfer bool `json:"Transfer" yaml:"transfer"`
	Seller   bool `json:"Seller" yaml:"seller"`
}

// DefaultNavigation enables every tab.
func DefaultNavigation() StoreNavigation {
	return StoreNavigation{Items: true, Kits: true, Commands: true, Exchange: true, Transfer: true, Seller: true}
}

// Enabled reports whether the tab for c is switched on.
func (n StoreNavigation) Enabled(c NavigationCategory) bool {
	switch c {
	case NavItems:
		return n.Items
	case NavKits:
		return n.Kits
	case NavCommands:
		return n.Commands
	case NavSell:
		return n.Seller
	case NavTransfer:
		return n.Transfer
	case NavExchange:
		return n.Exchange
	}
	return false
}

// Toggle flips the flag for c and returns its new value. Unknown categories
// are left alone and report false.
func (n *StoreNavigation) Toggle(c NavigationCategory) bool {
	var flag *bool
	switch c {
	case NavItems:
		flag = &n.Items
	case NavKits:
		flag = &n.Kits
	case NavCommands:
		flag = &n.Commands
	case NavSell:
		flag = &n.Seller
	case NavTransfer:
		flag = &n.Transfer
	case NavExchange:
		flag = &n.Exchange
	default:
		return false
	}
	*flag = !*flag
	return *flag
}
