package session

import (
	"strconv"
	"strings"

	"serverrewards/internal/model"

	"github.com/shopspring/decimal"
)

// Command is one verb with positional arguments, as sent by the game host.
type Command struct {
	Verb string   `json:"verb"`
	Args []string `json:"args"`
}

// Args are positional command arguments. Missing or malformed values fall
// back to the caller's default.
type Args []string

// String returns argument i, or "".
func (a Args) String(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return strings.TrimSpace(a[i])
}

// Int parses argument i.
func (a Args) Int(i, def int) int {
	n, err := strconv.Atoi(a.String(i))
	if err != nil {
		return def
	}
	return n
}

// Uint parses argument i as a user or item reference.
func (a Args) Uint(i int) uint64 {
	n, err := strconv.ParseUint(a.String(i), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Decimal parses argument i as a currency amount.
func (a Args) Decimal(i int) decimal.Decimal {
	d, err := decimal.NewFromString(a.String(i))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Rest joins every argument from i on with single spaces.
func (a Args) Rest(i int) string {
	if i >= len(a) {
		return ""
	}
	return strings.Join(a[i:], " ")
}

// Has reports whether argument i was given.
func (a Args) Has(i int) bool {
	return i < len(a)
}

// SelectorKind is the list a selector shows, and where search results return.
type SelectorKind int

const (
	SelectStore SelectorKind = iota
	SelectItem
	SelectKit
	SelectTarget
)

func (k SelectorKind) String() string {
	switch k {
	case SelectItem:
		return "item"
	case SelectKit:
		return "kit"
	case SelectTarget:
		return "player"
	default:
		return "store"
	}
}

// MarshalText renders the kind by name.
func (k SelectorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseSelectorKind accepts the numeric value or the name.
func ParseSelectorKind(s string) SelectorKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "item", "items":
		return SelectItem
	case "2", "kit", "kits":
		return SelectKit
	case "3", "player", "target", "transfer":
		return SelectTarget
	default:
		return SelectStore
	}
}

// adminOnly reports whether selecting from k edits a product draft.
func (k SelectorKind) adminOnly() bool {
	return k == SelectItem || k == SelectKit
}

// draftType is the product type a selector of kind k edits.
func (k SelectorKind) draftType() model.ProductType {
	switch k {
	case SelectItem:
		return model.ProductItem
	case SelectKit:
		return model.ProductKit
	}
	return model.ProductNone
}

// exchangeDirection is the input field an exchange command updates.
type exchangeDirection int

const (
	exchangeNone exchangeDirection = iota
	exchangePoints
	exchangeExternal
)

func parseExchangeDirection(s string) exchangeDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "rp", "points":
		return exchangePoints
	case "2", "external", "economics":
		return exchangeExternal
	default:
		return exchangeNone
	}
}
