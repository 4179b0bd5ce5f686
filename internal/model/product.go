package model

import "strings"

// ProductType identifies the payload a product carries.
// Values match the numbering players and legacy data already use.
type ProductType int

const (
	ProductNone    ProductType = 0
	ProductKit     ProductType = 1
	ProductItem    ProductType = 2
	ProductCommand ProductType = 3
)

// String returns the lowercase name used in commands and logs.
func (t ProductType) String() string {
	switch t {
	case ProductKit:
		return "kit"
	case ProductItem:
		return "item"
	case ProductCommand:
		return "command"
	default:
		return "none"
	}
}

// ParseProductType accepts either the numeric value or the name.
func ParseProductType(s string) ProductType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "kit", "kits":
		return ProductKit
	case "2", "item", "items":
		return ProductItem
	case "3", "command", "commands":
		return ProductCommand
	default:
		return ProductNone
	}
}

// DraftID marks a product that has not been saved yet.
const DraftID = -1

// Product is a purchasable reward. Exactly one of Item, Kit or Command is set.
type Product struct {
	ID          int
	DisplayName string
	Cost        int
	Cooldown    int
	IconURL     string
	Permission  string

	Item    *ItemPayload
	Kit     *KitPayload
	Command *CommandPayload
}

// ItemPayload describes an in-game item reward.
type ItemPayload struct {
	Shortname            string
	Amount               int
	SkinID               uint64
	IsBlueprint          bool
	IgnoreOwnershipCheck bool
	Category             ItemCategory
}

// KitPayload references a kit defined by the kit provider.
type KitPayload struct {
	KitName     string
	Description string
}

// CommandPayload is a list of server command templates.
type CommandPayload struct {
	Description string
	Commands    []string
}

// Type returns the variant tag derived from the populated payload.
func (p *Product) Type() ProductType {
	switch {
	case p == nil:
		return ProductNone
	case p.Item != nil:
		return ProductItem
	case p.Kit != nil:
		return ProductKit
	case p.Command != nil:
		return ProductCommand
	default:
		return ProductNone
	}
}

// IsDraft reports whether the product has never been assigned an ID.
func (p *Product) IsDraft() bool {
	return p.ID < 0
}

// Description returns the kit or command description, if any.
func (p *Product) Description() string {
	switch {
	case p.Kit != nil:
		return p.Kit.Description
	case p.Command != nil:
		return p.Command.Description
	}
	return ""
}

// Clone returns a deep copy; the command list is not shared.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Item != nil {
		item := *p.Item
		c.Item = &item
	}
	if p.Kit != nil {
		kit := *p.Kit
		c.Kit = &kit
	}
	if p.Command != nil {
		cmd := *p.Command
		cmd.Commands = append([]string(nil), p.Command.Commands...)
		c.Command = &cmd
	}
	return &c
}

// CopyFrom overwrites every field but the ID with other's values.
func (p *Product) CopyFrom(other *Product) {
	id := p.ID
	*p = *other.Clone()
	p.ID = id
}
