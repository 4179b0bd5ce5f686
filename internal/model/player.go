package model

import "strings"

// PermissionPrefix is prepended to every product permission.
const PermissionPrefix = "serverrewards."

// Position is a world coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Player is the acting user as described by the game host on each command.
type Player struct {
	ID          uint64   `json:"id,string"`
	Name        string   `json:"name"`
	Admin       bool     `json:"admin"`
	Permissions []string `json:"permissions,omitempty"`
	Position    Position `json:"position"`
}

// HasPermission reports whether the player holds perm. An empty permission
// is always held.
func (p Player) HasPermission(perm string) bool {
	if perm == "" {
		return true
	}
	for _, held := range p.Permissions {
		if strings.EqualFold(held, perm) {
			return true
		}
	}
	return false
}

// HeldItem is an item stack in a player's inventory. Condition and
// MaxCondition are normalized to [0,1].
type HeldItem struct {
	Ref          uint64  `json:"ref,string"`
	ItemID       int     `json:"item_id"`
	Shortname    string  `json:"shortname"`
	DisplayName  string  `json:"display_name"`
	Amount       int     `json:"amount"`
	SkinID       uint64  `json:"skin_id,string"`
	HasCondition bool    `json:"has_condition"`
	Condition    float64 `json:"condition"`
	MaxCondition float64 `json:"max_condition"`
	Broken       bool    `json:"broken"`
}

// ConditionFraction averages current and maximum condition for items that
// wear. Other items are worth full price.
func (h HeldItem) ConditionFraction() float64 {
	if !h.HasCondition {
		return 1
	}
	return (h.Condition + h.MaxCondition) * 0.5
}

// ItemDefinition is the host's description of an item shortname.
type ItemDefinition struct {
	ItemID      int          `json:"item_id"`
	Shortname   string       `json:"shortname"`
	DisplayName string       `json:"display_name"`
	Category    ItemCategory `json:"category"`
}

// KitInfo describes a kit known to the kit provider.
type KitInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}
