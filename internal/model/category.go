package model

import "strings"

// ItemCategory groups item products for filtering. The zero value is All.
type ItemCategory string

const (
	CategoryAll          ItemCategory = "All"
	CategoryWeapon       ItemCategory = "Weapon"
	CategoryConstruction ItemCategory = "Construction"
	CategoryItems        ItemCategory = "Items"
	CategoryResources    ItemCategory = "Resources"
	CategoryAttire       ItemCategory = "Attire"
	CategoryTool         ItemCategory = "Tool"
	CategoryMedical      ItemCategory = "Medical"
	CategoryFood         ItemCategory = "Food"
	CategoryAmmunition   ItemCategory = "Ammunition"
	CategoryTraps        ItemCategory = "Traps"
	CategoryMisc         ItemCategory = "Misc"
	CategoryComponent    ItemCategory = "Component"
	CategoryElectrical   ItemCategory = "Electrical"
	CategoryFun          ItemCategory = "Fun"
)

var knownCategories = []ItemCategory{
	CategoryAll, CategoryWeapon, CategoryConstruction, CategoryItems, CategoryResources,
	CategoryAttire, CategoryTool, CategoryMedical, CategoryFood, CategoryAmmunition,
	CategoryTraps, CategoryMisc, CategoryComponent, CategoryElectrical, CategoryFun,
}

// ParseItemCategory matches case-insensitively. Unknown names and "None"
// fall back to All.
func ParseItemCategory(s string) ItemCategory {
	for _, c := range knownCategories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return CategoryAll
}

// Normalize maps the empty value onto All.
func (c ItemCategory) Normalize() ItemCategory {
	if c == "" {
		return CategoryAll
	}
	return c
}
