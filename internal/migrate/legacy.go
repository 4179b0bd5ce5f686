package migrate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"serverrewards/internal/catalog"
	"serverrewards/internal/ledger"
	"serverrewards/internal/model"
	"serverrewards/internal/npcstore"
	"serverrewards/internal/pricing"

	"github.com/shopspring/decimal"
)

// oldCategory is the previous item category enum. It was written either as
// its ordinal or by name.
type oldCategory int

var oldCategories = []model.ItemCategory{
	model.CategoryAll, // None
	model.CategoryWeapon,
	model.CategoryConstruction,
	model.CategoryItems,
	model.CategoryResources,
	model.CategoryAttire,
	model.CategoryTool,
	model.CategoryMedical,
	model.CategoryFood,
	model.CategoryAmmunition,
	model.CategoryTraps,
	model.CategoryMisc,
	model.CategoryComponent,
	model.CategoryElectrical,
	model.CategoryFun,
}

func (c *oldCategory) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = oldCategory(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("invalid category %s", data)
	}
	*c = 0
	for i, cat := range oldCategories {
		if i > 0 && string(cat) == name {
			*c = oldCategory(i)
		}
	}
	return nil
}

// itemCategory maps the old enum onto the current categories; None and
// unknown values become All.
func (c oldCategory) itemCategory() model.ItemCategory {
	if c <= 0 || int(c) >= len(oldCategories) {
		return model.CategoryAll
	}
	return oldCategories[c]
}

type oldReward struct {
	DisplayName string `json:"displayName"`
	Cost        int    `json:"cost"`
	Cooldown    int    `json:"cooldown"`
}

type oldRewardItem struct {
	oldReward
	Shortname  string      `json:"shortname"`
	CustomIcon string      `json:"customIcon"`
	Amount     int         `json:"amount"`
	SkinID     uint64      `json:"skinId"`
	IsBp       bool        `json:"isBp"`
	Category   oldCategory `json:"category"`
}

type oldRewardKit struct {
	oldReward
	KitName     string `json:"kitName"`
	Description string `json:"description"`
	IconName    string `json:"iconName"`
}

type oldRewardCommand struct {
	oldReward
	Description string   `json:"description"`
	IconName    string   `json:"iconName"`
	Commands    []string `json:"commands"`
}

type oldRewardData struct {
	Items    map[string]oldRewardItem    `json:"items"`
	Kits     map[string]oldRewardKit     `json:"kits"`
	Commands map[string]oldRewardCommand `json:"commands"`
}

type oldPlayerData struct {
	PlayerRP map[uint64]int `json:"playerRP"`
}

type oldSaleItem struct {
	Price       decimal.Decimal `json:"price"`
	DisplayName string          `json:"displayName"`
	Enabled     bool            `json:"enabled"`
}

type oldSaleData struct {
	Items map[string]map[uint64]oldSaleItem `json:"items"`
}

type oldNpcInfo struct {
	Name         string   `json:"name"`
	X            float64  `json:"x"`
	Z            float64  `json:"z"`
	UseCustom    bool     `json:"useCustom"`
	SellItems    bool     `json:"sellItems"`
	SellKits     bool     `json:"sellKits"`
	SellCommands bool     `json:"sellCommands"`
	CanTransfer  bool     `json:"canTransfer"`
	CanSell      bool     `json:"canSell"`
	CanExchange  bool     `json:"canExchange"`
	Items        []string `json:"items"`
	Kits         []string `json:"kits"`
	Commands     []string `json:"commands"`
}

type oldNpcData struct {
	NpcInfo map[string]oldNpcInfo `json:"npcInfo"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r oldRewardItem) product() *model.Product {
	return &model.Product{
		ID:          model.DraftID,
		DisplayName: r.DisplayName,
		Cost:        r.Cost,
		Cooldown:    r.Cooldown,
		IconURL:     r.CustomIcon,
		Item: &model.ItemPayload{
			Shortname:   r.Shortname,
			Amount:      r.Amount,
			SkinID:      r.SkinID,
			IsBlueprint: r.IsBp,
			Category:    r.Category.itemCategory(),
		},
	}
}

func (r oldRewardKit) product() *model.Product {
	return &model.Product{
		ID:          model.DraftID,
		DisplayName: r.KitName,
		Cost:        r.Cost,
		Cooldown:    r.Cooldown,
		IconURL:     r.IconName,
		Kit:         &model.KitPayload{KitName: r.KitName, Description: r.Description},
	}
}

func (r oldRewardCommand) product() *model.Product {
	return &model.Product{
		ID:          model.DraftID,
		DisplayName: r.DisplayName,
		Cost:        r.Cost,
		Cooldown:    r.Cooldown,
		IconURL:     r.IconName,
		Command: &model.CommandPayload{
			Description: r.Description,
			Commands:    append([]string(nil), r.Commands...),
		},
	}
}

func parseRewardData(data []byte) (*oldRewardData, error) {
	var old oldRewardData
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("failed to parse reward data: %w", err)
	}
	return &old, nil
}

// ConvertRewardData builds a catalog from the old reward document. Items are
// numbered first, then kits, then commands, each in key order.
func ConvertRewardData(data []byte) (*catalog.Catalog, error) {
	old, err := parseRewardData(data)
	if err != nil {
		return nil, err
	}
	cat := catalog.New()
	for _, k := range sortedKeys(old.Items) {
		if _, err := cat.Add(old.Items[k].product()); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(old.Kits) {
		if _, err := cat.Add(old.Kits[k].product()); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(old.Commands) {
		if _, err := cat.Add(old.Commands[k].product()); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// ConvertPlayerData builds the balances from the old player document.
func ConvertPlayerData(data []byte) (*ledger.Ledger, error) {
	var old oldPlayerData
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("failed to parse player data: %w", err)
	}
	l := ledger.New()
	l.Replace(old.PlayerRP)
	return l, nil
}

// ConvertSaleData builds sell prices from the old sale document. The skin 0
// entry is the base price; every other skin becomes an override.
func ConvertSaleData(data []byte) (*pricing.SellPricing, error) {
	var old oldSaleData
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("failed to parse sale data: %w", err)
	}
	p := pricing.New()
	for _, name := range sortedKeys(old.Items) {
		skins := old.Items[name]
		if base, ok := skins[0]; ok {
			p.TryAdd(name, base.Price)
		}
		for skin, item := range skins {
			if skin != 0 {
				p.SetSkinOverride(name, skin, item.Price)
			}
		}
	}
	return p, nil
}

// ConvertNpcData builds NPC stores from the old NPC document. Custom NPCs get
// their own copies of the rewards they referenced; entries whose key is not
// a user ID are dropped.
func ConvertNpcData(npcData, rewardData []byte) (*npcstore.Registry, error) {
	var old oldNpcData
	if err := json.Unmarshal(npcData, &old); err != nil {
		return nil, fmt.Errorf("failed to parse npc data: %w", err)
	}
	rewards, err := parseRewardData(rewardData)
	if err != nil {
		return nil, err
	}

	reg := npcstore.New()
	for _, key := range sortedKeys(old.NpcInfo) {
		npcID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		info := old.NpcInfo[key]
		shared := !info.UseCustom
		st := &npcstore.Store{
			Name:        info.Name,
			CustomStore: info.UseCustom,
			Navigation: model.StoreNavigation{
				Items:    shared || info.SellItems,
				Kits:     shared || info.SellKits,
				Commands: shared || info.SellCommands,
				Exchange: shared || info.CanExchange,
				Transfer: shared || info.CanTransfer,
				Seller:   shared || info.CanSell,
			},
			Products: catalog.New(),
		}
		if info.UseCustom {
			for _, id := range info.Items {
				if r, ok := rewards.Items[id]; ok {
					_, _ = st.Products.Add(r.product())
				}
			}
			for _, id := range info.Kits {
				if r, ok := rewards.Kits[id]; ok {
					_, _ = st.Products.Add(r.product())
				}
			}
			for _, id := range info.Commands {
				if r, ok := rewards.Commands[id]; ok {
					_, _ = st.Products.Add(r.product())
				}
			}
		}
		reg.Put(npcID, st)
	}
	return reg, nil
}
