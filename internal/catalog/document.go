package catalog

import (
	"encoding/json"

	"serverrewards/internal/model"
)

type baseDoc struct {
	ID          int    `json:"ID"`
	DisplayName string `json:"DisplayName"`
	Cost        int    `json:"Cost"`
	Cooldown    int    `json:"Cooldown"`
	IconURL     string `json:"IconURL"`
	Permission  string `json:"Permission"`
}

type itemDoc struct {
	baseDoc
	Shortname      string             `json:"Shortname"`
	Amount         int                `json:"Amount"`
	SkinID         uint64             `json:"SkinId"`
	IsBp           bool               `json:"IsBp"`
	Category       model.ItemCategory `json:"Category"`
	IgnoreDlcCheck bool               `json:"IgnoreDlcCheck"`
}

type kitDoc struct {
	baseDoc
	KitName     string `json:"KitName"`
	Description string `json:"Description"`
}

type commandDoc struct {
	baseDoc
	Description string   `json:"Description"`
	Commands    []string `json:"Commands"`
}

type document struct {
	ProductIndex int          `json:"ProductIndex"`
	Items        []itemDoc    `json:"Items"`
	Kits         []kitDoc     `json:"Kits"`
	Commands     []commandDoc `json:"Commands"`
}

func toBase(p *model.Product) baseDoc {
	return baseDoc{p.ID, p.DisplayName, p.Cost, p.Cooldown, p.IconURL, p.Permission}
}

func fromBase(b baseDoc) model.Product {
	return model.Product{
		ID:          b.ID,
		DisplayName: b.DisplayName,
		Cost:        max(b.Cost, 0),
		Cooldown:    max(b.Cooldown, 0),
		IconURL:     b.IconURL,
		Permission:  b.Permission,
	}
}

// MarshalJSON encodes the catalog in its document shape.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	doc := document{
		ProductIndex: c.nextID,
		Items:        make([]itemDoc, 0, len(c.items)),
		Kits:         make([]kitDoc, 0, len(c.kits)),
		Commands:     make([]commandDoc, 0, len(c.commands)),
	}
	for _, p := range c.items {
		doc.Items = append(doc.Items, itemDoc{
			baseDoc:        toBase(p),
			Shortname:      p.Item.Shortname,
			Amount:         p.Item.Amount,
			SkinID:         p.Item.SkinID,
			IsBp:           p.Item.IsBlueprint,
			Category:       p.Item.Category.Normalize(),
			IgnoreDlcCheck: p.Item.IgnoreOwnershipCheck,
		})
	}
	for _, p := range c.kits {
		doc.Kits = append(doc.Kits, kitDoc{baseDoc: toBase(p), KitName: p.Kit.KitName, Description: p.Kit.Description})
	}
	for _, p := range c.commands {
		doc.Commands = append(doc.Commands, commandDoc{
			baseDoc:     toBase(p),
			Description: p.Command.Description,
			Commands:    append([]string{}, p.Command.Commands...),
		})
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the catalog's contents. The ID counter is raised
// past the highest stored ID if the document's counter lags behind.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	next := doc.ProductIndex
	bump := func(id int) {
		if id >= next {
			next = id + 1
		}
	}

	c.items, c.kits, c.commands = nil, nil, nil
	for _, d := range doc.Items {
		p := fromBase(d.baseDoc)
		p.Item = &model.ItemPayload{
			Shortname:            d.Shortname,
			Amount:               d.Amount,
			SkinID:               d.SkinID,
			IsBlueprint:          d.IsBp,
			IgnoreOwnershipCheck: d.IgnoreDlcCheck,
			Category:             d.Category.Normalize(),
		}
		c.items = append(c.items, &p)
		bump(p.ID)
	}
	for _, d := range doc.Kits {
		p := fromBase(d.baseDoc)
		p.Kit = &model.KitPayload{KitName: d.KitName, Description: d.Description}
		c.kits = append(c.kits, &p)
		bump(p.ID)
	}
	for _, d := range doc.Commands {
		p := fromBase(d.baseDoc)
		p.Command = &model.CommandPayload{Description: d.Description, Commands: d.Commands}
		c.commands = append(c.commands, &p)
		bump(p.ID)
	}
	c.nextID = next
	c.invalidate()
	return nil
}
