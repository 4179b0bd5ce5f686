// Package catalog stores purchasable products and the per-type behaviour used
// to edit, validate and deliver them.
package catalog

import (
	"fmt"

	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"
)

// Catalog holds item, kit and command products. IDs come from a single
// counter shared by all three lists and are never reused. Catalog is not safe
// for concurrent use.
type Catalog struct {
	nextID   int
	items    []*model.Product
	kits     []*model.Product
	commands []*model.Product

	categories []model.ItemCategory
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// NextID returns the ID the next added product will receive.
func (c *Catalog) NextID() int {
	return c.nextID
}

func (c *Catalog) list(t model.ProductType) *[]*model.Product {
	switch t {
	case model.ProductItem:
		return &c.items
	case model.ProductKit:
		return &c.kits
	case model.ProductCommand:
		return &c.commands
	}
	return nil
}

func (c *Catalog) invalidate() {
	c.categories = nil
}

// Add stores a copy of the draft under a fresh ID and returns the ID.
func (c *Catalog) Add(draft *model.Product) (int, error) {
	list := c.list(draft.Type())
	if list == nil {
		return model.DraftID, apierror.InvalidField("type", "product has no type")
	}
	p := draft.Clone()
	p.ID = c.nextID
	c.nextID++
	*list = append(*list, p)
	c.invalidate()
	return p.ID, nil
}

// Update replaces the stored product that has the same type and ID.
func (c *Catalog) Update(product *model.Product) error {
	existing, ok := c.find(product.Type(), product.ID)
	if !ok {
		return notFound(product.Type(), product.ID)
	}
	existing.CopyFrom(product)
	c.invalidate()
	return nil
}

// Save adds drafts and updates saved products.
func (c *Catalog) Save(product *model.Product) (int, error) {
	if product.IsDraft() {
		return c.Add(product)
	}
	if err := c.Update(product); err != nil {
		return product.ID, err
	}
	return product.ID, nil
}

// Delete removes a product.
func (c *Catalog) Delete(t model.ProductType, id int) error {
	list := c.list(t)
	if list == nil {
		return notFound(t, id)
	}
	for i, p := range *list {
		if p.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			c.invalidate()
			return nil
		}
	}
	return notFound(t, id)
}

func (c *Catalog) find(t model.ProductType, id int) (*model.Product, bool) {
	if id < 0 {
		return nil, false
	}
	list := c.list(t)
	if list == nil {
		return nil, false
	}
	for _, p := range *list {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Find returns a copy of the product.
func (c *Catalog) Find(t model.ProductType, id int) (*model.Product, bool) {
	p, ok := c.find(t, id)
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// List returns copies of every product of type t in insertion order.
func (c *Catalog) List(t model.ProductType) []*model.Product {
	list := c.list(t)
	if list == nil {
		return nil
	}
	out := make([]*model.Product, len(*list))
	for i, p := range *list {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of products of type t.
func (c *Catalog) Len(t model.ProductType) int {
	list := c.list(t)
	if list == nil {
		return 0
	}
	return len(*list)
}

// Count returns the number of products of every type.
func (c *Catalog) Count() int {
	return len(c.items) + len(c.kits) + len(c.commands)
}

// ItemCategories returns All followed by each distinct item category, in the
// order items were added.
func (c *Catalog) ItemCategories() []model.ItemCategory {
	if c.categories == nil {
		seen := map[model.ItemCategory]bool{model.CategoryAll: true}
		cats := []model.ItemCategory{model.CategoryAll}
		for _, p := range c.items {
			cat := p.Item.Category.Normalize()
			if !seen[cat] {
				seen[cat] = true
				cats = append(cats, cat)
			}
		}
		c.categories = cats
	}
	return append([]model.ItemCategory(nil), c.categories...)
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{nextID: c.nextID}
	for _, t := range []model.ProductType{model.ProductItem, model.ProductKit, model.ProductCommand} {
		*out.list(t) = c.List(t)
	}
	return out
}

func notFound(t model.ProductType, id int) error {
	return apierror.NotFound(fmt.Sprintf("%s %d not found", t, id))
}
