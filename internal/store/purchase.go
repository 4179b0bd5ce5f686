package store

import (
	"context"
	"fmt"
	"math"

	"serverrewards/internal/audit"
	"serverrewards/internal/catalog"
	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"

	"github.com/sirupsen/logrus"
)

var errNotOwned = apierror.Forbidden("You do not own the DLC or skin for this item")

// Receipt describes a completed purchase.
type Receipt struct {
	ProductType model.ProductType `json:"product_type"`
	ProductID   int               `json:"product_id"`
	Name        string            `json:"name"`
	Cost        int               `json:"cost"`
	Balance     int               `json:"balance"`
	Cooldown    int               `json:"cooldown"`
}

// Purchase buys a product from the catalog sold at npcID (0 for the global
// store). Nothing is charged unless the product was delivered.
func (s *Store) Purchase(ctx context.Context, buyer model.Player, npcID uint64, t model.ProductType, id int) (Receipt, error) {
	s.mu.Lock()
	receipt, notices, err := s.purchase(ctx, buyer, npcID, t, id)
	s.mu.Unlock()

	record("purchase", err)
	s.send(ctx, notices)
	return receipt, err
}

func (s *Store) purchase(ctx context.Context, buyer model.Player, npcID uint64, t model.ProductType, id int) (Receipt, []notice, error) {
	if t == model.ProductNone || id < 0 {
		return Receipt{}, nil, apierror.NotFound("product not found")
	}
	cat, _ := s.catalogFor(npcID)
	product, ok := cat.Find(t, id)
	if !ok {
		return Receipt{}, nil, apierror.NotFound(fmt.Sprintf("%s %d not found", t, id))
	}
	if product.Permission != "" && !buyer.Admin && !buyer.HasPermission(product.Permission) {
		return Receipt{}, nil, apierror.Forbidden("You do not have permission to purchase this")
	}
	if s.dlcLocked(ctx, buyer.ID, product) {
		return Receipt{}, nil, errNotOwned
	}

	if active, remaining := s.cooldowns.HasCooldown(buyer.ID, product.ID); active {
		return Receipt{}, nil, apierror.OnCooldown(fmt.Sprintf("You can purchase this again in %s", FormatDuration(int(math.Ceil(remaining.Seconds())))))
	}

	balance := s.ledger.Balance(buyer.ID)
	if product.Cost > balance {
		return Receipt{}, nil, apierror.InsufficientFunds(fmt.Sprintf("You need %d RP but have %d", product.Cost, balance))
	}

	name := catalog.PurchaseName(product)
	if !catalog.Fulfill(ctx, s.caps.Fulfiller, product, buyer) {
		return Receipt{}, nil, apierror.FulfillmentFailed(fmt.Sprintf("Unable to deliver %s", name))
	}

	if product.Cost > 0 {
		var err error
		if balance, err = s.ledger.Debit(buyer.ID, product.Cost); err != nil {
			return Receipt{}, nil, err
		}
		s.markDirty(model.DocBalances)
	}
	if product.Cooldown > 0 {
		s.cooldowns.AddCooldown(buyer.ID, product.ID, product.Cooldown)
		s.markDirty(model.DocCooldowns)
	}

	s.audit.Record(audit.CategoryPurchases, fmt.Sprintf("%s (%d) purchased %s", buyer.Name, buyer.ID, name), logrus.Fields{
		"user":         buyer.ID,
		"product_type": t.String(),
		"product_id":   product.ID,
		"cost":         product.Cost,
		"npc":          npcID,
	})

	return Receipt{
		ProductType: t,
		ProductID:   product.ID,
		Name:        name,
		Cost:        product.Cost,
		Balance:     balance,
		Cooldown:    product.Cooldown,
	}, []notice{{user: buyer.ID, balance: balance, points: true}}, nil
}

// DlcLocked reports whether an item product needs DLC or a skin the user
// does not own.
func (s *Store) DlcLocked(ctx context.Context, user uint64, p *model.Product) bool {
	return s.dlcLocked(ctx, user, p)
}

func (s *Store) dlcLocked(ctx context.Context, user uint64, p *model.Product) bool {
	if p == nil || p.Item == nil || p.Item.IgnoreOwnershipCheck || s.caps.Ownership == nil || s.caps.Items == nil {
		return false
	}
	def, ok := s.caps.Items.Definition(ctx, p.Item.Shortname)
	if !ok {
		return false
	}
	return !s.caps.IsOwnedOrFree(ctx, user, def.ItemID, p.Item.SkinID)
}

// FormatDuration renders seconds as "1d 2h 3m 4s", dropping empty units.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	units := []struct {
		size   int
		suffix string
	}{{86400, "d"}, {3600, "h"}, {60, "m"}, {1, "s"}}

	out := ""
	for _, u := range units {
		if n := seconds / u.size; n > 0 {
			if out != "" {
				out += " "
			}
			out += fmt.Sprintf("%d%s", n, u.suffix)
			seconds %= u.size
		}
	}
	return out
}
