package store

import (
	"context"
	"fmt"

	"serverrewards/internal/audit"
	"serverrewards/internal/model"
	"serverrewards/internal/pricing"
	"serverrewards/pkg/apierror"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SaleQuote prices a held item stack.
type SaleQuote struct {
	ItemRef     uint64          `json:"item_ref,string"`
	Shortname   string          `json:"shortname"`
	DisplayName string          `json:"display_name"`
	SkinID      uint64          `json:"skin_id,string"`
	Amount      int             `json:"amount"`
	StackSize   int             `json:"stack_size"`
	Condition   float64         `json:"condition"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       int             `json:"total"`
}

// SaleReceipt describes a completed sale.
type SaleReceipt struct {
	SaleQuote
	Balance int `json:"balance"`
}

func (s *Store) quote(held model.HeldItem, amount int) (SaleQuote, error) {
	if held.Broken {
		return SaleQuote{}, apierror.NotSellable("Broken items cannot be sold")
	}
	price, ok := s.prices.TryGetSellPrice(held.Shortname, held.SkinID)
	if !ok || !price.IsPositive() {
		return SaleQuote{}, apierror.NotSellable(fmt.Sprintf("%s cannot be sold", held.DisplayName))
	}
	if amount <= 0 {
		return SaleQuote{}, apierror.InvalidAmount("")
	}
	amount = min(amount, held.Amount)

	condition := held.ConditionFraction()
	unit := pricing.UnitSellPrice(price, condition)
	total := pricing.SaleTotal(unit, amount)
	if total <= 0 {
		return SaleQuote{}, apierror.NotSellable(fmt.Sprintf("%s is worth nothing", held.DisplayName))
	}
	return SaleQuote{
		ItemRef:     held.Ref,
		Shortname:   held.Shortname,
		DisplayName: held.DisplayName,
		SkinID:      held.SkinID,
		Amount:      amount,
		StackSize:   held.Amount,
		Condition:   condition,
		UnitPrice:   unit,
		Total:       total,
	}, nil
}

func (s *Store) findHeld(ctx context.Context, user, ref uint64) (model.HeldItem, error) {
	if s.caps.Inventory == nil {
		return model.HeldItem{}, apierror.ProviderUnavailable("Inventory access is unavailable")
	}
	held, ok := s.caps.Inventory.Find(ctx, user, ref)
	if !ok {
		return model.HeldItem{}, apierror.NotFound("That item is no longer in your inventory")
	}
	return held, nil
}

// QuoteSale prices selling amount units of a held stack without selling it.
func (s *Store) QuoteSale(ctx context.Context, user, ref uint64, amount int) (SaleQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held, err := s.findHeld(ctx, user, ref)
	if err != nil {
		return SaleQuote{}, err
	}
	if !s.caps.IsOwnedOrFree(ctx, user, held.ItemID, held.SkinID) {
		return SaleQuote{}, errNotOwned
	}
	return s.quote(held, amount)
}

// Sell removes amount units of a held stack and credits their value. The
// amount is clamped to the stack size.
func (s *Store) Sell(ctx context.Context, seller model.Player, ref uint64, amount int) (SaleReceipt, error) {
	s.mu.Lock()
	receipt, notices, err := s.sell(ctx, seller, ref, amount)
	s.mu.Unlock()

	record("sell", err)
	s.send(ctx, notices)
	return receipt, err
}

func (s *Store) sell(ctx context.Context, seller model.Player, ref uint64, amount int) (SaleReceipt, []notice, error) {
	held, err := s.findHeld(ctx, seller.ID, ref)
	if err != nil {
		return SaleReceipt{}, nil, err
	}
	if !s.caps.IsOwnedOrFree(ctx, seller.ID, held.ItemID, held.SkinID) {
		return SaleReceipt{}, nil, errNotOwned
	}
	q, err := s.quote(held, amount)
	if err != nil {
		return SaleReceipt{}, nil, err
	}

	if !s.caps.Inventory.Take(ctx, seller.ID, ref, q.Amount) {
		return SaleReceipt{}, nil, apierror.NotSellable("That item could not be removed from your inventory")
	}
	balance, err := s.ledger.Credit(seller.ID, q.Total)
	if err != nil {
		return SaleReceipt{}, nil, err
	}
	s.markDirty(model.DocBalances)

	s.audit.Record(audit.CategorySales, fmt.Sprintf("%s (%d) sold %d x %s for %d", seller.Name, seller.ID, q.Amount, q.Shortname, q.Total), logrus.Fields{
		"user":      seller.ID,
		"shortname": q.Shortname,
		"skin":      q.SkinID,
		"amount":    q.Amount,
		"total":     q.Total,
	})

	return SaleReceipt{SaleQuote: q, Balance: balance}, []notice{{user: seller.ID, balance: balance, points: true}}, nil
}

// SellableItems lists the user's held stacks that have a positive sell value.
// Unowned DLC or skins are left out.
func (s *Store) SellableItems(ctx context.Context, user uint64) []SaleQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.caps.Inventory == nil {
		return nil
	}
	var out []SaleQuote
	for _, held := range s.caps.Inventory.Items(ctx, user) {
		if !s.caps.IsOwnedOrFree(ctx, user, held.ItemID, held.SkinID) {
			continue
		}
		q, err := s.quote(held, held.Amount)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}
