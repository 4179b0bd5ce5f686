// Package provider defines the external capabilities the store relies on and
// the HTTP bridge that implements them against the game host.
package provider

import (
	"context"

	"serverrewards/internal/model"

	"github.com/shopspring/decimal"
)

// Fulfiller delivers purchased products. Each call reports whether the host
// accepted the delivery.
type Fulfiller interface {
	GiveItem(ctx context.Context, user uint64, shortname string, amount int, skinID uint64, blueprint bool) bool
	GiveKit(ctx context.Context, user uint64, kit string) bool
	RunCommands(ctx context.Context, user uint64, commands []string) bool
}

// Currency is an external currency the ledger can exchange with.
type Currency interface {
	Balance(ctx context.Context, user uint64) decimal.Decimal
	Deposit(ctx context.Context, user uint64, amount decimal.Decimal) bool
	Withdraw(ctx context.Context, user uint64, amount decimal.Decimal) bool
}

// Ownership answers DLC and skin ownership questions.
type Ownership interface {
	IsOwnedOrFree(ctx context.Context, user uint64, itemID int, skinID uint64) bool
}

// Kits resolves kit names.
type Kits interface {
	IsKit(ctx context.Context, name string) bool
	Kit(ctx context.Context, name string) (model.KitInfo, bool)
	Kits(ctx context.Context) []model.KitInfo
}

// Items resolves item shortnames.
type Items interface {
	Definition(ctx context.Context, shortname string) (model.ItemDefinition, bool)
	Definitions(ctx context.Context) []model.ItemDefinition
}

// Inventory reads and removes held items.
type Inventory interface {
	Items(ctx context.Context, user uint64) []model.HeldItem
	Find(ctx context.Context, user uint64, ref uint64) (model.HeldItem, bool)
	Take(ctx context.Context, user uint64, ref uint64, amount int) bool
}

// Notifier pushes balance changes and chat messages to players.
type Notifier interface {
	PointsUpdated(ctx context.Context, user uint64, balance int)
	Message(ctx context.Context, user uint64, text string)
}

// Set bundles the capabilities. A nil member is unavailable.
type Set struct {
	Fulfiller Fulfiller
	Currency  Currency
	Ownership Ownership
	Kits      Kits
	Items     Items
	Inventory Inventory
	Notifier  Notifier
}

// FromBridge exposes every capability of b.
func FromBridge(b *Bridge) Set {
	return Set{
		Fulfiller: b,
		Currency:  b,
		Ownership: b,
		Kits:      b,
		Items:     b,
		Inventory: b,
		Notifier:  b,
	}
}

// IsOwnedOrFree consults Ownership when present and allows otherwise.
func (s Set) IsOwnedOrFree(ctx context.Context, user uint64, itemID int, skinID uint64) bool {
	if s.Ownership == nil {
		return true
	}
	return s.Ownership.IsOwnedOrFree(ctx, user, itemID, skinID)
}

// PointsUpdated notifies when a Notifier is configured.
func (s Set) PointsUpdated(ctx context.Context, user uint64, balance int) {
	if s.Notifier != nil {
		s.Notifier.PointsUpdated(ctx, user, balance)
	}
}

// Message sends a chat message when a Notifier is configured.
func (s Set) Message(ctx context.Context, user uint64, text string) {
	if s.Notifier != nil {
		s.Notifier.Message(ctx, user, text)
	}
}
