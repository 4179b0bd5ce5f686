package store

import (
	"context"
	"fmt"

	"serverrewards/internal/audit"
	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Direction of an exchange.
type Direction int

const (
	ToExternal Direction = iota
	ToPoints
)

// ExchangeReceipt describes a completed exchange.
type ExchangeReceipt struct {
	Direction Direction       `json:"direction"`
	Points    int             `json:"points"`
	External  decimal.Decimal `json:"external"`
	Balance   int             `json:"balance"`
}

// PointsToExternal converts points at rate, flooring to cents.
func PointsToExternal(points int, rate decimal.Decimal) decimal.Decimal {
	if points <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(points)).Mul(rate).RoundFloor(2)
}

// ExternalToPoints converts external currency at rate, dropping any fraction
// of a point.
func ExternalToPoints(external, rate decimal.Decimal) int {
	if !external.IsPositive() || !rate.IsPositive() {
		return 0
	}
	return int(external.Div(rate).Floor().IntPart())
}

// FloorToRate rounds external down to a whole number of points' worth.
func FloorToRate(external, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(ExternalToPoints(external, rate))).Mul(rate)
}

// ExchangeAvailable reports whether an external currency is configured.
func (s *Store) ExchangeAvailable() bool {
	return s.caps.Currency != nil
}

// ExchangeRate returns the configured rate.
func (s *Store) ExchangeRate() decimal.Decimal {
	return s.opts.ExchangeRate
}

// ExternalBalance returns the user's external balance, if a currency is configured.
func (s *Store) ExternalBalance(ctx context.Context, user uint64) (decimal.Decimal, bool) {
	if s.caps.Currency == nil {
		return decimal.Zero, false
	}
	return s.caps.Currency.Balance(ctx, user), true
}

// ExchangeToExternal converts points into the external currency.
func (s *Store) ExchangeToExternal(ctx context.Context, user model.Player, points int) (ExchangeReceipt, error) {
	s.mu.Lock()
	receipt, notices, err := s.toExternal(ctx, user, points)
	s.mu.Unlock()

	record("exchange_to_external", err)
	s.send(ctx, notices)
	return receipt, err
}

func (s *Store) toExternal(ctx context.Context, user model.Player, points int) (ExchangeReceipt, []notice, error) {
	if points <= 0 {
		return ExchangeReceipt{}, nil, apierror.InvalidAmount("You must exchange at least 1 RP")
	}
	balance := s.ledger.Balance(user.ID)
	if points > balance {
		return ExchangeReceipt{}, nil, apierror.InsufficientFunds(fmt.Sprintf("You only have %d RP", balance))
	}
	if s.caps.Currency == nil {
		return ExchangeReceipt{}, nil, apierror.ProviderUnavailable("Currency exchange is unavailable")
	}

	external := PointsToExternal(points, s.opts.ExchangeRate)
	if !external.IsPositive() {
		return ExchangeReceipt{}, nil, apierror.InvalidAmount("That amount is worth nothing")
	}
	if !s.caps.Currency.Deposit(ctx, user.ID, external) {
		return ExchangeReceipt{}, nil, apierror.ProviderRejected("The deposit was rejected")
	}
	balance, err := s.ledger.Debit(user.ID, points)
	if err != nil {
		return ExchangeReceipt{}, nil, err
	}
	s.markDirty(model.DocBalances)

	s.audit.Record(audit.CategoryExchange, fmt.Sprintf("%s (%d) exchanged %d RP for %s", user.Name, user.ID, points, external.StringFixed(2)), logrus.Fields{
		"user":     user.ID,
		"points":   points,
		"external": external.StringFixed(2),
	})

	return ExchangeReceipt{Direction: ToExternal, Points: points, External: external, Balance: balance},
		[]notice{{user: user.ID, balance: balance, points: true}}, nil
}

// ExchangeToPoints converts external currency into points. Only whole points
// are bought; the remainder stays in the external balance.
func (s *Store) ExchangeToPoints(ctx context.Context, user model.Player, external decimal.Decimal) (ExchangeReceipt, error) {
	s.mu.Lock()
	receipt, notices, err := s.toPoints(ctx, user, external)
	s.mu.Unlock()

	record("exchange_to_points", err)
	s.send(ctx, notices)
	return receipt, err
}

func (s *Store) toPoints(ctx context.Context, user model.Player, external decimal.Decimal) (ExchangeReceipt, []notice, error) {
	if s.caps.Currency == nil {
		return ExchangeReceipt{}, nil, apierror.ProviderUnavailable("Currency exchange is unavailable")
	}
	available := s.caps.Currency.Balance(ctx, user.ID)
	if external.GreaterThan(available) {
		return ExchangeReceipt{}, nil, apierror.InsufficientFunds(fmt.Sprintf("You only have %s", available.StringFixed(2)))
	}
	points := ExternalToPoints(external, s.opts.ExchangeRate)
	if points <= 0 {
		return ExchangeReceipt{}, nil, apierror.InvalidAmount("That amount is not enough for 1 RP")
	}
	cost := decimal.NewFromInt(int64(points)).Mul(s.opts.ExchangeRate)
	if !s.caps.Currency.Withdraw(ctx, user.ID, cost) {
		return ExchangeReceipt{}, nil, apierror.ProviderRejected("The withdrawal was rejected")
	}
	balance, err := s.ledger.Credit(user.ID, points)
	if err != nil {
		return ExchangeReceipt{}, nil, err
	}
	s.markDirty(model.DocBalances)

	s.audit.Record(audit.CategoryExchange, fmt.Sprintf("%s (%d) exchanged %s for %d RP", user.Name, user.ID, cost.StringFixed(2), points), logrus.Fields{
		"user":     user.ID,
		"points":   points,
		"external": cost.StringFixed(2),
	})

	return ExchangeReceipt{Direction: ToPoints, Points: points, External: cost, Balance: balance},
		[]notice{{user: user.ID, balance: balance, points: true}}, nil
}
