package store

import (
	"context"
	"fmt"

	"serverrewards/internal/audit"
	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// TransferReceipt describes a completed transfer.
type TransferReceipt struct {
	From        uint64 `json:"from,string"`
	To          uint64 `json:"to,string"`
	Amount      int    `json:"amount"`
	FromBalance int    `json:"from_balance"`
	ToBalance   int    `json:"to_balance"`
}

// Transfer moves points between two players. Both legs happen under the
// store lock, so no other mutation can observe a half-applied transfer.
func (s *Store) Transfer(ctx context.Context, from, to model.Player, amount int) (TransferReceipt, error) {
	s.mu.Lock()
	receipt, notices, err := s.transfer(from, to, amount)
	s.mu.Unlock()

	record("transfer", err)
	s.send(ctx, notices)
	return receipt, err
}

func (s *Store) transfer(from, to model.Player, amount int) (TransferReceipt, []notice, error) {
	if amount <= 0 {
		return TransferReceipt{}, nil, apierror.InvalidAmount("You must transfer at least 1 RP")
	}
	if to.ID == 0 || to.ID == from.ID {
		return TransferReceipt{}, nil, apierror.NoTarget("")
	}
	fromBalance, err := s.ledger.Debit(from.ID, amount)
	if err != nil {
		return TransferReceipt{}, nil, err
	}
	toBalance, _ := s.ledger.Credit(to.ID, amount) // amount > 0
	s.markDirty(model.DocBalances)

	s.audit.Record(audit.CategoryTransfers, fmt.Sprintf("%s (%d) sent %d RP to %s (%d)", from.Name, from.ID, amount, to.Name, to.ID), logrus.Fields{
		"from":   from.ID,
		"to":     to.ID,
		"amount": amount,
	})

	return TransferReceipt{
			From:        from.ID,
			To:          to.ID,
			Amount:      amount,
			FromBalance: fromBalance,
			ToBalance:   toBalance,
		}, []notice{
			{user: from.ID, balance: fromBalance, points: true},
			{user: to.ID, balance: toBalance, points: true, message: fmt.Sprintf("You have received %d RP from %s", amount, from.Name)},
		}, nil
}
