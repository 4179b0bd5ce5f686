// Package ledger tracks reward point balances.
//
// Ledger is not safe for concurrent use; the store serializes access.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"serverrewards/pkg/apierror"
)

// Ledger maps users to non-negative point balances.
type Ledger struct {
	balances map[uint64]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[uint64]int)}
}

// Balance returns the user's balance, 0 when the user is unknown.
func (l *Ledger) Balance(user uint64) int {
	return l.balances[user]
}

// Has reports whether the user has an entry.
func (l *Ledger) Has(user uint64) bool {
	_, ok := l.balances[user]
	return ok
}

// Credit adds amount to the user's balance and returns the new balance.
func (l *Ledger) Credit(user uint64, amount int) (int, error) {
	if amount <= 0 {
		return l.balances[user], apierror.InvalidAmount("")
	}
	l.balances[user] += amount
	return l.balances[user], nil
}

// Debit removes amount from the user's balance. The balance is never allowed
// to go negative.
func (l *Ledger) Debit(user uint64, amount int) (int, error) {
	if amount <= 0 {
		return l.balances[user], apierror.InvalidAmount("")
	}
	bal := l.balances[user]
	if amount > bal {
		return bal, apierror.InsufficientFunds(fmt.Sprintf("balance %d is less than %d", bal, amount))
	}
	l.balances[user] = bal - amount
	return l.balances[user], nil
}

// Take removes up to amount from an existing entry, stopping at zero.
func (l *Ledger) Take(user uint64, amount int) (int, error) {
	if !l.Has(user) {
		return 0, apierror.NotFound(fmt.Sprintf("%d does not have any RP", user))
	}
	if amount <= 0 {
		return l.balances[user], apierror.InvalidAmount("")
	}
	l.balances[user] = max(l.balances[user]-amount, 0)
	return l.balances[user], nil
}

// Clear zeroes an existing entry.
func (l *Ledger) Clear(user uint64) error {
	if !l.Has(user) {
		return apierror.NotFound(fmt.Sprintf("%d does not have any RP", user))
	}
	l.balances[user] = 0
	return nil
}

// CreditAll adds amount to every known user.
func (l *Ledger) CreditAll(amount int) ([]uint64, error) {
	if amount <= 0 {
		return nil, apierror.InvalidAmount("")
	}
	users := l.Users()
	for _, u := range users {
		l.balances[u] += amount
	}
	return users, nil
}

// TakeAll removes amount from every known user, stopping at zero.
func (l *Ledger) TakeAll(amount int) ([]uint64, error) {
	if amount <= 0 {
		return nil, apierror.InvalidAmount("")
	}
	users := l.Users()
	for _, u := range users {
		l.balances[u] = max(l.balances[u]-amount, 0)
	}
	return users, nil
}

// ClearAll zeroes every known user.
func (l *Ledger) ClearAll() []uint64 {
	users := l.Users()
	for _, u := range users {
		l.balances[u] = 0
	}
	return users
}

// Users returns every user with an entry, sorted.
func (l *Ledger) Users() []uint64 {
	users := make([]uint64, 0, len(l.balances))
	for u := range l.balances {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.balances)
}

// Total sums every balance.
func (l *Ledger) Total() int {
	total := 0
	for _, b := range l.balances {
		total += b
	}
	return total
}

// Replace installs balances wholesale. Negative balances are clamped to 0.
func (l *Ledger) Replace(balances map[uint64]int) {
	l.balances = make(map[uint64]int, len(balances))
	for u, b := range balances {
		l.balances[u] = max(b, 0)
	}
}

// MarshalJSON encodes the ledger as {"<user>": balance}.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.balances)
}

// UnmarshalJSON replaces the ledger's contents.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var balances map[uint64]int
	if err := json.Unmarshal(data, &balances); err != nil {
		return err
	}
	l.Replace(balances)
	return nil
}
