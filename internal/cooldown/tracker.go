// Package cooldown tracks per-user purchase cooldowns.
package cooldown

import (
	"encoding/json"
	"math"
	"time"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Tracker maps user → product ID → expiry. It is not safe for concurrent use.
type Tracker struct {
	users map[uint64]map[int]time.Time
	now   Clock
}

// New creates a tracker. A nil clock uses time.Now.
func New(clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{users: make(map[uint64]map[int]time.Time), now: clock}
}

// HasCooldown reports whether the product is still cooling down for the user
// and how long remains.
func (t *Tracker) HasCooldown(user uint64, productID int) (bool, time.Duration) {
	expiry, ok := t.users[user][productID]
	if !ok {
		return false, 0
	}
	remaining := expiry.Sub(t.now())
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// AddCooldown starts a cooldown, replacing any existing one.
func (t *Tracker) AddCooldown(user uint64, productID int, seconds int) {
	if seconds <= 0 {
		return
	}
	products, ok := t.users[user]
	if !ok {
		products = make(map[int]time.Time)
		t.users[user] = products
	}
	products[productID] = t.now().Add(time.Duration(seconds) * time.Second)
}

// Prune drops expired entries and users left without any. It returns the
// number of entries removed.
func (t *Tracker) Prune() int {
	now := t.now()
	removed := 0
	for user, products := range t.users {
		for id, expiry := range products {
			if !expiry.After(now) {
				delete(products, id)
				removed++
			}
		}
		if len(products) == 0 {
			delete(t.users, user)
		}
	}
	return removed
}

// Len returns the number of active and not yet pruned entries.
func (t *Tracker) Len() int {
	n := 0
	for _, products := range t.users {
		n += len(products)
	}
	return n
}

type document struct {
	Users map[uint64]map[int]float64 `json:"Users"`
}

// MarshalJSON stores expiries as fractional unix seconds.
func (t *Tracker) MarshalJSON() ([]byte, error) {
	doc := document{Users: make(map[uint64]map[int]float64, len(t.users))}
	for user, products := range t.users {
		entries := make(map[int]float64, len(products))
		for id, expiry := range products {
			entries[id] = float64(expiry.UnixMilli()) / 1000
		}
		doc.Users[user] = entries
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the tracker's contents.
func (t *Tracker) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	t.users = make(map[uint64]map[int]time.Time, len(doc.Users))
	for user, products := range doc.Users {
		entries := make(map[int]time.Time, len(products))
		for id, secs := range products {
			whole, frac := math.Modf(secs)
			entries[id] = time.Unix(int64(whole), int64(frac*1e9))
		}
		t.users[user] = entries
	}
	if t.now == nil {
		t.now = time.Now
	}
	return nil
}
