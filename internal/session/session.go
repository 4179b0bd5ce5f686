// Package session drives each connected player's store screens. A session
// consumes one command at a time and answers with a full render model.
package session

import (
	"sync"

	"serverrewards/internal/model"
	"serverrewards/internal/store"

	"github.com/shopspring/decimal"
)

// Session is one player's UI state. It lives in memory only.
type Session struct {
	mu sync.Mutex

	userID       uint64
	npcID        uint64
	screen       Screen
	category     model.NavigationCategory
	itemCategory model.ItemCategory
	search       string
	adminMode    bool
	exitToGame   bool

	draft    *model.Product
	selector SelectorKind

	deleteType model.ProductType
	deleteID   int

	sale store.SaleQuote

	transferTarget uint64
	transferAmount int

	exchangePoints   int
	exchangeExternal decimal.Decimal

	toast    *Toast
	toastSeq int
}

func newSession(userID uint64) *Session {
	return &Session{
		userID:       userID,
		screen:       ScreenClosed,
		itemCategory: model.CategoryAll,
	}
}

// UserID returns the owning user.
func (s *Session) UserID() uint64 {
	return s.userID
}

// show switches screens. Any toast from the previous screen is dismissed.
func (s *Session) show(screen Screen) {
	s.screen = screen
	s.toast = nil
}

// resetFilters clears the search text and item category filter.
func (s *Session) resetFilters() {
	s.search = ""
	s.itemCategory = model.CategoryAll
}

func (s *Session) resetTransfer() {
	s.transferTarget = 0
	s.transferAmount = 0
}

func (s *Session) resetExchange() {
	s.exchangePoints = 0
	s.exchangeExternal = decimal.Zero
}

// notify raises a toast and returns its sequence number.
func (s *Session) notify(kind ToastKind, title, message, code string) int {
	s.toastSeq++
	s.toast = &Toast{Seq: s.toastSeq, Kind: kind, Title: title, Message: message, Code: code}
	return s.toastSeq
}

// closeToast dismisses the toast with sequence seq. Older toasts have
// already been replaced, so their close requests are ignored.
func (s *Session) closeToast(seq int) {
	if s.toast != nil && s.toast.Seq == seq {
		s.toast = nil
	}
}
