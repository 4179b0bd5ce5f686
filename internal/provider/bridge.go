package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"serverrewards/internal/model"

	"github.com/shopspring/decimal"
)

// errNotFound is returned by do for a 404 answer.
var errNotFound = errors.New("not found")

// BridgeConfig configures the HTTP bridge to the game host.
type BridgeConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Bridge implements every capability by calling the game host's HTTP
// bridge. Each call is bounded by the configured timeout; a failed call is
// logged and reported as a refusal.
type Bridge struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewBridge creates a bridge client.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid bridge url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Bridge{
		baseURL: base,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (b *Bridge) do(ctx context.Context, method, path string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.apiKey != "" {
		req.Header.Set("X-API-Key", b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type okResponse struct {
	OK bool `json:"ok"`
}

// call performs a command-style request and reports the host's verdict.
func (b *Bridge) call(ctx context.Context, op, path string, in interface{}) bool {
	var out okResponse
	if err := b.do(ctx, http.MethodPost, path, in, &out); err != nil {
		log.Printf("[Bridge] %s failed: %v", op, err)
		return false
	}
	return out.OK
}

func userPath(prefix string, user uint64) string {
	return prefix + "/" + strconv.FormatUint(user, 10)
}

// =============================================================================
// Fulfiller
// =============================================================================

// GiveItem asks the host to give an item stack.
func (b *Bridge) GiveItem(ctx context.Context, user uint64, shortname string, amount int, skinID uint64, blueprint bool) bool {
	return b.call(ctx, "give item", "/fulfill/item", map[string]interface{}{
		"user_id":   strconv.FormatUint(user, 10),
		"shortname": shortname,
		"amount":    amount,
		"skin_id":   strconv.FormatUint(skinID, 10),
		"blueprint": blueprint,
	})
}

// GiveKit asks the kit provider to give a kit.
func (b *Bridge) GiveKit(ctx context.Context, user uint64, kit string) bool {
	return b.call(ctx, "give kit", "/fulfill/kit", map[string]interface{}{
		"user_id": strconv.FormatUint(user, 10),
		"kit":     kit,
	})
}

// RunCommands runs already expanded server commands.
func (b *Bridge) RunCommands(ctx context.Context, user uint64, commands []string) bool {
	return b.call(ctx, "run commands", "/fulfill/commands", map[string]interface{}{
		"user_id":  strconv.FormatUint(user, 10),
		"commands": commands,
	})
}

// =============================================================================
// Currency
// =============================================================================

// Balance returns the external currency balance, zero when unknown.
func (b *Bridge) Balance(ctx context.Context, user uint64) decimal.Decimal {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := b.do(ctx, http.MethodGet, userPath("/currency", user), nil, &out); err != nil {
		log.Printf("[Bridge] currency balance failed: %v", err)
		return decimal.Zero
	}
	return out.Balance
}

// Deposit credits the external currency.
func (b *Bridge) Deposit(ctx context.Context, user uint64, amount decimal.Decimal) bool {
	return b.call(ctx, "deposit", userPath("/currency", user)+"/deposit", map[string]interface{}{"amount": amount})
}

// Withdraw debits the external currency.
func (b *Bridge) Withdraw(ctx context.Context, user uint64, amount decimal.Decimal) bool {
	return b.call(ctx, "withdraw", userPath("/currency", user)+"/withdraw", map[string]interface{}{"amount": amount})
}

// =============================================================================
// Ownership
// =============================================================================

// IsOwnedOrFree asks whether a user may use an item and skin. When the host
// cannot answer the item is allowed.
func (b *Bridge) IsOwnedOrFree(ctx context.Context, user uint64, itemID int, skinID uint64) bool {
	q := url.Values{}
	q.Set("item_id", strconv.Itoa(itemID))
	q.Set("skin_id", strconv.FormatUint(skinID, 10))

	var out okResponse
	if err := b.do(ctx, http.MethodGet, userPath("/ownership", user)+"?"+q.Encode(), nil, &out); err != nil {
		log.Printf("[Bridge] ownership check failed: %v", err)
		return true
	}
	return out.OK
}

// =============================================================================
// Kits
// =============================================================================

// Kit looks up a kit by name.
func (b *Bridge) Kit(ctx context.Context, name string) (model.KitInfo, bool) {
	var out model.KitInfo
	err := b.do(ctx, http.MethodGet, "/kits/"+url.PathEscape(name), nil, &out)
	if err != nil {
		if !errors.Is(err, errNotFound) {
			log.Printf("[Bridge] kit lookup failed: %v", err)
		}
		return model.KitInfo{}, false
	}
	return out, true
}

// IsKit reports whether a kit exists.
func (b *Bridge) IsKit(ctx context.Context, name string) bool {
	_, ok := b.Kit(ctx, name)
	return ok
}

// Kits lists every kit.
func (b *Bridge) Kits(ctx context.Context) []model.KitInfo {
	var out []model.KitInfo
	if err := b.do(ctx, http.MethodGet, "/kits", nil, &out); err != nil {
		log.Printf("[Bridge] kit list failed: %v", err)
		return nil
	}
	return out
}

// =============================================================================
// Items
// =============================================================================

// Definition looks up an item by shortname.
func (b *Bridge) Definition(ctx context.Context, shortname string) (model.ItemDefinition, bool) {
	var out model.ItemDefinition
	err := b.do(ctx, http.MethodGet, "/items/"+url.PathEscape(shortname), nil, &out)
	if err != nil {
		if !errors.Is(err, errNotFound) {
			log.Printf("[Bridge] item lookup failed: %v", err)
		}
		return model.ItemDefinition{}, false
	}
	return out, true
}

// Definitions lists every item definition.
func (b *Bridge) Definitions(ctx context.Context) []model.ItemDefinition {
	var out []model.ItemDefinition
	if err := b.do(ctx, http.MethodGet, "/items", nil, &out); err != nil {
		log.Printf("[Bridge] item list failed: %v", err)
		return nil
	}
	return out
}

// =============================================================================
// Inventory
// =============================================================================

// Items returns the items a user holds.
func (b *Bridge) Items(ctx context.Context, user uint64) []model.HeldItem {
	var out []model.HeldItem
	if err := b.do(ctx, http.MethodGet, userPath("/inventory", user), nil, &out); err != nil {
		log.Printf("[Bridge] inventory read failed: %v", err)
		return nil
	}
	return out
}

// Find returns one held item by reference.
func (b *Bridge) Find(ctx context.Context, user uint64, ref uint64) (model.HeldItem, bool) {
	for _, item := range b.Items(ctx, user) {
		if item.Ref == ref {
			return item, true
		}
	}
	return model.HeldItem{}, false
}

// Take removes amount units of a held item.
func (b *Bridge) Take(ctx context.Context, user uint64, ref uint64, amount int) bool {
	return b.call(ctx, "take item", userPath("/inventory", user)+"/take", map[string]interface{}{
		"ref":    strconv.FormatUint(ref, 10),
		"amount": amount,
	})
}

// =============================================================================
// Notifier
// =============================================================================

// PointsUpdated tells the host about a new balance.
func (b *Bridge) PointsUpdated(ctx context.Context, user uint64, balance int) {
	b.call(ctx, "points notification", "/notify/points", map[string]interface{}{
		"user_id": strconv.FormatUint(user, 10),
		"balance": balance,
	})
}

// Message sends a chat message to a user.
func (b *Bridge) Message(ctx context.Context, user uint64, text string) {
	b.call(ctx, "message", "/notify/message", map[string]interface{}{
		"user_id": strconv.FormatUint(user, 10),
		"text":    text,
	})
}

var (
	_ Fulfiller = (*Bridge)(nil)
	_ Currency  = (*Bridge)(nil)
	_ Ownership = (*Bridge)(nil)
	_ Kits      = (*Bridge)(nil)
	_ Items     = (*Bridge)(nil)
	_ Inventory = (*Bridge)(nil)
	_ Notifier  = (*Bridge)(nil)
)
