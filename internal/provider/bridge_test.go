package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"serverrewards/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// fakeHost is a minimal game host bridge.
type fakeHost struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]interface{}
	balance  string
	accept   bool
}

func (h *fakeHost) record(r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, r.Method+" "+r.URL.Path)
	if r.Body != nil && r.Method == http.MethodPost {
		var body map[string]interface{}
		if json.NewDecoder(r.Body).Decode(&body) == nil {
			if h.bodies == nil {
				h.bodies = make(map[string]map[string]interface{})
			}
			h.bodies[r.URL.Path] = body
		}
	}
}

func (h *fakeHost) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-API-Key") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h.record(req)
			next.ServeHTTP(w, req)
		})
	})
	ok := func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"ok": h.accept})
	}
	r.Post("/fulfill/item", ok)
	r.Post("/fulfill/kit", ok)
	r.Post("/fulfill/commands", ok)
	r.Post("/currency/{user}/deposit", ok)
	r.Post("/currency/{user}/withdraw", ok)
	r.Post("/inventory/{user}/take", ok)
	r.Post("/notify/points", ok)
	r.Post("/notify/message", ok)
	r.Get("/currency/{user}", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"balance":"` + h.balance + `"}`))
	})
	r.Get("/ownership/{user}", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"ok": req.URL.Query().Get("skin_id") == "0"})
	})
	r.Get("/kits", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]model.KitInfo{{Name: "starter"}})
	})
	r.Get("/kits/{name}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "name") != "starter" {
			http.NotFound(w, req)
			return
		}
		json.NewEncoder(w).Encode(model.KitInfo{Name: "starter", Description: "Starter kit"})
	})
	r.Get("/items", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]model.ItemDefinition{{ItemID: 1, Shortname: "wood", Category: model.CategoryResources}})
	})
	r.Get("/items/{shortname}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "shortname") != "wood" {
			http.NotFound(w, req)
			return
		}
		json.NewEncoder(w).Encode(model.ItemDefinition{ItemID: 1, Shortname: "wood", Category: model.CategoryResources})
	})
	r.Get("/inventory/{user}", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"ref":"55","shortname":"wood","amount":100,"skin_id":"0"}]`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newBridge(t *testing.T, h *fakeHost) *Bridge {
	t.Helper()
	b, err := NewBridge(BridgeConfig{BaseURL: h.server(t).URL + "/", APIKey: "secret", Timeout: time.Second})
	require.NoError(t, err)
	return b
}

func TestNewBridge_RejectsBadURL(t *testing.T) {
	_, err := NewBridge(BridgeConfig{BaseURL: ""})
	assert.Error(t, err)
	_, err = NewBridge(BridgeConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestBridge_Fulfiller(t *testing.T) {
	h := &fakeHost{accept: true}
	b := newBridge(t, h)

	assert.True(t, b.GiveItem(ctx, 7, "wood", 100, 0, false))
	assert.True(t, b.GiveKit(ctx, 7, "starter"))
	assert.True(t, b.RunCommands(ctx, 7, []string{"say hi"}))

	assert.Equal(t, "7", h.bodies["/fulfill/item"]["user_id"])
	assert.Equal(t, "wood", h.bodies["/fulfill/item"]["shortname"])
	assert.Equal(t, "starter", h.bodies["/fulfill/kit"]["kit"])

	h.accept = false
	assert.False(t, b.GiveItem(ctx, 7, "wood", 1, 0, false))
}

func TestBridge_Currency(t *testing.T) {
	h := &fakeHost{accept: true, balance: "12.5"}
	b := newBridge(t, h)

	assert.True(t, b.Balance(ctx, 7).Equal(decimal.RequireFromString("12.5")))
	assert.True(t, b.Deposit(ctx, 7, decimal.NewFromInt(3)))
	assert.True(t, b.Withdraw(ctx, 7, decimal.NewFromInt(3)))
	assert.Contains(t, h.requests, "POST /currency/7/deposit")
}

func TestBridge_Lookups(t *testing.T) {
	b := newBridge(t, &fakeHost{})

	kit, ok := b.Kit(ctx, "starter")
	require.True(t, ok)
	assert.Equal(t, "Starter kit", kit.Description)
	assert.False(t, b.IsKit(ctx, "missing"))
	assert.Len(t, b.Kits(ctx), 1)

	def, ok := b.Definition(ctx, "wood")
	require.True(t, ok)
	assert.Equal(t, model.CategoryResources, def.Category)
	_, ok = b.Definition(ctx, "stone")
	assert.False(t, ok)
	assert.Len(t, b.Definitions(ctx), 1)

	assert.True(t, b.IsOwnedOrFree(ctx, 7, 1, 0))
	assert.False(t, b.IsOwnedOrFree(ctx, 7, 1, 99))
}

func TestBridge_Inventory(t *testing.T) {
	h := &fakeHost{accept: true}
	b := newBridge(t, h)

	held, ok := b.Find(ctx, 7, 55)
	require.True(t, ok)
	assert.Equal(t, "wood", held.Shortname)
	_, ok = b.Find(ctx, 7, 56)
	assert.False(t, ok)

	assert.True(t, b.Take(ctx, 7, 55, 10))
	assert.Equal(t, "55", h.bodies["/inventory/7/take"]["ref"])
}

func TestBridge_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	b, err := NewBridge(BridgeConfig{BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	assert.False(t, b.GiveKit(ctx, 1, "starter"))
	assert.True(t, b.Balance(ctx, 1).IsZero())
	assert.True(t, b.IsOwnedOrFree(ctx, 1, 1, 1))
	assert.Nil(t, b.Definitions(ctx))
	b.Message(ctx, 1, "hello")
}

func TestBridge_WrongKey(t *testing.T) {
	h := &fakeHost{accept: true}
	srv := h.server(t)
	b, err := NewBridge(BridgeConfig{BaseURL: srv.URL, APIKey: "wrong"})
	require.NoError(t, err)
	assert.False(t, b.GiveKit(ctx, 1, "starter"))
}

func TestFromBridge(t *testing.T) {
	b := newBridge(t, &fakeHost{accept: true})
	set := FromBridge(b)
	assert.NotNil(t, set.Fulfiller)
	assert.NotNil(t, set.Notifier)
	set.PointsUpdated(ctx, 7, 10)
}
