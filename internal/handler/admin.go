package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"serverrewards/internal/cache"
	"serverrewards/internal/migrate"
	"serverrewards/internal/model"
	"serverrewards/internal/repository"
	"serverrewards/internal/service"
	"serverrewards/internal/store"
	"serverrewards/pkg/apierror"
	"serverrewards/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Saver runs an immediate save and cooldown prune.
type Saver interface {
	RunNow(ctx context.Context) (service.RunResult, error)
}

// Migrator converts legacy documents on demand.
type Migrator interface {
	MoveLegacy(ctx context.Context) ([]model.DocumentName, error)
	Run(ctx context.Context, force bool) (migrate.Report, error)
}

// SessionCounter reports live sessions.
type SessionCounter interface {
	Active() int
}

// AdminConfig wires an AdminHandler. Buffer, Repo, Saver, Migrator and
// Sessions may be nil.
type AdminConfig struct {
	Store    *store.Store
	Saver    Saver
	Migrator Migrator
	Sessions SessionCounter
	Buffer   cache.DocumentBuffer
	Repo     repository.DocumentRepository
	DBType   string
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store     *store.Store
	saver     Saver
	migrator  Migrator
	sessions  SessionCounter
	buffer    cache.DocumentBuffer
	repo      repository.DocumentRepository
	dbType    string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		store:     cfg.Store,
		saver:     cfg.Saver,
		migrator:  cfg.Migrator,
		sessions:  cfg.Sessions,
		buffer:    cfg.Buffer,
		repo:      cfg.Repo,
		dbType:    cfg.DBType,
		startTime: time.Now(),
	}
}

// =============================================================================
// Points
// =============================================================================

// AdminPointsRequest is an admin points command. Target is a user id or "*".
type AdminPointsRequest struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Amount int    `json:"amount"`
}

// Points handles POST /api/v1/admin/points
func (h *AdminHandler) Points(w http.ResponseWriter, r *http.Request) {
	var req AdminPointsRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	target := strings.TrimSpace(req.Target)
	all := target == "*"
	var user uint64
	if !all {
		id, err := strconv.ParseUint(target, 10, 64)
		if err != nil {
			response.Error(w, apierror.InvalidField("target", fmt.Sprintf("%q is not a user id or *", req.Target)))
			return
		}
		user = id
	}

	action := store.PointsAction(strings.ToLower(strings.TrimSpace(req.Action)))
	res, err := h.store.AdminPoints(r.Context(), action, user, all, req.Amount)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, res)
}

// =============================================================================
// Sell prices
// =============================================================================

type sellPriceRequest struct {
	SkinID uint64          `json:"skin_id,string"`
	Price  decimal.Decimal `json:"price"`
}

type multiplierRequest struct {
	Multiplier decimal.Decimal `json:"multiplier"`
}

// GetSellable handles GET /api/v1/admin/sellable/{shortname}
func (h *AdminHandler) GetSellable(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "shortname")
	info, err := h.store.SellInfo(r.Context(), shortname)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"shortname": shortname,
		"info":      info,
	})
}

// SetSellPrice handles PUT /api/v1/admin/sellable/{shortname}/price
func (h *AdminHandler) SetSellPrice(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "shortname")
	var req sellPriceRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.store.SetSellPrice(r.Context(), shortname, req.SkinID, req.Price); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"shortname": shortname,
		"skin_id":   formatUint(req.SkinID),
		"price":     req.Price,
	})
}

// SetSkinMultiplier handles PUT /api/v1/admin/sellable/{shortname}/multiplier
func (h *AdminHandler) SetSkinMultiplier(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "shortname")
	var req multiplierRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.store.SetSkinMultiplier(r.Context(), shortname, req.Multiplier); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"shortname":  shortname,
		"multiplier": req.Multiplier,
	})
}

// =============================================================================
// NPC stores
// =============================================================================

// ListNpcs handles GET /api/v1/admin/npcs
func (h *AdminHandler) ListNpcs(w http.ResponseWriter, r *http.Request) {
	npcs := h.store.Npcs()
	response.JSONWithTotal(w, http.StatusOK, npcs, int64(len(npcs)))
}

// AddNpc handles POST /api/v1/admin/npcs/{npc_id}
func (h *AdminHandler) AddNpc(w http.ResponseWriter, r *http.Request) {
	npcID, err := pathID(r, "npc_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	st, err := h.store.AddNpc(npcID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, st)
}

// RemoveNpc handles DELETE /api/v1/admin/npcs/{npc_id}
func (h *AdminHandler) RemoveNpc(w http.ResponseWriter, r *http.Request) {
	npcID, err := pathID(r, "npc_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.store.RemoveNpc(npcID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// SetNpcName handles PUT /api/v1/admin/npcs/{npc_id}/name
func (h *AdminHandler) SetNpcName(w http.ResponseWriter, r *http.Request) {
	npcID, err := pathID(r, "npc_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.Error(w, apierror.InvalidField("name", "name is required"))
		return
	}

	if err := h.store.SetNpcName(npcID, req.Name); err != nil {
		response.Error(w, err)
		return
	}
	h.writeNpc(w, npcID)
}

// ToggleNpcNavigation handles POST /api/v1/admin/npcs/{npc_id}/navigation/{category}
func (h *AdminHandler) ToggleNpcNavigation(w http.ResponseWriter, r *http.Request) {
	npcID, err := pathID(r, "npc_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	raw := chi.URLParam(r, "category")
	category := model.ParseNavigationCategory(raw)
	if category == model.NavNone {
		response.Error(w, apierror.InvalidField("category", fmt.Sprintf("%q is not a store category", raw)))
		return
	}

	enabled, err := h.store.ToggleNpcNavigation(npcID, category)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"npc_id":   formatUint(npcID),
		"category": category,
		"enabled":  enabled,
	})
}

// ToggleNpcCustom handles POST /api/v1/admin/npcs/{npc_id}/custom
func (h *AdminHandler) ToggleNpcCustom(w http.ResponseWriter, r *http.Request) {
	npcID, err := pathID(r, "npc_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	custom, err := h.store.ToggleNpcCustom(npcID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"npc_id":       formatUint(npcID),
		"custom_store": custom,
	})
}

func (h *AdminHandler) writeNpc(w http.ResponseWriter, npcID uint64) {
	st, ok := h.store.Npc(npcID)
	if !ok {
		response.Error(w, apierror.NotFound("npc store not found"))
		return
	}
	response.OK(w, st)
}

// =============================================================================
// Persistence
// =============================================================================

// Migrate handles POST /api/v1/admin/migrate
func (h *AdminHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	if h.migrator == nil {
		response.Error(w, apierror.ServiceUnavailable("migration is not configured"))
		return
	}

	var req struct {
		Force bool `json:"force"`
	}
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	moved, err := h.migrator.MoveLegacy(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError(err.Error()))
		return
	}
	report, err := h.migrator.Run(r.Context(), req.Force)
	if err != nil {
		response.Error(w, apierror.InternalError(err.Error()))
		return
	}
	if report.Migrated() > 0 {
		h.store.ReconcileSellPrices(r.Context())
	}

	response.OK(w, map[string]interface{}{
		"moved":  moved,
		"report": report,
	})
}

// Save handles POST /api/v1/admin/save
func (h *AdminHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h.saver == nil {
		response.Error(w, apierror.ServiceUnavailable("saving is not configured"))
		return
	}

	res, err := h.saver.RunNow(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError(err.Error()))
		return
	}
	response.OK(w, res)
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	stats["economy"] = h.store.Stats()
	if h.sessions != nil {
		stats["sessions_active"] = h.sessions.Active()
	}

	if h.buffer != nil {
		count, err := h.buffer.Count(ctx)
		if err == nil {
			stats["redis_buffer"] = map[string]interface{}{
				"pending_documents": count,
				"status":            "connected",
			}
		} else {
			stats["redis_buffer"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["redis_buffer"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	if h.repo != nil {
		repoStats, err := h.repo.GetStats(ctx)
		if err == nil {
			repoStats["status"] = "connected"
			stats["storage"] = repoStats
		} else {
			stats["storage"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["storage"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
