package handler

import (
	"context"
	"net/http"
	"strconv"

	"serverrewards/internal/store"
	"serverrewards/pkg/response"
)

// PointsHandler exposes the reward point balance API used by other plugins.
type PointsHandler struct {
	store *store.Store
}

// NewPointsHandler creates a new points handler.
func NewPointsHandler(st *store.Store) *PointsHandler {
	return &PointsHandler{store: st}
}

// PointsResponse is a user's balance.
type PointsResponse struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
	Known   bool   `json:"known"`
}

type amountRequest struct {
	Amount int `json:"amount"`
}

func formatUint(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Get handles GET /api/v1/points/{user_id}
func (h *PointsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	balance, known := h.store.CheckPoints(userID)
	response.OK(w, PointsResponse{UserID: formatUint(userID), Balance: balance, Known: known})
}

// Add handles POST /api/v1/points/{user_id}/add
func (h *PointsHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.store.AddPoints)
}

// Take handles POST /api/v1/points/{user_id}/take
func (h *PointsHandler) Take(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.store.TakePoints)
}

func (h *PointsHandler) change(w http.ResponseWriter, r *http.Request, apply func(context.Context, uint64, int) (int, error)) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	balance, err := apply(r.Context(), userID, req.Amount)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, PointsResponse{UserID: formatUint(userID), Balance: balance, Known: true})
}
