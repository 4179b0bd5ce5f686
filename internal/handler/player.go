package handler

import (
	"errors"
	"net/http"

	"serverrewards/internal/model"
	"serverrewards/internal/session"
	"serverrewards/pkg/apierror"
	"serverrewards/pkg/response"
)

// PlayerHandler routes game host commands into player sessions.
type PlayerHandler struct {
	sessions *session.Manager
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(sessions *session.Manager) *PlayerHandler {
	return &PlayerHandler{sessions: sessions}
}

// actor is the player description sent with every call.
type actor struct {
	Name        string         `json:"name"`
	Admin       bool           `json:"admin"`
	Permissions []string       `json:"permissions"`
	Position    model.Position `json:"position"`
}

func (a actor) player(id uint64) model.Player {
	return model.Player{
		ID:          id,
		Name:        a.Name,
		Admin:       a.Admin,
		Permissions: a.Permissions,
		Position:    a.Position,
	}
}

// Connect handles POST /api/v1/players/{user_id}/connect
func (h *PlayerHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var body actor
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	h.sessions.Connect(body.player(userID))
	response.OK(w, map[string]interface{}{
		"status":  "connected",
		"user_id": formatUint(userID),
	})
}

// Disconnect handles POST /api/v1/players/{user_id}/disconnect
func (h *PlayerHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	h.sessions.Disconnect(userID)
	response.OK(w, map[string]interface{}{
		"status":  "disconnected",
		"user_id": formatUint(userID),
	})
}

// CommandRequest is one session command.
type CommandRequest struct {
	Verb  string   `json:"verb"`
	Args  []string `json:"args"`
	Actor actor    `json:"actor"`
}

// Command handles POST /api/v1/players/{user_id}/commands
func (h *PlayerHandler) Command(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req CommandRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Verb == "" {
		response.Error(w, apierror.InvalidField("verb", "verb is required"))
		return
	}

	rm, err := h.sessions.Handle(r.Context(), req.Actor.player(userID), session.Command{Verb: req.Verb, Args: req.Args})
	if err != nil {
		if errors.Is(err, session.ErrUnknownVerb) {
			response.Error(w, apierror.BadRequest(err.Error()))
			return
		}
		response.Error(w, err)
		return
	}
	response.OK(w, rm)
}
