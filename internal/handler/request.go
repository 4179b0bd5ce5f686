package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"serverrewards/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// pathID parses a numeric path parameter such as user_id or npc_id.
func pathID(r *http.Request, param string) (uint64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, apierror.BadRequest(param + " is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apierror.InvalidField(param, fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

// decodeBody reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierror.BadRequest("invalid JSON")
}
