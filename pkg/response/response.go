// Package response writes the JSON envelopes shared by every endpoint.
package response

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"serverrewards/pkg/apierror"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains listing metadata.
type Meta struct {
	Total int64 `json:"total"`
}

func write(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON sends data with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{Success: true, Data: data})
}

// JSONWithTotal sends a listing with its total.
func JSONWithTotal(w http.ResponseWriter, statusCode int, data interface{}, total int64) {
	write(w, statusCode, Response{Success: true, Data: data, Meta: &Meta{Total: total}})
}

// Error sends an error envelope. A timed out game host call becomes
// PROVIDER_UNAVAILABLE; other errors without an API code are logged and
// hidden behind a 500.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, context.DeadlineExceeded):
		apiErr = apierror.ProviderUnavailable("the game host did not answer in time")
	default:
		log.Printf("[Response] unexpected error: %v", err)
		apiErr = apierror.InternalError("an unexpected error occurred")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	w.Write(apiErr.ToJSON())
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with the created resource.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}
