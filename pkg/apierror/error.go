package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors.Is works
// against the sentinel values below regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	}

	if len(e.Details) > 0 {
		response["error"].(map[string]interface{})["details"] = e.Details
	}

	data, _ := json.Marshal(response)
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    message,
	}
}

// Conflict creates a 409 Conflict error.
func Conflict(message string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       "CONFLICT",
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
	}
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
	}
}

// Domain error codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeOnCooldown          = "ON_COOLDOWN"
	CodeNotSellable         = "NOT_SELLABLE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeNoTarget            = "NO_TARGET"
	CodeFulfillmentFailed   = "FULFILLMENT_FAILED"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeProviderRejected    = "PROVIDER_REJECTED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidField        = "INVALID_FIELD"
)

// Sentinels for errors.Is.
var (
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds}
	ErrOnCooldown          = &Error{Code: CodeOnCooldown}
	ErrNotSellable         = &Error{Code: CodeNotSellable}
	ErrInvalidAmount       = &Error{Code: CodeInvalidAmount}
	ErrNoTarget            = &Error{Code: CodeNoTarget}
	ErrFulfillmentFailed   = &Error{Code: CodeFulfillmentFailed}
	ErrProviderUnavailable = &Error{Code: CodeProviderUnavailable}
	ErrProviderRejected    = &Error{Code: CodeProviderRejected}
	ErrPermissionDenied    = &Error{Code: CodeForbidden}
	ErrInvalidField        = &Error{Code: CodeInvalidField}
)

// InsufficientFunds creates a 409 error for a balance that cannot cover a charge.
func InsufficientFunds(message string) *Error {
	if message == "" {
		message = "Insufficient funds"
	}
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeInsufficientFunds,
		Message:    message,
	}
}

// OnCooldown creates a 429 error for a product still on cooldown.
func OnCooldown(message string) *Error {
	return &Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeOnCooldown,
		Message:    message,
	}
}

// NotSellable creates a 422 error for an item that cannot be sold.
func NotSellable(message string) *Error {
	if message == "" {
		message = "This item cannot be sold"
	}
	return &Error{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       CodeNotSellable,
		Message:    message,
	}
}

// InvalidAmount creates a 400 error for zero, negative or unparsable amounts.
func InvalidAmount(message string) *Error {
	if message == "" {
		message = "Amount must be greater than zero"
	}
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidAmount,
		Message:    message,
	}
}

// NoTarget creates a 404 error for a missing transfer recipient.
func NoTarget(message string) *Error {
	if message == "" {
		message = "No recipient selected"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeNoTarget,
		Message:    message,
	}
}

// FulfillmentFailed creates a 502 error for a delivery the host refused.
func FulfillmentFailed(message string) *Error {
	if message == "" {
		message = "Unable to deliver the purchase"
	}
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       CodeFulfillmentFailed,
		Message:    message,
	}
}

// ProviderUnavailable creates a 503 error for an absent external provider.
func ProviderUnavailable(message string) *Error {
	if message == "" {
		message = "External provider unavailable"
	}
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeProviderUnavailable,
		Message:    message,
	}
}

// ProviderRejected creates a 502 error for an external provider refusing an operation.
func ProviderRejected(message string) *Error {
	if message == "" {
		message = "External provider rejected the operation"
	}
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       CodeProviderRejected,
		Message:    message,
	}
}

// InvalidField creates a 400 error for a product field edit that was refused.
func InvalidField(field, message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidField,
		Message:    message,
		Details:    []FieldError{{Field: field, Message: message}},
	}
}

// CodeOf returns the code of an *Error anywhere in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
