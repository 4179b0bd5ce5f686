package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"serverrewards/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.OnCooldown("wait"), http.StatusTooManyRequests, apierror.CodeOnCooldown},
		{"wrapped", fmt.Errorf("sell: %w", apierror.NotSellable("")), http.StatusUnprocessableEntity, apierror.CodeNotSellable},
		{"timeout", fmt.Errorf("bridge: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, apierror.CodeProviderUnavailable},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestJSONWithTotal(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithTotal(rec, http.StatusOK, []string{"a", "b"}, 2)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(2), body.Meta.Total)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
