package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testErrorHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "year must be numeric", "/api/dashboard")
	p.WithExtension("trace_id", "abc-123")
	p.WithExtension("details", map[string]string{"field": "year"})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, TypeValidation, got["type"])
	assert.Equal(t, "Bad Request", got["title"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.Equal(t, "year must be numeric", got["detail"])
	assert.Equal(t, "/api/dashboard", got["instance"])
	assert.Equal(t, "abc-123", got["trace_id"])

	details, ok := got["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "year", details["field"])
}

func TestErrorToProblem(t *testing.T) {
	h := testErrorHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "source unavailable",
			err:        SourceUnavailableError(fmt.Errorf("orders: connection refused"), true),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeSourceUnavailable,
		},
		{
			name:       "schema mismatch",
			err:        SchemaMismatchError(fmt.Errorf("orders: missing columns [qty]")),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeSchemaMismatch,
		},
		{
			name:       "empty dataset",
			err:        New(http.StatusBadGateway, "EMPTY_DATASET", "Source tables contained no usable order rows"),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeEmptyDataset,
		},
		{
			name:       "not refreshed",
			err:        New(http.StatusServiceUnavailable, "NOT_REFRESHED", "Dashboard data has not been loaded yet"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeNotRefreshed,
		},
		{
			name:       "validation",
			err:        ErrValidation("year", "year must be numeric"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/dashboard", problem.Instance)
		})
	}
}

func TestErrorToProblem_CarriesDetails(t *testing.T) {
	h := testErrorHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	problem := h.ErrorToProblem(SourceUnavailableError(fmt.Errorf("orders: 403"), true), req)
	details, ok := problem.Extensions["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, details["stale_served"])
}

func TestHandleError(t *testing.T) {
	h := testErrorHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, ErrValidation("year", "year must be numeric"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeValidation, body["type"])
	_, hasTraceID := body["trace_id"]
	assert.True(t, hasTraceID)
}

func TestHandleError_NilError(t *testing.T) {
	h := testErrorHandler()

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Empty(t, rec.Body.String())
}
