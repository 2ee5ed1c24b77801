package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConstructors_StatusAndType(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		check  func(error) bool
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest, IsValidation},
		{"not found", NewNotFoundError("dimension"), http.StatusNotFound, IsNotFound},
		{"forbidden", NewForbiddenError(""), http.StatusForbidden, IsForbidden},
		{"unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized, IsUnauthorized},
		{"internal", NewInternalError("boom"), http.StatusInternalServerError, IsInternal},
		{"persistence", NewPersistenceError("insert tag", stderrors.New("disk")), http.StatusInternalServerError, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "dimension not found", NewNotFoundError("dimension").Message)
}

func TestPersistenceError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection reset")

	err := NewPersistenceError("list tags", cause)

	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, GetAppError(err))
	assert.Nil(t, GetAppError(cause))
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	t.Run("app error keeps its status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dimensions/abc", nil)

		h.Handle(rec, req, NewNotFoundError("dimension"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Error)
		assert.Equal(t, "NOT_FOUND", body.Type)
		assert.Equal(t, "dimension not found", body.Message)
	})

	t.Run("details are returned", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cruxes/abc/tags", nil)

		h.Handle(rec, req, NewValidationError("labels is required").
			WithDetails(map[string]interface{}{"fields": map[string]interface{}{"SyncTagsRequest.labels": "labels is required"}}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Details, "fields")
		assert.NotContains(t, body.Details, "stack_trace")
	})

	t.Run("plain error is hidden behind internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		h.Handle(rec, req, stderrors.New("sql: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "An internal error occurred", body.Message)
	})
}

func TestErrorHandler_MiddlewareRecoversPanic(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("unexpected")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
