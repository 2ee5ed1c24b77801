package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCircuitBreaker_OpensAfterServerErrors(t *testing.T) {
	// Arrange
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	cfg := CircuitBreakerConfig{
		Name:             "store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	calls := 0
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	h := CircuitBreaker(cfg, errs, zap.NewNop())(failing)

	// Act
	first := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	third := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Equal(t, http.StatusServiceUnavailable, third.Code)
	assert.Equal(t, 2, calls)
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	cfg := DefaultCircuitBreakerConfig("store")
	cfg.MinRequests = 1
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := CircuitBreaker(cfg, errs, zap.NewNop())(notFound)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusNotFound, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRequireRole(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireRole(errs, common.RoleAdmin)(ok)

	tests := []struct {
		name  string
		actor *common.Actor
		want  int
	}{
		{name: "anonymous", actor: nil, want: http.StatusUnauthorized},
		{name: "author", actor: &common.Actor{AuthorID: "a", Roles: []string{"authenticated"}}, want: http.StatusForbidden},
		{name: "admin", actor: &common.Actor{AuthorID: "a", Roles: []string{common.RoleAdmin}}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/tags/t", nil)
			if tt.actor != nil {
				r = r.WithContext(common.WithActor(r.Context(), *tt.actor))
			}
			assert.Equal(t, tt.want, serve(h, r).Code)
		})
	}
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	status := http.StatusOK
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/dimensions/d", nil))
	status = http.StatusBadGateway
	serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/dimensions/d", nil))
	status = http.StatusOK
	serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	}
}
