package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/auth"
)

func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.TenantIDFromContext(r.Context()); ok {
			w.Header().Set("X-Seen-Tenant", "yes")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestTenant_HeaderPopulatesContext(t *testing.T) {
	h := Tenant("X-Tenant-ID", nil)(tenantEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/events", nil)
	req.Header.Set("X-Tenant-ID", "7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Seen-Tenant"))
}

func TestTenant_RejectsBadOrConflictingHeader(t *testing.T) {
	h := Tenant("X-Tenant-ID", nil)(tenantEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.ContextWithTenantID(req.Context(), 1))
	req.Header.Set("X-Tenant-ID", "2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTenant_NoHeaderPassesThrough(t *testing.T) {
	h := Tenant("X-Tenant-ID", nil)(tenantEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Seen-Tenant"))
}

func TestLogging_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz?event=1", nil))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, int64(http.StatusTeapot), fields["status"])
		assert.Equal(t, "/healthz", fields["path"])
		assert.Equal(t, int64(15), fields["bytes"])
	}
}
