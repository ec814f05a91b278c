package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/auth"
)

// Tenant copies the tenant id from a trusted header into the request context. A tenant
// already placed on the context by an embedding application wins; a conflicting header is
// rejected.
func Tenant(header string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(header)
			if header == "" || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := auth.ParseTenantID(raw)
			if err != nil {
				logger.Debug("rejecting tenant header", zap.String("header", header), zap.Error(err))
				http.Error(w, "invalid tenant", http.StatusUnauthorized)
				return
			}
			if err := auth.EnforceTenantScope(r.Context(), id); err != nil {
				http.Error(w, "tenant mismatch", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithTenantID(r.Context(), id)))
		})
	}
}
