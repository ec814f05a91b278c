package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type contextKey string

const tenantIDKey contextKey = "tenantID"

// ContextWithTenantID returns a new context that carries the authenticated tenant scope.
func ContextWithTenantID(ctx context.Context, id int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantIDKey, id)
}

// TenantIDFromContext retrieves the authenticated tenant scope from the context, if any.
func TenantIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(tenantIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseTenantID parses a tenant id as sent by a trusted upstream.
func ParseTenantID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tenant id %q", raw)
	}
	return id, nil
}

// EnforceTenantScope ensures the provided tenant matches the authenticated scope when present.
func EnforceTenantScope(ctx context.Context, tenantID int64) error {
	if tenantID <= 0 {
		return fmt.Errorf("tenantId is required")
	}
	scopedID, ok := TenantIDFromContext(ctx)
	if !ok {
		return nil
	}
	if scopedID != tenantID {
		return fmt.Errorf("tenantId %d does not match authenticated scope", tenantID)
	}
	return nil
}
