package http

import (
	"context"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/security"
)

type claimsKey struct{}

func withClaims(ctx context.Context, claims *security.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the authenticated caller, or nil on public routes.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey{}).(*security.UserClaims)
	return claims
}

// GetUserIDFromContext extracts the caller's user ID.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return 0, errUnauthenticated
	}
	return claims.UserID, nil
}

func isStaff(claims *security.UserClaims) bool {
	if claims == nil {
		return false
	}
	role := domain.UserRole(claims.Role)
	return role == domain.UserRoleAdmin || role == domain.UserRoleWarehouse
}
