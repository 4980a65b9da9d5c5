package middleware

import (
	"net/http"

	"asahigaoka/internal/models"
	"asahigaoka/internal/reqctx"
	"asahigaoka/internal/utils/helpers"
)

// Role guards must run after JWTAuth. Admins pass every guard.

func OnlyRole(role string) func(http.Handler) http.Handler {
	return AnyRole(role)
}

func AnyRole(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{})
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := reqctx.GetRole(r.Context())
			if !ok {
				helpers.Error(w, http.StatusForbidden, "could not determine role")
				return
			}
			if userRole == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if _, found := roleSet[userRole]; !found {
				helpers.Error(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
