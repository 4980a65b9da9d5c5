package middleware

import (
	"net/http"
	"strings"

	"asahigaoka/internal/logger"
	"asahigaoka/internal/reqctx"
	"asahigaoka/internal/utils"
	"asahigaoka/internal/utils/helpers"

	"go.uber.org/zap"
)

// JWTAuth puts the token's user id and role into the request context.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: missing access token")
				helpers.Error(w, http.StatusUnauthorized, "missing access token")
				return
			}

			userID, role, err := utils.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: invalid or expired token", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := reqctx.WithUserID(r.Context(), userID)
			ctx = reqctx.WithRole(ctx, role)

			logger.WithCtx(ctx).Debug("JWTAuth: token valid")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
