// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/polyglot-hub/llm-router/utils"
	"go.uber.org/zap"
)

// AuthMiddleware validates HS256 bearer tokens on admin endpoints.
// An empty secret disables validation (development mode).
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), logger: logger}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			_ = utils.WriteUnauthorized(w, "missing bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			m.logger.Warn("rejected admin request", zap.Error(err))
			_ = utils.WriteUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
