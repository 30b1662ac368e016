package middleware

import (
	"context"
	"errors"
	"strings"

	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/apperror"
	"job-portal-backend/pkg/auth"
	"job-portal-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session principal from the token cookie, or
// from an Authorization bearer header when no cookie is present.
func AuthMiddleware(issuer domain.TokenIssuer, cookieName string, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try to get token from Cookie
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			tokenString = cookie
		} else if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			// 2. Fall back to the Authorization header
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			reject(c, secLog, "missing_token", domain.MsgNotAuthenticated)
			return
		}

		principalID, err := issuer.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				reject(c, secLog, "expired_token", domain.MsgSessionExpired)
			} else {
				reject(c, secLog, "invalid_token", domain.MsgInvalidToken)
			}
			return
		}

		c.Set(string(domain.KeyUserID), principalID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), domain.KeyUserID, principalID))

		c.Next()
	}
}

func reject(c *gin.Context, secLog *security.SecurityLogger, reason, message string) {
	secLog.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), reason)
	_ = c.Error(apperror.Unauthenticated(message))
	c.Abort()
}
