package middleware

import (
	"errors"
	"net/http"
	"strings"

	"obsidiana-backend/internal/delivery/http/response"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim required on admin tokens.
const AdminRole = "admin"

// AdminAuthMiddleware accepts HS256 bearer tokens signed with secret that
// carry a subject and role "admin". An empty secret disables the admin API.
func AdminAuthMiddleware(secret string, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.Error(c, http.StatusServiceUnavailable, "Admin API is not configured", nil)
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			deny(c, secLog, "missing_token", "Authorization header required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			reason := "invalid_token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "expired_token"
			}
			deny(c, secLog, reason, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			deny(c, secLog, "invalid_claims", "Invalid claims")
			return
		}
		sub, _ := claims.GetSubject()
		role, _ := claims["role"].(string)
		if sub == "" || role != AdminRole {
			deny(c, secLog, "not_admin", "Admin role required")
			return
		}

		c.Set(string(domain.KeyAdminSub), sub)
		c.Next()
	}
}

func deny(c *gin.Context, secLog *security.SecurityLogger, reason, message string) {
	if secLog != nil {
		secLog.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), c.FullPath(), reason)
	}
	response.Error(c, http.StatusUnauthorized, message, nil)
	c.Abort()
}
