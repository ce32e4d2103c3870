package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"notify_hub/internal/http/dto"
)

const (
	UserIDKey  = "user_id"
	IsAdminKey = "is_admin"
)

// Auth verifies a bearer JWT (HS256) and trusts its id/admin claims.
// Session issuance lives in a separate service; this middleware only
// establishes who is calling.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")
		if !strings.HasPrefix(bearer, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("missing bearer token"))
			return
		}
		raw := strings.TrimPrefix(bearer, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("invalid token"))
			return
		}
		id, ok := claims["id"].(float64)
		if !ok || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("invalid token"))
			return
		}

		c.Set(UserIDKey, int64(id))
		if admin, ok := claims["admin"].(bool); ok {
			c.Set(IsAdminKey, admin)
		}
		c.Next()
	}
}

// RequireAdmin runs after Auth and gates the sender-facing routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(IsAdminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail("admin access required"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id set by Auth.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(UserIDKey)
}
