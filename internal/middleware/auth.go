package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"kollab-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth.
const (
	UserIDKey      = "user_id"
	DisplayNameKey = "display_name"
)

// InternalAuthHeader carries the shared secret for machine-to-machine calls.
const InternalAuthHeader = "X-Internal-Auth"

// JWTAuth validates the bearer token and stores the caller's id in the context.
func JWTAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// browsers cannot set headers on a websocket upgrade
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(DisplayNameKey, claims.DisplayName)
		c.Next()
	}
}

// InternalAuth admits requests whose X-Internal-Auth header matches token.
// An empty token disables the routes it guards.
func InternalAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "internal endpoints are disabled"})
			return
		}
		got := c.GetHeader(InternalAuthHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
