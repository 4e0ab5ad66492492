package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

const (
	UserEmailKey = "userEmail"
	UserRoleKey  = "role"
)

// RequireAuth validates the bearer token and stores the caller's email and
// role on the context. No detail about the failure leaks to the client.
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		userEmail, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		if userEmail == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserEmailKey, userEmail)
		c.Set(UserRoleKey, role)
		c.Next()
	}
}

// OptionalAuth stores the caller's email and role when a valid token is
// present, and lets the request through either way. Checkout works for
// anonymous shoppers; the payment provider collects their email instead.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenStr != "" {
			if claims, err := tokens.ValidateToken(tokenStr); err == nil {
				if userEmail, _ := claims["email"].(string); userEmail != "" {
					c.Set(UserEmailKey, userEmail)
				}
				if role, _ := claims["role"].(string); role != "" {
					c.Set(UserRoleKey, role)
				}
			}
		}
		c.Next()
	}
}

// RequireAdmin ensures the authenticated caller holds the admin role. Must
// run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if role != services.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// GetUserEmail returns the authenticated caller's email from the context.
func GetUserEmail(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserEmailKey); ok {
		if userEmail, ok := val.(string); ok && userEmail != "" {
			return userEmail, nil
		}
	}
	return "", errors.New("user email not found in context")
}
