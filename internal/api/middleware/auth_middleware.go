package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ongelEstate/internal/auth"
	"ongelEstate/internal/database"
)

// Context keys for the acting user, set by AuthMiddleware.
const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	UserRoleKey  = "userRole"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware validates the bearer token and injects the acting user's
// id, email and role into the context.
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles rejects requests whose token role is not in the allowed set.
// Must run after AuthMiddleware.
func RequireRoles(roles ...database.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// UserIDFromContext returns the acting user's id.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// RoleFromContext returns the acting user's role.
func RoleFromContext(c *gin.Context) (database.Role, bool) {
	value, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(database.Role)
	return role, ok
}
