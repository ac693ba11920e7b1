package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// contextKey is a private key type preventing context collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	userIDKey    = contextKey("userID")
	actorKey     = contextKey("actor")
)

// GetUserIDFromContext retrieves the authenticated user ID set by the
// auth middleware.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		if id, ok := v.(string); ok {
			return id, true
		}
	}
	if v := c.Request.Context().Value(userIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id, true
		}
	}
	return "", false
}

// GetActorFromContext retrieves the derived application user set by the
// derivation middleware.
func GetActorFromContext(c *gin.Context) (*domain.DerivedUser, bool) {
	v, exists := c.Get(string(actorKey))
	if !exists {
		return nil, false
	}
	actor, ok := v.(*domain.DerivedUser)
	return actor, ok
}
