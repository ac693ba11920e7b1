package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
)

// APITokenAuth authenticates requests presenting a machine token in
// x-api-key. A missing or invalid key falls through to the JWT path.
func APITokenAuth(tokenSvc ports.APITokenSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := c.GetHeader("x-api-key")
		if rawToken == "" {
			c.Next()
			return
		}

		token, err := tokenSvc.Authenticate(c.Request.Context(), rawToken)
		if err != nil {
			c.Next()
			return
		}

		c.Set(string(userIDKey), token.UserID)
		c.Set("authMethod", "api_token")
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), userIDKey, token.UserID),
		)
		c.Next()
	}
}
