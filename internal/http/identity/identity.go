package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID = "X-User-Id"
	ctxKeyUserID = "identity.userID"
)

// Middleware trusts the authenticated-identity header forwarded by the auth
// layer in front of this service. Credentials are never validated here.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}
		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// FromContext returns the caller's userID resolved by Middleware.
func FromContext(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
