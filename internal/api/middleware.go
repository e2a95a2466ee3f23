package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Owner identity is established by the upstream auth layer and forwarded in
// this header. Routes behind OwnerAuth never see an empty owner id.
const ownerHeader = "X-Owner-Id"

const ownerContextKey = "ownerID"

func OwnerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader(ownerHeader)
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing owner identity"})
			return
		}
		c.Set(ownerContextKey, owner)
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(ownerContextKey)
}
