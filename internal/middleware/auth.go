package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// OwnerKeyHeader carries the per-video capability token.
	OwnerKeyHeader = "X-Owner-Key"

	ownerKeyContextKey = "owner_key"
)

// OwnerKey middleware requires the X-Owner-Key header on privileged
// routes. The key is opaque; whether it matches the video is decided at
// the store, where the video row is at hand (missing video is 404,
// mismatch is 403).
func OwnerKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(OwnerKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Owner-Key header required"})
			c.Abort()
			return
		}

		c.Set(ownerKeyContextKey, key)
		c.Next()
	}
}

// GetOwnerKey retrieves the owner key from the request context.
func GetOwnerKey(c *gin.Context) (string, bool) {
	key, exists := c.Get(ownerKeyContextKey)
	if !exists {
		return "", false
	}

	keyStr, ok := key.(string)
	return keyStr, ok
}
