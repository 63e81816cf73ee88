package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	AdminKeyHeader  = "X-Admin-Key"
	PluginKeyHeader = "X-Plugin-Key"
)

// AdminKey guards operator routes with server.admin_key.
func AdminKey(key string) gin.HandlerFunc { return StaticKey(AdminKeyHeader, key) }

// PluginKey guards the game plugin routes with server.plugin_key.
func PluginKey(key string) gin.HandlerFunc { return StaticKey(PluginKeyHeader, key) }

// StaticKey requires header to equal key. An empty key disables the routes
// entirely (503) rather than leaving them open.
func StaticKey(header, key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "endpoint disabled: no key configured"})
			return
		}
		got := []byte(c.GetHeader(header))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
