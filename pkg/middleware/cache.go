package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheControl sets cache headers based on the request path. API responses
// are personalized and must not be cached; video streams additionally carry
// access-controlled bytes, so shared caches are told to keep out.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasSuffix(path, "/stream"):
			c.Header("Cache-Control", "private, no-store")
		case strings.HasPrefix(path, "/api"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case isStaticAsset(path):
			c.Header("Cache-Control", "public, max-age=31536000")
		}

		c.Next()
	}
}

func isStaticAsset(path string) bool {
	staticExtensions := []string{".css", ".js", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".woff", ".woff2", ".ttf"}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
