package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// devOrigins are the local Astro dev servers, allowed outside production.
var devOrigins = map[string]bool{
	"http://localhost:4321": true,
	"http://127.0.0.1:4321": true,
	"http://localhost:3000": true,
}

// CORSMiddleware adds CORS headers for the site's origins.
//
// SECURITY: only explicit origins are allowed. Localhost is accepted only
// when production is false.
func CORSMiddleware(allowed []string, production bool) gin.HandlerFunc {
	allowedOrigins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedOrigins[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		isAllowed := origin == "" || // same-origin requests
			allowedOrigins[origin] ||
			(!production && devOrigins[origin])

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Authorization, Cache-Control, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			c.Header("Access-Control-Max-Age", "86400") // 24 hours
		}

		// Vary header to ensure caches differentiate by Origin
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}
