// Package cors implements an origin allow-list CORS middleware.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New builds the middleware. An empty origin list allows every origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	allowAll := len(allowed) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")

		switch {
		case origin != "" && (allowAll || originAllowed(allowed, origin)):
			h.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(allowed map[string]struct{}, origin string) bool {
	_, ok := allowed[strings.TrimRight(origin, "/")]
	return ok
}
