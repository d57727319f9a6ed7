package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const adminKeyHeader = "X-Admin-Key"

// adminStats serves the live report. An empty key disables the endpoint.
func adminStats(key string, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || deps.Stats == nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		got := c.GetHeader(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			log.Warn().Str("module", "adapters.http").Str("ip", c.ClientIP()).Msg("admin stats: bad key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, deps.Stats.Report(deps.Orch.Registry.Snapshot()))
	}
}
