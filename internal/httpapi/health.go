package httpapi

import (
	"net/http"

	"github.com/MrEthical07/sharedauth/health"
	"github.com/gin-gonic/gin"
)

// Health reports 200 when every probe check passes and 503 naming the
// first failing component otherwise.
func Health(probe *health.Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := probe.Check(c.Request.Context())
		if component, failed := report.FirstFailure(); failed {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"component": component,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
