package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cosyframework/cosy/component"
)

// Readiness returns a handler for readiness probes. The service is ready
// when no component reports unhealthy and draining (if set) returns false.
func Readiness(serviceName string, checker HealthChecker, draining func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		httpStatus := http.StatusOK

		switch {
		case draining != nil && draining():
			status = "draining"
			httpStatus = http.StatusServiceUnavailable
		case checker != nil && component.Overall(checker(c.Request.Context())) == component.StatusUnhealthy:
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
