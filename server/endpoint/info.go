package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cosyframework/cosy/component"
	"github.com/cosyframework/cosy/version"
)

var startTime = time.Now()

// ServiceInfo identifies the running application on the info endpoint.
type ServiceInfo struct {
	Service     string
	AppID       string
	Environment string
	// Components lists the registered components; nil omits them.
	Components func() []component.Description
}

// Info returns a handler that reports application identity and build
// information.
func Info(info ServiceInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"service":     info.Service,
			"app_id":      info.AppID,
			"environment": info.Environment,
			"build":       version.Get(),
			"uptime":      time.Since(startTime).Round(time.Second).String(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}
		if info.Components != nil {
			body["components"] = info.Components()
		}
		c.JSON(http.StatusOK, body)
	}
}
