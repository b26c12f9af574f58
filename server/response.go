package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/cosyframework/cosy/errors"
)

// RespondWithError inspects err: an *apperrors.AppError anywhere in the
// chain sets the status and structured body; anything else is a generic 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}
