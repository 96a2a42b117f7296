package api

import (
	"fmt"
	"net/http"

	"promptlab/internal"
	"promptlab/internal/errors"

	"github.com/gin-gonic/gin"
)

// writeError maps INVALID_INPUT to 400, NOT_FOUND to 404 and everything
// else to 500
func writeError(c *gin.Context, logger *internal.Logger, err error) {
	code := errors.GetCode(err)
	if !errors.IsAppError(err) {
		code = errors.CodeInternalError
	}

	var status int
	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// recoverJSON answers a panicking handler with an INTERNAL_ERROR body
func recoverJSON(logger *internal.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		writeError(c, logger, errors.InternalError(fmt.Sprintf("panic: %v", recovered)))
		c.Abort()
	}
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}
