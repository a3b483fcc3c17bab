package middleware

import (
	"errors"

	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed onto the gin context.
// Validation and not-found surface their message; internal failures are
// logged server-side and returned opaque.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.New(apperrors.ErrInternal, err.Error(), err)
		}

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "internal server error", logFields...)
			// Do not leak internals to the caller.
			c.JSON(appErr.HTTPStatus, &apperrors.AppError{
				Type:    appErr.Type,
				Message: "internal server error",
			})
			return
		}

		logger.Warn(appErr.Message, logFields...)
		c.JSON(appErr.HTTPStatus, appErr)
	}
}
