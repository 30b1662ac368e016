package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"job-portal-backend/internal/delivery/http/response"
	"job-portal-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error. Handlers that
// already wrote a body are left alone so every request gets one response.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.ErrorContext(c.Request.Context(), "Request failed",
					"path", c.FullPath(), "status", appErr.Code, "kind", appErr.Kind, "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		log.ErrorContext(c.Request.Context(), "Internal Server Error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, apperror.Internal(err).Message)
	}
}

// Recovery converts a panic into the standard 500 JSON body.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		response.Error(c, http.StatusInternalServerError, apperror.Internal(nil).Message)
		c.Abort()
	})
}
