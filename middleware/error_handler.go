package middleware

import (
	"net/http"
	"strconv"

	"github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON shape rendered for failed requests.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler converts errors attached via c.Error into JSON responses.
// AppErrors carry their own HTTP status; anything else becomes a sanitized
// 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			// A handler already produced a response (e.g. an SSE stream);
			// nothing sensible left to render.
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		if appError, ok := err.(*errors.AppError); ok {
			statusCode := appError.GetHTTPStatus()
			log.Warnw("Request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"type", appError.Type,
				"message", appError.Message,
				"detail", appError.Detail,
				"status", statusCode)

			response := ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == errors.ValidationError ||
				appError.Type == errors.SelectionError ||
				appError.Type == errors.NotFoundError) {
				response.Details = appError.Detail
			}
			c.JSON(statusCode, response)
			return
		}

		if c.Errors.Last().Type == gin.ErrorTypeBind {
			log.Warnw("Request binding failed",
				"path", c.Request.URL.Path,
				"error", err)
			response := ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    "400",
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}

		log.Errorw("Unhandled request error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal server error",
			Code:    "500",
		})
	}
}
