package response

import (
	"adreport/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTP response constants
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Error response field names
const (
	FieldError     = "error"
	FieldMessage   = "message"
	FieldCode      = "code"
	FieldDetails   = "details"
	FieldRequestID = "request_id"
)

// JSON writes data as a JSON body with the given status code
func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// HTML writes a rendered document
func HTML(c *gin.Context, statusCode int, body []byte) {
	c.Data(statusCode, ContentTypeHTML, body)
}

// Error writes an error body. err is reported in details and logged.
func Error(c *gin.Context, statusCode int, message string, err error) {
	body := gin.H{
		FieldError:   true,
		FieldMessage: message,
		FieldCode:    statusCode,
	}
	if id := c.GetString("RequestID"); id != "" {
		body[FieldRequestID] = id
	}

	if err != nil {
		body[FieldDetails] = err.Error()
		logger.FromContext(c.Request.Context()).Warn("API error",
			zap.String("message", message),
			zap.Error(err),
			zap.Int("status_code", statusCode))
	}

	c.AbortWithStatusJSON(statusCode, body)
}
