package utils

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every feedback API endpoint answers with.
// Failures carry the user-facing text in Error.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes a failure envelope. When err is nil the message
// doubles as the error text so clients always find something in "error".
func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
		Error:   message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// AbortWithError is ErrorResponse followed by c.Abort, for middleware.
func AbortWithError(c *gin.Context, code int, message string) {
	ErrorResponse(c, code, message, nil)
	c.Abort()
}
