package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const MsgServerError = "Server Error"

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PageMeta is flattened into list responses when the list is paginated.
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	*PageMeta
	Data any `json:"data"`
}

func HandleSuccessMeta(c *gin.Context, statusCode int, data any, count int, meta *PageMeta) {
	c.JSON(statusCode, ListResponse{
		Success:  true,
		Count:    count,
		PageMeta: meta,
		Data:     data,
	})
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// HandleError writes {success:false, message}. Server errors are logged and
// answered with a generic message.
func HandleError(c *gin.Context, statusCode int, err error) {
	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		LogError(c.Request.Method+" "+c.Request.URL.Path, err)
		message = MsgServerError
	}
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Message: message,
	})
}

func HandleValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}
