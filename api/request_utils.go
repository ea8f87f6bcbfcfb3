package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the JSON error body returned by the REST API
type Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// RequestError represents an error that should be returned as an HTTP response
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// HandleRequestError sends an appropriate HTTP error response
func HandleRequestError(c *gin.Context, err error) {
	if reqErr, ok := err.(*RequestError); ok {
		if reqErr.Status == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", "Bearer")
		}
		c.JSON(reqErr.Status, Error{
			Error:            reqErr.Code,
			ErrorDescription: reqErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Error{
		Error:            "server_error",
		ErrorDescription: "Internal server error",
	})
}

// InvalidInputError creates a RequestError for validation failures
func InvalidInputError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_input",
		Message: message,
	}
}

// NotFoundError creates a RequestError for resource not found
func NotFoundError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: message,
	}
}

// ForbiddenError creates a RequestError for forbidden access
func ForbiddenError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusForbidden,
		Code:    "forbidden",
		Message: message,
	}
}

// UnauthorizedError creates a RequestError for missing or invalid identity
func UnauthorizedError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: message,
	}
}

// UnavailableError creates a RequestError for an absent external dependency
// with no defined fallback
func UnavailableError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusServiceUnavailable,
		Code:    "unavailable",
		Message: message,
	}
}

// ServerError creates a RequestError for internal server errors
func ServerError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusInternalServerError,
		Code:    "server_error",
		Message: message,
	}
}
