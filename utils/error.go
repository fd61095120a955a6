package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes surfaced to clients alongside the HTTP status.
const (
	CodeAuthRequired         = "AUTH_REQUIRED"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeDuplicateTransaction = "DUPLICATE_TRANSACTION"
	CodeRideFull             = "RIDE_FULL"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidRequest       = "INVALID_REQUEST"
)

// ServiceError is an application error carrying a stable code for clients.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

// NewServiceError builds a ServiceError with the given code and message.
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger := GetLogger()
				logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	logger := GetLogger()
	logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONServiceError maps a service error to an HTTP response, preserving the
// client-facing code when the error is a ServiceError.
func JSONServiceError(c *gin.Context, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(statusForCode(svcErr.Code), ErrorResponse{Message: svcErr.Message, Code: svcErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
}

func statusForCode(code string) int {
	switch code {
	case CodeAuthRequired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientFunds, CodeRideFull, CodeDuplicateTransaction:
		return http.StatusConflict
	case CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
