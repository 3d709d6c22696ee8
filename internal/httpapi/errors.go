package httpapi

import (
	"fmt"
	"net/http"
)

// Error codes returned in the JSON error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeAIService    = "AI_SERVICE_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is an error that knows how to present itself to an API caller.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Status  int               `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func Validation(message string, details map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
		Status:  http.StatusBadRequest,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func AIService(message string) *AppError {
	return &AppError{
		Code:    CodeAIService,
		Message: message,
		Status:  http.StatusServiceUnavailable,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
