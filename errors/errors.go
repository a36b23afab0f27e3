// Package errors provides unified error handling for the transcription
// pipeline. It implements structured error types with machine-readable
// codes, HTTP status mapping, and retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Pipeline Error Constructors ---

// Validation creates a new AppError for rejected input. It is raised
// before any remote service is contacted.
func Validation(reason string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Storage creates a new AppError for a failed object-store operation.
func Storage(detail string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Object storage failed: %s", detail),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// Submission creates a new AppError for a transcription submission the
// backend did not accept.
func Submission(detail string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSubmission, Message: fmt.Sprintf("Transcription submission rejected: %s", detail),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// RemoteFailure creates a new AppError for a transcription job the
// backend reported as Failed. Detail carries the remote error verbatim.
func RemoteFailure(detail string) *AppError {
	return &AppError{
		Code: ErrCodeRemoteFailure, Message: fmt.Sprintf("Transcription failed: %s", detail),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"remote_detail": detail},
	}
}

// Timeout creates a new AppError for an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Extraction creates a new AppError for a missing or malformed
// transcript artifact.
func Extraction(detail string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExtraction, Message: fmt.Sprintf("Transcript extraction failed: %s", detail),
		HTTPStatus: http.StatusBadGateway, Retryable: false, Cause: cause,
	}
}

// Generation creates a new AppError for a failed document generation
// call. It is scoped to one document and never fails siblings.
func Generation(document, detail string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeGeneration, Message: fmt.Sprintf("Generating %s failed: %s", document, detail),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
		Details: map[string]any{"document": document},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
