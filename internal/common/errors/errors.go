// Package errors provides standardized error handling for the extraction pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFormatParse           ErrorCode = "FORMAT_PARSE_ERROR"
	ErrCodeCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE"
	ErrCodeProcessing            ErrorCode = "PROCESSING_ERROR"
	ErrCodeConversationNotFound  ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeExportFailed          ErrorCode = "EXPORT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewFormatParseError creates a non-retryable malformed-input error.
func NewFormatParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormatParse,
		Message:   "Input is not well-formed structured data",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCapabilityUnavailableError creates a non-retryable degraded-capability error.
// Callers treat this as a warning: processing continues with reduced output.
func NewCapabilityUnavailableError(capability string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCapabilityUnavailable,
		Message:   "Optional extraction capability unavailable",
		Details:   fmt.Sprintf("capability: %s", capability),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProcessingError creates a non-retryable internal fault error.
func NewProcessingError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProcessing,
		Message:   "Unexpected fault during extraction",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversationNotFoundError creates a non-retryable missing-conversation error.
func NewConversationNotFoundError(conversationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationNotFound,
		Message:   "Conversation not found",
		Details:   fmt.Sprintf("conversationId: %s", conversationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExportFailedError creates a retryable durable-export error.
func NewExportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "Conversation export failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether an error code indicates a retry may succeed.
func IsRetryable(code ErrorCode) bool {
	return code == ErrCodeExportFailed
}
