// Package errors provides the standardized error taxonomy for the PRD
// builder service. Every extractor or transport failure is normalized into a
// StandardError before it reaches the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestInvalid ErrorCode = "REQUEST_INVALID"

	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	ErrCodeLLMTransportFailed ErrorCode = "LLM_TRANSPORT_FAILED"
	ErrCodeLLMFormatInvalid   ErrorCode = "LLM_FORMAT_INVALID"
	ErrCodeLLMParseFailed     ErrorCode = "LLM_PARSE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// NewRequestInvalidError marks a client request rejected before the core ran.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Invalid chat request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigMissingError is returned when remote mode is selected without the
// endpoint, credential and model all configured. Raised before any network
// call is attempted.
func NewConfigMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "Remote extractor configuration incomplete",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTransportError covers connection failures and non-success HTTP
// statuses from the completion endpoint. The caller may resubmit; the service
// itself never retries.
func NewLLMTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTransportFailed,
		Message:   "LLM endpoint call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMFormatError covers a response envelope missing the expected content
// path. The raw envelope is carried in Details for diagnosis.
func NewLLMFormatError(rawEnvelope string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMFormatInvalid,
		Message:   "Unexpected LLM response format",
		Details:   rawEnvelope,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMParseError covers model content that is not one well-formed JSON
// object even after brace recovery.
func NewLLMParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMParseFailed,
		Message:   "LLM content is not a valid JSON object",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
