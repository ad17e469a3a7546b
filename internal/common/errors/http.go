// internal/common/errors/http.go
package errors

import "net/http"

// HTTPStatus maps an error code to the status the chat endpoint reports.
// Client mistakes are 4xx; upstream LLM faults surface as 502 so callers can
// tell them apart from our own 500s.
func HTTPStatus(err error) int {
	switch Normalize(err).Code {
	case ErrCodeRequestInvalid:
		return http.StatusBadRequest
	case ErrCodeLLMTransportFailed, ErrCodeLLMFormatInvalid, ErrCodeLLMParseFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
