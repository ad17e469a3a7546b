// internal/common/validation/request_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{
			name:  "minimal valid request",
			body:  `{"messages":[{"role":"user","content":"hi"}]}`,
			valid: true,
		},
		{
			name:  "valid with prd",
			body:  `{"messages":[{"role":"user","content":"hi"}],"prd":{"problem":"x"}}`,
			valid: true,
		},
		{
			name:  "valid with null prd",
			body:  `{"messages":[{"role":"user","content":"hi"}],"prd":null}`,
			valid: true,
		},
		{
			name:  "empty messages",
			body:  `{"messages":[]}`,
			valid: false,
		},
		{
			name:  "missing messages",
			body:  `{}`,
			valid: false,
		},
		{
			name:  "empty content",
			body:  `{"messages":[{"role":"user","content":""}]}`,
			valid: false,
		},
		{
			name:  "invalid role",
			body:  `{"messages":[{"role":"bot","content":"hi"}]}`,
			valid: false,
		},
		{
			name:  "not json",
			body:  `not json at all`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateChatRequest([]byte(tt.body))
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
				assert.NotEmpty(t, result.Summary())
			}
		})
	}
}
