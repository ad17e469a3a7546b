// Package validation checks inbound chat requests against their JSON schema
// before anything reaches the core. Validation failures are a client-error
// concern of the transport layer; the merge engine never sees them.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const chatRequestSchema = `{
  "type": "object",
  "required": ["messages"],
  "properties": {
    "messages": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["role", "content"],
        "properties": {
          "role": {
            "type": "string",
            "enum": ["user", "assistant", "system"]
          },
          "content": {
            "type": "string",
            "minLength": 1
          }
        }
      }
    },
    "prd": {
      "type": ["object", "null"]
    }
  }
}`

var chatSchema = gojsonschema.NewSchemaLoader()

var compiledChatSchema *gojsonschema.Schema

func init() {
	var err error
	compiledChatSchema, err = chatSchema.Compile(gojsonschema.NewStringLoader(chatRequestSchema))
	if err != nil {
		panic(fmt.Sprintf("chat request schema does not compile: %v", err))
	}
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateChatRequest validates a raw request body. A body that is not even
// JSON reports as a single top-level error rather than failing hard.
func ValidateChatRequest(raw []byte) *ValidationResult {
	result, err := compiledChatSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: "(body)", Message: err.Error()},
			},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

// Summary flattens the error list into one line for error details.
func (r *ValidationResult) Summary() string {
	s := ""
	for i, e := range r.Errors {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return s
}
