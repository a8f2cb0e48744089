package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidatePayload checks a raw JSON document against a JSON-schema string.
// A non-nil error means the schema or document could not be evaluated at
// all; schema violations are reported through the Result instead.
func ValidatePayload(doc []byte, schema string) (*Result, error) {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	if res.Valid() {
		return &Result{Valid: true}, nil
	}

	out := &Result{Valid: false}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return out, nil
}
