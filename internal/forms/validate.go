package forms

import "github.com/goliatone/go-pagebuilder/internal/validation"

// Validate checks candidate values against schema and returns every
// violation ordered by path. A nil result means the values are valid.
func Validate(schema, values map[string]any) []FieldError {
	err := validation.ValidatePayload(schema, values)
	if err == nil {
		return nil
	}
	issues := validation.Issues(err)
	out := make([]FieldError, 0, len(issues))
	for _, issue := range issues {
		out = append(out, FieldError{Path: issue.Field(), Message: issue.Message})
	}
	return out
}
