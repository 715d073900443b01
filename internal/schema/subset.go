package schema

import (
	"fmt"
	"strings"
)

var allowedKeywords = map[string]struct{}{
	"$schema":              {},
	"$id":                  {},
	"$ref":                 {},
	"$defs":                {},
	"type":                 {},
	"properties":           {},
	"required":             {},
	"items":                {},
	"oneOf":                {},
	"anyOf":                {},
	"const":                {},
	"enum":                 {},
	"default":              {},
	"title":                {},
	"description":          {},
	"format":               {},
	"additionalProperties": {},
	"minLength":            {},
	"maxLength":            {},
	"pattern":              {},
	"minimum":              {},
	"maximum":              {},
	"exclusiveMinimum":     {},
	"exclusiveMaximum":     {},
	"multipleOf":           {},
	"minItems":             {},
	"maxItems":             {},
	"uniqueItems":          {},
	"examples":             {},
	"readOnly":             {},
}

// ValidateSubset ensures a settings schema only uses keywords the form
// renderer and validator understand. Keys prefixed with "x-" are extension
// points and always allowed.
func ValidateSubset(schema map[string]any) error {
	return validateNode(schema, "#")
}

func validateNode(node map[string]any, path string) error {
	for key, value := range node {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		if _, ok := allowedKeywords[key]; !ok {
			return fmt.Errorf("%w: %s at %s", ErrUnsupportedKeyword, key, path)
		}

		switch key {
		case "properties", "$defs":
			children, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s at %s must be an object", ErrInvalidSchema, key, path)
			}
			for name, child := range children {
				childSchema, ok := child.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s/%s at %s must be an object", ErrInvalidSchema, key, name, path)
				}
				if err := validateNode(childSchema, path+"/"+key+"/"+name); err != nil {
					return err
				}
			}
		case "items":
			child, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: items at %s must be a single schema", ErrUnsupportedKeyword, path)
			}
			if err := validateNode(child, path+"/items"); err != nil {
				return err
			}
		case "oneOf", "anyOf":
			entries, ok := value.([]any)
			if !ok {
				return fmt.Errorf("%w: %s at %s must be an array", ErrInvalidSchema, key, path)
			}
			for idx, entry := range entries {
				child, ok := entry.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s/%d at %s must be an object", ErrInvalidSchema, key, idx, path)
				}
				if err := validateNode(child, fmt.Sprintf("%s/%s/%d", path, key, idx)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
