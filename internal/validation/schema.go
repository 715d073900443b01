package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is a single validation failure located by JSON pointer.
type Issue struct {
	Location string
	Message  string
}

// Field returns the dotted field path of the issue ("cta.label", "tags.0").
// The document root is reported as an empty string.
func (i Issue) Field() string {
	location := strings.TrimPrefix(strings.TrimSpace(i.Location), "#")
	location = strings.Trim(location, "/")
	if location == "" {
		return ""
	}
	return strings.ReplaceAll(location, "/", ".")
}

// PayloadValidationError lists every issue found in a payload, ordered by
// location.
type PayloadValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from err.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// ValidateSchema ensures schema is a supported, compilable settings schema.
func ValidateSchema(schema map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if err := pbschema.ValidateSubset(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if _, err := compileSchema(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidatePayload validates payload against schema. A nil or empty schema
// accepts any payload.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if err := pbschema.ValidateSubset(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	compiled, err := compileSchema(normalized)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	instance, err := toJSONValue(payload)
	if err != nil {
		return &PayloadValidationError{
			Issues: []Issue{{Location: "#", Message: err.Error()}},
			Cause:  err,
		}
	}
	if err := compiled.Validate(instance); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// NormalizeSchema returns a JSON schema for schema. Definitions may be
// authored either as JSON schema or as a compact field list:
//
//	{"fields": [{"name": "headline", "type": "string", "required": true}]}
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	if isJSONSchema(schema) {
		return pbschema.CloneMap(schema)
	}
	fields, ok := schema["fields"]
	if !ok {
		return nil
	}
	properties, required := normalizeFields(fields)
	if len(properties) == 0 {
		return nil
	}
	normalized := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if allowed, ok := schema["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = allowed
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func isJSONSchema(schema map[string]any) bool {
	for _, key := range []string{"$schema", "type", "properties", "oneOf", "anyOf"} {
		if _, ok := schema[key]; ok {
			return true
		}
	}
	return false
}

func normalizeFields(fields any) (map[string]any, []any) {
	properties := make(map[string]any)
	required := make([]any, 0)

	add := func(field map[string]any) {
		name, _ := field["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		switch {
		case field["schema"] != nil:
			if nested, ok := field["schema"].(map[string]any); ok {
				properties[name] = pbschema.CloneMap(nested)
			}
		default:
			prop := map[string]any{}
			if fieldType, ok := field["type"].(string); ok {
				if jsonType := normalizeJSONType(fieldType); jsonType != "" {
					prop["type"] = jsonType
				}
			}
			if value, ok := field["default"]; ok {
				prop["default"] = pbschema.CloneValue(value)
			}
			if value, ok := field["enum"]; ok {
				prop["enum"] = pbschema.CloneValue(value)
			}
			properties[name] = prop
		}
		if flag, ok := field["required"].(bool); ok && flag {
			required = append(required, name)
		}
	}

	switch typed := fields.(type) {
	case []any:
		for _, entry := range typed {
			switch field := entry.(type) {
			case map[string]any:
				add(field)
			case string:
				add(map[string]any{"name": field})
			}
		}
	case []map[string]any:
		for _, field := range typed {
			add(field)
		}
	}
	return properties, required
}

func normalizeJSONType(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "string", "number", "integer", "boolean", "object", "array", "null":
		return v
	case "text", "textarea", "richtext", "url", "image":
		return "string"
	default:
		return ""
	}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("settings.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("settings.json")
}

// toJSONValue re-decodes payload so typed Go values (ints, []string, nested
// structs) reach the validator in their JSON shape.
func toJSONValue(payload map[string]any) (any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("settings are not JSON encodable: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Location < issues[j].Location
	})
	return issues
}
