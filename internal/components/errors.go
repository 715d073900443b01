package components

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("components: definition not found")
	ErrDefinitionRetired   = errors.New("components: definition retired")
	ErrTypeRequired        = errors.New("components: component type required")
	ErrDisplayNameRequired = errors.New("components: display name required")
	ErrSchemaInvalid       = errors.New("components: settings schema invalid")
	ErrUnsupportedDocument = errors.New("components: unsupported definition document")
)

// NotFoundError is returned when a component type does not resolve.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RetiredError is returned when new instances reference a retired type.
type RetiredError struct {
	Type string
}

func (e *RetiredError) Error() string {
	return fmt.Sprintf("component type %q is retired", e.Type)
}

func (e *RetiredError) Unwrap() error {
	return ErrDefinitionRetired
}
