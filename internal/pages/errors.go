package pages

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pagebuilder/internal/domain"
)

var (
	ErrNotFound          = errors.New("pages: not found")
	ErrValidation        = errors.New("pages: validation failed")
	ErrIndexOutOfRange   = errors.New("pages: index out of range")
	ErrConflict          = errors.New("pages: conflict")
	ErrTransient         = errors.New("pages: store unavailable")
	ErrInvalidTransition = errors.New("pages: invalid status transition")

	ErrPageIDRequired = errors.New("pages: page id required")
	ErrSlugRequired   = errors.New("pages: slug required")
	ErrTitleRequired  = errors.New("pages: title required")
	ErrSlugImmutable  = errors.New("pages: slug cannot change after the page has been published")
)

// NotFoundError is returned for unknown pages, slugs and version records.
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

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// FieldError locates a single validation failure. Field is a dotted path into
// the settings object; empty for the object itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports rejected input. Errors lists every failure; the
// message names the first one.
type ValidationError struct {
	Errors []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		if e.Cause != nil {
			return "validation failed: " + e.Cause.Error()
		}
		return "validation failed"
	}
	first := e.Errors[0]
	if first.Field == "" {
		return "validation failed: " + first.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", first.Field, first.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}

// IndexOutOfRangeError is returned when an index falls outside [0, Length).
type IndexOutOfRangeError struct {
	Field  string
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	field := e.Field
	if field == "" {
		field = "index"
	}
	return fmt.Sprintf("%s %d out of range [0, %d)", field, e.Index, e.Length)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// ConflictError reports a slug collision or a stale version precondition.
type ConflictError struct {
	Resource        string
	Key             string
	ExpectedVersion int
	ActualVersion   int
}

func (e *ConflictError) Error() string {
	if e.ExpectedVersion > 0 {
		if e.ActualVersion > 0 {
			return fmt.Sprintf("%s %q version conflict: expected %d, found %d", e.Resource, e.Key, e.ExpectedVersion, e.ActualVersion)
		}
		return fmt.Sprintf("%s %q version conflict: expected %d", e.Resource, e.Key, e.ExpectedVersion)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// IsVersionConflict reports whether e was caused by a stale version.
func (e *ConflictError) IsVersionConflict() bool { return e.ExpectedVersion > 0 }

// TransientError wraps a store failure. Retrying the same operation is safe
// unless the operation is index-relative.
type TransientError struct {
	Operation string
	Cause     error
}

func (e *TransientError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("store unavailable: %v", e.Cause)
	}
	return fmt.Sprintf("%s: store unavailable: %v", e.Operation, e.Cause)
}

func (e *TransientError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrTransient, e.Cause}
	}
	return []error{ErrTransient}
}

// StateTransitionError is returned for edges the status machine lacks.
type StateTransitionError struct {
	From       domain.Status
	Transition domain.Transition
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a page in status %s", e.Transition, e.From)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidTransition }

// IndexRelative reports whether operation addresses instances by position.
// Such operations must not be retried blindly.
func IndexRelative(operation string) bool {
	switch operation {
	case OperationDuplicate, OperationReorder:
		return true
	default:
		return false
	}
}

// Categorize maps err onto go-errors categories with text codes. Transient
// failures of non index-relative operations come back as retryable errors.
func Categorize(operation string, err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	var (
		notFound   *NotFoundError
		validation *ValidationError
		index      *IndexOutOfRangeError
		conflict   *ConflictError
		transient  *TransientError
		transition *StateTransitionError
	)
	meta := map[string]any{}
	if operation != "" {
		meta["operation"] = operation
	}

	switch {
	case errors.As(err, &notFound):
		meta["resource"] = notFound.Resource
		meta["key"] = notFound.Key
		return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).
			WithTextCode(textCode(notFound.Resource, "NOT_FOUND")).
			WithMetadata(meta)
	case errors.As(err, &validation):
		fields := make([]goerrors.FieldError, 0, len(validation.Errors))
		for _, fe := range validation.Errors {
			fields = append(fields, goerrors.FieldError{Field: fe.Field, Message: fe.Message})
		}
		wrapped := goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode("VALIDATION_FAILED").
			WithMetadata(meta)
		wrapped.ValidationErrors = fields
		return wrapped
	case errors.As(err, &index):
		meta["index"] = index.Index
		meta["length"] = index.Length
		return goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithTextCode("INDEX_OUT_OF_RANGE").
			WithMetadata(meta)
	case errors.As(err, &conflict):
		code := "SLUG_CONFLICT"
		if conflict.IsVersionConflict() {
			code = "VERSION_CONFLICT"
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).
			WithTextCode(code).
			WithMetadata(meta)
	case errors.As(err, &transition):
		meta["status"] = string(transition.From)
		return goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).
			WithTextCode("INVALID_STATUS_TRANSITION").
			WithMetadata(meta)
	case errors.As(err, &transient):
		if IndexRelative(operation) {
			return goerrors.Wrap(err, goerrors.CategoryExternal, err.Error()).
				WithTextCode("STORE_UNAVAILABLE").
				WithMetadata(meta)
		}
		return goerrors.WrapRetryable(err, goerrors.CategoryExternal, err.Error()).
			WithTextCode("STORE_UNAVAILABLE").
			WithMetadata(meta)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
			WithMetadata(meta)
	}
}

func textCode(resource, suffix string) string {
	resource = strings.ToUpper(strings.TrimSpace(resource))
	if resource == "" {
		return suffix
	}
	return resource + "_" + suffix
}
