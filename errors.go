package pagebuilder

import (
	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/editor"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

// Sentinels for errors.Is checks against page builder failures.
var (
	ErrPageNotFound       = pages.ErrNotFound
	ErrValidation         = pages.ErrValidation
	ErrIndexOutOfRange    = pages.ErrIndexOutOfRange
	ErrConflict           = pages.ErrConflict
	ErrTransient          = pages.ErrTransient
	ErrInvalidTransition  = pages.ErrInvalidTransition
	ErrSlugImmutable      = pages.ErrSlugImmutable
	ErrDefinitionNotFound = components.ErrNotFound
	ErrDefinitionRetired  = components.ErrDefinitionRetired
	ErrMutationInFlight   = editor.ErrMutationInFlight
)

type (
	NotFoundError          = pages.NotFoundError
	ValidationError        = pages.ValidationError
	IndexOutOfRangeError   = pages.IndexOutOfRangeError
	ConflictError          = pages.ConflictError
	TransientError         = pages.TransientError
	StateTransitionError   = pages.StateTransitionError
	DefinitionMissingError = components.NotFoundError
)
