package editor

import "errors"

var (
	// ErrMutationInFlight is returned when a structural action is started while
	// another one is still waiting on the page service.
	ErrMutationInFlight = errors.New("editor: a mutation is already in flight")
	ErrNoSelection      = errors.New("editor: no component selected")
	ErrServiceRequired  = errors.New("editor: page service required")
	ErrRegistryRequired = errors.New("editor: component registry required")
	ErrRendererRequired = errors.New("editor: component renderer required")
)
