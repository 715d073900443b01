package interfaces

import "context"

// ComponentRenderer turns a configured component instance into visual output.
// The page builder never inspects the returned markup.
type ComponentRenderer interface {
	Render(ctx context.Context, componentType string, settings map[string]any) (string, error)
}
