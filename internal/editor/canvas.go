package editor

import (
	"context"
	"fmt"

	"github.com/goliatone/go-pagebuilder/internal/pages"
	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
)

// CanvasItem is one rendered instance. In preview mode only Index, Type and
// Output are set.
type CanvasItem struct {
	Index       int    `json:"index"`
	Type        string `json:"component_type"`
	DisplayName string `json:"display_name,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
	Output      string `json:"output"`
}

type Canvas struct {
	Preview bool         `json:"preview"`
	Version int          `json:"version"`
	Items   []CanvasItem `json:"items"`
}

// Canvas renders every instance of the displayed page in order. Staged
// settings are rendered for the selected instance in edit mode.
func (s *Session) Canvas(ctx context.Context) (Canvas, error) {
	s.mu.Lock()
	if s.renderer == nil {
		s.mu.Unlock()
		return Canvas{}, ErrRendererRequired
	}
	view := pages.ClonePage(s.viewLocked())
	selected := copyIndex(s.selected)
	staged := s.staged
	preview := s.preview
	renderer := s.renderer
	s.mu.Unlock()

	canvas := Canvas{
		Preview: preview,
		Version: view.Version,
		Items:   make([]CanvasItem, 0, len(view.ContentData)),
	}
	for i, instance := range view.ContentData {
		item := CanvasItem{Index: i, Type: instance.ComponentType}
		settings := instance.Settings
		if !preview {
			item.Selected = selected != nil && *selected == i
			if item.Selected && staged != nil {
				settings = pbschema.CloneMap(staged)
			}
			item.DisplayName = instance.ComponentType
			if def, err := s.registry.GetDefinition(ctx, instance.ComponentType); err == nil && def.DisplayName != "" {
				item.DisplayName = def.DisplayName
			}
		}
		output, err := renderer.Render(ctx, instance.ComponentType, settings)
		if err != nil {
			return Canvas{}, fmt.Errorf("editor: render component %d (%s): %w", i, instance.ComponentType, err)
		}
		item.Output = output
		canvas.Items = append(canvas.Items, item)
	}
	return canvas, nil
}
