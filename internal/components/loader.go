package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-pagebuilder/internal/validation"
)

// Loader reads definition documents from a filesystem. JSON documents carry
// the definition directly. Markdown documents carry it in YAML front matter
// and use the body as the long-form description.
type Loader struct {
	fsys     fs.FS
	markdown goldmark.Markdown
}

// NewLoader creates a loader rooted at fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys: fsys,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

type definitionDocument struct {
	Type           string         `json:"component_type" yaml:"component_type"`
	DisplayName    string         `json:"display_name" yaml:"display_name"`
	Description    string         `json:"description" yaml:"description"`
	Category       string         `json:"category" yaml:"category"`
	Icon           string         `json:"icon" yaml:"icon"`
	SettingsSchema map[string]any `json:"settings_schema" yaml:"settings_schema"`
	UISchema       map[string]any `json:"ui_schema" yaml:"ui_schema"`
	Retired        bool           `json:"retired" yaml:"retired"`
}

// Load walks the filesystem and returns every definition found, ordered by
// path. Documents are validated before they are returned.
func (l *Loader) Load() ([]*Definition, error) {
	paths := make([]string, 0)
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".json", ".md":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk definitions: %w", err)
	}
	sort.Strings(paths)

	defs := make([]*Definition, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		def, err := l.LoadFile(p)
		if err != nil {
			return nil, err
		}
		if previous, dup := seen[def.Type]; dup {
			return nil, fmt.Errorf("%s: component type %q already defined in %s", p, def.Type, previous)
		}
		seen[def.Type] = p
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadFile parses a single definition document.
func (l *Loader) LoadFile(name string) (*Definition, error) {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var doc definitionDocument
	var body []byte
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: decode definition: %w", name, err)
		}
	case ".md":
		body, err = frontmatter.Parse(bytes.NewReader(raw), &doc)
		if err != nil {
			return nil, fmt.Errorf("%s: parse front matter: %w", name, err)
		}
		doc.SettingsSchema = normalizeYAMLMap(doc.SettingsSchema)
		doc.UISchema = normalizeYAMLMap(doc.UISchema)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, name)
	}

	if strings.TrimSpace(doc.Type) == "" {
		doc.Type = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	def := &Definition{
		Type:           NormalizeType(doc.Type),
		DisplayName:    strings.TrimSpace(doc.DisplayName),
		Description:    strings.TrimSpace(doc.Description),
		Category:       strings.TrimSpace(doc.Category),
		Icon:           strings.TrimSpace(doc.Icon),
		SettingsSchema: doc.SettingsSchema,
		UISchema:       doc.UISchema,
		Retired:        doc.Retired,
	}

	if text := bytes.TrimSpace(body); len(text) > 0 {
		var buf bytes.Buffer
		if err := l.markdown.Convert(text, &buf); err != nil {
			return nil, fmt.Errorf("%s: render description: %w", name, err)
		}
		def.DescriptionHTML = buf.String()
		if def.Description == "" {
			def.Description = firstParagraph(string(text))
		}
	}

	if err := ValidateDefinition(def); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return def, nil
}

// ValidateDefinition checks the fields a definition needs to be registered.
func ValidateDefinition(def *Definition) error {
	if def == nil || strings.TrimSpace(def.Type) == "" {
		return ErrTypeRequired
	}
	if strings.TrimSpace(def.DisplayName) == "" {
		return ErrDisplayNameRequired
	}
	if err := validation.ValidateSchema(def.SettingsSchema); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

func firstParagraph(text string) string {
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		return strings.Join(strings.Fields(block), " ")
	}
	return ""
}

// normalizeYAMLMap converts map[any]any nodes produced by the YAML decoder
// into the map[string]any shape the schema packages expect.
func normalizeYAMLMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeYAMLValue(value)
	}
	return out
}

func normalizeYAMLValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeYAMLMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[fmt.Sprint(key)] = normalizeYAMLValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = normalizeYAMLValue(child)
		}
		return out
	default:
		return value
	}
}
