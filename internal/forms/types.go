package forms

// Widget names the input used to edit a field.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetTextarea Widget = "textarea"
	WidgetNumber   Widget = "number"
	WidgetCheckbox Widget = "checkbox"
	WidgetSelect   Widget = "select"
	WidgetFieldset Widget = "fieldset"
	WidgetList     Widget = "list"
	WidgetHidden   Widget = "hidden"
)

// Option is a choice offered by a select widget.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Field is one editable input derived from a settings schema property.
type Field struct {
	Name        string         `json:"name"`
	Path        string         `json:"path"`
	Type        string         `json:"type,omitempty"`
	Widget      Widget         `json:"widget"`
	Label       string         `json:"label"`
	Help        string         `json:"help,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Group       string         `json:"group,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Hidden      bool           `json:"hidden,omitempty"`
	Value       any            `json:"value,omitempty"`
	Default     any            `json:"default,omitempty"`
	Options     []Option       `json:"options,omitempty"`
	Constraints map[string]any `json:"constraints,omitempty"`
	Fields      []Field        `json:"fields,omitempty"`
	Items       []Field        `json:"items,omitempty"`
	Template    *Field         `json:"template,omitempty"`
}

// Group is a titled run of fields.
type Group struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// FieldSet is the rendered form for a settings object.
type FieldSet struct {
	Fields []Field `json:"fields"`
}

// Grouped buckets top level fields by their ui:group hint in order of first
// appearance. Ungrouped fields form a leading group with an empty name.
func (fs FieldSet) Grouped() []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, field := range fs.Fields {
		pos, ok := index[field.Group]
		if !ok {
			pos = len(groups)
			index[field.Group] = pos
			groups = append(groups, Group{Name: field.Group})
		}
		groups[pos].Fields = append(groups[pos].Fields, field)
	}
	for i, group := range groups {
		if group.Name == "" && i > 0 {
			copy(groups[1:i+1], groups[0:i])
			groups[0] = group
			break
		}
	}
	return groups
}

// Lookup returns the field at a dotted path.
func (fs FieldSet) Lookup(path string) (Field, bool) {
	return lookup(fs.Fields, path)
}

func lookup(fields []Field, path string) (Field, bool) {
	for _, field := range fields {
		if field.Path == path {
			return field, true
		}
		if found, ok := lookup(field.Fields, path); ok {
			return found, true
		}
		if found, ok := lookup(field.Items, path); ok {
			return found, true
		}
	}
	return Field{}, false
}

// FieldError is a validation failure located by dotted path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
