package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
	"github.com/goliatone/go-pagebuilder/internal/validation"
)

var ErrSchemaNotObject = errors.New("forms: settings schema must describe an object")

const (
	hintWidget      = "ui:widget"
	hintOrder       = "ui:order"
	hintGroup       = "ui:group"
	hintLabel       = "ui:label"
	hintHelp        = "ui:help"
	hintPlaceholder = "ui:placeholder"
	hintHidden      = "ui:hidden"
	hintOptions     = "ui:enumNames"
	orderWildcard   = "*"
)

var constraintKeys = []string{
	"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf",
	"minLength", "maxLength", "pattern", "format", "minItems", "maxItems", "uniqueItems",
}

// Render projects a settings schema, its ui hints and the current values into
// an editable field set. Missing values fall back to schema defaults. Render
// never modifies its inputs.
func Render(schema, uiSchema, values map[string]any) (FieldSet, error) {
	normalized := validation.NormalizeSchema(schema)
	if normalized == nil {
		return FieldSet{Fields: []Field{}}, nil
	}
	if err := pbschema.ValidateSubset(normalized); err != nil {
		return FieldSet{}, err
	}
	if kind := pbschema.TypeOf(normalized); kind != "" && kind != "object" {
		return FieldSet{}, fmt.Errorf("%w: got %s", ErrSchemaNotObject, kind)
	}
	return FieldSet{Fields: objectFields(normalized, uiSchema, values, "")}, nil
}

func objectFields(node, hints, values map[string]any, prefix string) []Field {
	props := pbschema.Properties(node)
	required := make(map[string]bool)
	for _, name := range pbschema.Required(node) {
		required[name] = true
	}

	fields := make([]Field, 0, len(props))
	for _, name := range orderedNames(props, hints) {
		child, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		value, present := values[name]
		field := renderField(name, joinPath(prefix, name), child, hintMap(hints, name), value, present)
		field.Required = required[name]
		fields = append(fields, field)
	}
	return fields
}

func renderField(name, path string, node, hints map[string]any, value any, present bool) Field {
	field := Field{
		Name:        name,
		Path:        path,
		Type:        pbschema.TypeOf(node),
		Label:       firstString(hints[hintLabel], node["title"], humanize(name)),
		Help:        firstString(hints[hintHelp], node["description"]),
		Placeholder: firstString(hints[hintPlaceholder]),
		Group:       firstString(hints[hintGroup]),
		Default:     pbschema.CloneValue(node["default"]),
	}
	if !present {
		value = pbschema.CloneValue(node["default"])
	}
	field.Value = pbschema.CloneValue(value)
	field.Options = options(node, hints)
	field.Widget = widgetFor(field.Type, node, hints, field.Options)
	if hidden, _ := hints[hintHidden].(bool); hidden {
		field.Hidden = true
		field.Widget = WidgetHidden
	}
	for _, key := range constraintKeys {
		if constraint, ok := node[key]; ok {
			if field.Constraints == nil {
				field.Constraints = map[string]any{}
			}
			field.Constraints[key] = constraint
		}
	}

	switch field.Type {
	case "object":
		nested, _ := value.(map[string]any)
		field.Fields = objectFields(node, hints, nested, path)
		field.Value = nil
	case "array":
		itemNode, _ := node["items"].(map[string]any)
		if itemNode == nil {
			itemNode = map[string]any{}
		}
		itemHints := hintMap(hints, "items")
		list, _ := value.([]any)
		field.Items = make([]Field, 0, len(list))
		for i, item := range list {
			itemName := strconv.Itoa(i)
			field.Items = append(field.Items, renderField(itemName, joinPath(path, itemName), itemNode, itemHints, item, true))
		}
		template := renderField("", joinPath(path, orderWildcard), itemNode, itemHints, nil, false)
		field.Template = &template
	}
	return field
}

func widgetFor(kind string, node, hints map[string]any, opts []Option) Widget {
	if widget := firstString(hints[hintWidget]); widget != "" {
		return Widget(widget)
	}
	if len(opts) > 0 {
		return WidgetSelect
	}
	switch kind {
	case "number", "integer":
		return WidgetNumber
	case "boolean":
		return WidgetCheckbox
	case "object":
		return WidgetFieldset
	case "array":
		return WidgetList
	default:
		if maxLength, ok := number(node["maxLength"]); ok && maxLength > 255 {
			return WidgetTextarea
		}
		return WidgetText
	}
}

// options lists enum values, or const values of oneOf branches, labelled
// by ui:enumNames or the branch title when given.
func options(node, hints map[string]any) []Option {
	labels, _ := hints[hintOptions].([]any)
	if values, ok := node["enum"].([]any); ok {
		out := make([]Option, 0, len(values))
		for i, value := range values {
			label := fmt.Sprint(value)
			if i < len(labels) {
				label = firstString(labels[i], label)
			}
			out = append(out, Option{Value: value, Label: label})
		}
		return out
	}
	if branches, ok := node["oneOf"].([]any); ok {
		out := make([]Option, 0, len(branches))
		for _, raw := range branches {
			branch, ok := raw.(map[string]any)
			if !ok {
				return nil
			}
			value, ok := branch["const"]
			if !ok {
				return nil
			}
			out = append(out, Option{Value: value, Label: firstString(branch["title"], fmt.Sprint(value))})
		}
		return out
	}
	return nil
}

// orderedNames applies ui:order to the property names. Names not listed
// take the place of the wildcard, or follow the listed ones when there is no
// wildcard. Unknown names in ui:order are ignored.
func orderedNames(props, hints map[string]any) []string {
	rest := make([]string, 0, len(props))
	for name := range props {
		rest = append(rest, name)
	}
	sort.Strings(rest)

	order, _ := hints[hintOrder].([]any)
	if len(order) == 0 {
		if typed, ok := hints[hintOrder].([]string); ok {
			for _, name := range typed {
				order = append(order, name)
			}
		}
	}
	if len(order) == 0 {
		return rest
	}

	listed := make(map[string]bool, len(order))
	for _, raw := range order {
		if name, ok := raw.(string); ok && name != orderWildcard {
			if _, exists := props[name]; exists {
				listed[name] = true
			}
		}
	}
	remaining := make([]string, 0, len(rest))
	for _, name := range rest {
		if !listed[name] {
			remaining = append(remaining, name)
		}
	}

	out := make([]string, 0, len(props))
	wildcard := false
	for _, raw := range order {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		if name == orderWildcard {
			if !wildcard {
				out = append(out, remaining...)
				wildcard = true
			}
			continue
		}
		if listed[name] {
			out = append(out, name)
			listed[name] = false
		}
	}
	if !wildcard {
		out = append(out, remaining...)
	}
	return out
}

func number(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func hintMap(hints map[string]any, key string) map[string]any {
	if hints == nil {
		return map[string]any{}
	}
	child, _ := hints[key].(map[string]any)
	if child == nil {
		return map[string]any{}
	}
	return child
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func firstString(values ...any) string {
	for _, value := range values {
		if text, ok := value.(string); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

func humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	if len(words) == 0 {
		return name
	}
	text := strings.ToLower(strings.Join(words, " "))
	return strings.ToUpper(text[:1]) + text[1:]
}
