package schema

// Defaults builds the initial settings object declared by an object schema.
// A property contributes its "default" keyword when present; object properties
// without a default contribute their own nested defaults when any exist.
// The result is never nil.
func Defaults(node map[string]any) map[string]any {
	out := map[string]any{}
	for name, raw := range Properties(node) {
		child, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if value, ok := child["default"]; ok {
			out[name] = CloneValue(value)
			continue
		}
		if TypeOf(child) == "object" {
			if nested := Defaults(child); len(nested) > 0 {
				out[name] = nested
			}
		}
	}
	return out
}
