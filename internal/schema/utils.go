package schema

import "reflect"

// CloneMap deep-copies nested maps and slices. Scalar values are shared.
func CloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep-copies value. Decoded JSON shapes take a fast path; any
// other slice, array, map or pointer is copied element by element, so typed
// values such as []int or map[string]string never alias the source. Struct
// values are copied shallowly.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return CloneMap(typed)
	case []any:
		return cloneSlice(typed)
	case string, bool, float64, int, int64:
		return value
	}
	return cloneReflect(reflect.ValueOf(value)).Interface()
}

func cloneSlice(input []any) []any {
	if input == nil {
		return nil
	}
	out := make([]any, len(input))
	for i, value := range input {
		out[i] = CloneValue(value)
	}
	return out
}

func cloneReflect(value reflect.Value) reflect.Value {
	switch value.Kind() {
	case reflect.Interface:
		if value.IsNil() {
			return value
		}
		return cloneReflect(value.Elem())
	case reflect.Pointer:
		if value.IsNil() {
			return value
		}
		out := reflect.New(value.Type().Elem())
		out.Elem().Set(cloneReflect(value.Elem()))
		return out
	case reflect.Map:
		if value.IsNil() {
			return value
		}
		out := reflect.MakeMapWithSize(value.Type(), value.Len())
		iter := value.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if value.IsNil() {
			return value
		}
		out := reflect.MakeSlice(value.Type(), value.Len(), value.Len())
		for i := 0; i < value.Len(); i++ {
			out.Index(i).Set(cloneReflect(value.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(value.Type()).Elem()
		for i := 0; i < value.Len(); i++ {
			out.Index(i).Set(cloneReflect(value.Index(i)))
		}
		return out
	default:
		return value
	}
}

// Properties returns the properties map of an object schema node.
func Properties(node map[string]any) map[string]any {
	if node == nil {
		return nil
	}
	props, _ := node["properties"].(map[string]any)
	return props
}

// Required returns the required property names of an object schema node.
func Required(node map[string]any) []string {
	if node == nil {
		return nil
	}
	switch typed := node["required"].(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			if name, ok := entry.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// TypeOf returns the primary JSON type of a schema node. Nodes declaring a
// type list report the first non-null entry; nodes with only an enum report
// "string".
func TypeOf(node map[string]any) string {
	if node == nil {
		return ""
	}
	switch typed := node["type"].(type) {
	case string:
		return typed
	case []any:
		for _, entry := range typed {
			if name, ok := entry.(string); ok && name != "null" {
				return name
			}
		}
	case []string:
		for _, name := range typed {
			if name != "null" {
				return name
			}
		}
	}
	if _, ok := node["enum"]; ok {
		return "string"
	}
	if _, ok := node["properties"]; ok {
		return "object"
	}
	return ""
}
