package pages

import (
	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
)

// The functions below are pure: they return a new slice and never modify
// their input. Index errors are reported as *IndexOutOfRangeError.

// CloneContent deep-copies content, settings included.
func CloneContent(content []ComponentInstance) []ComponentInstance {
	out := make([]ComponentInstance, len(content))
	for i, item := range content {
		out[i] = CloneInstance(item)
	}
	return out
}

// CloneInstance deep-copies a single instance.
func CloneInstance(item ComponentInstance) ComponentInstance {
	settings := pbschema.CloneMap(item.Settings)
	if settings == nil {
		settings = map[string]any{}
	}
	return ComponentInstance{
		ComponentType: item.ComponentType,
		Settings:      settings,
	}
}

// AppendComponent adds item at the end of content.
func AppendComponent(content []ComponentInstance, item ComponentInstance) []ComponentInstance {
	out := CloneContent(content)
	return append(out, CloneInstance(item))
}

// RemoveComponent drops the instance at index, shifting later ones down.
func RemoveComponent(content []ComponentInstance, index int) ([]ComponentInstance, error) {
	if err := checkIndex("index", index, len(content)); err != nil {
		return nil, err
	}
	out := make([]ComponentInstance, 0, len(content)-1)
	for i, item := range content {
		if i == index {
			continue
		}
		out = append(out, CloneInstance(item))
	}
	return out, nil
}

// DuplicateComponent inserts a deep copy of the instance at index right
// after it.
func DuplicateComponent(content []ComponentInstance, index int) ([]ComponentInstance, error) {
	if err := checkIndex("index", index, len(content)); err != nil {
		return nil, err
	}
	out := make([]ComponentInstance, 0, len(content)+1)
	for i, item := range content {
		out = append(out, CloneInstance(item))
		if i == index {
			out = append(out, CloneInstance(item))
		}
	}
	return out, nil
}

// MoveComponent removes the instance at from and reinserts it at to. Other
// instances keep their relative order.
func MoveComponent(content []ComponentInstance, from, to int) ([]ComponentInstance, error) {
	if err := checkIndex("from", from, len(content)); err != nil {
		return nil, err
	}
	if err := checkIndex("to", to, len(content)); err != nil {
		return nil, err
	}
	out := CloneContent(content)
	if from == to {
		return out, nil
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out, ComponentInstance{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, nil
}

// ReplaceSettings swaps the settings of the instance at index wholesale.
func ReplaceSettings(content []ComponentInstance, index int, settings map[string]any) ([]ComponentInstance, error) {
	if err := checkIndex("index", index, len(content)); err != nil {
		return nil, err
	}
	out := CloneContent(content)
	replaced := pbschema.CloneMap(settings)
	if replaced == nil {
		replaced = map[string]any{}
	}
	out[index].Settings = replaced
	return out, nil
}

// MoveIndex reports where an item at position i ends up after moving the item
// at from to to.
func MoveIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < to && i > from && i <= to:
		return i - 1
	case to < from && i >= to && i < from:
		return i + 1
	default:
		return i
	}
}

func checkIndex(field string, index, length int) error {
	if index < 0 || index >= length {
		return &IndexOutOfRangeError{Field: field, Index: index, Length: length}
	}
	return nil
}
