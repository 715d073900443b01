package testsupport

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to 1.
const UpdateGoldenEnv = "PAGEBUILDER_UPDATE_GOLDEN"

// LoadJSONObject decodes the JSON object stored at path.
func LoadJSONObject(t testing.TB, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode fixture %s: %v", path, err)
	}
	return out
}

// AssertGolden compares the JSON encoding of got with the golden file at
// path. Both sides are decoded before comparing so formatting and number
// types do not matter.
func AssertGolden(t testing.TB, path string, got any) {
	t.Helper()
	encoded, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if os.Getenv(UpdateGoldenEnv) == "1" {
		if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
			t.Fatalf("update golden %s: %v", path, err)
		}
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden %s: %v", path, err)
	}
	var want, have any
	if err := json.Unmarshal(raw, &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if err := json.Unmarshal(encoded, &have); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !reflect.DeepEqual(have, want) {
		t.Fatalf("golden mismatch for %s\n got: %s\nwant: %s", path, encoded, raw)
	}
}
