package testutil

import "testing"

// These exercise the pure helpers CompareWithGolden builds on without
// going through a committed fixture: GoldenFile.Meta embeds
// runtime.Version()/GOOS/GOARCH, so a golden JSON file checked into this
// repository could mismatch on a different Go toolchain or platform than
// whatever produced it. The helpers below have no such dependency.

func TestMarshalDeterministicSortsMapKeys(t *testing.T) {
	a, err := marshalDeterministic(map[string]interface{}{"z": 1, "a": 2})
	if err != nil {
		t.Fatalf("marshalDeterministic: %v", err)
	}
	b, err := marshalDeterministic(map[string]interface{}{"a": 2, "z": 1})
	if err != nil {
		t.Fatalf("marshalDeterministic: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("two maps with the same entries in different insertion order should marshal identically:\n%s\nvs\n%s", a, b)
	}
}

func TestDiffJSONReportsNoDiffForReorderedKeys(t *testing.T) {
	expected := []byte(`{"a":1,"b":2}`)
	actual := []byte(`{"b":2,"a":1}`)
	if diff := diffJSON(expected, actual); diff != "" {
		t.Errorf("expected no diff for reordered object keys, got:\n%s", diff)
	}
}

func TestDiffJSONReportsRealDifference(t *testing.T) {
	expected := []byte(`{"a":1}`)
	actual := []byte(`{"a":2}`)
	if diff := diffJSON(expected, actual); diff == "" {
		t.Error("expected a diff for a changed value, got none")
	}
}

func TestDiffJSONRejectsInvalidJSON(t *testing.T) {
	if diff := diffJSON([]byte("not json"), []byte(`{}`)); diff == "" {
		t.Error("expected a diff describing the invalid expected payload")
	}
}

func TestGetGoldenPathJoinsFeatureAndName(t *testing.T) {
	got := GetGoldenPath("codegen", "arithmetic_validator")
	want := "testdata/codegen/arithmetic_validator.golden.json"
	if got != want {
		t.Errorf("GetGoldenPath() = %q, want %q", got, want)
	}
}
