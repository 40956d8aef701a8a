// Package schema versions and deterministically marshals the compiler's
// JSON-shaped output: diagnostics today, and
// whatever the CLI later serializes alongside them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrorV1 tags every diagnostic this compiler emits (internal/errors).
const ErrorV1 = "eopsin.diagnostic/v1"

// Accepts reports whether a schema tag read back off a diagnostic is
// compatible with wantPrefix, allowing a minor-version suffix a future
// release might add without breaking a reader pinned to "v1".
func Accepts(got, wantPrefix string) bool {
	return got == wantPrefix || strings.HasPrefix(got, wantPrefix+".")
}

// MarshalDeterministic marshals v with object keys sorted, so two
// encodings of equal data are byte-identical regardless of map iteration
// order — required for diagnostics to diff cleanly in golden tests
// (testutil.CompareWithGolden) and for two runs of the same compile to
// produce the same bytes.
func MarshalDeterministic(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return data, nil
	}
	return marshalSorted(decoded)
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			valJSON, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			itemJSON, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			buf.Write(itemJSON)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return json.Marshal(v)
	}
}

// CompactMode controls FormatJSON's output; cmd/eopsinc's config
// subcommand sets it from the diagnostics compact_json setting.
var CompactMode = false

// SetCompactMode enables or disables compact JSON output.
func SetCompactMode(enabled bool) {
	CompactMode = enabled
}

// FormatJSON renders data compact or indented depending on CompactMode.
func FormatJSON(data []byte) ([]byte, error) {
	if CompactMode {
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
