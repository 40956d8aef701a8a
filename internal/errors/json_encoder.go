package errors

import (
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/schema"
)

// Encoded is the deterministic-JSON mirror of a Diagnostic, returned by
// tooling that wants machine-readable compiler output.
type Encoded struct {
	Schema     string `json:"schema"`
	Code       string `json:"code"`
	Phase      string `json:"phase"`
	Message    string `json:"message"`
	SourceSpan string `json:"source_span,omitempty"`
}

// Encode converts a Diagnostic to its JSON-serializable form.
func Encode(d *Diagnostic) Encoded {
	e := Encoded{
		Schema:  schema.ErrorV1,
		Code:    d.Code,
		Phase:   d.Phase,
		Message: d.Message,
	}
	if d.Node != nil {
		e.SourceSpan = FormatSourceSpan(d.Node.Position().File, d.Node.Position().Line, d.Node.Position().Column)
	}
	return e
}

// ToJSON renders the diagnostic as deterministic, sorted-key JSON.
func (d *Diagnostic) ToJSON() ([]byte, error) {
	data, err := schema.MarshalDeterministic(Encode(d))
	if err != nil {
		return nil, err
	}
	return schema.FormatJSON(data)
}

// FormatSourceSpan formats a file position as "file:line:col".
func FormatSourceSpan(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
