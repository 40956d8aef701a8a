package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ast"
)

// Diagnostic is the canonical structured error type every pass returns.
// It carries the original cause, the offending source node, and the pass
// name that raised it. A pass must wrap a raised error with Wrap exactly
// once; Wrap itself refuses to double-wrap an error that is already a
// *Diagnostic.
type Diagnostic struct {
	Code    string
	Phase   string // the pass name, e.g. "Node visiting", "folding", "codegen"
	Message string
	Node    ast.Node // nil when the diagnostic has no single anchoring node
	Cause   error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Node != nil {
		return fmt.Sprintf("%s: %s at %s: %s", d.Phase, d.Code, d.Node.Position(), d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Phase, d.Code, d.Message)
}

// Unwrap exposes the original cause to errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error { return d.Cause }

// New constructs a fresh Diagnostic.
func New(phase, code string, node ast.Node, msg string) *Diagnostic {
	return &Diagnostic{Code: code, Phase: phase, Message: msg, Node: node}
}

// Newf is New with a format string.
func Newf(phase, code string, node ast.Node, format string, args ...interface{}) *Diagnostic {
	return New(phase, code, node, fmt.Sprintf(format, args...))
}

// Wrap attaches a pass name and node to an arbitrary error, unless it is
// already a *Diagnostic — in which case it is returned unchanged, so a
// diagnostic raised deep in a recursive visit is never wrapped twice as it
// propagates back up through the caller's own recovery.
func Wrap(phase string, node ast.Node, err error) error {
	if err == nil {
		return nil
	}
	var existing *Diagnostic
	if stderrors.As(err, &existing) {
		return existing
	}
	return &Diagnostic{
		Phase:   phase,
		Message: err.Error(),
		Node:    node,
		Cause:   err,
	}
}

// As extracts a *Diagnostic from an error chain.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	ok := stderrors.As(err, &d)
	return d, ok
}
