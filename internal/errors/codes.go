// Package errors provides the structured diagnostic type every compiler
// pass wraps its failures in. A diagnostic carries the original cause, the
// offending source node, and the pass name; once wrapped, it is never
// wrapped again as it propagates up through recursive visits.
package errors

// Error code constants, grouped by the kind of failure they report.
const (
	// Parse-shape errors (SHP###): an AST node kind the accepted subset
	// does not support.
	SHP001 = "SHP001" // unsupported statement kind
	SHP002 = "SHP002" // unsupported expression kind

	// Name errors (NAM###)
	NAM001 = "NAM001" // undefined name
	NAM002 = "NAM002" // name used before its definition in the main pass

	// Type errors (TYP###)
	TYP001 = "TYP001" // operand type incompatible with operator
	TYP002 = "TYP002" // argument type incompatible with parameter
	TYP003 = "TYP003" // branch types incompatible (if/elif/else, assert)
	TYP004 = "TYP004" // return type incompatible with declared signature
	TYP005 = "TYP005" // attribute does not exist on receiver's type

	// Signature errors (SIG###)
	SIG001 = "SIG001" // arity mismatch
	SIG002 = "SIG002" // keyword argument after positional argument
	SIG003 = "SIG003" // duplicate assignment to a parameter
	SIG004 = "SIG004" // unknown keyword name
	SIG005 = "SIG005" // missing required parameter
	SIG006 = "SIG006" // default value of incompatible type
	SIG007 = "SIG007" // validator entry point declares a default

	// Code-generation errors (CGN###): CGN001 reports a module that passed
	// inference but declares no validator; CGN002 is an internal
	// consistency backstop, since code-gen never re-derives a judgement
	// inference didn't already make.
	CGN001 = "CGN001" // module declares no validator entry point
	CGN002 = "CGN002" // typed node kind code-gen does not know how to lower
)

// ErrorInfo documents one error code for tooling that wants to print it
// out of band (not required by the core, but cheap to keep alongside the
// constants it describes).
type ErrorInfo struct {
	Code        string
	Phase       string
	Description string
}

// ErrorRegistry maps every code above to its phase and a short description.
var ErrorRegistry = map[string]ErrorInfo{
	SHP001: {SHP001, "inference", "Unsupported statement kind"},
	SHP002: {SHP002, "inference", "Unsupported expression kind"},
	NAM001: {NAM001, "inference", "Undefined name"},
	NAM002: {NAM002, "inference", "Name used before definition"},
	TYP001: {TYP001, "inference", "Operand type incompatible with operator"},
	TYP002: {TYP002, "inference", "Argument type incompatible with parameter"},
	TYP003: {TYP003, "inference", "Branch types incompatible"},
	TYP004: {TYP004, "inference", "Return type incompatible with declared signature"},
	TYP005: {TYP005, "inference", "Unknown attribute"},
	SIG001: {SIG001, "inference", "Arity mismatch"},
	SIG002: {SIG002, "inference", "Keyword argument after positional argument"},
	SIG003: {SIG003, "inference", "Duplicate assignment to parameter"},
	SIG004: {SIG004, "inference", "Unknown keyword argument"},
	SIG005: {SIG005, "inference", "Missing required parameter"},
	SIG006: {SIG006, "inference", "Default value of incompatible type"},
	SIG007: {SIG007, "inference", "Validator entry point may not declare defaults"},
	CGN001: {CGN001, "codegen", "Module declares no validator entry point"},
	CGN002: {CGN002, "codegen", "Typed node kind cannot be lowered"},
}

// GetErrorInfo returns the registered description for a code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := ErrorRegistry[code]
	return info, ok
}
