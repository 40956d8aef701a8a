package infer

import (
	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/typedast"
)

// paramShape is the subset of a callable's signature the keyword-argument
// resolver needs: a name per formal parameter in declaration order, plus
// that parameter's already-typed default expression (nil if it has none).
type paramShape struct {
	names    []string
	defaults []typedast.Expr
}

// resolveArguments implements the rest of call-argument resolution, given
// posArgs/kwNames/kwArgs already split out of source order by
// inferCallArgs (which rejects a positional argument following a keyword
// one before this function ever sees the call, since only it has
// the source-ordered ast.Call.Args to check against). The resulting slice
// is always in declaration order, one entry per formal parameter, so codegen
// can lower a call to a plain left-to-right application chain without
// re-deriving the binding at lowering time. This function enforces:
//
//   - no parameter may be assigned twice, by two keywords or by a keyword
//     re-naming an already-filled positional slot;
//   - every keyword name must name a real parameter;
//   - a parameter with no supplied value falls back to its default, or is
//     a missing-argument error if it has none.
func resolveArguments(
	phase string,
	call *ast.Call,
	shape paramShape,
	posArgs []typedast.Expr,
	kwNames []string,
	kwArgs []typedast.Expr,
) ([]typedast.Expr, error) {
	n := len(shape.names)
	if len(shape.names) != len(shape.defaults) {
		panic("infer: paramShape.names and defaults must have equal length")
	}
	if len(posArgs) > n {
		return nil, errors.Newf(phase, errors.SIG001, call,
			"too many positional arguments: got %d, want at most %d", len(posArgs), n)
	}

	resolved := make([]typedast.Expr, n)
	filled := make([]bool, n)
	for i, v := range posArgs {
		resolved[i] = v
		filled[i] = true
	}

	for i, kwName := range kwNames {
		paramIdx := -1
		for p, name := range shape.names {
			if name == kwName {
				paramIdx = p
				break
			}
		}
		if paramIdx == -1 {
			return nil, errors.Newf(phase, errors.SIG004, call, "unknown keyword argument: %s", kwName)
		}
		if filled[paramIdx] {
			return nil, errors.Newf(phase, errors.SIG003, call, "parameter %s assigned more than once", kwName)
		}
		resolved[paramIdx] = kwArgs[i]
		filled[paramIdx] = true
	}

	for i := range resolved {
		if filled[i] {
			continue
		}
		if shape.defaults[i] == nil {
			return nil, errors.Newf(phase, errors.SIG005, call, "missing required parameter: %s", shape.names[i])
		}
		resolved[i] = shape.defaults[i]
	}

	return resolved, nil
}
