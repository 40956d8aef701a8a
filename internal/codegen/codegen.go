// Package codegen implements the code-generation pass: lowering a
// fully typed, already constant-folded module (internal/typedast) into the
// single closed lambda-calculus term (internal/ir) a host VM applies to a
// validator's arguments.
//
// The target calculus has no let or letrec, so a block of statements is
// compiled by flattening a surface AST into a nested term: each
// `name = value` becomes an immediately-applied
// abstraction binding the rest of the block, `(lam name REST) VALUE`, and a
// function value that refers to its own name is given one via the usual
// self-application trick for a combinator calculus with no native
// recursion (the same shape internal/builtins/fold.go already uses for
// listFold). Because every binding is just lambda-nesting, an IR variable
// can be named after its source identifier directly — shadowing falls out
// of the nesting structure for free, and no scope-handle bookkeeping is
// needed to tell two unrelated `x`s apart at code-gen time. The one place a
// scope handle still matters is recognizing a function's own recursive
// call, which a bare name comparison can't do reliably.
package codegen

import (
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/infer"
	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/typedast"
)

// Named VM primitives this package composes directly, alongside the ones
// internal/builtins already names for operator and prelude recipes. Kept
// here rather than imported since they are unexported there, the same way
// every codegen-facing pass in this compiler owns the constant names it
// reaches for.
const (
	opIfThenElse   = "IfThenElse"
	opChooseList   = "ChooseList"
	opHeadList     = "HeadList"
	opTailList     = "TailList"
	opMkCons       = "MkCons"
	opTrace        = "Trace"
	opError        = "Error"
	opConstrData   = "ConstrData"
	opUnConstrData = "UnConstrData"
	opFstPair      = "FstPair"
	opSndPair      = "SndPair"
	opIData        = "IData"
	opUnIData      = "UnIData"
	opBData        = "BData"
	opUnBData      = "UnBData"
	opListData     = "ListData"
	opUnListData   = "UnListData"
	opMapData      = "MapData"
	opUnMapData    = "UnMapData"
	opMkPairData   = "MkPairData"
	opEqualsInt    = "EqualsInteger"
	opEqualsData   = "EqualsData"
)

// genCtx carries the lowering pass's one piece of ambient state: the
// substitution a recursive function's own body needs for references to its
// own binding (see lowerFunctionValue). Everything else about the source
// binding structure is expressed directly as IR lambda nesting.
type genCtx struct {
	subst map[typedast.ScopeHandle]ir.Expr
}

func (c *genCtx) lookup(h typedast.ScopeHandle) (ir.Expr, bool) {
	if c == nil || c.subst == nil {
		return nil, false
	}
	v, ok := c.subst[h]
	return v, ok
}

// with returns a child context extending c with one additional handle
// substitution, leaving c itself untouched. c may be nil (the top-level
// module has no enclosing recursive binding yet).
func (c *genCtx) with(h typedast.ScopeHandle, v ir.Expr) *genCtx {
	size := 1
	if c != nil {
		size += len(c.subst)
	}
	child := &genCtx{subst: make(map[typedast.ScopeHandle]ir.Expr, size)}
	if c != nil {
		for k, val := range c.subst {
			child.subst[k] = val
		}
	}
	child.subst[h] = v
	return child
}

// Generate lowers a typed, folded module into the target IR program. The
// module must declare exactly one function named infer.ValidatorName; its
// lowered value, applied to the declared parameters plus a synthetic
// trailing host-context parameter, is the program's result.
func Generate(file *typedast.File) (*ir.Program, error) {
	g := ir.NewIDGen()
	found := false
	for _, s := range file.Stmts {
		if fn, ok := s.(*typedast.FunctionDef); ok && fn.Name == infer.ValidatorName {
			found = true
		}
	}
	if !found {
		return nil, errors.New("codegen", errors.CGN001, nil, "module declares no "+infer.ValidatorName+" entry point")
	}

	term, err := lowerBlock(g, file.Stmts, (*genCtx)(nil), func() (ir.Expr, error) {
		return g.Var(infer.ValidatorName), nil
	})
	if err != nil {
		return nil, err
	}
	return &ir.Program{Term: term}, nil
}
