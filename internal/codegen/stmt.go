package codegen

import (
	"github.com/ImperatorLang/eopsin/internal/infer"
	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/typedast"
)

// cont is the IR term to splice in for "whatever lexically follows this
// point", built lazily so a branch that returns early never has to pay for
// constructing a continuation it discards.
type cont func() (ir.Expr, error)

// lowerBlock lowers one lexical block of statements under continuation k,
// which stands for everything after the block (the rest of an enclosing
// function body, or — at the top level — a reference to the bound
// validator). Each binding statement wraps k in one more immediately-applied
// abstraction; an If threads the same lazy continuation into both of its
// branches, so the statements after it are lowered into each branch that
// falls through and not at all into a branch that returns.
func lowerBlock(g *ir.IDGen, stmts []typedast.Stmt, ctx *genCtx, k cont) (ir.Expr, error) {
	if len(stmts) == 0 {
		return k()
	}
	stmt, rest := stmts[0], stmts[1:]

	switch s := stmt.(type) {
	case *typedast.FunctionDef:
		value, err := lowerFunctionValue(g, ctx, s, s.Name == infer.ValidatorName)
		if err != nil {
			return nil, err
		}
		body, err := lowerBlock(g, rest, ctx, k)
		if err != nil {
			return nil, err
		}
		return g.Apply(g.Lambda(s.Name, body), value), nil

	case *typedast.ClassDef, *typedast.Import:
		return lowerBlock(g, rest, ctx, k)

	case *typedast.Assign:
		value, err := lowerExpr(g, ctx, s.Value)
		if err != nil {
			return nil, err
		}
		body, err := lowerBlock(g, rest, ctx, k)
		if err != nil {
			return nil, err
		}
		return g.Apply(g.Lambda(s.Target, body), value), nil

	case *typedast.AnnAssign:
		value, err := lowerExpr(g, ctx, s.Value)
		if err != nil {
			return nil, err
		}
		body, err := lowerBlock(g, rest, ctx, k)
		if err != nil {
			return nil, err
		}
		return g.Apply(g.Lambda(s.Target, body), value), nil

	case *typedast.ExprStmt:
		value, err := lowerExpr(g, ctx, s.X)
		if err != nil {
			return nil, err
		}
		return sequence(g, value, rest, ctx, k)

	case *typedast.Assert:
		check, err := lowerAssert(g, ctx, s)
		if err != nil {
			return nil, err
		}
		return sequence(g, check, rest, ctx, k)

	case *typedast.If:
		cond, err := lowerExpr(g, ctx, s.Cond)
		if err != nil {
			return nil, err
		}
		restK := func() (ir.Expr, error) { return lowerBlock(g, rest, ctx, k) }
		thenExpr, err := lowerBlock(g, s.Body, ctx, restK)
		if err != nil {
			return nil, err
		}
		elseExpr, err := lowerBlock(g, s.Else, ctx, restK)
		if err != nil {
			return nil, err
		}
		return g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), cond, g.Delay(thenExpr), g.Delay(elseExpr))), nil

	case *typedast.For:
		loop, err := lowerForLoop(g, ctx, s)
		if err != nil {
			return nil, err
		}
		return sequence(g, loop, rest, ctx, k)

	case *typedast.Return:
		if s.Value == nil {
			return g.Const(ir.ConstUnit, nil), nil
		}
		return lowerExpr(g, ctx, s.Value)
	}

	return k()
}

// sequence runs a unit-valued (or otherwise effect-only) expression purely
// for its side effect, discarding the result, then continues with rest.
func sequence(g *ir.IDGen, effect ir.Expr, rest []typedast.Stmt, ctx *genCtx, k cont) (ir.Expr, error) {
	body, err := lowerBlock(g, rest, ctx, k)
	if err != nil {
		return nil, err
	}
	return g.Apply(g.Lambda("_", body), effect), nil
}

// lowerAssert compiles `assert cond, msg` to
// IfThenElse(cond, unit, Trace(msg, Error)). A bare `assert cond`
// supplies the empty string as its message.
func lowerAssert(g *ir.IDGen, ctx *genCtx, a *typedast.Assert) (ir.Expr, error) {
	cond, err := lowerExpr(g, ctx, a.Cond)
	if err != nil {
		return nil, err
	}
	var msg ir.Expr
	if a.Msg != nil {
		msg, err = lowerExpr(g, ctx, a.Msg)
		if err != nil {
			return nil, err
		}
	} else {
		msg = g.Const(ir.ConstString, "")
	}
	failure := g.ApplyN(g.BuiltIn(opTrace), msg, g.BuiltIn(opError))
	return g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), cond,
		g.Delay(g.Const(ir.ConstUnit, nil)),
		g.Delay(failure))), nil
}

// lowerFunctionValue lowers a function definition to its IR value: nested
// single-parameter Lambdas wrapped in the self-application combinator every
// binding in this calculus gets, so a body that does call itself resolves
// correctly without a native letrec. isValidator appends the synthetic
// trailing `_` parameter the entry point receives.
func lowerFunctionValue(g *ir.IDGen, ctx *genCtx, f *typedast.FunctionDef, isValidator bool) (ir.Expr, error) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	if isValidator {
		params = append(params, "_")
	}

	self := g.Var("__self")
	childCtx := ctx.with(f.Handle, g.Apply(self, self))

	fallback := func() (ir.Expr, error) { return g.Const(ir.ConstUnit, nil), nil }
	body, err := lowerBlock(g, f.Body, childCtx, fallback)
	if err != nil {
		return nil, err
	}

	inner := g.LambdaN(params, body)
	generator := g.Lambda("__self", inner)
	return g.Apply(generator, generator), nil
}
