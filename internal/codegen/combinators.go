package codegen

import (
	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// buildNativeList builds a list value by consing already-lowered elements
// onto an empty list, right to left — the same MkCons/empty-list shape
// internal/builtins' `range` recipe builds its result with.
func buildNativeList(g *ir.IDGen, elems []ir.Expr) ir.Expr {
	result := ir.Expr(g.Const(ir.ConstList, []ir.Expr{}))
	for i := len(elems) - 1; i >= 0; i-- {
		result = g.ApplyN(g.BuiltIn(opMkCons), elems[i], result)
	}
	return result
}

// mapList builds a new list whose elements are xform applied to each
// element of src, via the self-application recursion trick every
// recursive combinator in this compiler uses for a calculus with no native
// letrec (see internal/builtins/fold.go's listFold, which this mirrors but
// builds a list instead of folding to a scalar).
func mapList(g *ir.IDGen, src ir.Expr, xform func(elem ir.Expr) ir.Expr) ir.Expr {
	inner := g.Lambda("xs", nil)
	generator := g.Lambda("self", inner)

	self := g.Var("self")
	xs := g.Var("xs")
	head := g.Apply(g.BuiltIn(opHeadList), xs)
	tail := g.Apply(g.BuiltIn(opTailList), xs)
	recurse := g.ApplyN(self, self, tail)
	consed := g.ApplyN(g.BuiltIn(opMkCons), xform(head), recurse)

	inner.Body = g.Force(g.ApplyN(g.BuiltIn(opChooseList), xs,
		g.Delay(g.Const(ir.ConstList, []ir.Expr{})),
		g.Delay(consed)))

	return g.Apply(g.Apply(generator, generator), src)
}

// indexListRuntime walks a native list n elements in (a runtime value),
// recursing with the same self-application shape as mapList but counting
// down instead of rebuilding a list.
func indexListRuntime(g *ir.IDGen, list, idx ir.Expr) ir.Expr {
	inner := g.Lambda("xs", nil)
	generator := g.Lambda("self", g.Lambda("n", inner))

	self := g.Var("self")
	n := g.Var("n")
	xs := g.Var("xs")
	atZero := g.ApplyN(g.BuiltIn(opEqualsInt), n, g.Const(ir.ConstInteger, int64(0)))
	pred := g.ApplyN(g.BuiltIn("SubtractInteger"), n, g.Const(ir.ConstInteger, int64(1)))
	recurse := g.ApplyN(self, self, pred, g.Apply(g.BuiltIn(opTailList), xs))

	inner.Body = g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), atZero,
		g.Delay(g.Apply(g.BuiltIn(opHeadList), xs)),
		g.Delay(recurse)))

	walker := g.Apply(generator, generator)
	return g.ApplyN(walker, idx, list)
}

// mapGet walks a Map's underlying list of Data pairs looking for a key
// equal to idx, returning the matched pair's value. An absent key falls
// through to the VM's own failure on HeadList/EmptyList — the accepted
// subset has no `.get(default)` form (method-style calls are rejected by
// internal/infer), so there is no fallback value to return instead.
func mapGet(g *ir.IDGen, pairs, keyData ir.Expr) ir.Expr {
	inner := g.Lambda("xs", nil)
	generator := g.Lambda("self", inner)

	self := g.Var("self")
	xs := g.Var("xs")
	head := g.Apply(g.BuiltIn(opHeadList), xs)
	tail := g.Apply(g.BuiltIn(opTailList), xs)
	headKey := g.Apply(g.BuiltIn(opFstPair), head)
	headVal := g.Apply(g.BuiltIn(opSndPair), head)
	matches := g.ApplyN(g.BuiltIn(opEqualsData), headKey, keyData)
	recurse := g.ApplyN(self, self, tail)

	inner.Body = g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), matches,
		g.Delay(headVal),
		g.Delay(recurse)))

	return g.Apply(g.Apply(generator, generator), pairs)
}

// lowerSubscript compiles `receiver[index]`, distinguishing a list's
// runtime-counted walk from a map's key-comparison walk by the receiver's
// static type.
func lowerSubscript(g *ir.IDGen, ctx *genCtx, s *typedast.Subscript) (ir.Expr, error) {
	recv, err := lowerExpr(g, ctx, s.Receiver)
	if err != nil {
		return nil, err
	}
	idx, err := lowerExpr(g, ctx, s.Index)
	if err != nil {
		return nil, err
	}
	recvBare, _ := types.AsInstance(s.Receiver.Type())
	if mapT, ok := recvBare.(*types.Map); ok {
		keyBare, _ := types.AsInstance(mapT.Key)
		valBare, _ := types.AsInstance(mapT.Val)
		underlying := g.Apply(g.BuiltIn(opUnMapData), recv)
		match := mapGet(g, underlying, wrapData(g, idx, keyBare))
		return unwrapData(g, match, valBare), nil
	}
	return indexListRuntime(g, recv, idx), nil
}

// lowerForLoop compiles `for target in iter: body` to a right fold whose
// accumulator is unit: each element runs the body for effect, then
// continues to the next. There is no early exit (break
// does not exist in the accepted subset), so this always walks the whole
// list.
func lowerForLoop(g *ir.IDGen, ctx *genCtx, f *typedast.For) (ir.Expr, error) {
	iter, err := lowerExpr(g, ctx, f.Iter)
	if err != nil {
		return nil, err
	}
	body, err := lowerBlock(g, f.Body, ctx, func() (ir.Expr, error) {
		return g.Const(ir.ConstUnit, nil), nil
	})
	if err != nil {
		return nil, err
	}

	inner := g.Lambda("xs", nil)
	generator := g.Lambda("self", inner)

	self := g.Var("self")
	xs := g.Var("xs")
	head := g.Apply(g.BuiltIn(opHeadList), xs)
	tail := g.Apply(g.BuiltIn(opTailList), xs)
	recurse := g.ApplyN(self, self, tail)

	// bind the loop target to this element, run body for effect, continue
	iteration := g.Apply(g.Lambda(f.Target, g.Apply(g.Lambda("_", recurse), body)), head)

	inner.Body = g.Force(g.ApplyN(g.BuiltIn(opChooseList), xs,
		g.Delay(g.Const(ir.ConstUnit, nil)),
		g.Delay(iteration)))

	return g.Apply(g.Apply(generator, generator), iter), nil
}
