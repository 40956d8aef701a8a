package builtins

import (
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// registerPrelude builds the eight-member built-in catalog: all, any,
// abs, breakpoint, len, print, range, sum. Each recipe is composed out of
// this package's IR constructors, so it is an ordinary closed term the
// code generator applies directly. Laziness is expressed with explicit
// Delay/Force nodes (see internal/ir) rather than a trailing dummy
// parameter, so every recipe below except breakpoint takes exactly the
// arguments its type signature promises; breakpoint's recipe is a
// one-parameter lambda returning unit although its signature takes none.
func registerPrelude() {
	boolListT := types.InstanceOf(&types.List{Elem: types.InstanceOf(types.BoolT)})
	intListT := types.InstanceOf(&types.List{Elem: types.InstanceOf(types.IntegerT)})
	intT := types.InstanceOf(types.IntegerT)
	boolT := types.InstanceOf(types.BoolT)
	unitT := types.InstanceOf(types.UnitT)
	strT := types.InstanceOf(types.StringT)

	register(Spec{
		Name:    "all",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{boolListT}, boolT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			fold := listFold(g, func(elem, acc ir.Expr) ir.Expr {
				return g.ApplyN(g.BuiltIn(opIfThenElse), elem, acc, g.Const(ir.ConstBool, false))
			}, g.Const(ir.ConstBool, true))
			return g.Lambda("xs", g.Apply(fold, g.Var("xs")))
		},
	})

	register(Spec{
		Name:    "any",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{boolListT}, boolT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			fold := listFold(g, func(elem, acc ir.Expr) ir.Expr {
				return g.ApplyN(g.BuiltIn(opIfThenElse), elem, g.Const(ir.ConstBool, true), acc)
			}, g.Const(ir.ConstBool, false))
			return g.Lambda("xs", g.Apply(fold, g.Var("xs")))
		},
	})

	register(Spec{
		Name:    "abs",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{intT}, intT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			x := g.Var("x")
			negative := g.ApplyN(g.BuiltIn(opLessThanInt), x, g.Const(ir.ConstInteger, int64(0)))
			negated := g.ApplyN(g.BuiltIn(opSubtractInt), g.Const(ir.ConstInteger, int64(0)), x)
			return g.Lambda("x", g.ApplyN(g.BuiltIn(opIfThenElse), negative, negated, x))
		},
	})

	register(Spec{
		Name:    "breakpoint",
		NumArgs: 0,
		Type:    fixed(types.FunctionType([]types.Type{}, unitT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			// No debugger hook exists on-chain; breakpoint is kept as a
			// named no-op so source that calls it still resolves.
			return g.Lambda("_", g.Const(ir.ConstUnit, nil))
		},
	})

	register(Spec{
		Name:        "len",
		NumArgs:     1,
		Polymorphic: true,
		Type:        specializeLen,
		Recipe:      recipeLen,
	})

	register(Spec{
		Name:    "print",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{strT}, unitT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			return g.Lambda("x", g.ApplyN(g.BuiltIn(opTrace), g.Var("x"), g.Const(ir.ConstUnit, nil)))
		},
	})

	register(Spec{
		Name:    "range",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{intT}, types.InstanceOf(&types.List{Elem: intT}))),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			// Counts up from zero, consing each index while it is still
			// below limit, so the produced list is [0, limit) in ascending
			// order — the same order the folding sandbox builds for a
			// range call it can evaluate.
			generator := g.Lambda("self", g.Lambda("i", nil))
			lam := generator.Body.(*ir.Lambda)
			self, i := g.Var("self"), g.Var("i")
			below := g.ApplyN(g.BuiltIn(opLessThanInt), i, g.Var("limit"))
			next := g.ApplyN(g.BuiltIn(opAddInteger), i, g.Const(ir.ConstInteger, int64(1)))
			consed := g.ApplyN(g.BuiltIn("MkCons"), i, g.ApplyN(self, self, next))
			lam.Body = g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), below,
				g.Delay(consed),
				g.Delay(g.Const(ir.ConstList, []ir.Expr{}))))
			countup := g.Apply(generator, generator)
			return g.Lambda("limit", g.Apply(countup, g.Const(ir.ConstInteger, int64(0))))
		},
	})

	register(Spec{
		Name:    "sum",
		NumArgs: 1,
		Type:    fixed(types.FunctionType([]types.Type{intListT}, intT)),
		Recipe: func(g *ir.IDGen, _ []types.Type) ir.Expr {
			fold := listFold(g, func(elem, acc ir.Expr) ir.Expr {
				return g.ApplyN(g.BuiltIn(opAddInteger), elem, acc)
			}, g.Const(ir.ConstInteger, int64(0)))
			return g.Lambda("xs", g.Apply(fold, g.Var("xs")))
		},
	})
}

// fixed adapts a monomorphic *types.Function into the Type signature every
// Spec carries, ignoring the call-site argument types it is handed.
func fixed(sig *types.Function) func([]types.Type) (*types.Function, error) {
	return func([]types.Type) (*types.Function, error) { return sig, nil }
}

func specializeLen(argTypes []types.Type) (*types.Function, error) {
	if len(argTypes) != 1 {
		return nil, fmt.Errorf("builtins: len takes exactly one argument, got %d", len(argTypes))
	}
	arg, ok := types.AsInstance(argTypes[0])
	if !ok {
		return nil, fmt.Errorf("builtins: len requires an instance type, got %s", argTypes[0])
	}
	ret := types.InstanceOf(types.IntegerT)
	switch t := arg.(type) {
	case *types.List:
		_ = t
		return types.FunctionType([]types.Type{argTypes[0]}, ret), nil
	default:
		if arg.Equals(types.ByteStringT) {
			return types.FunctionType([]types.Type{argTypes[0]}, ret), nil
		}
		return nil, fmt.Errorf("builtins: len is not defined for %s", arg)
	}
}

func recipeLen(g *ir.IDGen, argTypes []types.Type) ir.Expr {
	arg, _ := types.AsInstance(argTypes[0])
	if arg.Equals(types.ByteStringT) {
		return g.Lambda("x", g.Apply(g.BuiltIn(opLengthOfBytes), g.Var("x")))
	}
	return g.Lambda("xs", g.Apply(countList(g), g.Var("xs")))
}
