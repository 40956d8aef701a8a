package builtins

import "github.com/ImperatorLang/eopsin/internal/ir"

// Named VM primitives this package's recipes compose. These mirror the
// ledger-neutral builtins every Plutus-style VM ships (list destructors,
// integer arithmetic/comparison, the Trace side channel); internal/codegen
// relies on the same names for operator lowering, so they live here rather
// than being invented per call site.
const (
	opChooseList    = "ChooseList"
	opHeadList      = "HeadList"
	opTailList      = "TailList"
	opAddInteger    = "AddInteger"
	opSubtractInt   = "SubtractInteger"
	opLessThanInt   = "LessThanInteger"
	opLengthOfBytes = "LengthOfByteString"
	opTrace         = "Trace"
	opIfThenElse    = "IfThenElse"
)

// listFold builds a term equivalent to a right fold over a list argument:
// `λxs. fold combine seed xs`, where combine receives the head element and
// the fold of the tail, and the empty list yields seed. The VM has no native fold, so this
// is expressed with the usual self-application recursion trick for a
// combinator calculus with no let-rec: `λself. λxs. ...` applied to itself
// lets the body call `self self` to recurse, with the branch not taken kept
// under Delay/Force so recursion terminates on the empty list.
func listFold(g *ir.IDGen, combine func(elem, acc ir.Expr) ir.Expr, seed ir.Expr) ir.Expr {
	generator := g.Lambda("self", g.Lambda("xs", nil))
	lam, ok := generator.Body.(*ir.Lambda)
	if !ok {
		panic("listFold: generator body must be a lambda")
	}

	xs := g.Var("xs")
	self := g.Var("self")
	recurse := g.ApplyN(self, self, g.Apply(g.BuiltIn(opTailList), xs))
	consBranch := combine(g.Apply(g.BuiltIn(opHeadList), xs), recurse)

	lam.Body = g.Force(g.ApplyN(g.BuiltIn(opChooseList), xs, g.Delay(seed), g.Delay(consBranch)))

	return g.Apply(generator, generator)
}

// countList counts a list's elements; `len` on a list and the bare `len`
// reference to "how many true" style folds both reduce to this shape.
func countList(g *ir.IDGen) ir.Expr {
	return listFold(g, func(_, acc ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opAddInteger), acc, g.Const(ir.ConstInteger, int64(1)))
	}, g.Const(ir.ConstInteger, int64(0)))
}
