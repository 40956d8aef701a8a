package builtins

import (
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// OperatorRecipe builds the two-argument IR term for a resolved binary
// operator, or the one-argument term for a resolved unary operator (args
// has length 1 in that case).
type OperatorRecipe func(g *ir.IDGen, args []ir.Expr) ir.Expr

type operatorKey struct {
	op  string
	lhs string
	rhs string // empty for unary operators
}

type operatorEntry struct {
	result Type_
	recipe OperatorRecipe
}

// Type_ is a thin alias kept local to this file so the table below reads
// as "operand type -> result type" without importing types twice under
// two names.
type Type_ = types.Type

var operatorTable = map[operatorKey]operatorEntry{}

func registerBinOp(op string, operand types.Type, result types.Type, recipe OperatorRecipe) {
	key := operatorKey{op: op, lhs: operand.String(), rhs: operand.String()}
	operatorTable[key] = operatorEntry{result: result, recipe: recipe}
}

func registerUnOp(op string, operand types.Type, result types.Type, recipe OperatorRecipe) {
	key := operatorKey{op: op, lhs: operand.String()}
	operatorTable[key] = operatorEntry{result: result, recipe: recipe}
}

// LookupBinOp resolves a binary operator against its two (already
// instance-unwrapped) operand types, keyed by (operator, operand types).
func LookupBinOp(op string, lhs, rhs types.Type) (types.Type, OperatorRecipe, error) {
	key := operatorKey{op: op, lhs: lhs.String(), rhs: rhs.String()}
	entry, ok := operatorTable[key]
	if ok {
		return entry.result, entry.recipe, nil
	}
	if (op == "==" || op == "!=") && lhs.Equals(rhs) {
		// Records, sums, maps and lists have no per-field comparison
		// recipe of their own; they compare equal the same way any two
		// PlutusData values do on the ledger, via structural data
		// equality.
		return types.BoolT, dataEqualityRecipe(op), nil
	}
	return nil, nil, fmt.Errorf("builtins: no recipe for %s %s %s", lhs, op, rhs)
}

// needsFloorAdjust builds the condition under which the VM's truncating
// integer division must be corrected to the source language's floor
// semantics: the remainder is nonzero and the operand signs differ. The
// operands are referenced as the bound names "a" and "b"; callers wrap the
// result in lambdas binding both (floorDivRecipe, floorModRecipe), so each
// operand expression is evaluated once however often the condition reads
// it.
func needsFloorAdjust(g *ir.IDGen) ir.Expr {
	a, b := g.Var("a"), g.Var("b")
	zero := g.Const(ir.ConstInteger, int64(0))
	rem := g.ApplyN(g.BuiltIn("RemainderInteger"), a, b)
	remNonzero := g.Apply(g.BuiltIn("Not"), g.ApplyN(g.BuiltIn("EqualsInteger"), rem, zero))
	aNeg := g.ApplyN(g.BuiltIn(opLessThanInt), a, zero)
	bNeg := g.ApplyN(g.BuiltIn(opLessThanInt), b, zero)
	signsDiffer := g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), aNeg,
		g.Delay(g.Apply(g.BuiltIn("Not"), bNeg)),
		g.Delay(bNeg)))
	return g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), remNonzero,
		g.Delay(signsDiffer),
		g.Delay(g.Const(ir.ConstBool, false))))
}

// floorDivRecipe lowers `//`. The VM's QuotientInteger truncates toward
// zero, while the source language floors; when the remainder is nonzero
// and the signs differ the truncated quotient is one too high, so subtract
// one — the same correction the constant-folding sandbox applies when it
// evaluates a `//` at compile time.
func floorDivRecipe(g *ir.IDGen, args []ir.Expr) ir.Expr {
	a, b := g.Var("a"), g.Var("b")
	q := g.ApplyN(g.BuiltIn("QuotientInteger"), a, b)
	body := g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), needsFloorAdjust(g),
		g.Delay(g.ApplyN(g.BuiltIn(opSubtractInt), q, g.Const(ir.ConstInteger, int64(1)))),
		g.Delay(q)))
	return g.ApplyN(g.Lambda("a", g.Lambda("b", body)), args[0], args[1])
}

// floorModRecipe lowers `%` to match floorDivRecipe: whenever the quotient
// is floored down by one, the remainder moves up by one divisor so that
// a == (a // b) * b + (a % b) still holds.
func floorModRecipe(g *ir.IDGen, args []ir.Expr) ir.Expr {
	a, b := g.Var("a"), g.Var("b")
	r := g.ApplyN(g.BuiltIn("RemainderInteger"), a, b)
	body := g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), needsFloorAdjust(g),
		g.Delay(g.ApplyN(g.BuiltIn(opAddInteger), r, b)),
		g.Delay(r)))
	return g.ApplyN(g.Lambda("a", g.Lambda("b", body)), args[0], args[1])
}

func dataEqualityRecipe(op string) OperatorRecipe {
	return func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		eq := g.ApplyN(g.BuiltIn("EqualsData"), args[0], args[1])
		if op == "!=" {
			return g.Apply(g.BuiltIn("Not"), eq)
		}
		return eq
	}
}

// LookupUnOp resolves a unary operator against its operand type.
func LookupUnOp(op string, operand types.Type) (types.Type, OperatorRecipe, error) {
	key := operatorKey{op: op, lhs: operand.String()}
	entry, ok := operatorTable[key]
	if !ok {
		return nil, nil, fmt.Errorf("builtins: no recipe for %s%s", op, operand)
	}
	return entry.result, entry.recipe, nil
}

func init() {
	intArith := func(name string) OperatorRecipe {
		return func(g *ir.IDGen, args []ir.Expr) ir.Expr {
			return g.ApplyN(g.BuiltIn(name), args[0], args[1])
		}
	}
	intCompare := func(name string) OperatorRecipe {
		return func(g *ir.IDGen, args []ir.Expr) ir.Expr {
			return g.ApplyN(g.BuiltIn(name), args[0], args[1])
		}
	}
	registerBinOp("+", types.IntegerT, types.IntegerT, intArith(opAddInteger))
	registerBinOp("-", types.IntegerT, types.IntegerT, intArith(opSubtractInt))
	registerBinOp("*", types.IntegerT, types.IntegerT, intArith("MultiplyInteger"))
	registerBinOp("//", types.IntegerT, types.IntegerT, floorDivRecipe)
	registerBinOp("%", types.IntegerT, types.IntegerT, floorModRecipe)

	registerBinOp("<", types.IntegerT, types.BoolT, intCompare(opLessThanInt))
	registerBinOp("<=", types.IntegerT, types.BoolT, intCompare("LessThanEqualsInteger"))
	registerBinOp(">", types.IntegerT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opLessThanInt), args[1], args[0])
	})
	registerBinOp(">=", types.IntegerT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn("LessThanEqualsInteger"), args[1], args[0])
	})
	registerBinOp("==", types.IntegerT, types.BoolT, intCompare("EqualsInteger"))
	registerBinOp("!=", types.IntegerT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.Apply(g.BuiltIn("Not"), g.ApplyN(g.BuiltIn("EqualsInteger"), args[0], args[1]))
	})

	registerBinOp("+", types.ByteStringT, types.ByteStringT, intArith("AppendByteString"))
	registerBinOp("==", types.ByteStringT, types.BoolT, intCompare("EqualsByteString"))
	registerBinOp("!=", types.ByteStringT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.Apply(g.BuiltIn("Not"), g.ApplyN(g.BuiltIn("EqualsByteString"), args[0], args[1]))
	})

	registerBinOp("+", types.StringT, types.StringT, intArith("AppendString"))
	registerBinOp("==", types.StringT, types.BoolT, intCompare("EqualsString"))

	registerBinOp("==", types.BoolT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opIfThenElse), args[0], args[1], g.Apply(g.BuiltIn("Not"), args[1]))
	})
	registerBinOp("and", types.BoolT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opIfThenElse), args[0], args[1], g.Const(ir.ConstBool, false))
	})
	registerBinOp("or", types.BoolT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opIfThenElse), args[0], g.Const(ir.ConstBool, true), args[1])
	})

	registerUnOp("-", types.IntegerT, types.IntegerT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.ApplyN(g.BuiltIn(opSubtractInt), g.Const(ir.ConstInteger, int64(0)), args[0])
	})
	registerUnOp("not", types.BoolT, types.BoolT, func(g *ir.IDGen, args []ir.Expr) ir.Expr {
		return g.Apply(g.BuiltIn("Not"), args[0])
	})
}
