package codegen

import (
	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// wrapData encodes a native IR value as PlutusData, the representation
// every record field is stored in. Integers and byte
// strings get the ledger's scalar wrappers; a list is rebuilt element by
// element via mapList; a record or sum-typed value is already Data by
// construction (see lowerRecordExpr) and passes through unchanged. Maps are
// always built as Data directly (lowerDictExpr), so they pass through too.
// Booleans have no native Data constructor on the ledger, so True/False are
// encoded the conventional way: a nullary constructor tagged 1 or 0.
func wrapData(g *ir.IDGen, val ir.Expr, bare types.Type) ir.Expr {
	if bare == nil {
		return val
	}
	switch {
	case bare.Equals(types.IntegerT):
		return g.Apply(g.BuiltIn(opIData), val)
	case bare.Equals(types.ByteStringT):
		return g.Apply(g.BuiltIn(opBData), val)
	case bare.Equals(types.BoolT):
		return boolToData(g, val)
	}
	if lt, ok := bare.(*types.List); ok {
		elemBare, _ := types.AsInstance(lt.Elem)
		return g.Apply(g.BuiltIn(opListData), mapList(g, val, func(e ir.Expr) ir.Expr {
			return wrapData(g, e, elemBare)
		}))
	}
	// Map/Record/Sum/String/Unit: already Data, or not exercised as a
	// record field by the domain catalog (see internal/builtins/domain.go).
	return val
}

// unwrapData is wrapData's inverse, recovering a record field's native
// representation from its stored Data form.
func unwrapData(g *ir.IDGen, val ir.Expr, bare types.Type) ir.Expr {
	if bare == nil {
		return val
	}
	switch {
	case bare.Equals(types.IntegerT):
		return g.Apply(g.BuiltIn(opUnIData), val)
	case bare.Equals(types.ByteStringT):
		return g.Apply(g.BuiltIn(opUnBData), val)
	case bare.Equals(types.BoolT):
		return dataToBool(g, val)
	}
	if lt, ok := bare.(*types.List); ok {
		elemBare, _ := types.AsInstance(lt.Elem)
		return mapList(g, g.Apply(g.BuiltIn(opUnListData), val), func(e ir.Expr) ir.Expr {
			return unwrapData(g, e, elemBare)
		})
	}
	return val
}

// boolToData encodes True as Constr 1 [] and False as Constr 0 [], the
// usual ledger convention for a type with no native Data tag of its own.
func boolToData(g *ir.IDGen, val ir.Expr) ir.Expr {
	empty := func() ir.Expr { return g.Const(ir.ConstList, []ir.Expr{}) }
	trueData := g.ApplyN(g.BuiltIn(opConstrData), g.Const(ir.ConstInteger, int64(1)), empty())
	falseData := g.ApplyN(g.BuiltIn(opConstrData), g.Const(ir.ConstInteger, int64(0)), empty())
	return g.Force(g.ApplyN(g.BuiltIn(opIfThenElse), val, g.Delay(trueData), g.Delay(falseData)))
}

func dataToBool(g *ir.IDGen, val ir.Expr) ir.Expr {
	tag := g.Apply(g.BuiltIn(opFstPair), g.Apply(g.BuiltIn(opUnConstrData), val))
	return g.ApplyN(g.BuiltIn(opEqualsInt), tag, g.Const(ir.ConstInteger, int64(1)))
}

// lowerRecordExpr constructs a record as Constr tag [field...], each field
// wrapped into Data in declared order.
func lowerRecordExpr(g *ir.IDGen, ctx *genCtx, r *typedast.RecordExpr) (ir.Expr, error) {
	fieldData := make([]ir.Expr, len(r.Fields))
	for i, f := range r.Fields {
		v, err := lowerExpr(g, ctx, f)
		if err != nil {
			return nil, err
		}
		bare, _ := types.AsInstance(r.Record.Fields[i].Type)
		fieldData[i] = wrapData(g, v, bare)
	}
	tag := g.Const(ir.ConstInteger, int64(r.Record.Tag))
	return g.ApplyN(g.BuiltIn(opConstrData), tag, buildNativeList(g, fieldData)), nil
}

// lowerAttribute projects one field out of a Constr value. FieldIndex is
// already resolved at compile time, so the
// destructuring walk is unrolled directly rather than built as a runtime
// recursion the way Subscript's runtime index needs.
func lowerAttribute(g *ir.IDGen, ctx *genCtx, a *typedast.Attribute) (ir.Expr, error) {
	recv, err := lowerExpr(g, ctx, a.Receiver)
	if err != nil {
		return nil, err
	}
	fields := g.Apply(g.BuiltIn(opSndPair), g.Apply(g.BuiltIn(opUnConstrData), recv))
	elem := ir.Expr(fields)
	for i := 0; i < a.FieldIndex; i++ {
		elem = g.Apply(g.BuiltIn(opTailList), elem)
	}
	elem = g.Apply(g.BuiltIn(opHeadList), elem)
	bare, _ := types.AsInstance(a.Type())
	return unwrapData(g, elem, bare), nil
}

// lowerIsInstance compiles `isinstance(v, Variant)` to a comparison of the
// value's constructor tag against the variant's declared tag.
func lowerIsInstance(g *ir.IDGen, ctx *genCtx, i *typedast.IsInstanceExpr) (ir.Expr, error) {
	val, err := lowerExpr(g, ctx, i.Value)
	if err != nil {
		return nil, err
	}
	tag := g.Apply(g.BuiltIn(opFstPair), g.Apply(g.BuiltIn(opUnConstrData), val))
	return g.ApplyN(g.BuiltIn(opEqualsInt), tag, g.Const(ir.ConstInteger, int64(i.Variant.Tag))), nil
}
