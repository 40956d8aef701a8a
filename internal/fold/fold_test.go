package fold

import (
	"testing"

	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/infer"
	"github.com/ImperatorLang/eopsin/internal/typedast"
)

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.IntLit, Value: v} }
func strLit(s string) *ast.Literal {
	return &ast.Literal{Kind: ast.StringLit, Value: s}
}
func name(n string) *ast.Name { return &ast.Name{Ident: n} }

func posArgs(vs ...ast.Expr) []*ast.CallArg {
	out := make([]*ast.CallArg, len(vs))
	for i, v := range vs {
		out[i] = &ast.CallArg{Value: v}
	}
	return out
}

// foldedValidator infers a one-validator module, folds it, and returns the
// validator's typed body.
func foldedValidator(t *testing.T, params []*ast.Param, ret ast.Expr, body []ast.Stmt) []typedast.Stmt {
	t.Helper()
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name:       infer.ValidatorName,
				Params:     params,
				ReturnType: ret,
				Body:       body,
			},
		},
	}
	typed, err := infer.Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	typed = File(typed)
	fn, ok := typed.Stmts[0].(*typedast.FunctionDef)
	if !ok {
		t.Fatalf("expected *typedast.FunctionDef, got %T", typed.Stmts[0])
	}
	return fn.Body
}

func intParam(n string) *ast.Param { return &ast.Param{Name: n, Type: name("int")} }

// TestFoldReplacesArithmeticWithConstant: `return 2 + 3` folds to the
// literal 5, leaving no BinOp behind.
func TestFoldReplacesArithmeticWithConstant(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("int"), []ast.Stmt{
		&ast.Return{Value: &ast.BinOp{Op: "+", Left: intLit(2), Right: intLit(3)}},
	})

	ret := body[0].(*typedast.Return)
	lit, ok := ret.Value.(*typedast.Literal)
	if !ok {
		t.Fatalf("expected the sum to fold to a Literal, got %T", ret.Value)
	}
	if lit.Value != int64(5) {
		t.Errorf("expected 5, got %v", lit.Value)
	}
}

// TestFoldPropagatesSingleAssignmentConstant: a name assigned exactly once
// in a block is a constant for the rest of that block.
func TestFoldPropagatesSingleAssignmentConstant(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("int"), []ast.Stmt{
		&ast.Assign{Target: "k", Value: intLit(2)},
		&ast.Return{Value: &ast.BinOp{Op: "+", Left: name("k"), Right: intLit(3)}},
	})

	ret := body[1].(*typedast.Return)
	lit, ok := ret.Value.(*typedast.Literal)
	if !ok {
		t.Fatalf("expected k+3 to fold to a Literal, got %T", ret.Value)
	}
	if lit.Value != int64(5) {
		t.Errorf("expected 5, got %v", lit.Value)
	}
}

// TestFoldModuleConstantReachesFunctionBody: a module-level single
// assignment is visible as a constant inside a function folded under it.
func TestFoldModuleConstantReachesFunctionBody(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.Assign{Target: "k", Value: intLit(4)},
			&ast.FunctionDef{
				Name:       infer.ValidatorName,
				Params:     []*ast.Param{intParam("x")},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{Op: "+", Left: name("k"), Right: intLit(1)}},
				},
			},
		},
	}
	typed, err := infer.Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	typed = File(typed)

	fn := typed.Stmts[1].(*typedast.FunctionDef)
	ret := fn.Body[0].(*typedast.Return)
	lit, ok := ret.Value.(*typedast.Literal)
	if !ok {
		t.Fatalf("expected the module constant to fold through, got %T", ret.Value)
	}
	if lit.Value != int64(5) {
		t.Errorf("expected 5, got %v", lit.Value)
	}
}

// TestFoldSkipsConditionallyAssignedName: an assignment inside a
// conditional body never counts as single-assignment for the enclosing
// block, so later uses stay unfolded.
func TestFoldSkipsConditionallyAssignedName(t *testing.T) {
	body := foldedValidator(t,
		[]*ast.Param{{Name: "b", Type: name("bool")}},
		name("int"),
		[]ast.Stmt{
			&ast.If{
				Cond: name("b"),
				Body: []ast.Stmt{&ast.Assign{Target: "x", Value: intLit(2)}},
			},
			&ast.Return{Value: &ast.BinOp{Op: "+", Left: name("x"), Right: intLit(3)}},
		})

	ret := body[1].(*typedast.Return)
	if _, ok := ret.Value.(*typedast.BinOp); !ok {
		t.Fatalf("a conditionally-assigned name must not fold; got %T", ret.Value)
	}
}

// TestFoldSkipsReassignedName: two assignments to the same name in one
// block disqualify it from the single-assignment set.
func TestFoldSkipsReassignedName(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("a")}, name("int"), []ast.Stmt{
		&ast.Assign{Target: "x", Value: intLit(1)},
		&ast.Assign{Target: "x", Value: intLit(2)},
		&ast.Return{Value: &ast.BinOp{Op: "+", Left: name("x"), Right: intLit(3)}},
	})

	ret := body[2].(*typedast.Return)
	if _, ok := ret.Value.(*typedast.BinOp); !ok {
		t.Fatalf("a reassigned name must not fold; got %T", ret.Value)
	}
}

// TestFoldPreservesPrintCalls: print is excluded from the sandbox's safe
// builtin table, so a trace-emitting expression survives folding intact.
func TestFoldPreservesPrintCalls(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("int"), []ast.Stmt{
		&ast.ExprStmt{X: &ast.Call{Func: name("print"), Args: posArgs(strLit("hi"))}},
		&ast.Return{Value: intLit(1)},
	})

	stmt := body[0].(*typedast.ExprStmt)
	if _, ok := stmt.X.(*typedast.Call); !ok {
		t.Fatalf("print call must survive folding, got %T", stmt.X)
	}
}

// TestFoldToleratesUnfoldableValueSilently: an expression depending on a
// runtime parameter simply stays as it is — no error, no diagnostic.
func TestFoldToleratesUnfoldableValueSilently(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("int"), []ast.Stmt{
		&ast.Assign{Target: "y", Value: &ast.BinOp{Op: "+", Left: name("x"), Right: intLit(1)}},
		&ast.Return{Value: name("y")},
	})

	assign := body[0].(*typedast.Assign)
	if _, ok := assign.Value.(*typedast.BinOp); !ok {
		t.Fatalf("a parameter-dependent value must stay unfolded, got %T", assign.Value)
	}
	ret := body[1].(*typedast.Return)
	if _, ok := ret.Value.(*typedast.Name); !ok {
		t.Fatalf("y has no constant binding and must stay a Name, got %T", ret.Value)
	}
}

// TestFoldBuiltinOverFoldedList: sum over a literal list folds through the
// sandbox's safe builtin table even though the intermediate list value
// never becomes a node of its own.
func TestFoldBuiltinOverFoldedList(t *testing.T) {
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("int"), []ast.Stmt{
		&ast.Return{Value: &ast.Call{
			Func: name("sum"),
			Args: posArgs(&ast.ListExpr{Elems: []ast.Expr{intLit(1), intLit(2), intLit(3)}}),
		}},
	})

	ret := body[0].(*typedast.Return)
	lit, ok := ret.Value.(*typedast.Literal)
	if !ok {
		t.Fatalf("expected sum([1,2,3]) to fold, got %T", ret.Value)
	}
	if lit.Value != int64(6) {
		t.Errorf("expected 6, got %v", lit.Value)
	}
}

// TestFoldNormalizesEquivalentUnicodeLiterals: two source literals denoting
// the same string under different Unicode decompositions compare equal
// inside the sandbox (NFC normalization on entry).
func TestFoldNormalizesEquivalentUnicodeLiterals(t *testing.T) {
	composed := "caf\u00e9"   // é as one code point
	decomposed := "cafe\u0301" // e plus combining acute
	body := foldedValidator(t, []*ast.Param{intParam("x")}, name("bool"), []ast.Stmt{
		&ast.Return{Value: &ast.Compare{
			Left:  strLit(composed),
			Ops:   []string{"=="},
			Comps: []ast.Expr{strLit(decomposed)},
		}},
	})

	ret := body[0].(*typedast.Return)
	lit, ok := ret.Value.(*typedast.Literal)
	if !ok {
		t.Fatalf("expected the comparison to fold, got %T", ret.Value)
	}
	if lit.Value != true {
		t.Errorf("expected NFC-equal literals to compare true, got %v", lit.Value)
	}
}
