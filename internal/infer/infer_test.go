package infer

import (
	"testing"

	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.IntLit, Value: v} }
func name(n string) *ast.Name     { return &ast.Name{Ident: n} }

func posArg(v ast.Expr) *ast.CallArg          { return &ast.CallArg{Value: v} }
func kwArg(n string, v ast.Expr) *ast.CallArg { return &ast.CallArg{Name: n, Value: v} }
func posArgs(vs ...ast.Expr) []*ast.CallArg {
	out := make([]*ast.CallArg, len(vs))
	for i, v := range vs {
		out[i] = posArg(v)
	}
	return out
}

// validatorFile builds a one-function module: def validator(x: int) -> <ret>: <body>
func validatorFile(body []ast.Stmt, ret ast.Expr) *ast.File {
	return &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name:       ValidatorName,
				Params:     []*ast.Param{{Name: "x", Type: name("int")}},
				ReturnType: ret,
				Body:       body,
			},
		},
	}
}

func TestInferTrivialFunction(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: name("x")},
	}, name("int"))

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn, ok := typed.Stmts[0].(*typedast.FunctionDef)
	if !ok {
		t.Fatalf("expected *typedast.FunctionDef, got %T", typed.Stmts[0])
	}
	if !fn.ReturnType.Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("expected return type int, got %s", fn.ReturnType)
	}
	ret, ok := fn.Body[0].(*typedast.Return)
	if !ok {
		t.Fatalf("expected *typedast.Return, got %T", fn.Body[0])
	}
	if !ret.Value.Type().Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("expected return value of type int, got %s", ret.Value.Type())
	}
}

func TestInferReturnTypeMismatch(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: &ast.Literal{Kind: ast.BoolLit, Value: true}},
	}, name("int"))

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected a type error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.TYP004 {
		t.Fatalf("expected TYP004, got %v", err)
	}
}

func TestInferBinOpAndCompare(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: &ast.BinOp{Op: "+", Left: name("x"), Right: intLit(1)}},
	}, name("int"))

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[0].(*typedast.FunctionDef)
	ret := fn.Body[0].(*typedast.Return)
	binop, ok := ret.Value.(*typedast.BinOp)
	if !ok {
		t.Fatalf("expected *typedast.BinOp, got %T", ret.Value)
	}
	if !binop.Type().Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("expected int, got %s", binop.Type())
	}
}

func TestInferUndefinedName(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: name("nonexistent")},
	}, name("int"))

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.NAM001 {
		t.Fatalf("expected NAM001, got %v", err)
	}
}

func TestInferIfNarrowsIsInstance(t *testing.T) {
	// class A: n: bool ; class B: pass ; class U: variants = [A, B]
	// The then-branch reads u.n, which only type-checks once u is narrowed to A.
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.ClassDef{Name: "A", Fields: []*ast.FieldDef{{Name: "n", Type: name("bool")}}},
			&ast.ClassDef{Name: "B"},
			&ast.ClassDef{Name: "U", Variants: []string{"A", "B"}},
			&ast.FunctionDef{
				Name:       ValidatorName,
				Params:     []*ast.Param{{Name: "u", Type: name("U")}},
				ReturnType: name("bool"),
				Body: []ast.Stmt{
					&ast.If{
						Cond: &ast.Call{Func: name("isinstance"), Args: posArgs(name("u"), name("A"))},
						Body: []ast.Stmt{
							&ast.Return{Value: &ast.Attribute{Receiver: name("u"), Attr: "n"}},
						},
						Else: []ast.Stmt{
							&ast.Return{Value: &ast.Literal{Kind: ast.BoolLit, Value: false}},
						},
					},
				},
			},
		},
	}

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[3].(*typedast.FunctionDef)
	ifStmt, ok := fn.Body[0].(*typedast.If)
	if !ok {
		t.Fatalf("expected *typedast.If, got %T", fn.Body[0])
	}
	if _, ok := ifStmt.Cond.(*typedast.IsInstanceExpr); !ok {
		t.Fatalf("expected condition to be an IsInstanceExpr, got %T", ifStmt.Cond)
	}
}

func TestInferRecordConstructionAndFieldAccess(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.ClassDef{Name: "Pair", Fields: []*ast.FieldDef{
				{Name: "a", Type: name("int")},
				{Name: "b", Type: name("int")},
			}},
			&ast.FunctionDef{
				Name:       ValidatorName,
				Params:     []*ast.Param{{Name: "n", Type: name("int")}},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Assign{
						Target: "p",
						Value:  &ast.Call{Func: name("Pair"), Args: posArgs(name("n"), intLit(2))},
					},
					&ast.Return{Value: &ast.Attribute{Receiver: name("p"), Attr: "b"}},
				},
			},
		},
	}

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[1].(*typedast.FunctionDef)
	assign := fn.Body[0].(*typedast.Assign)
	rec, ok := assign.Value.(*typedast.RecordExpr)
	if !ok {
		t.Fatalf("expected *typedast.RecordExpr, got %T", assign.Value)
	}
	if rec.Record.TypeName != "Pair" {
		t.Errorf("expected Pair, got %s", rec.Record.TypeName)
	}
	ret := fn.Body[1].(*typedast.Return)
	attr, ok := ret.Value.(*typedast.Attribute)
	if !ok {
		t.Fatalf("expected *typedast.Attribute, got %T", ret.Value)
	}
	if attr.FieldIndex != 1 {
		t.Errorf("expected field index 1 for b, got %d", attr.FieldIndex)
	}
}

func TestInferUnknownKeywordArgument(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.ClassDef{Name: "Pair", Fields: []*ast.FieldDef{
				{Name: "a", Type: name("int")},
				{Name: "b", Type: name("int")},
			}},
			&ast.FunctionDef{
				Name:       ValidatorName,
				Params:     []*ast.Param{{Name: "n", Type: name("int")}},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.Attribute{
						Receiver: &ast.Call{
							Func: name("Pair"),
							Args: []*ast.CallArg{posArg(intLit(1)), kwArg("c", intLit(2))},
						},
						Attr: "a",
					}},
				},
			},
		},
	}

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.SIG004 {
		t.Fatalf("expected SIG004, got %v", err)
	}
}

func TestInferBuiltinLenSpecializesOverList(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: &ast.Call{
			Func: name("len"),
			Args: posArgs(&ast.ListExpr{Elems: []ast.Expr{intLit(1), intLit(2)}}),
		}},
	}, name("int"))

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[0].(*typedast.FunctionDef)
	ret := fn.Body[0].(*typedast.Return)
	call, ok := ret.Value.(*typedast.Call)
	if !ok {
		t.Fatalf("expected *typedast.Call, got %T", ret.Value)
	}
	if !call.Type().Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("expected int, got %s", call.Type())
	}
}

func TestInferForLoopBindsElementType(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.For{
			Target: "y",
			Iter:   &ast.ListExpr{Elems: []ast.Expr{intLit(1), intLit(2)}},
			Body: []ast.Stmt{
				&ast.Assert{Cond: &ast.Compare{Left: name("y"), Ops: []string{">"}, Comps: []ast.Expr{intLit(0)}}},
			},
		},
		&ast.Return{Value: name("x")},
	}, name("int"))

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[0].(*typedast.FunctionDef)
	forStmt, ok := fn.Body[0].(*typedast.For)
	if !ok {
		t.Fatalf("expected *typedast.For, got %T", fn.Body[0])
	}
	if !forStmt.TargetType.Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("expected element type int, got %s", forStmt.TargetType)
	}
}

// TestInferNestedFunctionShadowsOuterSignature: a nested `def f` with a
// different arity than the enclosing `def f`
// must resolve calls inside its own enclosing body against its own
// signature, not the outer one (and must not panic dereferencing a
// never-registered signature).
func TestInferNestedFunctionShadowsOuterSignature(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: "f",
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "y", Type: name("int")},
					{Name: "z", Type: name("int")},
				},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.FunctionDef{
						Name: "f",
						Params: []*ast.Param{
							{Name: "nx", Type: name("int")},
							{Name: "nz", Type: name("int")},
						},
						ReturnType: name("int"),
						Body: []ast.Stmt{
							&ast.Return{Value: &ast.BinOp{Op: "-", Left: name("nx"), Right: name("nz")}},
						},
					},
					&ast.Return{Value: &ast.BinOp{
						Op: "*",
						Left: &ast.Call{
							Func: name("f"),
							Args: []*ast.CallArg{kwArg("nx", name("x")), kwArg("nz", name("z"))},
						},
						Right: name("y"),
					}},
				},
			},
		},
	}

	typed, err := Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	fn := typed.Stmts[0].(*typedast.FunctionDef)
	ret := fn.Body[1].(*typedast.Return)
	binop := ret.Value.(*typedast.BinOp)
	call, ok := binop.Left.(*typedast.Call)
	if !ok {
		t.Fatalf("expected *typedast.Call, got %T", binop.Left)
	}
	if len(call.ResolvedArgs) != 2 {
		t.Fatalf("expected the nested f's own two-parameter signature, got %d args", len(call.ResolvedArgs))
	}
}

// TestInferKeywordAfterPositionalRejected: `f(x=a, y=b, c)` is a SIG002
// error, not a silently-accepted call.
func TestInferKeywordAfterPositionalRejected(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: ValidatorName,
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "y", Type: name("int")},
					{Name: "z", Type: name("int")},
				},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.FunctionDef{
						Name:       "f",
						Params:     []*ast.Param{{Name: "a", Type: name("int")}, {Name: "b", Type: name("int")}, {Name: "c", Type: name("int")}},
						ReturnType: name("int"),
						Body:       []ast.Stmt{&ast.Return{Value: name("a")}},
					},
					&ast.Return{Value: &ast.Call{
						Func: name("f"),
						Args: []*ast.CallArg{kwArg("a", name("x")), kwArg("b", name("y")), posArg(name("z"))},
					}},
				},
			},
		},
	}

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected a SIG002 error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.SIG002 {
		t.Fatalf("expected SIG002, got %v", err)
	}
}

// TestInferWrongTypedDefaultRejected: a default whose type disagrees with
// its parameter's annotation is rejected
// at definition time, before any call site is even looked at.
func TestInferWrongTypedDefaultRejected(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: "f",
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "z", Type: name("int"), Default: &ast.Literal{Kind: ast.StringLit, Value: "hello"}},
				},
				ReturnType: name("int"),
				Body:       []ast.Stmt{&ast.Return{Value: name("x")}},
			},
			&ast.FunctionDef{
				Name:       ValidatorName,
				Params:     []*ast.Param{{Name: "a", Type: name("int")}},
				ReturnType: name("int"),
				Body:       []ast.Stmt{&ast.Return{Value: name("a")}},
			},
		},
	}

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected a SIG006 error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.SIG006 {
		t.Fatalf("expected SIG006, got %v", err)
	}
}

// TestInferValidatorDefaultRejected: the entry point's signature is fixed
// by the host, so a default on any of its parameters is a SIG007 error
// even when the default's type matches.
func TestInferValidatorDefaultRejected(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: ValidatorName,
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "y", Type: name("int"), Default: intLit(0)},
				},
				ReturnType: name("int"),
				Body:       []ast.Stmt{&ast.Return{Value: name("x")}},
			},
		},
	}

	_, err := Infer(file)
	if err == nil {
		t.Fatal("expected a SIG007 error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.SIG007 {
		t.Fatalf("expected SIG007, got %v", err)
	}
}

func TestInferWithDomainFilterHidesDisallowedClasses(t *testing.T) {
	file := validatorFile([]ast.Stmt{
		&ast.Return{Value: &ast.Call{Func: name("Token")}},
	}, name("int"))

	_, err := InferWithDomainFilter(file, func(n string) bool { return n != "Token" })
	if err == nil {
		t.Fatal("expected an error referencing a hidden domain class")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.NAM001 {
		t.Fatalf("expected NAM001 for a filtered-out class, got %v", err)
	}
}
