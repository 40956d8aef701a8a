package codegen

import (
	"strings"
	"testing"

	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/fold"
	"github.com/ImperatorLang/eopsin/internal/infer"
	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/testutil"
)

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.IntLit, Value: v} }
func name(n string) *ast.Name     { return &ast.Name{Ident: n} }

func posArgs(vs ...ast.Expr) []*ast.CallArg {
	out := make([]*ast.CallArg, len(vs))
	for i, v := range vs {
		out[i] = &ast.CallArg{Value: v}
	}
	return out
}

func mustGenerate(t *testing.T, file *ast.File) *ir.Program {
	t.Helper()
	typed, err := infer.Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	typed = fold.File(typed)
	prog, err := Generate(typed)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return prog
}

// lambdaChain walks nested Lambdas and returns their parameter names in
// binding order, innermost-last, plus the node the chain finally bottoms
// out at.
func lambdaChain(e ir.Expr) (params []string, body ir.Expr) {
	for {
		lam, ok := e.(*ir.Lambda)
		if !ok {
			return params, e
		}
		params = append(params, lam.Param)
		e = lam.Body
	}
}

// TestGenerateArithmeticValidator: a three-parameter validator returning
// (x-y)*z.
func TestGenerateArithmeticValidator(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: infer.ValidatorName,
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "y", Type: name("int")},
					{Name: "z", Type: name("int")},
				},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{
						Op:    "*",
						Left:  &ast.BinOp{Op: "-", Left: name("x"), Right: name("y")},
						Right: name("z"),
					}},
				},
			},
		},
	}

	prog := mustGenerate(t, file)

	// Generate's own wrapper: (lam validator validator) <value>.
	outer, ok := prog.Term.(*ir.Apply)
	if !ok {
		t.Fatalf("expected top-level Apply, got %T", prog.Term)
	}
	wrapper, ok := outer.Func.(*ir.Lambda)
	if !ok || wrapper.Param != infer.ValidatorName {
		t.Fatalf("expected outer binding lambda for %s, got %#v", infer.ValidatorName, outer.Func)
	}

	// The bound value is the self-application combinator: (generator generator).
	selfApp, ok := outer.Arg.(*ir.Apply)
	if !ok {
		t.Fatalf("expected validator value to be a self-application, got %T", outer.Arg)
	}
	generator, ok := selfApp.Func.(*ir.Lambda)
	if !ok || generator.Param != "__self" {
		t.Fatalf("expected generator lambda bound to __self, got %#v", selfApp.Func)
	}

	// validator has 3 declared params plus the synthetic trailing "_".
	params, body := lambdaChain(generator.Body)
	want := []string{"x", "y", "z", "_"}
	if len(params) != len(want) {
		t.Fatalf("expected params %v, got %v", want, params)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Fatalf("expected params %v, got %v", want, params)
		}
	}

	dump := ir.Dump(body)
	if !strings.Contains(dump, "MultiplyInteger") {
		t.Errorf("expected MultiplyInteger in body, got:\n%s", dump)
	}
	if !strings.Contains(dump, "SubtractInteger") {
		t.Errorf("expected SubtractInteger in body, got:\n%s", dump)
	}
}

// TestGenerateDefaultArgument: a trailing default parameter filled in by
// the inference pass before code-gen ever sees the call.
func TestGenerateDefaultArgument(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: "f",
				Params: []*ast.Param{
					{Name: "x", Type: name("int")},
					{Name: "y", Type: name("int")},
					{Name: "z", Type: name("int"), Default: intLit(7)},
				},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{
						Op:    "*",
						Left:  &ast.BinOp{Op: "-", Left: name("x"), Right: name("z")},
						Right: name("y"),
					}},
				},
			},
			&ast.FunctionDef{
				Name:       infer.ValidatorName,
				Params:     []*ast.Param{{Name: "a", Type: name("int")}},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.Call{
						Func: name("f"),
						Args: posArgs(intLit(10), intLit(3)),
					}},
				},
			},
		},
	}

	prog := mustGenerate(t, file)
	dump := ir.Dump(prog.Term)

	// The unresolved default literal 7 must appear somewhere in the
	// generated term as a constant, applied in z's position.
	if !strings.Contains(dump, "(con 7)") {
		t.Errorf("expected default value 7 to appear as a constant, got:\n%s", dump)
	}
	if !strings.Contains(dump, "SubtractInteger") || !strings.Contains(dump, "MultiplyInteger") {
		t.Errorf("expected f's body to survive lowering, got:\n%s", dump)
	}
}

// TestGenerateConstantFoldedValidator: after folding, 2+3 must appear as
// the literal 5 with no AddInteger application left behind.
func TestGenerateConstantFoldedValidator(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name: infer.ValidatorName,
				Params: []*ast.Param{
					{Name: "_", Type: name("None")},
					{Name: "__", Type: name("None")},
					{Name: "___", Type: name("None")},
				},
				ReturnType: name("int"),
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{Op: "+", Left: intLit(2), Right: intLit(3)}},
				},
			},
		},
	}

	prog := mustGenerate(t, file)
	dump := ir.Dump(prog.Term)

	if strings.Contains(dump, "AddInteger") {
		t.Errorf("expected constant folding to remove AddInteger, got:\n%s", dump)
	}
	if !strings.Contains(dump, "(con 5)") {
		t.Errorf("expected folded constant 5, got:\n%s", dump)
	}
}

// runValidator applies a generated program to the validator's arguments
// (plus the synthetic trailing unit the entry point receives) and reduces
// it to a plain Go value.
func runValidator(t *testing.T, prog *ir.Program, args ...ir.Expr) interface{} {
	t.Helper()
	g := ir.NewIDGen()
	applied := g.ApplyN(prog.Term, append(args, g.Const(ir.ConstUnit, nil))...)
	got, err := testutil.EvalIR(applied)
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
	return got
}

// TestGenerateRangeEvaluatesAscending evaluates the compiled term, not its
// dump: a range call on a runtime argument (so the folder cannot touch it)
// must produce the same ascending [0, limit) the folding sandbox computes
// for a range call it can evaluate.
func TestGenerateRangeEvaluatesAscending(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name:       infer.ValidatorName,
				Params:     []*ast.Param{{Name: "n", Type: name("int")}},
				ReturnType: &ast.Subscript{Receiver: name("List"), Index: name("int")},
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.Call{Func: name("range"), Args: posArgs(name("n"))}},
				},
			},
		},
	}

	prog := mustGenerate(t, file)
	g := ir.NewIDGen()
	got := runValidator(t, prog, g.Const(ir.ConstInteger, int64(3)))

	xs, ok := got.([]interface{})
	if !ok {
		t.Fatalf("expected a list, got %T", got)
	}
	want := []int64{0, 1, 2}
	if len(xs) != len(want) {
		t.Fatalf("expected %v, got %v", want, xs)
	}
	for i, w := range want {
		if xs[i] != w {
			t.Fatalf("expected %v, got %v", want, xs)
		}
	}
}

// TestGenerateFloorDivisionEvaluates drives `//` and `%` on runtime
// arguments end to end: the compiled term must agree with the source
// language's floor semantics (and so with the folding sandbox), not with
// the VM's truncating primitives.
func TestGenerateFloorDivisionEvaluates(t *testing.T) {
	cases := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"//", -7, 2, -4},
		{"//", 7, -2, -4},
		{"%", -7, 2, 1},
		{"%", 7, -2, -1},
	}
	for _, c := range cases {
		file := &ast.File{
			Name: "m",
			Stmts: []ast.Stmt{
				&ast.FunctionDef{
					Name: infer.ValidatorName,
					Params: []*ast.Param{
						{Name: "a", Type: name("int")},
						{Name: "b", Type: name("int")},
					},
					ReturnType: name("int"),
					Body: []ast.Stmt{
						&ast.Return{Value: &ast.BinOp{Op: c.op, Left: name("a"), Right: name("b")}},
					},
				},
			},
		}

		prog := mustGenerate(t, file)
		g := ir.NewIDGen()
		got := runValidator(t, prog,
			g.Const(ir.ConstInteger, c.a),
			g.Const(ir.ConstInteger, c.b))
		if got != c.want {
			t.Errorf("%d %s %d = %v, want %d", c.a, c.op, c.b, got, c.want)
		}
	}
}

// TestGenerateRejectsModuleWithNoValidator covers CGN001: a module with no
// function named "validator" is rejected before any IR is built.
func TestGenerateRejectsModuleWithNoValidator(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.FunctionDef{
				Name:       "helper",
				Params:     []*ast.Param{{Name: "x", Type: name("int")}},
				ReturnType: name("int"),
				Body:       []ast.Stmt{&ast.Return{Value: name("x")}},
			},
		},
	}

	typed, err := infer.Infer(file)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	typed = fold.File(typed)

	_, err = Generate(typed)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	diag, ok := errors.As(err)
	if !ok || diag.Code != errors.CGN001 {
		t.Fatalf("expected CGN001, got %v", err)
	}
}

// TestGenerateRecordFieldRoundTrip covers record construction and field
// access together: a record's int field survives an IData/UnIData
// round trip.
func TestGenerateRecordFieldRoundTrip(t *testing.T) {
	file := &ast.File{
		Name: "m",
		Stmts: []ast.Stmt{
			&ast.ClassDef{Name: "Pair", Fields: []*ast.FieldDef{
				{Name: "a", Type: name("int")},
				{Name: "b", Type: name("int")},
			}},
			&ast.FunctionDef{
				Name:       infer.ValidatorName,
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

	prog := mustGenerate(t, file)
	dump := ir.Dump(prog.Term)

	if !strings.Contains(dump, "ConstrData") {
		t.Errorf("expected record construction to use ConstrData, got:\n%s", dump)
	}
	if !strings.Contains(dump, "UnConstrData") {
		t.Errorf("expected field access to use UnConstrData, got:\n%s", dump)
	}
	if !strings.Contains(dump, "UnIData") {
		t.Errorf("expected field b to be unwrapped with UnIData, got:\n%s", dump)
	}
}
