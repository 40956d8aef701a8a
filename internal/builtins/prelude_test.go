package builtins

import (
	"testing"

	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/types"
	"github.com/ImperatorLang/eopsin/testutil"
)

func TestAllPreludeNamesRegistered(t *testing.T) {
	want := []string{"all", "any", "abs", "breakpoint", "len", "print", "range", "sum"}
	for _, name := range want {
		if !IsBuiltin(name) {
			t.Errorf("expected %s to be a registered builtin", name)
		}
	}
}

func TestLenSpecializesToByteString(t *testing.T) {
	spec, ok := Get("len")
	if !ok {
		t.Fatal("len not registered")
	}
	sig, err := spec.Type([]types.Type{types.InstanceOf(types.ByteStringT)})
	if err != nil {
		t.Fatalf("specializeLen(bytes): %v", err)
	}
	if !sig.Ret.Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("len should return int, got %s", sig.Ret)
	}
}

func TestLenSpecializesToList(t *testing.T) {
	spec, _ := Get("len")
	listT := types.InstanceOf(&types.List{Elem: types.InstanceOf(types.IntegerT)})
	sig, err := spec.Type([]types.Type{listT})
	if err != nil {
		t.Fatalf("specializeLen(list): %v", err)
	}
	if !sig.Ret.Equals(types.InstanceOf(types.IntegerT)) {
		t.Errorf("len should return int, got %s", sig.Ret)
	}
}

func TestLenRejectsUnsupportedType(t *testing.T) {
	spec, _ := Get("len")
	if _, err := spec.Type([]types.Type{types.InstanceOf(types.BoolT)}); err == nil {
		t.Error("expected an error for len(bool)")
	}
}

func TestAbsRecipeBuildsLambda(t *testing.T) {
	spec, _ := Get("abs")
	g := ir.NewIDGen()
	expr := spec.Recipe(g, nil)
	lam, ok := expr.(*ir.Lambda)
	if !ok {
		t.Fatalf("expected abs recipe to produce a Lambda, got %T", expr)
	}
	if lam.Param != "x" {
		t.Errorf("expected parameter x, got %s", lam.Param)
	}
}

func TestBreakpointIsNoOp(t *testing.T) {
	spec, _ := Get("breakpoint")
	g := ir.NewIDGen()
	expr := spec.Recipe(g, nil)
	lam, ok := expr.(*ir.Lambda)
	if !ok {
		t.Fatalf("expected a Lambda, got %T", expr)
	}
	c, ok := lam.Body.(*ir.Const)
	if !ok || c.Kind != ir.ConstUnit {
		t.Errorf("expected breakpoint's body to be the unit constant")
	}
}

// TestRangeRecipeEvaluatesAscending runs the built term rather than
// inspecting its shape: range(3) must produce [0, 1, 2] in that order,
// matching what the constant-folding sandbox computes for the same call.
func TestRangeRecipeEvaluatesAscending(t *testing.T) {
	spec, _ := Get("range")
	g := ir.NewIDGen()
	call := g.Apply(spec.Recipe(g, nil), g.Const(ir.ConstInteger, int64(3)))

	got, err := testutil.EvalIR(call)
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
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

// TestRangeRecipeEmptyOnZeroLimit: range(0) is the empty list, not a crash
// or a negative walk.
func TestRangeRecipeEmptyOnZeroLimit(t *testing.T) {
	spec, _ := Get("range")
	g := ir.NewIDGen()
	call := g.Apply(spec.Recipe(g, nil), g.Const(ir.ConstInteger, int64(0)))

	got, err := testutil.EvalIR(call)
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
	xs, ok := got.([]interface{})
	if !ok || len(xs) != 0 {
		t.Fatalf("expected an empty list, got %v (%T)", got, got)
	}
}

func TestInitialScopeCoversEveryName(t *testing.T) {
	scope := InitialScope()
	for _, name := range Names() {
		if _, ok := scope[name]; !ok {
			t.Errorf("InitialScope missing %s", name)
		}
	}
}
