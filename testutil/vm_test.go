package testutil

import (
	"testing"

	"github.com/ImperatorLang/eopsin/internal/ir"
)

func TestEvalIRAppliesClosures(t *testing.T) {
	g := ir.NewIDGen()
	identity := g.Lambda("x", g.Var("x"))
	got, err := EvalIR(g.Apply(identity, g.Const(ir.ConstInteger, int64(42))))
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
	if got != int64(42) {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestEvalIRForcesDelayedBranch(t *testing.T) {
	g := ir.NewIDGen()
	// force (IfThenElse false (delay 1) (delay 2))
	term := g.Force(g.ApplyN(g.BuiltIn("IfThenElse"),
		g.Const(ir.ConstBool, false),
		g.Delay(g.Const(ir.ConstInteger, int64(1))),
		g.Delay(g.Const(ir.ConstInteger, int64(2)))))
	got, err := EvalIR(term)
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
	if got != int64(2) {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestEvalIRBuildsLists(t *testing.T) {
	g := ir.NewIDGen()
	term := g.ApplyN(g.BuiltIn("MkCons"),
		g.Const(ir.ConstInteger, int64(1)),
		g.ApplyN(g.BuiltIn("MkCons"),
			g.Const(ir.ConstInteger, int64(2)),
			g.Const(ir.ConstList, []ir.Expr{})))
	got, err := EvalIR(term)
	if err != nil {
		t.Fatalf("EvalIR: %v", err)
	}
	xs, ok := got.([]interface{})
	if !ok || len(xs) != 2 || xs[0] != int64(1) || xs[1] != int64(2) {
		t.Fatalf("expected [1 2], got %v", got)
	}
}

func TestEvalIRRejectsUnmodeledBuiltin(t *testing.T) {
	g := ir.NewIDGen()
	if _, err := EvalIR(g.BuiltIn("VerifySignature")); err == nil {
		t.Error("expected an error for an unmodeled builtin")
	}
}

func TestEvalIRReportsErrorPrimitive(t *testing.T) {
	g := ir.NewIDGen()
	term := g.ApplyN(g.BuiltIn("Trace"), g.Const(ir.ConstString, "boom"), g.BuiltIn("Error"))
	if _, err := EvalIR(term); err == nil {
		t.Error("expected evaluation to abort on the Error primitive")
	}
}
