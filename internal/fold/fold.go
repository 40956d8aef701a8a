// Package fold implements the constant-folding pass: statements whose
// target is assigned exactly once within a
// block are treated as constants, and every expression reachable from them
// — plus plain literals and calls into the pure fragment of the prelude —
// is pre-evaluated by a small sandboxed interpreter and replaced in place
// with its literal value.
//
// Evaluation is a small hand-written interpreter (eval.go) over the typed
// tree directly: the pass walks the module scope first, then one fresh
// scope per function, and evaluates candidate subtrees against a table of
// already-known constants plus a safe subset of the prelude. A subtree
// the sandbox cannot evaluate is never an error; it simply stays as
// written.
package fold

import "github.com/ImperatorLang/eopsin/internal/typedast"

// File runs the pass over an entire typed module, returning it with
// eligible subtrees replaced in place. The module's own top-level
// statements are one scope; each function body is folded as an
// independent scope nested under it.
func File(file *typedast.File) *typedast.File {
	env := &env{consts: make(map[typedast.ScopeHandle]interface{})}
	file.Stmts = foldBlock(file.Stmts, env)
	return file
}

// foldBlock folds one lexical block's statements in source order, feeding
// each newly-recognized constant into env so later statements in the same
// block (and any nested function bodies folded from within it) can use it.
func foldBlock(stmts []typedast.Stmt, parent *env) []typedast.Stmt {
	eligible := eligibleConstants(stmts)
	en := &env{consts: make(map[typedast.ScopeHandle]interface{}, len(parent.consts))}
	for h, v := range parent.consts {
		en.consts[h] = v
	}

	for _, s := range stmts {
		foldStmt(s, en, eligible)
	}
	return stmts
}

func foldStmt(s typedast.Stmt, en *env, eligible map[typedast.ScopeHandle]bool) {
	switch st := s.(type) {
	case *typedast.FunctionDef:
		// A function's own body is folded as an independent scope: it
		// inherits the enclosing block's already-known constants (a
		// validator can close over a module-level constant) but its own
		// locals never leak back out.
		st.Body = foldBlock(st.Body, en)
	case *typedast.Assign:
		st.Value = foldExpr(st.Value, en)
		if eligible[st.Handle] {
			if v, ok := eval(st.Value, en); ok {
				en.consts[st.Handle] = v
			}
		}
	case *typedast.AnnAssign:
		st.Value = foldExpr(st.Value, en)
		if eligible[st.Handle] {
			if v, ok := eval(st.Value, en); ok {
				en.consts[st.Handle] = v
			}
		}
	case *typedast.ExprStmt:
		st.X = foldExpr(st.X, en)
	case *typedast.If:
		st.Cond = foldExpr(st.Cond, en)
		// Branch bodies are folded with the parent's constants visible and
		// no eligible names of their own, so a name assigned inside a
		// conditional is never recorded as a constant, neither here nor in
		// the branch itself.
		for _, b := range st.Body {
			foldStmt(b, en, nil)
		}
		for _, b := range st.Else {
			foldStmt(b, en, nil)
		}
	case *typedast.For:
		st.Iter = foldExpr(st.Iter, en)
		for _, b := range st.Body {
			foldStmt(b, en, nil)
		}
	case *typedast.Return:
		if st.Value != nil {
			st.Value = foldExpr(st.Value, en)
		}
	case *typedast.Assert:
		st.Cond = foldExpr(st.Cond, en)
		if st.Msg != nil {
			st.Msg = foldExpr(st.Msg, en)
		}
	}
}

// foldExpr rewrites an expression's children first, then attempts to
// evaluate the (now partially-folded) node itself; a successful atomic
// evaluation replaces the whole node with a Literal. Composite results
// (lists, dicts) are used only as intermediate values — e.g. to fold
// sum([1, 2, 3]) down to 6 — never written back as a node of their own,
// since the typed tree has no constant-list/constant-dict node kind to
// hold them (only atomic constants surface in the rewritten tree).
func foldExpr(e typedast.Expr, en *env) typedast.Expr {
	switch n := e.(type) {
	case *typedast.Literal, *typedast.Name:
		// already as folded as it will ever get
	case *typedast.BinOp:
		n.Left = foldExpr(n.Left, en)
		n.Right = foldExpr(n.Right, en)
	case *typedast.UnOp:
		n.Operand = foldExpr(n.Operand, en)
	case *typedast.Compare:
		n.Left = foldExpr(n.Left, en)
		for i := range n.Comps {
			n.Comps[i] = foldExpr(n.Comps[i], en)
		}
	case *typedast.Call:
		for i := range n.ResolvedArgs {
			n.ResolvedArgs[i] = foldExpr(n.ResolvedArgs[i], en)
		}
	case *typedast.Attribute:
		n.Receiver = foldExpr(n.Receiver, en)
		// Never evaluated further: field access on a constant record isn't
		// part of this pass's accepted value domain (see eval's default
		// case).
		return n
	case *typedast.Subscript:
		n.Receiver = foldExpr(n.Receiver, en)
		n.Index = foldExpr(n.Index, en)
	case *typedast.ListExpr:
		for i := range n.Elems {
			n.Elems[i] = foldExpr(n.Elems[i], en)
		}
	case *typedast.DictExpr:
		for _, entry := range n.Entries {
			entry.Key = foldExpr(entry.Key, en)
			entry.Value = foldExpr(entry.Value, en)
		}
	case *typedast.IfExp:
		n.Cond = foldExpr(n.Cond, en)
		n.Then = foldExpr(n.Then, en)
		n.Else = foldExpr(n.Else, en)
	case *typedast.RecordExpr:
		for i := range n.Fields {
			n.Fields[i] = foldExpr(n.Fields[i], en)
		}
		return n
	case *typedast.IsInstanceExpr:
		n.Value = foldExpr(n.Value, en)
		return n
	}

	v, ok := eval(e, en)
	if !ok {
		return e
	}
	lit, ok := asLiteral(e, v)
	if !ok {
		return e
	}
	return lit
}

// asLiteral converts an evaluated constant back into a typed Literal node,
// refusing any composite (list/dict) value — the rewritten tree only ever
// gains atomic Literal nodes, never a literal list or dict (see foldExpr).
func asLiteral(e typedast.Expr, v interface{}) (*typedast.Literal, bool) {
	switch v.(type) {
	case int64, []byte, string, bool, nil:
		return typedast.NewLiteral(e.Position(), e.Type(), v), true
	default:
		return nil, false
	}
}
