package infer

import (
	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/builtins"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// ValidatorName is the function name the compiler treats as the script's
// entry point. Only its own signature is special-cased (it may not
// declare a default for any parameter, SIG007); it is otherwise an
// ordinary function as far as this pass is concerned.
const ValidatorName = "validator"

// inferer carries the mutable state of a single compilation: the live
// scope stack and the two tables built by the signature pre-pass (class
// shapes and function signatures), consulted by both passes while
// visiting statements in file order.
type inferer struct {
	scope      *scopeStack
	classes    map[string]types.Type // class name -> bare Record/Sum/PolicyId-alias
	funcs      []map[string]*funcSignature
	returnType types.Type // the enclosing function's declared return type, nil at module scope
}

// pushFuncFrame enters a new function-signature scope in lockstep with a
// scope.push() for a function body, so a nested `def` with the same name
// as an outer one shadows it for lookups inside that body instead of
// colliding in one flat table.
func (inf *inferer) pushFuncFrame() {
	inf.funcs = append(inf.funcs, make(map[string]*funcSignature))
}

func (inf *inferer) popFuncFrame() {
	inf.funcs = inf.funcs[:len(inf.funcs)-1]
}

func (inf *inferer) defineFunc(name string, sig *funcSignature) {
	inf.funcs[len(inf.funcs)-1][name] = sig
}

// lookupFunc walks the function-signature frames innermost-first, matching
// scopeStack.resolve's own search order.
func (inf *inferer) lookupFunc(name string) (*funcSignature, bool) {
	for i := len(inf.funcs) - 1; i >= 0; i-- {
		if sig, ok := inf.funcs[i][name]; ok {
			return sig, true
		}
	}
	return nil, false
}

type funcSignature struct {
	fn     *types.Function
	shape  paramShape
	handle typedast.ScopeHandle
}

// Infer runs the full pass over a parsed module, producing its typed
// mirror or the first diagnostic encountered, with every registered
// domain class available.
func Infer(file *ast.File) (*typedast.File, error) {
	return InferWithDomainFilter(file, nil)
}

// InferWithDomainFilter is Infer narrowed to the domain classes allow
// accepts (config.Compiler.AllowsClass has the matching signature), for a caller that wants
// a project pinned to a specific subset of internal/builtins' catalog
// instead of the full registry. A nil allow behaves exactly like Infer.
func InferWithDomainFilter(file *ast.File, allow func(name string) bool) (*typedast.File, error) {
	inf := &inferer{
		scope:   newScopeStack(),
		classes: make(map[string]types.Type),
	}
	inf.scope.push() // the module frame, FrameIndex 0
	inf.pushFuncFrame()

	for name, typ := range builtins.DomainClasses() {
		if allow != nil && !allow(name) {
			continue
		}
		inf.classes[name] = typ
	}
	for name, typ := range builtins.InitialScope() {
		inf.scope.define(name, typ)
	}

	return inf.inferFile(file)
}

func (inf *inferer) inferFile(file *ast.File) (*typedast.File, error) {
	if err := inf.registerSignatures(file.Stmts); err != nil {
		return nil, err
	}

	typedStmts, err := inf.inferStmts(file.Stmts)
	if err != nil {
		return nil, err
	}
	return &typedast.File{Name: file.Name, Stmts: typedStmts, Pos: file.Pos}, nil
}

// registerSignatures is the signature pre-pass: it registers every class
// and function shape declared directly in stmts before any body in that
// same block is type-checked, so later statements (and a function's own
// recursive calls) can refer to them regardless of where in the block they
// are defined relative to their use — except a class must still precede
// any function whose signature names it.
//
// Called once for the module's top-level statements and again for every
// function body (inferFunctionBody), so a nested `def` gets the same
// treatment as a top-level one instead of being visited with no signature
// registered at all.
func (inf *inferer) registerSignatures(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ClassDef:
			if err := inf.registerClassDef(s); err != nil {
				return err
			}
		case *ast.FunctionDef:
			sig, shape, err := inf.signatureOf(s)
			if err != nil {
				return err
			}
			handle := inf.scope.define(s.Name, types.InstanceOf(sig))
			inf.defineFunc(s.Name, &funcSignature{fn: sig, shape: shape, handle: handle})
		}
	}
	return nil
}

func (inf *inferer) registerClassDef(c *ast.ClassDef) error {
	if len(c.Variants) > 0 {
		variants := make([]*types.Record, 0, len(c.Variants))
		for _, name := range c.Variants {
			typ, ok := inf.classes[name]
			if !ok {
				return errors.Newf("Node visiting", errors.NAM001, c, "undefined class in variant list: %s", name)
			}
			rec, ok := typ.(*types.Record)
			if !ok {
				return errors.Newf("Node visiting", errors.TYP002, c, "%s is not a record type and cannot be a sum variant", name)
			}
			variants = append(variants, rec)
		}
		inf.classes[c.Name] = &types.Sum{TypeName: c.Name, Variants: variants}
		return nil
	}

	fields := make([]types.Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		typ, err := inf.resolveTypeExpr(f.Type)
		if err != nil {
			return err
		}
		fields = append(fields, types.Field{Name: f.Name, Type: types.InstanceOf(typ)})
	}
	inf.classes[c.Name] = &types.Record{TypeName: c.Name, Tag: len(inf.classes), Fields: fields}
	return nil
}

// signatureOf resolves a function's parameter and return types without
// visiting its body, and enforces SIG007 (the validator may not declare
// defaults).
func (inf *inferer) signatureOf(f *ast.FunctionDef) (*types.Function, paramShape, error) {
	argTypes := make([]types.Type, len(f.Params))
	shape := paramShape{names: make([]string, len(f.Params)), defaults: make([]typedast.Expr, len(f.Params))}

	for i, p := range f.Params {
		ptyp, err := inf.resolveTypeExpr(p.Type)
		if err != nil {
			return nil, paramShape{}, err
		}
		argTypes[i] = types.InstanceOf(ptyp)
		shape.names[i] = p.Name

		if p.Default != nil {
			if f.Name == ValidatorName {
				return nil, paramShape{}, errors.Newf("Node visiting", errors.SIG007, p.Default,
					"validator parameter %s may not declare a default", p.Name)
			}
			defExpr, err := inf.inferExpr(p.Default)
			if err != nil {
				return nil, paramShape{}, err
			}
			if !types.Compatible(argTypes[i], defExpr.Type()) {
				return nil, paramShape{}, errors.Newf("Node visiting", errors.SIG006, p.Default,
					"default value for %s has type %s, want %s", p.Name, defExpr.Type(), argTypes[i])
			}
			shape.defaults[i] = defExpr
		}
	}

	retType, err := inf.resolveTypeExpr(f.ReturnType)
	if err != nil {
		return nil, paramShape{}, err
	}

	return types.FunctionType(argTypes, types.InstanceOf(retType)), shape, nil
}

// inferStmts visits a statement block in order, pushing no new frame of
// its own — callers that need a fresh scope (function bodies) push one
// before calling this.
func (inf *inferer) inferStmts(stmts []ast.Stmt) ([]typedast.Stmt, error) {
	out := make([]typedast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		typed, err := inf.inferStmt(s)
		if err != nil {
			return nil, err
		}
		if typed != nil {
			out = append(out, typed)
		}
	}
	return out, nil
}

func (inf *inferer) inferStmt(stmt ast.Stmt) (typedast.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		return inf.inferFunctionBody(s)
	case *ast.ClassDef:
		rec, _ := inf.classes[s.Name].(*types.Record)
		return &typedast.ClassDef{Name: s.Name, Record: rec, Pos: s.Pos}, nil
	case *ast.Assign:
		value, err := inf.inferExpr(s.Value)
		if err != nil {
			return nil, err
		}
		handle := inf.scope.define(s.Target, value.Type())
		return &typedast.Assign{Target: s.Target, Value: value, Handle: handle, Pos: s.Pos}, nil
	case *ast.AnnAssign:
		declared, err := inf.resolveTypeExpr(s.Type)
		if err != nil {
			return nil, err
		}
		value, err := inf.inferExpr(s.Value)
		if err != nil {
			return nil, err
		}
		declaredInst := types.InstanceOf(declared)
		if !types.Compatible(declaredInst, value.Type()) {
			return nil, errors.Newf("Node visiting", errors.TYP002, s, "%s declared as %s but assigned %s", s.Target, declaredInst, value.Type())
		}
		handle := inf.scope.define(s.Target, declaredInst)
		return &typedast.AnnAssign{Target: s.Target, Type: declaredInst, Value: value, Handle: handle, Pos: s.Pos}, nil
	case *ast.ExprStmt:
		x, err := inf.inferExpr(s.X)
		if err != nil {
			return nil, err
		}
		return &typedast.ExprStmt{X: x, Pos: s.Pos}, nil
	case *ast.If:
		return inf.inferIf(s)
	case *ast.For:
		return inf.inferFor(s)
	case *ast.Return:
		return inf.inferReturn(s)
	case *ast.Assert:
		return inf.inferAssert(s)
	case *ast.Import:
		// Prelude names are already seeded into the module frame by
		// Infer; an Import statement has nothing left to do at this
		// pass (code generation treats it as a no-op too).
		return &typedast.Import{Module: s.Module, Names: s.Names, Pos: s.Pos}, nil
	default:
		return nil, errors.Newf("Node visiting", errors.SHP001, stmt, "unsupported statement kind %T", stmt)
	}
}

func (inf *inferer) inferFunctionBody(f *ast.FunctionDef) (*typedast.FunctionDef, error) {
	sig, ok := inf.lookupFunc(f.Name)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.NAM002, f, "function %s visited before its signature was registered", f.Name)
	}

	inf.scope.push()
	defer inf.scope.pop()
	inf.pushFuncFrame()
	defer inf.popFuncFrame()

	params := make([]*typedast.Param, len(f.Params))
	for i, p := range f.Params {
		handle := inf.scope.define(p.Name, sig.fn.Args[i])
		params[i] = &typedast.Param{
			Name:    p.Name,
			Type:    sig.fn.Args[i],
			Default: sig.shape.defaults[i],
			Handle:  handle,
			Pos:     p.Pos,
		}
	}

	// Register any function nested directly in this body before visiting
	// statements, the same pre-pass inferFile runs at module scope, so a
	// nested def's own recursive or forward calls resolve correctly and a
	// use of it earlier in the body doesn't dereference a nil signature.
	if err := inf.registerSignatures(f.Body); err != nil {
		return nil, err
	}

	savedReturn := inf.returnType
	inf.returnType = sig.fn.Ret
	body, err := inf.inferStmts(f.Body)
	inf.returnType = savedReturn
	if err != nil {
		return nil, err
	}

	return &typedast.FunctionDef{
		Name:       f.Name,
		Params:     params,
		ReturnType: sig.fn.Ret,
		Body:       body,
		Handle:     sig.handle,
		Pos:        f.Pos,
	}, nil
}

func (inf *inferer) inferReturn(r *ast.Return) (*typedast.Return, error) {
	if r.Value == nil {
		if !inf.returnType.Equals(types.InstanceOf(types.UnitT)) {
			return nil, errors.Newf("Node visiting", errors.TYP004, r, "bare return is only valid for a None-returning function, got %s", inf.returnType)
		}
		return &typedast.Return{Value: nil, Pos: r.Pos}, nil
	}
	value, err := inf.inferExpr(r.Value)
	if err != nil {
		return nil, err
	}
	if !types.Compatible(inf.returnType, value.Type()) {
		return nil, errors.Newf("Node visiting", errors.TYP004, r, "return type %s incompatible with declared %s", value.Type(), inf.returnType)
	}
	return &typedast.Return{Value: value, Pos: r.Pos}, nil
}

func (inf *inferer) inferAssert(a *ast.Assert) (*typedast.Assert, error) {
	cond, err := inf.inferExpr(a.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.Type().Equals(types.InstanceOf(types.BoolT)) {
		return nil, errors.Newf("Node visiting", errors.TYP003, a, "assert condition must be bool, got %s", cond.Type())
	}
	var msg typedast.Expr
	if a.Msg != nil {
		msg, err = inf.inferExpr(a.Msg)
		if err != nil {
			return nil, err
		}
		if !msg.Type().Equals(types.InstanceOf(types.StringT)) {
			return nil, errors.Newf("Node visiting", errors.TYP003, a, "assert message must be str, got %s", msg.Type())
		}
	}
	return &typedast.Assert{Cond: cond, Msg: msg, Pos: a.Pos}, nil
}

func (inf *inferer) inferFor(f *ast.For) (*typedast.For, error) {
	iter, err := inf.inferExpr(f.Iter)
	if err != nil {
		return nil, err
	}
	list, ok := types.AsInstance(iter.Type())
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP002, f, "for loop requires a list, got %s", iter.Type())
	}
	listT, ok := list.(*types.List)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP002, f, "for loop requires a list, got %s", iter.Type())
	}

	handle := inf.scope.define(f.Target, listT.Elem)
	body, err := inf.inferStmts(f.Body)
	if err != nil {
		return nil, err
	}
	return &typedast.For{
		Target:     f.Target,
		TargetType: listT.Elem,
		Iter:       iter,
		Body:       body,
		Handle:     handle,
		Pos:        f.Pos,
	}, nil
}

func (inf *inferer) inferIf(s *ast.If) (*typedast.If, error) {
	cond, err := inf.inferExpr(s.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.Type().Equals(types.InstanceOf(types.BoolT)) {
		return nil, errors.Newf("Node visiting", errors.TYP003, s, "if condition must be bool, got %s", cond.Type())
	}

	narrowedName, narrowedType, hadNarrowing := narrowingFromCond(cond)
	var savedSlot int
	var savedType types.Type
	var frameIdx int
	if hadNarrowing {
		handle, typ, ok := inf.scope.resolve(narrowedName)
		if ok {
			frameIdx, savedSlot, savedType = handle.FrameIndex, handle.Slot, typ
			inf.scope.frames[frameIdx].types[savedSlot] = narrowedType
		} else {
			hadNarrowing = false
		}
	}

	body, err := inf.inferStmts(s.Body)

	if hadNarrowing {
		inf.scope.frames[frameIdx].types[savedSlot] = savedType
	}
	if err != nil {
		return nil, err
	}

	elseBody, err := inf.inferStmts(s.Else)
	if err != nil {
		return nil, err
	}

	return &typedast.If{Cond: cond, Body: body, Else: elseBody, Pos: s.Pos}, nil
}

// narrowingFromCond recognizes `isinstance(name, Variant)` as an if
// condition and reports the name/type it narrows for the duration of the
// "then" branch — the accepted subset relies on this in every validator
// that branches on a ScriptPurpose, so this pass tracks it rather than
// require the source to re-declare a variable per branch.
func narrowingFromCond(cond typedast.Expr) (name string, narrowed types.Type, ok bool) {
	isInst, ok := cond.(*typedast.IsInstanceExpr)
	if !ok {
		return "", nil, false
	}
	n, ok := isInst.Value.(*typedast.Name)
	if !ok {
		return "", nil, false
	}
	return n.Ident, types.InstanceOf(isInst.Variant), true
}
