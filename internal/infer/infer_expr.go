package infer

import (
	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/builtins"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

func (inf *inferer) inferExpr(e ast.Expr) (typedast.Expr, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return inf.inferLiteral(n)
	case *ast.Name:
		return inf.inferName(n)
	case *ast.BinOp:
		return inf.inferBinOp(n)
	case *ast.UnOp:
		return inf.inferUnOp(n)
	case *ast.Compare:
		return inf.inferCompare(n)
	case *ast.Call:
		return inf.inferCall(n)
	case *ast.Attribute:
		return inf.inferAttribute(n)
	case *ast.Subscript:
		return inf.inferSubscript(n)
	case *ast.ListExpr:
		return inf.inferListExpr(n)
	case *ast.DictExpr:
		return inf.inferDictExpr(n)
	case *ast.IfExp:
		return inf.inferIfExp(n)
	default:
		return nil, errors.Newf("Node visiting", errors.SHP002, e, "unsupported expression kind %T", e)
	}
}

func (inf *inferer) inferLiteral(l *ast.Literal) (*typedast.Literal, error) {
	typ, err := types.TypeOfLiteral(l.Value)
	if err != nil {
		return nil, errors.Wrap("Node visiting", l, err)
	}
	return typedast.NewLiteral(l.Pos, typ, l.Value), nil
}

func (inf *inferer) inferName(n *ast.Name) (*typedast.Name, error) {
	handle, typ, ok := inf.scope.resolve(n.Ident)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.NAM001, n, "undefined name: %s", n.Ident)
	}
	return typedast.NewName(n.Pos, typ, n.Ident, handle), nil
}

func (inf *inferer) inferBinOp(b *ast.BinOp) (*typedast.BinOp, error) {
	left, err := inf.inferExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := inf.inferExpr(b.Right)
	if err != nil {
		return nil, err
	}
	lt, ok := types.AsInstance(left.Type())
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP001, b, "operand is a class reference, not a value")
	}
	rt, ok := types.AsInstance(right.Type())
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP001, b, "operand is a class reference, not a value")
	}
	result, _, err := builtins.LookupBinOp(b.Op, lt, rt)
	if err != nil {
		return nil, errors.Wrap("Node visiting", b, err)
	}
	return typedast.NewBinOp(b.Pos, types.InstanceOf(result), b.Op, left, right), nil
}

func (inf *inferer) inferUnOp(u *ast.UnOp) (*typedast.UnOp, error) {
	operand, err := inf.inferExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	ot, ok := types.AsInstance(operand.Type())
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP001, u, "operand is a class reference, not a value")
	}
	result, _, err := builtins.LookupUnOp(u.Op, ot)
	if err != nil {
		return nil, errors.Wrap("Node visiting", u, err)
	}
	return typedast.NewUnOp(u.Pos, types.InstanceOf(result), u.Op, operand), nil
}

func (inf *inferer) inferCompare(c *ast.Compare) (*typedast.Compare, error) {
	left, err := inf.inferExpr(c.Left)
	if err != nil {
		return nil, err
	}
	comps := make([]typedast.Expr, len(c.Comps))
	prev := left
	for i, comp := range c.Comps {
		typed, err := inf.inferExpr(comp)
		if err != nil {
			return nil, err
		}
		comps[i] = typed
		lt, ok1 := types.AsInstance(prev.Type())
		rt, ok2 := types.AsInstance(typed.Type())
		if !ok1 || !ok2 {
			return nil, errors.Newf("Node visiting", errors.TYP001, c, "comparison operand is a class reference, not a value")
		}
		result, _, err := builtins.LookupBinOp(c.Ops[i], lt, rt)
		if err != nil {
			return nil, errors.Wrap("Node visiting", c, err)
		}
		if !result.Equals(types.BoolT) {
			return nil, errors.Newf("Node visiting", errors.TYP001, c, "comparison operator %s does not yield bool", c.Ops[i])
		}
		prev = typed
	}
	return typedast.NewCompare(c.Pos, types.InstanceOf(types.BoolT), left, c.Ops, comps), nil
}

func (inf *inferer) inferIfExp(i *ast.IfExp) (*typedast.IfExp, error) {
	cond, err := inf.inferExpr(i.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.Type().Equals(types.InstanceOf(types.BoolT)) {
		return nil, errors.Newf("Node visiting", errors.TYP003, i, "conditional expression condition must be bool, got %s", cond.Type())
	}
	then, err := inf.inferExpr(i.Then)
	if err != nil {
		return nil, err
	}
	els, err := inf.inferExpr(i.Else)
	if err != nil {
		return nil, err
	}
	if !types.Compatible(then.Type(), els.Type()) {
		return nil, errors.Newf("Node visiting", errors.TYP003, i, "conditional expression branches disagree: %s vs %s", then.Type(), els.Type())
	}
	return typedast.NewIfExp(i.Pos, then.Type(), cond, then, els), nil
}

func (inf *inferer) inferListExpr(l *ast.ListExpr) (*typedast.ListExpr, error) {
	elems := make([]typedast.Expr, len(l.Elems))
	var elemType types.Type
	for i, e := range l.Elems {
		typed, err := inf.inferExpr(e)
		if err != nil {
			return nil, err
		}
		elems[i] = typed
		if i == 0 {
			elemType = typed.Type()
		} else if !elemType.Equals(typed.Type()) {
			return nil, errors.Newf("Node visiting", errors.TYP001, l, "list elements must share one type: %s vs %s", elemType, typed.Type())
		}
	}
	if elemType == nil {
		return nil, errors.New("Node visiting", errors.SHP002, l, "an empty list literal has no element type to infer; annotate it instead")
	}
	return typedast.NewListExpr(l.Pos, types.InstanceOf(&types.List{Elem: elemType}), elems), nil
}

func (inf *inferer) inferDictExpr(d *ast.DictExpr) (*typedast.DictExpr, error) {
	entries := make([]*typedast.DictEntry, len(d.Entries))
	var keyType, valType types.Type
	for i, e := range d.Entries {
		key, err := inf.inferExpr(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := inf.inferExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			keyType, valType = key.Type(), val.Type()
		} else if !keyType.Equals(key.Type()) || !valType.Equals(val.Type()) {
			return nil, errors.New("Node visiting", errors.TYP001, d, "dict entries must share one key type and one value type")
		}
		entries[i] = &typedast.DictEntry{Key: key, Value: val}
	}
	if keyType == nil {
		return nil, errors.New("Node visiting", errors.SHP002, d, "an empty dict literal has no element type to infer; annotate it instead")
	}
	return typedast.NewDictExpr(d.Pos, types.InstanceOf(&types.Map{Key: keyType, Val: valType}), entries), nil
}

func (inf *inferer) inferSubscript(s *ast.Subscript) (*typedast.Subscript, error) {
	recv, err := inf.inferExpr(s.Receiver)
	if err != nil {
		return nil, err
	}
	recvT, ok := types.AsInstance(recv.Type())
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP002, s, "cannot index a class reference")
	}
	index, err := inf.inferExpr(s.Index)
	if err != nil {
		return nil, err
	}
	switch container := recvT.(type) {
	case *types.List:
		if !index.Type().Equals(types.InstanceOf(types.IntegerT)) {
			return nil, errors.Newf("Node visiting", errors.TYP002, s, "list index must be int, got %s", index.Type())
		}
		return typedast.NewSubscript(s.Pos, container.Elem, recv, index), nil
	case *types.Map:
		if !index.Type().Equals(container.Key) {
			return nil, errors.Newf("Node visiting", errors.TYP002, s, "dict key type mismatch: got %s, want %s", index.Type(), container.Key)
		}
		return typedast.NewSubscript(s.Pos, container.Val, recv, index), nil
	default:
		return nil, errors.Newf("Node visiting", errors.TYP002, s, "%s is not subscriptable", recvT)
	}
}

func (inf *inferer) inferAttribute(a *ast.Attribute) (*typedast.Attribute, error) {
	recv, err := inf.inferExpr(a.Receiver)
	if err != nil {
		return nil, err
	}
	recvT, ok := types.AsInstance(recv.Type())
	if !ok {
		return nil, errors.New("Node visiting", errors.TYP005, a, "cannot access a field on a class reference")
	}
	rec, ok := recvT.(*types.Record)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP005, a, "%s has no fields; attribute access requires a record", recvT)
	}
	idx, ok := rec.FieldIndex(a.Attr)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.TYP005, a, "%s has no field %s", rec.TypeName, a.Attr)
	}
	return typedast.NewAttribute(a.Pos, rec.Fields[idx].Type, recv, a.Attr, idx), nil
}

// inferCall handles the three shapes a call can take: the `isinstance`
// special form, a record class applied to its field values, and an
// ordinary call to a prelude or user-defined function.
func (inf *inferer) inferCall(c *ast.Call) (typedast.Expr, error) {
	name, ok := c.Func.(*ast.Name)
	if !ok {
		return nil, errors.New("Node visiting", errors.SHP002, c, "only a bare name may be called; method-style calls are not supported")
	}

	if name.Ident == "isinstance" {
		return inf.inferIsInstance(c)
	}

	if classType, ok := inf.classes[name.Ident]; ok {
		rec, ok := classType.(*types.Record)
		if !ok {
			return nil, errors.Newf("Node visiting", errors.SHP002, c, "%s is not constructible", name.Ident)
		}
		return inf.inferRecordConstruction(c, rec)
	}

	posArgs, kwNames, kwArgs, err := inf.inferCallArgs(c)
	if err != nil {
		return nil, err
	}

	if builtins.IsBuiltin(name.Ident) {
		return inf.inferBuiltinCall(c, name, posArgs, kwNames, kwArgs)
	}

	sig, ok := inf.lookupFunc(name.Ident)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.NAM001, c, "undefined function: %s", name.Ident)
	}
	handle, typ, _ := inf.scope.resolve(name.Ident)
	fnExpr := typedast.NewName(name.Pos, typ, name.Ident, handle)

	resolved, err := resolveArguments("Node visiting", c, sig.shape, posArgs, kwNames, kwArgs)
	if err != nil {
		return nil, err
	}
	for i, arg := range resolved {
		if !types.Compatible(sig.fn.Args[i], arg.Type()) {
			return nil, errors.Newf("Node visiting", errors.TYP002, c, "argument %d to %s: got %s, want %s", i, name.Ident, arg.Type(), sig.fn.Args[i])
		}
	}
	return typedast.NewCall(c.Pos, sig.fn.Ret, fnExpr, resolved), nil
}

// inferCallArgs splits a call's source-ordered argument list into its
// positional and keyword parts, enforcing the ordering rule: once a keyword
// argument has appeared, no further positional argument may follow it.
func (inf *inferer) inferCallArgs(c *ast.Call) (posArgs []typedast.Expr, kwNames []string, kwArgs []typedast.Expr, err error) {
	seenKeyword := false
	for _, a := range c.Args {
		typed, err := inf.inferExpr(a.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		if a.Name == "" {
			if seenKeyword {
				return nil, nil, nil, errors.New("Node visiting", errors.SIG002, c,
					"positional argument may not follow a keyword argument")
			}
			posArgs = append(posArgs, typed)
			continue
		}
		seenKeyword = true
		kwNames = append(kwNames, a.Name)
		kwArgs = append(kwArgs, typed)
	}
	return posArgs, kwNames, kwArgs, nil
}

func (inf *inferer) inferIsInstance(c *ast.Call) (*typedast.IsInstanceExpr, error) {
	if len(c.Args) != 2 || c.Args[0].Name != "" || c.Args[1].Name != "" {
		return nil, errors.New("Node visiting", errors.SIG001, c, "isinstance takes exactly two positional arguments")
	}
	value, err := inf.inferExpr(c.Args[0].Value)
	if err != nil {
		return nil, err
	}
	className, ok := c.Args[1].Value.(*ast.Name)
	if !ok {
		return nil, errors.New("Node visiting", errors.SHP002, c, "isinstance's second argument must be a class name")
	}
	classType, ok := inf.classes[className.Ident]
	if !ok {
		return nil, errors.Newf("Node visiting", errors.NAM001, c, "undefined class: %s", className.Ident)
	}
	variant, ok := classType.(*types.Record)
	if !ok {
		return nil, errors.Newf("Node visiting", errors.SHP002, c, "%s is not a record type", className.Ident)
	}
	return typedast.NewIsInstanceExpr(c.Pos, types.InstanceOf(types.BoolT), value, variant), nil
}

func (inf *inferer) inferRecordConstruction(c *ast.Call, rec *types.Record) (*typedast.RecordExpr, error) {
	posArgs, kwNames, kwArgs, err := inf.inferCallArgs(c)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		names[i] = f.Name
	}
	shape := paramShape{names: names, defaults: make([]typedast.Expr, len(names))}
	resolved, err := resolveArguments("Node visiting", c, shape, posArgs, kwNames, kwArgs)
	if err != nil {
		return nil, err
	}
	for i, arg := range resolved {
		if !types.Compatible(rec.Fields[i].Type, arg.Type()) {
			return nil, errors.Newf("Node visiting", errors.TYP002, c, "field %s of %s: got %s, want %s", rec.Fields[i].Name, rec.TypeName, arg.Type(), rec.Fields[i].Type)
		}
	}
	return typedast.NewRecordExpr(c.Pos, types.InstanceOf(rec), rec, resolved), nil
}

func (inf *inferer) inferBuiltinCall(c *ast.Call, name *ast.Name, posArgs []typedast.Expr, kwNames []string, kwArgs []typedast.Expr) (*typedast.Call, error) {
	spec, _ := builtins.Get(name.Ident)

	var argTypes []types.Type
	for _, a := range posArgs {
		argTypes = append(argTypes, a.Type())
	}
	sig, err := spec.Type(argTypes)
	if err != nil {
		return nil, errors.Wrap("Node visiting", c, err)
	}

	shapeNames := make([]string, len(sig.Args))
	for i := range shapeNames {
		shapeNames[i] = ""
	}
	shape := paramShape{names: shapeNames, defaults: make([]typedast.Expr, len(shapeNames))}
	resolved, err := resolveArguments("Node visiting", c, shape, posArgs, kwNames, kwArgs)
	if err != nil {
		return nil, err
	}
	for i, arg := range resolved {
		if !types.Compatible(sig.Args[i], arg.Type()) {
			return nil, errors.Newf("Node visiting", errors.TYP002, c, "argument %d to %s: got %s, want %s", i, name.Ident, arg.Type(), sig.Args[i])
		}
	}
	fnExpr := typedast.NewName(name.Pos, types.InstanceOf(sig), name.Ident, typedast.ScopeHandle{})
	return typedast.NewCall(c.Pos, sig.Ret, fnExpr, resolved), nil
}
