// Package typedast defines the typed variant of the source tree: a
// structural mirror of internal/ast in which every expression node carries
// a resolved internal/types.Type and every name occurrence carries a scope
// handle resolving which binding it refers to. It is a
// closed, tagged sum rather than the source-pattern of attaching a
// mutable type field to the untyped node — this lets code-gen switch
// exhaustively over node kinds.
//
// A typed tree is produced once, by internal/infer, and is thereafter
// mutated only by in-place replacement of subtrees during constant
// folding (internal/fold).
package typedast

import (
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// ScopeHandle resolves a name occurrence to the frame that bound it and
// its slot within that frame, without the node pointing back at a mutable
// scope object.
type ScopeHandle struct {
	FrameIndex int
	Slot       int
}

// Node is the base interface every typed tree element satisfies.
type Node interface {
	Position() ast.Pos
}

// Stmt is a typed statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a typed expression; every one carries a fully resolved,
// InstanceOf(_) type.
type Expr interface {
	Node
	Type() types.Type
	exprNode()
}

// base is embedded by every typed expression node.
type base struct {
	Pos Pos
	Typ types.Type
}

// Pos is a re-export convenience; typed nodes carry the same source
// position the untyped node did, so folding can preserve provenance.
type Pos = ast.Pos

func (b base) Position() Pos    { return b.Pos }
func (b base) Type() types.Type { return b.Typ }

// File is the root of a typed module.
type File struct {
	Name  string
	Stmts []Stmt
	Pos   Pos
}

func (f *File) Position() Pos { return f.Pos }

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Param is a formal parameter after inference: its declared type and,
// if present, its type-checked default value expression.
type Param struct {
	Name    string
	Type    types.Type
	Default Expr // nil if none was declared
	Handle  ScopeHandle
	Pos     Pos
}

// FunctionDef is a typed function (or the validator, identified by name
// at the module scope).
type FunctionDef struct {
	Name       string
	Params     []*Param
	ReturnType types.Type
	Body       []Stmt
	Handle     ScopeHandle // the function's own binding, for recursive calls
	Pos        Pos
}

func (f *FunctionDef) Position() Pos { return f.Pos }
func (f *FunctionDef) stmtNode()     {}

// ClassDef records a record/sum declaration. It carries no executable
// content of its own — declaring a class only populates the scope with a
// type and a constructor function — but is kept in the tree for
// diagnostics and for source-fidelity tooling.
type ClassDef struct {
	Name   string
	Record *types.Record
	Pos    Pos
}

func (c *ClassDef) Position() Pos { return c.Pos }
func (c *ClassDef) stmtNode()     {}

// Assign is `name = value` once value has been type-checked.
type Assign struct {
	Target string
	Value  Expr
	Handle ScopeHandle
	Pos    Pos
}

func (a *Assign) Position() Pos { return a.Pos }
func (a *Assign) stmtNode()     {}

// AnnAssign is `name: Type = value` once both sides have been checked for
// compatibility.
type AnnAssign struct {
	Target string
	Type   types.Type
	Value  Expr
	Handle ScopeHandle
	Pos    Pos
}

func (a *AnnAssign) Position() Pos { return a.Pos }
func (a *AnnAssign) stmtNode()     {}

// ExprStmt wraps an expression evaluated for effect.
type ExprStmt struct {
	X   Expr
	Pos Pos
}

func (e *ExprStmt) Position() Pos { return e.Pos }
func (e *ExprStmt) stmtNode()     {}

// If is a typed if/elif/else statement.
type If struct {
	Cond Expr
	Body []Stmt
	Else []Stmt
	Pos  Pos
}

func (i *If) Position() Pos { return i.Pos }
func (i *If) stmtNode()     {}

// For is a typed `for x in xs: body` loop.
type For struct {
	Target     string
	TargetType types.Type
	Iter       Expr
	Body       []Stmt
	Handle     ScopeHandle
	Pos        Pos
}

func (f *For) Position() Pos { return f.Pos }
func (f *For) stmtNode()     {}

// Return is a typed `return expr`.
type Return struct {
	Value Expr
	Pos   Pos
}

func (r *Return) Position() Pos { return r.Pos }
func (r *Return) stmtNode()     {}

// Assert is a typed `assert cond, msg`.
type Assert struct {
	Cond Expr
	Msg  Expr // nil if omitted
	Pos  Pos
}

func (a *Assert) Position() Pos { return a.Pos }
func (a *Assert) stmtNode()     {}

// Import records a prelude import; by the time inference finishes, its
// names are already bound into scope, so code-gen treats it as a no-op.
type Import struct {
	Module string
	Names  []string
	Pos    Pos
}

func (im *Import) Position() Pos { return im.Pos }
func (im *Import) stmtNode()     {}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Literal is a typed atomic constant.
type Literal struct {
	base
	Value interface{}
}

func (l *Literal) exprNode() {}
func (l *Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// NewLiteral constructs a Literal, the one node kind whose Type is always
// already InstanceOf(_) by construction.
func NewLiteral(pos Pos, typ types.Type, value interface{}) *Literal {
	return &Literal{base{pos, typ}, value}
}

// Name is a resolved identifier reference.
type Name struct {
	base
	Ident  string
	Handle ScopeHandle
}

func (n *Name) exprNode() {}

// NewName constructs a resolved Name.
func NewName(pos Pos, typ types.Type, ident string, handle ScopeHandle) *Name {
	return &Name{base{pos, typ}, ident, handle}
}

// BinOp is a typed binary operation; the resolved type is whatever the
// matching built-in recipe returns for (op, operand types).
type BinOp struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinOp) exprNode() {}

// NewBinOp constructs a typed BinOp.
func NewBinOp(pos Pos, typ types.Type, op string, left, right Expr) *BinOp {
	return &BinOp{base{pos, typ}, op, left, right}
}

// UnOp is a typed unary operation.
type UnOp struct {
	base
	Op      string
	Operand Expr
}

func (u *UnOp) exprNode() {}

// NewUnOp constructs a typed UnOp.
func NewUnOp(pos Pos, typ types.Type, op string, operand Expr) *UnOp {
	return &UnOp{base{pos, typ}, op, operand}
}

// Compare is a typed comparison chain.
type Compare struct {
	base
	Left  Expr
	Ops   []string
	Comps []Expr
}

func (c *Compare) exprNode() {}

// NewCompare constructs a typed Compare.
func NewCompare(pos Pos, typ types.Type, left Expr, ops []string, comps []Expr) *Compare {
	return &Compare{base{pos, typ}, left, ops, comps}
}

// Call is a typed function application. ResolvedArgs is in parameter
// order — after the inference pass resolved positional and keyword
// arguments and filled any missing ones from their parameter's default
// expression.
type Call struct {
	base
	Func         Expr
	ResolvedArgs []Expr
}

func (c *Call) exprNode() {}

// NewCall constructs a typed Call.
func NewCall(pos Pos, typ types.Type, fn Expr, resolvedArgs []Expr) *Call {
	return &Call{base{pos, typ}, fn, resolvedArgs}
}

// Attribute is a typed field projection; FieldIndex is the resolved
// positional index into the receiver record's field list.
type Attribute struct {
	base
	Receiver   Expr
	Attr       string
	FieldIndex int
}

func (a *Attribute) exprNode() {}

// NewAttribute constructs a typed Attribute.
func NewAttribute(pos Pos, typ types.Type, receiver Expr, attr string, fieldIndex int) *Attribute {
	return &Attribute{base{pos, typ}, receiver, attr, fieldIndex}
}

// Subscript is a typed list index or dict lookup.
type Subscript struct {
	base
	Receiver Expr
	Index    Expr
}

func (s *Subscript) exprNode() {}

// NewSubscript constructs a typed Subscript.
func NewSubscript(pos Pos, typ types.Type, receiver, index Expr) *Subscript {
	return &Subscript{base{pos, typ}, receiver, index}
}

// ListExpr is a typed list literal.
type ListExpr struct {
	base
	Elems []Expr
}

func (l *ListExpr) exprNode() {}

// NewListExpr constructs a typed ListExpr.
func NewListExpr(pos Pos, typ types.Type, elems []Expr) *ListExpr {
	return &ListExpr{base{pos, typ}, elems}
}

// DictEntry is one typed `key: value` pair.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictExpr is a typed `{...}` literal, of MapT type.
type DictExpr struct {
	base
	Entries []*DictEntry
}

func (d *DictExpr) exprNode() {}

// NewDictExpr constructs a typed DictExpr.
func NewDictExpr(pos Pos, typ types.Type, entries []*DictEntry) *DictExpr {
	return &DictExpr{base{pos, typ}, entries}
}

// IfExp is a typed conditional expression.
type IfExp struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func (i *IfExp) exprNode() {}

// NewIfExp constructs a typed IfExp.
func NewIfExp(pos Pos, typ types.Type, cond, then, els Expr) *IfExp {
	return &IfExp{base{pos, typ}, cond, then, els}
}

// RecordExpr is a typed record construction: a class name applied to its
// field values in declared order.
type RecordExpr struct {
	base
	Record *types.Record
	Fields []Expr // positional, matching Record.Fields order
}

func (r *RecordExpr) exprNode() {}

// NewRecordExpr constructs a typed RecordExpr.
func NewRecordExpr(pos Pos, typ types.Type, rec *types.Record, fields []Expr) *RecordExpr {
	return &RecordExpr{base{pos, typ}, rec, fields}
}

// IsInstanceExpr is a typed `isinstance(v, T)` check against a SumT
// receiver, resolved to a constructor-tag comparison at code-gen.
type IsInstanceExpr struct {
	base
	Value   Expr
	Variant *types.Record
}

func (i *IsInstanceExpr) exprNode() {}

// NewIsInstanceExpr constructs a typed IsInstanceExpr.
func NewIsInstanceExpr(pos Pos, typ types.Type, value Expr, variant *types.Record) *IsInstanceExpr {
	return &IsInstanceExpr{base{pos, typ}, value, variant}
}
