// Package types holds the canonical type definitions used across every
// compiler pass: the closed set of value categories a script's expressions
// can have, and structural equality/compatibility between them. The
// built-in prelude's type signatures and code-generation recipes both live
// in internal/builtins, which imports this package.
//
// There is no unification and no type variable here: every expression's
// type in the accepted subset is fully determined by source annotations
// and by the types of its children, so inference is a synthesis pass, not
// a solver. See internal/infer for that pass.
package types

import (
	"fmt"
	"strings"
)

// Type is any node in the type system. Two types are interchangeable iff
// Equals reports true; there are no implicit coercions.
type Type interface {
	String() string
	Equals(Type) bool
}

// Kind distinguishes an expression's type from a reference to a type
// constructor (a class name used as a value, e.g. the name `Token` used to
// construct a Token instance). InstanceOf(T) marks "a value of T"; a bare
// RecordT/SumT/FunctionT/PolymorphicT appearing as a name's type means the
// name denotes the class/constructor itself, not an instance.
type Kind int

const (
	KindInstance Kind = iota
	KindClass
)

// ---------------------------------------------------------------------
// Atomic types
// ---------------------------------------------------------------------

type atomic struct{ name string }

func (a *atomic) String() string { return a.name }
func (a *atomic) Equals(o Type) bool {
	other, ok := o.(*atomic)
	return ok && other.name == a.name
}

var (
	IntegerT    Type = &atomic{"int"}
	ByteStringT Type = &atomic{"bytes"}
	StringT     Type = &atomic{"str"}
	BoolT       Type = &atomic{"bool"}
	UnitT       Type = &atomic{"None"}
)

// ---------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------

// List is a homogeneous sequence type; the element type is mandatory.
type List struct {
	Elem Type
}

func (l *List) String() string { return fmt.Sprintf("List[%s]", l.Elem) }
func (l *List) Equals(o Type) bool {
	other, ok := o.(*List)
	return ok && l.Elem.Equals(other.Elem)
}

// Map is an insertion-ordered mapping type.
type Map struct {
	Key Type
	Val Type
}

func (m *Map) String() string { return fmt.Sprintf("Dict[%s, %s]", m.Key, m.Val) }
func (m *Map) Equals(o Type) bool {
	other, ok := o.(*Map)
	return ok && m.Key.Equals(other.Key) && m.Val.Equals(other.Val)
}

// Field is one ordered, named member of a Record.
type Field struct {
	Name string
	Type Type
}

// Record is an ordered-field record schema carrying an integer constructor
// tag, mirroring a PlutusData constructor.
type Record struct {
	TypeName string // the source class name
	Tag      int    // constructor tag assigned at declaration order
	Fields   []Field
}

func (r *Record) String() string { return r.TypeName }
func (r *Record) Equals(o Type) bool {
	other, ok := o.(*Record)
	if !ok || r.TypeName != other.TypeName || r.Tag != other.Tag || len(r.Fields) != len(other.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i].Name != other.Fields[i].Name || !r.Fields[i].Type.Equals(other.Fields[i].Type) {
			return false
		}
	}
	return true
}

// FieldIndex returns the positional index of a field, used by code-gen to
// emit a constructor-field projection.
func (r *Record) FieldIndex(name string) (int, bool) {
	for i, f := range r.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Sum is a discriminated union of Records, ordered as declared.
type Sum struct {
	TypeName string
	Variants []*Record
}

func (s *Sum) String() string { return s.TypeName }
func (s *Sum) Equals(o Type) bool {
	other, ok := o.(*Sum)
	if !ok || s.TypeName != other.TypeName || len(s.Variants) != len(other.Variants) {
		return false
	}
	for i := range s.Variants {
		if !s.Variants[i].Equals(other.Variants[i]) {
			return false
		}
	}
	return true
}

// HasVariant reports whether r is (structurally) one of s's member records.
func (s *Sum) HasVariant(r *Record) bool {
	for _, v := range s.Variants {
		if v.Equals(r) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------

// Function is a fixed-arity function type. Variadics do not exist in the
// subset.
type Function struct {
	Args []Type
	Ret  Type
}

func (f *Function) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}
func (f *Function) Equals(o Type) bool {
	other, ok := o.(*Function)
	if !ok || len(f.Args) != len(other.Args) || !f.Ret.Equals(other.Ret) {
		return false
	}
	for i := range f.Args {
		if !f.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}

// FunctionType constructs (and, conceptually, interns — equal signatures
// compare Equals true even when built independently) a function type.
func FunctionType(args []Type, ret Type) *Function {
	return &Function{Args: args, Ret: ret}
}

// Polymorphic is a named built-in whose concrete Function signature is
// selected per call site from the resolved argument types (the only
// prelude member of this kind is `len`).
type Polymorphic struct {
	Name string
}

func (p *Polymorphic) String() string { return fmt.Sprintf("poly(%s)", p.Name) }
func (p *Polymorphic) Equals(o Type) bool {
	other, ok := o.(*Polymorphic)
	return ok && p.Name == other.Name
}

// ---------------------------------------------------------------------
// Instance / class distinction
// ---------------------------------------------------------------------

// Instance wraps a type to mark that a node denotes a value of that type,
// as opposed to the type/class/constructor itself. Every fully-typed
// expression node's type is an *Instance unless the node is a bare class
// reference.
type Instance struct {
	Of Type
}

func (i *Instance) String() string { return i.Of.String() }
func (i *Instance) Equals(o Type) bool {
	other, ok := o.(*Instance)
	return ok && i.Of.Equals(other.Of)
}

// InstanceOf is a small constructor helper.
func InstanceOf(t Type) *Instance { return &Instance{Of: t} }

// AsInstance unwraps an Instance, reporting whether the type was one.
func AsInstance(t Type) (Type, bool) {
	inst, ok := t.(*Instance)
	if !ok {
		return nil, false
	}
	return inst.Of, true
}

// ---------------------------------------------------------------------
// type_of_literal
// ---------------------------------------------------------------------

// TypeOfLiteral returns the instance type for an atomic Go literal value.
func TypeOfLiteral(v interface{}) (Type, error) {
	switch v.(type) {
	case int, int64:
		return InstanceOf(IntegerT), nil
	case []byte:
		return InstanceOf(ByteStringT), nil
	case string:
		return InstanceOf(StringT), nil
	case bool:
		return InstanceOf(BoolT), nil
	case nil:
		return InstanceOf(UnitT), nil
	default:
		return nil, fmt.Errorf("types: %v is not an atomic literal", v)
	}
}

// ---------------------------------------------------------------------
// compatible
// ---------------------------------------------------------------------

// Compatible reports whether a value of type actual may be used where
// declared is required:
//
//   - structural equality in the general case;
//   - a SumT accepts any of its member variants;
//   - UnitT is only assignable from UnitT;
//   - ListT requires exact element-type equality (no covariance).
func Compatible(declared, actual Type) bool {
	declaredInst, declaredIsInst := AsInstance(declared)
	actualInst, actualIsInst := AsInstance(actual)
	if declaredIsInst != actualIsInst {
		return false
	}
	if declaredIsInst {
		return compatibleBare(declaredInst, actualInst)
	}
	return declared.Equals(actual)
}

func compatibleBare(declared, actual Type) bool {
	if sum, ok := declared.(*Sum); ok {
		if rec, ok := actual.(*Record); ok {
			return sum.HasVariant(rec)
		}
	}
	if _, ok := declared.(*atomic); ok && declared.Equals(UnitT) {
		return actual.Equals(UnitT)
	}
	if dl, ok := declared.(*List); ok {
		al, ok := actual.(*List)
		return ok && dl.Elem.Equals(al.Elem)
	}
	return declared.Equals(actual)
}
