package testutil

import (
	"bytes"
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ir"
)

// EvalIR reduces a closed IR term to a plain Go value, for tests that need
// to check what a generated program computes rather than what shape it
// has. It is an environment-passing interpreter over the node set in
// internal/ir with just enough of the VM's builtin semantics to run the
// terms this compiler emits: integers as int64, byte strings as []byte,
// lists as []interface{}, unit as nil. A term that reaches an unmodeled
// builtin, an unbound variable, or the Error primitive returns an error
// instead of a value.
func EvalIR(e ir.Expr) (interface{}, error) {
	v, err := evalIR(e, nil)
	if err != nil {
		return nil, err
	}
	return exportValue(v)
}

// vmEnv is a linked chain of name bindings, innermost first. A nil *vmEnv
// is the empty environment.
type vmEnv struct {
	name string
	val  interface{}
	next *vmEnv
}

func (e *vmEnv) lookup(name string) (interface{}, bool) {
	for f := e; f != nil; f = f.next {
		if f.name == name {
			return f.val, true
		}
	}
	return nil, false
}

// vmClosure is an evaluated Lambda: its body plus the environment it
// captured.
type vmClosure struct {
	param string
	body  ir.Expr
	env   *vmEnv
}

// vmThunk is an evaluated Delay, forced on demand.
type vmThunk struct {
	body ir.Expr
	env  *vmEnv
}

// vmBuiltin is a partially-applied VM primitive; its semantics run once
// len(args) reaches the primitive's arity.
type vmBuiltin struct {
	name string
	args []interface{}
}

var builtinArity = map[string]int{
	"AddInteger":            2,
	"SubtractInteger":       2,
	"MultiplyInteger":       2,
	"QuotientInteger":       2,
	"RemainderInteger":      2,
	"EqualsInteger":         2,
	"LessThanInteger":       2,
	"LessThanEqualsInteger": 2,
	"EqualsByteString":      2,
	"EqualsString":          2,
	"AppendByteString":      2,
	"AppendString":          2,
	"LengthOfByteString":    1,
	"IfThenElse":            3,
	"Not":                   1,
	"Trace":                 2,
	"ChooseList":            3,
	"HeadList":              1,
	"TailList":              1,
	"MkCons":                2,
}

func evalIR(e ir.Expr, env *vmEnv) (interface{}, error) {
	switch n := e.(type) {
	case *ir.Var:
		v, ok := env.lookup(n.Name)
		if !ok {
			return nil, fmt.Errorf("testutil: unbound variable %s", n.Name)
		}
		return v, nil
	case *ir.Const:
		return constValue(n, env)
	case *ir.Lambda:
		return &vmClosure{param: n.Param, body: n.Body, env: env}, nil
	case *ir.Delay:
		return &vmThunk{body: n.Body, env: env}, nil
	case *ir.Force:
		v, err := evalIR(n.Body, env)
		if err != nil {
			return nil, err
		}
		th, ok := v.(*vmThunk)
		if !ok {
			return nil, fmt.Errorf("testutil: force of a non-delayed value %T", v)
		}
		return evalIR(th.body, th.env)
	case *ir.BuiltIn:
		if n.Name == "Error" {
			return nil, fmt.Errorf("testutil: execution aborted by Error")
		}
		if _, ok := builtinArity[n.Name]; !ok {
			return nil, fmt.Errorf("testutil: builtin %s is not modeled", n.Name)
		}
		return &vmBuiltin{name: n.Name}, nil
	case *ir.Apply:
		fn, err := evalIR(n.Func, env)
		if err != nil {
			return nil, err
		}
		arg, err := evalIR(n.Arg, env)
		if err != nil {
			return nil, err
		}
		return applyValue(fn, arg)
	}
	return nil, fmt.Errorf("testutil: unsupported IR node %T", e)
}

func constValue(c *ir.Const, env *vmEnv) (interface{}, error) {
	switch c.Kind {
	case ir.ConstInteger:
		switch v := c.Value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		}
		return nil, fmt.Errorf("testutil: integer constant holds %T", c.Value)
	case ir.ConstList:
		elems, ok := c.Value.([]ir.Expr)
		if !ok {
			return nil, fmt.Errorf("testutil: list constant holds %T", c.Value)
		}
		vals := make([]interface{}, len(elems))
		for i, el := range elems {
			v, err := evalIR(el, env)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	case ir.ConstUnit:
		return nil, nil
	default:
		return c.Value, nil
	}
}

func applyValue(fn, arg interface{}) (interface{}, error) {
	switch f := fn.(type) {
	case *vmClosure:
		return evalIR(f.body, &vmEnv{name: f.param, val: arg, next: f.env})
	case *vmBuiltin:
		args := append(append([]interface{}{}, f.args...), arg)
		if len(args) < builtinArity[f.name] {
			return &vmBuiltin{name: f.name, args: args}, nil
		}
		return applyBuiltin(f.name, args)
	default:
		return nil, fmt.Errorf("testutil: applying a non-function value %T", fn)
	}
}

func applyBuiltin(name string, args []interface{}) (interface{}, error) {
	switch name {
	case "AddInteger", "SubtractInteger", "MultiplyInteger",
		"QuotientInteger", "RemainderInteger",
		"EqualsInteger", "LessThanInteger", "LessThanEqualsInteger":
		a, err := asInt(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := asInt(name, args[1])
		if err != nil {
			return nil, err
		}
		switch name {
		case "AddInteger":
			return a + b, nil
		case "SubtractInteger":
			return a - b, nil
		case "MultiplyInteger":
			return a * b, nil
		case "QuotientInteger":
			if b == 0 {
				return nil, fmt.Errorf("testutil: QuotientInteger by zero")
			}
			return a / b, nil // Go's / truncates toward zero, like the VM
		case "RemainderInteger":
			if b == 0 {
				return nil, fmt.Errorf("testutil: RemainderInteger by zero")
			}
			return a % b, nil
		case "EqualsInteger":
			return a == b, nil
		case "LessThanInteger":
			return a < b, nil
		default:
			return a <= b, nil
		}
	case "EqualsByteString":
		a, aok := args[0].([]byte)
		b, bok := args[1].([]byte)
		if !aok || !bok {
			return nil, fmt.Errorf("testutil: EqualsByteString on non-bytes")
		}
		return bytes.Equal(a, b), nil
	case "EqualsString":
		a, aok := args[0].(string)
		b, bok := args[1].(string)
		if !aok || !bok {
			return nil, fmt.Errorf("testutil: EqualsString on non-strings")
		}
		return a == b, nil
	case "AppendByteString":
		a, aok := args[0].([]byte)
		b, bok := args[1].([]byte)
		if !aok || !bok {
			return nil, fmt.Errorf("testutil: AppendByteString on non-bytes")
		}
		return append(append([]byte{}, a...), b...), nil
	case "AppendString":
		a, aok := args[0].(string)
		b, bok := args[1].(string)
		if !aok || !bok {
			return nil, fmt.Errorf("testutil: AppendString on non-strings")
		}
		return a + b, nil
	case "LengthOfByteString":
		a, ok := args[0].([]byte)
		if !ok {
			return nil, fmt.Errorf("testutil: LengthOfByteString on non-bytes")
		}
		return int64(len(a)), nil
	case "IfThenElse":
		cond, ok := args[0].(bool)
		if !ok {
			return nil, fmt.Errorf("testutil: IfThenElse on non-bool %T", args[0])
		}
		if cond {
			return args[1], nil
		}
		return args[2], nil
	case "Not":
		b, ok := args[0].(bool)
		if !ok {
			return nil, fmt.Errorf("testutil: Not on non-bool %T", args[0])
		}
		return !b, nil
	case "Trace":
		return args[1], nil
	case "ChooseList":
		xs, ok := args[0].([]interface{})
		if !ok {
			return nil, fmt.Errorf("testutil: ChooseList on non-list %T", args[0])
		}
		if len(xs) == 0 {
			return args[1], nil
		}
		return args[2], nil
	case "HeadList":
		xs, ok := args[0].([]interface{})
		if !ok || len(xs) == 0 {
			return nil, fmt.Errorf("testutil: HeadList on empty or non-list")
		}
		return xs[0], nil
	case "TailList":
		xs, ok := args[0].([]interface{})
		if !ok || len(xs) == 0 {
			return nil, fmt.Errorf("testutil: TailList on empty or non-list")
		}
		return xs[1:], nil
	case "MkCons":
		tail, ok := args[1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("testutil: MkCons onto non-list %T", args[1])
		}
		return append([]interface{}{args[0]}, tail...), nil
	}
	return nil, fmt.Errorf("testutil: builtin %s is not modeled", name)
}

func asInt(name string, v interface{}) (int64, error) {
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("testutil: %s on non-integer %T", name, v)
	}
	return i, nil
}

// exportValue rejects anything that is not a first-order value — a term
// that evaluates to a closure, thunk, or half-applied builtin has no
// meaningful Go representation for a test assertion.
func exportValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case *vmClosure, *vmThunk, *vmBuiltin:
		return nil, fmt.Errorf("testutil: result %T is not a first-order value", v)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			ev, err := exportValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return v, nil
	}
}
