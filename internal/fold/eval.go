package fold

import (
	"bytes"

	"golang.org/x/text/unicode/norm"

	"github.com/ImperatorLang/eopsin/internal/typedast"
)

// env is the sandboxed interpreter's variable table: a constant's resolved
// Go value keyed by the scope handle the inference pass assigned its
// binding occurrence. Keying on the handle rather than on the source name
// sidesteps shadowing entirely — two variables named the same thing in
// different scopes already carry distinct handles, so no separate "is
// this name still visible" bookkeeping is needed.
type env struct {
	consts map[typedast.ScopeHandle]interface{}
}

// dictPair is one evaluated {key: value} entry. Go's map has no stable
// iteration order, and dict construction order is sometimes observable
// (e.g. the ledger's nested Value map), so a folded dict is carried as an
// ordered slice rather than a map[interface{}]interface{} for the duration
// of evaluation.
type dictPair struct {
	key interface{}
	val interface{}
}

// safeBuiltins is the subset of the prelude eval may call during folding.
// print is deliberately excluded: it is kept for its trace side effect,
// so an expression that calls it is never considered foldable.
var safeBuiltins = map[string]bool{
	"abs": true, "len": true, "sum": true,
	"all": true, "any": true, "range": true, "breakpoint": true,
}

// eval attempts to evaluate a typed expression to a concrete Go value
// using only literals, already-known constants, and the safe builtin
// subset. The second return reports success; a false return means the
// expression depends on something the sandboxed interpreter cannot or must
// not resolve (a ScriptContext field, a user function call, an
// uninitialized variable).
func eval(e typedast.Expr, en *env) (interface{}, bool) {
	switch n := e.(type) {
	case *typedast.Literal:
		if i, ok := n.Value.(int); ok {
			return int64(i), true
		}
		if s, ok := n.Value.(string); ok {
			// NFC-normalize so two source literals that denote the same
			// string under different Unicode decompositions (e.g. an
			// accented letter as one code point vs. base+combining-mark)
			// fold to the same Go string and compare/concatenate equal.
			return normalizeString(s), true
		}
		return n.Value, true
	case *typedast.Name:
		v, ok := en.consts[n.Handle]
		return v, ok
	case *typedast.BinOp:
		l, ok := eval(n.Left, en)
		if !ok {
			return nil, false
		}
		r, ok := eval(n.Right, en)
		if !ok {
			return nil, false
		}
		return evalBinOp(n.Op, l, r)
	case *typedast.UnOp:
		v, ok := eval(n.Operand, en)
		if !ok {
			return nil, false
		}
		return evalUnOp(n.Op, v)
	case *typedast.Compare:
		left, ok := eval(n.Left, en)
		if !ok {
			return nil, false
		}
		for i, op := range n.Ops {
			right, ok := eval(n.Comps[i], en)
			if !ok {
				return nil, false
			}
			result, ok := evalBinOp(op, left, right)
			if !ok {
				return nil, false
			}
			if b, ok := result.(bool); !ok || !b {
				return false, true
			}
			left = right
		}
		return true, true
	case *typedast.IfExp:
		cond, ok := eval(n.Cond, en)
		if !ok {
			return nil, false
		}
		b, ok := cond.(bool)
		if !ok {
			return nil, false
		}
		if b {
			return eval(n.Then, en)
		}
		return eval(n.Else, en)
	case *typedast.ListExpr:
		vals := make([]interface{}, len(n.Elems))
		for i, el := range n.Elems {
			v, ok := eval(el, en)
			if !ok {
				return nil, false
			}
			vals[i] = v
		}
		return vals, true
	case *typedast.DictExpr:
		pairs := make([]dictPair, len(n.Entries))
		for i, entry := range n.Entries {
			k, ok := eval(entry.Key, en)
			if !ok {
				return nil, false
			}
			v, ok := eval(entry.Value, en)
			if !ok {
				return nil, false
			}
			pairs[i] = dictPair{key: k, val: v}
		}
		return pairs, true
	case *typedast.Subscript:
		recv, ok := eval(n.Receiver, en)
		if !ok {
			return nil, false
		}
		idx, ok := eval(n.Index, en)
		if !ok {
			return nil, false
		}
		return evalSubscript(recv, idx)
	case *typedast.Call:
		return evalCall(n, en)
	default:
		// Record construction, isinstance checks and attribute access on a
		// record are never folded — the sandbox's value domain is atomic,
		// list and dict values only; nothing in the ledger's record
		// vocabulary is constant-foldable here.
		return nil, false
	}
}

func evalCall(c *typedast.Call, en *env) (interface{}, bool) {
	fn, ok := c.Func.(*typedast.Name)
	if !ok || !safeBuiltins[fn.Ident] {
		return nil, false
	}
	args := make([]interface{}, len(c.ResolvedArgs))
	for i, a := range c.ResolvedArgs {
		v, ok := eval(a, en)
		if !ok {
			return nil, false
		}
		args[i] = v
	}
	switch fn.Ident {
	case "abs":
		x := args[0].(int64)
		if x < 0 {
			return -x, true
		}
		return x, true
	case "len":
		switch v := args[0].(type) {
		case []byte:
			return int64(len(v)), true
		case []interface{}:
			return int64(len(v)), true
		}
		return nil, false
	case "sum":
		xs, ok := args[0].([]interface{})
		if !ok {
			return nil, false
		}
		var total int64
		for _, x := range xs {
			i, ok := x.(int64)
			if !ok {
				return nil, false
			}
			total += i
		}
		return total, true
	case "all":
		xs, ok := args[0].([]interface{})
		if !ok {
			return nil, false
		}
		for _, x := range xs {
			b, ok := x.(bool)
			if !ok || !b {
				return false, true
			}
		}
		return true, true
	case "any":
		xs, ok := args[0].([]interface{})
		if !ok {
			return nil, false
		}
		for _, x := range xs {
			b, ok := x.(bool)
			if ok && b {
				return true, true
			}
		}
		return false, true
	case "range":
		n, ok := args[0].(int64)
		if !ok || n < 0 {
			return nil, false
		}
		xs := make([]interface{}, n)
		for i := int64(0); i < n; i++ {
			xs[i] = i
		}
		return xs, true
	case "breakpoint":
		return nil, true
	}
	return nil, false
}

func evalSubscript(recv, idx interface{}) (interface{}, bool) {
	switch r := recv.(type) {
	case []interface{}:
		i, ok := idx.(int64)
		if !ok || i < 0 || int(i) >= len(r) {
			return nil, false
		}
		return r[i], true
	case []dictPair:
		for _, p := range r {
			if equalConst(p.key, idx) {
				return p.val, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// normalizeString applies Unicode NFC normalization, the canonical form
// most wire protocols and ledger tooling compare string data against;
// IsNormal is checked first since it short-circuits the common case (an
// already-NFC source literal) without allocating.
func normalizeString(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func equalConst(a, b interface{}) bool {
	ab, aIsBytes := a.([]byte)
	bb, bIsBytes := b.([]byte)
	if aIsBytes && bIsBytes {
		return bytes.Equal(ab, bb)
	}
	return a == b
}

func evalUnOp(op string, v interface{}) (interface{}, bool) {
	switch op {
	case "-":
		i, ok := v.(int64)
		if !ok {
			return nil, false
		}
		return -i, true
	case "not":
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		return !b, true
	}
	return nil, false
}

func evalBinOp(op string, l, r interface{}) (interface{}, bool) {
	switch op {
	case "+":
		switch lv := l.(type) {
		case int64:
			rv, ok := r.(int64)
			if !ok {
				return nil, false
			}
			return lv + rv, true
		case []byte:
			rv, ok := r.([]byte)
			if !ok {
				return nil, false
			}
			out := make([]byte, 0, len(lv)+len(rv))
			out = append(out, lv...)
			out = append(out, rv...)
			return out, true
		case string:
			rv, ok := r.(string)
			if !ok {
				return nil, false
			}
			return lv + rv, true
		}
		return nil, false
	case "-":
		lv, lok := l.(int64)
		rv, rok := r.(int64)
		if !lok || !rok {
			return nil, false
		}
		return lv - rv, true
	case "*":
		lv, lok := l.(int64)
		rv, rok := r.(int64)
		if !lok || !rok {
			return nil, false
		}
		return lv * rv, true
	case "//":
		lv, lok := l.(int64)
		rv, rok := r.(int64)
		if !lok || !rok || rv == 0 {
			return nil, false
		}
		return floorDiv(lv, rv), true
	case "%":
		lv, lok := l.(int64)
		rv, rok := r.(int64)
		if !lok || !rok || rv == 0 {
			return nil, false
		}
		return lv - floorDiv(lv, rv)*rv, true
	case "<", "<=", ">", ">=":
		lv, lok := l.(int64)
		rv, rok := r.(int64)
		if !lok || !rok {
			return nil, false
		}
		switch op {
		case "<":
			return lv < rv, true
		case "<=":
			return lv <= rv, true
		case ">":
			return lv > rv, true
		default:
			return lv >= rv, true
		}
	case "==":
		return equalConst(l, r), true
	case "!=":
		return !equalConst(l, r), true
	case "and":
		lv, lok := l.(bool)
		rv, rok := r.(bool)
		if !lok || !rok {
			return nil, false
		}
		return lv && rv, true
	case "or":
		lv, lok := l.(bool)
		rv, rok := r.(bool)
		if !lok || !rok {
			return nil, false
		}
		return lv || rv, true
	}
	return nil, false
}

// floorDiv implements the source language's `//`, floor division over
// int64 operands — the same correction internal/builtins' floorDivRecipe
// applies on top of the VM's truncating QuotientInteger, so a folded
// division and a generated one always agree.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
