// Package builtins is the prelude catalog: the fixed set of names that are
// in scope before any user source is read. It supplies three things to the
// rest of the pipeline:
//
//   - the type signature internal/infer seeds the root scope with for each
//     prelude name;
//   - the IR-construction recipe internal/codegen asks for when a call site
//     resolves to that name (a builtin is never inlined by hand at the call
//     site — codegen always goes through this registry, the same way it
//     never inlines an operator's lowering without consulting operators.go);
//   - the domain record/sum types a validator's source may reference without
//     declaring a class for them (ScriptContext and friends — see domain.go).
//
// The registration pattern is a frozen, validated map built once at init,
// guarding this catalog against malformed or duplicate entries the same
// way a closed effect-builtin registry would.
package builtins

import (
	"fmt"

	"github.com/ImperatorLang/eopsin/internal/ir"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// Recipe builds the IR term a builtin name evaluates to. Most builtins
// ignore argTypes entirely (their signature is fixed); `len` is the one
// prelude member that specializes its recipe to the resolved argument
// type, over byte strings and lists.
type Recipe func(g *ir.IDGen, argTypes []types.Type) ir.Expr

// Spec is a complete description of one prelude function: enough for
// internal/infer to type a reference to it and for internal/codegen to
// lower a call to it.
type Spec struct {
	Name        string
	NumArgs     int
	Polymorphic bool
	// Type returns the callable's type. For a monomorphic builtin this
	// ignores its argument; for a polymorphic one (len) it specializes to
	// the resolved instance types of the call's actual arguments and
	// returns an error if none of the supported shapes match.
	Type   func(argTypes []types.Type) (*types.Function, error)
	Recipe Recipe
}

var registry = make(map[string]*Spec)
var frozen = false

// register adds a Spec to the catalog. Called only from this package's own
// init functions; never exported, since the prelude is closed.
func register(s Spec) {
	if frozen {
		panic(fmt.Sprintf("builtins: registry already frozen, cannot register %s", s.Name))
	}
	if s.Name == "" {
		panic("builtins: spec with empty name")
	}
	if s.Type == nil {
		panic(fmt.Sprintf("builtins: %s has no Type constructor", s.Name))
	}
	if s.Recipe == nil {
		panic(fmt.Sprintf("builtins: %s has no Recipe", s.Name))
	}
	if _, exists := registry[s.Name]; exists {
		panic(fmt.Sprintf("builtins: %s already registered", s.Name))
	}
	registry[s.Name] = &s
}

func init() {
	registerPrelude()
	frozen = true
}

// Get looks up a prelude name.
func Get(name string) (*Spec, bool) {
	s, ok := registry[name]
	return s, ok
}

// IsBuiltin reports whether name is a prelude member, as opposed to a name
// the user's own source must define.
func IsBuiltin(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns every registered prelude name, for diagnostics and for
// seeding the root scope's identifier set.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// InitialScope returns the type every prelude name resolves to before any
// user source is read. Monomorphic builtins resolve
// to their fixed, instance-wrapped function type; `len` resolves to a
// types.Polymorphic marker that internal/infer specializes per call site
// via Get("len").Type.
func InitialScope() map[string]types.Type {
	scope := make(map[string]types.Type, len(registry))
	for name, spec := range registry {
		if spec.Polymorphic {
			scope[name] = types.InstanceOf(&types.Polymorphic{Name: name})
			continue
		}
		sig, err := spec.Type(nil)
		if err != nil {
			panic(fmt.Sprintf("builtins: %s: fixed signature build failed: %v", name, err))
		}
		scope[name] = types.InstanceOf(sig)
	}
	return scope
}
