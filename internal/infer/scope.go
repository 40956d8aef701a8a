// Package infer is the first compiler pass: it turns an internal/ast.File
// into an internal/typedast.File by resolving every name to a scope handle
// and assigning every expression an internal/types.Type.
//
// There is no unification here. A name's type is whatever its binding
// site declared (a parameter annotation, a class field, a prelude
// signature); inference is a single synthesis pass over already-annotated
// source, keeping the structural type system and its solver as separate
// concerns even though this pass has no solver, because the accepted
// subset needs none.
package infer

import (
	"github.com/ImperatorLang/eopsin/internal/typedast"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// frame is one lexical scope: a function body, or the module top level.
// Bindings are appended in declaration order so a ScopeHandle's Slot is
// stable for the lifetime of the frame.
type frame struct {
	names []string
	types []types.Type
	index map[string]int
}

func newFrame() *frame {
	return &frame{index: make(map[string]int)}
}

// define adds a new binding and returns its slot. Re-defining an existing
// name (e.g. re-assigning a variable) reuses its slot rather than shadowing
// it with a second one, matching the subset's no-shadowing-within-a-scope
// assumption.
func (f *frame) define(name string, typ types.Type) int {
	if slot, ok := f.index[name]; ok {
		f.types[slot] = typ
		return slot
	}
	slot := len(f.names)
	f.names = append(f.names, name)
	f.types = append(f.types, typ)
	f.index[name] = slot
	return slot
}

func (f *frame) lookup(name string) (int, types.Type, bool) {
	slot, ok := f.index[name]
	if !ok {
		return 0, nil, false
	}
	return slot, f.types[slot], true
}

// scopeStack is the inferer's live chain of frames, innermost last.
type scopeStack struct {
	frames []*frame
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

// push enters a new frame (a function body); its FrameIndex is its
// position in the stack at the time it is entered.
func (s *scopeStack) push() int {
	s.frames = append(s.frames, newFrame())
	return len(s.frames) - 1
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) current() *frame {
	return s.frames[len(s.frames)-1]
}

func (s *scopeStack) currentIndex() int {
	return len(s.frames) - 1
}

// define binds name in the current (innermost) frame.
func (s *scopeStack) define(name string, typ types.Type) typedast.ScopeHandle {
	idx := s.currentIndex()
	slot := s.frames[idx].define(name, typ)
	return typedast.ScopeHandle{FrameIndex: idx, Slot: slot}
}

// resolve walks outward from the innermost frame looking for name.
func (s *scopeStack) resolve(name string) (typedast.ScopeHandle, types.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if slot, typ, ok := s.frames[i].lookup(name); ok {
			return typedast.ScopeHandle{FrameIndex: i, Slot: slot}, typ, true
		}
	}
	return typedast.ScopeHandle{}, nil, false
}

