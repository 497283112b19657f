// Package borrow implements the ownership/borrow-checking pass that
// runs after type checking and before codegen: it tracks the
// ownership state of every place (variable, field, element) a
// function body touches, enforces the aliasing rules (one mutable
// borrow xor any number of shared borrows), and rejects use of a
// moved or dropped value.
package borrow

import (
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

// PlaceId identifies a place (variable, field access, etc.) within
// one function body's borrow-checking pass.
type PlaceId uint64

// Location is a statement index plus the span that produced it, used
// both for error reporting and for non-lexical-lifetime borrow-end
// tracking.
type Location struct {
	StmtIndex int
	Span      source.Span
}

// BorrowKind distinguishes a shared (`ref T`) borrow from a mutable
// (`mut ref T`) one.
type BorrowKind int

const (
	Shared BorrowKind = iota
	Mutable
)

// Borrow is one active or historical borrow of a place.
type Borrow struct {
	Place      PlaceId
	Kind       BorrowKind
	Start      Location
	End        *Location // nil while still active
	ScopeDepth int
}

// OwnershipState is the lifecycle state of a place's value.
type OwnershipState int

const (
	Owned OwnershipState = iota
	Moved
	Borrowed
	MutBorrowed
	Dropped
)

// reborrowSource records that a place's value is itself a reference
// borrowed from another place, and which kind of borrow it holds —
// used to permit reborrowing (`&*r`, passing `&mut self` on through).
type reborrowSource struct {
	From PlaceId
	Kind BorrowKind
}

// PlaceState tracks one place's ownership/borrow bookkeeping across a
// function body.
type PlaceState struct {
	Name          string
	IsMutable     bool
	State         OwnershipState
	ActiveBorrows []Borrow
	Definition    Location
	LastUse       *Location
	BorrowedFrom  *reborrowSource
	// Type is the place's resolved type when known (parameter types and
	// explicitly-annotated let bindings); nil for destructured pattern
	// fields, whose per-field type isn't threaded through by this pass.
	// A nil Type is treated as Copy so that unknown types never produce
	// a spurious "use of moved value" report.
	Type types.Type
}

// Env is the per-function-body borrow-checking environment: a name
// table layered by lexical scope plus the flat table of every place's
// state, mirroring the original's BorrowEnv.
type Env struct {
	nameToPlace map[string][]PlaceId
	places      map[PlaceId]*PlaceState
	scopes      [][]PlaceId
	nextID      PlaceId
}

// NewEnv returns an empty borrow environment with one top-level scope
// pushed, ready for a function body's parameters to be defined into.
func NewEnv() *Env {
	e := &Env{
		nameToPlace: map[string][]PlaceId{},
		places:      map[PlaceId]*PlaceState{},
	}
	e.PushScope()
	return e
}

// Define introduces a new place named name, shadowing any
// same-named place still visible in an outer scope.
func (e *Env) Define(name string, isMut bool, loc Location) PlaceId {
	id := e.nextID
	e.nextID++
	e.places[id] = &PlaceState{Name: name, IsMutable: isMut, State: Owned, Definition: loc}
	e.nameToPlace[name] = append(e.nameToPlace[name], id)
	e.scopes[len(e.scopes)-1] = append(e.scopes[len(e.scopes)-1], id)
	return id
}

// DefineTyped is Define plus an associated resolved type, used
// wherever the declared type is known statically (parameters,
// annotated let/var bindings) so move-vs-copy decisions can consult
// it later.
func (e *Env) DefineTyped(name string, isMut bool, t types.Type, loc Location) PlaceId {
	id := e.Define(name, isMut, loc)
	e.places[id].Type = t
	return id
}

// Lookup finds the innermost place currently bound to name.
func (e *Env) Lookup(name string) (PlaceId, bool) {
	ids, ok := e.nameToPlace[name]
	if !ok || len(ids) == 0 {
		return 0, false
	}
	return ids[len(ids)-1], true
}

// State returns the mutable PlaceState for id.
func (e *Env) State(id PlaceId) *PlaceState { return e.places[id] }

// MarkUsed records loc as the last-use location of id (non-lexical
// lifetime bookkeeping: a borrow's effective end is its last use, not
// its lexical scope exit).
func (e *Env) MarkUsed(id PlaceId, loc Location) {
	if st, ok := e.places[id]; ok {
		l := loc
		st.LastUse = &l
	}
}

// PushScope opens a new lexical scope.
func (e *Env) PushScope() { e.scopes = append(e.scopes, nil) }

// PopScope closes the innermost lexical scope, unwinding every name
// it bound back to whatever place (if any) it had shadowed.
func (e *Env) PopScope() {
	top := e.scopes[len(e.scopes)-1]
	e.scopes = e.scopes[:len(e.scopes)-1]
	for _, id := range top {
		name := e.places[id].Name
		ids := e.nameToPlace[name]
		for i := len(ids) - 1; i >= 0; i-- {
			if ids[i] == id {
				e.nameToPlace[name] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}

// CurrentScopePlaces returns every place defined directly in the
// innermost scope.
func (e *Env) CurrentScopePlaces() []PlaceId { return e.scopes[len(e.scopes)-1] }

// ScopeDepth reports how many scopes are currently pushed.
func (e *Env) ScopeDepth() int { return len(e.scopes) }

// ReleaseBorrowsAtDepth closes every still-open borrow created at
// exactly depth, across every place — used when a block ends so that
// a borrow created and used entirely within it (`{ let r = ref x; }`)
// does not outlive the block.
func (e *Env) ReleaseBorrowsAtDepth(depth int, loc Location) {
	for _, st := range e.places {
		for i := range st.ActiveBorrows {
			b := &st.ActiveBorrows[i]
			if b.ScopeDepth == depth && b.End == nil {
				l := loc
				b.End = &l
			}
		}
		if st.State != Borrowed && st.State != MutBorrowed {
			continue
		}
		st.State = Owned
		for _, b := range st.ActiveBorrows {
			if b.End == nil && b.Kind == Mutable {
				st.State = MutBorrowed
				break
			}
			if b.End == nil {
				st.State = Borrowed
			}
		}
	}
}
