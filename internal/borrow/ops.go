package borrow

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/source"
)

// moveIdentIfNeeded consumes e's place if e is a bare identifier whose
// type is known and is not Copy — the common "taking ownership" sites
// (a let initializer, a by-value call argument, a returned value, a
// struct/tuple/array literal element). check_can_use/mark_used have
// already run on e via checkExpr by the time this is called; a first
// move of an Owned place is silent, while moveValue itself reports a
// second move and a move out of a still-borrowed place.
func (c *Checker) moveIdentIfNeeded(e ast.Expr, loc Location) {
	ident, ok := e.(*ast.IdentExpr)
	if !ok {
		return
	}
	place, ok := c.env.Lookup(ident.Name)
	if !ok {
		return
	}
	st := c.env.State(place)
	if st.Type == nil || c.isCopyType(st.Type) {
		return
	}
	c.moveValue(place, loc)
}

// createBorrow records a new borrow of place starting at loc and
// updates the place's ownership state to reflect it.
func (c *Checker) createBorrow(place PlaceId, kind BorrowKind, loc Location) {
	st := c.env.State(place)
	st.ActiveBorrows = append(st.ActiveBorrows, Borrow{
		Place:      place,
		Kind:       kind,
		Start:      loc,
		ScopeDepth: c.env.ScopeDepth(),
	})
	if kind == Mutable {
		st.State = MutBorrowed
	} else if st.State == Owned {
		st.State = Borrowed
	}
}

// releaseBorrow ends the oldest still-open borrow of the given kind
// on place and recomputes its ownership state from what remains
// active.
func (c *Checker) releaseBorrow(place PlaceId, kind BorrowKind, loc Location) {
	st := c.env.State(place)
	for i := range st.ActiveBorrows {
		b := &st.ActiveBorrows[i]
		if b.Kind == kind && b.End == nil {
			l := loc
			b.End = &l
			break
		}
	}
	hasMut, hasShared := false, false
	for _, b := range st.ActiveBorrows {
		if b.End == nil {
			if b.Kind == Mutable {
				hasMut = true
			} else {
				hasShared = true
			}
		}
	}
	switch {
	case hasMut:
		st.State = MutBorrowed
	case hasShared:
		st.State = Borrowed
	default:
		st.State = Owned
	}
}

// moveValue transfers ownership of place away, rejecting a
// double-move or a move out of something still borrowed.
func (c *Checker) moveValue(place PlaceId, loc Location) {
	st := c.env.State(place)
	if st.State == Moved {
		c.error("use of moved value: `"+st.Name+"`", loc.Span)
		return
	}
	if st.State == Borrowed || st.State == MutBorrowed {
		c.error("cannot move out of `"+st.Name+"` because it is borrowed", loc.Span)
		return
	}
	st.State = Moved
}

// checkCanUse rejects reading a place that has been moved or dropped.
func (c *Checker) checkCanUse(place PlaceId, loc Location) {
	st := c.env.State(place)
	if st.State == Moved {
		c.error("use of moved value: `"+st.Name+"`", loc.Span)
	}
	if st.State == Dropped {
		c.error("use of dropped value: `"+st.Name+"`", loc.Span)
	}
}

// checkCanMutate rejects writing to a place that is immutable, moved,
// or currently borrowed.
func (c *Checker) checkCanMutate(place PlaceId, loc Location) {
	st := c.env.State(place)
	if !st.IsMutable {
		c.error("cannot assign to `"+st.Name+"` because it is not mutable", loc.Span)
		return
	}
	switch st.State {
	case Moved:
		c.error("cannot assign to moved value: `"+st.Name+"`", loc.Span)
	case Borrowed:
		c.error("cannot assign to `"+st.Name+"` because it is borrowed", loc.Span)
	case MutBorrowed:
		c.error("cannot assign to `"+st.Name+"` because it is mutably borrowed", loc.Span)
	}
}

// checkCanBorrow rejects creating a new borrow of place that would
// violate the aliasing rule (one mutable borrow xor any number of
// shared borrows), with a two-phase-borrow and reborrow-from-reference
// exception.
func (c *Checker) checkCanBorrow(place PlaceId, kind BorrowKind, loc Location) {
	st := c.env.State(place)
	if st.State == Moved {
		c.error("cannot borrow moved value: `"+st.Name+"`", loc.Span)
		return
	}
	isReborrow := st.BorrowedFrom != nil

	if kind == Mutable {
		if !st.IsMutable && !isReborrow {
			c.error("cannot borrow `"+st.Name+"` as mutable because it is not declared as mutable", loc.Span)
			return
		}
		if isReborrow && st.BorrowedFrom.Kind == Shared {
			c.error("cannot reborrow `"+st.Name+"` as mutable because it was borrowed as immutable", loc.Span)
			return
		}
		if st.State == Borrowed && !isReborrow {
			c.borrowConflict(st, "cannot borrow `"+st.Name+"` as mutable because it is also borrowed as immutable", loc)
			return
		}
		if st.State == MutBorrowed && !c.twoPhaseBorrowActive {
			c.borrowConflict(st, "cannot borrow `"+st.Name+"` as mutable more than once at a time", loc)
			return
		}
	} else {
		if st.State == MutBorrowed && !isReborrow && !c.twoPhaseBorrowActive {
			c.borrowConflict(st, "cannot borrow `"+st.Name+"` as immutable because it is also borrowed as mutable", loc)
			return
		}
	}
}

// borrowConflict reports message at loc, pointing the related span at
// the still-active borrow that conflicts with it so the diagnostic
// shows both the new borrow attempt and the one it collides with.
func (c *Checker) borrowConflict(st *PlaceState, message string, loc Location) {
	for i := len(st.ActiveBorrows) - 1; i >= 0; i-- {
		if b := st.ActiveBorrows[i]; b.End == nil {
			c.errorWithNote(message, loc.Span, "first borrowed here", b.Start.Span)
			return
		}
	}
	c.error(message, loc.Span)
}

// createReborrow records that target's value is a reference derived
// from source, and creates the underlying borrow on source.
func (c *Checker) createReborrow(source, target PlaceId, kind BorrowKind, loc Location) {
	c.env.State(target).BorrowedFrom = &reborrowSource{From: source, Kind: kind}
	c.createBorrow(source, kind, loc)
}

// beginTwoPhaseBorrow/endTwoPhaseBorrow bracket the argument-evaluation
// window of a method call, during which a receiver already mutably
// borrowed for the call may be read again by its own arguments
// (`vec.push(vec.len())`).
func (c *Checker) beginTwoPhaseBorrow() { c.twoPhaseBorrowActive = true }
func (c *Checker) endTwoPhaseBorrow()   { c.twoPhaseBorrowActive = false }

// dropScopePlaces closes every borrow created in the current scope
// and marks every place defined directly in it as dropped, run when a
// block finishes checking.
func (c *Checker) dropScopePlaces() {
	loc := Location{StmtIndex: c.currentStmt}
	c.env.ReleaseBorrowsAtDepth(c.env.ScopeDepth(), loc)
	for _, id := range c.env.CurrentScopePlaces() {
		st := c.env.State(id)
		for i := range st.ActiveBorrows {
			if st.ActiveBorrows[i].End == nil {
				l := loc
				st.ActiveBorrows[i].End = &l
			}
		}
		st.State = Dropped
	}
}

func (c *Checker) error(message string, span source.Span) {
	c.errs.Add(diag.New(diag.KindBorrow, "B001", span, "%s", message))
}

func (c *Checker) errorWithNote(message string, span source.Span, note string, noteSpan source.Span) {
	d := diag.New(diag.KindBorrow, "B001", span, "%s", message)
	related := diag.New(diag.KindBorrow, "B001", noteSpan, "%s", note)
	d.WithRelated(related)
	c.errs.Add(d)
}

func (c *Checker) currentLocation(span source.Span) Location {
	return Location{StmtIndex: c.currentStmt, Span: span}
}
