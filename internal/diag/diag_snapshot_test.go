package diag

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/hivellm/tml/internal/source"
)

// TestDiagnosticRenderSnapshot locks down the exact "file:line:col:
// kind: message" + caret-underline + note rendering spec.md §7
// requires, the same way the teacher pins interpreter output with
// go-snaps (internal/interp/fixture_test.go's TestDWScriptFixtures).
func TestDiagnosticRenderSnapshot(t *testing.T) {
	src := "fn add(a: I32, b: I32) -> I32 {\n  a + undefined\n}\n"
	f := source.NewFile("snap.tml", src)

	start := uint32(len("fn add(a: I32, b: I32) -> I32 {\n  a + "))
	span := source.Span{Start: start, End: start + uint32(len("undefined"))}

	d := New(KindType, "T010", span, "undefined name %q", "undefined").
		WithNote("did you mean a local or import?")

	snaps.MatchSnapshot(t, "single_diagnostic", d.Render(f))
}

// TestDiagnosticBagRenderSnapshot pins the Bag's multi-diagnostic,
// discovery-order rendering (spec.md §5 ordering guarantee).
func TestDiagnosticBagRenderSnapshot(t *testing.T) {
	src := "fn f(x: I32) -> I32 {\n  y + z\n}\n"
	f := source.NewFile("snap_bag.tml", src)

	ySpan := source.Span{Start: uint32(len("fn f(x: I32) -> I32 {\n  ")), End: 0}
	ySpan.End = ySpan.Start + 1
	zSpan := source.Span{Start: ySpan.Start + uint32(len("y + ")), End: ySpan.Start + uint32(len("y + z"))}

	bag := &Bag{}
	bag.Errorf(KindType, "T001", ySpan, "undefined name %q", "y")
	bag.Errorf(KindType, "T001", zSpan, "undefined name %q", "z")

	snaps.MatchSnapshot(t, "bag_two_diagnostics", bag.Render(f))
}
