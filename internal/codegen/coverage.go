package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/source"
)

// Coverage instrumentation, enabled only when Options.CoverageEnabled
// is set (spec.md §5's `--coverage` driver flag). Three call sites are
// emitted — function entry, per-statement line, and per-branch —
// mirroring the func/line/branch granularity the runtime's
// find_or_create_func/_line/_branch tables key on
// (_examples/original_source/packages/test/runtime/coverage.c).
// tml_cover_func/_line/_branch are declared with integer ids rather
// than the runtime's name/file strings: codegen assigns each function
// a stable id the first time it is lowered (funcCoverageIDs) and each
// branch point a bare sequential id, the same role the runtime's
// linear-scan find_or_create tables play without needing string
// arguments threaded through every call site.

// emitCoverageFuncEntry instruments a function's entry block with a
// single tml_cover_func call tagging it with a per-name stable id.
func (g *Generator) emitCoverageFuncEntry(name string) {
	if !g.Options.CoverageEnabled {
		return
	}
	id, ok := g.funcCoverageIDs[name]
	if !ok {
		id = len(g.funcCoverageIDs)
		g.funcCoverageIDs[name] = id
	}
	g.w.EmitLine(fmt.Sprintf("  call void @tml_cover_func(i32 %d)", id))
}

// emitCoverageLine instruments one statement with its source line,
// called once per genStmt invocation.
func (g *Generator) emitCoverageLine(span source.Span) {
	if !g.Options.CoverageEnabled {
		return
	}
	g.w.EmitLine(fmt.Sprintf("  call void @tml_cover_line(i32 %d)", g.spanLine(span)))
}

// emitCoverageBranch instruments a conditional branch with its
// already-computed `i1` condition value, recording which side was
// taken.
func (g *Generator) emitCoverageBranch(cond string) {
	if !g.Options.CoverageEnabled {
		return
	}
	id := g.nextBranchID
	g.nextBranchID++
	g.w.EmitLine(fmt.Sprintf("  call void @tml_cover_branch(i32 %d, i1 %s)", id, cond))
}
