package codegen

import (
	"fmt"
	"strings"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/config"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

// pendingFunc/pendingStruct/pendingEnum are monomorphization-worklist
// entries: a mangled name paired with everything needed to emit the
// instantiation's body (spec.md §4.6 "Monomorphization").
type pendingFunc struct {
	mangled  string
	sig      types.FuncSig
	typeArgs []types.Type
}

type pendingStruct struct {
	mangled  string
	def      *types.StructDef
	typeArgs []types.Type
}

type pendingEnum struct {
	mangled  string
	def      *types.EnumDef
	typeArgs []types.Type
}

// pendingClosure is a queued anonymous-function body discovered while
// lowering a ClosureExpr; genClosure only emits the fat-pointer value
// at its call site, the function itself is drained alongside the
// monomorphization worklist so forward references to `@closure.N`
// always resolve (spec.md §4.6 "Closures").
type pendingClosure struct {
	fnName       string
	params       []ast.ClosureParam
	retType      types.Type
	body         ast.Expr
	captures     []string
	captureTypes []types.Type
}

// local is one function-body binding: its SSA pointer (the alloca
// result) and its semantic type, keyed by source name.
type local struct {
	ptr string
	typ types.Type
}

// dropEntry records a place needing a Drop call at scope exit, in
// binding order (reversed at emission time, spec.md §4.6 "RAII/drop
// insertion").
type dropEntry struct {
	ptr string
	typ types.Type
}

// Generator lowers one checked file to LLVM textual IR. It is the Go
// analogue of the original's `LLVMIRGen` class; fields follow that
// class's own state plus the teacher's internal/bytecode.Compiler
// shape for the per-function local/scope bookkeeping
// (internal/bytecode/compiler_core.go).
type Generator struct {
	w      *Writer
	tenv   *types.Env
	errs   *diag.Bag
	Options config.Options
	srcFile *source.File

	// Monomorphization worklist.
	seenFuncs   map[string]bool
	seenStructs map[string]bool
	seenEnums   map[string]bool
	pendingFuncs   []pendingFunc
	pendingStructs []pendingStruct
	pendingEnums   []pendingEnum
	pendingClosures []pendingClosure

	// Vtables already emitted, keyed by "Type.Behavior".
	vtables map[string]bool

	// Per-function state, reset at the start of each function body.
	locals      []map[string]local
	loopStart   []string
	loopEnd     []string
	loopStackSave []string
	scopeDrops  [][]dropEntry
	blockTerminated bool

	// Debug info.
	debugMeta       []string
	debugCounter    int
	fileID, cuID    int

	// Interned string literal constants, emitted in the preamble.
	stringPool []string

	// Debug info scope state.
	currentDebugScope int

	// Coverage instrumentation state (Options.CoverageEnabled), spec.md
	// §5 "coverage instrumentation call sites". funcCoverageIDs keys a
	// function's stable id by name, assigned in first-seen order;
	// nextBranchID is a bare incrementing counter, one per lowered
	// branch point.
	funcCoverageIDs map[string]int
	nextBranchID    int
}

// New creates a Generator over tenv (the shared semantic environment
// produced by the type checker) reporting LLVMGenError diagnostics
// into errs. srcFile may be nil; it is only consulted for line/column
// numbers, by debug locations and by coverage line instrumentation.
func New(tenv *types.Env, errs *diag.Bag, opts config.Options, srcFile *source.File) *Generator {
	return &Generator{
		w:           NewWriter(),
		tenv:        tenv,
		errs:        errs,
		Options:     opts,
		srcFile:     srcFile,
		seenFuncs:   map[string]bool{},
		seenStructs: map[string]bool{},
		seenEnums:   map[string]bool{},
		vtables:     map[string]bool{},
		funcCoverageIDs: map[string]int{},
	}
}

// Generate lowers file to a complete LLVM IR module, returning the
// rendered text. Errors are reported via the Bag passed to New; the
// generator keeps going after one to maximize the diagnostic batch
// (spec.md §4.6 "Errors").
func (g *Generator) Generate(file *ast.File) string {
	g.emitPreamble()

	for _, d := range file.Decls {
		g.genTopDecl(d)
	}
	g.drainWorklist()

	g.emitDebugFooter()

	var out strings.Builder
	out.WriteString(g.preambleHeader())
	out.WriteString(g.stringConstants())
	out.WriteString(g.w.RuntimeDecls())
	out.WriteString("\n")
	out.WriteString(g.w.Body())
	return out.String()
}

func (g *Generator) preambleHeader() string {
	var sb strings.Builder
	if g.Options.TargetTriple != "" {
		sb.WriteString("target triple = \"" + g.Options.TargetTriple + "\"\n\n")
	}
	return sb.String()
}

// stringConstants renders every interned string literal as an
// internal global constant, referenced by genStringLit as `@.str.N`.
func (g *Generator) stringConstants() string {
	if len(g.stringPool) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, s := range g.stringPool {
		sb.WriteString(fmt.Sprintf("@.str.%d = internal constant [%d x i8] c\"%s\\00\"\n", i, len(s)+1, s))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (g *Generator) emitPreamble() {
	g.emitDebugInfoHeader()
}

func (g *Generator) genTopDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		if len(n.Generics) == 0 {
			g.genFunc(n, nil, n.Name)
		}
		// Generic top-level functions are only emitted on demand, via
		// requireFuncInstantiation from a call site.
	case *ast.StructDecl:
		if len(n.Generics) == 0 {
			g.requireStructInstantiation(n.Name, nil)
		}
	case *ast.EnumDecl:
		if len(n.Generics) == 0 {
			g.requireEnumInstantiation(n.Name, nil)
		}
	case *ast.ImplDecl:
		g.genImpl(n)
	case *ast.ClassDecl:
		g.genClass(n)
	}
}

// drainWorklist emits every pending type then every pending function,
// re-entering the loop if function emission discovered new type uses,
// until a fixpoint is reached (spec.md §4.6 "Monomorphization").
func (g *Generator) drainWorklist() {
	for len(g.pendingStructs) > 0 || len(g.pendingEnums) > 0 || len(g.pendingFuncs) > 0 || len(g.pendingClosures) > 0 {
		for len(g.pendingStructs) > 0 {
			s := g.pendingStructs[0]
			g.pendingStructs = g.pendingStructs[1:]
			g.emitStructType(s)
		}
		for len(g.pendingEnums) > 0 {
			e := g.pendingEnums[0]
			g.pendingEnums = g.pendingEnums[1:]
			g.emitEnumType(e)
		}
		for len(g.pendingFuncs) > 0 {
			f := g.pendingFuncs[0]
			g.pendingFuncs = g.pendingFuncs[1:]
			g.emitFuncInstantiation(f)
		}
		for len(g.pendingClosures) > 0 {
			c := g.pendingClosures[0]
			g.pendingClosures = g.pendingClosures[1:]
			g.emitClosureBody(c)
		}
	}
}

func (g *Generator) errorf(span ast.Node, format string, args ...interface{}) {
	g.errs.Add(diag.New(diag.KindCodegen, "C001", span.Span(), format, args...))
}

func (g *Generator) resolveType(t ast.Type) types.Type {
	if t == nil {
		return types.Primitive{Kind: types.Unit}
	}
	return types.NewResolver(g.tenv, nil).Resolve(t)
}

// pushScope/popScope bracket a lexical block's locals and its drop
// list (spec.md §4.6 "RAII/drop insertion").
func (g *Generator) pushScope() {
	g.locals = append(g.locals, map[string]local{})
	g.scopeDrops = append(g.scopeDrops, nil)
}

func (g *Generator) popScope() {
	g.locals = g.locals[:len(g.locals)-1]
	g.scopeDrops = g.scopeDrops[:len(g.scopeDrops)-1]
}

func (g *Generator) defineLocal(name, ptr string, typ types.Type) {
	g.locals[len(g.locals)-1][name] = local{ptr: ptr, typ: typ}
}

func (g *Generator) lookupLocal(name string) (local, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if l, ok := g.locals[i][name]; ok {
			return l, true
		}
	}
	return local{}, false
}

// recordDrop registers ptr/typ for a Drop call when the enclosing
// scope exits, if typ's type implements the Drop behavior.
func (g *Generator) recordDrop(ptr string, typ types.Type) {
	if !g.implementsDrop(typ) {
		return
	}
	top := len(g.scopeDrops) - 1
	g.scopeDrops[top] = append(g.scopeDrops[top], dropEntry{ptr: ptr, typ: typ})
}

func (g *Generator) implementsDrop(t types.Type) bool {
	named, ok := t.(types.Named)
	if !ok {
		return false
	}
	_, _, ok = g.tenv.FindImpl(named, "drop")
	return ok
}

// emitScopeDrops emits Drop calls for the current scope's recorded
// places in reverse binding order, run on every exit path (fall
// through, return, break, continue, throw, try-propagation).
func (g *Generator) emitScopeDrops() {
	if g.blockTerminated {
		return
	}
	top := len(g.scopeDrops) - 1
	if top < 0 {
		return
	}
	drops := g.scopeDrops[top]
	for i := len(drops) - 1; i >= 0; i-- {
		d := drops[i]
		mangled := g.MangleNamed(typeName(d.typ), nil)
		g.w.EmitLine(fmt.Sprintf("  call void @%s__drop(ptr %s)", mangled, d.ptr))
	}
}

func typeName(t types.Type) string {
	if n, ok := t.(types.Named); ok {
		return n.Name
	}
	return "unknown"
}
