package parser

import (
	"testing"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/source"
)

func parseSrc(t *testing.T, text string) (*ast.File, *diag.Bag) {
	t.Helper()
	file := source.NewFile("test.tml", text)
	bag := &diag.Bag{}
	p := New(file, bag)
	f := p.ParseFile()
	return f, bag
}

func TestParseLetAndExprStmt(t *testing.T) {
	f, bag := parseSrc(t, "fn main() {\n  let x: I32 = 1 + 2 * 3\n  x\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	if len(f.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(f.Decls))
	}
	fd, ok := f.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", f.Decls[0])
	}
	if fd.Name != "main" || fd.Body == nil {
		t.Fatalf("bad func decl: %+v", fd)
	}
	if len(fd.Body.Stmts) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(fd.Body.Stmts))
	}
	let, ok := fd.Body.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected LetStmt, got %T", fd.Body.Stmts[0])
	}
	bin, ok := let.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level '+' binary expr, got %#v", let.Value)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected '*' to bind tighter than '+', got %#v", bin.Right)
	}
	if fd.Body.Tail == nil {
		t.Fatalf("expected tail expression 'x'")
	}
}

func TestIfConditionNotMistakenForStructLit(t *testing.T) {
	f, bag := parseSrc(t, "fn f(flag: Bool) -> I32 {\n  if flag {\n    1\n  } else {\n    2\n  }\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	fd := f.Decls[0].(*ast.FuncDecl)
	ifExpr, ok := fd.Body.Tail.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected tail IfExpr, got %#v", fd.Body.Tail)
	}
	if _, ok := ifExpr.Cond.(*ast.IdentExpr); !ok {
		t.Fatalf("expected plain ident condition, got %#v", ifExpr.Cond)
	}
}

func TestStructLiteralOutsideCondition(t *testing.T) {
	f, bag := parseSrc(t, "fn f() -> Point {\n  Point { x: 1, y: 2 }\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	fd := f.Decls[0].(*ast.FuncDecl)
	lit, ok := fd.Body.Tail.(*ast.StructLit)
	if !ok {
		t.Fatalf("expected StructLit tail, got %#v", fd.Body.Tail)
	}
	if len(lit.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(lit.Fields))
	}
}

func TestWhenExprWithOrPatternAndGuard(t *testing.T) {
	f, bag := parseSrc(t, "fn f(x: I32) -> Str {\n"+
		"  when x {\n"+
		"    1 | 2 => \"small\"\n"+
		"    n if n > 10 => \"big\"\n"+
		"    _ => \"other\"\n"+
		"  }\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	fd := f.Decls[0].(*ast.FuncDecl)
	when, ok := fd.Body.Tail.(*ast.WhenExpr)
	if !ok {
		t.Fatalf("expected WhenExpr tail, got %#v", fd.Body.Tail)
	}
	if len(when.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(when.Arms))
	}
	if _, ok := when.Arms[0].Pattern.(*ast.OrPattern); !ok {
		t.Fatalf("expected first arm to be an OrPattern, got %#v", when.Arms[0].Pattern)
	}
	if when.Arms[1].Guard == nil {
		t.Fatalf("expected second arm to carry a guard")
	}
}

func TestInterpolatedStringAssembly(t *testing.T) {
	f, bag := parseSrc(t, `fn f(name: Str) -> Str { "hi {name}!" }`+"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	fd := f.Decls[0].(*ast.FuncDecl)
	is, ok := fd.Body.Tail.(*ast.InterpStringExpr)
	if !ok {
		t.Fatalf("expected InterpStringExpr tail, got %#v", fd.Body.Tail)
	}
	if len(is.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(is.Segments))
	}
	if is.Segments[0].Text != "hi " || is.Segments[1].Text != "!" {
		t.Fatalf("unexpected segment text: %#v", is.Segments)
	}
	if _, ok := is.Segments[0].Expr.(*ast.IdentExpr); !ok {
		t.Fatalf("expected first segment's expr to be an ident, got %#v", is.Segments[0].Expr)
	}
}

func TestGenericStructAndImplParse(t *testing.T) {
	src := "struct Box[T] {\n  value: T\n}\n\n" +
		"behavior Show {\n  fn show(self: ref Self) -> Str\n}\n\n" +
		"impl Show for Box[I32] {\n  fn show(self: ref Self) -> Str { \"box\" }\n}\n"
	f, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	if len(f.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(f.Decls))
	}
	sd, ok := f.Decls[0].(*ast.StructDecl)
	if !ok || sd.Name != "Box" || len(sd.Generics) != 1 {
		t.Fatalf("bad struct decl: %#v", f.Decls[0])
	}
	impl, ok := f.Decls[2].(*ast.ImplDecl)
	if !ok || impl.Behavior == nil || impl.Behavior.Path.String() != "Show" {
		t.Fatalf("bad impl decl: %#v", f.Decls[2])
	}
}

func TestRangeAndForLoop(t *testing.T) {
	f, bag := parseSrc(t, "fn f() {\n  for i in 0..10 {\n    i\n  }\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	fd := f.Decls[0].(*ast.FuncDecl)
	forExpr, ok := fd.Body.Tail.(*ast.ForExpr)
	if !ok {
		t.Fatalf("expected ForExpr tail, got %#v", fd.Body.Tail)
	}
	rng, ok := forExpr.Iterable.(*ast.RangeExpr)
	if !ok || rng.Inclusive {
		t.Fatalf("expected exclusive range, got %#v", forExpr.Iterable)
	}
}

func TestClassWithConstructorAndProperty(t *testing.T) {
	src := "class Counter {\n" +
		"  count: I32 = 0\n" +
		"  new(start: I32) {\n" +
		"    this.count = start\n" +
		"  }\n" +
		"  value {\n" +
		"    get { this.count }\n" +
		"  }\n" +
		"}\n"
	f, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", bag.Render(source.NewFile("", "")))
	}
	cd, ok := f.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %#v", f.Decls[0])
	}
	if cd.Constructor == nil {
		t.Fatalf("expected a constructor")
	}
	if len(cd.Properties) != 1 || cd.Properties[0].Getter == nil {
		t.Fatalf("expected one property with a getter, got %#v", cd.Properties)
	}
}
