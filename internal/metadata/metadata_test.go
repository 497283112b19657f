package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/parser"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	m := Module{
		Name:     "mem",
		FilePath: "lib/core/mem.tml",
		Functions: []FuncMeta{
			{
				Name:       "alloc",
				Params:     []string{"U64"},
				ReturnType: "*mut U8",
				IsLowlevel: true,
				Visibility: "pub",
			},
			{
				Name:       "zero",
				Params:     []string{"*mut U8", "U64"},
				ReturnType: "Unit",
				Visibility: "pub",
				ExternABI:  "C",
				LinkLibs:   []string{"c"},
			},
		},
		Structs: []string{"Layout"},
	}

	doc, err := Serialize(m)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Deserialize(doc)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Name != m.Name || got.FilePath != m.FilePath {
		t.Fatalf("name/file_path mismatch: %+v", got)
	}
	if len(got.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(got.Functions))
	}
	if got.Functions[1].ExternABI != "C" || len(got.Functions[1].LinkLibs) != 1 {
		t.Fatalf("extern fields lost in round trip: %+v", got.Functions[1])
	}
	if len(got.Structs) != 1 || got.Structs[0] != "Layout" {
		t.Fatalf("structs lost in round trip: %+v", got.Structs)
	}
}

func TestDeserializeRejectsInvalidJSON(t *testing.T) {
	if _, err := Deserialize("not json"); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestBuildModuleFromCheckedFile(t *testing.T) {
	text := "pub fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n\nstruct Point {\n  x: I32\n  y: I32\n}\n"
	file := source.NewFile("point.tml", text)
	bag := &diag.Bag{}
	p := parser.New(file, bag)
	f := p.ParseFile()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", bag.Render(file))
	}

	env := types.NewEnv(types.NewRegistry(), "test")
	env.DeclareFunc(types.FuncSig{
		Name:       "add",
		Params:     []types.Param{{Name: "a", Type: types.Primitive{Kind: types.I32}}, {Name: "b", Type: types.Primitive{Kind: types.I32}}},
		Ret:        types.Primitive{Kind: types.I32},
		Visibility: ast.VisPub,
	})

	m := BuildModule(f, env, "point", "point.tml")
	if m.Name != "point" {
		t.Fatalf("expected module name point, got %s", m.Name)
	}
	if len(m.Functions) != 1 || m.Functions[0].Name != "add" {
		t.Fatalf("expected one add function, got %+v", m.Functions)
	}
	if len(m.Functions[0].Params) != 2 || m.Functions[0].Params[0] != "I32" {
		t.Fatalf("unexpected params: %+v", m.Functions[0].Params)
	}
	if len(m.Structs) != 1 || m.Structs[0] != "Point" {
		t.Fatalf("expected struct Point recorded, got %+v", m.Structs)
	}
}

func TestMetadataAndObjectPaths(t *testing.T) {
	cases := map[string]struct{ meta, obj string }{
		"core::mem":  {"lib/core/compiled/mem.tml.meta", "lib/core/compiled/mem.o"},
		"std::math":  {"lib/std/compiled/math.tml.meta", "lib/std/compiled/math.o"},
		"test":       {"lib/test/compiled/test.tml.meta", "lib/test/compiled/test.o"},
		"app::utils": {"tml_modules/compiled/app::utils.tml.meta", "tml_modules/compiled/app::utils.o"},
	}
	for path, want := range cases {
		if got := GetMetadataPath(path); got != want.meta {
			t.Errorf("GetMetadataPath(%q) = %q, want %q", path, got, want.meta)
		}
		if got := GetObjectPath(path); got != want.obj {
			t.Errorf("GetObjectPath(%q) = %q, want %q", path, got, want.obj)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "mod.tml.meta")
	m := Module{Name: "sample", FilePath: "sample.tml"}

	if err := SaveToFile(m, path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected metadata file to exist at %s: %v", path, err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Name != m.Name {
		t.Fatalf("expected name %q, got %q", m.Name, loaded.Name)
	}
}
