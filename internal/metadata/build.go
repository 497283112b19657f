package metadata

import (
	"os"
	"path/filepath"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// BuildModule assembles a Module from a checked file's public surface,
// the same information cheader.go's genCFuncDecl reads to publish an
// FFI prototype: it walks file.Decls for top-level functions, looks up
// each one's resolved FuncSig in tenv, and records the pieces a
// downstream compilation needs without re-parsing this file.
func BuildModule(file *ast.File, tenv *types.Env, name, filePath string) Module {
	m := Module{Name: name, FilePath: filePath}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			m.Functions = append(m.Functions, buildFuncMeta(n, tenv))
		case *ast.StructDecl:
			m.Structs = append(m.Structs, n.Name)
		case *ast.EnumDecl:
			m.Enums = append(m.Enums, n.Name)
		case *ast.TypeAliasDecl:
			m.TypeAliases = append(m.TypeAliases, n.Name)
		}
	}
	return m
}

func buildFuncMeta(fn *ast.FuncDecl, tenv *types.Env) FuncMeta {
	sig, ok := tenv.LookupFunc(fn.Name)
	fm := FuncMeta{Name: fn.Name, ReturnType: "Unit"}
	if ok {
		for _, p := range sig.Params {
			fm.Params = append(fm.Params, p.Type.Key())
		}
		if sig.Ret != nil {
			fm.ReturnType = sig.Ret.Key()
		}
		fm.IsAsync = sig.IsAsync
		fm.IsLowlevel = sig.IsLowlevel
		fm.Visibility = visibilityName(sig.Visibility)
	}
	for _, dec := range fn.Decorators {
		if dec.Name != "extern" || len(dec.Args) == 0 {
			continue
		}
		if lit, ok := dec.Args[0].(*ast.StringLit); ok {
			fm.ExternABI = lit.Value
		}
	}
	return fm
}

func visibilityName(v ast.Visibility) string {
	switch v {
	case ast.VisPub:
		return "pub"
	case ast.VisPrivate:
		return "private"
	case ast.VisProtected:
		return "protected"
	default:
		return "default"
	}
}

// LoadFromFile reads and parses the metadata document at path. A
// missing file is reported as an error, matching the original's
// ifstream-open-failure check (the caller distinguishes "not yet
// compiled" from "corrupt metadata" itself).
func LoadFromFile(path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Module{}, err
	}
	return Deserialize(string(data))
}

// SaveToFile serializes m and writes it to path, creating parent
// directories as needed.
func SaveToFile(m Module, path string) error {
	doc, err := Serialize(m)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

// HasCompiledMetadata reports whether modulePath already has a
// metadata document on disk.
func HasCompiledMetadata(modulePath string) bool {
	_, err := os.Stat(GetMetadataPath(modulePath))
	return err == nil
}
