package ast

import "github.com/hivellm/tml/internal/source"

// File is the parser's output for one source file: module metadata
// (module-doc tokens, optional explicit module name) plus an ordered
// list of top-level declarations (spec.md §4.2 "Contract").
type File struct {
	ModuleDoc string
	Module    *ModuleDecl // nil if the file has no explicit `module` declaration
	Decls     []Decl
}

func (f *File) Span() source.Span {
	if f.Module != nil {
		return f.Module.Span()
	}
	if len(f.Decls) > 0 {
		return f.Decls[0].Span()
	}
	return source.Span{}
}
