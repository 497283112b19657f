package types

import (
	"fmt"
	"strings"
	"sync"
)

// ReExport records one `pub use` re-export (spec.md §3.5 "Modules").
type ReExport struct {
	SourcePath string
	IsGlob     bool
	Symbols    []string
	Alias      string
}

// Module is one compiled unit's symbol tables: functions, structs,
// enums, behaviors, classes, interfaces, type aliases, and
// submodule/re-export links.
//
// Grounded on
// _examples/original_source/compiler/include/types/module.hpp's
// `Module` struct.
type Module struct {
	Name     string
	FilePath string

	Funcs      map[string]FuncSig
	Structs    map[string]*StructDef
	Enums      map[string]*EnumDef
	Behaviors  map[string]*BehaviorDef
	Classes    map[string]*ClassDef
	Interfaces map[string]*InterfaceDef
	Aliases    map[string]Type
	Consts     map[string]ConstValue
	Submodules map[string]string

	ReExports []ReExport
}

func newModule(name, path string) *Module {
	return &Module{
		Name: name, FilePath: path,
		Funcs: map[string]FuncSig{}, Structs: map[string]*StructDef{},
		Enums: map[string]*EnumDef{}, Behaviors: map[string]*BehaviorDef{},
		Classes: map[string]*ClassDef{}, Interfaces: map[string]*InterfaceDef{},
		Aliases: map[string]Type{}, Consts: map[string]ConstValue{},
		Submodules: map[string]string{},
	}
}

// Symbol is any one named thing a module can export, returned from a
// cross-module lookup so callers can type-switch on what they got.
type Symbol struct {
	Func      *FuncSig
	Struct    *StructDef
	Enum      *EnumDef
	Behavior  *BehaviorDef
	Class     *ClassDef
	Interface *InterfaceDef
	Alias     Type
}

func (m *Module) lookupLocal(name string) (Symbol, bool) {
	if f, ok := m.Funcs[name]; ok {
		return Symbol{Func: &f}, true
	}
	if s, ok := m.Structs[name]; ok {
		return Symbol{Struct: s}, true
	}
	if e, ok := m.Enums[name]; ok {
		return Symbol{Enum: e}, true
	}
	if b, ok := m.Behaviors[name]; ok {
		return Symbol{Behavior: b}, true
	}
	if c, ok := m.Classes[name]; ok {
		return Symbol{Class: c}, true
	}
	if i, ok := m.Interfaces[name]; ok {
		return Symbol{Interface: i}, true
	}
	if a, ok := m.Aliases[name]; ok {
		return Symbol{Alias: a}, true
	}
	return Symbol{}, false
}

// Registry is the central registry of all modules in a compilation,
// keyed by `::`-joined module path (e.g. "std::io").
//
// Grounded on
// _examples/original_source/compiler/include/types/module.hpp's
// `ModuleRegistry` class; adapted from a mutex-protected C++ singleton
// into a Go struct guarded by its own RWMutex field, matching how
// the teacher guards its own shared registries (config.Registry in
// the teacher's internal/config package).
type Registry struct {
	mu            sync.RWMutex
	modules       map[string]*Module
	fileToModule  map[string]string
}

// NewRegistry returns an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]*Module{}, fileToModule: map[string]string{}}
}

// Register adds or replaces the module at path.
func (r *Registry) Register(path string, m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[path] = m
}

// GetOrCreate returns the module at path, creating an empty one if
// absent.
func (r *Registry) GetOrCreate(path string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modules[path]; ok {
		return m
	}
	name := path
	if i := strings.LastIndex(path, "::"); i >= 0 {
		name = path[i+2:]
	}
	m := newModule(name, "")
	r.modules[path] = m
	return m
}

// Get returns the module at path, if registered.
func (r *Registry) Get(path string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[path]
	return m, ok
}

// Has reports whether path is registered.
func (r *Registry) Has(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[path]
	return ok
}

// List returns every registered module path.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	return paths
}

// RegisterFile records that filePath belongs to modulePath, so
// diagnostics and `use` resolution can map a source file back to its
// module.
func (r *Registry) RegisterFile(filePath, modulePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileToModule[filePath] = modulePath
}

// ResolveFile returns the module path registered for filePath.
func (r *Registry) ResolveFile(filePath string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.fileToModule[filePath]
	return p, ok
}

// LookupSymbol resolves name within modulePath, following aliased,
// selected-symbol and glob re-exports recursively if the symbol isn't
// defined locally (spec.md §3.5
// "pub use core::ops::*").
func (r *Registry) LookupSymbol(modulePath, name string) (Symbol, bool) {
	r.mu.RLock()
	m, ok := r.modules[modulePath]
	r.mu.RUnlock()
	if !ok {
		return Symbol{}, false
	}
	if sym, ok := m.lookupLocal(name); ok {
		return sym, true
	}
	for _, re := range m.ReExports {
		if re.Alias == name {
			base := lastSegment(re.SourcePath)
			return r.LookupSymbol(parentPath(re.SourcePath), coalesce(base, name))
		}
		if !re.IsGlob {
			for _, s := range re.Symbols {
				if s == name {
					return r.LookupSymbol(re.SourcePath, name)
				}
			}
			continue
		}
		if sym, ok := r.LookupSymbol(re.SourcePath, name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[:i]
	}
	return path
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// QualifiedName joins a module path and a symbol name with `::`, the
// canonical form used in diagnostics and mangled names.
func QualifiedName(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return fmt.Sprintf("%s::%s", modulePath, name)
}
