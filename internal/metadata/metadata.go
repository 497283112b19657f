// Package metadata implements the compiled-module side channel spec.md
// §1 treats as an opaque external format: a small JSON document,
// keyed by module path, recording each public function's signature so
// a downstream compilation can link against an already-compiled
// module without re-parsing its source.
//
// Grounded on
// _examples/original_source/compiler/src/types/module_metadata.cpp's
// ModuleMetadata class: the same four responsibilities (serialize,
// deserialize, get_metadata_path, get_object_path) are kept, but where
// the original hand-rolls JSON with an ostringstream and a
// substring-search deserializer it calls "a placeholder... proper
// JSON parsing needed", this reader/writer uses `tidwall/sjson` to
// build the document and `tidwall/gjson` to read it back, since the
// example pack carries both.
package metadata

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FuncMeta is one function's published signature.
type FuncMeta struct {
	Name       string
	Params     []string // types.Type.Key() strings
	ReturnType string
	IsAsync    bool
	IsLowlevel bool
	Visibility string
	ExternABI  string // empty unless the function carries an @extern decorator
	LinkLibs   []string
}

// Module is the metadata recorded for one compiled module.
type Module struct {
	Name       string
	FilePath   string
	Functions  []FuncMeta
	Structs    []string
	Enums      []string
	TypeAliases []string
}

// Serialize renders m as the on-disk JSON document.
func Serialize(m Module) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, value)
	}

	set("name", m.Name)
	set("file_path", m.FilePath)
	if err != nil {
		return "", err
	}

	for i, f := range m.Functions {
		base := fmt.Sprintf("functions.%d", i)
		set(base+".name", f.Name)
		set(base+".params", f.Params)
		set(base+".return_type", f.ReturnType)
		set(base+".is_async", f.IsAsync)
		set(base+".is_lowlevel", f.IsLowlevel)
		set(base+".visibility", f.Visibility)
		if f.ExternABI != "" {
			set(base+".extern_abi", f.ExternABI)
		}
		if len(f.LinkLibs) > 0 {
			set(base+".link_libs", f.LinkLibs)
		}
	}
	if err != nil {
		return "", err
	}
	if len(m.Functions) == 0 {
		doc, err = sjson.SetRaw(doc, "functions", "[]")
		if err != nil {
			return "", err
		}
	}

	set("structs", m.Structs)
	set("enums", m.Enums)
	set("type_aliases", m.TypeAliases)
	if err != nil {
		return "", err
	}
	return doc, nil
}

// Deserialize parses a metadata document back into a Module. Unlike
// the original's placeholder (name extraction only), every field
// serialized above round-trips.
func Deserialize(content string) (Module, error) {
	if !gjson.Valid(content) {
		return Module{}, fmt.Errorf("metadata: invalid JSON document")
	}
	root := gjson.Parse(content)

	m := Module{
		Name:     root.Get("name").String(),
		FilePath: root.Get("file_path").String(),
	}
	root.Get("functions").ForEach(func(_, v gjson.Result) bool {
		f := FuncMeta{
			Name:       v.Get("name").String(),
			ReturnType: v.Get("return_type").String(),
			IsAsync:    v.Get("is_async").Bool(),
			IsLowlevel: v.Get("is_lowlevel").Bool(),
			Visibility: v.Get("visibility").String(),
			ExternABI:  v.Get("extern_abi").String(),
		}
		v.Get("params").ForEach(func(_, p gjson.Result) bool {
			f.Params = append(f.Params, p.String())
			return true
		})
		v.Get("link_libs").ForEach(func(_, l gjson.Result) bool {
			f.LinkLibs = append(f.LinkLibs, l.String())
			return true
		})
		m.Functions = append(m.Functions, f)
		return true
	})
	root.Get("structs").ForEach(func(_, v gjson.Result) bool {
		m.Structs = append(m.Structs, v.String())
		return true
	})
	root.Get("enums").ForEach(func(_, v gjson.Result) bool {
		m.Enums = append(m.Enums, v.String())
		return true
	})
	root.Get("type_aliases").ForEach(func(_, v gjson.Result) bool {
		m.TypeAliases = append(m.TypeAliases, v.String())
		return true
	})
	return m, nil
}

// GetMetadataPath maps a module path ("core::mem", "std::math",
// "test", or a bare user module path) to its on-disk `.tml.meta`
// location, unchanged in shape from the original's path scheme.
func GetMetadataPath(modulePath string) string {
	switch {
	case strings.HasPrefix(modulePath, "core::"):
		return "lib/core/compiled/" + strings.TrimPrefix(modulePath, "core::") + ".tml.meta"
	case strings.HasPrefix(modulePath, "std::"):
		return "lib/std/compiled/" + strings.TrimPrefix(modulePath, "std::") + ".tml.meta"
	case modulePath == "test":
		return "lib/test/compiled/test.tml.meta"
	default:
		return "tml_modules/compiled/" + modulePath + ".tml.meta"
	}
}

// GetObjectPath is GetMetadataPath's analogue for the compiled object
// file a metadata document describes.
func GetObjectPath(modulePath string) string {
	switch {
	case strings.HasPrefix(modulePath, "core::"):
		return "lib/core/compiled/" + strings.TrimPrefix(modulePath, "core::") + ".o"
	case strings.HasPrefix(modulePath, "std::"):
		return "lib/std/compiled/" + strings.TrimPrefix(modulePath, "std::") + ".o"
	case modulePath == "test":
		return "lib/test/compiled/test.o"
	default:
		return "tml_modules/compiled/" + modulePath + ".o"
	}
}
