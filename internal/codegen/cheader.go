package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hivellm/tml/internal/ast"
)

// CHeaderOptions controls the include-guard/extern-"C" wrapping a
// generated header carries.
type CHeaderOptions struct {
	GuardPrefix      string
	AddIncludeGuards bool
	AddExternC       bool
}

// GenCHeader renders a C header exposing every public top-level
// function as a `tml_`-prefixed declaration, for linking generated
// object code from C. Non-public functions and anything that isn't a
// plain function (generic functions, methods, behaviors) are skipped
// — FFI only ever sees the module's flat public function surface.
//
// Grounded on
// _examples/original_source/packages/compiler/src/codegen/c_header_gen.cpp's
// CHeaderGen class: gen_guard_name, map_type_to_c, gen_func_decl, and
// generate are kept as four distinct steps in the same order, with
// the guard-name sanitization and the include/extern-C/guard
// wrapping logic carried over unchanged in shape.
func (g *Generator) GenCHeader(file *ast.File, moduleName string, opts CHeaderOptions) (string, error) {
	var header strings.Builder

	guard := genGuardName(moduleName, opts.GuardPrefix)
	if opts.AddIncludeGuards {
		header.WriteString("#ifndef " + guard + "\n")
		header.WriteString("#define " + guard + "\n\n")
	}

	header.WriteString("#include <stdint.h>\n")
	header.WriteString("#include <stdbool.h>\n\n")

	if opts.AddExternC {
		header.WriteString("#ifdef __cplusplus\n")
		header.WriteString("extern \"C\" {\n")
		header.WriteString("#endif\n\n")
	}

	header.WriteString("// tml library: " + moduleName + "\n")
	header.WriteString("// Auto-generated C header for FFI\n\n")

	hasFunctions := false
	for _, d := range file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		decl := g.genCFuncDecl(fn)
		if decl == "" {
			continue
		}
		header.WriteString(decl + "\n")
		hasFunctions = true
	}

	if !hasFunctions {
		return "", fmt.Errorf("no public functions found in module %s", moduleName)
	}

	if opts.AddExternC {
		header.WriteString("\n#ifdef __cplusplus\n")
		header.WriteString("}\n")
		header.WriteString("#endif\n")
	}
	if opts.AddIncludeGuards {
		header.WriteString("\n#endif // " + guard + "\n")
	}

	return header.String(), nil
}

func genGuardName(moduleName, prefix string) string {
	guard := prefix
	if guard == "" {
		guard = "TML_" + moduleName + "_H"
	} else {
		guard = prefix + "_H"
	}
	var sb strings.Builder
	for _, r := range guard {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToUpper(r))
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// genCFuncDecl renders one public function's C prototype, or "" for a
// non-public function (skipped, not an error — the header only
// surfaces the public FFI boundary) or a generic function (monomorphic
// instantiations have no single fixed C signature to publish).
func (g *Generator) genCFuncDecl(fn *ast.FuncDecl) string {
	sig, ok := g.tenv.LookupFunc(fn.Name)
	if !ok || sig.Visibility != ast.VisPub || len(fn.Generics) > 0 {
		return ""
	}

	retType := "void"
	if fn.RetType != nil {
		retType = mapTypeToC(fn.RetType)
	}

	var params []string
	if len(fn.Params) == 0 {
		params = append(params, "void")
	} else {
		for _, p := range fn.Params {
			params = append(params, mapTypeToC(p.Type)+" "+p.Name)
		}
	}

	return fmt.Sprintf("%s tml_%s(%s);", retType, fn.Name, strings.Join(params, ", "))
}

// mapTypeToC maps an AST type node (the unresolved parser-level
// syntax, not the checker's semantic Type) to its C spelling —
// cheader.go works one level upstream of the rest of codegen
// precisely because a public FFI surface must reflect what the
// source declared, not whatever the checker additionally inferred.
func mapTypeToC(t ast.Type) string {
	if t == nil {
		return "void"
	}
	switch n := t.(type) {
	case *ast.NamedType:
		if len(n.Path.Segments) == 1 {
			switch n.Path.Segments[0] {
			case "I8":
				return "int8_t"
			case "I16":
				return "int16_t"
			case "I32":
				return "int32_t"
			case "I64":
				return "int64_t"
			case "U8":
				return "uint8_t"
			case "U16":
				return "uint16_t"
			case "U32":
				return "uint32_t"
			case "U64":
				return "uint64_t"
			case "F32":
				return "float"
			case "F64":
				return "double"
			case "Bool":
				return "bool"
			case "Str":
				return "const char*"
			default:
				return n.Path.Segments[0]
			}
		}
		return "void*"
	case *ast.RefType:
		return mapTypeToC(n.Elem) + "*"
	case *ast.PointerType:
		return mapTypeToC(n.Elem) + "*"
	default:
		return "void*"
	}
}
