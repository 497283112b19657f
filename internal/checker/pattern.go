package checker

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// BindPattern destructures t according to pat, binding every name it
// introduces into the current scope. Reports a mismatch if pat's
// shape cannot possibly match t (e.g. a StructPattern against a
// non-struct type).
//
// Grounded on
// _examples/original_source/compiler/include/types/checker.hpp's
// `bind_pattern` declaration.
func (c *Checker) BindPattern(pat ast.Pattern, t types.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.IdentPattern:
		c.Env.BindVar(p.Name, t, p.Mut)
		if p.Sub != nil {
			c.BindPattern(p.Sub, t)
		}
	case *ast.LiteralPattern:
		c.CheckExpr(p.Value)
	case *ast.RangePattern:
		if p.Low != nil {
			c.CheckExpr(p.Low)
		}
		if p.High != nil {
			c.CheckExpr(p.High)
		}
	case *ast.TuplePattern:
		tup, ok := c.Env.Resolve(t).(types.Tuple)
		if !ok {
			for _, e := range p.Elems {
				c.BindPattern(e, c.Env.FreshVar())
			}
			return
		}
		for i, e := range p.Elems {
			if p.Rest >= 0 && i >= p.Rest {
				idx := i + (len(tup.Elems) - len(p.Elems))
				if idx >= 0 && idx < len(tup.Elems) {
					c.BindPattern(e, tup.Elems[idx])
					continue
				}
			}
			if i < len(tup.Elems) {
				c.BindPattern(e, tup.Elems[i])
			}
		}
	case *ast.ArrayPattern:
		arrT := c.Env.Resolve(t)
		var elemType types.Type = c.Env.FreshVar()
		switch at := arrT.(type) {
		case types.Array:
			elemType = at.Elem
		case types.Slice:
			elemType = at.Elem
		}
		for _, e := range p.Elems {
			c.BindPattern(e, elemType)
		}
		if p.RestName != "" {
			c.Env.BindVar(p.RestName, types.Slice{Elem: elemType}, false)
		}
	case *ast.StructPattern:
		name := lastPathSegment(p.Type)
		def, ok := c.Env.LookupStruct(name)
		if !ok {
			c.undefinedNameError(p, "struct", name)
			for _, f := range p.Fields {
				if f.Pattern != nil {
					c.BindPattern(f.Pattern, c.Env.FreshVar())
				} else {
					c.Env.BindVar(f.Name, c.Env.FreshVar(), false)
				}
			}
			return
		}
		for _, f := range p.Fields {
			ft, has := def.Field(f.Name)
			var resolved types.Type = c.Env.FreshVar()
			if has {
				resolved = ft.Type
			} else {
				c.errorf(p, "T012", "struct %q has no field %q", name, f.Name)
			}
			if f.Pattern != nil {
				c.BindPattern(f.Pattern, resolved)
			} else {
				c.Env.BindVar(f.Name, resolved, false)
			}
		}
	case *ast.EnumPattern:
		name := lastPathSegment(p.Type)
		def, ok := c.Env.LookupEnum(name)
		if !ok {
			c.undefinedNameError(p, "enum", name)
			for _, sub := range p.Payload {
				c.BindPattern(sub, c.Env.FreshVar())
			}
			return
		}
		variant, ok := def.Variant(p.Variant)
		if !ok {
			c.errorf(p, "T013", "enum %q has no variant %q", name, p.Variant)
			for _, sub := range p.Payload {
				c.BindPattern(sub, c.Env.FreshVar())
			}
			return
		}
		for i, sub := range p.Payload {
			if i < len(variant.TupleFields) {
				c.BindPattern(sub, variant.TupleFields[i])
			} else {
				c.BindPattern(sub, c.Env.FreshVar())
			}
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			c.BindPattern(alt, t)
		}
	}
}
