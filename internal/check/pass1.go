package check

import "github.com/uya-lang/uyac/internal/ast"

// pass1 walks top-level declarations once, populating the function
// table and the struct/enum type registries pass 2 consults. Per
// spec.md §4.4 point 1, every method inside an `impl S : I { ... }`
// block has `Self` rewritten to `S` in its parameter/return types
// before its signature is registered, and a single-parameter `drop`
// method is renamed `drop_T` where T is its parameter's named (or
// pointed-to) type.
func (c *Checker) pass1(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			c.structs[decl.Name] = decl
		case *ast.EnumDecl:
			c.enums[decl.Name] = decl
		case *ast.ErrorDecl:
			for _, v := range decl.Values {
				c.errorNames[v] = true
			}
		case *ast.FuncDecl:
			c.registerFunc(decl, "")
		case *ast.ImplDecl:
			c.registerImpl(decl)
		}
	}
}

func (c *Checker) registerImpl(id *ast.ImplDecl) {
	for _, m := range id.Methods {
		c.registerFunc(m, id.StructName)
	}
}

func (c *Checker) registerFunc(fd *ast.FuncDecl, selfStruct string) {
	if selfStruct != "" {
		fd.ReturnType = rewriteSelf(fd.ReturnType, selfStruct)
		for _, p := range fd.Params {
			p.Type = rewriteSelf(p.Type, selfStruct)
		}
	}

	name := fd.Name
	if selfStruct != "" && fd.Name == "drop" && len(fd.Params) == 1 {
		if elemName, ok := pointeeOrNamedName(fd.Params[0].Type); ok {
			name = "drop_" + elemName
		}
	}

	paramTypes := make([]*ast.Type, len(fd.Params))
	for i, p := range fd.Params {
		paramTypes[i] = p.Type
	}
	sig := &FuncSig{
		Name:       name,
		ParamTypes: paramTypes,
		ReturnType: fd.ReturnType,
		IsExtern:   fd.IsExtern,
		HasVarargs: fd.IsVarargs,
		Loc:        fd.L,
	}
	if !c.funcs.Insert(sig) {
		c.errorf(fd.L, "duplicate function %q", name)
	}
}

// pointeeOrNamedName returns a named type's name, unwrapping one level
// of pointer, for the `drop_T` renaming rule.
func pointeeOrNamedName(t *ast.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.Kind == ast.TypePointer && t.Elem != nil && t.Elem.Kind == ast.TypeNamed {
		return t.Elem.Name, true
	}
	if t.Kind == ast.TypeNamed {
		return t.Name, true
	}
	return "", false
}

// rewriteSelf returns a copy of t with every occurrence of the named
// type `Self` replaced by structName, recursing through pointer,
// array, tuple, error-union, atomic, and function-type wrappers.
func rewriteSelf(t *ast.Type, structName string) *ast.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case ast.TypeNamed:
		if t.Name == "Self" {
			return ast.NamedType(structName, t.Loc)
		}
		return t
	case ast.TypePointer:
		return ast.PointerType(rewriteSelf(t.Elem, structName), t.Loc)
	case ast.TypeArray:
		return ast.ArrayType(rewriteSelf(t.Elem, structName), t.SizeExpr, t.Loc)
	case ast.TypeErrorUnion:
		return ast.ErrorUnionType(rewriteSelf(t.Elem, structName), t.Loc)
	case ast.TypeAtomic:
		return ast.AtomicType(rewriteSelf(t.Elem, structName), t.Loc)
	case ast.TypeTuple:
		elems := make([]*ast.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = rewriteSelf(e, structName)
		}
		return ast.TupleType(elems, t.Loc)
	case ast.TypeFn:
		params := make([]*ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = rewriteSelf(p, structName)
		}
		return ast.FnType(params, rewriteSelf(t.Ret, structName), t.Loc)
	default:
		return t
	}
}
