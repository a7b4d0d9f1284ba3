package cgen

import (
	"fmt"

	"github.com/uya-lang/uyac/internal/ast"
)

// cType renders a type-syntax node as a C99 type name, per spec.md
// §4.6's mapping table. Array types are rendered only at a declaration
// site (declare, not here) since C spells `T name[N]`, not `T[N] name`.
func cType(t *ast.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case ast.TypeNamed:
		return namedCType(t.Name)
	case ast.TypePointer:
		return cType(t.Elem) + " *"
	case ast.TypeArray:
		return cType(t.Elem)
	case ast.TypeTuple:
		return "tuple_" + langTypeKeyJoin(t.Elems)
	case ast.TypeErrorUnion:
		return "struct " + errUnionName(cBaseName(t.Elem))
	case ast.TypeAtomic:
		return "_Atomic " + cType(t.Elem)
	case ast.TypeFn:
		return cType(t.Ret) + " (*)(" + fnParamList(t.Params) + ")"
	default:
		return "void"
	}
}

func fnParamList(params []*ast.Type) string {
	if len(params) == 0 {
		return "void"
	}
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += cType(p)
	}
	return s
}

// namedCType maps the builtin named types spec.md §4.6 lists; any
// other name is a user struct/enum and is emitted verbatim (C forward
// declarations make the bare name resolvable).
func namedCType(name string) string {
	switch name {
	case "i8":
		return "int8_t"
	case "i16":
		return "int16_t"
	case "i32":
		return "int32_t"
	case "i64":
		return "int64_t"
	case "u8":
		return "uint8_t"
	case "u16":
		return "uint16_t"
	case "u32":
		return "uint32_t"
	case "u64":
		return "uint64_t"
	case "f32":
		return "float"
	case "f64":
		return "double"
	case "bool":
		return "bool"
	case "byte":
		return "uint8_t"
	case "void":
		return "void"
	case "usize":
		return "size_t"
	default:
		return name
	}
}

// cBaseName is the C type name used in an err_union_<base> struct
// name: spec.md §6 says "err_union_<base-c-type>", so a pointer or
// array element folds its C spelling down to an identifier-safe form.
func cBaseName(t *ast.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case ast.TypeNamed:
		return namedCType(t.Name)
	case ast.TypePointer:
		return "p" + cBaseName(t.Elem)
	case ast.TypeArray:
		return "a" + cBaseName(t.Elem)
	case ast.TypeTuple:
		return "tuple_" + langTypeKeyJoin(t.Elems)
	case ast.TypeAtomic:
		return "atomic_" + cBaseName(t.Elem)
	default:
		return "v"
	}
}

func errUnionName(base string) string {
	return fmt.Sprintf("err_union_%s", base)
}

// langTypeKey/langTypeKeyJoin mirror internal/ir's typeKey/typeKeyJoin
// exactly (language-level type keys, e.g. "i32", not C spellings like
// "int32_t") so a tuple Type referenced here names the SAME struct
// internal/ir already materialized for any tuple literal of that
// element-type shape (spec.md §6 "Tuple type name": `tuple_i32_bool`,
// not `tuple_int32_t_bool`).
func langTypeKey(t *ast.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case ast.TypeNamed:
		return t.Name
	case ast.TypePointer:
		return "p" + langTypeKey(t.Elem)
	case ast.TypeArray:
		return "a" + langTypeKey(t.Elem)
	case ast.TypeErrorUnion:
		return "e" + langTypeKey(t.Elem)
	case ast.TypeAtomic:
		return "atomic" + langTypeKey(t.Elem)
	default:
		return "v"
	}
}

func langTypeKeyJoin(types []*ast.Type) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += "_"
		}
		s += langTypeKey(t)
	}
	return s
}

// arraySizeLiteral folds an array-size expression the way the checker
// already proved foldable (array declarations that reach cgen have
// already passed the checker's own fold, spec.md §4.4); this is a
// narrower, emitter-local re-fold (literal and +/-/*//,% only, no
// named-constant lookup, since cgen has no access to the checker's
// symbol table) used purely to spell the literal `N` in `T name[N]`.
func arraySizeLiteral(e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case nil:
		return 0, false
	case *ast.NumericExpr:
		if v.IsFloat {
			return 0, false
		}
		return v.IntVal, true
	case *ast.UnaryExpr:
		if v.Op != ast.UnaryNeg {
			return 0, false
		}
		n, ok := arraySizeLiteral(v.Operand)
		return -n, ok
	case *ast.BinaryExpr:
		l, lok := arraySizeLiteral(v.Left)
		r, rok := arraySizeLiteral(v.Right)
		if !lok || !rok {
			return 0, false
		}
		switch v.Op {
		case ast.OpAdd:
			return l + r, true
		case ast.OpSub:
			return l - r, true
		case ast.OpMul:
			return l * r, true
		case ast.OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// declareVar renders a C declaration for name:typ, handling the array
// `T name[N]` spelling C requires (spec.md §4.6 type-mapping table).
func declareVar(typ *ast.Type, name string) string {
	if typ != nil && typ.Kind == ast.TypeArray {
		n, ok := arraySizeLiteral(typ.SizeExpr)
		if !ok {
			n = 0
		}
		return fmt.Sprintf("%s %s[%d]", cType(typ.Elem), name, n)
	}
	return fmt.Sprintf("%s %s", cType(typ), name)
}
