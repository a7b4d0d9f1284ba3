// Type syntax nodes, per spec.md §3 "AST — Types" and §4.3's Type
// grammar production.
//
// Grounded on wut4/lang/yparse/types.go's tagged Type struct
// (Kind/Base/Pointee/ElemType/ArrayLen/StructName), generalized from
// wut4's fixed base-type set (uint8/int16/uint16/block32/64/128) to
// spec.md's named/pointer/array/tuple/error-union/atomic/fn-type
// grammar, and from wut4's constant-folded-at-lex-time array length
// (an int) to spec.md's "array-type size expressions must constant-
// fold to a non-negative integer" (the size stays an Expr node through
// parsing; checking folds it, see internal/check).
package ast

// TypeKind tags which Type variant a node carries.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeNamed            // named: i32, bool, MyStruct, ...
	TypePointer          // *T
	TypeArray            // [T: N]
	TypeTuple            // (T1, T2, ...)
	TypeErrorUnion       // !T
	TypeAtomic           // atomic T
	TypeFn               // fn(T...) T
)

// Type is a tagged type-syntax node. Exactly one of the fields below
// is meaningful, selected by Kind, mirroring wut4's Type union.
type Type struct {
	Kind TypeKind
	Loc  SourceLoc

	Name string // TypeNamed

	Elem *Type // TypePointer / TypeErrorUnion / TypeAtomic / TypeArray element

	SizeExpr Expr // TypeArray: compile-time size expression (§3 invariant)

	Elems []*Type // TypeTuple: ordered element types

	Params []*Type // TypeFn
	Ret    *Type   // TypeFn
}

func NamedType(name string, loc SourceLoc) *Type {
	return &Type{Kind: TypeNamed, Name: name, Loc: loc}
}

func PointerType(elem *Type, loc SourceLoc) *Type {
	return &Type{Kind: TypePointer, Elem: elem, Loc: loc}
}

func ArrayType(elem *Type, size Expr, loc SourceLoc) *Type {
	return &Type{Kind: TypeArray, Elem: elem, SizeExpr: size, Loc: loc}
}

func TupleType(elems []*Type, loc SourceLoc) *Type {
	return &Type{Kind: TypeTuple, Elems: elems, Loc: loc}
}

func ErrorUnionType(elem *Type, loc SourceLoc) *Type {
	return &Type{Kind: TypeErrorUnion, Elem: elem, Loc: loc}
}

func AtomicType(elem *Type, loc SourceLoc) *Type {
	return &Type{Kind: TypeAtomic, Elem: elem, Loc: loc}
}

func FnType(params []*Type, ret *Type, loc SourceLoc) *Type {
	return &Type{Kind: TypeFn, Params: params, Ret: ret, Loc: loc}
}

// String renders a Type the way the emitter's diagnostics and the
// tuple-name deterministic key (§6) both need: a canonical, stable
// textual form.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeNamed:
		return t.Name
	case TypePointer:
		return "*" + t.Elem.String()
	case TypeArray:
		return "[" + t.Elem.String() + ":N]"
	case TypeTuple:
		s := "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case TypeErrorUnion:
		return "!" + t.Elem.String()
	case TypeAtomic:
		return "atomic " + t.Elem.String()
	case TypeFn:
		s := "fn("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ") " + t.Ret.String()
	default:
		return "<invalid>"
	}
}

// Equal reports structural equality between two type-syntax nodes.
// Array size expressions are not compared: two array types with equal
// element types are Equal whatever their sizes (the checker compares
// the folded sizes itself).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeNamed:
		return t.Name == other.Name
	case TypePointer, TypeErrorUnion, TypeAtomic:
		return t.Elem.Equal(other.Elem)
	case TypeArray:
		return t.Elem.Equal(other.Elem)
	case TypeTuple:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	case TypeFn:
		if len(t.Params) != len(other.Params) || !t.Ret.Equal(other.Ret) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
