// Package ir lowers a checked AST into the tagged instruction tree
// spec.md §3/§4.5 describes: every instruction carries a unique id from
// a per-generator counter, and nested bodies (then/else/while-body/
// catch-body/...) are arrays of instruction pointers owned by the
// enclosing instruction rather than a flat, label-and-jump register IR.
//
// Grounded on wut4/lang/ysem/ir.go's IRGen: the generator-with-counter
// shape (newTemp/newLabel there, nextID here), the genStmt/genExpr
// dispatch split, and the "emit, return a handle" calling convention
// are kept; the flat register/label output itself is not, since
// wut4 targets a stack-machine assembler and this module targets a
// tree-shaped IR a C emitter walks directly.
package ir

import "github.com/uya-lang/uyac/internal/ast"

// Kind tags which of Instr's fields are meaningful.
type Kind int

const (
	KConstant Kind = iota
	KVarDecl
	KAssign
	KBinaryOp
	KUnaryOp
	KCall
	KReturn
	KIf
	KWhile
	KFor
	KBlock
	KMemberAccess
	KSubscript
	KStructInit
	KStructDecl
	KEnumDecl
	KFuncDef
	KTryCatch
	KErrorValue
	KErrorUnion
	KStringInterpolation
	KDefer
	KErrdefer
	KIdent
	KBreak
	KContinue
)

func (k Kind) String() string {
	switch k {
	case KConstant:
		return "Constant"
	case KVarDecl:
		return "VarDecl"
	case KAssign:
		return "Assign"
	case KBinaryOp:
		return "BinaryOp"
	case KUnaryOp:
		return "UnaryOp"
	case KCall:
		return "Call"
	case KReturn:
		return "Return"
	case KIf:
		return "If"
	case KWhile:
		return "While"
	case KFor:
		return "For"
	case KBlock:
		return "Block"
	case KMemberAccess:
		return "MemberAccess"
	case KSubscript:
		return "Subscript"
	case KStructInit:
		return "StructInit"
	case KStructDecl:
		return "StructDecl"
	case KEnumDecl:
		return "EnumDecl"
	case KFuncDef:
		return "FuncDef"
	case KTryCatch:
		return "TryCatch"
	case KErrorValue:
		return "ErrorValue"
	case KErrorUnion:
		return "ErrorUnion"
	case KStringInterpolation:
		return "StringInterpolation"
	case KDefer:
		return "Defer"
	case KErrdefer:
		return "Errdefer"
	case KIdent:
		return "Ident"
	case KBreak:
		return "Break"
	case KContinue:
		return "Continue"
	default:
		return "Invalid"
	}
}

// FieldSig is one struct/enum-decl field or parameter, carried through
// to the emitter without re-deriving it from the checker's symbol
// table.
type FieldSig struct {
	Name string
	Type *ast.Type
}

// Instr is one IR node. Only the fields relevant to Kind are
// populated; this mirrors wut4's IRInstr (Op/Dest/Args, one struct for
// every opcode) generalized from a flat three-operand form to a
// tagged tree.
type Instr struct {
	ID   int
	Kind Kind
	Type *ast.Type // the checked, inferred result type, when applicable
	Loc  ast.SourceLoc

	// KConstant
	ConstIsFloat bool
	ConstIsBool  bool
	ConstInt     int64
	ConstFloat   float64
	ConstBool    bool
	ConstString  string

	// KIdent
	Name string

	// KVarDecl
	IsConst bool
	Init    *Instr

	// KAssign
	Op   string
	Dest *Instr
	Src  *Instr

	// KBinaryOp / KUnaryOp
	Left    *Instr
	Right   *Instr
	Operand *Instr

	// KCall
	Callee string
	Args   []*Instr

	// KReturn / KDefer / KErrdefer
	Value *Instr
	Stmt  *Instr

	// KIf / KWhile
	Cond *Instr
	Then []*Instr
	Else []*Instr
	Body []*Instr

	// KFor
	Iterable           *Instr
	IndexVar, ValueVar string
	IsRef              bool

	// KBlock
	Stmts []*Instr

	// KMemberAccess
	X         *Instr
	FieldName string

	// KSubscript
	Base  *Instr
	Index *Instr

	// KStructInit
	StructName  string
	FieldNames  []string
	FieldValues []*Instr

	// KStructDecl
	Fields []FieldSig

	// KEnumDecl
	Underlying *ast.Type
	Variants   []ast.EnumVariant

	// KFuncDef
	FnName     string
	Params     []FieldSig
	ReturnType *ast.Type
	FnBody     []*Instr
	IsExtern   bool
	IsVarargs  bool
	IsTest     bool

	// KTryCatch
	TryBody   *Instr
	ErrName   string
	CatchBody []*Instr

	// KErrorValue
	ErrorName string

	// KErrorUnion
	Inner *Instr

	// KStringInterpolation
	TextSegments    []string
	FormatSpecs     []string
	Slots           []*Instr
	ConstSlotValues []string
	BufferSize      int64
}

// Module is the generator's output: the module-level declaration
// sequence (functions, struct/enum decls, tests), with any
// deduplicated synthetic tuple-struct declarations spliced in before
// their first use.
type Module struct {
	Decls []*Instr
}
