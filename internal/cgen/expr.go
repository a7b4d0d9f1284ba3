package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/ir"
)

// emitExpr renders one expression instruction as a C99 expression
// string. Expression lowering is "straightforward arithmetic" per
// spec.md §4.6, except the documented special cases: saturating/
// wrapping operators (branchless expressions), casts, string
// interpolation (handled as a statement-producing helper, see
// emitStringInterp), and the try/catch/error-value lowerings.
func (e *Emitter) emitExpr(x *ir.Instr) string {
	if x == nil {
		return ""
	}
	switch x.Kind {
	case ir.KConstant:
		return e.emitConstant(x)
	case ir.KIdent:
		return x.Name
	case ir.KBinaryOp:
		return e.emitBinaryOp(x)
	case ir.KUnaryOp:
		return e.emitUnaryOp(x)
	case ir.KCall:
		return e.emitCall(x)
	case ir.KMemberAccess:
		return fmt.Sprintf("(%s).%s", e.emitExpr(x.X), x.FieldName)
	case ir.KSubscript:
		return fmt.Sprintf("%s[%s]", e.emitExpr(x.Base), e.emitExpr(x.Index))
	case ir.KStructInit:
		return e.emitStructInit(x)
	case ir.KErrorValue:
		return "ERR_" + x.ErrorName
	case ir.KErrorUnion:
		return e.emitTryUnwrap(x)
	case ir.KTryCatch:
		return e.emitTryCatch(x)
	case ir.KStringInterpolation:
		return e.emitStringInterp(x)
	default:
		return "/* unsupported expr */ 0"
	}
}

func (e *Emitter) emitConstant(x *ir.Instr) string {
	switch {
	case x.ConstIsBool:
		if x.ConstBool {
			return "true"
		}
		return "false"
	case x.ConstIsFloat:
		return strconv.FormatFloat(x.ConstFloat, 'g', -1, 64)
	case x.ConstString != "":
		return strconv.Quote(x.ConstString)
	default:
		return strconv.FormatInt(x.ConstInt, 10)
	}
}

// emitBinaryOp lowers ordinary operators directly and the saturating/
// wrapping family to branchless expressions, per spec.md §4.6's
// example (`+|` as `(a > MAX - b) ? MAX : a + b`).
func (e *Emitter) emitBinaryOp(x *ir.Instr) string {
	l := e.emitExpr(x.Left)
	r := e.emitExpr(x.Right)
	switch x.Op {
	case "+%", "-%", "*%":
		return fmt.Sprintf("(%s %s %s)", l, strings.TrimSuffix(x.Op, "%"), r)
	case "+|":
		maxV, _ := intLimits(x.Type)
		return fmt.Sprintf("((%s) > (%s) - (%s) ? (%s) : (%s) + (%s))", l, maxV, r, maxV, l, r)
	case "-|":
		_, minV := intLimits(x.Type)
		return fmt.Sprintf("((%s) < (%s) + (%s) ? (%s) : (%s) - (%s))", l, minV, r, minV, l, r)
	case "*|":
		maxV, _ := intLimits(x.Type)
		return fmt.Sprintf("(((%s) != 0 && (%s) > (%s) / (%s)) ? (%s) : (%s) * (%s))", l, l, maxV, r, maxV, l, r)
	case "..":
		return fmt.Sprintf("/* range */ %s, %s", l, r)
	default:
		return fmt.Sprintf("(%s %s %s)", l, x.Op, r)
	}
}

// intLimits renders the C99 integer-limit macros matching t, falling
// back to INT32_MAX/MIN (spec.md's own `+|` example uses a generic
// MAX/MIN, and int32 is the default integer width when a fold site
// carries no narrower type annotation).
func intLimits(t *ast.Type) (string, string) {
	if t == nil || t.Kind != ast.TypeNamed {
		return "INT32_MAX", "INT32_MIN"
	}
	switch t.Name {
	case "i8":
		return "INT8_MAX", "INT8_MIN"
	case "i16":
		return "INT16_MAX", "INT16_MIN"
	case "i64":
		return "INT64_MAX", "INT64_MIN"
	case "u8":
		return "UINT8_MAX", "0"
	case "u16":
		return "UINT16_MAX", "0"
	case "u32":
		return "UINT32_MAX", "0"
	case "u64":
		return "UINT64_MAX", "0"
	case "usize":
		return "SIZE_MAX", "0"
	default:
		return "INT32_MAX", "INT32_MIN"
	}
}

func (e *Emitter) emitUnaryOp(x *ir.Instr) string {
	operand := e.emitExpr(x.Operand)
	switch x.Op {
	case "as":
		return fmt.Sprintf("((%s)(%s))", cType(x.Type), operand)
	case "as!":
		return fmt.Sprintf("((%s)(%s)) /* fallible cast */", cType(x.Type), operand)
	case "try":
		return operand
	default:
		return fmt.Sprintf("(%s%s)", x.Op, operand)
	}
}

// emitTryUnwrap lowers `try expr` (KErrorUnion). Two forms reach here,
// mirroring checkUnaryExpr's own split: a plain arithmetic operand
// (`try a + b`) gets an overflow-checked builtin; anything else is an
// unwrap of an already error-union-typed operand (`try f()`). The
// checker admits `try` inside a function of any return type (spec.md
// §4.4(c) names it as a peer of the wrapping/saturating operators, and
// checkUnaryExpr never requires the enclosing function to itself
// return an error union), so there is no destination to propagate a
// failure into in general — both forms trap via `__builtin_trap()` on
// failure rather than constructing an early return, and yield the
// unwrapped value otherwise. Grounded on spec.md §4.6's own `({ ... })`
// statement-expression sequencing for string interpolation, reused
// here to sequence the check ahead of the yielded value.
func (e *Emitter) emitTryUnwrap(x *ir.Instr) string {
	if isArithTryInner(x.Inner) {
		return e.emitTryArith(x)
	}
	return e.emitTryPropagate(x)
}

func (e *Emitter) emitTryArith(x *ir.Instr) string {
	inner := x.Inner
	l := e.emitExpr(inner.Left)
	r := e.emitExpr(inner.Right)
	var builtin string
	switch inner.Op {
	case "+":
		builtin = "__builtin_add_overflow"
	case "-":
		builtin = "__builtin_sub_overflow"
	case "*":
		builtin = "__builtin_mul_overflow"
	}
	tmp := e.newTemp("try")
	var b strings.Builder
	fmt.Fprintf(&b, "({ %s %s; ", cType(x.Type), tmp)
	fmt.Fprintf(&b, "if (%s(%s, %s, &%s)) { __builtin_trap(); } ", builtin, l, r, tmp)
	fmt.Fprintf(&b, "%s; })", tmp)
	return b.String()
}

func (e *Emitter) emitTryPropagate(x *ir.Instr) string {
	tmp := e.newTemp("try")
	innerType := cType(x.Inner.Type)
	var b strings.Builder
	fmt.Fprintf(&b, "({ %s %s = %s; ", innerType, tmp, e.emitExpr(x.Inner))
	fmt.Fprintf(&b, "if ((%s).error_id != 0) { __builtin_trap(); } ", tmp)
	fmt.Fprintf(&b, "(%s).value; })", tmp)
	return b.String()
}

// wrapReturnValue renders a return statement's value expression against
// the enclosing function's declared return type.
func (e *Emitter) wrapReturnValue(v *ir.Instr) string {
	return e.wrapValueForType(e.curRetType, v)
}

// wrapValueForType wraps a bare success value or a bare error.Name into
// the err_union_<T> compound literal a destination of error-union type
// t actually holds. A value that is itself already struct-shaped (a
// call to a function whose declared return type is the same error
// union, or an identifier/field/element of that type) needs no
// wrapping — it already IS the struct. A try/catch result needs
// wrapping despite the checker recording an error-union type on the
// try node itself (see emitTryUnwrap): its lowering already yields a
// bare value (a failed try traps via __builtin_trap, and catch yields
// the handler's value), so what's left is a bare success value.
func (e *Emitter) wrapValueForType(t *ast.Type, v *ir.Instr) string {
	alreadyStruct := v.Type != nil && v.Type.Kind == ast.TypeErrorUnion &&
		v.Kind != ir.KErrorUnion && v.Kind != ir.KTryCatch && v.Kind != ir.KErrorValue
	if !isErrorUnion(t) || alreadyStruct {
		return e.emitExpr(v)
	}
	retStruct := cType(t)
	if v.Kind == ir.KErrorValue {
		return fmt.Sprintf("(%s){.error_id = %s, .value = {0}}", retStruct, e.emitExpr(v))
	}
	return fmt.Sprintf("(%s){.error_id = 0, .value = %s}", retStruct, e.emitExpr(v))
}

func (e *Emitter) emitCall(x *ir.Instr) string {
	if strings.HasPrefix(x.Callee, "@") {
		return e.emitBuiltinCall(x)
	}
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.emitExpr(a)
	}
	return fmt.Sprintf("%s(%s)", x.Callee, strings.Join(args, ", "))
}

// emitBuiltinCall renders the `@`-prefixed builtins spec.md §4.2/§4.6
// names. @sizeof/@alignof reduce to the C operator/macro of the same
// name; @min/@max to a ternary; @len to the sizeof(a)/sizeof(a[0])
// array-length idiom;
// @syscall to the uya_syscallN helper matching its argument count;
// @mc_type to a reference into the module's TypeInfo table (rendered
// as an address-of a named static, since the full TypeInfo registry
// population is a driver-level concern spec.md leaves unspecified).
func (e *Emitter) emitBuiltinCall(x *ir.Instr) string {
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.emitExpr(a)
	}
	switch x.Callee {
	case "@sizeof":
		if len(x.Args) > 0 {
			return fmt.Sprintf("sizeof(%s)", argAsType(x.Args[0], args[0]))
		}
		return "0"
	case "@alignof":
		if len(x.Args) > 0 {
			return fmt.Sprintf("uya_alignof(%s)", argAsType(x.Args[0], args[0]))
		}
		return "0"
	case "@len":
		// sizeof(arr)/sizeof(arr[0]) is the standard C array-length
		// idiom; it works for any fixed-size array argument without
		// needing the checker's folded symbol-table size here.
		if len(args) > 0 {
			return fmt.Sprintf("(sizeof(%s) / sizeof((%s)[0]))", args[0], args[0])
		}
		return "0"
	case "@min":
		if len(args) == 2 {
			return fmt.Sprintf("((%s) < (%s) ? (%s) : (%s))", args[0], args[1], args[0], args[1])
		}
	case "@max":
		if len(args) == 2 {
			return fmt.Sprintf("((%s) > (%s) ? (%s) : (%s))", args[0], args[1], args[0], args[1])
		}
	case "@mc_type":
		if len(x.Args) > 0 {
			return fmt.Sprintf("(&_uya_typeinfo_%s)", argAsType(x.Args[0], args[0]))
		}
	}
	if strings.HasPrefix(x.Callee, "@syscall") {
		return fmt.Sprintf("uya_syscall%d(%s)", len(args)-1, strings.Join(args, ", "))
	}
	return fmt.Sprintf("/* unsupported builtin %s */ 0", x.Callee)
}

// argAsType renders a builtin argument that names a type (e.g.
// `@sizeof(i32)`) as its C spelling when the parser captured it as a
// type-like identifier, falling back to the expression text otherwise
// (e.g. `@sizeof(x)` sizing a value's own type).
func argAsType(arg *ir.Instr, rendered string) string {
	if arg != nil && arg.Kind == ir.KIdent {
		if c := namedCType(arg.Name); c != arg.Name || isBuiltinTypeName(arg.Name) {
			return c
		}
	}
	return rendered
}

func isBuiltinTypeName(name string) bool {
	switch name {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "bool", "byte", "void", "usize":
		return true
	default:
		return false
	}
}

func (e *Emitter) emitStructInit(x *ir.Instr) string {
	if x.StructName == "" {
		vals := make([]string, len(x.FieldValues))
		for i, v := range x.FieldValues {
			vals[i] = e.emitExpr(v)
		}
		return fmt.Sprintf("{%s}", strings.Join(vals, ", "))
	}
	parts := make([]string, len(x.FieldValues))
	for i, v := range x.FieldValues {
		name := ""
		if i < len(x.FieldNames) {
			name = x.FieldNames[i]
		}
		parts[i] = fmt.Sprintf(".%s = %s", name, e.emitExpr(v))
	}
	return fmt.Sprintf("(struct %s){%s}", x.StructName, strings.Join(parts, ", "))
}

// emitTryCatch renders `try-expr catch |err| { handler }` as a C
// statement-expression (GNU `({ ... })`): evaluate the try body into a
// local, branch on its error_id field, and yield either the success
// value or the handler's last expression. Grounded on spec.md §4.6's
// own use of `({ ... })`-style sequencing for string interpolation;
// generalized here to a value-producing block since catch is itself
// value-producing (spec.md §3/§4.5).
func (e *Emitter) emitTryCatch(x *ir.Instr) string {
	tmp := e.newTemp("try")
	var b strings.Builder
	fmt.Fprintf(&b, "({ %s %s = %s; ", cType(x.TryBody.Type), tmp, e.emitExpr(x.TryBody))
	fmt.Fprintf(&b, "(%s).error_id != 0 ? ({ ", tmp)
	fmt.Fprintf(&b, "uint32_t %s = (%s).error_id; (void)%s; ", x.ErrName, tmp, x.ErrName)
	for i, c := range x.CatchBody {
		last := i == len(x.CatchBody)-1
		if last && isExprKind(c) {
			fmt.Fprintf(&b, "%s; ", e.emitExpr(c))
		} else {
			fmt.Fprintf(&b, "%s ", e.emitStmtInline(c))
		}
	}
	fmt.Fprintf(&b, "}) : (%s).value; })", tmp)
	return b.String()
}

// isExprKind reports whether s is a value-producing expression rather
// than a true statement, so emitTryCatch can treat a catch handler's
// final instruction as the block's yielded value only when it actually
// is one (spec.md's catch-as-expression examples always end a handler
// on a bare expression).
func isExprKind(s *ir.Instr) bool {
	switch s.Kind {
	case ir.KVarDecl, ir.KAssign, ir.KIf, ir.KWhile, ir.KFor, ir.KBlock, ir.KReturn, ir.KDefer, ir.KErrdefer, ir.KBreak, ir.KContinue:
		return false
	default:
		return true
	}
}

// emitStmtInline renders one non-final catch-handler statement as
// inline C statement text (no indentation tracking, since it sits
// inside a GNU statement expression rather than the normal line-by-line
// body). Only the statement shapes a catch handler plausibly contains
// ahead of its final yielded expression are covered.
func (e *Emitter) emitStmtInline(s *ir.Instr) string {
	switch s.Kind {
	case ir.KVarDecl:
		if s.Init != nil {
			return fmt.Sprintf("%s = %s;", declareVar(s.Type, s.Name), e.wrapValueForType(s.Type, s.Init))
		}
		return declareVar(s.Type, s.Name) + ";"
	case ir.KAssign:
		return fmt.Sprintf("%s %s %s;", e.emitExpr(s.Dest), s.Op, e.emitExpr(s.Src))
	case ir.KIf:
		then := make([]string, len(s.Then))
		for i, t := range s.Then {
			then[i] = e.emitStmtInline(t)
		}
		out := fmt.Sprintf("if (%s) { %s }", e.emitExpr(s.Cond), strings.Join(then, " "))
		if len(s.Else) > 0 {
			els := make([]string, len(s.Else))
			for i, t := range s.Else {
				els[i] = e.emitStmtInline(t)
			}
			out += fmt.Sprintf(" else { %s }", strings.Join(els, " "))
		}
		return out
	case ir.KBreak:
		return "break;"
	case ir.KContinue:
		return "continue;"
	default:
		return e.emitExpr(s) + ";"
	}
}
