package cgen

import (
	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/ir"
)

// funcScope carries the function-wide defer/errdefer stacks spec.md
// §4.6 names ("defer stmts are collected per scope; at every exit path
// their bodies are emitted in reverse registration order"). This
// emitter tracks one flat stack per function rather than per nested
// block — a documented simplification (see DESIGN.md) since spec.md's
// own worked examples never nest a defer inside a loop or inner block.
type funcScope struct {
	defers    []*ir.Instr
	errdefers []*ir.Instr
	isErrFn   bool
	hasRet    bool
}

func (e *Emitter) funcDef(fn *ir.Instr) {
	e.line("%s {", funcSignature(fn))
	e.indent++
	prevRet := e.curRetType
	e.curRetType = fn.ReturnType
	defer func() { e.curRetType = prevRet }()
	scope := &funcScope{isErrFn: isErrorUnion(fn.ReturnType)}
	if !isVoidType(fn.ReturnType) {
		e.line("%s;", declareVar(fn.ReturnType, "_uya_ret"))
	}
	e.emitStmts(fn.FnBody, scope)
	e.indent--
	e.line("}")
	e.blank()
}

func isErrorUnion(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeErrorUnion
}

func isVoidType(t *ast.Type) bool {
	return t == nil || (t.Kind == ast.TypeNamed && t.Name == "void")
}

// emitStmts renders a statement sequence, registering defer/errdefer
// as encountered rather than emitting them inline (they fire at exit
// points instead, per spec.md §4.6).
func (e *Emitter) emitStmts(stmts []*ir.Instr, scope *funcScope) {
	for _, s := range stmts {
		e.emitStmt(s, scope)
	}
}

func (e *Emitter) emitStmt(s *ir.Instr, scope *funcScope) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ir.KVarDecl:
		switch {
		case s.Init != nil && s.Init.Kind == ir.KStringInterpolation:
			e.line("uint8_t %s[%d];", s.Name, stringInterpBufSize(s.Type, s.Init.BufferSize))
			for _, line := range e.stringInterpFillLines(s.Name, s.Init) {
				e.line("%s", line)
			}
		case s.Init != nil:
			e.line("%s = %s;", declareVar(s.Type, s.Name), e.wrapValueForType(s.Type, s.Init))
		default:
			e.line("%s;", declareVar(s.Type, s.Name))
		}
	case ir.KAssign:
		e.line("%s %s %s;", e.emitExpr(s.Dest), s.Op, e.emitExpr(s.Src))
	case ir.KIf:
		e.line("if (%s) {", e.emitExpr(s.Cond))
		e.indent++
		e.emitStmts(s.Then, scope)
		e.indent--
		if len(s.Else) > 0 {
			e.line("} else {")
			e.indent++
			e.emitStmts(s.Else, scope)
			e.indent--
		}
		e.line("}")
	case ir.KWhile:
		e.line("while (%s) {", e.emitExpr(s.Cond))
		e.indent++
		e.emitStmts(s.Body, scope)
		e.indent--
		e.line("}")
	case ir.KFor:
		e.emitFor(s, scope)
	case ir.KBlock:
		e.line("{")
		e.indent++
		e.emitStmts(s.Stmts, scope)
		e.indent--
		e.line("}")
	case ir.KReturn:
		e.emitReturn(s, scope)
	case ir.KDefer:
		scope.defers = append(scope.defers, s.Stmt)
	case ir.KErrdefer:
		scope.errdefers = append(scope.errdefers, s.Stmt)
	case ir.KBreak:
		e.line("break;")
	case ir.KContinue:
		e.line("continue;")
	default:
		e.line("%s;", e.emitExpr(s))
	}
}

// emitFor lowers `for it |name|` / `for it |&name|` over an array
// scrutinee to an index-driven C loop, per spec.md §4.6: the `&name`
// binding form takes the element's address instead of copying it.
func (e *Emitter) emitFor(s *ir.Instr, scope *funcScope) {
	idx := e.newTemp("i")
	n := int64(0)
	if s.Iterable != nil && s.Iterable.Type != nil && s.Iterable.Type.Kind == ast.TypeArray {
		if v, ok := arraySizeLiteral(s.Iterable.Type.SizeExpr); ok {
			n = v
		}
	}
	iterable := e.emitExpr(s.Iterable)
	e.line("for (size_t %s = 0; %s < %d; %s++) {", idx, idx, n, idx)
	e.indent++
	elemType := elemTypeOf(s.Iterable)
	if s.ValueVar != "" {
		if s.IsRef {
			e.line("%s = &%s[%s];", declareVar(ast.PointerType(elemType, ast.SourceLoc{}), s.ValueVar), iterable, idx)
		} else {
			e.line("%s = %s[%s];", declareVar(elemType, s.ValueVar), iterable, idx)
		}
	}
	if s.IndexVar != "" {
		e.line("size_t %s = %s;", s.IndexVar, idx)
	}
	e.emitStmts(s.Body, scope)
	e.indent--
	e.line("}")
}

// stringInterpBufSize reconciles the IR's buffer-size estimate against
// an explicitly declared destination array size (`const s: [i8: 32] =
// "...";`), since a declared size wider than the estimate must still
// be honored — take whichever is larger.
func stringInterpBufSize(declared *ast.Type, estimate int64) int64 {
	if declared != nil && declared.Kind == ast.TypeArray {
		if n, ok := arraySizeLiteral(declared.SizeExpr); ok && n > estimate {
			return n
		}
	}
	return estimate
}

func elemTypeOf(it *ir.Instr) *ast.Type {
	if it == nil || it.Type == nil || it.Type.Kind != ast.TypeArray {
		return nil
	}
	return it.Type.Elem
}

// emitReturn binds the return value to _uya_ret, runs registered
// cleanups in reverse order (errdefers only on what this emitter
// classifies as the error path — a return whose value is a bare
// `error.Name`, the common case spec.md's own examples use), then
// emits the actual `return _uya_ret;`.
func (e *Emitter) emitReturn(s *ir.Instr, scope *funcScope) {
	isErrorPath := s.Value != nil && s.Value.Kind == ir.KErrorValue
	if s.Value != nil {
		e.line("_uya_ret = %s;", e.wrapReturnValue(s.Value))
	}
	for i := len(scope.defers) - 1; i >= 0; i-- {
		e.emitCleanup(scope.defers[i], scope)
	}
	if scope.isErrFn && isErrorPath {
		for i := len(scope.errdefers) - 1; i >= 0; i-- {
			e.emitCleanup(scope.errdefers[i], scope)
		}
	}
	if s.Value != nil {
		e.line("return _uya_ret;")
	} else {
		e.line("return;")
	}
}

func (e *Emitter) emitCleanup(stmt *ir.Instr, scope *funcScope) {
	if stmt == nil {
		return
	}
	e.emitStmt(stmt, scope)
}
