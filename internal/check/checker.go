package check

import (
	"strings"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/constraint"
	"github.com/uya-lang/uyac/internal/diag"
)

var loopVarWhitelist = map[string]bool{
	"i": true, "j": true, "k": true, "next": true, "current": true,
	"prev": true, "temp": true, "tmp": true, "list": true, "obj": true,
	"data": true, "self": true,
}

var numericTypeNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true, "usize": true, "byte": true,
}

// Checker runs the two passes spec.md §4.4 describes over one parsed
// program.
type Checker struct {
	bag           *diag.Bag
	funcs         *FuncTab
	syms          *SymTab
	structs       map[string]*ast.StructDecl
	enums         map[string]*ast.EnumDecl
	errorNames    map[string]bool
	curReturnType *ast.Type
}

// NewChecker returns a Checker that reports diagnostics into bag.
func NewChecker(bag *diag.Bag) *Checker {
	return &Checker{
		bag:        bag,
		funcs:      NewFuncTab(),
		syms:       NewSymTab(),
		structs:    make(map[string]*ast.StructDecl),
		enums:      make(map[string]*ast.EnumDecl),
		errorNames: make(map[string]bool),
	}
}

// Funcs exposes the populated function table, consulted by
// internal/ir for method-call desugaring.
func (c *Checker) Funcs() *FuncTab { return c.funcs }

// Check runs pass 1 then pass 2 over prog.
func (c *Checker) Check(prog *ast.Program) {
	c.pass1(prog)
	c.pass2(prog)
}

func (c *Checker) errorf(loc ast.SourceLoc, format string, args ...interface{}) {
	c.bag.Add(loc.File, loc.Line, loc.Column, format, args...)
}

func namedType(name string) *ast.Type {
	return ast.NamedType(name, ast.SourceLoc{})
}

// ============================================================
// Pass 2: bodies
// ============================================================

func (c *Checker) pass2(prog *ast.Program) {
	c.syms.PushGlobalScope()
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.VarDecl:
			c.checkGlobalVarDecl(decl)
		case *ast.FuncDecl:
			c.checkFuncDecl(decl)
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				c.checkFuncDecl(m)
			}
		case *ast.TestDecl:
			c.checkTestDecl(decl)
		}
	}
	c.syms.PopScope()
}

func (c *Checker) checkGlobalVarDecl(d *ast.VarDecl) {
	var initType *ast.Type
	if d.Init != nil {
		initType = c.checkExpr(d.Init, constraint.NewEnv())
	}
	t := d.Type
	if t == nil {
		t = initType
	}
	if d.Type != nil && d.Init != nil && !c.assignable(d.Type, initType, d.Init) {
		c.errorf(d.L, "cannot initialize %q of type %s with value of type %s", d.Name, d.Type.String(), initType.String())
	}
	sym := &Symbol{
		Name: d.Name, Type: t,
		IsMut: d.VarKind == ast.VarVar || d.VarKind == ast.VarLetMut,
		IsConst: d.VarKind == ast.VarConst, IsInitialized: d.Init != nil,
		Loc: d.L, FromVarDecl: true,
	}
	c.fillArrayInfo(sym, t)
	if sym.IsConst && d.Init != nil {
		if v, ok := c.foldConstInt(d.Init); ok {
			sym.ConstValue = &v
		}
	}
	if !c.syms.Insert(sym) {
		c.errorf(d.L, "duplicate symbol %q", d.Name)
	}
}

func (c *Checker) checkFuncDecl(fd *ast.FuncDecl) {
	if fd.IsExtern || fd.Body == nil {
		return
	}
	level := c.syms.PushFuncScope()
	prevReturn := c.curReturnType
	c.curReturnType = fd.ReturnType

	for _, p := range fd.Params {
		sym := &Symbol{Name: p.Name, Type: p.Type, IsMut: true, IsInitialized: true, Loc: p.L}
		c.fillArrayInfo(sym, p.Type)
		if !c.syms.Insert(sym) {
			c.errorf(p.L, "duplicate parameter %q", p.Name)
		}
	}

	env := constraint.NewEnv()
	for _, st := range fd.Body {
		c.checkStmt(st, env)
	}

	c.curReturnType = prevReturn
	c.popScopeWithChecks(level)
}

func (c *Checker) checkTestDecl(d *ast.TestDecl) {
	level := c.syms.PushFuncScope()
	prevReturn := c.curReturnType
	c.curReturnType = ast.ErrorUnionType(namedType("void"), d.L)

	env := constraint.NewEnv()
	for _, st := range d.Body {
		c.checkStmt(st, env)
	}

	c.curReturnType = prevReturn
	c.popScopeWithChecks(level)
}

func (c *Checker) fillArrayInfo(sym *Symbol, t *ast.Type) {
	if t == nil || t.Kind != ast.TypeArray {
		return
	}
	sym.ElementType = t.Elem
	if n, ok := c.foldConstInt(t.SizeExpr); ok {
		sym.ArraySize = n
		sym.HasArraySize = true
	}
}

// popScopeWithChecks runs the unmodified-var sweep (safety check (a))
// for every FromVarDecl, mutable symbol declared at level, then pops.
func (c *Checker) popScopeWithChecks(level int) {
	for _, sym := range c.syms.SymbolsInOrder(level) {
		if !sym.FromVarDecl || !sym.IsMut || sym.IsModified {
			continue
		}
		if loopVarWhitelist[sym.Name] {
			continue
		}
		c.errorf(sym.Loc, "variable %q is never modified", sym.Name)
	}
	c.syms.PopScope()
}

// ============================================================
// Statements
// ============================================================

func (c *Checker) checkStmt(stmt ast.Stmt, env *constraint.Env) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.checkLocalVarDecl(s, env)
	case *ast.IfStmt:
		c.checkIfStmt(s, env)
	case *ast.WhileStmt:
		c.checkWhileStmt(s, env)
	case *ast.ForStmt:
		c.checkForStmt(s, env)
	case *ast.ReturnStmt:
		c.checkReturnStmt(s, env)
	case *ast.AssignStmt:
		c.checkAssignStmt(s, env)
	case *ast.BlockStmt:
		level := c.syms.PushBlockScope()
		for _, st := range s.Stmts {
			c.checkStmt(st, env)
		}
		c.popScopeWithChecks(level)
	case *ast.DeferStmt:
		c.checkStmt(s.Stmt, env)
	case *ast.ErrdeferStmt:
		c.checkStmt(s.Stmt, env)
	case *ast.ExprStmt:
		c.checkExpr(s.X, env)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// no checks
	}
}

func (c *Checker) checkLocalVarDecl(d *ast.VarDecl, env *constraint.Env) {
	var initType *ast.Type
	if d.Init != nil {
		initType = c.checkExpr(d.Init, env)
	}
	t := d.Type
	if t == nil {
		t = initType
	}
	if d.Type != nil && d.Init != nil && !c.assignable(d.Type, initType, d.Init) {
		c.errorf(d.L, "cannot initialize %q of type %s with value of type %s", d.Name, d.Type.String(), initType.String())
	}
	sym := &Symbol{
		Name: d.Name, Type: t,
		IsMut: d.VarKind == ast.VarVar || d.VarKind == ast.VarLetMut,
		IsConst: d.VarKind == ast.VarConst, IsInitialized: d.Init != nil,
		Loc: d.L, FromVarDecl: true,
	}
	c.fillArrayInfo(sym, t)
	if sym.IsConst && d.Init != nil {
		if v, ok := c.foldConstInt(d.Init); ok {
			sym.ConstValue = &v
		}
	}
	if !c.syms.Insert(sym) {
		c.errorf(d.L, "duplicate symbol %q", d.Name)
	}
	if d.Init != nil {
		env.Clear(d.Name)
		if v, ok := c.foldConstInt(d.Init); ok {
			env.Add(d.Name, constraint.Range(v, v+1))
			if v != 0 {
				env.Add(d.Name, constraint.Nonzero())
			}
		}
	}
}

func (c *Checker) checkIfStmt(s *ast.IfStmt, env *constraint.Env) {
	condType := c.checkExpr(s.Cond, env)
	if !isBoolType(condType) {
		c.errorf(s.Cond.Loc(), "if condition must be bool")
	}

	thenEnv := env.Copy()
	deriveConstraints(s.Cond, thenEnv)
	level := c.syms.PushBlockScope()
	for _, st := range s.Then.Stmts {
		c.checkStmt(st, thenEnv)
	}
	c.popScopeWithChecks(level)

	switch elseStmt := s.Else.(type) {
	case nil:
	case *ast.BlockStmt:
		elseEnv := env.Copy()
		elevel := c.syms.PushBlockScope()
		for _, st := range elseStmt.Stmts {
			c.checkStmt(st, elseEnv)
		}
		c.popScopeWithChecks(elevel)
	case *ast.IfStmt:
		c.checkIfStmt(elseStmt, env.Copy())
	}
}

func (c *Checker) checkWhileStmt(s *ast.WhileStmt, env *constraint.Env) {
	condType := c.checkExpr(s.Cond, env)
	if !isBoolType(condType) {
		c.errorf(s.Cond.Loc(), "while condition must be bool")
	}

	bodyEnv := env.Copy()
	deriveConstraints(s.Cond, bodyEnv)
	level := c.syms.PushBlockScope()
	for _, st := range s.Body.Stmts {
		c.checkStmt(st, bodyEnv)
	}
	c.popScopeWithChecks(level)
}

func (c *Checker) checkForStmt(s *ast.ForStmt, env *constraint.Env) {
	scrutType := c.checkExpr(s.Scrutinee, env)
	level := c.syms.PushBlockScope()

	elemType := scrutType
	if scrutType != nil && scrutType.Kind == ast.TypeArray {
		elemType = scrutType.Elem
	}
	if s.ValueVar != "" {
		vt := elemType
		if s.IsRef {
			vt = ast.PointerType(elemType, s.L)
		}
		c.syms.Insert(&Symbol{Name: s.ValueVar, Type: vt, IsMut: true, IsInitialized: true, Loc: s.L})
	}
	if s.IndexVar != "" {
		c.syms.Insert(&Symbol{Name: s.IndexVar, Type: namedType("usize"), IsMut: true, IsInitialized: true, Loc: s.L})
	}

	bodyEnv := env.Copy()
	for _, st := range s.Body.Stmts {
		c.checkStmt(st, bodyEnv)
	}
	c.popScopeWithChecks(level)
}

func (c *Checker) checkReturnStmt(s *ast.ReturnStmt, env *constraint.Env) {
	var valType *ast.Type
	if s.Value != nil {
		valType = c.checkExpr(s.Value, env)
	}
	want := c.curReturnType
	if want == nil {
		if s.Value != nil {
			c.errorf(s.L, "function has no return type but return has a value")
		}
		return
	}
	if s.Value == nil {
		if !isVoidType(want) {
			c.errorf(s.L, "missing return value, expected %s", want.String())
		}
		return
	}
	if !c.assignable(want, valType, s.Value) {
		c.errorf(s.L, "return type mismatch: expected %s, got %s", want.String(), typeNameOrUnknown(valType))
	}
}

func (c *Checker) checkAssignStmt(s *ast.AssignStmt, env *constraint.Env) {
	destType := c.checkExpr(s.Dest, env)
	srcType := c.checkExpr(s.Src, env)

	if id, ok := s.Dest.(*ast.IdentExpr); ok {
		if sym, found := c.syms.Lookup(id.Name); found {
			if sym.IsConst {
				c.errorf(s.L, "cannot assign to const %q", id.Name)
			}
			sym.IsModified = true
			sym.IsInitialized = true
			env.Clear(id.Name)
			if v, ok := c.foldConstInt(s.Src); ok {
				env.Add(id.Name, constraint.Range(v, v+1))
				if v != 0 {
					env.Add(id.Name, constraint.Nonzero())
				}
			}
		} else {
			c.errorf(s.L, "assignment to undefined identifier %q", id.Name)
		}
	}

	if destType != nil && srcType != nil && !c.assignable(destType, srcType, s.Src) {
		c.errorf(s.L, "assignment type mismatch: destination %s, value %s", destType.String(), srcType.String())
	}
}

func isBoolType(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeNamed && t.Name == "bool"
}

func isVoidType(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeNamed && t.Name == "void"
}

func typeNameOrUnknown(t *ast.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

// ============================================================
// Constraint propagation (spec.md §4.4)
// ============================================================

func deriveConstraints(cond ast.Expr, target *constraint.Env) {
	b, ok := cond.(*ast.BinaryExpr)
	if !ok {
		return
	}
	switch b.Op {
	case ast.OpLAnd:
		deriveConstraints(b.Left, target)
		deriveConstraints(b.Right, target)
	case ast.OpLt:
		if name, k, ok := asIdentConst(b.Left, b.Right); ok {
			target.Add(name, constraint.Range(constraint.Int64Min, k))
		} else if name, k, ok := asConstIdent(b.Left, b.Right); ok {
			// k < x  =>  x > k
			target.Add(name, constraint.Range(k+1, constraint.Int64Max))
		}
	case ast.OpLe:
		if name, k, ok := asIdentConst(b.Left, b.Right); ok {
			target.Add(name, constraint.Range(constraint.Int64Min, k+1))
		} else if name, k, ok := asConstIdent(b.Left, b.Right); ok {
			// k <= x  =>  x >= k
			target.Add(name, constraint.Range(k, constraint.Int64Max))
		}
	case ast.OpGt:
		if name, k, ok := asIdentConst(b.Left, b.Right); ok {
			target.Add(name, constraint.Range(k+1, constraint.Int64Max))
		} else if name, k, ok := asConstIdent(b.Left, b.Right); ok {
			// k > x  =>  x < k
			target.Add(name, constraint.Range(constraint.Int64Min, k))
		}
	case ast.OpGe:
		if name, k, ok := asIdentConst(b.Left, b.Right); ok {
			target.Add(name, constraint.Range(k, constraint.Int64Max))
		} else if name, k, ok := asConstIdent(b.Left, b.Right); ok {
			// k >= x  =>  x <= k
			target.Add(name, constraint.Range(constraint.Int64Min, k+1))
		}
	case ast.OpNe:
		if name, k, ok := asIdentConst(b.Left, b.Right); ok && k == 0 {
			target.Add(name, constraint.Nonzero())
		} else if name, k, ok := asConstIdent(b.Left, b.Right); ok && k == 0 {
			target.Add(name, constraint.Nonzero())
		}
	}
}

// asIdentConst matches `ident OP constant`.
func asIdentConst(left, right ast.Expr) (string, int64, bool) {
	id, ok := left.(*ast.IdentExpr)
	if !ok {
		return "", 0, false
	}
	num, ok := right.(*ast.NumericExpr)
	if !ok || num.IsFloat {
		return "", 0, false
	}
	return id.Name, num.IntVal, true
}

// asConstIdent matches `constant OP ident`.
func asConstIdent(left, right ast.Expr) (string, int64, bool) {
	num, ok := left.(*ast.NumericExpr)
	if !ok || num.IsFloat {
		return "", 0, false
	}
	id, ok := right.(*ast.IdentExpr)
	if !ok {
		return "", 0, false
	}
	return id.Name, num.IntVal, true
}

// ============================================================
// Expressions
// ============================================================

func (c *Checker) checkExpr(e ast.Expr, env *constraint.Env) *ast.Type {
	if e == nil {
		return nil
	}
	var t *ast.Type
	switch x := e.(type) {
	case *ast.NumericExpr:
		if x.IsFloat {
			t = namedType("f64")
		} else {
			t = namedType("i32")
		}
	case *ast.BooleanExpr:
		t = namedType("bool")
	case *ast.NullExpr:
		t = namedType("void")
	case *ast.StringExpr:
		t = ast.ArrayType(namedType("byte"), &ast.NumericExpr{IntVal: int64(len(x.Value) + 1)}, x.L)
	case *ast.StringInterpExpr:
		for _, seg := range x.Interps {
			c.checkExpr(seg.Expr, env)
		}
		t = ast.ArrayType(namedType("byte"), &ast.NumericExpr{IntVal: 0}, x.L)
	case *ast.IdentExpr:
		t = c.checkIdentExpr(x)
	case *ast.ErrorValueExpr:
		if len(c.errorNames) > 0 && !c.errorNames[x.Name] {
			c.errorf(x.L, "undefined error value %q", x.Name)
		}
		t = namedType("error")
	case *ast.BinaryExpr:
		t = c.checkBinaryExprInner(x, env, false)
	case *ast.UnaryExpr:
		t = c.checkUnaryExpr(x, env)
	case *ast.CastExpr:
		c.checkExpr(x.Operand, env)
		if x.Fallible {
			t = ast.ErrorUnionType(x.TargetType, x.L)
		} else {
			t = x.TargetType
		}
	case *ast.CallExpr:
		t = c.checkCallExpr(x, env)
	case *ast.MemberExpr:
		t = c.checkMemberExpr(x, env)
	case *ast.SubscriptExpr:
		t = c.checkSubscriptExpr(x, env)
	case *ast.StructInitExpr:
		t = c.checkStructInitExpr(x, env)
	case *ast.ArrayLiteralExpr:
		var elemT *ast.Type
		for _, el := range x.Elems {
			et := c.checkExpr(el, env)
			if elemT == nil {
				elemT = et
			}
		}
		t = ast.ArrayType(elemT, &ast.NumericExpr{IntVal: int64(len(x.Elems))}, x.L)
	case *ast.TupleLiteralExpr:
		elems := make([]*ast.Type, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = c.checkExpr(el, env)
		}
		t = ast.TupleType(elems, x.L)
	case *ast.CatchExpr:
		t = c.checkCatchExpr(x, env)
	case *ast.MatchExpr:
		t = c.checkMatchExpr(x, env)
	default:
		t = nil
	}
	if t != nil {
		e.SetType(t)
	}
	return t
}

func (c *Checker) checkIdentExpr(x *ast.IdentExpr) *ast.Type {
	if strings.HasPrefix(x.Name, "@") {
		return namedType("usize")
	}
	sym, found := c.syms.Lookup(x.Name)
	if !found {
		c.errorf(x.L, "undefined identifier %q", x.Name)
		return nil
	}
	if !sym.IsConst && !sym.IsInitialized && !isArrayType(sym.Type) {
		c.errorf(x.L, "use of uninitialized variable %q", x.Name)
	}
	return sym.Type
}

func isArrayType(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeArray
}

func isArithOp(op ast.BinaryOp) bool {
	return op == ast.OpAdd || op == ast.OpSub || op == ast.OpMul
}

func isComparisonOrLogical(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpLAnd, ast.OpLOr:
		return true
	default:
		return false
	}
}

// checkBinaryExprInner type-checks a binary expression's operands and
// infers its result type, optionally skipping the overflow check — the
// `try a + b` form exempts its inner BinaryExpr, per spec.md §4.4 (c).
func (c *Checker) checkBinaryExprInner(x *ast.BinaryExpr, env *constraint.Env, skipOverflow bool) *ast.Type {
	lt := c.checkExpr(x.Left, env)
	c.checkExpr(x.Right, env)

	var t *ast.Type
	if isComparisonOrLogical(x.Op) {
		t = namedType("bool")
	} else {
		t = lt
	}

	switch x.Op {
	case ast.OpDiv, ast.OpMod:
		c.checkDivideByZero(x, env)
	case ast.OpAdd, ast.OpSub, ast.OpMul:
		if !skipOverflow {
			c.checkOverflowRequiresExplicitOp(x, env, t)
		}
	}

	x.SetType(t)
	return t
}

func isFloatNamed(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeNamed && (t.Name == "f32" || t.Name == "f64")
}

func (c *Checker) checkDivideByZero(x *ast.BinaryExpr, env *constraint.Env) {
	switch d := x.Right.(type) {
	case *ast.NumericExpr:
		if (!d.IsFloat && d.IntVal == 0) || (d.IsFloat && d.FloatVal == 0) {
			c.errorf(x.L, "division by constant zero")
		}
	case *ast.IdentExpr:
		if !env.Has(d.Name, constraint.KindNonzero) {
			c.errorf(x.L, "divisor %q is not proven nonzero", d.Name)
		}
	default:
		c.errorf(x.L, "divisor must be a constant or a name with a proven nonzero constraint")
	}
}

func (c *Checker) checkOverflowRequiresExplicitOp(x *ast.BinaryExpr, env *constraint.Env, resultType *ast.Type) {
	if isFloatNamed(resultType) {
		return
	}
	leftConst := c.isConstantExpr(x.Left)
	rightConst := c.isConstantExpr(x.Right)
	if leftConst && rightConst {
		if _, ok := c.foldConstInt(x); !ok {
			c.errorf(x.L, "constant expression overflows")
		}
		return
	}
	if leftConst != rightConst {
		return
	}
	c.errorf(x.L, "potential integer overflow: use a wrapping (+%%/-%%/*%%), saturating (+|/-|/*|), or try-prefixed operator")
}

func (c *Checker) checkUnaryExpr(x *ast.UnaryExpr, env *constraint.Env) *ast.Type {
	if x.Op == ast.UnaryTry {
		if be, ok := x.Operand.(*ast.BinaryExpr); ok && isArithOp(be.Op) {
			return c.checkBinaryExprInner(be, env, true)
		}
		return c.checkExpr(x.Operand, env)
	}

	ot := c.checkExpr(x.Operand, env)
	switch x.Op {
	case ast.UnaryAddr:
		if id, ok := x.Operand.(*ast.IdentExpr); ok {
			if sym, found := c.syms.Lookup(id.Name); found {
				sym.IsModified = true
			}
		}
		return ast.PointerType(ot, x.L)
	case ast.UnaryDeref:
		if ot != nil && ot.Kind == ast.TypePointer {
			return ot.Elem
		}
		return ot
	default:
		return ot
	}
}

func (c *Checker) checkCallExpr(x *ast.CallExpr, env *constraint.Env) *ast.Type {
	switch callee := x.Callee.(type) {
	case *ast.IdentExpr:
		if strings.HasPrefix(callee.Name, "@") {
			return c.checkBuiltinCall(callee.Name, x.Args, env)
		}
		sig, found := c.funcs.Lookup(callee.Name)
		if !found {
			c.errorf(x.L, "call to undefined function %q", callee.Name)
			for _, a := range x.Args {
				c.checkExpr(a, env)
			}
			return nil
		}
		c.checkCallArgs(x.L, sig, x.Args, env, nil)
		return sig.ReturnType
	case *ast.MemberExpr:
		c.checkExpr(callee.X, env)
		sig, found := c.funcs.Lookup(callee.Name)
		if !found {
			c.errorf(x.L, "call to undefined method %q", callee.Name)
			for _, a := range x.Args {
				c.checkExpr(a, env)
			}
			return nil
		}
		c.checkCallArgs(x.L, sig, x.Args, env, callee.X)
		return sig.ReturnType
	default:
		c.checkExpr(x.Callee, env)
		for _, a := range x.Args {
			c.checkExpr(a, env)
		}
		return nil
	}
}

func (c *Checker) checkBuiltinCall(name string, args []ast.Expr, env *constraint.Env) *ast.Type {
	var argTypes []*ast.Type
	for _, a := range args {
		argTypes = append(argTypes, c.checkExpr(a, env))
	}
	switch name {
	case "@min", "@max":
		if len(argTypes) > 0 && argTypes[0] != nil {
			return argTypes[0]
		}
		return namedType("i32")
	default:
		return namedType("usize")
	}
}

// checkCallArgs validates arity (accounting for varargs and an
// implicit method-call receiver) and per-parameter type compatibility,
// per spec.md §4.4's function-call-checking and method-call-desugaring
// rules. implicitSelf is the receiver expression for `obj.name(args)`
// calls, nil for plain calls.
func (c *Checker) checkCallArgs(loc ast.SourceLoc, sig *FuncSig, args []ast.Expr, env *constraint.Env, implicitSelf ast.Expr) {
	total := len(args)
	if implicitSelf != nil {
		total++
	}
	fixedArity := len(sig.ParamTypes)
	if sig.HasVarargs {
		if total < fixedArity {
			c.errorf(loc, "not enough arguments to %q: want at least %d, got %d", sig.Name, fixedArity, total)
		}
	} else if total != fixedArity {
		c.errorf(loc, "wrong number of arguments to %q: want %d, got %d", sig.Name, fixedArity, total)
	}

	argIdx := 0
	if implicitSelf != nil && fixedArity > 0 {
		c.checkSelfArg(sig.ParamTypes[0], implicitSelf, env)
		argIdx = 1
	}
	for _, a := range args {
		if argIdx < fixedArity {
			c.checkOneArg(sig.ParamTypes[argIdx], a, env)
		} else {
			c.checkExpr(a, env)
		}
		argIdx++
	}
}

// checkSelfArg type-checks the receiver of a desugared method call
// (`obj.name(args)` → `name(&obj, args)`, spec.md §4.4). A pointer
// self-parameter accepts either an already-pointer-typed receiver or a
// plain value whose type matches the pointee, the latter standing in
// for the auto-address-of the IR generator performs; either way a
// bare-identifier receiver is marked modified, matching the ordinary
// pointer-argument rule checkOneArg applies.
func (c *Checker) checkSelfArg(paramType *ast.Type, recvExpr ast.Expr, env *constraint.Env) {
	recvType := c.checkExpr(recvExpr, env)
	if paramType != nil && paramType.Kind == ast.TypePointer && recvType != nil &&
		!recvType.Equal(paramType) && paramType.Elem != nil && paramType.Elem.Equal(recvType) {
		if id, ok := recvExpr.(*ast.IdentExpr); ok {
			if sym, found := c.syms.Lookup(id.Name); found {
				sym.IsModified = true
			}
		}
		return
	}
	if paramType != nil && recvType != nil && !c.assignable(paramType, recvType, recvExpr) {
		c.errorf(recvExpr.Loc(), "argument type mismatch: want %s, got %s", paramType.String(), recvType.String())
	}
	if paramType == nil || paramType.Kind != ast.TypePointer {
		return
	}
	switch a := recvExpr.(type) {
	case *ast.IdentExpr:
		if sym, found := c.syms.Lookup(a.Name); found {
			sym.IsModified = true
		}
	case *ast.UnaryExpr:
		if a.Op == ast.UnaryAddr {
			if id, ok := a.Operand.(*ast.IdentExpr); ok {
				if sym, found := c.syms.Lookup(id.Name); found {
					sym.IsModified = true
				}
			}
		}
	}
}

func (c *Checker) checkOneArg(paramType *ast.Type, argExpr ast.Expr, env *constraint.Env) {
	argType := c.checkExpr(argExpr, env)
	if paramType != nil && argType != nil && !c.assignable(paramType, argType, argExpr) {
		c.errorf(argExpr.Loc(), "argument type mismatch: want %s, got %s", paramType.String(), argType.String())
	}
	if paramType == nil || paramType.Kind != ast.TypePointer {
		return
	}
	switch a := argExpr.(type) {
	case *ast.IdentExpr:
		if sym, found := c.syms.Lookup(a.Name); found {
			sym.IsModified = true
		}
	case *ast.UnaryExpr:
		if a.Op == ast.UnaryAddr {
			if id, ok := a.Operand.(*ast.IdentExpr); ok {
				if sym, found := c.syms.Lookup(id.Name); found {
					sym.IsModified = true
				}
			}
		}
	}
}

func (c *Checker) checkMemberExpr(x *ast.MemberExpr, env *constraint.Env) *ast.Type {
	xt := c.checkExpr(x.X, env)
	base := xt
	if base != nil && base.Kind == ast.TypePointer {
		base = base.Elem
	}
	if base == nil || base.Kind != ast.TypeNamed {
		return nil
	}
	sd, found := c.structs[base.Name]
	if !found {
		return nil
	}
	for _, f := range sd.Fields {
		if f.Name == x.Name {
			return f.Type
		}
	}
	c.errorf(x.L, "struct %q has no field %q", base.Name, x.Name)
	return nil
}

func (c *Checker) checkSubscriptExpr(x *ast.SubscriptExpr, env *constraint.Env) *ast.Type {
	xt := c.checkExpr(x.X, env)
	c.checkExpr(x.Index, env)
	c.checkArrayBound(x, xt, env)
	if xt != nil && xt.Kind == ast.TypeArray {
		return xt.Elem
	}
	return nil
}

// checkArrayBound implements safety check (d): a[i]'s static size must
// be known; a constant index must lie in [0, size), a named index must
// carry a Range constraint within [0, size).
func (c *Checker) checkArrayBound(x *ast.SubscriptExpr, arrType *ast.Type, env *constraint.Env) {
	if arrType == nil || arrType.Kind != ast.TypeArray {
		return
	}
	size, sizeKnown := c.foldConstInt(arrType.SizeExpr)
	if !sizeKnown {
		return
	}
	switch idx := x.Index.(type) {
	case *ast.NumericExpr:
		if idx.IsFloat {
			return
		}
		if idx.IntVal < 0 || idx.IntVal >= size {
			c.errorf(x.L, "array index %d out of bounds for size %d", idx.IntVal, size)
		}
	case *ast.IdentExpr:
		set := env.SetFor(idx.Name)
		if !set.RangeWithinArrayBound(size) {
			c.errorf(x.L, "array index %q is not proven within bounds [0, %d)", idx.Name, size)
		}
	}
}

func (c *Checker) checkStructInitExpr(x *ast.StructInitExpr, env *constraint.Env) *ast.Type {
	sd, found := c.structs[x.TypeName]
	if !found {
		c.errorf(x.L, "undefined struct %q", x.TypeName)
		for _, v := range x.FieldValues {
			c.checkExpr(v, env)
		}
		return nil
	}
	fieldType := func(name string) *ast.Type {
		for _, f := range sd.Fields {
			if f.Name == name {
				return f.Type
			}
		}
		return nil
	}
	for i, name := range x.FieldNames {
		vt := c.checkExpr(x.FieldValues[i], env)
		ft := fieldType(name)
		if ft == nil {
			c.errorf(x.L, "struct %q has no field %q", x.TypeName, name)
			continue
		}
		if vt != nil && !c.assignable(ft, vt, x.FieldValues[i]) {
			c.errorf(x.FieldValues[i].Loc(), "field %q type mismatch: want %s, got %s", name, ft.String(), vt.String())
		}
	}
	return ast.NamedType(x.TypeName, x.L)
}

func (c *Checker) checkCatchExpr(x *ast.CatchExpr, env *constraint.Env) *ast.Type {
	tryT := c.checkExpr(x.Try, env)
	if x.Handler != nil {
		level := c.syms.PushBlockScope()
		if x.ErrName != "" {
			c.syms.Insert(&Symbol{Name: x.ErrName, Type: namedType("error"), IsInitialized: true, Loc: x.L})
		}
		handlerEnv := env.Copy()
		for _, st := range x.Handler.Stmts {
			c.checkStmt(st, handlerEnv)
		}
		c.popScopeWithChecks(level)
	}
	if tryT != nil && tryT.Kind == ast.TypeErrorUnion {
		return tryT.Elem
	}
	return tryT
}

func (c *Checker) checkMatchExpr(x *ast.MatchExpr, env *constraint.Env) *ast.Type {
	scrutType := c.checkExpr(x.Scrutinee, env)
	var resultType *ast.Type
	for _, arm := range x.Arms {
		level := c.syms.PushBlockScope()
		switch arm.Pattern.Kind {
		case ast.PatStruct:
			c.bindStructPattern(arm.Pattern, scrutType)
		case ast.PatLiteral:
			c.checkExpr(arm.Pattern.Literal, env)
		}
		armEnv := env.Copy()
		bodyT := c.checkExpr(arm.Body, armEnv)
		if resultType == nil {
			resultType = bodyT
		}
		c.popScopeWithChecks(level)
	}
	return resultType
}

func (c *Checker) bindStructPattern(p *ast.MatchPattern, scrutType *ast.Type) {
	base := scrutType
	if base != nil && base.Kind == ast.TypePointer {
		base = base.Elem
	}
	var sd *ast.StructDecl
	if base != nil && base.Kind == ast.TypeNamed {
		sd = c.structs[base.Name]
	}
	for i, fname := range p.FieldNames {
		var ft *ast.Type
		if sd != nil {
			for _, f := range sd.Fields {
				if f.Name == fname {
					ft = f.Type
				}
			}
		}
		bindName := fname
		if i < len(p.Bindings) && p.Bindings[i] != "" {
			bindName = p.Bindings[i]
		}
		c.syms.Insert(&Symbol{Name: bindName, Type: ft, IsInitialized: true, Loc: p.L})
	}
}

// ============================================================
// Assignment compatibility (spec.md §4.4)
// ============================================================

// assignable implements "exact-match on both types, with two integer-
// literal relaxations: any integer literal may bind to any integer- or
// float-typed destination; a string-interpolation expression may bind
// to an array destination." Plain (non-interpolated) string literals
// are modeled as array types by checkExpr, so they fall under the same
// array-to-array relaxation.
func (c *Checker) assignable(dest, src *ast.Type, srcExpr ast.Expr) bool {
	if dest == nil || src == nil {
		return true
	}
	if dest.Equal(src) {
		return true
	}
	if isIntegerLiteralExpr(srcExpr) && isNumericNamed(dest) {
		return true
	}
	if dest.Kind == ast.TypeArray && src.Kind == ast.TypeArray {
		return true
	}
	if dest.Kind == ast.TypeErrorUnion {
		if src != nil && src.Kind == ast.TypeNamed && src.Name == "error" {
			return true
		}
		return c.assignable(dest.Elem, src, srcExpr)
	}
	return false
}

func isIntegerLiteralExpr(e ast.Expr) bool {
	num, ok := e.(*ast.NumericExpr)
	return ok && !num.IsFloat
}

func isNumericNamed(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeNamed && numericTypeNames[t.Name]
}
