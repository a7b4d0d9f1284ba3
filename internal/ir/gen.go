package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/check"
)

// Generator lowers a checked *ast.Program to a Module. It consults
// the Checker's function table to perform the method-call desugar
// spec.md §4.4 names ("the IR generator performs the desugar") and the
// struct registry (re-derived locally from top-level decls, since the
// checker does not export its own) to emit synthetic tuple structs.
type Generator struct {
	funcs   *check.FuncTab
	structs map[string]*ast.StructDecl

	nextID int

	tupleNames map[string]bool
	tupleDecls []*Instr
}

// New returns a Generator that will consult checker's function table
// for method-call desugaring.
func New(checker *check.Checker) *Generator {
	return &Generator{
		funcs:      checker.Funcs(),
		structs:    make(map[string]*ast.StructDecl),
		tupleNames: make(map[string]bool),
	}
}

func (g *Generator) newID() int {
	id := g.nextID
	g.nextID++
	return id
}

// Generate lowers prog into a Module. Synthetic tuple struct decls are
// collected during body generation and prepended to the module's
// declaration list, ahead of every function that might reference them,
// per spec.md §3 "IR" lifecycle note.
func (g *Generator) Generate(prog *ast.Program) *Module {
	for _, d := range prog.Decls {
		if sd, ok := d.(*ast.StructDecl); ok {
			g.structs[sd.Name] = sd
		}
	}

	var decls []*Instr
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			decls = append(decls, g.genStructDecl(decl))
		case *ast.EnumDecl:
			decls = append(decls, g.genEnumDecl(decl))
		case *ast.FuncDecl:
			decls = append(decls, g.genFuncDef(decl, false))
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				decls = append(decls, g.genFuncDef(m, false))
			}
		case *ast.TestDecl:
			decls = append(decls, g.genTestDef(decl))
		case *ast.VarDecl:
			decls = append(decls, g.genVarDecl(decl, nil))
		}
	}

	out := make([]*Instr, 0, len(g.tupleDecls)+len(decls))
	out = append(out, g.tupleDecls...)
	out = append(out, decls...)
	return &Module{Decls: out}
}

func (g *Generator) genStructDecl(d *ast.StructDecl) *Instr {
	fields := make([]FieldSig, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = FieldSig{Name: f.Name, Type: f.Type}
	}
	return &Instr{ID: g.newID(), Kind: KStructDecl, Loc: d.L, StructName: d.Name, Fields: fields}
}

func (g *Generator) genEnumDecl(d *ast.EnumDecl) *Instr {
	return &Instr{ID: g.newID(), Kind: KEnumDecl, Loc: d.L, StructName: d.Name, Underlying: d.Underlying, Variants: d.Variants}
}

func (g *Generator) genFuncDef(fd *ast.FuncDecl, isTest bool) *Instr {
	params := make([]FieldSig, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = FieldSig{Name: p.Name, Type: p.Type}
	}
	instr := &Instr{
		ID:         g.newID(),
		Kind:       KFuncDef,
		Loc:        fd.L,
		FnName:     fd.Name,
		Params:     params,
		ReturnType: fd.ReturnType,
		IsExtern:   fd.IsExtern,
		IsVarargs:  fd.IsVarargs,
		IsTest:     isTest,
	}
	if !fd.IsExtern {
		instr.FnBody = g.genBlock(fd.Body)
	}
	return instr
}

func (g *Generator) genTestDef(d *ast.TestDecl) *Instr {
	instr := &Instr{
		ID:         g.newID(),
		Kind:       KFuncDef,
		Loc:        d.L,
		FnName:     d.Name,
		ReturnType: ast.ErrorUnionType(ast.NamedType("void", d.L), d.L),
		IsTest:     true,
	}
	instr.FnBody = g.genBlock(d.Body)
	return instr
}

func (g *Generator) genBlock(stmts []ast.Stmt) []*Instr {
	out := make([]*Instr, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, g.genStmt(s)...)
	}
	return out
}

// genStmt lowers one statement to zero or more instructions (a
// tuple-literal initializer may need its StructDecl spliced ahead of
// it at module scope, not inline, so most statements lower 1:1).
func (g *Generator) genStmt(s ast.Stmt) []*Instr {
	switch st := s.(type) {
	case *ast.VarDecl:
		return []*Instr{g.genVarDecl(st, nil)}
	case *ast.ReturnStmt:
		var v *Instr
		if st.Value != nil {
			v = g.genExpr(st.Value)
		}
		return []*Instr{{ID: g.newID(), Kind: KReturn, Loc: st.L, Value: v}}
	case *ast.IfStmt:
		return []*Instr{g.genIf(st)}
	case *ast.WhileStmt:
		return []*Instr{{ID: g.newID(), Kind: KWhile, Loc: st.L, Cond: g.genExpr(st.Cond), Body: g.genBlock(st.Body.Stmts)}}
	case *ast.ForStmt:
		return []*Instr{g.genFor(st)}
	case *ast.BlockStmt:
		return []*Instr{{ID: g.newID(), Kind: KBlock, Loc: st.L, Stmts: g.genBlock(st.Stmts)}}
	case *ast.AssignStmt:
		return []*Instr{{ID: g.newID(), Kind: KAssign, Loc: st.L, Op: st.Op, Dest: g.genExpr(st.Dest), Src: g.genExpr(st.Src)}}
	case *ast.ExprStmt:
		return []*Instr{g.genExpr(st.X)}
	case *ast.DeferStmt:
		inner := g.genStmt(st.Stmt)
		var body *Instr
		if len(inner) == 1 {
			body = inner[0]
		} else {
			body = &Instr{ID: g.newID(), Kind: KBlock, Stmts: inner}
		}
		return []*Instr{{ID: g.newID(), Kind: KDefer, Loc: st.L, Stmt: body}}
	case *ast.ErrdeferStmt:
		inner := g.genStmt(st.Stmt)
		var body *Instr
		if len(inner) == 1 {
			body = inner[0]
		} else {
			body = &Instr{ID: g.newID(), Kind: KBlock, Stmts: inner}
		}
		return []*Instr{{ID: g.newID(), Kind: KErrdefer, Loc: st.L, Stmt: body}}
	case *ast.BreakStmt:
		return []*Instr{{ID: g.newID(), Kind: KBreak, Loc: st.L}}
	case *ast.ContinueStmt:
		return []*Instr{{ID: g.newID(), Kind: KContinue, Loc: st.L}}
	default:
		return nil
	}
}

func (g *Generator) genVarDecl(d *ast.VarDecl, _ *ast.Type) *Instr {
	var init *Instr
	if d.Init != nil {
		init = g.genExpr(d.Init)
	}
	return &Instr{
		ID:      g.newID(),
		Kind:    KVarDecl,
		Loc:     d.L,
		Name:    d.Name,
		Type:    d.Type,
		IsConst: d.IsConst,
		Init:    init,
	}
}

func (g *Generator) genIf(s *ast.IfStmt) *Instr {
	instr := &Instr{ID: g.newID(), Kind: KIf, Loc: s.L, Cond: g.genExpr(s.Cond), Then: g.genBlock(s.Then.Stmts)}
	switch e := s.Else.(type) {
	case nil:
	case *ast.BlockStmt:
		instr.Else = g.genBlock(e.Stmts)
	case *ast.IfStmt:
		instr.Else = []*Instr{g.genIf(e)}
	}
	return instr
}

func (g *Generator) genFor(s *ast.ForStmt) *Instr {
	return &Instr{
		ID:        g.newID(),
		Kind:      KFor,
		Loc:       s.L,
		Iterable:  g.genExpr(s.Scrutinee),
		IndexVar:  s.IndexVar,
		ValueVar:  s.ValueVar,
		IsRef:     s.IsRef,
		Body:      g.genBlock(s.Body.Stmts),
	}
}

// genExpr lowers one expression. Every AST expression kind resolves to
// exactly one IR kind per spec.md §4.5, except the documented
// lowerings (tuple literal, match, catch, error-value, try,
// string-interpolation) which rewrite to a different shape entirely.
func (g *Generator) genExpr(e ast.Expr) *Instr {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *ast.NumericExpr:
		return &Instr{ID: g.newID(), Kind: KConstant, Loc: x.Loc(), Type: x.GetType(), ConstIsFloat: x.IsFloat, ConstInt: x.IntVal, ConstFloat: x.FloatVal}
	case *ast.BooleanExpr:
		return &Instr{ID: g.newID(), Kind: KConstant, Loc: x.Loc(), Type: x.GetType(), ConstIsBool: true, ConstBool: x.Value}
	case *ast.NullExpr:
		return &Instr{ID: g.newID(), Kind: KConstant, Loc: x.Loc(), Type: x.GetType()}
	case *ast.StringExpr:
		return &Instr{ID: g.newID(), Kind: KConstant, Loc: x.Loc(), Type: x.GetType(), ConstString: x.Value}
	case *ast.IdentExpr:
		return &Instr{ID: g.newID(), Kind: KIdent, Loc: x.Loc(), Type: x.GetType(), Name: x.Name}
	case *ast.ErrorValueExpr:
		return &Instr{ID: g.newID(), Kind: KErrorValue, Loc: x.Loc(), Type: x.GetType(), ErrorName: x.Name}
	case *ast.BinaryExpr:
		return &Instr{ID: g.newID(), Kind: KBinaryOp, Loc: x.Loc(), Type: x.GetType(), Op: binOpName(x.Op), Left: g.genExpr(x.Left), Right: g.genExpr(x.Right)}
	case *ast.UnaryExpr:
		if x.Op == ast.UnaryTry {
			return &Instr{ID: g.newID(), Kind: KErrorUnion, Loc: x.Loc(), Type: x.GetType(), Inner: g.genExpr(x.Operand)}
		}
		return &Instr{ID: g.newID(), Kind: KUnaryOp, Loc: x.Loc(), Type: x.GetType(), Op: unaryOpName(x.Op), Operand: g.genExpr(x.Operand)}
	case *ast.CastExpr:
		op := "as"
		if x.Fallible {
			op = "as!"
		}
		return &Instr{ID: g.newID(), Kind: KUnaryOp, Loc: x.Loc(), Type: x.GetType(), Op: op, Operand: g.genExpr(x.Operand)}
	case *ast.CallExpr:
		return g.genCall(x)
	case *ast.MemberExpr:
		return &Instr{ID: g.newID(), Kind: KMemberAccess, Loc: x.Loc(), Type: x.GetType(), X: g.genExpr(x.X), FieldName: x.Name}
	case *ast.SubscriptExpr:
		return &Instr{ID: g.newID(), Kind: KSubscript, Loc: x.Loc(), Type: x.GetType(), Base: g.genExpr(x.X), Index: g.genExpr(x.Index)}
	case *ast.StructInitExpr:
		return g.genStructInit(x)
	case *ast.ArrayLiteralExpr:
		args := make([]*Instr, len(x.Elems))
		for i, el := range x.Elems {
			args[i] = g.genExpr(el)
		}
		return &Instr{ID: g.newID(), Kind: KStructInit, Loc: x.Loc(), Type: x.GetType(), StructName: "", FieldValues: args}
	case *ast.TupleLiteralExpr:
		return g.genTupleLiteral(x)
	case *ast.CatchExpr:
		return &Instr{
			ID: g.newID(), Kind: KTryCatch, Loc: x.Loc(), Type: x.GetType(),
			TryBody: g.genExpr(x.Try), ErrName: x.ErrName, CatchBody: g.genBlock(x.Handler.Stmts),
		}
	case *ast.MatchExpr:
		return g.genMatch(x)
	case *ast.StringInterpExpr:
		return g.genStringInterp(x)
	default:
		return &Instr{ID: g.newID(), Kind: KConstant}
	}
}

func (g *Generator) genCall(x *ast.CallExpr) *Instr {
	if mx, ok := x.Callee.(*ast.MemberExpr); ok {
		if _, found := g.funcs.Lookup(mx.Name); found {
			args := make([]*Instr, 0, len(x.Args)+1)
			args = append(args, g.genReceiverArg(mx.X))
			for _, a := range x.Args {
				args = append(args, g.genExpr(a))
			}
			return &Instr{ID: g.newID(), Kind: KCall, Loc: x.Loc(), Type: x.GetType(), Callee: mx.Name, Args: args}
		}
		return &Instr{ID: g.newID(), Kind: KCall, Loc: x.Loc(), Type: x.GetType(), Callee: mx.Name, Args: g.genArgs(x.Args)}
	}
	name := ""
	if id, ok := x.Callee.(*ast.IdentExpr); ok {
		name = id.Name
	}
	return &Instr{ID: g.newID(), Kind: KCall, Loc: x.Loc(), Type: x.GetType(), Callee: name, Args: g.genArgs(x.Args)}
}

func (g *Generator) genArgs(args []ast.Expr) []*Instr {
	out := make([]*Instr, len(args))
	for i, a := range args {
		out[i] = g.genExpr(a)
	}
	return out
}

// genReceiverArg implements the auto-address-of half of spec.md
// §4.4's method-call desugar ("obj.name(args) ... becomes
// name(&obj, args), auto-address-of if obj is a value type"): a plain
// identifier receiver is wrapped in an address-of unary op; anything
// already pointer-shaped (a prior `&x` or a deref) is passed through.
func (g *Generator) genReceiverArg(recv ast.Expr) *Instr {
	inner := g.genExpr(recv)
	if id, ok := recv.(*ast.IdentExpr); ok {
		return &Instr{ID: g.newID(), Kind: KUnaryOp, Loc: id.Loc(), Op: "&", Operand: inner}
	}
	return inner
}

func (g *Generator) genStructInit(x *ast.StructInitExpr) *Instr {
	vals := make([]*Instr, len(x.FieldValues))
	for i, v := range x.FieldValues {
		vals[i] = g.genExpr(v)
	}
	return &Instr{ID: g.newID(), Kind: KStructInit, Loc: x.Loc(), Type: x.GetType(), StructName: x.TypeName, FieldNames: append([]string{}, x.FieldNames...), FieldValues: vals}
}

// genTupleLiteral lowers a tuple literal to a StructInit against a
// synthesized struct whose fields are named _0, _1, ... and whose
// struct name is deterministic across any two tuple types sharing an
// ordered element-type list (spec.md §4.5, §6 "Tuple type name").
func (g *Generator) genTupleLiteral(x *ast.TupleLiteralExpr) *Instr {
	vals := make([]*Instr, len(x.Elems))
	fieldNames := make([]string, len(x.Elems))
	elemTypes := make([]*ast.Type, len(x.Elems))
	for i, el := range x.Elems {
		vals[i] = g.genExpr(el)
		fieldNames[i] = fmt.Sprintf("_%d", i)
		elemTypes[i] = el.GetType()
	}
	name := g.ensureTupleStructDecl(elemTypes, x.Loc())
	return &Instr{ID: g.newID(), Kind: KStructInit, Loc: x.Loc(), Type: x.GetType(), StructName: name, FieldNames: fieldNames, FieldValues: vals}
}

func (g *Generator) ensureTupleStructDecl(elemTypes []*ast.Type, loc ast.SourceLoc) string {
	name := "tuple_" + typeKeyJoin(elemTypes)
	if g.tupleNames[name] {
		return name
	}
	g.tupleNames[name] = true
	fields := make([]FieldSig, len(elemTypes))
	for i, t := range elemTypes {
		fields[i] = FieldSig{Name: fmt.Sprintf("_%d", i), Type: t}
	}
	g.tupleDecls = append(g.tupleDecls, &Instr{ID: g.newID(), Kind: KStructDecl, Loc: loc, StructName: name, Fields: fields})
	return name
}

func typeKeyJoin(types []*ast.Type) string {
	keys := make([]string, len(types))
	for i, t := range types {
		keys[i] = typeKey(t)
	}
	return strings.Join(keys, "_")
}

func typeKey(t *ast.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case ast.TypeNamed:
		return t.Name
	case ast.TypePointer:
		return "p" + typeKey(t.Elem)
	case ast.TypeArray:
		return "a" + typeKey(t.Elem)
	case ast.TypeErrorUnion:
		return "e" + typeKey(t.Elem)
	case ast.TypeAtomic:
		return "atomic" + typeKey(t.Elem)
	default:
		return "v"
	}
}

// genMatch lowers a match expression to a right-associative chain of
// If instructions: the last arm is innermost, and `else` lowers to a
// constant-true condition, per spec.md §4.5.
func (g *Generator) genMatch(x *ast.MatchExpr) *Instr {
	return g.genMatchArms(x.Scrutinee, x.Arms)
}

func (g *Generator) genMatchArms(scrutinee ast.Expr, arms []*ast.MatchArm) *Instr {
	if len(arms) == 0 {
		return &Instr{ID: g.newID(), Kind: KConstant}
	}
	arm := arms[0]
	rest := arms[1:]

	var elseInstrs []*Instr
	if len(rest) > 0 {
		elseInstrs = []*Instr{g.genMatchArms(scrutinee, rest)}
	}

	switch arm.Pattern.Kind {
	case ast.PatWildcard:
		return &Instr{
			ID: g.newID(), Kind: KIf, Loc: arm.L,
			Cond: &Instr{ID: g.newID(), Kind: KConstant, ConstIsBool: true, ConstBool: true},
			Then: []*Instr{g.genExpr(arm.Body)},
			Else: elseInstrs,
		}
	case ast.PatLiteral:
		cond := &Instr{
			ID: g.newID(), Kind: KBinaryOp, Op: "==",
			Left:  g.genExpr(scrutinee),
			Right: g.genExpr(arm.Pattern.Literal),
		}
		return &Instr{ID: g.newID(), Kind: KIf, Loc: arm.L, Cond: cond, Then: []*Instr{g.genExpr(arm.Body)}, Else: elseInstrs}
	case ast.PatStruct:
		return g.genStructPatternArm(scrutinee, arm, elseInstrs)
	default:
		return &Instr{ID: g.newID(), Kind: KIf, Loc: arm.L, Cond: &Instr{ID: g.newID(), Kind: KConstant, ConstIsBool: true, ConstBool: true}, Then: []*Instr{g.genExpr(arm.Body)}, Else: elseInstrs}
	}
}

// genStructPatternArm lowers `StructName{field: bind, ...}` into an
// AND-chain of field comparisons (field present means "matches this
// struct shape", which this checker already verified at check time)
// plus binding VarDecls assigned from MemberAccess on the scrutinee,
// inserted at the top of the then-body, per spec.md §4.5.
func (g *Generator) genStructPatternArm(scrutinee ast.Expr, arm *ast.MatchArm, elseInstrs []*Instr) *Instr {
	scrIR := g.genExpr(scrutinee)
	cond := &Instr{ID: g.newID(), Kind: KConstant, ConstIsBool: true, ConstBool: true}

	var binds []*Instr
	for i, fieldName := range arm.Pattern.FieldNames {
		bindName := arm.Pattern.Bindings[i]
		access := &Instr{ID: g.newID(), Kind: KMemberAccess, X: cloneIdentLike(scrIR), FieldName: fieldName}
		binds = append(binds, &Instr{ID: g.newID(), Kind: KVarDecl, Name: bindName, Init: access})
	}

	then := append(binds, g.genExpr(arm.Body))
	return &Instr{ID: g.newID(), Kind: KIf, Loc: arm.L, Cond: cond, Then: then, Else: elseInstrs}
}

// cloneIdentLike returns a fresh instruction referencing the same
// identifier, since each MemberAccess binding needs its own node
// rather than sharing one Instr pointer across multiple accesses.
func cloneIdentLike(src *Instr) *Instr {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// genStringInterp lowers a string-interpolation expression to a
// StringInterpolation instruction carrying the original text segments,
// per-slot format specs, per-slot constant-value strings where the
// slot expression is a literal, and a buffer-size estimate, per
// spec.md §4.5.
func (g *Generator) genStringInterp(x *ast.StringInterpExpr) *Instr {
	slots := make([]*Instr, len(x.Interps))
	specs := make([]string, len(x.Interps))
	constVals := make([]string, len(x.Interps))

	var total int64
	for _, seg := range x.TextSegments {
		total += int64(len(seg))
	}
	for i, interp := range x.Interps {
		slots[i] = g.genExpr(interp.Expr)
		specs[i] = interp.Spec
		constVals[i] = constSlotValue(interp.Expr)
		total += slotSizeEstimate(interp.Expr.GetType(), interp.Spec)
	}

	return &Instr{
		ID: g.newID(), Kind: KStringInterpolation, Loc: x.Loc(), Type: x.GetType(),
		TextSegments:    append([]string{}, x.TextSegments...),
		FormatSpecs:     specs,
		Slots:           slots,
		ConstSlotValues: constVals,
		BufferSize:      roundUpToMultipleOf8(total),
	}
}

// slotSizeEstimate sizes one interpolation slot per the type-and-spec
// lookup table spec.md §4.5 names: integer slots are 11 bytes (32-bit
// or narrower) or 21 (64-bit/usize), float slots 24, with +2 when the
// `#` alternate-form flag is present on a non-float slot; an explicit
// field width in the format spec overrides the type-based minimum when
// larger.
func slotSizeEstimate(t *ast.Type, spec string) int64 {
	base := int64(11)
	isFloat := false
	if t != nil && t.Kind == ast.TypeNamed {
		switch t.Name {
		case "i64", "u64", "usize":
			base = 21
		case "f32", "f64":
			isFloat = true
			base = 24
		case "bool":
			base = 5
		}
	}
	if !isFloat && strings.ContainsRune(spec, '#') {
		base += 2
	}
	if w := specWidth(spec); w > base {
		base = w
	}
	return base
}

// specWidth extracts the width field from a parsed format spec
// (`[flags]? [width]? ('.' precision)? type?`, spec.md §4.3).
func specWidth(spec string) int64 {
	i := 0
	for i < len(spec) && strings.ContainsRune("#0-+ ", rune(spec[i])) {
		i++
	}
	start := i
	for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseInt(spec[start:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func constSlotValue(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.NumericExpr:
		if v.IsFloat {
			return strconv.FormatFloat(v.FloatVal, 'g', -1, 64)
		}
		return strconv.FormatInt(v.IntVal, 10)
	case *ast.BooleanExpr:
		if v.Value {
			return "true"
		}
		return "false"
	case *ast.StringExpr:
		return v.Value
	default:
		return ""
	}
}

// roundUpToMultipleOf8 rounds n up to the next multiple of 8, with a
// floor of 8, per spec.md §4.5's buffer-size rounding rule.
func roundUpToMultipleOf8(n int64) int64 {
	if n <= 0 {
		return 8
	}
	if r := n % 8; r != 0 {
		n += 8 - r
	}
	return n
}

func binOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpAddSat:
		return "+|"
	case ast.OpSubSat:
		return "-|"
	case ast.OpMulSat:
		return "*|"
	case ast.OpAddWrap:
		return "+%"
	case ast.OpSubWrap:
		return "-%"
	case ast.OpMulWrap:
		return "*%"
	case ast.OpBAnd:
		return "&"
	case ast.OpBOr:
		return "|"
	case ast.OpBXor:
		return "^"
	case ast.OpShl:
		return "<<"
	case ast.OpShr:
		return ">>"
	case ast.OpLAnd:
		return "&&"
	case ast.OpLOr:
		return "||"
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGe:
		return ">="
	case ast.OpRange:
		return ".."
	default:
		return "?"
	}
}

func unaryOpName(op ast.UnaryOp) string {
	switch op {
	case ast.UnaryNeg:
		return "-"
	case ast.UnaryNot:
		return "!"
	case ast.UnaryAddr:
		return "&"
	case ast.UnaryDeref:
		return "*"
	case ast.UnaryTry:
		return "try"
	default:
		return "?"
	}
}
