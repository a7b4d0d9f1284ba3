package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/lex"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	lx := lex.New([]byte(src), "t.uya", bag, lex.DefaultConfig())
	p := New(lx, bag)
	return p.Parse(), bag
}

func TestParseSimpleFn(t *testing.T) {
	prog, bag := parseSrc(t, `fn add(a: i32, b: i32) i32 { return a + b; }`)
	require.False(t, bag.HasErrors())
	require.Len(t, prog.Decls, 1)
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fd.Name)
	require.Len(t, fd.Params, 2)
	assert.Equal(t, "a", fd.Params[0].Name)
	assert.Equal(t, "i32", fd.ReturnType.String())
	require.Len(t, fd.Body, 1)
	ret, ok := fd.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseExternVarargs(t *testing.T) {
	prog, bag := parseSrc(t, `extern fn printf(fmt: *i8, ...) i32;`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	assert.True(t, fd.IsExtern)
	assert.True(t, fd.IsVarargs)
	assert.Nil(t, fd.Body)
}

func TestParseStructDecl(t *testing.T) {
	prog, bag := parseSrc(t, `struct Point { x: i32, y: i32 }`)
	require.False(t, bag.HasErrors())
	sd := prog.Decls[0].(*ast.StructDecl)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, "y", sd.Fields[1].Name)
}

func TestParseStructInitVsBlockDisambiguation(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() Point { return Point{x: 1, y: 2}; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body[0].(*ast.ReturnStmt)
	si, ok := ret.Value.(*ast.StructInitExpr)
	require.True(t, ok)
	assert.Equal(t, "Point", si.TypeName)
	assert.Equal(t, []string{"x", "y"}, si.FieldNames)
}

func TestParseEmptyBlockIsNotStructInit(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { if true {} }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	ifs := fd.Body[0].(*ast.IfStmt)
	assert.Len(t, ifs.Then.Stmts, 0)
}

func TestParseImplicitImplDecl(t *testing.T) {
	prog, bag := parseSrc(t, `Point: Shape { fn area(self: Point) f64 { return 0.0; } }`)
	require.False(t, bag.HasErrors())
	id, ok := prog.Decls[0].(*ast.ImplDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", id.StructName)
	assert.Equal(t, "Shape", id.InterfaceName)
	require.Len(t, id.Methods, 1)
}

func TestParseExplicitImplKeyword(t *testing.T) {
	prog, bag := parseSrc(t, `impl Point: Shape { fn area(self: Point) f64 { return 0.0; } }`)
	require.False(t, bag.HasErrors())
	id := prog.Decls[0].(*ast.ImplDecl)
	assert.Equal(t, "Point", id.StructName)
}

func TestParseIfWhileFor(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() {
		if x > 0 { y = 1; } else { y = 2; }
		while x < 10 { x = x + 1; }
		for arr |i, v| { y = v; }
	}`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	require.Len(t, fd.Body, 3)
	assert.IsType(t, &ast.IfStmt{}, fd.Body[0])
	assert.IsType(t, &ast.WhileStmt{}, fd.Body[1])
	forStmt := fd.Body[2].(*ast.ForStmt)
	assert.Equal(t, "i", forStmt.IndexVar)
	assert.Equal(t, "v", forStmt.ValueVar)
}

func TestParseForRefBinding(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { for arr |&item| { item = 0; } }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	forStmt := fd.Body[0].(*ast.ForStmt)
	assert.True(t, forStmt.IsRef)
	assert.Equal(t, "item", forStmt.ValueVar)
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() i32 { return 1 + 2 * 3; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body[0].(*ast.ReturnStmt)
	top := ret.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, top.Op)
	_, leftIsNum := top.Left.(*ast.NumericExpr)
	assert.True(t, leftIsNum)
	rhs := top.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseLogicalPrecedence(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() bool { return a && b || c; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body[0].(*ast.ReturnStmt)
	top := ret.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLOr, top.Op)
	lhs := top.Left.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLAnd, lhs.Op)
}

func TestParseRangeExpr(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { for 0..10 |i| { x = i; } }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	forStmt := fd.Body[0].(*ast.ForStmt)
	rng := forStmt.Scrutinee.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpRange, rng.Op)
}

func TestParseCastAndAsBang(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = x as i32; z = x as! i32; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a1 := fd.Body[0].(*ast.AssignStmt)
	c1 := a1.Src.(*ast.CastExpr)
	assert.False(t, c1.Fallible)
	a2 := fd.Body[1].(*ast.AssignStmt)
	c2 := a2.Src.(*ast.CastExpr)
	assert.True(t, c2.Fallible)
}

func TestParseSaturatingWrappingOps(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = a +| b; z = a *% c; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a1 := fd.Body[0].(*ast.AssignStmt)
	bin1 := a1.Src.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAddSat, bin1.Op)
	a2 := fd.Body[1].(*ast.AssignStmt)
	bin2 := a2.Src.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMulWrap, bin2.Op)
}

func TestParseTupleLiteral(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = (1, 2, 3); }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	tup, ok := a.Src.(*ast.TupleLiteralExpr)
	require.True(t, ok)
	assert.Len(t, tup.Elems, 3)
}

func TestParseParenGroupingNotTuple(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = (1 + 2) * 3; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	bin, ok := a.Src.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, bin.Op)
	_, isBin := bin.Left.(*ast.BinaryExpr)
	assert.True(t, isBin)
}

func TestParseMatchExpr(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() i32 {
		return match x {
			0 => 1,
			Point{x: px, y: py} => px,
			else => 2,
		};
	}`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body[0].(*ast.ReturnStmt)
	m := ret.Value.(*ast.MatchExpr)
	require.Len(t, m.Arms, 3)
	assert.Equal(t, ast.PatLiteral, m.Arms[0].Pattern.Kind)
	assert.Equal(t, ast.PatStruct, m.Arms[1].Pattern.Kind)
	assert.Equal(t, []string{"px", "py"}, m.Arms[1].Pattern.Bindings)
	assert.Equal(t, ast.PatWildcard, m.Arms[2].Pattern.Kind)
}

func TestParseCatchExpr(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = risky() catch |e| { y = 0; }; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	c, ok := a.Src.(*ast.CatchExpr)
	require.True(t, ok)
	assert.Equal(t, "e", c.ErrName)
}

func TestParseDeferErrdefer(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { defer close(f); errdefer cleanup(); }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	assert.IsType(t, &ast.DeferStmt{}, fd.Body[0])
	assert.IsType(t, &ast.ErrdeferStmt{}, fd.Body[1])
}

func TestParseStringInterpolation(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = "n=${n:04d} done"; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	si, ok := a.Src.(*ast.StringInterpExpr)
	require.True(t, ok)
	assert.Equal(t, []string{"n=", " done"}, si.TextSegments)
	require.Len(t, si.Interps, 1)
	assert.Equal(t, "04d", si.Interps[0].Spec)
}

func TestParseErrorDeclAndValue(t *testing.T) {
	prog, bag := parseSrc(t, `error IoError { NotFound, Timeout }
fn f() { y = error.NotFound; }`)
	require.False(t, bag.HasErrors())
	ed := prog.Decls[0].(*ast.ErrorDecl)
	assert.Equal(t, "IoError", ed.Name)
	assert.Equal(t, []string{"NotFound", "Timeout"}, ed.Values)
	fd := prog.Decls[1].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	ev, ok := a.Src.(*ast.ErrorValueExpr)
	require.True(t, ok)
	assert.Equal(t, "NotFound", ev.Name)
}

func TestParseAtBuiltinCall(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { y = @sizeof(i32); }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	a := fd.Body[0].(*ast.AssignStmt)
	call, ok := a.Src.(*ast.CallExpr)
	require.True(t, ok)
	id := call.Callee.(*ast.IdentExpr)
	assert.Equal(t, "@sizeof", id.Name)
}

func TestParseArrayTypeAndLiteral(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() { var a: [i32:4] = {1, 2, 3, 4}; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	vd := fd.Body[0].(*ast.VarDecl)
	assert.Equal(t, "[i32:N]", vd.Type.String())
	arr, ok := vd.Init.(*ast.ArrayLiteralExpr)
	require.True(t, ok)
	assert.Len(t, arr.Elems, 4)
}

func TestParseEnumDecl(t *testing.T) {
	prog, bag := parseSrc(t, `enum Color: i32 { Red = 0, Green, Blue }`)
	require.False(t, bag.HasErrors())
	ed := prog.Decls[0].(*ast.EnumDecl)
	assert.Equal(t, "i32", ed.Underlying.String())
	require.Len(t, ed.Variants, 3)
	assert.Equal(t, "Red", ed.Variants[0].Name)
	assert.NotNil(t, ed.Variants[0].Value)
	assert.Nil(t, ed.Variants[1].Value)
}

func TestParseInterfaceDecl(t *testing.T) {
	prog, bag := parseSrc(t, `interface Shape { fn area() f64; }`)
	require.False(t, bag.HasErrors())
	id := prog.Decls[0].(*ast.InterfaceDecl)
	require.Len(t, id.Methods, 1)
	assert.Equal(t, "area", id.Methods[0].Name)
}

func TestParseTestDecl(t *testing.T) {
	prog, bag := parseSrc(t, `test "adds numbers" { y = 1 + 1; }`)
	require.False(t, bag.HasErrors())
	td := prog.Decls[0].(*ast.TestDecl)
	assert.Equal(t, "adds numbers", td.Name)
	require.Len(t, td.Body, 1)
}

func TestParseErrorRecoverySkipsBadDeclAndContinues(t *testing.T) {
	prog, bag := parseSrc(t, `fn ` + "%" + `bogus() {}
fn good() i32 { return 1; }`)
	assert.True(t, bag.HasErrors())
	var names []string
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			names = append(names, fd.Name)
		}
	}
	assert.Contains(t, names, "good")
}

func TestParseVarConstLet(t *testing.T) {
	prog, bag := parseSrc(t, `const PI: f64 = 3.14;
var counter: i32 = 0;
let mut total = 0;`)
	require.False(t, bag.HasErrors())
	c := prog.Decls[0].(*ast.VarDecl)
	assert.Equal(t, ast.VarConst, c.VarKind)
	assert.True(t, c.IsConst)
	v := prog.Decls[1].(*ast.VarDecl)
	assert.Equal(t, ast.VarVar, v.VarKind)
	assert.True(t, v.IsMut)
	l := prog.Decls[2].(*ast.VarDecl)
	assert.Equal(t, ast.VarLetMut, l.VarKind)
	assert.True(t, l.IsMut)
}

func TestParsePointerAndAddrType(t *testing.T) {
	prog, bag := parseSrc(t, `fn f(a: *i32, b: &i32) {}`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	assert.Equal(t, "*i32", fd.Params[0].Type.String())
	assert.Equal(t, "*i32", fd.Params[1].Type.String())
}

func TestParseErrorUnionReturnType(t *testing.T) {
	prog, bag := parseSrc(t, `fn f() !i32 { return 1; }`)
	require.False(t, bag.HasErrors())
	fd := prog.Decls[0].(*ast.FuncDecl)
	assert.Equal(t, "!i32", fd.ReturnType.String())
}
