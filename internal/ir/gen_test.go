package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uya-lang/uyac/internal/check"
	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/lex"
	"github.com/uya-lang/uyac/internal/parse"
)

func genSrc(t *testing.T, src string) *Module {
	t.Helper()
	bag := &diag.Bag{}
	lx := lex.New([]byte(src), "t.uya", bag, lex.DefaultConfig())
	prog := parse.New(lx, bag).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Strings())
	checker := check.NewChecker(bag)
	checker.Check(prog)
	require.False(t, bag.HasErrors(), "check errors: %v", bag.Strings())
	return New(checker).Generate(prog)
}

func findFunc(m *Module, name string) *Instr {
	for _, d := range m.Decls {
		if d.Kind == KFuncDef && d.FnName == name {
			return d
		}
	}
	return nil
}

func TestGenSimpleFunc(t *testing.T) {
	m := genSrc(t, `fn add(a: i32, b: i32) i32 { return a +% b; }`)
	fn := findFunc(m, "add")
	require.NotNil(t, fn)
	require.Len(t, fn.FnBody, 1)
	ret := fn.FnBody[0]
	assert.Equal(t, KReturn, ret.Kind)
	assert.Equal(t, KBinaryOp, ret.Value.Kind)
	assert.Equal(t, "+%", ret.Value.Op)
}

func TestGenUniqueIDsAcrossFunctions(t *testing.T) {
	m := genSrc(t, `
		fn f() i32 { return 1; }
		fn g() i32 { return 2; }
	`)
	seen := map[int]bool{}
	var walk func(i *Instr)
	walk = func(i *Instr) {
		if i == nil {
			return
		}
		require.False(t, seen[i.ID], "duplicate instruction id %d", i.ID)
		seen[i.ID] = true
		for _, c := range i.FnBody {
			walk(c)
		}
		walk(i.Value)
	}
	for _, d := range m.Decls {
		walk(d)
	}
	assert.True(t, len(seen) >= 4)
}

func TestGenIfElseChain(t *testing.T) {
	m := genSrc(t, `
		fn f(n: i32) i32 {
			if n >= 0 && n < 4 {
				return n;
			} else {
				return 0;
			}
		}
	`)
	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	require.Len(t, fn.FnBody, 1)
	ifi := fn.FnBody[0]
	assert.Equal(t, KIf, ifi.Kind)
	assert.Equal(t, KBinaryOp, ifi.Cond.Kind)
	assert.Equal(t, "&&", ifi.Cond.Op)
	require.Len(t, ifi.Then, 1)
	require.Len(t, ifi.Else, 1)
}

func TestGenTupleLiteralDedup(t *testing.T) {
	m := genSrc(t, `
		fn f() i32 {
			const a = (1, true);
			const b = (2, false);
			return 0;
		}
	`)
	var tupleDecls []string
	for _, d := range m.Decls {
		if d.Kind == KStructDecl {
			tupleDecls = append(tupleDecls, d.StructName)
		}
	}
	require.Len(t, tupleDecls, 1, "expected a single deduplicated tuple struct decl, got %v", tupleDecls)
	assert.Equal(t, "tuple_i32_bool", tupleDecls[0])

	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	require.Len(t, fn.FnBody, 3)
	a := fn.FnBody[0]
	assert.Equal(t, KVarDecl, a.Kind)
	assert.Equal(t, KStructInit, a.Init.Kind)
	assert.Equal(t, "tuple_i32_bool", a.Init.StructName)
	assert.Equal(t, []string{"_0", "_1"}, a.Init.FieldNames)
}

func TestGenMatchStructPatternLowersToIfChainWithBindings(t *testing.T) {
	m := genSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f(p: Point) i32 {
			return match p {
				Point{x: px, y: py} => px,
				else => 0,
			};
		}
	`)
	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	ret := fn.FnBody[0]
	require.Equal(t, KReturn, ret.Kind)
	ifi := ret.Value
	require.Equal(t, KIf, ifi.Kind)
	require.Len(t, ifi.Then, 3, "two field bindings plus the arm body")
	assert.Equal(t, KVarDecl, ifi.Then[0].Kind)
	assert.Equal(t, "px", ifi.Then[0].Name)
	assert.Equal(t, KMemberAccess, ifi.Then[0].Init.Kind)
	assert.Equal(t, "x", ifi.Then[0].Init.FieldName)
	require.Len(t, ifi.Else, 1)
	assert.Equal(t, KIf, ifi.Else[0].Kind) // the `else` arm, lowered to a true-conditioned If
}

func TestGenMethodCallDesugarsToAddressOfReceiver(t *testing.T) {
	m := genSrc(t, `
		struct Counter { n: i32 }
		impl Counter : Incrementable {
			fn bump(self: *Self, by: i32) void {
				return;
			}
		}
		fn use_counter(c: Counter) void {
			c.bump(1);
			return;
		}
	`)
	fn := findFunc(m, "use_counter")
	require.NotNil(t, fn)
	require.Len(t, fn.FnBody, 2)
	call := fn.FnBody[0]
	require.Equal(t, KCall, call.Kind)
	assert.Equal(t, "bump", call.Callee)
	require.Len(t, call.Args, 2)
	assert.Equal(t, KUnaryOp, call.Args[0].Kind)
	assert.Equal(t, "&", call.Args[0].Op)
	assert.Equal(t, KIdent, call.Args[0].Operand.Kind)
	assert.Equal(t, "c", call.Args[0].Operand.Name)
}

func TestGenDropRenamedCallTargetsFuncTabEntry(t *testing.T) {
	m := genSrc(t, `
		struct Handle { fd: i32 }
		impl Handle : Closeable {
			fn drop(h: *Handle) void {
				return;
			}
		}
		fn use_handle(h: *Handle) void {
			drop_Handle(h);
			return;
		}
	`)
	fn := findFunc(m, "use_handle")
	require.NotNil(t, fn)
	call := fn.FnBody[0]
	assert.Equal(t, KCall, call.Kind)
	assert.Equal(t, "drop_Handle", call.Callee)
}

func TestGenStringInterpolationBufferSize(t *testing.T) {
	m := genSrc(t, `
		fn f(n: i32) i32 {
			const s = "n=${n}";
			return 0;
		}
	`)
	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	decl := fn.FnBody[0]
	require.Equal(t, KVarDecl, decl.Kind)
	interp := decl.Init
	require.Equal(t, KStringInterpolation, interp.Kind)
	require.Len(t, interp.Slots, 1)
	assert.Equal(t, KIdent, interp.Slots[0].Kind)
	assert.True(t, interp.BufferSize >= 8)
	assert.Equal(t, int64(0), interp.BufferSize%8)
}

func TestGenCatchExprLowersToTryCatch(t *testing.T) {
	m := genSrc(t, `
		error { NotFound }
		fn risky() !i32 { return 1; }
		fn f() i32 {
			return risky() catch |err| { 0; };
		}
	`)
	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	ret := fn.FnBody[0]
	require.Equal(t, KReturn, ret.Kind)
	tc := ret.Value
	require.Equal(t, KTryCatch, tc.Kind)
	assert.Equal(t, "err", tc.ErrName)
	require.Len(t, tc.CatchBody, 1)
}

func TestGenTryWrapsErrorUnion(t *testing.T) {
	m := genSrc(t, `
		fn f(a: i32, b: i32) i32 {
			return try a + b;
		}
	`)
	fn := findFunc(m, "f")
	require.NotNil(t, fn)
	ret := fn.FnBody[0]
	require.Equal(t, KReturn, ret.Kind)
	assert.Equal(t, KErrorUnion, ret.Value.Kind)
	assert.Equal(t, KBinaryOp, ret.Value.Inner.Kind)
}
