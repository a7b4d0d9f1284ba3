package cgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uya-lang/uyac/internal/check"
	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/ir"
	"github.com/uya-lang/uyac/internal/lex"
	"github.com/uya-lang/uyac/internal/parse"
)

func genC(t *testing.T, src string) string {
	t.Helper()
	bag := &diag.Bag{}
	lx := lex.New([]byte(src), "t.uya", bag, lex.DefaultConfig())
	prog := parse.New(lx, bag).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Strings())
	checker := check.NewChecker(bag)
	checker.Check(prog)
	require.False(t, bag.HasErrors(), "check errors: %v", bag.Strings())
	mod := ir.New(checker).Generate(prog)
	var buf bytes.Buffer
	require.NoError(t, Generate(mod, &buf, Config{}, bag))
	require.False(t, bag.HasErrors(), "cgen errors: %v", bag.Strings())
	return buf.String()
}

func TestGenerateSimpleFunc(t *testing.T) {
	out := genC(t, `fn add(a: i32, b: i32) i32 { return a +% b; }`)
	assert.Contains(t, out, "int32_t add(int32_t a, int32_t b) {")
	assert.Contains(t, out, "return _uya_ret;")
}

func TestGenerateRenamesMain(t *testing.T) {
	out := genC(t, `fn main() i32 { return 0; }`)
	assert.Contains(t, out, "uya_main(void)")
	assert.NotContains(t, out, "int32_t main(")
}

func TestGenerateErrorUnionReturnWrapsBareValues(t *testing.T) {
	out := genC(t, `
		error { NotFound }
		fn find(x: i32) !i32 {
			if (x < 0) {
				return error.NotFound;
			}
			return x;
		}
	`)
	assert.Contains(t, out, "struct err_union_int32_t {")
	assert.Contains(t, out, "#define ERR_NotFound 1")
	assert.Contains(t, out, ".error_id = ERR_NotFound")
	assert.Contains(t, out, ".error_id = 0, .value = x")
}

func TestGenerateTryUnwrapsErrorUnionCall(t *testing.T) {
	out := genC(t, `
		error { Bad }
		fn inner() !i32 { return error.Bad; }
		fn outer() !i32 {
			const v = try inner();
			return v;
		}
	`)
	assert.Contains(t, out, "__builtin_trap()")
	assert.Contains(t, out, ".error_id != 0")
}

func TestGenerateTryArithOverflowCheck(t *testing.T) {
	out := genC(t, `
		fn addChecked(a: i32, b: i32) i32 {
			return try a + b;
		}
	`)
	assert.Contains(t, out, "__builtin_add_overflow")
	assert.Contains(t, out, "__builtin_trap()")
}

func TestGenerateCatchExpression(t *testing.T) {
	out := genC(t, `
		error { Bad }
		fn inner() !i32 { return error.Bad; }
		fn outer() i32 {
			return inner() catch |err| { 0; };
		}
	`)
	assert.Contains(t, out, "error_id")
}

func TestGenerateSyscallHelpersElidedWhenUnused(t *testing.T) {
	out := genC(t, `fn add(a: i32, b: i32) i32 { return a +% b; }`)
	assert.NotContains(t, out, "uya_syscall0")
}

func TestGenerateSyscallHelpersEmittedWhenUsed(t *testing.T) {
	out := genC(t, `fn exit(code: i32) { @syscall(60, code); }`)
	assert.Contains(t, out, "uya_syscall1(long nr, long a0)")
}

func TestGenerateDeferRunsOnReturn(t *testing.T) {
	out := genC(t, `
		fn g() {}
		fn f() {
			defer g();
			return;
		}
	`)
	assert.Contains(t, out, "g();")
}

func TestGenerateArrayDeclaration(t *testing.T) {
	out := genC(t, `fn f() { const xs: [i32:4] = {1, 2, 3, 4}; }`)
	assert.Contains(t, out, "int32_t xs[4]")
}

func TestGenerateSaturatingAdd(t *testing.T) {
	out := genC(t, `fn f(a: i32, b: i32) i32 { return a +| b; }`)
	assert.Contains(t, out, "INT32_MAX")
}

func TestGenerateStringInterpolation(t *testing.T) {
	out := genC(t, `
		fn f(n: i32) {
			const s = "n is ${n}";
		}
	`)
	assert.Contains(t, out, "snprintf")
	assert.Contains(t, out, "__uya_memcpy")
}

func TestGenerateStringInterpolationExplicitTypeSpec(t *testing.T) {
	out := genC(t, `
		fn f(n: i32) {
			const s = "n=${n:d}";
		}
	`)
	assert.Contains(t, out, `"%d"`)
	assert.NotContains(t, out, `"%dd"`)
}

func TestGenerateForLoopIndexVarMatchesBodyReference(t *testing.T) {
	out := genC(t, `
		fn f() {
			const xs: [i32:4] = {1, 2, 3, 4};
			for xs |i, x| {
				var j: usize = i;
			}
		}
	`)
	assert.Contains(t, out, "size_t i = ")
	assert.NotContains(t, out, "i_idx")
}
