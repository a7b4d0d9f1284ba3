package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/lex"
	"github.com/uya-lang/uyac/internal/parse"
)

func checkSrc(t *testing.T, src string) *diag.Bag {
	t.Helper()
	bag := &diag.Bag{}
	lx := lex.New([]byte(src), "t.uya", bag, lex.DefaultConfig())
	prog := parse.New(lx, bag).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Strings())
	NewChecker(bag).Check(prog)
	return bag
}

func TestCheckSimpleFnOK(t *testing.T) {
	bag := checkSrc(t, `fn add(a: i32, b: i32) i32 { return a +% b; }`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckUndefinedIdentifier(t *testing.T) {
	bag := checkSrc(t, `fn f() i32 { return missing; }`)
	assert.True(t, bag.HasErrors())
}

func TestCheckDuplicateFunction(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 { return 1; }
		fn f() i32 { return 2; }
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckUnmodifiedVarWarning(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			var unused = 1;
			return 2;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckUnmodifiedVarWhitelistedNameOK(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			var temp = 1;
			return temp;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckAssignToConstIsError(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			const x = 1;
			x = 2;
			return x;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckDivideByZeroConstant(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			var a = 10;
			a = a / 0;
			return a;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckDivideByNameRequiresNonzeroConstraint(t *testing.T) {
	bag := checkSrc(t, `
		fn f(n: i32) i32 {
			return 10 / n;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckDivideByNameOKUnderNonzeroGuard(t *testing.T) {
	bag := checkSrc(t, `
		fn f(n: i32) i32 {
			if n != 0 {
				return 10 / n;
			}
			return 0;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckOverflowBetweenTwoNonConstantsRequiresExplicitOp(t *testing.T) {
	bag := checkSrc(t, `
		fn f(a: i32, b: i32) i32 {
			return a + b;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckOverflowWithWrappingOpOK(t *testing.T) {
	bag := checkSrc(t, `
		fn f(a: i32, b: i32) i32 {
			return a +% b;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckOverflowWithTryOpOK(t *testing.T) {
	bag := checkSrc(t, `
		fn f(a: i32, b: i32) i32 {
			return try a + b;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckConstantOverflowDetected(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i64 {
			return 9223372036854775807 + 1;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckArrayBoundConstantIndexInRange(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			const a: [i32: 4] = {1, 2, 3, 4};
			return a[2];
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckArrayBoundConstantIndexOutOfRange(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			const a: [i32: 4] = {1, 2, 3, 4};
			return a[10];
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckArrayBoundNamedIndexRequiresRangeProof(t *testing.T) {
	bag := checkSrc(t, `
		fn f(a: [i32: 4], i: i32) i32 {
			return a[i];
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckArrayBoundNamedIndexOKUnderGuard(t *testing.T) {
	bag := checkSrc(t, `
		fn f(a: [i32: 4], i: i32) i32 {
			if i >= 0 && i < 4 {
				return a[i];
			}
			return 0;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckUninitializedUseIsError(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			var x: i32;
			return x;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckIfConditionMustBeBool(t *testing.T) {
	bag := checkSrc(t, `
		fn f() i32 {
			if 1 {
				return 1;
			}
			return 0;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckStructFieldTypeMismatch(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f() Point {
			return Point{x: 1, y: 2};
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckStructUnknownField(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f() Point {
			return Point{x: 1, z: 2};
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckMemberAccessUnknownField(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f(p: Point) i32 {
			return p.z;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckSelfRewriteInImplMethod(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		impl Point : Shape {
			fn scaled(self: *Self, n: i32) *Self {
				return self;
			}
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckDropMethodRenamed(t *testing.T) {
	bag := checkSrc(t, `
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
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckCallArityMismatch(t *testing.T) {
	bag := checkSrc(t, `
		fn add(a: i32, b: i32) i32 { return a +% b; }
		fn f() i32 {
			return add(1);
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckCallArgTypeMismatch(t *testing.T) {
	bag := checkSrc(t, `
		fn takes_bool(b: bool) void { return; }
		fn f() void {
			takes_bool(1);
			return;
		}
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckIntLiteralBindsToFloatDest(t *testing.T) {
	bag := checkSrc(t, `
		fn f() f64 {
			const x: f64 = 1;
			return x;
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f() Point { return 1; }
	`)
	assert.True(t, bag.HasErrors())
}

func TestCheckMatchStructPatternBindsFields(t *testing.T) {
	bag := checkSrc(t, `
		struct Point { x: i32, y: i32 }
		fn f(p: Point) i32 {
			return match p {
				Point{x: px, y: py} => px,
				else => 0,
			};
		}
	`)
	assert.False(t, bag.HasErrors(), "%v", bag.Strings())
}
