package check

import "github.com/uya-lang/uyac/internal/ast"

// foldConstInt is the pure constant evaluator spec.md §4.4 names: it
// folds integer constants through +, -, *, /, %, and unary negate.
// Division or modulo by zero, and any overflowing arithmetic, fail the
// fold (ok=false) — per spec, an overflowing fold demotes the
// expression to non-constant, which in turn requires an explicit
// overflow-aware operator at the call site (see checkOverflowRequiresExplicitOp).
func (c *Checker) foldConstInt(e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case nil:
		return 0, false
	case *ast.NumericExpr:
		if v.IsFloat {
			return 0, false
		}
		return v.IntVal, true
	case *ast.UnaryExpr:
		if v.Op != ast.UnaryNeg {
			return 0, false
		}
		val, ok := c.foldConstInt(v.Operand)
		if !ok || val == minInt64 {
			return 0, false
		}
		return -val, true
	case *ast.BinaryExpr:
		l, lok := c.foldConstInt(v.Left)
		r, rok := c.foldConstInt(v.Right)
		if !lok || !rok {
			return 0, false
		}
		switch v.Op {
		case ast.OpAdd:
			return addWithOverflowCheck(l, r)
		case ast.OpSub:
			return subWithOverflowCheck(l, r)
		case ast.OpMul:
			return mulWithOverflowCheck(l, r)
		case ast.OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		default:
			return 0, false
		}
	case *ast.IdentExpr:
		if sym, found := c.syms.Lookup(v.Name); found && sym.IsConst && sym.ConstValue != nil {
			return *sym.ConstValue, true
		}
		return 0, false
	default:
		return 0, false
	}
}

const (
	maxInt64 = 1<<63 - 1
	minInt64 = -1 << 63
)

func addWithOverflowCheck(l, r int64) (int64, bool) {
	sum := l + r
	if (r > 0 && sum < l) || (r < 0 && sum > l) {
		return 0, false
	}
	return sum, true
}

func subWithOverflowCheck(l, r int64) (int64, bool) {
	diff := l - r
	if (r < 0 && diff < l) || (r > 0 && diff > l) {
		return 0, false
	}
	return diff, true
}

func mulWithOverflowCheck(l, r int64) (int64, bool) {
	if l == 0 || r == 0 {
		return 0, true
	}
	prod := l * r
	if prod/r != l {
		return 0, false
	}
	return prod, true
}

// isConstantExpr reports whether e is foldable at compile time, used
// by the overflow and divide-by-zero checks to decide which operand
// form applies (spec.md §4.4 (b), (c)).
func (c *Checker) isConstantExpr(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.NumericExpr, *ast.BooleanExpr:
		return true
	case *ast.UnaryExpr:
		if v.Op == ast.UnaryNeg || v.Op == ast.UnaryNot {
			return c.isConstantExpr(v.Operand)
		}
		return false
	case *ast.BinaryExpr:
		return c.isConstantExpr(v.Left) && c.isConstantExpr(v.Right)
	case *ast.IdentExpr:
		sym, found := c.syms.Lookup(v.Name)
		return found && sym.IsConst
	default:
		return false
	}
}
