package engine

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mimicsql/mimicsql/internal/parser"
	"github.com/mimicsql/mimicsql/internal/storage"
)

// evalExpr resolves an expression against a row. Rows may be plain
// (field -> value) or composite (table -> sub-row); qualified column
// references try the composite shape first and fall back to the flat field.
func evalExpr(row storage.Row, e parser.Expr, params []any) (any, error) {
	switch ex := e.(type) {
	case *parser.Literal:
		return ex.Val, nil
	case *parser.Param:
		return resolveParam(ex.Raw, params), nil
	case *parser.ColumnRef:
		if ex.Table != "" {
			if sub, ok := row[ex.Table].(storage.Row); ok {
				return sub[ex.Column], nil
			}
		}
		return row[ex.Column], nil
	case *parser.Binary:
		return evalBinary(row, ex, params)
	default:
		return nil, unsupportedf("cannot evaluate %T expression", e)
	}
}

func evalBinary(row storage.Row, ex *parser.Binary, params []any) (any, error) {
	switch ex.Op {
	case "AND", "OR":
		// Both sides are always evaluated; the combination follows the
		// plain boolean truth table.
		lv, err := evalExpr(row, ex.Left, params)
		if err != nil {
			return nil, err
		}
		rv, err := evalExpr(row, ex.Right, params)
		if err != nil {
			return nil, err
		}
		if ex.Op == "AND" {
			return truthy(lv) && truthy(rv), nil
		}
		return truthy(lv) || truthy(rv), nil
	case "BETWEEN", "NOT BETWEEN":
		bounds, ok := ex.Right.(*parser.ExprList)
		if !ok || len(bounds.Items) != 2 {
			return nil, unsupportedf("BETWEEN expects two bounds")
		}
		v, err := evalExpr(row, ex.Left, params)
		if err != nil {
			return nil, err
		}
		lo, err := evalExpr(row, bounds.Items[0], params)
		if err != nil {
			return nil, err
		}
		hi, err := evalExpr(row, bounds.Items[1], params)
		if err != nil {
			return nil, err
		}
		cl, okl := orderScalars(v, lo)
		ch, okh := orderScalars(v, hi)
		in := okl && okh && cl >= 0 && ch <= 0
		if ex.Op == "NOT BETWEEN" {
			return !in, nil
		}
		return in, nil
	default:
		lv, err := evalExpr(row, ex.Left, params)
		if err != nil {
			return nil, err
		}
		rv, err := evalExpr(row, ex.Right, params)
		if err != nil {
			return nil, err
		}
		return compare(lv, rv, ex.Op)
	}
}

// compare applies a comparison or LIKE operator to two scalar values.
func compare(left, right any, op string) (bool, error) {
	switch op {
	case "=":
		return scalarsEqual(left, right), nil
	case "<>", "!=":
		return !scalarsEqual(left, right), nil
	case "<":
		c, ok := orderScalars(left, right)
		return ok && c < 0, nil
	case ">":
		c, ok := orderScalars(left, right)
		return ok && c > 0, nil
	case "<=", "=<":
		c, ok := orderScalars(left, right)
		return ok && c <= 0, nil
	case ">=", "=>":
		c, ok := orderScalars(left, right)
		return ok && c >= 0, nil
	case "LIKE":
		return likeContains(left, right), nil
	case "NOT LIKE":
		return !likeContains(left, right), nil
	default:
		return false, unsupportedf("binary operator %q", op)
	}
}

// likeContains is the engine's LIKE: a case-insensitive, symmetric substring
// test over the string forms of both operands. This is deliberately not
// wildcard matching.
func likeContains(a, b any) bool {
	fold := cases.Fold()
	fa := fold.String(stringify(a))
	fb := fold.String(stringify(b))
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}

// resolveParam maps "$n" (1-indexed) to params[n-1]. A zero or unparseable
// index falls back to the first parameter; a missing position yields nil.
func resolveParam(raw string, params []any) any {
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "$"))
	if err != nil || n == 0 {
		if len(params) > 0 {
			return params[0]
		}
		return nil
	}
	if n-1 < len(params) {
		return params[n-1]
	}
	return nil
}

// scalarsEqual compares numerically when both values coerce to numbers and
// by string form otherwise. nil only equals nil.
func scalarsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return stringify(a) == stringify(b)
}

// orderScalars reports -1, 0, or 1. The second result is false when the
// pair has no defined order (a nil operand).
func orderScalars(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, sb := stringify(a), stringify(b)
	switch {
	case sa < sb:
		return -1, true
	case sa > sb:
		return 1, true
	}
	return 0, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
