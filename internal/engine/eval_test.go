package engine

import (
	"testing"
)

func TestCompareOperators(t *testing.T) {
	cases := []struct {
		left, right any
		op          string
		want        bool
	}{
		{1, 1, "=", true},
		{1, "1", "=", true},
		{1, 2, "=", false},
		{nil, nil, "=", true},
		{nil, 0, "=", false},
		{1, 2, "<>", true},
		{1, 2, "!=", true},
		{1, 2, "<", true},
		{2, 1, ">", true},
		{2, 2, "<=", true},
		{2, 2, "=<", true},
		{2, 2, ">=", true},
		{2, 2, "=>", true},
		{"apple", "banana", "<", true},
		{nil, 1, "<", false},
		{"John Doe", "john", "LIKE", true},
		{"john", "John Doe", "LIKE", true},
		{"john", "mary", "LIKE", false},
		{"john", "mary", "NOT LIKE", true},
	}
	for _, c := range cases {
		got, err := compare(c.left, c.right, c.op)
		if err != nil {
			t.Fatalf("compare(%v, %v, %q): %v", c.left, c.right, c.op, err)
		}
		if got != c.want {
			t.Fatalf("compare(%v, %v, %q) = %v, want %v", c.left, c.right, c.op, got, c.want)
		}
	}
}

func TestCompareUnknownOperator(t *testing.T) {
	if _, err := compare(1, 2, "%%"); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestLikeIsCaseInsensitiveAndSymmetric(t *testing.T) {
	if !likeContains("STRASSE", "straße") {
		t.Fatalf("case folding should match sharp s")
	}
	if !likeContains(123, "2") {
		t.Fatalf("non-strings compare by their string form")
	}
}

func TestResolveParam(t *testing.T) {
	params := []any{"a", "b", "c"}
	if v := resolveParam("$1", params); v != "a" {
		t.Fatalf("$1 = %v", v)
	}
	if v := resolveParam("$3", params); v != "c" {
		t.Fatalf("$3 = %v", v)
	}
	// zero and unparseable indexes fall back to the first parameter
	if v := resolveParam("$0", params); v != "a" {
		t.Fatalf("$0 = %v", v)
	}
	if v := resolveParam("$foo", params); v != "a" {
		t.Fatalf("$foo = %v", v)
	}
	// out of range yields nil
	if v := resolveParam("$9", params); v != nil {
		t.Fatalf("$9 = %v", v)
	}
	if v := resolveParam("$1", nil); v != nil {
		t.Fatalf("$1 with no params = %v", v)
	}
}

func TestOrderScalars(t *testing.T) {
	if c, ok := orderScalars(1, 2); !ok || c != -1 {
		t.Fatalf("1 vs 2 = %d, %v", c, ok)
	}
	if c, ok := orderScalars("10", 9); !ok || c != 1 {
		t.Fatalf("numeric strings order numerically: %d, %v", c, ok)
	}
	if c, ok := orderScalars("a", "a"); !ok || c != 0 {
		t.Fatalf("a vs a = %d, %v", c, ok)
	}
	if _, ok := orderScalars(nil, 1); ok {
		t.Fatalf("nil has no order")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{0, false},
		{1, true},
		{0.0, false},
		{[]int{}, true},
	}
	for _, c := range cases {
		if got := truthy(c.in); got != c.want {
			t.Fatalf("truthy(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
