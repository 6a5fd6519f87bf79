package engine

import (
	"reflect"

	"github.com/mimicsql/mimicsql/internal/parser"
	"github.com/mimicsql/mimicsql/internal/storage"
)

type joinKind int

const (
	joinInner joinKind = iota
	joinLeft
	joinRight
	// joinCross covers CROSS and FULL: every pairing is attempted, matched
	// or not, and unmatched rows from both sides survive.
	joinCross
)

func joinKindOf(name string) (joinKind, error) {
	switch name {
	case "JOIN", "INNER JOIN":
		return joinInner, nil
	case "LEFT JOIN", "LEFT OUTER JOIN":
		return joinLeft, nil
	case "RIGHT JOIN", "RIGHT OUTER JOIN":
		return joinRight, nil
	case "CROSS JOIN", "FULL JOIN", "FULL OUTER JOIN":
		return joinCross, nil
	default:
		return 0, unsupportedf("join kind %q", name)
	}
}

// effectiveName is the key a FROM entry's sub-rows are tagged with in
// composite rows: the alias when present, the table name otherwise.
func effectiveName(it parser.FromItem) string {
	if it.Alias != "" {
		return it.Alias
	}
	return it.Table
}

// validateFrom checks the join chain shape before any rows are touched:
// every entry must name a table, every join's ON condition must reference
// the table it joins, and in chains of three or more tables each join must
// link to the immediately preceding entry.
func validateFrom(from []parser.FromItem) error {
	for i, it := range from {
		if it.Table == "" {
			return malformedf("FROM entry %d does not name a table", i+1)
		}
		if i == 0 {
			continue
		}
		key := effectiveName(it)
		if !referencesTable(it.On, key) {
			return malformedf("join condition for %q does not reference it", key)
		}
		if i >= 2 {
			prev := effectiveName(from[i-1])
			if !referencesTable(it.On, prev) {
				return malformedf("join condition for %q does not link to preceding table %q", key, prev)
			}
		}
	}
	return nil
}

// referencesTable reports whether the expression mentions a column of the
// given table, directly or transitively through nested binary expressions.
func referencesTable(e parser.Expr, table string) bool {
	switch ex := e.(type) {
	case *parser.ColumnRef:
		return ex.Table == table
	case *parser.Binary:
		return referencesTable(ex.Left, table) || referencesTable(ex.Right, table)
	case *parser.ExprList:
		for _, item := range ex.Items {
			if referencesTable(item, table) {
				return true
			}
		}
	}
	return false
}

// resolveJoin computes composite rows for a validated FROM chain of two or
// more tables. Pairings are first-match: each left row binds to the first
// right row whose ON condition holds, so many-to-many fan-out never occurs.
func resolveJoin(store *storage.Store, from []parser.FromItem, params []any) ([]storage.Row, error) {
	if err := validateFrom(from); err != nil {
		return nil, err
	}
	keys := make([]string, len(from))
	rows := make([][]storage.Row, len(from))
	for i, it := range from {
		keys[i] = effectiveName(it)
		rows[i] = store.Ensure(it.Table)
	}

	kind, err := joinKindOf(from[1].Join)
	if err != nil {
		return nil, err
	}
	acc, err := joinPair(keys[0], rows[0], keys[1], rows[1], kind, from[1].On, params)
	if err != nil {
		return nil, err
	}
	for i := 2; i < len(from); i++ {
		kind, err := joinKindOf(from[i].Join)
		if err != nil {
			return nil, err
		}
		pairs, err := joinPair(keys[i-1], rows[i-1], keys[i], rows[i], kind, from[i].On, params)
		if err != nil {
			return nil, err
		}
		acc = mergePairs(acc, pairs, keys[i-1], keys[i])
	}
	return acc, nil
}

func joinPair(lkey string, left []storage.Row, rkey string, right []storage.Row, kind joinKind, on parser.Expr, params []any) ([]storage.Row, error) {
	matched := make([]bool, len(right))
	var out []storage.Row
	for _, l := range left {
		idx := -1
		for j, r := range right {
			probe := storage.Row{lkey: l, rkey: r}
			v, err := evalExpr(probe, on, params)
			if err != nil {
				return nil, err
			}
			if truthy(v) {
				idx = j
				break
			}
		}
		switch kind {
		case joinInner, joinRight:
			if idx >= 0 {
				out = append(out, storage.Row{lkey: l, rkey: right[idx]})
				matched[idx] = true
			}
		case joinLeft, joinCross:
			row := storage.Row{lkey: l}
			if idx >= 0 {
				row[rkey] = right[idx]
				matched[idx] = true
			}
			out = append(out, row)
		}
	}
	if kind == joinRight || kind == joinCross {
		for j, r := range right {
			if !matched[j] {
				out = append(out, storage.Row{rkey: r})
			}
		}
	}
	return out, nil
}

// mergePairs folds a new pairwise join result into the accumulated
// composite rows: each pairing attaches its new sub-row to the first
// accumulated row whose shared-key sub-row is equal. Pairings whose shared
// sub-row was filtered out earlier are dropped; right-only pairings enter
// as fresh composites. The scan is deliberately quadratic.
func mergePairs(acc, pairs []storage.Row, prevKey, newKey string) []storage.Row {
	for _, p := range pairs {
		prev, hasPrev := p[prevKey]
		cur, hasCur := p[newKey]
		if !hasPrev {
			acc = append(acc, p)
			continue
		}
		if !hasCur {
			continue
		}
		for _, a := range acc {
			if _, taken := a[newKey]; taken {
				continue
			}
			if sub, ok := a[prevKey].(storage.Row); ok && reflect.DeepEqual(sub, prev) {
				a[newKey] = cur
				break
			}
		}
	}
	return acc
}
