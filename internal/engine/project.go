package engine

import (
	"github.com/mimicsql/mimicsql/internal/parser"
	"github.com/mimicsql/mimicsql/internal/storage"
)

// projectRows maps composite rows into the caller-requested output shape.
// A wildcard merges every field of the addressed sub-row; a named column is
// copied under its alias (or its own name), resolved against its qualifier
// or defaultTable. Nil rows or items yield nil; empty input yields an empty
// sequence without per-column work.
func projectRows(rows []storage.Row, items []parser.SelectItem, defaultTable string) ([]storage.Row, error) {
	if rows == nil || items == nil {
		return nil, nil
	}
	out := make([]storage.Row, 0, len(rows))
	for _, row := range rows {
		proj := storage.Row{}
		for _, item := range items {
			if item.Star {
				tbl := item.Table
				if tbl == "" {
					tbl = defaultTable
				}
				if sub, ok := row[tbl].(storage.Row); ok {
					for k, v := range sub {
						proj[k] = v
					}
				}
				continue
			}
			ref, ok := item.Expr.(*parser.ColumnRef)
			if !ok {
				return nil, unsupportedf("cannot project %T expression", item.Expr)
			}
			tbl := ref.Table
			if tbl == "" {
				tbl = defaultTable
			}
			name := item.Alias
			if name == "" {
				name = ref.Column
			}
			sub, _ := row[tbl].(storage.Row)
			proj[name] = sub[ref.Column]
		}
		out = append(out, proj)
	}
	return out, nil
}
