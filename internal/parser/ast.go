package parser

// Expr is the root of all expression nodes. Nodes are plain structs; the
// engine type-switches over them.
type Expr interface{}

type (
	// Literal holds a constant value (number, string, bool, or nil).
	Literal struct{ Val any }
	// ColumnRef refers to a column, optionally qualified by table or alias.
	ColumnRef struct {
		Table  string
		Column string
	}
	// Param is a positional placeholder. Raw keeps the full source text
	// (for example "$2") so index resolution stays an evaluation concern.
	Param struct{ Raw string }
	// Binary applies an operator to two operands. Comparison, LIKE,
	// BETWEEN, AND, and OR all take this shape.
	Binary struct {
		Op          string
		Left, Right Expr
	}
	// ExprList groups expressions, used for BETWEEN bounds.
	ExprList struct{ Items []Expr }
)

// Statement is the root of all parsed statements.
type Statement interface{}

// Select represents a SELECT query.
type Select struct {
	Columns []SelectItem
	From    []FromItem
	Where   Expr
	OrderBy []OrderItem
	Limit   *Limit
}

// SelectItem is one projection entry: a wildcard (optionally qualified) or
// an expression with an optional alias.
type SelectItem struct {
	Star  bool
	Table string // qualifier for "t.*"; empty for bare "*"
	Expr  Expr   // nil when Star
	Alias string
}

// FromItem is one entry of the FROM chain. The first entry carries no join;
// every later entry names its join kind and ON condition.
type FromItem struct {
	Table string
	Alias string
	Join  string // "INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "CROSS JOIN", "FULL JOIN"
	On    Expr
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// Limit is the combined pagination clause. Values are positional: the first
// is the row limit, the second the offset.
type Limit struct {
	Vals []Expr
}

// Insert represents an INSERT statement with one or more value tuples.
type Insert struct {
	Table     string
	Columns   []string
	Rows      [][]Expr
	Returning *Returning
}

// Returning describes an INSERT ... RETURNING clause: either "*" or an
// explicit column list with aliases.
type Returning struct {
	Star  bool
	Items []SelectItem
}

// Delete represents a DELETE statement.
type Delete struct {
	Table string
	Where Expr
}

// Drop represents a DROP statement. Keyword is the lower-cased word after
// DROP ("table", "index", ...); the engine decides which keywords it serves.
type Drop struct {
	Keyword string
	Names   []string
}

// Update is parsed for dialect completeness; the engine does not execute it.
type Update struct {
	Table string
	Sets  []Assignment
	Where Expr
}

// Assignment is one SET column = expr pair.
type Assignment struct {
	Column string
	Value  Expr
}

// CreateTable is parsed for dialect completeness; the engine does not
// execute it.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

// ColumnDef is one column declaration in CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}
