package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser holds the lexer and current/peek tokens for recursive-descent
// parsing.
type Parser struct {
	lx   *lexer
	cur  token
	peek token
}

// NewParser creates a parser for the given SQL text.
func NewParser(sql string) *Parser {
	p := &Parser{lx: newLexer(sql)}
	p.cur = p.lx.nextToken()
	p.peek = p.lx.nextToken()
	return p
}

// Parse parses exactly one statement and requires the input to end after it
// (an optional trailing semicolon is allowed).
func Parse(sql string) (Statement, error) {
	p := NewParser(sql)
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ == tSymbol && p.cur.Val == ";" {
		p.next()
	}
	if p.cur.Typ != tEOF {
		return nil, p.errf("unexpected trailing input")
	}
	return stmt, nil
}

func (p *Parser) next() { p.cur, p.peek = p.peek, p.lx.nextToken() }

func (p *Parser) expectSymbol(sym string) error {
	if p.cur.Typ == tSymbol && p.cur.Val == sym {
		p.next()
		return nil
	}
	return p.errf("expected symbol %q", sym)
}

func (p *Parser) expectKeyword(kw string) error {
	if p.cur.Typ == tKeyword && p.cur.Val == kw {
		p.next()
		return nil
	}
	return p.errf("expected keyword %q", kw)
}

func (p *Parser) errf(format string, a ...any) error {
	return fmt.Errorf("parse error near %q: %s", p.cur.Val, fmt.Sprintf(format, a...))
}

func (p *Parser) atKeyword(kw string) bool {
	return p.cur.Typ == tKeyword && p.cur.Val == kw
}

func (p *Parser) atSymbol(sym string) bool {
	return p.cur.Typ == tSymbol && p.cur.Val == sym
}

// parseIdentLike returns the current token as a name, accepting keywords so
// that common column names (LIKE keyword collisions aside) stay usable.
func (p *Parser) parseIdentLike() (string, error) {
	if p.cur.Typ == tIdent || p.cur.Typ == tKeyword {
		v := p.cur.Val
		p.next()
		return v, nil
	}
	return "", p.errf("expected identifier")
}

// ParseStatement parses a single SQL statement into an AST.
func (p *Parser) ParseStatement() (Statement, error) {
	switch {
	case p.atKeyword("SELECT"):
		return p.parseSelect()
	case p.atKeyword("INSERT"):
		return p.parseInsert()
	case p.atKeyword("DELETE"):
		return p.parseDelete()
	case p.atKeyword("DROP"):
		return p.parseDrop()
	case p.atKeyword("UPDATE"):
		return p.parseUpdate()
	case p.atKeyword("CREATE"):
		return p.parseCreate()
	default:
		return nil, p.errf("expected a statement keyword")
	}
}

// ------------------------------ SELECT ------------------------------

func (p *Parser) parseSelect() (*Select, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	sel := &Select{}
	if err := p.parseProjections(sel); err != nil {
		return nil, err
	}
	if p.atKeyword("FROM") {
		p.next()
		if err := p.parseFromChain(sel); err != nil {
			return nil, err
		}
	}
	if p.atKeyword("WHERE") {
		p.next()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = w
	}
	if p.atKeyword("ORDER") {
		p.next()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		if err := p.parseOrderBy(sel); err != nil {
			return nil, err
		}
	}
	if p.atKeyword("LIMIT") {
		p.next()
		if err := p.parseLimit(sel); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func (p *Parser) parseProjections(sel *Select) error {
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return err
		}
		sel.Columns = append(sel.Columns, item)
		if p.atSymbol(",") {
			p.next()
			continue
		}
		return nil
	}
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	if p.atSymbol("*") {
		p.next()
		return SelectItem{Star: true}, nil
	}
	// qualified wildcard: t.*
	if p.cur.Typ == tIdent && p.peek.Typ == tSymbol && p.peek.Val == "." {
		tbl := p.cur.Val
		p.next()
		p.next() // consume '.'
		if p.atSymbol("*") {
			p.next()
			return SelectItem{Star: true, Table: tbl}, nil
		}
		col, err := p.parseIdentLike()
		if err != nil {
			return SelectItem{}, err
		}
		item := SelectItem{Expr: &ColumnRef{Table: tbl, Column: col}}
		item.Alias = p.parseAlias()
		return item, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	return SelectItem{Expr: e, Alias: p.parseAlias()}, nil
}

// parseAlias consumes an optional [AS] alias and returns it ("" if none).
func (p *Parser) parseAlias() string {
	if p.atKeyword("AS") {
		p.next()
		if p.cur.Typ == tIdent || p.cur.Typ == tKeyword {
			a := p.cur.Val
			p.next()
			return a
		}
		return ""
	}
	if p.cur.Typ == tIdent {
		a := p.cur.Val
		p.next()
		return a
	}
	return ""
}

func (p *Parser) parseFromChain(sel *Select) error {
	first, err := p.parseFromItem("")
	if err != nil {
		return err
	}
	sel.From = append(sel.From, first)
	for {
		join, ok, err := p.parseJoinKind()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		item, err := p.parseFromItem(join)
		if err != nil {
			return err
		}
		if p.atKeyword("ON") {
			p.next()
			on, err := p.parseExpr()
			if err != nil {
				return err
			}
			item.On = on
		}
		sel.From = append(sel.From, item)
	}
}

func (p *Parser) parseFromItem(join string) (FromItem, error) {
	if p.cur.Typ != tIdent {
		return FromItem{}, p.errf("expected table name")
	}
	item := FromItem{Table: p.cur.Val, Join: join}
	p.next()
	item.Alias = p.parseAlias()
	return item, nil
}

// parseJoinKind consumes a join introducer if one is present and returns its
// normalized name. A bare JOIN counts as INNER JOIN.
func (p *Parser) parseJoinKind() (string, bool, error) {
	kind := ""
	switch {
	case p.atKeyword("JOIN"):
		p.next()
		return "INNER JOIN", true, nil
	case p.atKeyword("INNER"):
		kind = "INNER"
	case p.atKeyword("LEFT"):
		kind = "LEFT"
	case p.atKeyword("RIGHT"):
		kind = "RIGHT"
	case p.atKeyword("CROSS"):
		kind = "CROSS"
	case p.atKeyword("FULL"):
		kind = "FULL"
	default:
		return "", false, nil
	}
	p.next()
	if p.atKeyword("OUTER") {
		p.next()
	}
	if err := p.expectKeyword("JOIN"); err != nil {
		return "", false, err
	}
	return kind + " JOIN", true, nil
}

func (p *Parser) parseOrderBy(sel *Select) error {
	for {
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		item := OrderItem{Expr: e}
		if p.atKeyword("ASC") {
			p.next()
		} else if p.atKeyword("DESC") {
			p.next()
			item.Desc = true
		}
		sel.OrderBy = append(sel.OrderBy, item)
		if p.atSymbol(",") {
			p.next()
			continue
		}
		return nil
	}
}

// parseLimit builds the combined pagination node. Both
// "LIMIT n, m" and "LIMIT n OFFSET m" populate Vals positionally with the
// row limit first and the offset second.
func (p *Parser) parseLimit(sel *Select) error {
	first, err := p.parseExpr()
	if err != nil {
		return err
	}
	lim := &Limit{Vals: []Expr{first}}
	if p.atSymbol(",") || p.atKeyword("OFFSET") {
		p.next()
		second, err := p.parseExpr()
		if err != nil {
			return err
		}
		lim.Vals = append(lim.Vals, second)
	}
	sel.Limit = lim
	return nil
}

// ------------------------------ INSERT ------------------------------

func (p *Parser) parseInsert() (*Insert, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	if p.cur.Typ != tIdent {
		return nil, p.errf("expected table name")
	}
	ins := &Insert{Table: p.cur.Val}
	p.next()
	if p.atSymbol("(") {
		p.next()
		for {
			col, err := p.parseIdentLike()
			if err != nil {
				return nil, err
			}
			ins.Columns = append(ins.Columns, col)
			if p.atSymbol(",") {
				p.next()
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	for {
		tuple, err := p.parseValueTuple()
		if err != nil {
			return nil, err
		}
		ins.Rows = append(ins.Rows, tuple)
		if p.atSymbol(",") {
			p.next()
			continue
		}
		break
	}
	if p.atKeyword("RETURNING") {
		p.next()
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		ins.Returning = ret
	}
	return ins, nil
}

func (p *Parser) parseValueTuple() ([]Expr, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var vals []Expr
	if p.atSymbol(")") { // empty tuple
		p.next()
		return vals, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		vals = append(vals, e)
		if p.atSymbol(",") {
			p.next()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return vals, nil
}

func (p *Parser) parseReturning() (*Returning, error) {
	if p.atSymbol("*") {
		p.next()
		return &Returning{Star: true}, nil
	}
	ret := &Returning{}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, item)
		if p.atSymbol(",") {
			p.next()
			continue
		}
		return ret, nil
	}
}

// ------------------------------ DELETE / DROP ------------------------------

func (p *Parser) parseDelete() (*Delete, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	if p.cur.Typ != tIdent {
		return nil, p.errf("expected table name")
	}
	del := &Delete{Table: p.cur.Val}
	p.next()
	if p.atKeyword("WHERE") {
		p.next()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		del.Where = w
	}
	return del, nil
}

func (p *Parser) parseDrop() (*Drop, error) {
	if err := p.expectKeyword("DROP"); err != nil {
		return nil, err
	}
	kw, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	drop := &Drop{Keyword: strings.ToLower(kw)}
	for {
		if p.cur.Typ != tIdent {
			return nil, p.errf("expected name after DROP %s", drop.Keyword)
		}
		drop.Names = append(drop.Names, p.cur.Val)
		p.next()
		if p.atSymbol(",") {
			p.next()
			continue
		}
		return drop, nil
	}
}

// ------------------------------ UPDATE / CREATE ------------------------------

func (p *Parser) parseUpdate() (*Update, error) {
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	if p.cur.Typ != tIdent {
		return nil, p.errf("expected table name")
	}
	upd := &Update{Table: p.cur.Val}
	p.next()
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Sets = append(upd.Sets, Assignment{Column: col, Value: val})
		if p.atSymbol(",") {
			p.next()
			continue
		}
		break
	}
	if p.atKeyword("WHERE") {
		p.next()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Where = w
	}
	return upd, nil
}

func (p *Parser) parseCreate() (*CreateTable, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	if p.cur.Typ != tIdent {
		return nil, p.errf("expected table name")
	}
	ct := &CreateTable{Name: p.cur.Val}
	p.next()
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	for {
		name, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		ct.Columns = append(ct.Columns, ColumnDef{Name: name, Type: typ})
		if p.atSymbol(",") {
			p.next()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return ct, nil
}

// ------------------------------ Expressions ------------------------------

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.next()
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseCmp() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	negate := false
	if p.atKeyword("NOT") && (p.peek.Typ == tKeyword && (p.peek.Val == "LIKE" || p.peek.Val == "BETWEEN")) {
		negate = true
		p.next()
	}
	switch {
	case p.atKeyword("LIKE"):
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		op := "LIKE"
		if negate {
			op = "NOT LIKE"
		}
		return &Binary{Op: op, Left: left, Right: right}, nil
	case p.atKeyword("BETWEEN"):
		p.next()
		lo, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		hi, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		op := "BETWEEN"
		if negate {
			op = "NOT BETWEEN"
		}
		return &Binary{Op: op, Left: left, Right: &ExprList{Items: []Expr{lo, hi}}}, nil
	case p.cur.Typ == tSymbol && isCmpSymbol(p.cur.Val):
		op := p.cur.Val
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func isCmpSymbol(sym string) bool {
	switch sym {
	case "=", "<>", "!=", "<", ">", "<=", ">=", "=<", "=>":
		return true
	}
	return false
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch {
	case p.atSymbol("("):
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.atSymbol("-"):
		p.next()
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		lit, ok := inner.(*Literal)
		if !ok {
			return nil, p.errf("expected numeric literal after unary minus")
		}
		switch v := lit.Val.(type) {
		case int:
			return &Literal{Val: -v}, nil
		case float64:
			return &Literal{Val: -v}, nil
		}
		return nil, p.errf("expected numeric literal after unary minus")
	case p.cur.Typ == tString:
		v := p.cur.Val
		p.next()
		return &Literal{Val: v}, nil
	case p.cur.Typ == tNumber:
		raw := p.cur.Val
		p.next()
		if i, err := strconv.Atoi(raw); err == nil {
			return &Literal{Val: i}, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, p.errf("bad number %q", raw)
		}
		return &Literal{Val: f}, nil
	case p.cur.Typ == tParam:
		raw := p.cur.Val
		p.next()
		return &Param{Raw: raw}, nil
	case p.atKeyword("TRUE"):
		p.next()
		return &Literal{Val: true}, nil
	case p.atKeyword("FALSE"):
		p.next()
		return &Literal{Val: false}, nil
	case p.atKeyword("NULL"):
		p.next()
		return &Literal{Val: nil}, nil
	case p.cur.Typ == tIdent:
		name := p.cur.Val
		p.next()
		if p.atSymbol(".") {
			p.next()
			col, err := p.parseIdentLike()
			if err != nil {
				return nil, err
			}
			return &ColumnRef{Table: name, Column: col}, nil
		}
		return &ColumnRef{Column: name}, nil
	}
	return nil, p.errf("expected expression")
}
