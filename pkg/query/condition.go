package query

// Condition is a node of a boolean condition tree.
type Condition interface {
	render(p *printer)
}

type tautology struct{}

func (tautology) render(p *printer) { p.write("1 = 1") }

// True returns a condition that matches every row.
func True() Condition { return tautology{} }

type eqParam struct {
	column string
	param  string
}

func (c eqParam) render(p *printer) {
	p.ident(c.column)
	p.write(" = ")
	p.param(c.param)
}

// Eq compares a column with a named parameter.
func Eq(column, param string) Condition {
	return eqParam{column: column, param: param}
}

type eqColumn struct {
	left, right string
}

func (c eqColumn) render(p *printer) {
	p.ident(c.left)
	p.write(" = ")
	p.ident(c.right)
}

// EqColumn compares two column references, as used in join conditions.
func EqColumn(left, right string) Condition {
	return eqColumn{left: left, right: right}
}

type isNull struct {
	column string
	not    bool
}

func (c isNull) render(p *printer) {
	p.ident(c.column)
	if c.not {
		p.write(" IS NOT NULL")
		return
	}
	p.write(" IS NULL")
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Condition { return isNull{column: column} }

// IsNotNull matches rows where column is not NULL.
func IsNotNull(column string) Condition { return isNull{column: column, not: true} }

type raw struct {
	sql string
}

func (c raw) render(p *printer) { p.write(c.sql) }

// Raw embeds a literal SQL fragment. It must not contain user input.
func Raw(sql string) Condition { return raw{sql: sql} }

type junction struct {
	op    string
	conds []Condition
}

func (j junction) render(p *printer) {
	if len(j.conds) == 1 {
		j.conds[0].render(p)
		return
	}
	for i, c := range j.conds {
		if i > 0 {
			p.write(" " + j.op + " ")
		}
		if atomic(c) {
			c.render(p)
			continue
		}
		p.write("(")
		c.render(p)
		p.write(")")
	}
}

// atomic reports whether c renders as a single predicate. Junctions and raw
// fragments may contain their own AND/OR and are parenthesized inside a junction.
func atomic(c Condition) bool {
	switch c.(type) {
	case tautology, eqParam, eqColumn, isNull:
		return true
	default:
		return false
	}
}

// And joins conditions with AND. Nil conditions are skipped.
func And(conds ...Condition) Condition {
	return newJunction("AND", conds)
}

// Or joins conditions with OR. Nil conditions are skipped.
func Or(conds ...Condition) Condition {
	return newJunction("OR", conds)
}

func newJunction(op string, conds []Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return junction{op: op, conds: kept}
}
