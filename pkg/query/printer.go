package query

import (
	"errors"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// Statement is implemented by every builder in this package.
type Statement interface {
	// Kind reports which builder produced the statement.
	Kind() core.StatementKind
	// Render returns the SQL text and the parameter names in placeholder order.
	Render(d *dialect.Dialect) (string, []string, error)
}

// ErrNoTable is returned when a statement is rendered without a target table.
var ErrNoTable = errors.New("statement has no table")

// printer accumulates SQL text and the parameter names it references.
type printer struct {
	dialect *dialect.Dialect
	out     strings.Builder
	params  []string
}

func newPrinter(d *dialect.Dialect) (*printer, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	return &printer{dialect: d}, nil
}

func (p *printer) write(s string) {
	p.out.WriteString(s)
}

func (p *printer) ident(name string) {
	p.out.WriteString(p.dialect.QuoteQualified(name))
}

func (p *printer) param(name string) {
	p.params = append(p.params, name)
	p.out.WriteString(p.dialect.FormatPlaceholder(len(p.params)))
}

func (p *printer) int(n int) {
	p.out.WriteString(strconv.Itoa(n))
}

func (p *printer) table(name, alias string) {
	p.ident(name)
	if alias != "" && alias != name {
		p.write(" AS ")
		p.ident(alias)
	}
}

func (p *printer) where(c Condition) {
	if c == nil {
		return
	}
	p.write(" WHERE ")
	c.render(p)
}

func (p *printer) result() (string, []string) {
	return p.out.String(), p.params
}
