package query

import (
	"errors"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

type assignment struct {
	column string
	param  string
}

// Update builds an UPDATE statement.
type Update struct {
	table string
	set   []assignment
	where Condition
	limit int
}

// NewUpdate creates an empty UPDATE builder.
func NewUpdate() *Update {
	return &Update{}
}

// Kind implements Statement.
func (s *Update) Kind() core.StatementKind { return core.StatementUpdate }

// Table sets the target table.
func (s *Update) Table(table string) *Update {
	s.table = table
	return s
}

// Set appends column = :param to the SET list.
func (s *Update) Set(column, param string) *Update {
	s.set = append(s.set, assignment{column: column, param: param})
	return s
}

// SetColumns appends one assignment per column, each bound to a parameter of the same name.
func (s *Update) SetColumns(cols ...string) *Update {
	for _, c := range cols {
		s.Set(c, c)
	}
	return s
}

// Where replaces the condition tree.
func (s *Update) Where(c Condition) *Update {
	s.where = c
	return s
}

// Limit caps the number of affected rows where the dialect supports it.
func (s *Update) Limit(n int) *Update {
	s.limit = n
	return s
}

// Render implements Statement.
func (s *Update) Render(d *dialect.Dialect) (string, []string, error) {
	if s.table == "" {
		return "", nil, ErrNoTable
	}
	if len(s.set) == 0 {
		return "", nil, errors.New("update has no assignments")
	}
	p, err := newPrinter(d)
	if err != nil {
		return "", nil, err
	}

	p.write("UPDATE ")
	p.ident(s.table)
	p.write(" SET ")
	for i, a := range s.set {
		if i > 0 {
			p.write(", ")
		}
		p.ident(a.column)
		p.write(" = ")
		p.param(a.param)
	}
	p.where(s.where)
	writeLimit(p, s.limit)

	sqlStr, params := p.result()
	return sqlStr, params, nil
}

func writeLimit(p *printer, n int) {
	if n > 0 && p.dialect.WriteLimit {
		p.write(" LIMIT ")
		p.int(n)
	}
}

var _ Statement = (*Update)(nil)
