package query

import (
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// Delete builds a DELETE statement.
type Delete struct {
	table string
	where Condition
	limit int
}

// NewDelete creates an empty DELETE builder.
func NewDelete() *Delete {
	return &Delete{}
}

// Kind implements Statement.
func (s *Delete) Kind() core.StatementKind { return core.StatementDelete }

// From sets the target table.
func (s *Delete) From(table string) *Delete {
	s.table = table
	return s
}

// Where replaces the condition tree.
func (s *Delete) Where(c Condition) *Delete {
	s.where = c
	return s
}

// Limit caps the number of affected rows where the dialect supports it.
func (s *Delete) Limit(n int) *Delete {
	s.limit = n
	return s
}

// Render implements Statement.
func (s *Delete) Render(d *dialect.Dialect) (string, []string, error) {
	if s.table == "" {
		return "", nil, ErrNoTable
	}
	p, err := newPrinter(d)
	if err != nil {
		return "", nil, err
	}

	p.write("DELETE FROM ")
	p.ident(s.table)
	p.where(s.where)
	writeLimit(p, s.limit)

	sqlStr, params := p.result()
	return sqlStr, params, nil
}

var _ Statement = (*Delete)(nil)
