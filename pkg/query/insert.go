package query

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// ErrNoRows is returned when an INSERT is rendered without any rows.
var ErrNoRows = errors.New("insert has no rows")

// Insert builds a multi-row INSERT statement.
//
// In assoc mode rows are added as column -> parameter maps and every row must
// name every column. Otherwise rows are added as parameter lists in column order.
type Insert struct {
	table   string
	assoc   bool
	columns []string
	named   []map[string]string
	listed  [][]string
}

// NewInsert creates an empty INSERT builder in assoc mode.
func NewInsert() *Insert {
	return &Insert{assoc: true}
}

// Kind implements Statement.
func (s *Insert) Kind() core.StatementKind { return core.StatementInsert }

// Into sets the target table.
func (s *Insert) Into(table string) *Insert {
	s.table = table
	return s
}

// AssocMode selects between named (true) and positional (false) rows.
func (s *Insert) AssocMode(assoc bool) *Insert {
	s.assoc = assoc
	return s
}

// Columns sets the column list.
func (s *Insert) Columns(cols ...string) *Insert {
	s.columns = append([]string(nil), cols...)
	return s
}

// ColumnList returns the configured column list.
func (s *Insert) ColumnList() []string {
	return append([]string(nil), s.columns...)
}

// ClearRows removes all rows.
func (s *Insert) ClearRows() *Insert {
	s.named = nil
	s.listed = nil
	return s
}

// AddRow appends a row mapping each column to a parameter name (assoc mode).
func (s *Insert) AddRow(params map[string]string) *Insert {
	row := make(map[string]string, len(params))
	for k, v := range params {
		row[k] = v
	}
	s.named = append(s.named, row)
	return s
}

// AddValues appends a row of parameter names in column order (positional mode).
func (s *Insert) AddValues(params ...string) *Insert {
	s.listed = append(s.listed, append([]string(nil), params...))
	return s
}

// NumRows returns the number of rows added since the last ClearRows.
func (s *Insert) NumRows() int {
	if s.assoc {
		return len(s.named)
	}
	return len(s.listed)
}

// Render implements Statement.
func (s *Insert) Render(d *dialect.Dialect) (string, []string, error) {
	if s.table == "" {
		return "", nil, ErrNoTable
	}
	if len(s.columns) == 0 {
		return "", nil, errors.New("insert has no columns")
	}
	if s.NumRows() == 0 {
		return "", nil, ErrNoRows
	}
	p, err := newPrinter(d)
	if err != nil {
		return "", nil, err
	}

	p.write("INSERT INTO ")
	p.ident(s.table)
	p.write(" (")
	for i, col := range s.columns {
		if i > 0 {
			p.write(", ")
		}
		p.ident(col)
	}
	p.write(") VALUES ")

	for r := 0; r < s.NumRows(); r++ {
		if r > 0 {
			p.write(", ")
		}
		p.write("(")
		for i, col := range s.columns {
			if i > 0 {
				p.write(", ")
			}
			name, err := s.slot(r, i, col)
			if err != nil {
				return "", nil, err
			}
			p.param(name)
		}
		p.write(")")
	}

	sqlStr, params := p.result()
	return sqlStr, params, nil
}

func (s *Insert) slot(row, idx int, col string) (string, error) {
	if s.assoc {
		name, ok := s.named[row][col]
		if !ok {
			return "", fmt.Errorf("insert row %d has no value for column %q", row, col)
		}
		return name, nil
	}
	if idx >= len(s.listed[row]) {
		return "", fmt.Errorf("insert row %d has %d values, want %d", row, len(s.listed[row]), len(s.columns))
	}
	return s.listed[row][idx], nil
}

var _ Statement = (*Insert)(nil)
