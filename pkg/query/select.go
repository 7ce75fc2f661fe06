package query

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// JoinKind is the kind of a join clause.
type JoinKind string

// Supported join kinds.
const (
	JoinLeft  JoinKind = "LEFT"
	JoinInner JoinKind = "INNER"
)

// UnmarshalText decodes a join kind from configuration ("left", "inner").
func (k *JoinKind) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "", "LEFT":
		*k = JoinLeft
	case "INNER":
		*k = JoinInner
	default:
		return &core.UnknownValueError{Kind: "join kind", Value: string(text)}
	}
	return nil
}

// Join is a single join clause.
type Join struct {
	Kind  JoinKind
	Table string
	Alias string
	On    Condition
}

// Select builds a SELECT statement.
type Select struct {
	table    string
	alias    string
	columns  []string
	aliases  map[string]string
	joins    []Join
	where    Condition
	limit    int
	offset   int
	hasLimit bool
}

// NewSelect creates an empty SELECT builder.
func NewSelect() *Select {
	return &Select{}
}

// Kind implements Statement.
func (s *Select) Kind() core.StatementKind { return core.StatementSelect }

// From sets the target table and its alias.
func (s *Select) From(table, alias string) *Select {
	s.table = table
	s.alias = alias
	return s
}

// Columns sets the selected column references. aliases maps a column
// reference to the output name it is selected as; it may be nil.
func (s *Select) Columns(refs []string, aliases map[string]string) *Select {
	s.columns = append([]string(nil), refs...)
	s.aliases = make(map[string]string, len(aliases))
	for k, v := range aliases {
		s.aliases[k] = v
	}
	return s
}

// Join appends a join clause.
func (s *Select) Join(j Join) *Select {
	s.joins = append(s.joins, j)
	return s
}

// Where replaces the condition tree.
func (s *Select) Where(c Condition) *Select {
	s.where = c
	return s
}

// And extends the condition tree with c.
func (s *Select) And(c Condition) *Select {
	if s.where == nil {
		s.where = c
		return s
	}
	s.where = And(s.where, c)
	return s
}

// Limit sets the maximum number of rows. A value <= 0 removes the limit.
func (s *Select) Limit(n int) *Select {
	s.limit = n
	s.hasLimit = n > 0
	return s
}

// Offset sets the number of rows to skip.
func (s *Select) Offset(n int) *Select {
	if n < 0 {
		n = 0
	}
	s.offset = n
	return s
}

// Clone returns a copy that can be extended without affecting s.
func (s *Select) Clone() *Select {
	c := *s
	c.columns = append([]string(nil), s.columns...)
	c.joins = append([]Join(nil), s.joins...)
	c.aliases = make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		c.aliases[k] = v
	}
	return &c
}

// Render implements Statement.
func (s *Select) Render(d *dialect.Dialect) (string, []string, error) {
	if s.table == "" {
		return "", nil, ErrNoTable
	}
	p, err := newPrinter(d)
	if err != nil {
		return "", nil, err
	}

	p.write("SELECT ")
	if len(s.columns) == 0 {
		p.write("*")
	}
	for i, col := range s.columns {
		if i > 0 {
			p.write(", ")
		}
		p.ident(col)
		if as, ok := s.aliases[col]; ok && as != "" {
			p.write(" AS ")
			p.write(d.QuoteIdentifierIfNeeded(as))
		}
	}

	p.write(" FROM ")
	p.table(s.table, s.alias)

	for _, j := range s.joins {
		if j.Table == "" {
			return "", nil, fmt.Errorf("join without table: %w", ErrNoTable)
		}
		kind := j.Kind
		if kind == "" {
			kind = JoinLeft
		}
		p.write(" " + string(kind) + " JOIN ")
		p.table(j.Table, j.Alias)
		if j.On != nil {
			p.write(" ON ")
			j.On.render(p)
		}
	}

	p.where(s.where)

	switch {
	case s.hasLimit:
		p.write(" LIMIT ")
		p.int(s.limit)
		if s.offset > 0 {
			p.write(" OFFSET ")
			p.int(s.offset)
		}
	case s.offset > 0:
		if d.OffsetNeedsLimit {
			p.write(" LIMIT -1")
		}
		p.write(" OFFSET ")
		p.int(s.offset)
	}

	sqlStr, params := p.result()
	return sqlStr, params, nil
}

var _ Statement = (*Select)(nil)
