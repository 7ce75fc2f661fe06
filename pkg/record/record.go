// Package record implements an ActiveRecord-style view over one table.
//
// A Record holds the table metadata (columns, aliases, whitelists and
// joins), the rows loaded by the last Select together with a cursor over
// them, and three queues of pending writes. Writes reach the database only
// when one of the Commit methods is called:
//
//	users := record.New(conn, record.WithSchemaManager(mgr)).
//		SetTable("users", "u").
//		SetPrimaryKey("id").
//		SetColumns(record.Col("id"), record.Col("name"), record.Col("email")).
//		SetAllowInsert("name", "email")
//
//	users.StartInsertingMode()
//	_ = users.Set("name", "Ana")
//	_ = users.Set("email", "a@x.com")
//	_ = users.Insert()
//	err := users.CommitInsert(ctx)
//
// A Record is not safe for concurrent use.
package record

import (
	"log/slog"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
	"github.com/leapstack-labs/leaprecord/pkg/schema"
)

// Column maps a logical column name to its physical reference
// ("alias.column" or a bare column name).
type Column struct {
	Name string
	Ref  string
}

// Col returns a column whose reference is derived from the record alias.
func Col(name string) Column {
	return Column{Name: name}
}

// Relationship is a join attached to a local column.
type Relationship struct {
	Column string
	Kind   query.JoinKind
	Table  string
	Alias  string
	On     query.Condition
	// Target, when set, derives Table, Alias and On from another record:
	// local.Column = target.PrimaryKey.
	Target *Record
}

// Option configures a Record.
type Option func(*Record)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Record) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSchemaManager sets the manager used to create a missing table on insert.
func WithSchemaManager(m schema.Manager) Option {
	return func(r *Record) { r.schema = m }
}

// WithKeyGenerator replaces DefaultKeyGenerator.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(r *Record) {
		if g != nil {
			r.newKey = g
		}
	}
}

// Record is one logical table bound to a connection.
type Record struct {
	conn   adapter.Conn
	logger *slog.Logger
	schema schema.Manager
	newKey KeyGenerator

	table         string
	alias         string
	primaryKey    string
	columns       []Column
	aliasColumns  map[string]string // alias -> column
	columnsAlias  map[string]string // column -> alias
	allowInsert   []string
	allowUpdate   []string
	insertEnabled bool
	updateEnabled bool
	deleteEnabled bool
	relationships []Relationship
	baseCondition func() query.Condition
	fetchShape    core.FetchShape

	rows            []core.Row
	selectedColumns []string
	currentIndex    int
	page            int
	rowsLimit       int
	offset          int
	err             error

	inserting bool
	staging   core.Row

	pendingInserts []core.Row
	pendingUpdates []core.Row
	pendingDeletes []any
	lastKeys       []string

	selectStmt  *query.Select
	selectBuilt bool
	insertStmt  *query.Insert
	insertCols  []string
	insertBuilt bool
	updateStmt  *query.Update
	updateBuilt bool
	deleteStmt  *query.Delete
	deleteBuilt bool
}

// New creates a Record that runs its statements on conn.
func New(conn adapter.Conn, opts ...Option) *Record {
	r := &Record{
		conn:          conn,
		logger:        slog.New(slog.DiscardHandler),
		newKey:        DefaultKeyGenerator,
		insertEnabled: true,
		updateEnabled: true,
		deleteEnabled: true,
		aliasColumns:  map[string]string{},
		columnsAlias:  map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetTable sets the table name and the alias used in the SELECT.
func (r *Record) SetTable(name, alias string) *Record {
	r.table = name
	r.alias = alias
	r.resetStatements()
	return r
}

// SetPrimaryKey sets the logical column used to address single rows.
func (r *Record) SetPrimaryKey(column string) *Record {
	r.primaryKey = column
	r.resetStatements()
	return r
}

// SetColumns replaces the column list. Order is the SELECT order.
func (r *Record) SetColumns(cols ...Column) *Record {
	r.columns = append([]Column(nil), cols...)
	r.selectBuilt = false
	return r
}

// AddColumn appends a column, replacing an existing one with the same name.
func (r *Record) AddColumn(name, ref string) *Record {
	for i, c := range r.columns {
		if c.Name == name {
			r.columns[i].Ref = ref
			r.selectBuilt = false
			return r
		}
	}
	r.columns = append(r.columns, Column{Name: name, Ref: ref})
	r.selectBuilt = false
	return r
}

// SetColumnAliases renames columns in the SELECT output. aliases maps a
// logical column name to the name rows are returned under.
func (r *Record) SetColumnAliases(aliases map[string]string) *Record {
	r.columnsAlias = make(map[string]string, len(aliases))
	r.aliasColumns = make(map[string]string, len(aliases))
	for col, as := range aliases {
		r.columnsAlias[col] = as
		r.aliasColumns[as] = col
	}
	r.selectBuilt = false
	return r
}

// SetAllowInsert sets the columns writable in insert mode.
func (r *Record) SetAllowInsert(cols ...string) *Record {
	r.allowInsert = append([]string(nil), cols...)
	return r
}

// SetAllowUpdate sets the columns written by CommitUpdate.
func (r *Record) SetAllowUpdate(cols ...string) *Record {
	r.allowUpdate = append([]string(nil), cols...)
	r.updateBuilt = false
	return r
}

// EnableInsert toggles CommitInsert.
func (r *Record) EnableInsert(enabled bool) *Record {
	r.insertEnabled = enabled
	return r
}

// EnableUpdate toggles CommitUpdate.
func (r *Record) EnableUpdate(enabled bool) *Record {
	r.updateEnabled = enabled
	return r
}

// EnableDelete toggles CommitDelete.
func (r *Record) EnableDelete(enabled bool) *Record {
	r.deleteEnabled = enabled
	return r
}

// AddRelationship attaches a join to rel.Column, replacing any previous one.
func (r *Record) AddRelationship(rel Relationship) *Record {
	if rel.Kind == "" {
		rel.Kind = query.JoinLeft
	}
	for i, existing := range r.relationships {
		if existing.Column == rel.Column {
			r.relationships[i] = rel
			r.selectBuilt = false
			return r
		}
	}
	r.relationships = append(r.relationships, rel)
	r.selectBuilt = false
	return r
}

// RelateTo joins target on column = target primary key.
func (r *Record) RelateTo(column string, kind query.JoinKind, target *Record) *Record {
	return r.AddRelationship(Relationship{Column: column, Kind: kind, Target: target})
}

// SetRowsLimit sets the page size. Zero disables the limit.
func (r *Record) SetRowsLimit(n int) *Record {
	r.rowsLimit = max(n, 0)
	return r
}

// SetOffset sets the number of rows skipped by Select.
func (r *Record) SetOffset(n int) *Record {
	r.offset = max(n, 0)
	return r
}

// SetPage sets the page and recomputes the offset from the page size.
func (r *Record) SetPage(page int) *Record {
	r.page = max(page, 0)
	r.offset = r.rowsLimit * r.page
	return r
}

// SetFetchShape selects how fetched rows are keyed.
func (r *Record) SetFetchShape(shape core.FetchShape) *Record {
	r.fetchShape = shape
	return r
}

// SetBaseCondition narrows the rows visible to Select and FindByID, for
// example to hide soft-deleted rows. fn is called once when the SELECT is built.
func (r *Record) SetBaseCondition(fn func() query.Condition) *Record {
	r.baseCondition = fn
	r.selectBuilt = false
	return r
}

// Table returns the table name.
func (r *Record) Table() string { return r.table }

// Alias returns the table alias.
func (r *Record) Alias() string { return r.alias }

// PrimaryKey returns the primary key column.
func (r *Record) PrimaryKey() string { return r.primaryKey }

// Columns returns the configured columns.
func (r *Record) Columns() []Column { return append([]Column(nil), r.columns...) }

// AllowInsert returns the insert whitelist.
func (r *Record) AllowInsert() []string { return append([]string(nil), r.allowInsert...) }

// AllowUpdate returns the update whitelist.
func (r *Record) AllowUpdate() []string { return append([]string(nil), r.allowUpdate...) }

// Err returns the error of the last Select or FindByID, nil on success.
func (r *Record) Err() error { return r.err }

func (r *Record) resetStatements() {
	r.selectBuilt = false
	r.insertBuilt = false
	r.updateBuilt = false
	r.deleteBuilt = false
}

// qualifier is the name columns of this record are qualified with in a SELECT.
func (r *Record) qualifier() string {
	if r.alias != "" {
		return r.alias
	}
	return r.table
}

// ref returns the physical reference of a logical column.
func (r *Record) ref(name string) string {
	for _, c := range r.columns {
		if c.Name == name && c.Ref != "" {
			return c.Ref
		}
	}
	if q := r.qualifier(); q != "" {
		return q + "." + name
	}
	return name
}

// physical returns the unqualified column name written by INSERT/UPDATE/DELETE.
func (r *Record) physical(name string) string {
	return bare(r.ref(name))
}

// outputName is the key a logical column is fetched under.
func (r *Record) outputName(name string) string {
	if as, ok := r.columnsAlias[name]; ok && as != "" {
		return as
	}
	return name
}

// logicalName maps a fetched key back to its logical column.
func (r *Record) logicalName(key string) string {
	if col, ok := r.aliasColumns[key]; ok {
		return col
	}
	return key
}
