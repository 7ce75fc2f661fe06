// Package catalog builds records and schema managers from configuration.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leaprecord/internal/config"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/query"
	"github.com/leapstack-labs/leaprecord/pkg/record"
	"github.com/leapstack-labs/leaprecord/pkg/schema"
)

// Catalog resolves configured record definitions against one connection.
type Catalog struct {
	project *config.ProjectConfig
	conn    adapter.Adapter
	baseDir string
	logger  *slog.Logger
	keys    record.KeyGenerator
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger handed to every record and schema manager.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseDir sets the directory relative migration paths are resolved against.
func WithBaseDir(dir string) Option {
	return func(c *Catalog) { c.baseDir = dir }
}

// WithKeyGenerator sets the surrogate key generator of every record.
func WithKeyGenerator(g record.KeyGenerator) Option {
	return func(c *Catalog) { c.keys = g }
}

// New creates a catalog over the records of project.
func New(project *config.ProjectConfig, conn adapter.Adapter, opts ...Option) *Catalog {
	c := &Catalog{
		project: project,
		conn:    conn,
		baseDir: ".",
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Names returns the configured record names in sorted order.
func (c *Catalog) Names() []string {
	return c.project.RecordNames()
}

// Definition returns the configuration of the named record.
func (c *Catalog) Definition(name string) (*config.RecordConfig, error) {
	def, ok := c.project.Records[name]
	if !ok || def == nil {
		return nil, &UnknownRecordError{Name: name, Available: c.Names()}
	}
	return def, nil
}

// Record builds a fresh record for name. Relationships naming another
// record are resolved recursively.
func (c *Catalog) Record(name string) (*record.Record, error) {
	return c.build(name, map[string]bool{})
}

func (c *Catalog) build(name string, visiting map[string]bool) (*record.Record, error) {
	if visiting[name] {
		return nil, fmt.Errorf("relationship cycle through record %q", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	def, err := c.Definition(name)
	if err != nil {
		return nil, err
	}
	mgr, err := c.SchemaManager(name)
	if err != nil {
		return nil, err
	}

	rec := record.New(c.conn,
		record.WithLogger(c.logger.With(slog.String("record", name))),
		record.WithSchemaManager(mgr),
		record.WithKeyGenerator(c.keys),
	)
	rec.SetTable(def.Table, def.Alias).SetPrimaryKey(def.PrimaryKey)

	cols := make([]record.Column, len(def.Columns))
	for i, col := range def.Columns {
		cols[i] = record.Column{Name: col.Name, Ref: col.Ref}
	}
	rec.SetColumns(cols...)
	if len(def.Aliases) > 0 {
		rec.SetColumnAliases(def.Aliases)
	}

	rec.SetAllowInsert(def.Insert...).
		SetAllowUpdate(def.Update...).
		EnableInsert(config.Enabled(def.AllowInsert)).
		EnableUpdate(config.Enabled(def.AllowUpdate)).
		EnableDelete(config.Enabled(def.AllowDelete)).
		SetRowsLimit(def.Limit).
		SetFetchShape(def.Fetch)

	for _, rel := range def.Relationships {
		if rel.Record == "" {
			rec.AddRelationship(record.Relationship{
				Column: rel.Column,
				Kind:   rel.Kind,
				Table:  rel.Table,
				Alias:  rel.Alias,
				On:     ParseCondition(rel.On),
			})
			continue
		}
		target, err := c.build(rel.Record, visiting)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve relationship %s of %s: %w", rel.Column, name, err)
		}
		rec.RelateTo(rel.Column, rel.Kind, target)
	}

	return rec, nil
}

// SchemaManager returns the manager that creates the table of name:
// goose migrations when configured, generated DDL otherwise.
func (c *Catalog) SchemaManager(name string) (schema.Manager, error) {
	def, err := c.Definition(name)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With(slog.String("record", name))

	if m := def.Migrations; m != nil {
		dialect, err := schema.GooseDialect(c.conn.Dialect().Name)
		if err != nil {
			return nil, err
		}
		tables := m.Tables
		if tables == "" {
			tables = "."
		}
		return &schema.GooseManager{
			DB:          c.conn.SQLDB(),
			Dialect:     dialect,
			FS:          os.DirFS(c.resolve(m.Dir)),
			Table:       def.Table,
			TablesDir:   tables,
			TriggersDir: m.Triggers,
			Logger:      logger,
		}, nil
	}

	return schema.NewDDLManager(c.conn, TableDef(def), logger), nil
}

func (c *Catalog) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// TableDef derives the physical table of a record definition. Columns
// referencing another table are left out.
func TableDef(def *config.RecordConfig) schema.TableDef {
	td := schema.TableDef{Name: def.Table}
	for _, col := range def.Columns {
		qualifier, column := splitRef(col.Ref)
		if column == "" {
			column = col.Name
		}
		if qualifier != "" && qualifier != def.Alias && qualifier != def.Table {
			continue
		}
		if col.Name == def.PrimaryKey {
			td.PrimaryKey = column
		}
		td.Columns = append(td.Columns, schema.ColumnDef{Name: column, Type: col.Type, Nullable: col.Nullable})
	}
	for _, tr := range def.Triggers {
		td.Triggers = append(td.Triggers, schema.TriggerDef{Name: tr.Name, SQL: tr.SQL})
	}
	return td
}

func splitRef(ref string) (qualifier, column string) {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

var (
	andPattern = regexp.MustCompile(`(?i)\s+and\s+`)
	eqPattern  = regexp.MustCompile(`^\s*([A-Za-z_][\w.]*)\s*=\s*([A-Za-z_][\w.]*)\s*$`)
)

// ParseCondition turns a join condition such as "u.id = p.user_id" into a
// query condition. Conjunctions of column equalities become query.And;
// anything else is passed through verbatim.
func ParseCondition(on string) query.Condition {
	parts := andPattern.Split(strings.TrimSpace(on), -1)
	conds := make([]query.Condition, 0, len(parts))
	for _, part := range parts {
		m := eqPattern.FindStringSubmatch(part)
		if m == nil {
			return query.Raw(on)
		}
		conds = append(conds, query.EqColumn(m[1], m[2]))
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return query.And(conds...)
}

// UnknownRecordError is returned when a record name is not configured.
type UnknownRecordError struct {
	Name      string
	Available []string
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown record %q\nAvailable records: %v", e.Name, e.Available)
}
