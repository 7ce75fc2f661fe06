package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultColumnType is used for columns declared without a type.
const DefaultColumnType = "TEXT"

// ColumnDef describes one physical column.
type ColumnDef struct {
	Name     string
	Type     string
	Nullable bool
}

// TriggerDef is a named trigger statement executed verbatim.
type TriggerDef struct {
	Name string
	SQL  string
}

// TableDef describes a table created by DDLManager.
type TableDef struct {
	Name       string
	PrimaryKey string
	Columns    []ColumnDef
	Triggers   []TriggerDef
}

// ErrNoColumns is returned when a table definition has no columns.
var ErrNoColumns = errors.New("table definition has no columns")

// DDLManager creates a table from a TableDef with CREATE TABLE IF NOT EXISTS.
type DDLManager struct {
	db     Execer
	def    TableDef
	logger *slog.Logger
}

// NewDDLManager creates a manager for def. If logger is nil, a discard logger is used.
func NewDDLManager(db Execer, def TableDef, logger *slog.Logger) *DDLManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DDLManager{db: db, def: def, logger: logger}
}

// CreateTableSQL renders the CREATE TABLE statement.
func (m *DDLManager) CreateTableSQL() (string, error) {
	if m.def.Name == "" {
		return "", errors.New("table definition has no name")
	}
	if len(m.def.Columns) == 0 {
		return "", ErrNoColumns
	}

	d := m.db.Dialect()
	defs := make([]string, 0, len(m.def.Columns)+1)
	hasKey := false
	for _, col := range m.def.Columns {
		typ := col.Type
		if typ == "" {
			typ = DefaultColumnType
		}
		def := d.QuoteIdentifierIfNeeded(col.Name) + " " + typ
		switch {
		case col.Name == m.def.PrimaryKey:
			def += " PRIMARY KEY"
			hasKey = true
		case !col.Nullable:
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if !hasKey && m.def.PrimaryKey != "" {
		defs = append([]string{d.QuoteIdentifierIfNeeded(m.def.PrimaryKey) + " " + DefaultColumnType + " PRIMARY KEY"}, defs...)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		d.QuoteQualified(m.def.Name), strings.Join(defs, ", ")), nil
}

// Create implements Manager.
func (m *DDLManager) Create(ctx context.Context) error {
	stmt, err := m.CreateTableSQL()
	if err != nil {
		return err
	}
	m.logger.Debug("creating table", slog.String("table", m.def.Name))
	if err := m.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", m.def.Name, err)
	}
	return nil
}

// CreateTriggers implements Manager. Triggers run in declaration order.
func (m *DDLManager) CreateTriggers(ctx context.Context) error {
	for _, trg := range m.def.Triggers {
		m.logger.Debug("creating trigger", slog.String("table", m.def.Name), slog.String("trigger", trg.Name))
		if err := m.db.Exec(ctx, trg.SQL); err != nil {
			return fmt.Errorf("failed to create trigger %s on %s: %w", trg.Name, m.def.Name, err)
		}
	}
	return nil
}

var _ Manager = (*DDLManager)(nil)
