package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// GooseDialect maps an adapter type to the goose dialect name.
func GooseDialect(adapterType string) (string, error) {
	switch adapterType {
	case "postgres":
		return string(goose.DialectPostgres), nil
	case "sqlite":
		return string(goose.DialectSQLite3), nil
	case "mysql":
		return string(goose.DialectMySQL), nil
	default:
		return "", fmt.Errorf("goose migrations are not supported for adapter %q", adapterType)
	}
}

// GooseManager applies goose migrations from a filesystem.
// TablesDir holds table migrations; TriggersDir, when set, holds trigger migrations.
//
// Each directory is versioned in its own table named after Table, so managers
// of different records can share one database.
type GooseManager struct {
	DB          *sql.DB
	Dialect     string
	FS          fs.FS
	Table       string
	TablesDir   string
	TriggersDir string
	Logger      *slog.Logger
}

// Create implements Manager by applying every pending migration in TablesDir.
func (m *GooseManager) Create(ctx context.Context) error {
	return m.up(ctx, m.TablesDir, m.VersionTable())
}

// CreateTriggers implements Manager by applying TriggersDir.
func (m *GooseManager) CreateTriggers(ctx context.Context) error {
	if m.TriggersDir == "" {
		return nil
	}
	return m.up(ctx, m.TriggersDir, m.triggersVersionTable())
}

// Version returns the highest applied table migration.
func (m *GooseManager) Version(ctx context.Context) (int64, error) {
	p, err := m.provider(m.TablesDir, m.VersionTable())
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

// VersionTable is the goose version table of TablesDir.
func (m *GooseManager) VersionTable() string {
	if m.Table == "" {
		return goose.DefaultTablename
	}
	return m.Table + "_goose_version"
}

func (m *GooseManager) triggersVersionTable() string {
	if m.Table == "" {
		return goose.DefaultTablename + "_triggers"
	}
	return m.Table + "_triggers_goose_version"
}

func (m *GooseManager) up(ctx context.Context, dir, versionTable string) error {
	p, err := m.provider(dir, versionTable)
	if err != nil {
		return err
	}
	m.logger().Debug("running migrations", slog.String("dir", dir), slog.String("version_table", versionTable))
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		m.logger().Debug("applied migration", slog.Int64("version", r.Source.Version), slog.Duration("duration", r.Duration))
	}
	return nil
}

// provider builds a goose provider over dir. The provider is not closed
// because Close would close the shared DB.
func (m *GooseManager) provider(dir, versionTable string) (*goose.Provider, error) {
	if m.DB == nil {
		return nil, errors.New("database connection not established")
	}
	if m.FS == nil {
		return nil, errors.New("migrations filesystem not set")
	}
	if dir == "" {
		dir = "."
	}
	sub, err := fs.Sub(m.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations dir %q: %w", dir, err)
	}
	p, err := goose.NewProvider(goose.Dialect(m.Dialect), m.DB, sub,
		goose.WithTableName(versionTable),
		goose.WithDisableGlobalRegistry(true),
		goose.WithAllowOutofOrder(true),
		goose.WithSlog(m.logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations from %s: %w", dir, err)
	}
	return p, nil
}

func (m *GooseManager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

var _ Manager = (*GooseManager)(nil)
