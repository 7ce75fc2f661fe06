// Package sqlite provides a SQLite connection adapter backed by the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	msqlite "modernc.org/sqlite"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger:     logger,
			SQLDialect: dialect.MustGet("sqlite"),
			Classify:   ClassifyError,
		},
	}
}

// Connect opens the database file at cfg.Path (":memory:" when empty).
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = MemoryPath
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", buildDSN(path, cfg.Options))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Each pooled connection to ":memory:" would see its own empty database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDSN appends pragmas from options (e.g. foreign_keys=on) to path.
func buildDSN(path string, options map[string]string) string {
	pragmas := []string{"foreign_keys(1)"}
	if mode, ok := options["journal_mode"]; ok && path != MemoryPath {
		pragmas = append(pragmas, "journal_mode("+mode+")")
	}
	if timeout, ok := options["busy_timeout"]; ok {
		pragmas = append(pragmas, "busy_timeout("+timeout+")")
	}

	q := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		q = append(q, "_pragma="+p)
	}
	return path + "?" + strings.Join(q, "&")
}

// TableMetadata reads column metadata with PRAGMA table_info.
func (a *Adapter) TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	schema, name := adapter.ParseQualifiedName(table, a.SQLDialect)
	quoted := a.SQLDialect.QuoteIdentifier(name)

	//nolint:gosec // identifier is quoted by the dialect
	rows, err := a.DB.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var (
			col     core.Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Position++
		col.Nullable = notNull == 0 && pk == 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	var count int64
	//nolint:gosec // identifier is quoted by the dialect
	if err := a.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&count); err != nil {
		count = 0
	}

	return &core.TableMetadata{Schema: schema, Name: name, Columns: columns, RowCount: count}, nil
}

// ClassifyError reports the extended result code of a SQLite error. A
// "no such table" failure is reported as core.ErrorClassSchemaMissing.
func ClassifyError(err error) (string, core.ErrorClass) {
	code := ""
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		code = strconv.Itoa(liteErr.Code())
	}
	if strings.Contains(err.Error(), "no such table") {
		return code, core.ErrorClassSchemaMissing
	}
	return code, core.ErrorClassOther
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
