// Package duckdb provides a DuckDB connection adapter.
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

var missingTable = regexp.MustCompile(`Table with name .* does not exist`)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger:     logger,
			SQLDialect: dialect.MustGet("duckdb"),
			Classify:   ClassifyError,
		},
	}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

func (a *Adapter) applyParams(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		name := a.SQLDialect.QuoteIdentifierIfNeeded(ext)
		if err := a.Exec(ctx, "INSTALL "+name); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+name); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.ReplaceAll(p.Settings[k], "'", "''")
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", k, v)); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}
	return nil
}

// TableMetadata retrieves column metadata from information_schema.
func (a *Adapter) TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return a.TableMetadataCommon(ctx, table)
}

// ClassifyError reports a missing table as core.ErrorClassSchemaMissing.
// DuckDB exposes no numeric codes, so the error type prefix
// ("Catalog", "Constraint", ...) is used as the code. Errors that did not come
// from the driver are matched on their message.
func ClassifyError(err error) (string, core.ErrorClass) {
	var duckErr *goduckdb.Error
	if errors.As(err, &duckErr) {
		code := errorPrefix(duckErr.Msg)
		if duckErr.Type == goduckdb.ErrorTypeCatalog && missingTable.MatchString(duckErr.Msg) {
			return code, core.ErrorClassSchemaMissing
		}
		return code, core.ErrorClassOther
	}

	msg := err.Error()
	code := errorPrefix(msg)
	if code == "Catalog" && missingTable.MatchString(msg) {
		return code, core.ErrorClassSchemaMissing
	}
	return code, core.ErrorClassOther
}

// errorPrefix returns "Catalog" for "Catalog Error: ...".
func errorPrefix(msg string) string {
	head, _, ok := strings.Cut(msg, " Error:")
	if !ok {
		return ""
	}
	if i := strings.LastIndex(head, " "); i >= 0 {
		head = head[i+1:]
	}
	return strings.TrimSpace(head)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
