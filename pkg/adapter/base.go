package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Prepare, Query and Begin implementations.
type BaseSQLAdapter struct {
	DB         *sql.DB
	Cfg        core.AdapterConfig
	Logger     *slog.Logger
	SQLDialect *dialect.Dialect
	Classify   Classifier
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	b.logger().Debug("executing SQL", slog.String("sql", sqlStr))
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", NewExecError("execute", err, b.Classify))
	}
	return nil
}

// Prepare renders stmt with the adapter dialect and prepares it.
func (b *BaseSQLAdapter) Prepare(ctx context.Context, stmt query.Statement) (Prepared, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	return b.conn(b.DB).Prepare(ctx, stmt)
}

// Query prepares stmt and executes it without parameters.
func (b *BaseSQLAdapter) Query(ctx context.Context, stmt query.Statement) (Prepared, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	return b.conn(b.DB).Query(ctx, stmt)
}

// Begin starts a transaction. Statements prepared on the returned Tx run inside it.
func (b *BaseSQLAdapter) Begin(ctx context.Context) (Tx, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{sqlConn: b.conn(tx), tx: tx}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// SQLDB returns the underlying database handle.
func (b *BaseSQLAdapter) SQLDB() *sql.DB {
	return b.DB
}

// Dialect returns the dialect statements are rendered with.
func (b *BaseSQLAdapter) Dialect() *dialect.Dialect {
	return b.SQLDialect
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

func (b *BaseSQLAdapter) conn(p preparer) sqlConn {
	return sqlConn{db: p, dialect: b.SQLDialect, classify: b.Classify, logger: b.logger()}
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *dialect.Dialect) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return d.DefaultSchema, table
}

// TableMetadataCommon reads column metadata from information_schema.columns.
// Adapters whose database exposes information_schema call it from TableMetadata.
func (b *BaseSQLAdapter) TableMetadataCommon(ctx context.Context, table string) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	d := b.SQLDialect
	schema, tableName := ParseQualifiedName(table, d)

	//nolint:gosec // placeholders come from dialect.FormatPlaceholder
	q := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, q, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: b.countRows(ctx, d.QuoteQualified(schema+"."+tableName)),
	}, nil
}

func (b *BaseSQLAdapter) countRows(ctx context.Context, quoted string) int64 {
	var n int64
	//nolint:gosec // identifier is quoted by the dialect
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&n); err != nil {
		return 0
	}
	return n
}

// preparer is satisfied by *sql.DB and *sql.Tx.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type sqlConn struct {
	db       preparer
	dialect  *dialect.Dialect
	classify Classifier
	logger   *slog.Logger
}

func (c sqlConn) Prepare(ctx context.Context, stmt query.Statement) (Prepared, error) {
	sqlStr, params, err := stmt.Render(c.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s statement: %w", stmt.Kind(), err)
	}
	c.logger.Debug("preparing statement",
		slog.String("kind", stmt.Kind().String()),
		slog.String("sql", sqlStr))

	st, err := c.db.PrepareContext(ctx, sqlStr)
	if err != nil {
		return nil, NewExecError("prepare", err, c.classify)
	}
	return &statement{
		stmt:     st,
		sql:      sqlStr,
		params:   params,
		kind:     stmt.Kind(),
		classify: c.classify,
	}, nil
}

func (c sqlConn) Query(ctx context.Context, stmt query.Statement) (Prepared, error) {
	p, err := c.Prepare(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if err := p.Execute(ctx, nil); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

type sqlTx struct {
	sqlConn
	tx *sql.Tx
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// statement is a prepared database/sql statement with named parameter slots.
type statement struct {
	stmt     *sql.Stmt
	sql      string
	params   []string
	kind     core.StatementKind
	classify Classifier

	executed bool
	columns  []string
	values   [][]any
}

func (s *statement) Execute(ctx context.Context, params map[string]any) error {
	args := make([]any, len(s.params))
	for i, name := range s.params {
		v, ok := params[name]
		if !ok {
			return &MissingParamError{Name: name}
		}
		args[i] = v
	}

	s.executed = false
	s.columns, s.values = nil, nil

	if !s.kind.ReturnsRows() {
		if _, err := s.stmt.ExecContext(ctx, args...); err != nil {
			return NewExecError("execute", err, s.classify)
		}
		s.executed = true
		return nil
	}

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return NewExecError("execute", err, s.classify)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to get columns: %w", err)
	}
	var values [][]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, vals)
	}
	if err := rows.Err(); err != nil {
		return NewExecError("execute", err, s.classify)
	}

	s.columns, s.values, s.executed = columns, values, true
	return nil
}

func (s *statement) FetchAll(shape core.FetchShape) ([]core.Row, error) {
	if !s.executed {
		return nil, ErrNotExecuted
	}
	out := make([]core.Row, 0, len(s.values))
	for _, vals := range s.values {
		var row core.Row
		for i, v := range vals {
			key := s.columns[i]
			if shape == core.FetchNum {
				key = strconv.Itoa(i)
			}
			row.Set(key, v)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *statement) Close() error {
	return s.stmt.Close()
}

// Ensure the shared implementations satisfy the contracts.
var (
	_ TxConn   = (*BaseSQLAdapter)(nil)
	_ Tx       = (*sqlTx)(nil)
	_ Prepared = (*statement)(nil)
)
