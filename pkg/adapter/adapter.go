// Package adapter defines the connection contract consumed by records and
// the database/sql based implementation shared by concrete adapters.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves by name from their init functions.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Conn prepares and runs statements built by pkg/query.
type Conn interface {
	// Prepare renders and prepares stmt for later execution.
	Prepare(ctx context.Context, stmt query.Statement) (Prepared, error)

	// Query prepares stmt and executes it immediately without parameters.
	Query(ctx context.Context, stmt query.Statement) (Prepared, error)
}

// Prepared is a statement ready to run with named parameters.
type Prepared interface {
	// Execute binds params by name and runs the statement. Failures are *ExecError.
	Execute(ctx context.Context, params map[string]any) error

	// FetchAll returns the rows produced by the last Execute.
	FetchAll(shape core.FetchShape) ([]core.Row, error)

	// Close releases the underlying statement.
	Close() error
}

// Tx is a Conn bound to a database transaction.
type Tx interface {
	Conn
	Commit() error
	Rollback() error
}

// TxConn is a Conn that can open transactions.
type TxConn interface {
	Conn
	Begin(ctx context.Context) (Tx, error)
}

// Adapter is a connectable database backend.
type Adapter interface {
	TxConn

	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g. CREATE TABLE).
	Exec(ctx context.Context, sql string) error

	// TableMetadata retrieves column metadata for a table.
	TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)

	// SQLDB returns the underlying handle, nil before Connect.
	SQLDB() *sql.DB

	// Dialect returns the SQL dialect used to render statements.
	Dialect() *dialect.Dialect
}
