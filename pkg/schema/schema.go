// Package schema creates the tables backing records on first use.
//
// A Manager is invoked by a record only when an insert fails because its
// table does not exist. DDLManager generates the table from column
// definitions; GooseManager applies a directory of goose migrations.
package schema

import (
	"context"

	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// Manager creates a table and its auxiliary triggers.
type Manager interface {
	// Create creates the table. It must succeed when the table already exists.
	Create(ctx context.Context) error

	// CreateTriggers creates any triggers attached to the table.
	CreateTriggers(ctx context.Context) error
}

// Execer runs DDL statements. adapter.Adapter satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
	Dialect() *dialect.Dialect
}
