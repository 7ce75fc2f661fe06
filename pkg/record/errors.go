package record

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
)

var (
	// ErrPermissionDenied is returned when a write kind is disabled for the record.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSchemaMissing matches write errors caused by a table that does not exist.
	ErrSchemaMissing = errors.New("table does not exist")

	// ErrNoCurrentRow is returned by row-mode operations on an empty buffer.
	ErrNoCurrentRow = errors.New("no current row")

	// ErrUnknownColumn is returned when a field name is not a configured column.
	ErrUnknownColumn = errors.New("unknown column")
)

// Field access modes reported by UnauthorizedColumnError.
const (
	ModeInsert = "insert"
	ModeUpdate = "update"
)

// UnauthorizedColumnError is returned when a column outside the whitelist of
// the current mode is accessed.
type UnauthorizedColumnError struct {
	Column string
	Mode   string
}

func (e *UnauthorizedColumnError) Error() string {
	return fmt.Sprintf("column %q is not allowed in %s mode", e.Column, e.Mode)
}

// WriteError is a failed insert, update or delete commit.
type WriteError struct {
	Op      string
	Table   string
	Class   core.ErrorClass
	Code    string
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("failed to %s %s: [%s] %s", e.Op, e.Table, e.Code, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.Table, e.Message)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is reports ErrSchemaMissing for errors classified as a missing table.
func (e *WriteError) Is(target error) bool {
	return target == ErrSchemaMissing && e.Class == core.ErrorClassSchemaMissing
}

func newWriteError(op, table string, err error) *WriteError {
	we := &WriteError{Op: op, Table: table, Message: err.Error(), Err: err}
	var execErr *adapter.ExecError
	if errors.As(err, &execErr) {
		we.Class = execErr.Class
		we.Code = execErr.Code
		we.Message = execErr.Message
	}
	return we
}

func isSchemaMissing(err error) bool {
	var execErr *adapter.ExecError
	return errors.As(err, &execErr) && execErr.SchemaMissing()
}

func permissionDenied(op string) error {
	return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
}
