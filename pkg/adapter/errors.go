package adapter

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaprecord/pkg/core"
)

// ErrNotConnected is returned by operations invoked before Connect.
var ErrNotConnected = errors.New("database connection not established")

// ErrNotExecuted is returned by FetchAll before the statement has been executed.
var ErrNotExecuted = errors.New("statement has not been executed")

// Classifier maps a driver error to a machine-readable code and its class.
type Classifier func(err error) (code string, class core.ErrorClass)

// ExecError is a driver failure raised while preparing or executing a statement.
type ExecError struct {
	Op      string
	Code    string
	Message string
	Class   core.ErrorClass
	Err     error
}

func (e *ExecError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("failed to %s statement: [%s] %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("failed to %s statement: %s", e.Op, e.Message)
}

func (e *ExecError) Unwrap() error { return e.Err }

// SchemaMissing reports whether the statement addressed a relation that does not exist.
func (e *ExecError) SchemaMissing() bool {
	return e.Class == core.ErrorClassSchemaMissing
}

// NewExecError builds an ExecError, classifying err with classify when set.
func NewExecError(op string, err error, classify Classifier) *ExecError {
	e := &ExecError{Op: op, Message: err.Error(), Err: err}
	if classify != nil {
		e.Code, e.Class = classify(err)
	}
	return e
}

// MissingParamError is returned when Execute is called without a value for a
// parameter referenced by the statement.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing value for parameter %q", e.Name)
}
