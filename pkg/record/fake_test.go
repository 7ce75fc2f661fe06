package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/dialect"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

type call struct {
	kind   core.StatementKind
	sql    string
	params map[string]any
}

// fakeConn renders statements with the sqlite dialect and records every execution.
type fakeConn struct {
	dialect *dialect.Dialect
	calls   []call

	// selectFn answers SELECT executions.
	selectFn func(c call) ([]core.Row, error)
	// execFn answers INSERT, UPDATE and DELETE executions.
	execFn func(c call) error
}

func newFakeConn() *fakeConn {
	return &fakeConn{dialect: dialect.MustGet("sqlite")}
}

func (f *fakeConn) Prepare(_ context.Context, stmt query.Statement) (adapter.Prepared, error) {
	sqlStr, _, err := stmt.Render(f.dialect)
	if err != nil {
		return nil, err
	}
	return &fakePrepared{conn: f, kind: stmt.Kind(), sql: sqlStr}, nil
}

func (f *fakeConn) Query(ctx context.Context, stmt query.Statement) (adapter.Prepared, error) {
	p, err := f.Prepare(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return p, p.Execute(ctx, nil)
}

func (f *fakeConn) kinds() []core.StatementKind {
	out := make([]core.StatementKind, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.kind)
	}
	return out
}

func (f *fakeConn) callsOf(kind core.StatementKind) []call {
	var out []call
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type fakePrepared struct {
	conn *fakeConn
	kind core.StatementKind
	sql  string
	rows []core.Row
}

func (p *fakePrepared) Execute(_ context.Context, params map[string]any) error {
	c := call{kind: p.kind, sql: p.sql, params: make(map[string]any, len(params))}
	for k, v := range params {
		c.params[k] = v
	}
	p.conn.calls = append(p.conn.calls, c)

	if p.kind.ReturnsRows() {
		if p.conn.selectFn == nil {
			p.rows = nil
			return nil
		}
		rows, err := p.conn.selectFn(c)
		p.rows = rows
		return err
	}
	if p.conn.execFn != nil {
		return p.conn.execFn(c)
	}
	return nil
}

func (p *fakePrepared) FetchAll(core.FetchShape) ([]core.Row, error) { return p.rows, nil }

func (p *fakePrepared) Close() error { return nil }

// fakeTxConn adds transactions to fakeConn.
type fakeTxConn struct {
	*fakeConn
	begun, committed, rolledBack int
}

func (f *fakeTxConn) Begin(context.Context) (adapter.Tx, error) {
	f.begun++
	return &fakeTx{fakeConn: f.fakeConn, parent: f}, nil
}

type fakeTx struct {
	*fakeConn
	parent *fakeTxConn
}

func (t *fakeTx) Commit() error {
	t.parent.committed++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.parent.rolledBack++
	return nil
}

type fakeSchema struct {
	creates, triggers int
	createErr         error
	onCreate          func()
}

func (s *fakeSchema) Create(context.Context) error {
	s.creates++
	if s.onCreate != nil {
		s.onCreate()
	}
	return s.createErr
}

func (s *fakeSchema) CreateTriggers(context.Context) error {
	s.triggers++
	return nil
}

func schemaMissingErr() error {
	return &adapter.ExecError{
		Op:      "execute",
		Code:    "1",
		Message: "no such table: users",
		Class:   core.ErrorClassSchemaMissing,
		Err:     errors.New("no such table: users"),
	}
}

// sequenceKeys returns a generator yielding k1, k2, ...
func sequenceKeys() KeyGenerator {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("k%d", n), nil
	}
}

func row(pairs ...any) core.Row { return core.NewRow(pairs...) }
