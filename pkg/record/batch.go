package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

var errNoPrimaryKey = errors.New("record has no primary key")

// Insert queues a row for CommitInsert. Without arguments the staging row is
// queued and cleared; explicit rows are checked against the insert whitelist.
// Empty rows are ignored.
func (r *Record) Insert(data ...core.Row) error {
	if len(data) == 0 {
		if r.staging.IsEmpty() {
			return nil
		}
		r.pendingInserts = append(r.pendingInserts, r.staging)
		r.staging = core.Row{}
		return nil
	}

	staged := make([]core.Row, 0, len(data))
	for _, row := range data {
		var norm core.Row
		for _, k := range row.Keys() {
			col := r.logicalName(k)
			if err := r.checkInsertColumn(col); err != nil {
				return err
			}
			v, _ := row.Get(k)
			norm.Set(col, v)
		}
		if !norm.IsEmpty() {
			staged = append(staged, norm)
		}
	}
	r.pendingInserts = append(r.pendingInserts, staged...)
	return nil
}

// InsertFromCurrentData queues a copy of the current row restricted to the
// insert whitelist.
func (r *Record) InsertFromCurrentData() error {
	if r.IsEmpty() {
		return ErrNoCurrentRow
	}
	cur := r.CurrentData()
	var row core.Row
	for _, col := range r.allowInsert {
		key, err := r.rowKey(col)
		if err != nil {
			continue
		}
		if v, ok := cur.Get(key); ok {
			row.Set(col, v)
		}
	}
	if row.IsEmpty() {
		return nil
	}
	r.pendingInserts = append(r.pendingInserts, row)
	return nil
}

// CommitInsert writes every queued insert in one statement. Each row gets a
// surrogate primary key unless it carries one. When the table does not exist
// the schema manager creates it and its triggers, and the insert is retried
// once.
func (r *Record) CommitInsert(ctx context.Context) error {
	if !r.insertEnabled {
		return permissionDenied("insert")
	}
	if len(r.pendingInserts) == 0 {
		return nil
	}

	for attempt := 0; ; attempt++ {
		keys, err := r.execInsert(ctx)
		if err == nil {
			r.pendingInserts = nil
			r.lastKeys = keys
			return nil
		}
		if attempt == 0 && r.schema != nil && isSchemaMissing(err) {
			r.logger.Debug("table missing, creating schema", slog.String("table", r.table))
			if err := r.createSchema(ctx); err != nil {
				return r.failWrite("insert", err)
			}
			continue
		}
		return r.failWrite("insert", err)
	}
}

func (r *Record) createSchema(ctx context.Context) error {
	if err := r.schema.Create(ctx); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := r.schema.CreateTriggers(ctx); err != nil {
		return fmt.Errorf("failed to create triggers: %w", err)
	}
	return nil
}

func (r *Record) execInsert(ctx context.Context) ([]string, error) {
	stmt := r.prepareQueryInsert()
	stmt.ClearRows()

	params := make(map[string]any)
	keys := make([]string, 0, len(r.pendingInserts))
	for i, row := range r.pendingInserts {
		slots := make(map[string]string, len(r.insertCols))
		for _, col := range r.insertCols {
			name := fmt.Sprintf("%s_%d", col, i)
			slots[r.physical(col)] = name
			v, _ := row.Get(col)
			params[name] = v
		}
		if r.primaryKey != "" {
			name := fmt.Sprintf("%s_%d", r.primaryKey, i)
			key, err := r.surrogateKey(row)
			if err != nil {
				return nil, err
			}
			params[name] = key
			keys = append(keys, key)
		}
		stmt.AddRow(slots)
	}

	return keys, r.execOnce(ctx, r.conn, stmt, params)
}

func (r *Record) surrogateKey(row core.Row) (string, error) {
	if v, ok := row.Get(r.primaryKey); ok && v != nil {
		return core.FormatValue(v), nil
	}
	return r.newKey()
}

// prepareQueryInsert builds the INSERT on first use. Its columns are those
// of the first queued row plus the primary key, and stay fixed afterwards.
func (r *Record) prepareQueryInsert() *query.Insert {
	if !r.insertBuilt {
		cols := r.pendingInserts[0].Keys()
		if r.primaryKey != "" {
			cols = slices.DeleteFunc(cols, func(c string) bool { return c == r.primaryKey })
			cols = append(cols, r.primaryKey)
		}
		phys := make([]string, len(cols))
		for i, c := range cols {
			phys[i] = r.physical(c)
		}
		r.insertCols = cols
		r.insertStmt = query.NewInsert().Into(r.table).AssocMode(true).Columns(phys...)
		r.insertBuilt = true
	}
	return r.insertStmt
}

// Update queues a snapshot of the current row for CommitUpdate.
func (r *Record) Update() error {
	if r.IsEmpty() {
		return ErrNoCurrentRow
	}
	r.pendingUpdates = append(r.pendingUpdates, r.CurrentData().Clone())
	return nil
}

// CommitUpdate writes every queued snapshot. Only columns in the update
// whitelist are written; rows are addressed by primary key.
func (r *Record) CommitUpdate(ctx context.Context) error {
	if !r.updateEnabled {
		return permissionDenied("update")
	}
	if len(r.pendingUpdates) == 0 {
		return nil
	}

	stmt, err := r.prepareQueryUpdate()
	if err != nil {
		return r.failWrite("update", err)
	}
	batch := make([]map[string]any, 0, len(r.pendingUpdates))
	for _, row := range r.pendingUpdates {
		params, err := r.bindUpdate(row)
		if err != nil {
			return r.failWrite("update", err)
		}
		batch = append(batch, params)
	}
	if err := r.execBatch(ctx, stmt, batch); err != nil {
		return r.failWrite("update", err)
	}
	r.pendingUpdates = nil
	return nil
}

func (r *Record) prepareQueryUpdate() (*query.Update, error) {
	if r.primaryKey == "" {
		return nil, errNoPrimaryKey
	}
	if !r.updateBuilt {
		upd := query.NewUpdate().Table(r.table).Limit(1)
		for _, col := range r.allowUpdate {
			upd.Set(r.physical(col), col)
		}
		upd.Where(query.Eq(r.physical(r.primaryKey), r.primaryKey))
		r.updateStmt = upd
		r.updateBuilt = true
	}
	return r.updateStmt, nil
}

// bindUpdate binds the whitelisted columns and the primary key of row.
func (r *Record) bindUpdate(row core.Row) (map[string]any, error) {
	params := make(map[string]any, len(r.allowUpdate)+1)
	for _, col := range append(r.AllowUpdate(), r.primaryKey) {
		key, err := r.rowKey(col)
		if err != nil {
			return nil, err
		}
		v, ok := row.Get(key)
		if !ok {
			return nil, fmt.Errorf("update row has no value for column %q", col)
		}
		params[col] = v
	}
	return params, nil
}

// Delete queues the primary key of the current row for CommitDelete.
func (r *Record) Delete() error {
	if r.IsEmpty() {
		return ErrNoCurrentRow
	}
	if r.primaryKey == "" {
		return errNoPrimaryKey
	}
	key, err := r.rowKey(r.primaryKey)
	if err != nil {
		return err
	}
	v, ok := r.CurrentData().Get(key)
	if !ok || v == nil {
		return fmt.Errorf("current row has no value for primary key %q", r.primaryKey)
	}
	r.pendingDeletes = append(r.pendingDeletes, v)
	return nil
}

// CommitDelete deletes every queued key.
func (r *Record) CommitDelete(ctx context.Context) error {
	if !r.deleteEnabled {
		return permissionDenied("delete")
	}
	if len(r.pendingDeletes) == 0 {
		return nil
	}

	stmt, err := r.prepareQueryDelete()
	if err != nil {
		return r.failWrite("delete", err)
	}
	batch := make([]map[string]any, 0, len(r.pendingDeletes))
	for _, key := range r.pendingDeletes {
		batch = append(batch, map[string]any{r.primaryKey: key})
	}
	if err := r.execBatch(ctx, stmt, batch); err != nil {
		return r.failWrite("delete", err)
	}
	r.pendingDeletes = nil
	return nil
}

func (r *Record) prepareQueryDelete() (*query.Delete, error) {
	if r.primaryKey == "" {
		return nil, errNoPrimaryKey
	}
	if !r.deleteBuilt {
		r.deleteStmt = query.NewDelete().
			From(r.table).
			Where(query.Eq(r.physical(r.primaryKey), r.primaryKey)).
			Limit(1)
		r.deleteBuilt = true
	}
	return r.deleteStmt, nil
}

// Commit runs CommitInsert, CommitUpdate and CommitDelete in that order and
// stops at the first error. Stages already committed are not undone.
func (r *Record) Commit(ctx context.Context) error {
	if err := r.CommitInsert(ctx); err != nil {
		return err
	}
	if err := r.CommitUpdate(ctx); err != nil {
		return err
	}
	return r.CommitDelete(ctx)
}

// Pending returns the number of queued inserts, updates and deletes.
func (r *Record) Pending() (inserts, updates, deletes int) {
	return len(r.pendingInserts), len(r.pendingUpdates), len(r.pendingDeletes)
}

// LastInsertKeys returns the primary keys written by the last successful CommitInsert.
func (r *Record) LastInsertKeys() []string {
	return append([]string(nil), r.lastKeys...)
}

func (r *Record) execOnce(ctx context.Context, conn adapter.Conn, stmt query.Statement, params map[string]any) error {
	p, err := conn.Prepare(ctx, stmt)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()
	return p.Execute(ctx, params)
}

// execBatch executes stmt once per parameter set. On a connection that
// supports transactions the batch is applied atomically.
func (r *Record) execBatch(ctx context.Context, stmt query.Statement, batch []map[string]any) error {
	txc, ok := r.conn.(adapter.TxConn)
	if !ok {
		return r.execEach(ctx, r.conn, stmt, batch)
	}

	tx, err := txc.Begin(ctx)
	if err != nil {
		return err
	}
	if err := r.execEach(ctx, tx, stmt, batch); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Record) execEach(ctx context.Context, conn adapter.Conn, stmt query.Statement, batch []map[string]any) error {
	p, err := conn.Prepare(ctx, stmt)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()
	for _, params := range batch {
		if err := p.Execute(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) failWrite(op string, err error) error {
	we := newWriteError(op, r.table, err)
	r.logger.Error(op+" failed",
		slog.String("table", r.table),
		slog.String("class", we.Class.String()),
		slog.String("code", we.Code),
		slog.Any("error", err))
	return we
}
