package record

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/internal/testutil"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

func newUsers(t *testing.T, conn adapter.Conn, opts ...Option) *Record {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t)), WithKeyGenerator(sequenceKeys())}, opts...)
	return New(conn, opts...).
		SetTable("users", "").
		SetPrimaryKey("id").
		SetColumns(Col("id"), Col("name"), Col("email")).
		SetAllowInsert("name", "email").
		SetAllowUpdate("name")
}

func TestPrepareQuerySelect(t *testing.T) {
	conn := newFakeConn()
	orgs := New(conn).SetTable("orgs", "o").SetPrimaryKey("id")
	users := New(conn).
		SetTable("users", "u").
		SetPrimaryKey("id").
		SetColumns(Col("id"), Col("name"), Col("email"), Col("org_id"), Column{Name: "org_name", Ref: "o.name"}).
		SetColumnAliases(map[string]string{"email": "mail"}).
		RelateTo("org_id", query.JoinInner, orgs).
		AddRelationship(Relationship{Column: "id", Table: "avatars", Alias: "a", On: query.EqColumn("a.user_id", "u.id")}).
		SetRowsLimit(2)

	sqlStr, params, err := users.prepareQuerySelect().Render(conn.dialect)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT u.id, u.name, u.email AS mail, u.org_id, o.name AS org_name FROM users AS u"+
			" INNER JOIN orgs AS o ON u.org_id = o.id"+
			" LEFT JOIN avatars AS a ON a.user_id = u.id"+
			" WHERE 1 = 1 LIMIT 2",
		sqlStr)
	assert.Empty(t, params)
}

func TestPrepareQuerySelect_Cached(t *testing.T) {
	users := newUsers(t, newFakeConn())
	first := users.prepareQuerySelect()
	assert.Same(t, first, users.prepareQuerySelect())

	users.SetColumns(Col("id"))
	assert.NotSame(t, first, users.prepareQuerySelect(), "changing columns rebuilds the SELECT")
}

func TestBaseCondition(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn).SetBaseCondition(func() query.Condition { return query.IsNull("deleted_at") })

	users.Select(context.Background())
	require.Len(t, conn.calls, 1)
	assert.Equal(t, "SELECT users.id, users.name, users.email FROM users WHERE deleted_at IS NULL", conn.calls[0].sql)
}

func TestFindByID_DoesNotAccumulate(t *testing.T) {
	conn := newFakeConn()
	conn.selectFn = func(c call) ([]core.Row, error) {
		return []core.Row{row("id", c.params["pk"], "name", "Ana", "email", "a@x.com")}, nil
	}
	users := newUsers(t, conn).SetRowsLimit(10).SetPage(3)
	ctx := context.Background()

	users.FindByID(ctx, "7")
	users.FindByID(ctx, "8")
	users.Select(ctx)

	require.Len(t, conn.calls, 3)
	want := "SELECT users.id, users.name, users.email FROM users WHERE 1 = 1 AND users.id = ? LIMIT 1"
	assert.Equal(t, want, conn.calls[0].sql)
	assert.Equal(t, want, conn.calls[1].sql)
	assert.Equal(t, map[string]any{"pk": "8"}, conn.calls[1].params)
	assert.Equal(t, "SELECT users.id, users.name, users.email FROM users WHERE 1 = 1 LIMIT 10 OFFSET 30", conn.calls[2].sql)

	v, err := users.Get("id")
	require.NoError(t, err)
	assert.Nil(t, v, "pk param is only bound by FindByID")
}

func TestFindByID_CompoundBaseCondition(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn).SetBaseCondition(func() query.Condition {
		return query.Raw("status = 'a' OR status = 'b'")
	})

	users.FindByID(context.Background(), "7")
	require.Len(t, conn.calls, 1)
	assert.Equal(t,
		"SELECT users.id, users.name, users.email FROM users WHERE (status = 'a' OR status = 'b') AND users.id = ? LIMIT 1",
		conn.calls[0].sql)
	assert.Equal(t, map[string]any{"pk": "7"}, conn.calls[0].params)
}

func TestSelect_SoftFailure(t *testing.T) {
	conn := newFakeConn()
	fail := false
	conn.selectFn = func(call) ([]core.Row, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return []core.Row{row("id", "1", "name", "Ana", "email", "a@x.com")}, nil
	}
	logger, logs := testutil.NewCaptureLogger()
	users := newUsers(t, conn, WithLogger(logger))
	ctx := context.Background()

	require.False(t, users.Select(ctx).IsEmpty())
	require.NoError(t, users.Err())

	fail = true
	got := users.Select(ctx)
	assert.Same(t, users, got)
	assert.True(t, users.IsEmpty())
	assert.Equal(t, 0, users.CurrentIndex())
	assert.EqualError(t, users.Err(), "connection reset")
	require.Len(t, logs.AtLevel(slog.LevelError), 1)
	assert.Equal(t, "select failed", logs.AtLevel(slog.LevelError)[0].Message)
}

func TestSelect_ValidatesRows(t *testing.T) {
	conn := newFakeConn()
	conn.selectFn = func(call) ([]core.Row, error) {
		return []core.Row{row("id", "1", "name", "Ana")}, nil
	}
	users := newUsers(t, conn)

	users.Select(context.Background())
	assert.True(t, users.IsEmpty())
	require.Error(t, users.Err())
	assert.Contains(t, users.Err().Error(), `"email"`)
}

func TestLoadData(t *testing.T) {
	users := newUsers(t, newFakeConn())
	users.LoadData([]core.Row{row("id", "1", "name", "Ana"), row("id", "2", "name", "Bea")})
	users.Next()

	users.LoadData([]core.Row{row("id", "3", "name", "Cid")})
	assert.Equal(t, 0, users.CurrentIndex())
	assert.Equal(t, 1, users.NumSelectedRows())
	assert.Equal(t, []string{"id", "name"}, users.SelectedColumns())

	users.LoadData(nil)
	assert.True(t, users.IsEmpty())
	assert.True(t, users.CurrentData().IsEmpty())
	assert.Empty(t, users.SelectedColumns())
}

func TestNext_WrapsAfterLastRow(t *testing.T) {
	for n := 1; n <= 4; n++ {
		users := newUsers(t, newFakeConn())
		rows := make([]core.Row, n)
		for i := range rows {
			rows[i] = row("id", i)
		}
		users.LoadData(rows)

		for i := 1; i < n; i++ {
			got, ok := users.Next()
			require.True(t, ok)
			assert.Same(t, users, got)
			assert.Equal(t, i, users.CurrentIndex())
		}
		got, ok := users.Next()
		assert.False(t, ok, "call %d of %d", n, n)
		assert.Nil(t, got)
		assert.Equal(t, 0, users.CurrentIndex())
	}

	empty := newUsers(t, newFakeConn())
	_, ok := empty.Next()
	assert.False(t, ok)
}

func TestPrev_ClampsAtFirstRow(t *testing.T) {
	users := newUsers(t, newFakeConn())
	users.LoadData([]core.Row{row("id", 1), row("id", 2)})
	users.Next()

	got, ok := users.Prev()
	require.True(t, ok)
	assert.Same(t, users, got)
	assert.Equal(t, 0, users.CurrentIndex())

	got, ok = users.Prev()
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 0, users.CurrentIndex())
}

func TestNextPage_ResetsOnEmptyPage(t *testing.T) {
	conn := newFakeConn()
	pages := [][]core.Row{
		{row("id", "1", "name", "a", "email", "a"), row("id", "2", "name", "b", "email", "b")},
		{},
	}
	conn.selectFn = func(call) ([]core.Row, error) {
		p := pages[0]
		pages = pages[1:]
		return p, nil
	}
	users := newUsers(t, conn).SetRowsLimit(2)
	ctx := context.Background()

	users.Select(ctx)
	got, ok := users.NextPage(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 0, users.Page())
	assert.Equal(t, 0, users.Offset())
	assert.Equal(t, "SELECT users.id, users.name, users.email FROM users WHERE 1 = 1 LIMIT 2 OFFSET 2", conn.calls[1].sql)
}

func TestNextPage_WithoutLimit(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)
	_, ok := users.NextPage(context.Background())
	assert.False(t, ok)
	assert.Empty(t, conn.calls)
}

func TestInsertMode_RejectsColumnsOutsideWhitelist(t *testing.T) {
	users := newUsers(t, newFakeConn()).StartInsertingMode()
	require.NoError(t, users.Set("name", "Ana"))
	before := users.Staged()

	for _, name := range []string{"id", "email_address", "Name", ""} {
		err := users.Set(name, "x")
		var unauthorized *UnauthorizedColumnError
		require.ErrorAs(t, err, &unauthorized, name)
		assert.Equal(t, name, unauthorized.Column)
		assert.Equal(t, ModeInsert, unauthorized.Mode)
		assert.Equal(t, before, users.Staged())

		_, err = users.Get(name)
		assert.ErrorAs(t, err, &unauthorized)
	}

	v, err := users.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "Ana", v)

	v, err = users.Get("email")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRowMode_FieldAccess(t *testing.T) {
	users := newUsers(t, newFakeConn()).SetColumnAliases(map[string]string{"email": "mail"})

	_, err := users.Get("name")
	assert.ErrorIs(t, err, ErrNoCurrentRow)
	assert.ErrorIs(t, users.Set("name", "x"), ErrNoCurrentRow)

	users.LoadData([]core.Row{row("id", "1", "name", "Ana", "mail", "a@x.com")})

	v, err := users.Get("mail")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v)

	require.NoError(t, users.Set("email", "b@x.com"), "logical names resolve through aliases")
	v, _ = users.CurrentData().Get("mail")
	assert.Equal(t, "b@x.com", v)

	require.NoError(t, users.Set("id", "2"), "row mode does not apply the insert whitelist")

	_, err = users.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestRowMode_FetchNum(t *testing.T) {
	users := newUsers(t, newFakeConn()).SetFetchShape(core.FetchNum)
	users.LoadData([]core.Row{row("0", "1", "1", "Ana", "2", "a@x.com")})

	v, err := users.Get("email")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v)
}

func TestEmptyCommitsAreNoOps(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)
	ctx := context.Background()

	require.NoError(t, users.CommitInsert(ctx))
	require.NoError(t, users.CommitUpdate(ctx))
	require.NoError(t, users.CommitDelete(ctx))
	require.NoError(t, users.Commit(ctx))

	assert.Empty(t, conn.calls)
	inserts, updates, deletes := users.Pending()
	assert.Zero(t, inserts+updates+deletes)
	assert.False(t, users.insertBuilt || users.updateBuilt || users.deleteBuilt)
}

func TestPermissionDenied(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn).EnableInsert(false).EnableUpdate(false).EnableDelete(false)
	ctx := context.Background()

	users.LoadData([]core.Row{row("id", "1", "name", "Ana", "email", "a@x.com")})
	require.NoError(t, users.Insert(row("name", "Bea")))
	require.NoError(t, users.Update())
	require.NoError(t, users.Delete())

	assert.ErrorIs(t, users.CommitInsert(ctx), ErrPermissionDenied)
	assert.ErrorIs(t, users.CommitUpdate(ctx), ErrPermissionDenied)
	assert.ErrorIs(t, users.CommitDelete(ctx), ErrPermissionDenied)
	assert.ErrorIs(t, users.Commit(ctx), ErrPermissionDenied)

	inserts, updates, deletes := users.Pending()
	assert.Equal(t, []int{1, 1, 1}, []int{inserts, updates, deletes})
	assert.Empty(t, conn.calls)
}

func TestInsert_QueuesStagingRow(t *testing.T) {
	users := newUsers(t, newFakeConn())

	require.NoError(t, users.Insert(), "empty staging row is a no-op")
	inserts, _, _ := users.Pending()
	assert.Zero(t, inserts)

	users.StartInsertingMode()
	require.NoError(t, users.Set("name", "Ana"))
	require.NoError(t, users.Insert())
	assert.True(t, users.Staged().IsEmpty())

	require.NoError(t, users.Insert(row("email", "b@x.com")))
	inserts, _, _ = users.Pending()
	assert.Equal(t, 2, inserts)

	var unauthorized *UnauthorizedColumnError
	require.ErrorAs(t, users.Insert(row("name", "Cid"), row("id", "9")), &unauthorized)
	inserts, _, _ = users.Pending()
	assert.Equal(t, 2, inserts, "a rejected batch queues nothing")
}

func TestInsertFromCurrentData(t *testing.T) {
	users := newUsers(t, newFakeConn())
	assert.ErrorIs(t, users.InsertFromCurrentData(), ErrNoCurrentRow)

	users.LoadData([]core.Row{row("id", "1", "name", "Ana", "email", "a@x.com")})
	require.NoError(t, users.InsertFromCurrentData())
	require.Len(t, users.pendingInserts, 1)
	assert.Equal(t, []string{"name", "email"}, users.pendingInserts[0].Keys())
}

func TestCommitInsert_BindsRowsAndKeys(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)
	ctx := context.Background()

	require.NoError(t, users.Insert(row("name", "Ana", "email", "a@x.com"), row("name", "Bea", "email", "b@x.com")))
	require.NoError(t, users.CommitInsert(ctx))

	require.Len(t, conn.calls, 1)
	assert.Equal(t, "INSERT INTO users (name, email, id) VALUES (?, ?, ?), (?, ?, ?)", conn.calls[0].sql)
	assert.Equal(t, map[string]any{
		"name_0": "Ana", "email_0": "a@x.com", "id_0": "k1",
		"name_1": "Bea", "email_1": "b@x.com", "id_1": "k2",
	}, conn.calls[0].params)
	assert.Equal(t, []string{"k1", "k2"}, users.LastInsertKeys())

	inserts, _, _ := users.Pending()
	assert.Zero(t, inserts)

	// The column set of the first commit is kept.
	require.NoError(t, users.Insert(row("email", "c@x.com")))
	require.NoError(t, users.CommitInsert(ctx))
	require.Len(t, conn.calls, 2)
	assert.Equal(t, "INSERT INTO users (name, email, id) VALUES (?, ?, ?)", conn.calls[1].sql)
	assert.Equal(t, map[string]any{"name_0": nil, "email_0": "c@x.com", "id_0": "k3"}, conn.calls[1].params)
}

func TestCommitInsert_SchemaMissingRetriesOnce(t *testing.T) {
	conn := newFakeConn()
	mgr := &fakeSchema{}
	created := false
	mgr.onCreate = func() { created = true }
	conn.execFn = func(call) error {
		if !created {
			return schemaMissingErr()
		}
		return nil
	}
	users := newUsers(t, conn, WithSchemaManager(mgr))
	ctx := context.Background()

	require.NoError(t, users.Insert(row("name", "Ana", "email", "a@x.com")))
	require.NoError(t, users.CommitInsert(ctx))

	assert.Equal(t, 1, mgr.creates)
	assert.Equal(t, 1, mgr.triggers)
	assert.Len(t, conn.callsOf(core.StatementInsert), 2)
	inserts, _, _ := users.Pending()
	assert.Zero(t, inserts)
}

func TestCommitInsert_SchemaMissingTwiceIsFatal(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(call) error { return schemaMissingErr() }
	mgr := &fakeSchema{}
	users := newUsers(t, conn, WithSchemaManager(mgr))

	require.NoError(t, users.Insert(row("name", "Ana")))
	err := users.CommitInsert(context.Background())

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.ErrorIs(t, err, ErrSchemaMissing)
	assert.Equal(t, "insert", we.Op)
	assert.Equal(t, 1, mgr.creates)
	assert.Len(t, conn.callsOf(core.StatementInsert), 2)

	inserts, _, _ := users.Pending()
	assert.Equal(t, 1, inserts, "failed commit keeps the queue")
}

func TestCommitInsert_SchemaMissingWithoutManager(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(call) error { return schemaMissingErr() }
	users := newUsers(t, conn)

	require.NoError(t, users.Insert(row("name", "Ana")))
	err := users.CommitInsert(context.Background())
	assert.ErrorIs(t, err, ErrSchemaMissing)
	assert.Len(t, conn.calls, 1)
}

func TestCommitInsert_CreateFailure(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(call) error { return schemaMissingErr() }
	mgr := &fakeSchema{createErr: errors.New("permission denied for schema public")}
	users := newUsers(t, conn, WithSchemaManager(mgr))

	require.NoError(t, users.Insert(row("name", "Ana")))
	err := users.CommitInsert(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table")
	assert.Equal(t, 0, mgr.triggers)
	assert.Len(t, conn.calls, 1)
}

func TestCommitInsert_OtherFailure(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(call) error {
		return &adapter.ExecError{Op: "execute", Code: "2067", Message: "UNIQUE constraint failed: users.id"}
	}
	mgr := &fakeSchema{}
	logger, logs := testutil.NewCaptureLogger()
	users := newUsers(t, conn, WithSchemaManager(mgr), WithLogger(logger))

	require.NoError(t, users.Insert(row("name", "Ana")))
	err := users.CommitInsert(context.Background())

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "2067", we.Code)
	assert.Equal(t, "UNIQUE constraint failed: users.id", we.Message)
	assert.Equal(t, core.ErrorClassOther, we.Class)
	assert.NotErrorIs(t, err, ErrSchemaMissing)
	assert.Zero(t, mgr.creates)

	errs := logs.AtLevel(slog.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "insert failed", errs[0].Message)
	assert.Equal(t, "2067", errs[0].Attrs["code"])
}

func TestCommitUpdate_BindsWhitelistAndKey(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)

	users.LoadData([]core.Row{row("id", "7", "name", "Ana", "email", "old@x.com")})
	require.NoError(t, users.Set("name", "Bea"))
	require.NoError(t, users.Set("email", "new@x.com"))
	require.NoError(t, users.Update())
	require.NoError(t, users.CommitUpdate(context.Background()))

	require.Len(t, conn.calls, 1)
	assert.Equal(t, "UPDATE users SET name = ? WHERE id = ?", conn.calls[0].sql)
	assert.Equal(t, map[string]any{"id": "7", "name": "Bea"}, conn.calls[0].params)

	_, updates, _ := users.Pending()
	assert.Zero(t, updates)
}

func TestCommitUpdate_MissingWhitelistColumn(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn).SetColumns()
	users.LoadData([]core.Row{row("id", "7", "email", "x")})
	require.NoError(t, users.Update())

	var we *WriteError
	require.ErrorAs(t, users.CommitUpdate(context.Background()), &we)
	assert.Contains(t, we.Message, `"name"`)
	assert.Empty(t, conn.calls)
}

func TestCommitUpdate_TransactionRollsBack(t *testing.T) {
	base := newFakeConn()
	n := 0
	base.execFn = func(call) error {
		n++
		if n == 2 {
			return errors.New("disk I/O error")
		}
		return nil
	}
	conn := &fakeTxConn{fakeConn: base}
	users := newUsers(t, conn)
	users.LoadData([]core.Row{row("id", "1", "name", "a", "email", "a"), row("id", "2", "name", "b", "email", "b")})
	require.NoError(t, users.Update())
	users.Next()
	require.NoError(t, users.Update())

	require.Error(t, users.CommitUpdate(context.Background()))
	assert.Equal(t, 1, conn.begun)
	assert.Equal(t, 1, conn.rolledBack)
	assert.Zero(t, conn.committed)
	_, updates, _ := users.Pending()
	assert.Equal(t, 2, updates)

	require.NoError(t, users.CommitUpdate(context.Background()))
	assert.Equal(t, 1, conn.committed)
}

func TestCommitUpdate_WithoutTransactionsStopsAtFailure(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(c call) error {
		if c.params["id"] == "2" {
			return errors.New("disk I/O error")
		}
		return nil
	}
	users := newUsers(t, conn)
	users.LoadData([]core.Row{
		row("id", "1", "name", "a", "email", "a"),
		row("id", "2", "name", "b", "email", "b"),
		row("id", "3", "name", "c", "email", "c"),
	})
	for range 3 {
		require.NoError(t, users.Update())
		users.Next()
	}

	require.Error(t, users.CommitUpdate(context.Background()))
	assert.Len(t, conn.calls, 2, "processing stops at the failing row")
	_, updates, _ := users.Pending()
	assert.Equal(t, 3, updates)
}

func TestCommitDelete(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)
	assert.ErrorIs(t, users.Delete(), ErrNoCurrentRow)

	users.LoadData([]core.Row{row("id", "1", "name", "a", "email", "a"), row("id", "2", "name", "b", "email", "b")})
	require.NoError(t, users.Delete())
	users.Next()
	require.NoError(t, users.Delete())
	require.NoError(t, users.CommitDelete(context.Background()))

	require.Len(t, conn.calls, 2)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", conn.calls[0].sql)
	assert.Equal(t, map[string]any{"id": "1"}, conn.calls[0].params)
	assert.Equal(t, map[string]any{"id": "2"}, conn.calls[1].params)
	_, _, deletes := users.Pending()
	assert.Zero(t, deletes)
}

func TestCommit_Ordering(t *testing.T) {
	conn := newFakeConn()
	users := newUsers(t, conn)
	users.LoadData([]core.Row{row("id", "1", "name", "a", "email", "a")})

	require.NoError(t, users.Delete())
	require.NoError(t, users.Update())
	require.NoError(t, users.Insert(row("name", "b")))
	require.NoError(t, users.Commit(context.Background()))

	assert.Equal(t, []core.StatementKind{core.StatementInsert, core.StatementUpdate, core.StatementDelete}, conn.kinds())
}

func TestCommit_StopsAtFirstFailure(t *testing.T) {
	conn := newFakeConn()
	conn.execFn = func(c call) error {
		if c.kind == core.StatementInsert {
			return errors.New("boom")
		}
		return nil
	}
	users := newUsers(t, conn)
	users.LoadData([]core.Row{row("id", "1", "name", "a", "email", "a")})
	require.NoError(t, users.Update())
	require.NoError(t, users.Insert(row("name", "b")))

	require.Error(t, users.Commit(context.Background()))
	assert.Equal(t, []core.StatementKind{core.StatementInsert}, conn.kinds())
	inserts, updates, _ := users.Pending()
	assert.Equal(t, 1, inserts)
	assert.Equal(t, 1, updates)
}

func TestDefaultKeyGenerator(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		key, err := DefaultKeyGenerator()
		require.NoError(t, err)
		assert.Len(t, key, KeyLength)
		_, err = hex.DecodeString(key)
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}
