package duckdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	goduckdb "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ConnectAppliesSettings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{
		Params: map[string]any{"settings": map[string]any{"threads": 2}},
	}))
	defer func() { _ = adp.Close() }()

	var threads int
	require.NoError(t, adp.DB.QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threads))
	assert.Equal(t, 2, threads)
}

func TestAdapter_InvalidParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{Params: map[string]any{"bogus": 1}})
	require.Error(t, err)
	assert.False(t, adp.IsConnected())
}

func TestAdapter_MissingTableIsSchemaMissing(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{}))
	defer func() { _ = adp.Close() }()

	ins := query.NewInsert().Into("users").Columns("id")
	ins.AddRow(map[string]string{"id": "id_0"})

	p, err := adp.Prepare(ctx, ins)
	if err == nil {
		err = p.Execute(ctx, map[string]any{"id_0": "1"})
	}

	var execErr *adapter.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.SchemaMissing(), "got %v", err)
}

func TestAdapter_TableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE users (id VARCHAR PRIMARY KEY, name VARCHAR)"))
	require.NoError(t, adp.Exec(ctx, "INSERT INTO users VALUES ('1', 'Ana')"))

	md, err := adp.TableMetadata(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "main", md.Schema)
	assert.Len(t, md.Columns, 2)
	assert.Equal(t, int64(1), md.RowCount)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantClass core.ErrorClass
	}{
		{
			name:      "driver catalog error for missing table",
			err:       &goduckdb.Error{Type: goduckdb.ErrorTypeCatalog, Msg: "Catalog Error: Table with name users does not exist!"},
			wantCode:  "Catalog",
			wantClass: core.ErrorClassSchemaMissing,
		},
		{
			name:      "wrapped driver error",
			err:       fmt.Errorf("exec failed: %w", &goduckdb.Error{Type: goduckdb.ErrorTypeCatalog, Msg: "Catalog Error: Table with name users does not exist!"}),
			wantCode:  "Catalog",
			wantClass: core.ErrorClassSchemaMissing,
		},
		{
			name:      "driver catalog error for other object",
			err:       &goduckdb.Error{Type: goduckdb.ErrorTypeCatalog, Msg: "Catalog Error: Scalar Function with name nope does not exist!"},
			wantCode:  "Catalog",
			wantClass: core.ErrorClassOther,
		},
		{
			name:      "driver constraint error",
			err:       &goduckdb.Error{Type: goduckdb.ErrorTypeConstraint, Msg: `Constraint Error: Duplicate key "id: 1"`},
			wantCode:  "Constraint",
			wantClass: core.ErrorClassOther,
		},
		{
			name:      "message fallback",
			err:       errors.New("Catalog Error: Table with name users does not exist!"),
			wantCode:  "Catalog",
			wantClass: core.ErrorClassSchemaMissing,
		},
		{
			name:      "plain error",
			err:       errors.New("connection reset"),
			wantClass: core.ErrorClassOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, class := ClassifyError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	err := adp.Exec(ctx, "SELECT 1")
	require.ErrorIs(t, err, adapter.ErrNotConnected)

	_, err = adp.TableMetadata(ctx, "users")
	require.ErrorIs(t, err, adapter.ErrNotConnected)
}
