package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/sqlite"
)

const projectYAML = `target:
  type: SQLite
  database: ":memory:"
records:
  users:
    table: users
    alias: u
    columns:
      - name: id
      - name: email
        type: TEXT
      - name: name
        nullable: true
    insert: [email, name]
    limit: 20
    triggers:
      - name: users_lower_email
        sql: CREATE TRIGGER IF NOT EXISTS users_lower_email AFTER INSERT ON users BEGIN SELECT 1; END
  posts:
    table: posts
    alias: p
    fetch: num
    allow_delete: false
    columns:
      - name: id
      - name: user_id
      - name: title
    relationships:
      - column: user_id
        kind: inner
        record: users
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return dir
}

func TestLoadFromDir(t *testing.T) {
	dir := writeConfig(t, projectYAML)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, []string{"posts", "users"}, cfg.RecordNames())

	users := cfg.Records["users"]
	assert.Equal(t, "id", users.PrimaryKey, "primary key defaults to id")
	assert.Equal(t, []string{"id", "email", "name"}, users.ColumnNames())
	assert.Equal(t, []string{"email", "name"}, users.Insert)
	assert.Equal(t, []string{"email", "name"}, users.Update, "update whitelist defaults to non-key columns")
	assert.True(t, users.Columns[2].Nullable)
	assert.Equal(t, 20, users.Limit)
	require.Len(t, users.Triggers, 1)

	posts := cfg.Records["posts"]
	assert.Equal(t, core.FetchNum, posts.Fetch)
	assert.False(t, Enabled(posts.AllowDelete))
	assert.True(t, Enabled(posts.AllowInsert))
	require.Len(t, posts.Relationships, 1)
	assert.Equal(t, query.JoinInner, posts.Relationships[0].Kind)
	assert.Equal(t, "users", posts.Relationships[0].Record)
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromDir_YMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileNameAlt), []byte("target:\n  type: postgres\n"), 0600))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Target.Schema)
	assert.Equal(t, DefaultPostgresPort, cfg.Target.Port)
}

func TestUnmarshal_InvalidEnum(t *testing.T) {
	tests := []struct {
		name  string
		value map[string]any
	}{
		{name: "fetch shape", value: map[string]any{"records.a.fetch": "tuple"}},
		{name: "join kind", value: map[string]any{"records.a.relationships": []any{map[string]any{"column": "x", "kind": "cross"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := koanf.New(".")
			require.NoError(t, k.Load(confmap.Provider(tt.value, "."), nil))

			var cfg ProjectConfig
			err := Unmarshal(k, "", &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown")
		})
	}
}

func TestProjectConfig_Validate(t *testing.T) {
	base := func() *ProjectConfig {
		return &ProjectConfig{
			Target: &TargetConfig{Type: "sqlite"},
			Records: map[string]*RecordConfig{
				"users": {
					Table:      "users",
					PrimaryKey: "id",
					Columns:    []ColumnConfig{{Name: "id"}, {Name: "email"}},
				},
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *ProjectConfig)
		errSubstr string
	}{
		{name: "valid", mutate: func(*ProjectConfig) {}},
		{
			name:      "missing target",
			mutate:    func(c *ProjectConfig) { c.Target = nil },
			errSubstr: "target is required",
		},
		{
			name:      "unknown target type",
			mutate:    func(c *ProjectConfig) { c.Target.Type = "oracle" },
			errSubstr: "unknown adapter type",
		},
		{
			name:      "no table",
			mutate:    func(c *ProjectConfig) { c.Records["users"].Table = "" },
			errSubstr: "table is required",
		},
		{
			name:      "primary key not declared",
			mutate:    func(c *ProjectConfig) { c.Records["users"].PrimaryKey = "uuid" },
			errSubstr: `primary key "uuid" is not a declared column`,
		},
		{
			name:      "duplicate column",
			mutate:    func(c *ProjectConfig) { c.Records["users"].Columns = append(c.Records["users"].Columns, ColumnConfig{Name: "email"}) },
			errSubstr: `duplicate column "email"`,
		},
		{
			name:      "insert whitelist",
			mutate:    func(c *ProjectConfig) { c.Records["users"].Insert = []string{"email", "age"} },
			errSubstr: `insert whitelist names undeclared column "age"`,
		},
		{
			name:      "alias of unknown column",
			mutate:    func(c *ProjectConfig) { c.Records["users"].Aliases = map[string]string{"age": "years"} },
			errSubstr: `alias for undeclared column "age"`,
		},
		{
			name: "relationship to unknown record",
			mutate: func(c *ProjectConfig) {
				c.Records["users"].Relationships = []RelationshipConfig{{Column: "email", Record: "accounts"}}
			},
			errSubstr: `unknown record "accounts"`,
		},
		{
			name: "relationship without join",
			mutate: func(c *ProjectConfig) {
				c.Records["users"].Relationships = []RelationshipConfig{{Column: "email", Table: "accounts"}}
			},
			errSubstr: "needs either record or table and on",
		},
		{
			name:      "migrations without dir",
			mutate:    func(c *ProjectConfig) { c.Records["users"].Migrations = &MigrationsConfig{Tables: "tables"} },
			errSubstr: "migrations.dir is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"sqlite", "main"},
		{"duckdb", "main"},
		{"postgres", "public"},
		{"Postgres", "public"},
		{"unknown", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEAPRECORD_TEST_ONE", "value_one")
	t.Setenv("LEAPRECORD_TEST_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${LEAPRECORD_TEST_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${LEAPRECORD_TEST_ONE}/${LEAPRECORD_TEST_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${LEAPRECORD_UNSET}", expected: "${LEAPRECORD_UNSET}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "sqlite"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "sqlite"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{
			Type:     "postgres",
			Database: "app",
			Host:     "localhost",
			Options:  map[string]string{"sslmode": "disable", "connect_timeout": "5"},
		}
		override := &TargetConfig{
			Database: "app_test",
			Options:  map[string]string{"sslmode": "require"},
		}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "postgres", result.Type)
		assert.Equal(t, "app_test", result.Database)
		assert.Equal(t, "localhost", result.Host)
		assert.Equal(t, "require", result.Options["sslmode"])
		assert.Equal(t, "5", result.Options["connect_timeout"])
		assert.Equal(t, "disable", base.Options["sslmode"], "base must not be modified")
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := writeConfig(t, "target:\n  type: sqlite\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Empty(t, FindProjectRoot(t.TempDir()))
}
