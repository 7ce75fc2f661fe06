// Package config provides shared configuration types for leaprecord.
// This package is decoupled from CLI concerns: it describes the target
// database and the declarative record definitions, and knows how to decode
// and validate them.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // postgres, sqlite, duckdb

	// File-based databases (SQLite, DuckDB)
	Database string `koanf:"database"` // file path or database name
	Path     string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}

// AdapterConfig converts the target into the connection settings of an adapter.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Path,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// ColumnConfig declares one logical column of a record.
type ColumnConfig struct {
	Name string `koanf:"name"`
	// Ref is the physical reference ("alias.column"); defaults to the record alias and Name.
	Ref string `koanf:"ref"`
	// Type and Nullable are only used when the table is created from the definition.
	Type     string `koanf:"type"`
	Nullable bool   `koanf:"nullable"`
}

// RelationshipConfig declares a join attached to a local column.
// Either Record names another configured record, or Table, Alias and On
// describe the join explicitly.
type RelationshipConfig struct {
	Column string         `koanf:"column"`
	Kind   query.JoinKind `koanf:"kind"`
	Record string         `koanf:"record"`
	Table  string         `koanf:"table"`
	Alias  string         `koanf:"alias"`
	On     string         `koanf:"on"`
}

// TriggerConfig is a named trigger statement executed after the table is created.
type TriggerConfig struct {
	Name string `koanf:"name"`
	SQL  string `koanf:"sql"`
}

// MigrationsConfig points a record at goose migrations instead of generated DDL.
type MigrationsConfig struct {
	Dir      string `koanf:"dir"`
	Tables   string `koanf:"tables"`
	Triggers string `koanf:"triggers"`
}

// RecordConfig is the declarative definition of one record.
type RecordConfig struct {
	Table         string               `koanf:"table"`
	Alias         string               `koanf:"alias"`
	PrimaryKey    string               `koanf:"primary_key"`
	Columns       []ColumnConfig       `koanf:"columns"`
	Aliases       map[string]string    `koanf:"aliases"`
	Insert        []string             `koanf:"insert"`
	Update        []string             `koanf:"update"`
	AllowInsert   *bool                `koanf:"allow_insert"`
	AllowUpdate   *bool                `koanf:"allow_update"`
	AllowDelete   *bool                `koanf:"allow_delete"`
	Limit         int                  `koanf:"limit"`
	Fetch         core.FetchShape      `koanf:"fetch"`
	Relationships []RelationshipConfig `koanf:"relationships"`
	Triggers      []TriggerConfig      `koanf:"triggers"`
	Migrations    *MigrationsConfig    `koanf:"migrations"`
}

// ColumnNames returns the logical column names in declaration order.
func (r *RecordConfig) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a declared column.
func (r *RecordConfig) HasColumn(name string) bool {
	for _, c := range r.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ProjectConfig holds the configuration shared by every leaprecord tool.
type ProjectConfig struct {
	Target  *TargetConfig            `koanf:"target"`
	Records map[string]*RecordConfig `koanf:"records"`
}
