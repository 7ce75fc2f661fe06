package config

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/dialect"
)

// Default configuration values.
const (
	DefaultPrimaryKey   = "id"
	DefaultPostgresPort = 5432
)

// DefaultSchemaForType returns the default schema for a database type.
// It looks up the dialect in the registry; if not found, returns "main" as fallback.
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(strings.ToLower(dbType)); ok && d.DefaultSchema != "" {
		return d.DefaultSchema
	}
	return "main"
}

// ApplyDefaults applies default values to a ProjectConfig.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	c.Target.ApplyDefaults()
	for _, rec := range c.Records {
		rec.ApplyDefaults()
	}
}

// ApplyDefaults applies default values to a TargetConfig based on the target type.
func (t *TargetConfig) ApplyDefaults() {
	if t == nil {
		return
	}

	t.Type = strings.ToLower(t.Type)
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" && t.Port == 0 {
		t.Port = DefaultPostgresPort
	}
}

// ApplyDefaults fills the primary key and the write whitelists.
// Omitted whitelists allow every declared column except the primary key.
func (r *RecordConfig) ApplyDefaults() {
	if r == nil {
		return
	}
	if r.PrimaryKey == "" {
		r.PrimaryKey = DefaultPrimaryKey
	}
	if r.Insert == nil {
		r.Insert = r.writable()
	}
	if r.Update == nil {
		r.Update = r.writable()
	}
}

func (r *RecordConfig) writable() []string {
	return slices.DeleteFunc(r.ColumnNames(), func(name string) bool {
		return name == r.PrimaryKey
	})
}

// Enabled reports the value of an optional capability flag; unset means enabled.
func Enabled(flag *bool) bool {
	return flag == nil || *flag
}
