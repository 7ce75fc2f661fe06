package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Validate checks the target and every record definition.
func (c *ProjectConfig) Validate() error {
	if c.Target == nil {
		return fmt.Errorf("target is required")
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}

	var errs []error
	for _, name := range c.RecordNames() {
		if err := c.validateRecord(name); err != nil {
			errs = append(errs, fmt.Errorf("record %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// RecordNames returns the configured record names in sorted order.
func (c *ProjectConfig) RecordNames() []string {
	names := make([]string, 0, len(c.Records))
	for name := range c.Records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *ProjectConfig) validateRecord(name string) error {
	rec := c.Records[name]
	if rec == nil {
		return fmt.Errorf("definition is empty")
	}
	if rec.Table == "" {
		return fmt.Errorf("table is required")
	}
	if len(rec.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}

	seen := make(map[string]bool, len(rec.Columns))
	for _, col := range rec.Columns {
		if col.Name == "" {
			return fmt.Errorf("column name is required")
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[col.Name] = true
	}

	if !rec.HasColumn(rec.PrimaryKey) {
		return fmt.Errorf("primary key %q is not a declared column", rec.PrimaryKey)
	}
	if err := checkColumns("insert", rec.Insert, seen); err != nil {
		return err
	}
	if err := checkColumns("update", rec.Update, seen); err != nil {
		return err
	}
	for col := range rec.Aliases {
		if !seen[col] {
			return fmt.Errorf("alias for undeclared column %q", col)
		}
	}

	for _, rel := range rec.Relationships {
		if err := c.validateRelationship(name, rel, seen); err != nil {
			return err
		}
	}

	if rec.Migrations != nil && rec.Migrations.Dir == "" {
		return fmt.Errorf("migrations.dir is required")
	}
	for _, tr := range rec.Triggers {
		if tr.SQL == "" {
			return fmt.Errorf("trigger %q has no sql", tr.Name)
		}
	}
	return nil
}

func (c *ProjectConfig) validateRelationship(name string, rel RelationshipConfig, cols map[string]bool) error {
	if !cols[rel.Column] {
		return fmt.Errorf("relationship on undeclared column %q", rel.Column)
	}
	if rel.Record != "" {
		if rel.Record == name {
			return fmt.Errorf("relationship on %q references its own record", rel.Column)
		}
		if _, ok := c.Records[rel.Record]; !ok {
			return fmt.Errorf("relationship on %q references unknown record %q", rel.Column, rel.Record)
		}
		return nil
	}
	if rel.Table == "" || rel.On == "" {
		return fmt.Errorf("relationship on %q needs either record or table and on", rel.Column)
	}
	return nil
}

func checkColumns(list string, names []string, cols map[string]bool) error {
	if i := slices.IndexFunc(names, func(n string) bool { return !cols[n] }); i >= 0 {
		return fmt.Errorf("%s whitelist names undeclared column %q", list, names[i])
	}
	return nil
}
