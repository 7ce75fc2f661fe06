package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// nullLiteral is the --set value that writes NULL.
const nullLiteral = "NULL"

// WriteOptions holds options for the insert and update commands.
type WriteOptions struct {
	Set []string
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	opts := &WriteOptions{}

	cmd := &cobra.Command{
		Use:   "insert <record>",
		Short: "Insert a row into a record",
		Long: `Insert one row into a record.

Only columns in the record's insert whitelist may be set. A primary key
is generated when none is given. The table and its triggers are created
when the table does not exist yet.

Use NULL as a value to write NULL.`,
		Example: `  # Insert a user
  leaprecord insert users --set name=Ana --set email=ana@example.com`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Set, "set", "s", nil, "Column assignment column=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runInsert(cmd *cobra.Command, name string, opts *WriteOptions) error {
	assignments, err := parseAssignments(opts.Set)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}

	rec.StartInsertingMode()
	for _, a := range assignments {
		if err := rec.Set(a[0], parseValue(a[1])); err != nil {
			return err
		}
	}
	rec.StopInsertingMode()

	if err := rec.Insert(); err != nil {
		return err
	}
	if err := rec.CommitInsert(cmd.Context()); err != nil {
		return err
	}

	keys := rec.LastInsertKeys()
	cmdCtx.Renderer.Success(fmt.Sprintf("inserted %s into %s (%s=%s)",
		plural(len(keys), "row"), rec.Table(), rec.PrimaryKey(), strings.Join(keys, ", ")))
	return nil
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	opts := &WriteOptions{}

	cmd := &cobra.Command{
		Use:   "update <record> <id>",
		Short: "Update a row of a record by primary key",
		Long: `Update one row of a record.

Only columns in the record's update whitelist may be set.
Use NULL as a value to write NULL.`,
		Example: `  # Rename user k1
  leaprecord update users k1 --set name=Ana`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Set, "set", "s", nil, "Column assignment column=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runUpdate(cmd *cobra.Command, name, id string, opts *WriteOptions) error {
	assignments, err := parseAssignments(opts.Set)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}
	allowed := rec.AllowUpdate()
	for _, a := range assignments {
		if !slices.Contains(allowed, a[0]) {
			return &record.UnauthorizedColumnError{Column: a[0], Mode: record.ModeUpdate}
		}
	}

	if err := findOne(cmd, rec, name, id); err != nil {
		return err
	}
	for _, a := range assignments {
		if err := rec.Set(a[0], parseValue(a[1])); err != nil {
			return err
		}
	}
	if err := rec.Update(); err != nil {
		return err
	}
	if err := rec.CommitUpdate(cmd.Context()); err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("updated %s %s", name, id))
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record> <id>",
		Short: "Delete a row of a record by primary key",
		Example: `  # Delete user k1
  leaprecord delete users k1`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], args[1])
		},
	}
}

func runDelete(cmd *cobra.Command, name, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}
	if err := findOne(cmd, rec, name, id); err != nil {
		return err
	}
	if err := rec.Delete(); err != nil {
		return err
	}
	if err := rec.CommitDelete(cmd.Context()); err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("deleted %s %s", name, id))
	return nil
}

// findOne loads the row with primary key id into rec.
func findOne(cmd *cobra.Command, rec *record.Record, name, id string) error {
	if err := rec.FindByID(cmd.Context(), id).Err(); err != nil {
		return fmt.Errorf("failed to find %s %s: %w", name, id, err)
	}
	if rec.IsEmpty() {
		return fmt.Errorf("%s %s not found", name, id)
	}
	return nil
}

// parseValue converts a command line value into a bind parameter.
func parseValue(s string) any {
	if s == nullLiteral {
		return nil
	}
	return s
}
