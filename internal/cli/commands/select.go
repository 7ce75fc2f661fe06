package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SelectOptions holds options for the select command.
type SelectOptions struct {
	Limit int
	Page  int
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:   "select <record>",
		Short: "Select rows of a record",
		Long: `Select rows of a record, including its joined relationships.

The page size defaults to the record's configured limit. Pages start at 0.

Output adapts to environment:
  - Terminal: Table output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Select the first page of users
  leaprecord select users

  # Select the third page of 20 posts as JSON
  leaprecord select posts --limit 20 --page 2 -o json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Rows per page (0 uses the record limit)")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "Page number")

	return cmd
}

func runSelect(cmd *cobra.Command, name string, opts *SelectOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		rec.SetRowsLimit(opts.Limit)
	}
	rec.SetPage(opts.Page)

	if err := rec.Select(cmd.Context()).Err(); err != nil {
		return fmt.Errorf("failed to select %s: %w", name, err)
	}
	return cmdCtx.Renderer.Rows(rec.SelectedColumns(), rec.Rows())
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <record> <id>",
		Short: "Show one row of a record by primary key",
		Example: `  # Show user k1
  leaprecord get users k1

  # Show post 42 as YAML
  leaprecord get posts 42 -o yaml`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], args[1])
		},
	}
}

func runGet(cmd *cobra.Command, name, id string) error {
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
	return cmdCtx.Renderer.Fields(rec.SelectedColumns(), rec.CurrentData())
}
