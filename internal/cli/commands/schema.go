package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxSchemaWorkers bounds concurrent table creation on server databases.
const maxSchemaWorkers = 4

// SchemaOptions holds options for the schema create command.
type SchemaOptions struct {
	All bool
}

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage record tables",
	}
	cmd.AddCommand(newSchemaCreateCommand())
	return cmd
}

func newSchemaCreateCommand() *cobra.Command {
	opts := &SchemaOptions{}

	cmd := &cobra.Command{
		Use:   "create [record]",
		Short: "Create the table and triggers of a record",
		Long: `Create the table of a record and then its triggers.

Records with a migrations directory are migrated with goose; other
records get a CREATE TABLE IF NOT EXISTS built from their columns.
With --all every configured record is created.`,
		Example: `  # Create the users table
  leaprecord schema create users

  # Create every table
  leaprecord schema create --all`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaCreate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Create every configured record")

	return cmd
}

func runSchemaCreate(cmd *cobra.Command, args []string, opts *SchemaOptions) error {
	var names []string
	switch {
	case opts.All && len(args) > 0:
		return errors.New("pass a record name or --all, not both")
	case opts.All:
		names = getConfig().RecordNames()
	case len(args) == 1:
		names = args
	default:
		return errors.New("record name required (or use --all)")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, name := range names {
		if _, err := cmdCtx.Cfg.RecordDefinition(name); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(schemaWorkers(cmdCtx.Cfg.Target.Type))
	for _, name := range names {
		g.Go(func() error {
			m, err := cmdCtx.Catalog.SchemaManager(name)
			if err != nil {
				return err
			}
			if err := m.Create(ctx); err != nil {
				return fmt.Errorf("failed to create %s: %w", name, err)
			}
			if err := m.CreateTriggers(ctx); err != nil {
				return fmt.Errorf("failed to create triggers for %s: %w", name, err)
			}
			cmdCtx.Logger.Debug("schema created", "record", name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("created %s", plural(len(names), "record schema")))
	return nil
}

// schemaWorkers returns the worker count for a target type. Embedded
// databases take a single writer.
func schemaWorkers(targetType string) int {
	switch targetType {
	case "sqlite", "duckdb":
		return 1
	default:
		return maxSchemaWorkers
	}
}
