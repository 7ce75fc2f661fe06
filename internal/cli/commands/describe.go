package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/pkg/core"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <record>",
		Short: "Show the physical columns of a record's table",
		Long: `Show the columns of the table behind a record as reported by the
database, next to the row count.`,
		Example: `  # Describe the users table
  leaprecord describe users`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0])
		},
	}
}

func runDescribe(cmd *cobra.Command, name string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	def, err := cmdCtx.Cfg.RecordDefinition(name)
	if err != nil {
		return err
	}
	meta, err := cmdCtx.Adapter.TableMetadata(cmd.Context(), def.Table)
	if err != nil {
		return fmt.Errorf("failed to describe %s: %w", def.Table, err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(meta)
	case output.ModeYAML:
		return r.YAML(meta)
	}

	r.Header(2, fmt.Sprintf("%s (%d rows)", meta.Name, meta.RowCount))
	return r.Rows(describeColumns, describeRows(meta))
}

var describeColumns = []string{"position", "name", "type", "nullable"}

func describeRows(meta *core.TableMetadata) []core.Row {
	rows := make([]core.Row, 0, len(meta.Columns))
	for _, col := range meta.Columns {
		rows = append(rows, core.NewRow(
			"position", strconv.Itoa(col.Position),
			"name", col.Name,
			"type", col.Type,
			"nullable", strconv.FormatBool(col.Nullable),
		))
	}
	return rows
}
