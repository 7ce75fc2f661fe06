package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/config"
	"github.com/leapstack-labs/leaprecord/pkg/core"
)

// NewRecordsCommand creates the records command.
func NewRecordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List configured records",
		Long: `List the records declared in leaprecord.yaml with their table,
primary key, columns and write whitelists.

Output adapts to environment:
  - Terminal: Table output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List records
  leaprecord records

  # List records as JSON
  leaprecord records -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutAdapter(cmd)
			return cmdCtx.Renderer.Rows(recordColumns, recordRows(cmdCtx.Cfg))
		},
	}
}

var recordColumns = []string{"name", "table", "alias", "primary_key", "columns", "insert", "update", "joins"}

func recordRows(cfg *config.Config) []core.Row {
	rows := make([]core.Row, 0, len(cfg.Records))
	for _, name := range cfg.RecordNames() {
		def := cfg.Records[name]
		joins := make([]string, 0, len(def.Relationships))
		for _, rel := range def.Relationships {
			target := rel.Record
			if target == "" {
				target = rel.Table
			}
			joins = append(joins, rel.Column+"->"+target)
		}
		rows = append(rows, core.NewRow(
			"name", name,
			"table", def.Table,
			"alias", def.Alias,
			"primary_key", def.PrimaryKey,
			"columns", strings.Join(def.ColumnNames(), ", "),
			"insert", strings.Join(def.Insert, ", "),
			"update", strings.Join(def.Update, ", "),
			"joins", strings.Join(joins, ", "),
		))
	}
	return rows
}
