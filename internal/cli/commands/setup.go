package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/internal/cli/config"
	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  adapter.Adapter
	Catalog  *catalog.Catalog
	Renderer *output.Renderer
}

// NewCommandContext connects to the configured target and builds the record catalog.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutAdapter(cmd)
	cfg := cmdCtx.Cfg

	adp, err := adapter.NewAdapter(cfg.Target.AdapterConfig(), cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := adp.Connect(cmd.Context(), cfg.Target.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Target.Type, err)
	}

	cmdCtx.Adapter = adp
	cmdCtx.Catalog = catalog.New(cfg.Project(), adp,
		catalog.WithLogger(cmdCtx.Logger),
		catalog.WithBaseDir(cfg.ProjectRoot),
	)

	cleanup := func() {
		_ = adp.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutAdapter creates a CommandContext without a connection.
// Useful for commands that only read configuration.
func NewCommandContextWithoutAdapter(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// Record builds the named record.
func (c *CommandContext) Record(name string) (*record.Record, error) {
	if _, err := c.Cfg.RecordDefinition(name); err != nil {
		return nil, err
	}
	return c.Catalog.Record(name)
}

// getConfig returns the current configuration, or an empty in-memory
// target when no configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Environment:  config.DefaultEnv,
		OutputFormat: config.DefaultOutput,
		Target:       &config.TargetConfig{Type: config.DefaultTargetType, Database: ":memory:"},
		ProjectRoot:  ".",
	}
}

// parseAssignments parses repeated column=value arguments in order.
func parseAssignments(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		col, val, ok := strings.Cut(pair, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected column=value", pair)
		}
		out = append(out, [2]string{col, val})
	}
	return out, nil
}

// completeRecords completes the first positional argument with record names.
func completeRecords(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return getConfig().RecordNames(), cobra.ShellCompDirectiveNoFileComp
}

// plural formats n with noun, adding an s unless n is 1.
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
