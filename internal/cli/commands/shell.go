package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

const historyFileName = ".leaprecord_history"

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <record>",
		Short: "Open an interactive shell over a record",
		Long: `Open a REPL bound to one record. Rows are selected into a buffer,
walked with a cursor and edited in place; writes are queued and sent
with commit.

Type help inside the shell for the command list.`,
		Example: `  # Edit users interactively
  leaprecord shell users`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0])
		},
	}
}

func runShell(cmd *cobra.Command, name string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}
	s := newShellSession(name, rec, cmdCtx.Renderer)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     filepath.Join(cmdCtx.Cfg.ProjectRoot, historyFileName),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leaprecord shell (record: %s, table: %s)\n", name, rec.Table())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		quit, err := s.Exec(cmd.Context(), line)
		if err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
		if quit {
			break
		}
		rl.SetPrompt(s.prompt())
	}

	if i, u, d := rec.Pending(); i+u+d > 0 {
		cmdCtx.Renderer.Warning(fmt.Sprintf("discarded %d insert(s), %d update(s), %d delete(s) not committed", i, u, d))
	}
	return nil
}

// shellSession executes shell lines against one record.
type shellSession struct {
	name string
	rec  *record.Record
	r    *output.Renderer
}

func newShellSession(name string, rec *record.Record, r *output.Renderer) *shellSession {
	return &shellSession{name: name, rec: rec, r: r}
}

func (s *shellSession) prompt() string {
	if s.rec.InsertingMode() {
		return s.name + "[insert]> "
	}
	return s.name + "> "
}

// Exec runs one shell line and reports whether the shell should exit.
func (s *shellSession) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "quit", "exit":
		return true, nil

	case "help":
		printShellHelp(s.r.Writer())
		return false, nil

	case "select":
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return false, errors.New("usage: select [limit]")
			}
			s.rec.SetRowsLimit(n).SetPage(0)
		}
		if err := s.rec.Select(ctx).Err(); err != nil {
			return false, err
		}
		return false, s.r.Rows(s.rec.SelectedColumns(), s.rec.Rows())

	case "find":
		if len(args) != 1 {
			return false, errors.New("usage: find <id>")
		}
		if err := s.rec.FindByID(ctx, args[0]).Err(); err != nil {
			return false, err
		}
		if s.rec.IsEmpty() {
			return false, fmt.Errorf("%s %s not found", s.name, args[0])
		}
		return false, s.show()

	case "rows":
		return false, s.r.Rows(s.rec.SelectedColumns(), s.rec.Rows())

	case "next":
		if _, ok := s.rec.Next(); !ok && !s.rec.IsEmpty() {
			s.r.Muted("wrapped to first row")
		}
		return false, s.show()

	case "prev":
		if _, ok := s.rec.Prev(); !ok && !s.rec.IsEmpty() {
			s.r.Muted("at first row")
		}
		return false, s.show()

	case "page":
		if _, ok := s.rec.NextPage(ctx); !ok {
			if err := s.rec.Err(); err != nil {
				return false, err
			}
			s.r.Muted("no next page, back to page 0")
			return false, nil
		}
		return false, s.r.Rows(s.rec.SelectedColumns(), s.rec.Rows())

	case "show":
		return false, s.show()

	case "get":
		if len(args) != 1 {
			return false, errors.New("usage: get <column>")
		}
		v, err := s.rec.Get(args[0])
		if err != nil {
			return false, err
		}
		s.r.Println(formatShellValue(v))
		return false, nil

	case "set":
		if len(args) < 2 {
			return false, errors.New("usage: set <column> <value>")
		}
		return false, s.rec.Set(args[0], parseValue(restAfter(line, 2)))

	case "insert-mode":
		if len(args) != 1 {
			return false, errors.New("usage: insert-mode on|off")
		}
		switch strings.ToLower(args[0]) {
		case "on":
			s.rec.StartInsertingMode()
		case "off":
			s.rec.StopInsertingMode()
		default:
			return false, errors.New("usage: insert-mode on|off")
		}
		return false, nil

	case "insert":
		if s.rec.InsertingMode() {
			return false, s.rec.Insert()
		}
		return false, s.rec.InsertFromCurrentData()

	case "update":
		return false, s.rec.Update()

	case "delete":
		return false, s.rec.Delete()

	case "pending":
		i, u, d := s.rec.Pending()
		s.r.Printf("%d insert(s), %d update(s), %d delete(s)\n", i, u, d)
		return false, nil

	case "commit":
		i, u, d := s.rec.Pending()
		if err := s.rec.Commit(ctx); err != nil {
			return false, err
		}
		s.r.Success(fmt.Sprintf("committed %d insert(s), %d update(s), %d delete(s)", i, u, d))
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type help for commands)", command)
	}
}

// show prints the staging row in insert mode, otherwise the current row.
func (s *shellSession) show() error {
	if s.rec.InsertingMode() {
		return s.r.Fields(nil, s.rec.Staged())
	}
	if s.rec.IsEmpty() {
		return record.ErrNoCurrentRow
	}
	return s.r.Fields(s.rec.SelectedColumns(), s.rec.CurrentData())
}

func (s *shellSession) completer() *readline.PrefixCompleter {
	var columns []readline.PrefixCompleterInterface
	for _, col := range s.rec.Columns() {
		columns = append(columns, readline.PcItem(col.Name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("select"),
		readline.PcItem("find"),
		readline.PcItem("rows"),
		readline.PcItem("next"),
		readline.PcItem("prev"),
		readline.PcItem("page"),
		readline.PcItem("show"),
		readline.PcItem("get", columns...),
		readline.PcItem("set", columns...),
		readline.PcItem("insert-mode", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("insert"),
		readline.PcItem("update"),
		readline.PcItem("delete"),
		readline.PcItem("pending"),
		readline.PcItem("commit"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// restAfter returns line without its first n fields. Inner spacing of the
// remainder is kept.
func restAfter(line string, n int) string {
	rest := strings.TrimSpace(line)
	for range n {
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		rest = strings.TrimSpace(rest[i:])
	}
	return rest
}

func formatShellValue(v any) string {
	if v == nil {
		return nullLiteral
	}
	return fmt.Sprint(v)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  select [limit]        Select the current page (optionally set the page size)
  find <id>             Load the row with this primary key
  rows                  Show the loaded rows
  next / prev           Move the cursor
  page                  Select the next page
  show                  Show the current row (the staged row in insert mode)
  get <column>          Read a field
  set <column> <value>  Write a field (NULL writes NULL)
  insert-mode on|off    Route get and set to the staged insert row
  insert                Queue the staged row (or a copy of the current row)
  update                Queue the current row for update
  delete                Queue the current row for delete
  pending               Show queued writes
  commit                Send queued inserts, updates and deletes
  help                  Show this help message
  quit / exit           Exit the shell
`
	_, _ = fmt.Fprintln(w, help)
}
