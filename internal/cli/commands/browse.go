package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

const (
	maxColumnWidth = 32
	minTableHeight = 5
	// chromeHeight is the number of lines drawn around the table.
	chromeHeight = 6
)

// BrowseOptions holds options for the browse command.
type BrowseOptions struct {
	Limit int
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse <record>",
		Short: "Browse a record interactively",
		Long: `Open an interactive table over a record.

Keys:
  j / down   next row (wraps to the first row)
  k / up     previous row
  n          next page (returns to the first page after the last)
  r          reload the current page
  ?          toggle help
  q          quit`,
		Example: `  # Browse users 20 rows at a time
  leaprecord browse users --limit 20`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecords,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Rows per page (0 uses the record limit)")

	return cmd
}

func runBrowse(cmd *cobra.Command, name string, opts *BrowseOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Renderer.IsTTY() {
		return fmt.Errorf("browse needs a terminal, use select %s instead", name)
	}

	rec, err := cmdCtx.Record(name)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		rec.SetRowsLimit(opts.Limit)
	}

	m := newBrowseModel(cmd.Context(), name, rec)
	if m.err != nil {
		return m.err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}

type browseKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	NextPage key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.NextPage, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.NextPage}, {k.Reload, k.Help, k.Quit}}
}

var browseKeys = browseKeyMap{
	Next:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next row")),
	Prev:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev row")),
	NextPage: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	browseTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	browseStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	browseErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// browseModel drives a Record cursor from key presses. Record calls run
// inside Update so the Record is only touched from the program loop.
type browseModel struct {
	ctx    context.Context
	name   string
	rec    *record.Record
	table  table.Model
	keys   browseKeyMap
	help   help.Model
	status string
	err    error
}

func newBrowseModel(ctx context.Context, name string, rec *record.Record) browseModel {
	t := table.New(table.WithFocused(true), table.WithHeight(10))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4"))
	t.SetStyles(s)

	m := browseModel{
		ctx:   ctx,
		name:  name,
		rec:   rec,
		table: t,
		keys:  browseKeys,
		help:  help.New(),
	}
	m.err = rec.Select(ctx).Err()
	m.refresh()
	return m
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-chromeHeight, minTableHeight))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.status = ""
			if _, ok := m.rec.Next(); !ok {
				m.status = "wrapped to first row"
			}

		case key.Matches(msg, m.keys.Prev):
			m.status = ""
			if _, ok := m.rec.Prev(); !ok {
				m.status = "at first row"
			}

		case key.Matches(msg, m.keys.NextPage):
			m.nextPage()

		case key.Matches(msg, m.keys.Reload):
			m.err = m.rec.Select(m.ctx).Err()
			m.status = "reloaded"
			m.refresh()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.table.SetCursor(m.rec.CurrentIndex())
	}
	return m, nil
}

// nextPage loads the next page, or the first page again once the pages
// run out.
func (m *browseModel) nextPage() {
	if m.rec.RowsLimit() == 0 {
		m.status = "all rows loaded"
		return
	}
	if _, ok := m.rec.NextPage(m.ctx); ok {
		m.err = m.rec.Err()
		m.status = ""
		m.refresh()
		return
	}
	if m.err = m.rec.Err(); m.err == nil {
		m.err = m.rec.Select(m.ctx).Err()
	}
	m.status = "last page, back to first"
	m.refresh()
}

// refresh rebuilds the table from the record buffer.
func (m *browseModel) refresh() {
	columns := m.rec.SelectedColumns()
	rows := m.rec.Rows()

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}
	cells := make([]table.Row, len(rows))
	for r, row := range rows {
		cells[r] = make(table.Row, len(columns))
		for i, col := range columns {
			v, _ := row.Get(col)
			s := core.FormatValue(v)
			cells[r][i] = s
			widths[i] = min(max(widths[i], lipgloss.Width(s)), maxColumnWidth)
		}
	}

	cols := make([]table.Column, len(columns))
	for i, col := range columns {
		cols[i] = table.Column{Title: col, Width: widths[i]}
	}
	// Old rows must not render under the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(cells)
	m.table.SetCursor(m.rec.CurrentIndex())
}

func (m browseModel) View() string {
	var b strings.Builder

	pos := 0
	if !m.rec.IsEmpty() {
		pos = m.rec.CurrentIndex() + 1
	}
	b.WriteString(browseTitleStyle.Render(fmt.Sprintf("%s · page %d · row %d/%d",
		m.name, m.rec.Page(), pos, m.rec.NumSelectedRows())))
	b.WriteString("\n\n")

	if m.rec.IsEmpty() {
		b.WriteString(browseStatusStyle.Render("(0 rows)"))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(browseErrorStyle.Render("error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(browseStatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
