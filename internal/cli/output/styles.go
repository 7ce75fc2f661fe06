package output

import "github.com/charmbracelet/lipgloss"

// Palette used by the styles.
var (
	colorPrimary = lipgloss.Color("12")
	colorSuccess = lipgloss.Color("10")
	colorWarning = lipgloss.Color("11")
	colorError   = lipgloss.Color("9")
	colorMuted   = lipgloss.Color("8")
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header   lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Key      lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles creates styles bound to a lipgloss renderer, so color output
// follows the capabilities of the writer it renders to.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:     r.NewStyle().Bold(true),
		Muted:    r.NewStyle().Foreground(colorMuted),
		Success:  r.NewStyle().Foreground(colorSuccess),
		Warning:  r.NewStyle().Foreground(colorWarning),
		Error:    r.NewStyle().Foreground(colorError).Bold(true),
		Info:     r.NewStyle().Foreground(colorPrimary),
		Key:      r.NewStyle().Bold(true).Foreground(colorPrimary),
		Selected: r.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15")),
	}
}
