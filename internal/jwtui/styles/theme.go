// Package styles holds the jwtlens TUI palettes and layout helpers.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// VerdictColors defines colors for validity badges and stage outcomes.
type VerdictColors struct {
	Valid   string
	Invalid string
	Unknown string
	Pending string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header       string
	Footer       string
	ActiveTab    string
	InactiveTab  string
	SelectedItem string
	Secret       string
}

// BorderColors defines border colors for pane state.
type BorderColors struct {
	ActivePane   string
	InactivePane string
	Divider      string
}

// Theme defines the jwtlens TUI style tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "double", "hidden"

	Base    BaseColors
	Verdict VerdictColors
	Chrome  ChromeColors
	Borders BorderColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup returns the named theme, falling back to DefaultTheme.
func Lookup(name string) (Theme, bool) {
	theme, ok := Themes[name]
	if !ok {
		return DefaultTheme, false
	}
	return theme, true
}

// Muted renders secondary text.
func (t Theme) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

// Accent renders highlighted text.
func (t Theme) Accent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}

// Title renders card and panel headings.
func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.Header))
}

// Valid renders positive verdicts.
func (t Theme) Valid() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Verdict.Valid))
}

// Invalid renders negative verdicts and error messages.
func (t Theme) Invalid() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Verdict.Invalid))
}

// Unknown renders undetermined verdicts.
func (t Theme) Unknown() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Verdict.Unknown))
}

// Pending renders in-flight state.
func (t Theme) Pending() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Verdict.Pending))
}

// Selected renders the highlighted list row.
func (t Theme) Selected() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.SelectedItem))
}

// Secret renders disclosed secrets.
func (t Theme) Secret() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Secret))
}

// Tab renders a navigator tab.
func (t Theme) Tab(active bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return style.Bold(true).Underline(true).Foreground(lipgloss.Color(t.Chrome.ActiveTab))
	}
	return style.Foreground(lipgloss.Color(t.Chrome.InactiveTab))
}

// Footer renders the key hint line.
func (t Theme) Footer() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Footer))
}

// Button renders an action affordance. Disabled buttons are muted.
func (t Theme) Button(enabled, focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	switch {
	case !enabled:
		return style.Foreground(lipgloss.Color(t.Base.Muted)).BorderForeground(lipgloss.Color(t.Borders.InactivePane))
	case focused:
		return style.Bold(true).Foreground(lipgloss.Color(t.Base.Accent)).BorderForeground(lipgloss.Color(t.Borders.ActivePane))
	default:
		return style.Foreground(lipgloss.Color(t.Base.Foreground)).BorderForeground(lipgloss.Color(t.Base.Border))
	}
}
