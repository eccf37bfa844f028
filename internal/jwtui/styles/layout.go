package styles

import "github.com/charmbracelet/lipgloss"

const (
	// LayoutGap is the default space between columns.
	LayoutGap = 1

	// LayoutInnerPadding is the default panel content padding.
	LayoutInnerPadding = 1
)

const (
	minListWidth    = 28
	maxListWidth    = 48
	minContentWidth = 40
)

// ColumnWidths defines the widths of the token list and the content area.
// A zero List width means the list is collapsed above the content.
type ColumnWidths struct {
	List    int
	Content int
}

// ComputeColumnWidths returns responsive widths for the list and content columns.
func ComputeColumnWidths(totalWidth int) ColumnWidths {
	if totalWidth <= 0 {
		return ColumnWidths{}
	}

	list := clampInt(totalWidth/3, minListWidth, maxListWidth)
	content := totalWidth - list - LayoutGap
	if content < minContentWidth {
		return ColumnWidths{List: 0, Content: totalWidth}
	}
	return ColumnWidths{List: list, Content: content}
}

// PanelStyle returns a focused/unfocused border style for panes.
func PanelStyle(theme Theme, focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(panelBorderColor(theme, focused))).
		Padding(0, LayoutInnerPadding)
}

// CardStyle frames a single pipeline stage or form section.
func CardStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.Borders.Divider)).
		Padding(0, LayoutInnerPadding)
}

// DividerStyle returns the divider style between sections.
func DividerStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Borders.Divider))
}

// FrameSize is the horizontal and vertical space a PanelStyle border and
// padding take up.
func FrameSize(theme Theme) (int, int) {
	return PanelStyle(theme, false).GetFrameSize()
}

func panelBorderColor(theme Theme, focused bool) string {
	if focused {
		return theme.Borders.ActivePane
	}
	return theme.Borders.InactivePane
}

func panelBorderStyle(theme Theme) lipgloss.Border {
	switch theme.BorderStyle {
	case "double":
		return lipgloss.DoubleBorder()
	case "sharp":
		return lipgloss.NormalBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
