package jwtui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tOgg1/jwtlens/internal/jwtui/styles"
)

// frame is the drawable area handed to a pane.
type frame struct {
	width   int
	height  int
	theme   styles.Theme
	spinner string
}

func renderPanel(theme styles.Theme, focused bool, width, height int, content string) string {
	_, frameH := styles.FrameSize(theme)
	inner := maxInt(0, height-frameH)
	lines := strings.Split(content, "\n")
	if len(lines) > inner {
		lines = lines[:inner]
	}
	return styles.PanelStyle(theme, focused).
		Width(maxInt(0, width-2)).
		Height(inner).
		Render(strings.Join(lines, "\n"))
}

// fit truncates s to width display cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// wrap hard-wraps s into lines of at most width display cells. Existing
// newlines are kept.
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			out = append(out, "")
			continue
		}
		var b strings.Builder
		w := 0
		for _, r := range line {
			rw := runewidth.RuneWidth(r)
			if w+rw > width && w > 0 {
				out = append(out, b.String())
				b.Reset()
				w = 0
			}
			b.WriteRune(r)
			w += rw
		}
		out = append(out, b.String())
	}
	return out
}

// window returns the slice of lines of length height that keeps line anchor
// visible.
func window(lines []string, anchor, height int) []string {
	if height <= 0 {
		return nil
	}
	if len(lines) <= height {
		return lines
	}
	start := 0
	if anchor >= height {
		start = anchor - height + 1
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

var helpSections = []helpSection{
	{title: "Global", items: []helpItem{
		{key: "q / Ctrl+C", desc: "quit"},
		{key: "Tab", desc: "switch between list and content"},
		{key: "Esc", desc: "back to the list"},
		{key: "1 / 2 / 3", desc: "analysis / verify / create"},
		{key: "Ctrl+R", desc: "reload tokens"},
		{key: "?", desc: "toggle help"},
	}},
	{title: "Tokens", items: []helpItem{
		{key: "j/k", desc: "move selection"},
		{key: "Enter", desc: "select token"},
		{key: "i or /", desc: "enter a custom token"},
		{key: "c", desc: "copy selected token"},
	}},
	{title: "Analysis", items: []helpItem{
		{key: "j/k", desc: "move between stages"},
		{key: "Enter", desc: "process stage"},
	}},
	{title: "Verify", items: []helpItem{
		{key: "Enter", desc: "verify with the secret key"},
	}},
	{title: "Create", items: []helpItem{
		{key: "Tab", desc: "next field"},
		{key: "Ctrl+S", desc: "create token"},
		{key: "Ctrl+Y", desc: "copy created token"},
	}},
}

func renderHelp(width, height int, theme styles.Theme) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := []string{theme.Title().Render("Help"), ""}
	for _, sec := range helpSections {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(sec.title))
		for _, it := range sec.items {
			lines = append(lines, "  "+theme.Accent().Render(it.key)+"  "+it.desc)
		}
		lines = append(lines, "")
	}
	lines = append(lines, theme.Muted().Render("Dismiss: ? or Esc"))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Base.Border)).
		Padding(1, 2)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel.Render(strings.Join(lines, "\n")))
}
