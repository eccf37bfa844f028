package jwtui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/jwtlens/internal/jwtui/styles"
)

func TestFit(t *testing.T) {
	require.Equal(t, "hello", fit("hello", 5))
	require.Equal(t, "hell…", fit("hello world", 5))
	require.Equal(t, "", fit("hello", 0))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{name: "short", in: "abc", width: 10, want: []string{"abc"}},
		{name: "hard wrap", in: "abcdefg", width: 3, want: []string{"abc", "def", "g"}},
		{name: "keeps newlines", in: "ab\n\ncd", width: 5, want: []string{"ab", "", "cd"}},
		{name: "wide runes", in: "日本語", width: 4, want: []string{"日本", "語"}},
		{name: "zero width", in: "abc", width: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, wrap(tt.in, tt.width))
		})
	}
}

func TestWindowKeepsAnchorVisible(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5"}

	require.Equal(t, lines, window(lines, 0, 10))
	require.Equal(t, []string{"0", "1", "2"}, window(lines, 1, 3))
	require.Equal(t, []string{"2", "3", "4"}, window(lines, 4, 3))
	require.Equal(t, []string{"3", "4", "5"}, window(lines, 9, 3))
	require.Nil(t, window(lines, 0, 0))
}

func TestRenderPanelClipsToHeight(t *testing.T) {
	content := strings.Repeat("line\n", 20)
	out := renderPanel(styles.DefaultTheme, true, 30, 6, content)
	require.Len(t, strings.Split(out, "\n"), 6)
}

func TestRenderHelp(t *testing.T) {
	out := renderHelp(80, 40, styles.DefaultTheme)
	require.Contains(t, out, "Help")
	require.Contains(t, out, "Dismiss: ? or Esc")
	require.Contains(t, out, "Ctrl+R")
}
