package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeColumnWidths(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  ColumnWidths
	}{
		{name: "zero", width: 0, want: ColumnWidths{}},
		{name: "wide clamps list", width: 200, want: ColumnWidths{List: 48, Content: 151}},
		{name: "medium", width: 120, want: ColumnWidths{List: 40, Content: 79}},
		{name: "narrow keeps minimum list", width: 72, want: ColumnWidths{List: 28, Content: 43}},
		{name: "too narrow collapses list", width: 60, want: ColumnWidths{List: 0, Content: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ComputeColumnWidths(tt.width))
		})
	}
}

func TestLookup(t *testing.T) {
	theme, ok := Lookup("high-contrast")
	require.True(t, ok)
	require.Equal(t, "high-contrast", theme.Name)

	theme, ok = Lookup("neon")
	require.False(t, ok)
	require.Equal(t, DefaultTheme.Name, theme.Name)
}

func TestFrameSizeMatchesBorderStyle(t *testing.T) {
	w, h := FrameSize(DefaultTheme)
	require.Equal(t, 4, w)
	require.Equal(t, 2, h)
}
