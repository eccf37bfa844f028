package jwtui

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/jwtui/styles"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/state"
)

// navigator switches between the analysis, verify and create views.
type navigator struct {
	store  *state.Store
	logger zerolog.Logger
}

func newNavigator(store *state.Store) *navigator {
	return &navigator{store: store, logger: logging.Component("navigator")}
}

// Switch activates the view named id. Unknown ids are logged and ignored.
func (n *navigator) Switch(id string) bool {
	view, ok := models.ParseView(id)
	if !ok {
		n.logger.Warn().Str("view", id).Msg("ignoring unknown view")
		return false
	}
	n.store.Set(state.EventViewChanged, state.ActiveView(view))
	return true
}

func (n *navigator) View(theme styles.Theme) string {
	active := n.store.ActiveView()
	tabs := make([]string, 0, len(models.Views()))
	for i, view := range models.Views() {
		label := string(rune('1'+i)) + " " + view.Title()
		tabs = append(tabs, theme.Tab(view == active).Render(label))
	}
	return strings.Join(tabs, theme.Muted().Render("│"))
}
