package jwtui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/state"
)

const emptyStateText = "Select a token from the list or enter a custom one to get started."

type contentOptions struct {
	gateway       gateway.Gateway
	timeout       time.Duration
	defaultSecret string
	clipboard     func(string) error
}

// contentView hosts the three views and keeps them in step with the store:
// a new selection resets analysis and verify, and switching views resets
// both the view being left and the one being entered.
type contentView struct {
	store    *state.Store
	focused  bool
	analysis *analysisView
	verify   *verifyView
	create   *createView

	unsubscribe []func()
}

func newContentView(store *state.Store, opts contentOptions) *contentView {
	c := &contentView{
		store:    store,
		analysis: newAnalysisView(opts.gateway, opts.timeout),
		verify:   newVerifyView(opts.gateway, opts.timeout, opts.defaultSecret),
		create:   newCreateView(opts.gateway, opts.timeout, opts.defaultSecret, opts.clipboard),
	}
	c.unsubscribe = append(c.unsubscribe,
		store.Subscribe(state.EventTokenSelected, c.onSelected),
		store.Subscribe(state.EventViewChanged, c.onViewChanged),
	)
	return c
}

func (c *contentView) close() {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

func (c *contentView) onSelected(next, _ state.State) error {
	c.analysis.reset(next.Selected)
	c.verify.reset(next.Selected)
	c.applyFocus(next.ActiveView)
	return nil
}

func (c *contentView) onViewChanged(next, prev state.State) error {
	if next.ActiveView == prev.ActiveView {
		return nil
	}
	c.resetView(prev.ActiveView, next.Selected)
	c.resetView(next.ActiveView, next.Selected)
	c.applyFocus(next.ActiveView)
	return nil
}

func (c *contentView) resetView(view models.View, selected *models.TokenRecord) {
	switch view {
	case models.ViewAnalysis:
		c.analysis.reset(selected)
	case models.ViewVerify:
		c.verify.reset(selected)
	case models.ViewCreate:
		c.create.reset()
	}
}

func (c *contentView) setFocused(focused bool) {
	c.focused = focused
	c.applyFocus(c.store.ActiveView())
}

func (c *contentView) applyFocus(active models.View) {
	c.verify.setFocused(c.focused && active == models.ViewVerify)
	c.create.setFocused(c.focused && active == models.ViewCreate)
}

// ownsTab reports whether the active view uses tab for its own navigation.
func (c *contentView) ownsTab() bool {
	return c.store.ActiveView() == models.ViewCreate
}

// Typing reports whether a text input of the active view has focus.
func (c *contentView) Typing() bool {
	switch c.store.ActiveView() {
	case models.ViewVerify:
		return c.verify.typing()
	case models.ViewCreate:
		return c.create.typing()
	default:
		return false
	}
}

// Update routes gateway completions to the view that issued them.
func (c *contentView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case stageDoneMsg:
		c.analysis.apply(typed)
	case verifyDoneMsg:
		c.verify.apply(typed)
	case createDoneMsg:
		c.create.apply(typed)
	}
	return nil
}

func (c *contentView) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch c.store.ActiveView() {
	case models.ViewAnalysis:
		if c.store.Selected() == nil {
			return nil
		}
		return c.analysis.HandleKey(msg)
	case models.ViewVerify:
		if c.store.Selected() == nil {
			return nil
		}
		return c.verify.HandleKey(msg)
	case models.ViewCreate:
		return c.create.HandleKey(msg)
	}
	return nil
}

func (c *contentView) keyHints() string {
	switch c.store.ActiveView() {
	case models.ViewVerify:
		return "enter verify"
	case models.ViewCreate:
		return "tab next field  ctrl+s create  ctrl+y copy token"
	default:
		return "j/k stage  enter process"
	}
}

func (c *contentView) View(f frame) string {
	active := c.store.ActiveView()
	if active != models.ViewCreate && c.store.Selected() == nil {
		lines := []string{f.theme.Title().Render(active.Title()), ""}
		for _, line := range wrap(emptyStateText, f.width) {
			lines = append(lines, f.theme.Muted().Render(line))
		}
		return strings.Join(lines, "\n")
	}

	switch active {
	case models.ViewVerify:
		return c.verify.View(f)
	case models.ViewCreate:
		return c.create.View(f)
	default:
		return c.analysis.View(f)
	}
}
