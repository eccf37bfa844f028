// Package jwtui is the interactive terminal client for the analysis service.
package jwtui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/jwtui/styles"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/state"
)

const (
	defaultCallTimeout   = 10 * time.Second
	defaultHealthTimeout = 3 * time.Second
	defaultSecret        = "secret"

	fallbackWidth  = 100
	fallbackHeight = 30

	fatalMessage = "Something went wrong. Press q to quit and restart jwtlens."
)

var errNoGateway = errors.New("gateway is required")

type Config struct {
	Gateway       gateway.Gateway
	Theme         string
	DefaultView   models.View
	DefaultSecret string
	CallTimeout   time.Duration
	HealthTimeout time.Duration

	// Clipboard writes text to the system clipboard. Defaults to atotto/clipboard.
	Clipboard func(string) error
}

type focusArea int

const (
	focusList focusArea = iota
	focusContent
)

type healthState struct {
	checked bool
	healthy bool
	text    string
}

type healthMsg struct {
	health models.Health
	err    error
}

type copiedMsg struct {
	what string
	err  error
}

type Model struct {
	gw            gateway.Gateway
	store         *state.Store
	theme         styles.Theme
	logger        zerolog.Logger
	healthTimeout time.Duration

	width    int
	height   int
	focus    focusArea
	showHelp bool
	fatal    bool
	health   healthState
	notice   string

	spinner spinner.Model
	list    *listPanel
	nav     *navigator
	content *contentView

	unsubscribe []func()
}

func NewModel(cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	theme, _ := styles.Lookup(normalized.Theme)

	initial := state.Default()
	initial.ActiveView = normalized.DefaultView
	store := state.New(state.WithInitial(initial))

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		gw:            normalized.Gateway,
		store:         store,
		theme:         theme,
		logger:        logging.Component("tui"),
		healthTimeout: normalized.HealthTimeout,
		spinner:       sp,
	}
	m.list = newListPanel(store, normalized.Gateway, normalized.CallTimeout, normalized.Clipboard)
	m.nav = newNavigator(store)
	m.content = newContentView(store, contentOptions{
		gateway:       normalized.Gateway,
		timeout:       normalized.CallTimeout,
		defaultSecret: normalized.DefaultSecret,
		clipboard:     normalized.Clipboard,
	})

	m.unsubscribe = append(m.unsubscribe,
		store.Subscribe(state.EventStateChanged, m.logStoreError),
		store.Subscribe(state.EventErrorRaised, func(_, _ state.State) error {
			m.notice = ""
			return nil
		}),
	)
	return m, nil
}

func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m *Model) Close() error {
	if m == nil {
		return nil
	}
	for _, unsubscribe := range m.unsubscribe {
		unsubscribe()
	}
	m.unsubscribe = nil
	if m.list != nil {
		m.list.close()
	}
	if m.content != nil {
		m.content.close()
	}
	m.store.Clear()
	return nil
}

// Store exposes the model's state container.
func (m *Model) Store() *state.Store {
	return m.store
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.list.load(), m.checkHealth(), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.fail("update", r)
			next, cmd = m, nil
		}
	}()
	return m, m.update(msg)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return cmd
	case tea.KeyMsg:
		if m.fatal {
			switch typed.String() {
			case "q", "ctrl+c":
				return tea.Quit
			}
			return nil
		}
		return m.handleKey(typed)
	}

	if m.fatal {
		return nil
	}

	switch typed := msg.(type) {
	case healthMsg:
		m.applyHealth(typed)
		return nil
	case tokensLoadedMsg:
		m.list.applyLoaded(typed)
		return nil
	case copiedMsg:
		if typed.err != nil {
			m.notice = fmt.Sprintf("Could not copy %s: %v", typed.what, typed.err)
		} else {
			m.notice = fmt.Sprintf("Copied %s to clipboard", typed.what)
		}
		return nil
	case stageDoneMsg, verifyDoneMsg, createDoneMsg:
		return m.content.Update(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.showHelp {
		switch key {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return nil
	}

	switch {
	case key == "ctrl+r":
		return m.list.reload()
	case key == "tab" && !(m.focus == focusContent && m.content.ownsTab()):
		m.toggleFocus()
		return nil
	case key == "esc" && m.focus == focusContent:
		m.setFocus(focusList)
		return nil
	}

	if !m.typing() {
		switch key {
		case "q":
			return tea.Quit
		case "?":
			m.showHelp = true
			return nil
		case "1", "2", "3":
			views := models.Views()
			m.nav.Switch(string(views[int(key[0]-'1')]))
			return nil
		}
	}

	if m.focus == focusList {
		return m.list.HandleKey(msg)
	}
	return m.content.HandleKey(msg)
}

func (m *Model) typing() bool {
	if m.focus == focusList {
		return m.list.inputActive
	}
	return m.content.Typing()
}

func (m *Model) toggleFocus() {
	if m.focus == focusList {
		m.setFocus(focusContent)
		return
	}
	m.setFocus(focusList)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	m.content.setFocused(focus == focusContent)
}

func (m *Model) checkHealth() tea.Cmd {
	gw, timeout := m.gw, m.healthTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		health, err := gw.Health(ctx)
		return healthMsg{health: health, err: err}
	}
}

func (m *Model) applyHealth(msg healthMsg) {
	m.health.checked = true
	switch {
	case msg.err != nil:
		m.health.healthy = false
		m.health.text = "service unavailable: " + gateway.Message(msg.err)
		m.logger.Warn().Err(msg.err).Msg("health check failed")
	case !msg.health.Healthy():
		m.health.healthy = false
		m.health.text = "service " + strings.TrimSpace(msg.health.Status)
		m.logger.Warn().Str("status", msg.health.Status).Str("message", msg.health.Message).Msg("service reported unhealthy")
	default:
		m.health.healthy = true
		m.health.text = "service healthy"
		m.logger.Info().Str("message", msg.health.Message).Msg("service healthy")
	}
}

func (m *Model) logStoreError(next, prev state.State) error {
	if next.Error != "" && next.Error != prev.Error {
		m.logger.Error().Str("error", next.Error).Msg("application error")
	}
	return nil
}

func (m *Model) fail(where string, r any) {
	m.fatal = true
	m.logger.Error().
		Str("where", where).
		Str("panic", fmt.Sprint(r)).
		Bytes("stack", debug.Stack()).
		Msg("recovered from panic")
}

func (m *Model) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.fail("view", r)
			out = m.renderFatal()
		}
	}()
	if m.fatal {
		return m.renderFatal()
	}

	width, height := m.size()
	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	bodyHeight := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	var body string
	if m.showHelp {
		body = renderHelp(width, bodyHeight, m.theme)
	} else {
		body = m.renderBody(width, bodyHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) size() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = fallbackWidth
	}
	if height <= 0 {
		height = fallbackHeight
	}
	return width, height
}

func (m *Model) renderBody(width, height int) string {
	cols := styles.ComputeColumnWidths(width)

	if cols.List == 0 {
		if m.focus == focusList {
			return renderPanel(m.theme, true, width, height, m.list.View(m.frame(width, height)))
		}
		return renderPanel(m.theme, true, width, height, m.content.View(m.frame(width, height)))
	}

	list := renderPanel(m.theme, m.focus == focusList, cols.List, height,
		m.list.View(m.frame(cols.List, height)))
	content := renderPanel(m.theme, m.focus == focusContent, cols.Content, height,
		m.content.View(m.frame(cols.Content, height)))
	gap := strings.Repeat(" ", styles.LayoutGap)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, gap, content)
}

// frame returns the drawable area inside a panel of the given outer size.
func (m *Model) frame(width, height int) frame {
	frameW, frameH := styles.FrameSize(m.theme)
	return frame{
		width:   maxInt(0, width-frameW),
		height:  maxInt(0, height-frameH),
		theme:   m.theme,
		spinner: m.spinner.View(),
	}
}

func (m *Model) renderHeader(width int) string {
	title := m.theme.Title().Render("jwtlens")
	tabs := m.nav.View(m.theme)

	var status string
	switch {
	case !m.health.checked:
		status = m.theme.Pending().Render(m.spinner.View() + " checking service")
	case m.health.healthy:
		status = m.theme.Valid().Render(m.health.text)
	default:
		status = m.theme.Invalid().Render(m.health.text)
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", tabs)
	pad := width - lipgloss.Width(left) - lipgloss.Width(status)
	if pad < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, left, status)
	}
	return left + strings.Repeat(" ", pad) + status
}

func (m *Model) renderFooter(width int) string {
	var line string
	switch {
	case m.store.Err() != "":
		line = m.theme.Invalid().Render(fit("Error: "+m.store.Err(), width))
	case m.notice != "":
		line = m.theme.Accent().Render(fit(m.notice, width))
	default:
		line = m.theme.Footer().Render(fit(m.keyHints(), width))
	}
	return line
}

func (m *Model) keyHints() string {
	if m.focus == focusList {
		if m.list.inputActive {
			return "enter add token  esc cancel  tab content"
		}
		return "j/k move  enter select  i custom token  c copy  1-3 views  tab content  ctrl+r reload  ? help  q quit"
	}
	return m.content.keyHints() + "  esc list  ? help"
}

func (m *Model) renderFatal() string {
	width, height := m.size()
	msg := m.theme.Invalid().Render(fatalMessage)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}

func (c Config) normalize() (Config, error) {
	if c.Gateway == nil {
		return Config{}, errNoGateway
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.HealthTimeout <= 0 {
		c.HealthTimeout = defaultHealthTimeout
	}
	c.Theme = strings.TrimSpace(c.Theme)
	if c.Theme == "" {
		c.Theme = styles.DefaultTheme.Name
	}
	if _, ok := styles.Lookup(c.Theme); !ok {
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	if c.DefaultView == "" {
		c.DefaultView = models.ViewAnalysis
	}
	view, ok := models.ParseView(string(c.DefaultView))
	if !ok {
		return Config{}, fmt.Errorf("invalid view %q", c.DefaultView)
	}
	c.DefaultView = view
	c.DefaultSecret = strings.TrimSpace(c.DefaultSecret)
	if c.DefaultSecret == "" {
		c.DefaultSecret = defaultSecret
	}
	if c.Clipboard == nil {
		c.Clipboard = clipboard.WriteAll
	}
	return c, nil
}

func copyCmd(write func(string) error, what, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{what: what, err: write(text)}
	}
}
