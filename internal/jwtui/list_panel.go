package jwtui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/state"
)

const (
	previewLength   = 40
	linesPerToken   = 5
	noSecretText    = "not available"
	noDateText      = "date not available"
	tokenDateLayout = "02 Jan 2006"
)

type tokensLoadedMsg struct {
	tokens []models.TokenRecord
	err    error
}

// listPanel shows the available tokens and accepts custom ones. It only
// writes to the store; everything it renders is read back from it.
type listPanel struct {
	store          *state.Store
	gw             gateway.Gateway
	timeout        time.Duration
	writeClipboard func(string) error
	logger         zerolog.Logger

	cursor      int
	input       textinput.Model
	inputActive bool
	inputErr    string

	now   func() time.Time
	newID func() string

	unsubscribe []func()
}

func newListPanel(store *state.Store, gw gateway.Gateway, timeout time.Duration, writeClipboard func(string) error) *listPanel {
	ti := textinput.New()
	ti.Placeholder = "header.payload.signature"
	ti.Prompt = "> "
	ti.CharLimit = 8192
	ti.Cursor.SetMode(cursor.CursorStatic)

	p := &listPanel{
		store:          store,
		gw:             gw,
		timeout:        timeout,
		writeClipboard: writeClipboard,
		logger:         logging.Component("list"),
		input:          ti,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	p.unsubscribe = append(p.unsubscribe,
		store.Subscribe(state.EventTokensUpdated, func(next, _ state.State) error {
			p.clampCursor(len(next.Tokens))
			return nil
		}),
		store.Subscribe(state.EventTokenSelected, func(next, _ state.State) error {
			if next.Selected == nil {
				return nil
			}
			for i, rec := range next.Tokens {
				if rec.ID == next.Selected.ID {
					p.cursor = i
					break
				}
			}
			return nil
		}),
	)
	return p
}

func (p *listPanel) close() {
	for _, unsubscribe := range p.unsubscribe {
		unsubscribe()
	}
	p.unsubscribe = nil
}

// load starts the token fetch. The store is marked loading immediately.
func (p *listPanel) load() tea.Cmd {
	p.store.Set(state.EventTokensLoading, state.Loading(true))

	gw, timeout := p.gw, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tokens, err := gw.ListTokens(ctx)
		return tokensLoadedMsg{tokens: tokens, err: err}
	}
}

// reload fetches the list again unless a fetch is already outstanding.
func (p *listPanel) reload() tea.Cmd {
	if p.store.Loading() {
		return nil
	}
	return p.load()
}

func (p *listPanel) applyLoaded(msg tokensLoadedMsg) {
	if msg.err != nil {
		p.logger.Warn().Err(msg.err).Msg("loading tokens failed")
		p.store.Set(state.EventErrorRaised, state.Loading(false), state.Error(gateway.Message(msg.err)))
		return
	}
	p.logger.Debug().Int("count", len(msg.tokens)).Msg("tokens loaded")
	p.store.Set(state.EventTokensUpdated, state.Tokens(msg.tokens), state.Loading(false), state.Error(""))
}

// addCustom validates raw and, when it looks like a compact token, prepends
// a synthesized record and selects it.
func (p *listPanel) addCustom(raw string) error {
	raw = strings.TrimSpace(raw)
	if err := models.ValidateCompact(raw); err != nil {
		return err
	}

	now := p.now()
	rec := models.TokenRecord{
		ID:        p.newID(),
		Token:     raw,
		Name:      "Custom token " + now.Format("15:04:05"),
		CreatedAt: now,
		Valid:     models.ValidityUnknown,
	}

	current := p.store.Tokens()
	tokens := make([]models.TokenRecord, 0, len(current)+1)
	tokens = append(tokens, rec)
	tokens = append(tokens, current...)

	p.store.Set(state.EventTokensUpdated, state.Tokens(tokens))
	p.store.Set(state.EventTokenSelected, state.Selected(&rec))
	p.logger.Info().Str("id", rec.ID).Str("token", logging.RedactToken(raw)).Msg("custom token added")
	return nil
}

func (p *listPanel) selectAt(index int) {
	tokens := p.store.Tokens()
	if index < 0 || index >= len(tokens) {
		return
	}
	rec := tokens[index]
	p.store.Set(state.EventTokenSelected, state.Selected(&rec))
}

func (p *listPanel) clampCursor(n int) {
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *listPanel) openInput() tea.Cmd {
	p.inputActive = true
	p.inputErr = ""
	p.input.Reset()
	return p.input.Focus()
}

func (p *listPanel) closeInput() {
	p.inputActive = false
	p.inputErr = ""
	p.input.Blur()
	p.input.Reset()
}

func (p *listPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if p.inputActive {
		switch msg.String() {
		case "esc":
			p.closeInput()
			return nil
		case "enter":
			if err := p.addCustom(p.input.Value()); err != nil {
				p.inputErr = err.Error()
				return nil
			}
			p.closeInput()
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	n := len(p.store.Tokens())
	switch msg.String() {
	case "j", "down":
		if p.cursor < n-1 {
			p.cursor++
		}
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "g", "home":
		p.cursor = 0
	case "G", "end":
		p.cursor = maxInt(0, n-1)
	case "enter", " ":
		p.selectAt(p.cursor)
	case "i", "/":
		return p.openInput()
	case "c":
		if sel := p.store.Selected(); sel != nil {
			return copyCmd(p.writeClipboard, "token", sel.Token)
		}
	}
	return nil
}

func (p *listPanel) View(f frame) string {
	theme := f.theme
	lines := []string{theme.Title().Render("Tokens")}

	if p.inputActive {
		p.input.Width = maxInt(1, f.width-lenPrompt(p.input.Prompt)-1)
		lines = append(lines, theme.Muted().Render("Custom token"), p.input.View())
		if p.inputErr != "" {
			for _, line := range wrap(p.inputErr, f.width) {
				lines = append(lines, theme.Invalid().Render(line))
			}
		}
	}
	lines = append(lines, "")

	snap := p.store.Snapshot()
	switch {
	case snap.Loading:
		lines = append(lines, theme.Pending().Render(f.spinner+" loading tokens..."))
		return strings.Join(lines, "\n")
	case len(snap.Tokens) == 0 && snap.Error != "":
		lines = append(lines, theme.Invalid().Render(fit("Could not load tokens", f.width)))
		lines = append(lines, theme.Muted().Render(fit("ctrl+r to retry", f.width)))
		return strings.Join(lines, "\n")
	case len(snap.Tokens) == 0:
		lines = append(lines, theme.Muted().Render(fit("No tokens. Press i to enter one.", f.width)))
		return strings.Join(lines, "\n")
	}

	selectedID := ""
	if snap.Selected != nil {
		selectedID = snap.Selected.ID
	}
	items := make([]string, 0, len(snap.Tokens)*linesPerToken)
	for i, rec := range snap.Tokens {
		items = append(items, renderTokenItem(rec, f, i == p.cursor, rec.ID == selectedID)...)
	}
	avail := f.height - len(lines)
	anchor := p.cursor*linesPerToken + linesPerToken - 1
	lines = append(lines, window(items, anchor, avail)...)
	return strings.Join(lines, "\n")
}

func renderTokenItem(rec models.TokenRecord, f frame, atCursor, selected bool) []string {
	theme := f.theme
	marker := "  "
	switch {
	case atCursor && selected:
		marker = ">*"
	case atCursor:
		marker = "> "
	case selected:
		marker = "* "
	}

	badge := validityBadge(rec.Valid)
	nameWidth := f.width - len(marker) - len(badge) - 1
	name := fit(rec.Name, maxInt(1, nameWidth))
	nameStyle := theme.Title()
	if atCursor {
		nameStyle = theme.Selected()
	}
	badgeStyle := theme.Unknown()
	switch rec.Valid {
	case models.ValidityValid:
		badgeStyle = theme.Valid()
	case models.ValidityInvalid:
		badgeStyle = theme.Invalid()
	}
	pad := maxInt(1, f.width-len(marker)-len([]rune(name))-len(badge))

	secret := noSecretText
	if rec.HasSecret() {
		secret = rec.Secret
	}
	meta := "secret: " + secret
	if rec.ErrorKind != "" {
		meta += "  error: " + rec.ErrorKind
	}
	date := noDateText
	if !rec.CreatedAt.IsZero() {
		date = rec.CreatedAt.Format(tokenDateLayout)
	}

	inner := maxInt(1, f.width-2)
	return []string{
		marker + nameStyle.Render(name) + strings.Repeat(" ", pad) + badgeStyle.Render(badge),
		"  " + theme.Muted().Render(fit(rec.Preview(previewLength), inner)),
		"  " + theme.Secret().Render(fit(meta, inner)),
		"  " + theme.Muted().Render(date),
		"",
	}
}

func validityBadge(v models.Validity) string {
	return "[" + v.String() + "]"
}

func lenPrompt(prompt string) int {
	return len([]rune(prompt))
}
