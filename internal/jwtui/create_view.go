package jwtui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

const (
	defaultHeaderJSON  = `{"alg": "HS256", "typ": "JWT"}`
	defaultPayloadJSON = `{"sub": "1234567890", "name": "John Doe", "iat": 1516239022}`

	labelCreate   = "Create token"
	labelCreating = "Creating..."

	editorHeight = 4
)

type createField int

const (
	createFieldHeader createField = iota
	createFieldPayload
	createFieldSecret
	createFieldCount
)

type createDoneMsg struct {
	flow  uint64
	token string
	err   error
}

// createView signs a header and payload through the gateway.
type createView struct {
	gw             gateway.Gateway
	timeout        time.Duration
	defaultSecret  string
	writeClipboard func(string) error
	logger         zerolog.Logger

	header  textarea.Model
	payload textarea.Model
	secret  textinput.Model
	field   createField
	focused bool

	flow     uint64
	creating bool
	created  string
	err      string
	jsonErr  bool
}

func newCreateView(gw gateway.Gateway, timeout time.Duration, defaultSecret string, writeClipboard func(string) error) *createView {
	v := &createView{
		gw:             gw,
		timeout:        timeout,
		defaultSecret:  defaultSecret,
		writeClipboard: writeClipboard,
		logger:         logging.Component("create"),
		header:         newEditor(defaultHeaderJSON),
		payload:        newEditor(defaultPayloadJSON),
	}

	ti := textinput.New()
	ti.Placeholder = defaultSecret
	ti.Prompt = ""
	ti.CharLimit = 1024
	ti.Cursor.SetMode(cursor.CursorStatic)
	v.secret = ti

	v.reset()
	return v
}

func newEditor(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 16384
	ta.SetHeight(editorHeight)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func (v *createView) reset() {
	v.flow++
	v.creating = false
	v.created = ""
	v.err = ""
	v.jsonErr = false
	v.header.SetValue(defaultHeaderJSON)
	v.payload.SetValue(defaultPayloadJSON)
	v.secret.SetValue(v.defaultSecret)
	v.field = createFieldHeader
	v.applyFocus()
}

func (v *createView) setFocused(focused bool) {
	v.focused = focused
	v.applyFocus()
}

func (v *createView) applyFocus() {
	v.header.Blur()
	v.payload.Blur()
	v.secret.Blur()
	if !v.focused {
		return
	}
	switch v.field {
	case createFieldHeader:
		v.header.Focus()
	case createFieldPayload:
		v.payload.Focus()
	case createFieldSecret:
		v.secret.Focus()
	}
}

func (v *createView) typing() bool {
	return v.focused
}

func (v *createView) canSubmit() bool {
	return !v.creating
}

func (v *createView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	input, err := models.ValidateSigningInput(v.header.Value(), v.payload.Value(), v.secret.Value(), v.defaultSecret)
	if err != nil {
		v.err = err.Error()
		v.jsonErr = true
		v.created = ""
		return nil
	}

	v.err = ""
	v.jsonErr = false
	v.created = ""
	v.creating = true

	gw, timeout, flow := v.gw, v.timeout, v.flow
	v.logger.Debug().Uint64("flow", flow).Interface("header", logging.RedactMap(input.Header)).Msg("creating token")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		token, err := gw.Create(ctx, input.Header, input.Payload, input.Secret)
		return createDoneMsg{flow: flow, token: token, err: err}
	}
}

func (v *createView) apply(msg createDoneMsg) {
	if msg.flow != v.flow {
		v.logger.Debug().Uint64("flow", msg.flow).Uint64("current_flow", v.flow).Msg("discarding stale create result")
		return
	}
	v.creating = false
	if msg.err != nil {
		v.err = gateway.Message(msg.err)
		v.logger.Warn().Err(msg.err).Msg("create failed")
		return
	}
	v.created = msg.token
}

func (v *createView) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		v.field = (v.field + 1) % createFieldCount
		v.applyFocus()
		return nil
	case "shift+tab":
		v.field = (v.field + createFieldCount - 1) % createFieldCount
		v.applyFocus()
		return nil
	case "ctrl+s":
		return v.submit()
	case "ctrl+y":
		if v.created != "" {
			return copyCmd(v.writeClipboard, "created token", v.created)
		}
		return nil
	case "enter":
		if v.field == createFieldSecret {
			return v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.field {
	case createFieldHeader:
		v.header, cmd = v.header.Update(msg)
	case createFieldPayload:
		v.payload, cmd = v.payload.Update(msg)
	case createFieldSecret:
		v.secret, cmd = v.secret.Update(msg)
	}
	return cmd
}

func (v *createView) View(f frame) string {
	theme := f.theme
	width := maxInt(1, f.width-2)
	v.header.SetWidth(width)
	v.payload.SetWidth(width)
	v.secret.Width = width

	label := func(text string, field createField) string {
		if v.focused && v.field == field {
			return theme.Selected().Render("> " + text)
		}
		return theme.Muted().Render("  " + text)
	}

	lines := []string{theme.Title().Render("Create a new token"), ""}
	lines = append(lines, label("Header (JSON)", createFieldHeader), v.header.View())
	lines = append(lines, label("Payload (JSON)", createFieldPayload), v.payload.View())
	lines = append(lines, label("Secret key", createFieldSecret), v.secret.View())

	button := labelCreate
	if v.creating {
		button = f.spinner + " " + labelCreating
	}
	lines = append(lines, theme.Button(v.canSubmit(), v.focused).Render(button), "")

	switch {
	case v.err != "":
		prefix := "Error: "
		if v.jsonErr {
			prefix = "JSON error: "
		}
		for _, line := range wrap(prefix+v.err, f.width) {
			lines = append(lines, theme.Invalid().Render(line))
		}
	case v.created != "":
		lines = append(lines, theme.Valid().Render("✓ Token created"), theme.Title().Render("Generated token"))
		for _, line := range wrap(v.created, f.width) {
			lines = append(lines, theme.Accent().Render(line))
		}
		lines = append(lines, theme.Muted().Render("ctrl+y to copy"))
	}
	all := strings.Split(strings.Join(lines, "\n"), "\n")
	return strings.Join(window(all, 0, f.height), "\n")
}
