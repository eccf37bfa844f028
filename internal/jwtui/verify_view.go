package jwtui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

const (
	labelVerify    = "Verify token"
	labelVerifying = "Verifying..."
)

type verifyDoneMsg struct {
	flow   uint64
	result models.VerifyResult
	err    error
}

// verifyView checks the signature of the selected token against a secret.
// Completions carry the flow they were issued under; a reset starts a new
// flow so late answers for an earlier token are dropped.
type verifyView struct {
	gw            gateway.Gateway
	timeout       time.Duration
	defaultSecret string
	logger        zerolog.Logger

	token     *models.TokenRecord
	secret    textinput.Model
	flow      uint64
	verifying bool
	result    *models.VerifyResult
	err       string
	inputErr  string
}

func newVerifyView(gw gateway.Gateway, timeout time.Duration, defaultSecret string) *verifyView {
	ti := textinput.New()
	ti.Placeholder = "secret key used to sign the token"
	ti.Prompt = ""
	ti.CharLimit = 1024
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(defaultSecret)

	return &verifyView{
		gw:            gw,
		timeout:       timeout,
		defaultSecret: defaultSecret,
		logger:        logging.Component("verify"),
		secret:        ti,
	}
}

func (v *verifyView) reset(selected *models.TokenRecord) {
	v.flow++
	v.token = nil
	if selected != nil {
		rec := *selected
		v.token = &rec
	}
	v.verifying = false
	v.result = nil
	v.err = ""
	v.inputErr = ""
	v.secret.SetValue(v.defaultSecret)
}

func (v *verifyView) setFocused(focused bool) {
	if focused {
		v.secret.Focus()
		return
	}
	v.secret.Blur()
}

func (v *verifyView) typing() bool {
	return v.secret.Focused()
}

// canSubmit mirrors the state of the verify button.
func (v *verifyView) canSubmit() bool {
	return v.token != nil && !v.verifying
}

func (v *verifyView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	secret := strings.TrimSpace(v.secret.Value())
	if secret == "" {
		v.inputErr = models.ErrEmptySecret.Error()
		return nil
	}

	v.inputErr = ""
	v.err = ""
	v.result = nil
	v.verifying = true

	gw, timeout, flow, token := v.gw, v.timeout, v.flow, v.token.Token
	v.logger.Debug().Uint64("flow", flow).Str("token", logging.RedactToken(token)).Msg("verifying token")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := gw.Verify(ctx, token, secret)
		return verifyDoneMsg{flow: flow, result: result, err: err}
	}
}

func (v *verifyView) apply(msg verifyDoneMsg) {
	if msg.flow != v.flow {
		v.logger.Debug().Uint64("flow", msg.flow).Uint64("current_flow", v.flow).Msg("discarding stale verification")
		return
	}
	v.verifying = false
	if msg.err != nil {
		v.err = gateway.Message(msg.err)
		v.logger.Warn().Err(msg.err).Msg("verification failed")
		return
	}
	result := msg.result
	v.result = &result
}

func (v *verifyView) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return v.submit()
	}
	if !v.secret.Focused() {
		return nil
	}
	var cmd tea.Cmd
	v.secret, cmd = v.secret.Update(msg)
	return cmd
}

func (v *verifyView) View(f frame) string {
	theme := f.theme
	lines := []string{theme.Title().Render("Verify signature"), ""}

	v.secret.Width = maxInt(1, f.width-2)
	lines = append(lines, theme.Muted().Render("Secret key"), v.secret.View())
	if v.inputErr != "" {
		lines = append(lines, theme.Invalid().Render(fit(v.inputErr, f.width)))
	}

	label := labelVerify
	if v.verifying {
		label = f.spinner + " " + labelVerifying
	}
	lines = append(lines, theme.Button(v.canSubmit(), v.secret.Focused()).Render(label), "")

	switch {
	case v.err != "":
		for _, line := range wrap("Error: "+v.err, f.width) {
			lines = append(lines, theme.Invalid().Render(line))
		}
		lines = append(lines, "")
	case v.result != nil:
		lines = append(lines, v.resultLines(f)...)
	}

	if v.token != nil {
		lines = append(lines, theme.Title().Render("Token"))
		for _, line := range wrap(v.token.Token, f.width) {
			lines = append(lines, theme.Muted().Render(line))
		}
	}
	all := strings.Split(strings.Join(lines, "\n"), "\n")
	return strings.Join(window(all, 0, f.height), "\n")
}

func (v *verifyView) resultLines(f frame) []string {
	theme := f.theme
	res := v.result
	var lines []string
	if res.Valid {
		lines = append(lines,
			theme.Valid().Render("✓ Valid token"),
			"The signature is valid.",
			"Algorithm: "+res.Algorithm,
		)
	} else {
		lines = append(lines, theme.Invalid().Render("✗ Invalid token"))
		for _, line := range wrap(firstNonEmpty(res.Error, "The signature is not valid."), f.width) {
			lines = append(lines, theme.Invalid().Render(line))
		}
		if res.Algorithm != "" {
			lines = append(lines, "Detected algorithm: "+res.Algorithm)
		}
	}

	lines = append(lines, "", theme.Title().Render("Full service response"))
	for _, line := range wrap(models.PrettyJSON(verifyResponse(*res)), f.width) {
		lines = append(lines, theme.Accent().Render(line))
	}
	if res.Valid && res.Payload != nil {
		lines = append(lines, "", theme.Title().Render("Verified payload"))
		for _, line := range wrap(models.PrettyJSON(res.Payload), f.width) {
			lines = append(lines, theme.Accent().Render(line))
		}
	}
	return append(lines, "")
}

// verifyResponse returns the raw response body, or a reconstruction of it
// when the gateway did not keep one.
func verifyResponse(res models.VerifyResult) map[string]any {
	if res.Raw != nil {
		return res.Raw
	}
	out := map[string]any{
		"success": true,
		"valid":   res.Valid,
	}
	if res.Algorithm != "" {
		out["algorithm"] = res.Algorithm
	}
	if res.Header != nil {
		out["header"] = res.Header
	}
	if res.Payload != nil {
		out["payload"] = res.Payload
	}
	if res.Error != "" {
		out["error"] = res.Error
	}
	return out
}
