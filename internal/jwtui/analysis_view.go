package jwtui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/jwtui/styles"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/pipeline"
)

type stageDoneMsg struct {
	done pipeline.Completion
}

// analysisView renders the four stage cards of the selected token and
// triggers them on demand.
type analysisView struct {
	ctrl    *pipeline.Controller
	gw      gateway.Gateway
	timeout time.Duration
	logger  zerolog.Logger
	cursor  int
}

func newAnalysisView(gw gateway.Gateway, timeout time.Duration) *analysisView {
	return &analysisView{
		ctrl:    pipeline.NewController(),
		gw:      gw,
		timeout: timeout,
		logger:  logging.Component("analysis"),
	}
}

func (v *analysisView) reset(selected *models.TokenRecord) {
	v.ctrl.Reset(selected)
	v.cursor = 0
}

// process starts stage and returns the command that runs it. It returns nil
// when the stage cannot be triggered right now.
func (v *analysisView) process(stage pipeline.Stage) tea.Cmd {
	req, err := v.ctrl.Begin(stage)
	if err != nil {
		v.logger.Debug().Err(err).Str("stage", stage.String()).Msg("stage not triggered")
		return nil
	}

	gw, timeout := v.gw, v.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return stageDoneMsg{done: req.Execute(ctx, gw)}
	}
}

func (v *analysisView) apply(msg stageDoneMsg) {
	if !v.ctrl.Complete(msg.done) {
		return
	}
	// Follow the run: move to the stage that just became available.
	if next := int(msg.done.Stage) + 1; next < len(pipeline.Stages()) {
		if v.ctrl.Status(pipeline.Stage(next)) == pipeline.StatusReady && v.cursor == int(msg.done.Stage) {
			v.cursor = next
		}
	}
}

func (v *analysisView) HandleKey(msg tea.KeyMsg) tea.Cmd {
	stages := pipeline.Stages()
	switch msg.String() {
	case "j", "down":
		if v.cursor < len(stages)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter", " ", "p":
		return v.process(stages[v.cursor])
	}
	return nil
}

func (v *analysisView) View(f frame) string {
	theme := f.theme
	token := v.ctrl.Token()
	if token == nil {
		return theme.Muted().Render(emptyStateText)
	}

	lines := []string{theme.Title().Render("Token: " + fit(token.Name, maxInt(1, f.width-7)))}
	for _, line := range wrap(token.Token, f.width) {
		lines = append(lines, theme.Muted().Render(line))
	}
	lines = append(lines, "")

	anchor := 0
	for i, card := range v.ctrl.Cards() {
		cardLines := renderCard(card, f, i == v.cursor)
		if i == v.cursor {
			anchor = len(lines) + len(cardLines) - 1
		}
		lines = append(lines, cardLines...)
	}
	return strings.Join(window(lines, anchor, f.height), "\n")
}

func renderCard(card pipeline.Card, f frame, selected bool) []string {
	theme := f.theme
	inner := maxInt(1, f.width-2)

	marker := "  "
	titleStyle := theme.Title()
	if selected {
		marker = "> "
		titleStyle = theme.Selected()
	}
	head := marker + titleStyle.Render(card.Title)
	if label := card.Status.Label(); label != "" {
		head += "  " + statusStyle(theme, card).Render(label)
	}
	lines := []string{head}

	switch card.Trigger {
	case pipeline.TriggerEnabled:
		lines = append(lines, "  "+theme.Accent().Render("[ "+card.TriggerLabel+" ]"))
	case pipeline.TriggerDisabled:
		label := card.TriggerLabel
		if card.Status == pipeline.StatusPending {
			label = f.spinner + " " + label
		}
		lines = append(lines, "  "+theme.Muted().Render("[ "+label+" ]"))
	}

	if card.Err != "" {
		for _, line := range wrap(card.Err, inner) {
			lines = append(lines, "  "+theme.Invalid().Render(line))
		}
	}
	if card.Status == pipeline.StatusDone {
		for _, line := range resultLines(card, inner) {
			lines = append(lines, "  "+line.style(theme).Render(line.text))
		}
	}
	return append(lines, "")
}

func statusStyle(theme styles.Theme, card pipeline.Card) lipgloss.Style {
	switch {
	case card.Status == pipeline.StatusFailed:
		return theme.Invalid()
	case card.Status == pipeline.StatusPending:
		return theme.Pending()
	case card.Verdict == pipeline.VerdictInvalid:
		return theme.Invalid()
	default:
		return theme.Valid()
	}
}

type lineKind int

const (
	lineText lineKind = iota
	lineLabel
	lineValid
	lineInvalid
	lineCode
)

type styledLine struct {
	kind lineKind
	text string
}

func (l styledLine) style(theme styles.Theme) lipgloss.Style {
	switch l.kind {
	case lineLabel:
		return theme.Title()
	case lineValid:
		return theme.Valid()
	case lineInvalid:
		return theme.Invalid()
	case lineCode:
		return theme.Accent()
	default:
		return theme.Muted()
	}
}

func appendWrapped(lines []styledLine, kind lineKind, text string, width int) []styledLine {
	for _, line := range wrap(text, width) {
		lines = append(lines, styledLine{kind: kind, text: line})
	}
	return lines
}

func resultLines(card pipeline.Card, width int) []styledLine {
	var lines []styledLine
	switch res := card.Result.(type) {
	case models.LexicalResult:
		if !res.Valid {
			return appendWrapped(lines, lineInvalid, firstNonEmpty(res.Error, "Invalid format"), width)
		}
		header, payload, signature := lexicalSegments(res)
		lines = appendWrapped(lines, lineLabel, "Header", width)
		lines = appendWrapped(lines, lineCode, header, width)
		lines = appendWrapped(lines, lineLabel, "Payload", width)
		lines = appendWrapped(lines, lineCode, payload, width)
		lines = appendWrapped(lines, lineLabel, "Signature", width)
		lines = appendWrapped(lines, lineCode, signature, width)
	case models.DecodeResult:
		lines = appendWrapped(lines, lineLabel, "Header", width)
		lines = appendWrapped(lines, lineCode, prettyJSONText(res.HeaderJSON), width)
		lines = appendWrapped(lines, lineLabel, "Payload", width)
		lines = appendWrapped(lines, lineCode, prettyJSONText(res.PayloadJSON), width)
	case models.SyntaxResult:
		if len(res.Errors) > 0 {
			lines = appendWrapped(lines, lineInvalid, "Errors found:", width)
			for _, e := range res.Errors {
				lines = appendWrapped(lines, lineInvalid, "- "+e, width)
			}
		} else if res.Valid {
			lines = appendWrapped(lines, lineValid, "Valid syntax", width)
		}
		if res.Header != nil {
			lines = appendWrapped(lines, lineLabel, "Header", width)
			lines = appendWrapped(lines, lineCode, models.PrettyJSON(res.Header), width)
		}
		if res.Payload != nil {
			lines = appendWrapped(lines, lineLabel, "Payload", width)
			lines = appendWrapped(lines, lineCode, models.PrettyJSON(res.Payload), width)
		}
	case models.SemanticResult:
		if res.Valid {
			lines = appendWrapped(lines, lineValid, "Valid", width)
			break
		}
		lines = appendWrapped(lines, lineInvalid, "Invalid", width)
		if res.Error != "" {
			lines = appendWrapped(lines, lineInvalid, "Error: "+res.Error, width)
		}
		if res.ErrorKind != "" {
			lines = appendWrapped(lines, lineText, "Kind: "+res.ErrorKind, width)
		}
	}
	return lines
}

// lexicalSegments prefers the named segments and falls back to the token list.
func lexicalSegments(res models.LexicalResult) (string, string, string) {
	header, payload, signature := res.Header, res.Payload, res.Signature
	if len(res.Tokens) == 3 {
		header = firstNonEmpty(header, res.Tokens[0])
		payload = firstNonEmpty(payload, res.Tokens[1])
		signature = firstNonEmpty(signature, res.Tokens[2])
	}
	return header, payload, signature
}

func prettyJSONText(text string) string {
	obj, err := models.ParseJSONObject(text)
	if err != nil {
		return text
	}
	return models.PrettyJSON(obj)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
