package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

var (
	ErrNoToken      = errors.New("no token selected")
	ErrStageLocked  = errors.New("stage is locked until the previous stage succeeds")
	ErrStageBusy    = errors.New("stage is already processing")
	ErrStageDone    = errors.New("stage already completed for this token")
	ErrUnknownStage = errors.New("unknown stage")
)

// RunID identifies one pipeline run. It increases on every Reset.
type RunID uint64

type slot struct {
	status  Status
	verdict Verdict
	err     string
	message string
}

// Controller tracks the stage states and results of the current run.
type Controller struct {
	mu     sync.Mutex
	run    RunID
	token  *models.TokenRecord
	slots  [stageCount]slot
	logger zerolog.Logger

	lexical  *models.LexicalResult
	decoded  *models.DecodeResult
	syntax   *models.SyntaxResult
	semantic *models.SemanticResult
}

// NewController creates a controller with no token selected.
func NewController() *Controller {
	return &Controller{logger: logging.Component("pipeline")}
}

// Reset starts a new run for token, discarding every result of the previous
// run. A nil token leaves the controller empty.
func (c *Controller) Reset(token *models.TokenRecord) RunID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.run++
	c.slots = [stageCount]slot{}
	c.lexical, c.decoded, c.syntax, c.semantic = nil, nil, nil, nil
	c.token = nil
	if token != nil {
		rec := *token
		c.token = &rec
		c.slots[StageLexical].status = StatusReady
	}

	c.logger.Debug().
		Uint64("run_id", uint64(c.run)).
		Str("token", logging.RedactToken(tokenString(c.token))).
		Msg("pipeline reset")
	return c.run
}

// Run returns the current run identifier.
func (c *Controller) Run() RunID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

// Token returns the token of the current run, or nil.
func (c *Controller) Token() *models.TokenRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return nil
	}
	rec := *c.token
	return &rec
}

// Status returns the status of stage in the current run.
func (c *Controller) Status(stage Stage) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !stage.valid() {
		return StatusLocked
	}
	return c.slots[stage].status
}

// Begin marks stage pending and returns the request that executes it.
func (c *Controller) Begin(stage Stage) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !stage.valid() {
		return Request{}, ErrUnknownStage
	}
	if c.token == nil {
		return Request{}, ErrNoToken
	}

	switch c.slots[stage].status {
	case StatusLocked:
		return Request{}, ErrStageLocked
	case StatusPending:
		return Request{}, ErrStageBusy
	case StatusDone:
		return Request{}, ErrStageDone
	}

	req := Request{Run: c.run, Stage: stage}
	switch stage {
	case StageLexical:
		req.token = c.token.Token
	case StageDecode:
		if c.lexical == nil {
			return Request{}, ErrStageLocked
		}
		req.lexical = *c.lexical
	case StageSyntax:
		if c.decoded == nil {
			return Request{}, ErrStageLocked
		}
		req.decoded = *c.decoded
	case StageSemantic:
		if c.syntax == nil {
			return Request{}, ErrStageLocked
		}
		req.syntax = *c.syntax
	}

	c.slots[stage] = slot{status: StatusPending}
	logger := logging.WithRun(c.logger, uint64(c.run))
	logger.Debug().Str("stage", stage.String()).Msg("stage started")
	return req, nil
}

// Complete applies a finished request. It returns false when the completion
// belongs to an earlier run or the stage is no longer pending.
func (c *Controller) Complete(done Completion) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := logging.WithRun(c.logger, uint64(done.Run)).With().Str("stage", done.Stage.String()).Logger()
	if done.Run != c.run {
		logger.Debug().Uint64("current_run", uint64(c.run)).Msg("discarding stale stage result")
		return false
	}
	if !done.Stage.valid() || c.slots[done.Stage].status != StatusPending {
		logger.Debug().Msg("discarding unexpected stage result")
		return false
	}

	if done.Err != nil {
		c.slots[done.Stage] = slot{status: StatusFailed, err: gateway.Message(done.Err)}
		logger.Warn().Err(done.Err).Msg("stage failed")
		return true
	}

	var verdict Verdict
	var message string
	switch done.Stage {
	case StageLexical:
		if done.Lexical == nil {
			return c.failMissing(done.Stage, logger)
		}
		res := *done.Lexical
		c.lexical = &res
		verdict = verdictOf(res.Valid)
		message = res.Error
	case StageDecode:
		if done.Decoded == nil {
			return c.failMissing(done.Stage, logger)
		}
		res := *done.Decoded
		c.decoded = &res
		verdict = VerdictValid
	case StageSyntax:
		if done.Syntax == nil {
			return c.failMissing(done.Stage, logger)
		}
		res := *done.Syntax
		c.syntax = &res
		verdict = verdictOf(res.Valid)
		message = strings.Join(res.Errors, "; ")
	case StageSemantic:
		if done.Semantic == nil {
			return c.failMissing(done.Stage, logger)
		}
		res := *done.Semantic
		c.semantic = &res
		verdict = verdictOf(res.Valid)
		message = res.Error
	}

	c.slots[done.Stage] = slot{status: StatusDone, verdict: verdict, message: message}
	if next, ok := done.Stage.next(); ok && verdict != VerdictInvalid {
		c.slots[next].status = StatusReady
	}
	logger.Debug().Str("verdict", verdict.String()).Msg("stage completed")
	return true
}

func (c *Controller) failMissing(stage Stage, logger zerolog.Logger) bool {
	c.slots[stage] = slot{status: StatusFailed, err: "empty result"}
	logger.Warn().Msg("stage returned no result")
	return true
}

// Lexical returns the lexical result of the current run.
func (c *Controller) Lexical() (models.LexicalResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lexical == nil {
		return models.LexicalResult{}, false
	}
	return *c.lexical, true
}

// Decoded returns the decode result of the current run.
func (c *Controller) Decoded() (models.DecodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decoded == nil {
		return models.DecodeResult{}, false
	}
	return *c.decoded, true
}

// Syntax returns the syntax result of the current run.
func (c *Controller) Syntax() (models.SyntaxResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syntax == nil {
		return models.SyntaxResult{}, false
	}
	return *c.syntax, true
}

// Card is the render model of one stage.
type Card struct {
	Stage        Stage
	Title        string
	Status       Status
	Verdict      Verdict
	Trigger      Trigger
	TriggerLabel string
	// Message is the inline verdict detail (e.g. the lexical error) of a
	// completed stage.
	Message string
	// Err is the failure message of a failed call.
	Err string
	// Result is the stage output, nil unless the stage is done.
	Result any
}

// Cards returns one card per stage, or nil when no token is selected.
func (c *Controller) Cards() []Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil
	}
	cards := make([]Card, 0, stageCount)
	for _, stage := range Stages() {
		s := c.slots[stage]
		trigger, label := TriggerFor(s.status)
		card := Card{
			Stage:        stage,
			Title:        stage.Title(),
			Status:       s.status,
			Verdict:      s.verdict,
			Trigger:      trigger,
			TriggerLabel: label,
			Message:      s.message,
			Err:          s.err,
		}
		if s.status == StatusDone {
			card.Result = c.resultOf(stage)
		}
		cards = append(cards, card)
	}
	return cards
}

func (c *Controller) resultOf(stage Stage) any {
	switch stage {
	case StageLexical:
		if c.lexical != nil {
			return *c.lexical
		}
	case StageDecode:
		if c.decoded != nil {
			return *c.decoded
		}
	case StageSyntax:
		if c.syntax != nil {
			return *c.syntax
		}
	case StageSemantic:
		if c.semantic != nil {
			return *c.semantic
		}
	}
	return nil
}

// Request is a started stage waiting to be executed.
type Request struct {
	Run   RunID
	Stage Stage

	token   string
	lexical models.LexicalResult
	decoded models.DecodeResult
	syntax  models.SyntaxResult
}

// Completion is the outcome of an executed Request.
type Completion struct {
	Run   RunID
	Stage Stage

	Lexical  *models.LexicalResult
	Decoded  *models.DecodeResult
	Syntax   *models.SyntaxResult
	Semantic *models.SemanticResult

	Err error
}

// Execute calls the gateway operation for the request's stage.
func (r Request) Execute(ctx context.Context, gw gateway.Gateway) Completion {
	done := Completion{Run: r.Run, Stage: r.Stage}
	switch r.Stage {
	case StageLexical:
		res, err := gw.Lexical(ctx, r.token)
		done.Lexical, done.Err = &res, err
	case StageDecode:
		res, err := gw.Decode(ctx, r.lexical)
		done.Decoded, done.Err = &res, err
	case StageSyntax:
		res, err := gw.Syntax(ctx, r.decoded)
		done.Syntax, done.Err = &res, err
	case StageSemantic:
		res, err := gw.Semantic(ctx, r.syntax)
		done.Semantic, done.Err = &res, err
	default:
		done.Err = ErrUnknownStage
	}
	return done
}

func verdictOf(valid bool) Verdict {
	if valid {
		return VerdictValid
	}
	return VerdictInvalid
}

func tokenString(rec *models.TokenRecord) string {
	if rec == nil {
		return ""
	}
	return rec.Token
}
