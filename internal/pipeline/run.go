package pipeline

import (
	"context"
	"fmt"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/models"
)

// StageReport is the outcome of one stage in a headless run.
type StageReport struct {
	Stage   string `json:"stage" yaml:"stage"`
	Status  string `json:"status" yaml:"status"`
	Verdict string `json:"verdict" yaml:"verdict"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Result  any    `json:"result,omitempty" yaml:"result,omitempty"`
}

// Report is the outcome of RunAll.
type Report struct {
	Token  string        `json:"token" yaml:"token"`
	Stages []StageReport `json:"stages" yaml:"stages"`
}

// Complete reports whether every stage finished with a valid verdict.
func (r Report) Complete() bool {
	if len(r.Stages) != stageCount {
		return false
	}
	for _, s := range r.Stages {
		if s.Verdict != VerdictValid.String() {
			return false
		}
	}
	return true
}

// RunAll drives the stages of token in order, stopping at the first failed
// call or negative verdict. Stages that never became runnable are reported
// as locked.
func RunAll(ctx context.Context, gw gateway.Gateway, token models.TokenRecord) (Report, error) {
	ctrl := NewController()
	ctrl.Reset(&token)

	var runErr error
	for _, stage := range Stages() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		req, err := ctrl.Begin(stage)
		if err != nil {
			break
		}
		done := req.Execute(ctx, gw)
		ctrl.Complete(done)
		if done.Err != nil {
			runErr = fmt.Errorf("%s stage: %w", stage, done.Err)
			break
		}
	}

	report := Report{Token: token.Token}
	for _, card := range ctrl.Cards() {
		report.Stages = append(report.Stages, StageReport{
			Stage:   card.Stage.String(),
			Status:  card.Status.String(),
			Verdict: card.Verdict.String(),
			Message: card.Message,
			Error:   card.Err,
			Result:  card.Result,
		})
	}
	return report, runErr
}
