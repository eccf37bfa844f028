// Package pipeline implements the four-stage dependent analysis run.
//
// A Controller owns the per-run state for one selected token. Stages are only
// started by explicit user action, and stage N becomes runnable only after
// stage N-1 completed with a non-negative verdict. Gateway calls happen
// outside the Controller: Begin hands out a Request, the caller executes it
// wherever it likes, and Complete applies the result if it still belongs to
// the current run.
package pipeline

import "fmt"

// Stage is one step of the analysis pipeline.
type Stage int

const (
	StageLexical Stage = iota
	StageDecode
	StageSyntax
	StageSemantic
)

const stageCount = 4

// Stages lists the stages in execution order.
func Stages() []Stage {
	return []Stage{StageLexical, StageDecode, StageSyntax, StageSemantic}
}

// ParseStage maps a stage name to a Stage.
func ParseStage(name string) (Stage, bool) {
	for _, s := range Stages() {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

func (s Stage) String() string {
	switch s {
	case StageLexical:
		return "lexical"
	case StageDecode:
		return "decode"
	case StageSyntax:
		return "syntax"
	case StageSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Title is the card heading.
func (s Stage) Title() string {
	switch s {
	case StageLexical:
		return "Lexical Analysis"
	case StageDecode:
		return "Decoder"
	case StageSyntax:
		return "Syntax Analysis"
	case StageSemantic:
		return "Semantic Analysis"
	default:
		return s.String()
	}
}

func (s Stage) valid() bool {
	return s >= StageLexical && s <= StageSemantic
}

func (s Stage) next() (Stage, bool) {
	if s >= StageSemantic || s < StageLexical {
		return 0, false
	}
	return s + 1, true
}

// Status is the lifecycle state of a stage within a run.
type Status int

const (
	// StatusLocked means the predecessor has not succeeded (or there is no token).
	StatusLocked Status = iota
	// StatusReady means the stage may be triggered.
	StatusReady
	// StatusPending means a gateway call is outstanding.
	StatusPending
	// StatusDone means the call returned a result, whatever its verdict.
	StatusDone
	// StatusFailed means the call itself failed; the stage may be retried.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusReady:
		return "ready"
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label is the status line shown on a card.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Processing..."
	case StatusDone:
		return "Completed"
	case StatusFailed:
		return "Error"
	default:
		return ""
	}
}

// Verdict is the validity reported by a completed stage.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictValid
	VerdictInvalid
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// Trigger is the state of a stage's "Process" affordance.
type Trigger int

const (
	TriggerHidden Trigger = iota
	TriggerEnabled
	TriggerDisabled
)

const (
	LabelProcess    = "Process"
	LabelProcessing = "Processing..."
)

// TriggerFor derives the affordance purely from the stage status.
func TriggerFor(status Status) (Trigger, string) {
	switch status {
	case StatusReady, StatusFailed:
		return TriggerEnabled, LabelProcess
	case StatusPending:
		return TriggerDisabled, LabelProcessing
	case StatusLocked:
		return TriggerDisabled, LabelProcess
	default:
		return TriggerHidden, ""
	}
}
