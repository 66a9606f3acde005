package server

import (
	"log/slog"
	"time"
)

// Outcome is the terminal state of a request.
type Outcome uint8

const (
	OutcomeRendered Outcome = iota
	OutcomeRedirect
	OutcomeNotFound
	OutcomeError
	OutcomeRenderFailed
	OutcomeShell
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	case OutcomeRenderFailed:
		return "render_failed"
	case OutcomeShell:
		return "shell"
	default:
		return "unknown"
	}
}

// level is the log level an outcome is reported at.
func (o Outcome) level() slog.Level {
	switch o {
	case OutcomeError, OutcomeRenderFailed:
		return slog.LevelError
	case OutcomeNotFound:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Stage names a step of the request pipeline.
type Stage string

const (
	StageRefresh  Stage = "refresh"
	StageMatch    Stage = "match"
	StageRender   Stage = "render"
	StageAssemble Stage = "assemble"
)

// Observer receives request outcomes and stage timings.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOutcome(outcome Outcome, status int, d time.Duration)
	ObserveStage(stage Stage, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveOutcome(Outcome, int, time.Duration) {}
func (nopObserver) ObserveStage(Stage, time.Duration)          {}

// Observers fans out to several observers.
type Observers []Observer

func (obs Observers) ObserveOutcome(outcome Outcome, status int, d time.Duration) {
	for _, o := range obs {
		o.ObserveOutcome(outcome, status, d)
	}
}

func (obs Observers) ObserveStage(stage Stage, d time.Duration) {
	for _, o := range obs {
		o.ObserveStage(stage, d)
	}
}
