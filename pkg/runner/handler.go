package runner

import (
	"context"

	"github.com/aretw0/fable/pkg/domain"
)

// IOHandler defines the strategy for interacting with the reader.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
//
// Every IOHandler is a ports.Renderer, so it can be handed straight to the
// engine, and an adventure.Prompter.
type IOHandler interface {
	// Render presents one span of story text.
	Render(ctx context.Context, span domain.Span) error

	// Options presents the choices the execution is waiting on.
	// They are shown numbered from 1.
	Options(ctx context.Context, options []domain.Option) error

	// Input reads a response from the reader.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the reader (e.g. status updates).
	// This is distinct from story text.
	SystemOutput(ctx context.Context, msg string) error
}

// StateObserver is implemented by handlers that want to see GameState
// changes. The runner calls State with the whole state once the run starts
// and with a delta after every choice that changed something.
type StateObserver interface {
	State(ctx context.Context, diff *domain.StateDiff) error
}
