package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBlockEnter EventType = "block_enter"
	EventBlockLeave EventType = "block_leave"
	EventDirective  EventType = "directive"
	EventChoice     EventType = "choice"
	EventHalt       EventType = "halt"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// BlockEvent represents entry into or exit from a block.
type BlockEvent struct {
	EventBase
	File  string `json:"file"`
	Block string `json:"block"`
}

// DirectiveEvent is emitted after a directive mutated the GameState.
type DirectiveEvent struct {
	EventBase
	Position  Position  `json:"position"`
	Directive Directive `json:"directive"`
}

// ChoiceEvent is emitted when a reader choice is accepted.
type ChoiceEvent struct {
	EventBase
	Position Position `json:"position"`
	Index    int      `json:"index"`
	Label    string   `json:"label"`
}

// HaltEvent is emitted once when an execution halts.
type HaltEvent struct {
	EventBase
	Position Position `json:"position"`
	Reason   string   `json:"reason"`
	Err      error    `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnBlockEnter func(context.Context, *BlockEvent)
	OnBlockLeave func(context.Context, *BlockEvent)
	OnDirective  func(context.Context, *DirectiveEvent)
	OnChoice     func(context.Context, *ChoiceEvent)
	OnHalt       func(context.Context, *HaltEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBlockEnter: chain(h.OnBlockEnter, other.OnBlockEnter),
		OnBlockLeave: chain(h.OnBlockLeave, other.OnBlockLeave),
		OnDirective:  chain(h.OnDirective, other.OnDirective),
		OnChoice:     chain(h.OnChoice, other.OnChoice),
		OnHalt:       chain(h.OnHalt, other.OnHalt),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
