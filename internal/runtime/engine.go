package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
)

// DefaultMaxSteps bounds how many nodes a single Start or Choose call may
// walk before the execution is halted. It stops jump cycles that never
// reach a menu.
const DefaultMaxSteps = 10000

// ErrStepLimit is returned when an execution exceeds the step limit.
var ErrStepLimit = errors.New("step limit exceeded")

// Resolver looks up blocks. *registry.Registry implements it.
type Resolver interface {
	Lookup(file, block string) (*domain.Story, *domain.Block, error)
	Resolve(dest domain.Destination, currentFile string) (*domain.Story, *domain.Block, error)
}

// Engine is the core state machine runner.
// It holds no per-run state; every run lives in its own Execution.
type Engine struct {
	resolver Resolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps overrides DefaultMaxSteps. Values below 1 are ignored.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine creates a new engine over the given resolver.
func NewEngine(resolver Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start resolves the starting block and runs until the execution awaits a
// choice or halts. An empty block name starts at the file's entry block.
//
// A start that cannot be resolved returns a *domain.ResolutionError and no
// execution. The GameState is mutated in place; a nil game starts fresh.
func (e *Engine) Start(ctx context.Context, out ports.Renderer, game *domain.GameState, file, block string) (*Execution, error) {
	story, b, err := e.resolver.Lookup(file, block)
	if err != nil {
		return nil, err
	}
	if game == nil {
		game = domain.NewGameState()
	}

	exec := &Execution{
		game:   game,
		status: domain.StatusRunning,
	}
	e.enter(ctx, exec, story.File, b)
	return exec, e.run(ctx, out, exec)
}

// Choose selects one of the options the execution is waiting on, by its
// 0-based index into Execution.Options, and runs on from its destination.
//
// An index out of range returns a *domain.InputError and leaves the
// execution untouched. An unresolvable destination halts the execution and
// returns a *domain.DestinationError.
func (e *Engine) Choose(ctx context.Context, out ports.Renderer, exec *Execution, index int) error {
	if exec == nil || exec.status != domain.StatusAwaitingChoice {
		return domain.ErrNotAwaiting
	}
	if index < 0 || index >= len(exec.options) {
		return &domain.InputError{Index: index, Count: len(exec.options)}
	}

	opt := exec.options[index]
	if e.hooks.OnChoice != nil {
		e.hooks.OnChoice(ctx, &domain.ChoiceEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventChoice},
			Position:  exec.Position(),
			Index:     index,
			Label:     opt.Label,
		})
	}
	e.logger.Debug("option chosen", "at", exec.Position().String(), "index", index, "label", opt.Label)

	exec.options = nil
	exec.status = domain.StatusRunning
	if err := e.transfer(ctx, exec, opt.Destination); err != nil {
		return err
	}
	return e.run(ctx, out, exec)
}

func (e *Engine) enter(ctx context.Context, exec *Execution, file string, b *domain.Block) {
	exec.file = file
	exec.block = b.Name
	exec.frames = []frame{{nodes: b.Nodes}}
	exec.history = append(exec.history, file+":"+b.Name)

	e.logger.Debug("enter block", "file", file, "block", b.Name)
	if e.hooks.OnBlockEnter != nil {
		e.hooks.OnBlockEnter(ctx, &domain.BlockEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBlockEnter},
			File:      file,
			Block:     b.Name,
		})
	}
}

func (e *Engine) leave(ctx context.Context, exec *Execution) {
	if e.hooks.OnBlockLeave != nil {
		e.hooks.OnBlockLeave(ctx, &domain.BlockEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBlockLeave},
			File:      exec.file,
			Block:     exec.block,
		})
	}
}

// transfer moves the execution to dest, halting it when dest cannot be resolved.
func (e *Engine) transfer(ctx context.Context, exec *Execution, dest domain.Destination) error {
	story, b, err := e.resolver.Resolve(dest, exec.file)
	if err != nil {
		derr := &domain.DestinationError{From: exec.Position(), Destination: dest, Err: err}
		e.halt(ctx, exec, domain.HaltUnresolved, derr)
		return derr
	}
	e.leave(ctx, exec)
	e.enter(ctx, exec, story.File, b)
	return nil
}

func (e *Engine) halt(ctx context.Context, exec *Execution, reason string, cause error) {
	exec.status = domain.StatusHalted
	exec.options = nil
	exec.halt = &domain.Halt{Reason: reason, Err: cause}

	if cause != nil {
		e.logger.Warn("execution halted", "at", exec.Position().String(), "reason", reason, "err", cause)
	} else {
		e.logger.Debug("execution halted", "at", exec.Position().String(), "reason", reason)
	}
	e.leave(ctx, exec)
	if e.hooks.OnHalt != nil {
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHalt},
			Position:  exec.Position(),
			Reason:    reason,
			Err:       cause,
		})
	}
}

// run walks nodes until the execution leaves the Running state.
func (e *Engine) run(ctx context.Context, out ports.Renderer, exec *Execution) error {
	for steps := 0; exec.status == domain.StatusRunning; steps++ {
		if err := ctx.Err(); err != nil {
			e.halt(ctx, exec, domain.HaltCancelled, err)
			return err
		}
		if steps >= e.maxSteps {
			err := fmt.Errorf("%w: %d nodes without a choice (at %s)", ErrStepLimit, e.maxSteps, exec.Position())
			e.halt(ctx, exec, domain.HaltStepLimit, err)
			return err
		}

		top := &exec.frames[len(exec.frames)-1]
		if top.idx >= len(top.nodes) {
			if len(exec.frames) == 1 {
				e.halt(ctx, exec, domain.HaltBlockExhausted, nil)
				return nil
			}
			exec.frames = exec.frames[:len(exec.frames)-1]
			continue
		}
		node := top.nodes[top.idx]
		top.idx++

		if err := e.step(ctx, out, exec, node); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) step(ctx context.Context, out ports.Renderer, exec *Execution, node domain.Node) error {
	switch n := node.(type) {
	case domain.TextRun:
		if out == nil {
			return nil
		}
		span := domain.Span{Text: n.Content, Color: n.Color, LineEnd: n.Break}
		if err := out.Render(ctx, span); err != nil {
			e.halt(ctx, exec, domain.HaltOutputFailed, err)
			return fmt.Errorf("render failed: %w", err)
		}

	case domain.Directive:
		n.Apply(exec.game)
		if e.hooks.OnDirective != nil {
			e.hooks.OnDirective(ctx, &domain.DirectiveEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDirective},
				Position:  exec.Position(),
				Directive: n,
			})
		}

	case domain.Conditional:
		branch := n.Else
		if n.Predicate.Eval(exec.game) {
			branch = n.Then
		}
		if len(branch) > 0 {
			exec.frames = append(exec.frames, frame{nodes: branch})
		}

	case domain.Jump:
		return e.transfer(ctx, exec, n.Destination)

	case domain.Menu:
		var visible []domain.Option
		for _, opt := range n.Options {
			if opt.Visible(exec.game) {
				visible = append(visible, opt)
			}
		}
		if len(visible) > 0 {
			exec.options = visible
			exec.status = domain.StatusAwaitingChoice
		}
	}
	return nil
}
