package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/google/uuid"
)

// Runner handles the read-choose loop of the Fable engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	Headless bool
	RunID    string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run starts an execution at file:block and keeps choosing until it halts.
//
// It returns nil when the story halts normally or the reader leaves
// ("exit", "quit" or end of input); the execution tells which. A start that
// cannot be resolved returns its error and a nil execution. A destination
// that fails mid-run returns the *domain.DestinationError.
func (r *Runner) Run(ctx context.Context, engine *fable.Engine, game *domain.GameState, file, block string) (*fable.Execution, error) {
	handler := r.resolveHandler()
	logger := r.Logger.With("run_id", r.RunID)
	logger.Info("run started", "file", file, "block", block)

	exec, err := engine.Start(ctx, handler, game, file, block)
	if exec == nil {
		return nil, err
	}
	if oerr := r.observe(ctx, handler, domain.Diff(nil, exec.Game())); oerr != nil {
		return exec, oerr
	}

	for err == nil && exec.Status() == domain.StatusAwaitingChoice {
		options := exec.Options()
		if err := handler.Options(ctx, options); err != nil {
			return exec, fmt.Errorf("output error: %w", err)
		}

		index, ierr := r.readChoice(ctx, handler, options)
		if ierr != nil {
			if errors.Is(ierr, io.EOF) {
				logger.Info("reader left", "at", exec.Position().String())
				r.farewell(ctx, handler)
				return exec, nil
			}
			return exec, ierr
		}

		logger.Debug("choice", "at", exec.Position().String(), "index", index, "label", options[index].Label)
		before := exec.Game().Snapshot()
		err = engine.Choose(ctx, handler, exec, index)

		if diff := domain.Diff(before, exec.Game()); diff != nil {
			logger.Debug("state changed", "flags", diff.Flags, "counters", diff.Counters)
			if oerr := r.observe(ctx, handler, diff); oerr != nil && err == nil {
				err = oerr
			}
		}
	}

	if h := exec.Halt(); h != nil {
		logger.Info("run halted", "at", exec.Position().String(), "reason", h.Reason)
	}
	return exec, err
}

// readChoice reads until the input names one of options.
func (r *Runner) readChoice(ctx context.Context, handler IOHandler, options []domain.Option) (int, error) {
	for {
		input, err := handler.Input(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return 0, ctx.Err()
		case err == io.EOF:
			return 0, err
		case errors.Is(err, domain.ErrInput):
			// A rejected line reads as one that matched nothing.
			r.Logger.Debug("input rejected", "err", err)
			input = ""
		default:
			return 0, fmt.Errorf("input error: %w", err)
		}
		if err == nil && strings.TrimSpace(input) == "" {
			continue
		}
		if input != "" {
			if adventure.IsExit(input) {
				return 0, io.EOF
			}
			if index, ok := MatchOption(input, options); ok {
				return index, nil
			}
		}
		if err := handler.SystemOutput(ctx, adventure.NotUnderstood); err != nil {
			return 0, fmt.Errorf("output error: %w", err)
		}
	}
}

// observe reports the state delta to handlers that implement StateObserver.
func (r *Runner) observe(ctx context.Context, handler IOHandler, diff *domain.StateDiff) error {
	obs, ok := handler.(StateObserver)
	if !ok || diff == nil {
		return nil
	}
	if err := obs.State(ctx, diff); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) farewell(ctx context.Context, handler IOHandler) {
	if !r.Headless {
		_ = handler.SystemOutput(ctx, "Bye!")
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(os.Stdin, os.Stdout)
	if !r.Headless {
		fmt.Fprintln(os.Stdout, "--- Fable ---")
	}
	// Memoize to prevent creating new pumps on subsequent Run calls.
	r.Handler = th
	return th
}
