package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/config"
	"github.com/aretw0/fable/internal/logging"
	"github.com/aretw0/fable/internal/presentation/tui"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/runner"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	once   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.once.Do(func() { signal.Stop(sc.sigCh) })
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger from the log section.
// --debug forces the debug level; it writes to Stderr (to separate from the story on Stdout).
func createLogger(cfg config.Log, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case debug:
		level = slog.LevelDebug
	case cfg.Level == "":
		// Quiet unless --debug or a level was asked for.
		return logging.NewNop(), nil
	}
	return logging.New(level, cfg.Format), nil
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockEnter: func(ctx context.Context, e *domain.BlockEvent) {
			logger.Debug("Enter Block", "file", e.File, "block", e.Block)
		},
		OnBlockLeave: func(ctx context.Context, e *domain.BlockEvent) {
			logger.Debug("Leave Block", "file", e.File, "block", e.Block)
		},
		OnDirective: func(ctx context.Context, e *domain.DirectiveEvent) {
			logger.Debug("Directive", "at", e.Position.String(), "op", e.Directive.Op, "target", e.Directive.Target, "amount", e.Directive.Amount)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.Debug("Choice", "at", e.Position.String(), "index", e.Index, "label", e.Label)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			if e.Err != nil {
				logger.Debug("Halt", "at", e.Position.String(), "reason", e.Reason, "err", e.Err)
				return
			}
			logger.Debug("Halt", "at", e.Position.String(), "reason", e.Reason)
		},
	}
}

// createHandler picks the IO strategy: NDJSON, or text with terminal colors.
// The typewriter pacing only applies to interactive text runs.
func createHandler(opts RunOptions, cfg config.Config, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(in, out)
	}
	width := cfg.Width
	if width == 0 {
		width = terminalWidth(out)
	}
	profile := tui.DetectProfile(opts.NoColor || opts.Headless)
	handlerOpts := []runner.TextHandlerOption{
		runner.WithColor(tui.NewColorFunc(profile, cfg.Palette)),
		runner.WithWidth(width),
	}
	if !opts.Headless && !opts.Fast {
		handlerOpts = append(handlerOpts, runner.WithTypewriter(cfg.Typewriter.CharDelay, cfg.Typewriter.LineDelay))
	}
	if cfg.QuoteColors {
		handlerOpts = append(handlerOpts, runner.WithQuoteColors())
	}
	if cfg.QuestionColor != "" {
		handlerOpts = append(handlerOpts, runner.WithQuestionColor(domain.ColorTag(cfg.QuestionColor)))
	}
	return runner.NewTextHandler(in, out, handlerOpts...)
}

// terminalWidth is the column count of out when it is a terminal, else 0.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(logger *slog.Logger, headless bool, handler runner.IOHandler) []runner.Option {
	return []runner.Option{
		runner.WithLogger(logger),
		runner.WithHeadless(headless),
		runner.WithInputHandler(handler),
	}
}

func printBanner(opts RunOptions) {
	if !opts.JSON && !opts.Headless {
		tui.PrintBanner(os.Stdout, fable.Version)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(exec *fable.Execution, err error, quiet bool, sig os.Signal) {
	if quiet || exec == nil {
		return
	}
	at := exec.Position().String()

	switch {
	case isInterrupted(err) && sig == os.Interrupt:
		fmt.Printf("[CTRL+C]\n")
		printSystemMessage("Interrupted at '%s'.", at)
	case isInterrupted(err):
		fmt.Printf("\n")
		printSystemMessage("Terminated at '%s'.", at)
	case exec.Halt() != nil && exec.Halt().Err != nil:
		printSystemMessage("Stopped at '%s': %s.", at, exec.Halt().Reason)
	case exec.Halt() != nil:
		printSystemMessage("Finished at '%s'.", at)
	}
}
