package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/pkg/runner"
)

// settleDelay lets an editor finish writing before the stories are re-read.
const settleDelay = 100 * time.Millisecond

type runResult struct {
	exec *fable.Execution
	err  error
}

// RunWatch plays the story in authoring mode: every change to a story file
// re-syncs the registry and restarts the run with a fresh GameState.
func RunWatch(opts RunOptions) error {
	project, err := OpenProject(opts.project())
	if err != nil {
		return err
	}
	logger := project.Logger

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	printBanner(opts)

	engine, err := project.NewEngine(sigCtx)
	if engine == nil {
		return err
	}
	changes, werr := engine.Watch(sigCtx)
	if werr != nil {
		return werr
	}

	logger.Info("Starting Watcher", "path", project.Dir)
	printSystemMessage("Watching '%s' for changes.", project.Name())

	// Reuse the same IO handler to avoid multiple Stdin Pumps (ghost readers)
	handler := createHandler(opts, project.Config, os.Stdin, os.Stdout)

	for {
		if sigCtx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Error("Reload failed", "err", err)
			printSystemMessage("%v", err)
			printSystemMessage("Waiting for changes...")
			if !waitForChange(sigCtx, changes) {
				return nil
			}
			err = reload(sigCtx, engine, changes)
			continue
		}

		file, block := project.EntryPoint(engine, opts.File, opts.Block)
		restart, rerr := runWatchIteration(sigCtx, engine, handler, logger, changes, file, block, opts.Debug)
		if !restart {
			return rerr
		}
		err = reload(sigCtx, engine, changes)
		logger.Info("Watcher restarting")
	}
}

// runWatchIteration runs once. It reports whether the watcher should restart.
func runWatchIteration(parentCtx *SignalContext, engine *fable.Engine, handler runner.IOHandler, logger *slog.Logger, changes <-chan string, file, block string, debug bool) (bool, error) {
	runCtx, runCancel := context.WithCancel(parentCtx)
	defer runCancel()

	r := runner.NewRunner(createRunnerOptions(logger, false, handler)...)

	doneCh := make(chan runResult, 1)
	go func() {
		exec, err := r.Run(runCtx, engine, nil, file, block)
		doneCh <- runResult{exec, err}
	}()

	select {
	case <-parentCtx.Done():
		runCancel()
		res := <-doneCh
		logCompletion(res.exec, context.Canceled, false, parentCtx.Signal())
		logger.Info("Stopping watcher (signal received)", "signal", parentCtx.Signal())
		return false, nil

	case id, ok := <-changes:
		runCancel()
		<-doneCh
		if !ok {
			return false, nil
		}
		logger.Info("Change detected, triggering reload", "file", id)
		if !debug {
			fmt.Printf("\n")
		}
		printSystemMessage("Change detected in '%s'.", id)
		return true, nil

	case res := <-doneCh:
		if res.err != nil && !isInterrupted(res.err) {
			logger.Error("Runtime error", "err", res.err)
			printSystemMessage("%v", res.err)
		}
		if res.err == nil && res.exec != nil && res.exec.Halt() == nil {
			// The reader left; there is nothing left to wait for.
			return false, nil
		}
		logCompletion(res.exec, res.err, false, nil)
		printSystemMessage("Waiting for changes...")
		return waitForChange(parentCtx, changes), nil
	}
}

// waitForChange blocks until a story changes. It returns false when the
// watcher should stop.
func waitForChange(ctx *SignalContext, changes <-chan string) bool {
	select {
	case <-ctx.Done():
		return false
	case id, ok := <-changes:
		if ok {
			printSystemMessage("Change detected in '%s'.", id)
		}
		return ok
	}
}

// reload waits for writes to settle, drains pending notifications and
// re-syncs the registry.
func reload(ctx context.Context, engine *fable.Engine, changes <-chan string) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(settleDelay):
	}
drain:
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				break drain
			}
		default:
			break drain
		}
	}
	err := engine.Sync(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
