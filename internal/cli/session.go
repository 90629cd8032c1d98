package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/fable/pkg/runner"
)

// RunSession plays the story once, from the entry point to a halt or until
// the reader leaves.
func RunSession(opts RunOptions) error {
	project, err := OpenProject(opts.project())
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := project.NewEngine(sigCtx)
	if err != nil {
		return fmt.Errorf("error initializing fable: %w", err)
	}

	printBanner(opts)

	handler := createHandler(opts, project.Config, os.Stdin, os.Stdout)
	r := runner.NewRunner(createRunnerOptions(project.Logger, opts.Headless, handler)...)

	file, block := project.EntryPoint(engine, opts.File, opts.Block)
	exec, runErr := r.Run(sigCtx, engine, nil, file, block)

	// If context was canceled (signal received), ensure runErr reflects it if it doesn't already
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(exec, runErr, opts.JSON || opts.Headless, sigCtx.Signal())

	return handleExecutionError(runErr)
}
