package fable

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/internal/runtime"
	"github.com/aretw0/fable/pkg/adapters/file"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
	"github.com/aretw0/fable/pkg/registry"
)

// Execution is a single play-through. See Engine.Start.
type Execution = runtime.Execution

// Engine is the high-level entry point for the Fable library.
// It wires a loader, a story registry and the runtime behind one API.
type Engine struct {
	runtime  *runtime.Engine
	registry *registry.Registry
	loader   ports.StoryLoader
	palette  []domain.ColorTag
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom StoryLoader, bypassing the default file loader.
func WithLoader(l ports.StoryLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithRegistry shares an existing registry instead of creating one.
// WithPalette is ignored when a registry is injected.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPalette sets the color names story text may use.
func WithPalette(colors ...domain.ColorTag) Option {
	return func(e *Engine) {
		e.palette = colors
	}
}

// WithMaxSteps bounds how many nodes one Start or Choose call may walk.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New initializes a new Fable Engine.
// By default, stories are read from the directory at dir.
// If WithLoader is provided, dir may be empty and only names the engine.
//
// New does not read any story; call Sync or LoadAll before Start.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if eng.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		l, err := file.New(dir, file.WithLogger(eng.logger))
		if err != nil {
			return nil, err
		}
		eng.loader = l
		eng.Name = filepath.Base(l.Root())
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("story", eng.Name)
	}

	if eng.registry == nil {
		var parserOpts []compiler.Option
		if len(eng.palette) > 0 {
			parserOpts = append(parserOpts, compiler.WithPalette(eng.palette...))
		}
		eng.registry = registry.NewRegistry(
			registry.WithParser(compiler.NewParser(parserOpts...)),
			registry.WithLogger(eng.logger),
		)
	}

	eng.runtime = runtime.NewEngine(
		eng.registry,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithMaxSteps(eng.maxSteps),
	)
	return eng, nil
}

// Load parses raw and registers it under fileID.
// A story that fails to parse leaves the previous version in place.
func (e *Engine) Load(fileID string, raw []byte) (*domain.Story, error) {
	return e.registry.Load(fileID, raw)
}

// LoadAll reads the given story ids from the loader.
func (e *Engine) LoadAll(ctx context.Context, ids ...string) error {
	return e.registry.LoadAll(ctx, e.loader, ids...)
}

// Sync reads every story the loader lists. See registry.Registry.Sync.
func (e *Engine) Sync(ctx context.Context) error {
	return e.registry.Sync(ctx, e.loader)
}

// Start begins an execution at file:block and runs it until it awaits a
// choice or halts. An empty block starts at the file's entry block.
// A nil game starts from a fresh GameState.
func (e *Engine) Start(ctx context.Context, out ports.Renderer, game *domain.GameState, fileID, block string) (*Execution, error) {
	return e.runtime.Start(ctx, out, game, fileID, block)
}

// Choose selects the 0-based option index of an awaiting execution.
func (e *Engine) Choose(ctx context.Context, out ports.Renderer, exec *Execution, index int) error {
	return e.runtime.Choose(ctx, out, exec, index)
}

// Inspect returns every registered story, sorted by file id.
func (e *Engine) Inspect() []*domain.Story {
	return e.registry.Stories()
}

// Registry returns the story registry the engine reads from.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Loader returns the underlying StoryLoader used by the engine.
func (e *Engine) Loader() ports.StoryLoader {
	return e.loader
}

// Watch returns a channel that signals when a story changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
