package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
)

// Registry maps file ids to parsed stories.
//
// Reads are lock-free: the registry publishes an immutable map and every
// write builds a new one and swaps it in. A failed parse never replaces the
// previously loaded story.
type Registry struct {
	mu      sync.Mutex // serializes writers
	stories atomic.Pointer[map[string]*domain.Story]
	parser  *compiler.Parser
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithParser sets the parser used by Load.
func WithParser(p *compiler.Parser) Option {
	return func(r *Registry) {
		r.parser = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	empty := make(map[string]*domain.Story)
	r.stories.Store(&empty)
	return r
}

func (r *Registry) snapshot() map[string]*domain.Story {
	return *r.stories.Load()
}

// Load parses raw and registers it under fileID, replacing any previous version.
func (r *Registry) Load(fileID string, raw []byte) (*domain.Story, error) {
	story, err := r.parser.Parse(fileID, raw)
	if err != nil {
		r.logger.Warn("story rejected", "file", fileID, "err", err)
		return nil, err
	}
	r.swap(func(m map[string]*domain.Story) {
		m[fileID] = story
	})
	r.logger.Debug("story loaded", "file", fileID, "blocks", len(story.Order))
	return story, nil
}

// Remove unregisters a story. Unknown ids are ignored.
func (r *Registry) Remove(fileID string) {
	r.swap(func(m map[string]*domain.Story) {
		delete(m, fileID)
	})
}

func (r *Registry) swap(mutate func(map[string]*domain.Story)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := maps.Clone(r.snapshot())
	mutate(next)
	r.stories.Store(&next)
}

// Get returns the story registered under fileID.
func (r *Registry) Get(fileID string) (*domain.Story, bool) {
	s, ok := r.snapshot()[fileID]
	return s, ok
}

// Files returns the registered file ids in sorted order.
func (r *Registry) Files() []string {
	return slices.Sorted(maps.Keys(r.snapshot()))
}

// Stories returns the registered stories sorted by file id.
func (r *Registry) Stories() []*domain.Story {
	m := r.snapshot()
	out := make([]*domain.Story, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

// Resolve finds the block a destination points to.
// currentFile is used for block-local destinations.
func (r *Registry) Resolve(dest domain.Destination, currentFile string) (*domain.Story, *domain.Block, error) {
	file, block := dest.Target(currentFile)
	return r.Lookup(file, block)
}

// Lookup finds a block by file id and name. An empty name selects the
// file's entry block.
func (r *Registry) Lookup(file, block string) (*domain.Story, *domain.Block, error) {
	story, ok := r.Get(file)
	if !ok {
		return nil, nil, &domain.ResolutionError{File: file, Block: block, Reason: "file not loaded"}
	}
	if block == "" {
		entry, ok := story.Entry()
		if !ok {
			return nil, nil, &domain.ResolutionError{File: file, Reason: "file has no blocks"}
		}
		block = entry
	}
	b := story.Block(block)
	if b == nil {
		return nil, nil, &domain.ResolutionError{File: file, Block: block, Reason: "block not found"}
	}
	return story, b, nil
}

// LoadAll fetches the given ids from loader and registers them.
// It stops at the first failure.
func (r *Registry) LoadAll(ctx context.Context, loader ports.StoryLoader, ids ...string) error {
	for _, id := range ids {
		raw, err := loader.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", id, err)
		}
		if _, err := r.Load(id, raw); err != nil {
			return err
		}
	}
	return nil
}

// Sync loads every story the loader lists and drops registered stories the
// loader no longer has. Files that fail to load or parse keep their previous
// version; their errors are joined in the result.
func (r *Registry) Sync(ctx context.Context, loader ports.StoryLoader) error {
	ids, err := loader.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stories: %w", err)
	}

	var errs []error
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
		raw, err := loader.Load(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s: %w", id, err))
			continue
		}
		if _, err := r.Load(id, raw); err != nil {
			errs = append(errs, err)
		}
	}

	for _, id := range r.Files() {
		if !present[id] {
			r.Remove(id)
			r.logger.Debug("story removed", "file", id)
		}
	}
	return errors.Join(errs...)
}
