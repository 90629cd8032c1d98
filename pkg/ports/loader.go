package ports

import (
	"context"

	"github.com/aretw0/fable/pkg/domain"
)

// StoryLoader defines how story files are retrieved.
// This allows the storage layer (filesystem, Redis, memory) to be decoupled.
type StoryLoader interface {
	// Load returns the raw content of a story file.
	// It returns an error wrapping domain.ErrStoryNotFound when id is unknown.
	Load(ctx context.Context, id string) ([]byte, error)

	// List returns every story id the loader can serve, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload during story authoring.
type Watchable interface {
	// Watch returns a channel that receives the id of each changed story.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

// Renderer receives the narrative output of an execution.
type Renderer interface {
	Render(ctx context.Context, span domain.Span) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, span domain.Span) error

func (f RendererFunc) Render(ctx context.Context, span domain.Span) error { return f(ctx, span) }
