package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/fable/pkg/domain"
)

// Loader implements ports.StoryLoader and ports.Watchable using an in-memory map.
// It is mostly used by tests and by hosts that embed their stories.
type Loader struct {
	mu       sync.RWMutex
	stories  map[string][]byte
	watchers []chan string
}

// NewLoader creates a new Loader from story id -> text.
func NewLoader(data map[string]string) *Loader {
	stories := make(map[string][]byte, len(data))
	for k, v := range data {
		stories[k] = []byte(v)
	}
	return &Loader{stories: stories}
}

// Load returns the raw content of a story.
func (l *Loader) Load(ctx context.Context, id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.stories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, id)
	}
	return slices.Clone(content), nil
}

// List returns all story ids in sorted order.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.stories)), nil
}

// Put adds or replaces a story and notifies watchers.
func (l *Loader) Put(id, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stories == nil {
		l.stories = make(map[string][]byte)
	}
	l.stories[id] = []byte(text)

	for _, ch := range l.watchers {
		select {
		case ch <- id:
		default:
		}
	}
}

// Watch returns a channel that receives the id of every story passed to Put.
// Notifications are dropped when the consumer is not keeping up.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)
	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.watchers = slices.DeleteFunc(l.watchers, func(c chan string) bool { return c == ch })
		close(ch)
	}()
	return ch, nil
}
