// Package redis serves story files from Redis.
//
// Each story is a string key <prefix><id>; the ids are kept in the set
// <prefix>index so List does not need SCAN. Save and Delete publish the id on
// <prefix>changed, which is what Watch listens to.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/fable/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the loader touches.
const DefaultPrefix = "fable:story:"

// Loader implements ports.StoryLoader and ports.Watchable using Redis.
type Loader struct {
	client *backend.Client
	prefix string
}

type Option func(*Loader)

// WithPrefix sets the key prefix for stories.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// New creates a new Redis loader with options.
func New(address, password string, db int, opts ...Option) *Loader {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromURL creates a loader from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Loader, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a new Redis loader from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Loader {
	l := &Loader{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) key(id string) string {
	return l.prefix + id
}

func (l *Loader) indexKey() string {
	return l.prefix + "index"
}

func (l *Loader) channel() string {
	return l.prefix + "changed"
}

// Load retrieves a story from Redis.
func (l *Loader) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := l.client.Get(ctx, l.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, id)
		}
		return nil, fmt.Errorf("failed to load story from redis: %w", err)
	}
	return data, nil
}

// List returns the indexed story ids, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	ids, err := l.client.SMembers(ctx, l.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Save stores raw under id, indexes it and announces the change.
func (l *Loader) Save(ctx context.Context, id string, raw []byte) error {
	if id == "" {
		return fmt.Errorf("story id is required")
	}
	pipe := l.client.TxPipeline()
	pipe.Set(ctx, l.key(id), raw, 0)
	pipe.SAdd(ctx, l.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save story to redis: %w", err)
	}
	return l.notify(ctx, id)
}

// Delete removes a story. Deleting an unknown id is not an error.
func (l *Loader) Delete(ctx context.Context, id string) error {
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, l.key(id))
	pipe.SRem(ctx, l.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete story from redis: %w", err)
	}
	return l.notify(ctx, id)
}

func (l *Loader) notify(ctx context.Context, id string) error {
	if err := l.client.Publish(ctx, l.channel(), id).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Watch subscribes to change notifications. The channel is closed when ctx
// is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	sub := l.client.Subscribe(ctx, l.channel())
	// Wait for the subscription to be confirmed so no Save is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close releases the underlying client.
func (l *Loader) Close() error {
	return l.client.Close()
}
