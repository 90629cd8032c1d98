package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fable/pkg/adapters/redis"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, opts ...redis.Option) (*redis.Loader, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisLoader_Contract(t *testing.T) {
	loader, _ := newLoader(t)
	data := map[string][]byte{
		"intro.story":        []byte(":- start\nHello\n"),
		"chapters/one.story": []byte(":- one\n-> intro.story:\n"),
	}
	ctx := context.Background()
	for id, raw := range data {
		require.NoError(t, loader.Save(ctx, id, raw))
	}

	tests.StoryLoaderContractTest(t, loader, data)
}

func TestRedisLoader_PrefixAndDelete(t *testing.T) {
	loader, mr := newLoader(t, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, loader.Save(ctx, "a.story", []byte("x")))
	assert.True(t, mr.Exists("test:a.story"))
	members, err := mr.Members("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.story"}, members)

	require.NoError(t, loader.Delete(ctx, "a.story"))
	require.NoError(t, loader.Delete(ctx, "never.story"))

	_, err = loader.Load(ctx, "a.story")
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)
	ids, err := loader.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.Error(t, loader.Save(ctx, "", []byte("x")))
}

func TestRedisLoader_Watch(t *testing.T) {
	loader, _ := newLoader(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := loader.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, loader.Save(context.Background(), "w.story", []byte(":- start\n")))

	select {
	case id := <-changes:
		assert.Equal(t, "w.story", id)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	for range changes {
	}
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	loader, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer loader.Close()

	require.NoError(t, loader.Save(context.Background(), "u.story", []byte("ok")))
	got, err := mr.Get(redis.DefaultPrefix + "u.story")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = redis.NewFromURL("http://nope")
	assert.Error(t, err)
}
