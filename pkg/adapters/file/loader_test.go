package file_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fable/internal/testutils"
	"github.com/aretw0/fable/pkg/adapters/file"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	root := t.TempDir()
	data := map[string][]byte{
		"intro.story":        []byte(":- start\nHello\n"),
		"chapters/one.story": []byte(":- start\nOne\n"),
		"chapters/notes.txt": []byte(":- start\nNotes\n"),
	}
	files := make(map[string]string, len(data))
	for k, v := range data {
		files[k] = string(v)
	}
	testutils.WriteFiles(t, root, files)

	loader, err := file.New(root)
	require.NoError(t, err)

	tests.StoryLoaderContractTest(t, loader, data)
}

func TestLoader_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"a.story":         ":- start\n",
		"README.md":       "# readme",
		".hidden/b.story": ":- start\n",
		"fable.yaml":      "name: test",
	})

	loader, err := file.New(root)
	require.NoError(t, err)

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.story"}, ids)

	_, err = loader.Load(context.Background(), "README.md")
	assert.True(t, errors.Is(err, domain.ErrStoryNotFound))

	_, err = loader.Load(context.Background(), "../escape.story")
	assert.True(t, errors.Is(err, domain.ErrStoryNotFound))
}

func TestLoader_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"a.story": ":- start\n",
		"b.fab":   ":- start\n",
	})

	loader, err := file.New(root, file.WithExtensions("fab"))
	require.NoError(t, err)

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.fab"}, ids)
}

func TestLoader_NewRejectsMissingDir(t *testing.T) {
	_, err := file.New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoader_Watch(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{"a.story": ":- start\nv1\n"})

	loader, err := file.New(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := loader.Watch(ctx)
	require.NoError(t, err)

	testutils.WriteFiles(t, root, map[string]string{"a.story": ":- start\nv2\n", "ignored.md": "x"})

	select {
	case id := <-events:
		assert.Equal(t, "a.story", id)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	cancel()
	for range events {
	}
}
