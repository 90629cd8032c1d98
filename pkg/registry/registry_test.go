package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LoadAndResolve(t *testing.T) {
	reg := registry.NewRegistry()

	_, err := reg.Load("a.story", []byte(":- start\nhi\n:- other\nthere\n"))
	require.NoError(t, err)
	_, err = reg.Load("empty.story", []byte("// no blocks\n"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		dest      domain.Destination
		wantFile  string
		wantBlock string
		wantErr   string
	}{
		{"local block", domain.BlockRef("other"), "a.story", "other", ""},
		{"file entry", domain.FileRef("a.story", ""), "a.story", "start", ""},
		{"file block", domain.FileRef("a.story", "other"), "a.story", "other", ""},
		{"missing block", domain.BlockRef("nowhere"), "", "", "block not found"},
		{"missing file", domain.FileRef("b.story", "start"), "", "", "file not loaded"},
		{"entry of empty file", domain.FileRef("empty.story", ""), "", "", "file has no blocks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story, block, err := reg.Resolve(tt.dest, "a.story")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrResolution))
				var re *domain.ResolutionError
				require.True(t, errors.As(err, &re))
				assert.Equal(t, tt.wantErr, re.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, story.File)
			assert.Equal(t, tt.wantBlock, block.Name)
		})
	}
}

func TestRegistry_FailedReloadKeepsPrevious(t *testing.T) {
	reg := registry.NewRegistry()
	_, err := reg.Load("a.story", []byte(":- start\nv1\n"))
	require.NoError(t, err)

	_, err = reg.Load("a.story", []byte(":- start\n?- flag:x\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	story, ok := reg.Get("a.story")
	require.True(t, ok)
	assert.Equal(t, "v1", story.Block("start").Nodes[0].(domain.TextRun).Content)
}

func TestRegistry_Sync(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"good.story": ":- start\nok\n",
		"bad.story":  ":- start\n{red}open\n",
	})
	reg := registry.NewRegistry()
	_, err := reg.Load("stale.story", []byte(":- start\n"))
	require.NoError(t, err)

	err = reg.Sync(context.Background(), loader)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	assert.Equal(t, []string{"good.story"}, reg.Files())
}

func TestRegistry_LoadAll(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"a.story": ":- start\n"})
	reg := registry.NewRegistry()

	require.NoError(t, reg.LoadAll(context.Background(), loader, "a.story"))
	err := reg.LoadAll(context.Background(), loader, "missing.story")
	assert.True(t, errors.Is(err, domain.ErrStoryNotFound))
}

func TestRegistry_ConcurrentReadsDuringReload(t *testing.T) {
	reg := registry.NewRegistry()
	_, err := reg.Load("a.story", []byte(":- start\none\n"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, block, err := reg.Lookup("a.story", "start")
				if err != nil || len(block.Nodes) != 1 {
					t.Errorf("observed a partial story: %v", err)
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		_, _ = reg.Load("a.story", []byte(":- start\ntwo\n"))
	}
	wg.Wait()
}
