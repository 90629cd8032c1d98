package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
)

// StoryLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.StoryLoader.
func StoryLoaderContractTest(t *testing.T, loader ports.StoryLoader, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, expectedContent := range setupData {
			content, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading story %s: %v", id, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expectedContent)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent.story")
		if err == nil {
			t.Fatal("expected error for non-existent story, got nil")
		}
		if !errors.Is(err, domain.ErrStoryNotFound) {
			t.Errorf("expected ErrStoryNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing stories: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d stories, got %d (%v)", len(setupData), len(ids), ids)
		}

		for i := 1; i < len(ids); i++ {
			if ids[i-1] > ids[i] {
				t.Errorf("list is not sorted: %v", ids)
				break
			}
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("story %s missing from list", id)
			}
		}
	})
}
