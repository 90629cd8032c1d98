package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fable/pkg/adapters/memory"
	contract "github.com/aretw0/fable/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"intro.story":    ":- start\nHello World\n",
		"chapter2.story": ":- start\nGoodbye\n",
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	contract.StoryLoaderContractTest(t, memory.NewLoader(data), bytesData)
}

func TestInMemoryLoader_Watch(t *testing.T) {
	loader := memory.NewLoader(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	loader.Put("new.story", ":- a\n")

	select {
	case id := <-ch:
		if id != "new.story" {
			t.Errorf("expected new.story, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}
