package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroStory = `:- start
Welcome
=- set flag:metHero
*- Continue -> end when flag:metHero==true
*- Leave -> gone

:- end
The hero greets you.
`

func newEngine(t *testing.T, stories map[string]string) *fable.Engine {
	t.Helper()
	eng, err := fable.New("", fable.WithLoader(memory.NewLoader(stories)))
	require.NoError(t, err)
	require.NoError(t, eng.Sync(context.Background()))
	return eng
}

func runWithInput(t *testing.T, eng *fable.Engine, input string, opts ...Option) (*fable.Execution, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]Option{WithInputHandler(NewTextHandler(strings.NewReader(input), out))}, opts...)
	r := NewRunner(opts...)

	type result struct {
		exec *fable.Execution
		err  error
	}
	done := make(chan result, 1)
	go func() {
		exec, err := r.Run(context.Background(), eng, nil, "hero.story", "")
		done <- result{exec, err}
	}()

	select {
	case res := <-done:
		return res.exec, out.String(), res.err
	case <-time.After(2 * time.Second):
		t.Fatal("runner timed out")
		return nil, "", nil
	}
}

func TestRunner_ChoosesByNumber(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	exec, out, err := runWithInput(t, eng, "1\n")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusHalted, exec.Status())
	assert.Equal(t, domain.HaltBlockExhausted, exec.Halt().Reason)
	assert.Equal(t, "Welcome\n1) Continue\n2) Leave\n\n> The hero greets you.\n", out)
}

func TestRunner_RepromptsUntilUnderstood(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	exec, out, err := runWithInput(t, eng, "7\nhmm\n\ncontinue!\n")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "I didn't understand that."))
	assert.Contains(t, out, "The hero greets you.")
	assert.Equal(t, "end", exec.Position().Block)
}

func TestRunner_ReaderExit(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	exec, out, err := runWithInput(t, eng, "quit\n")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingChoice, exec.Status())
	assert.Contains(t, out, "Bye!")

	exec, out, err = runWithInput(t, eng, "", WithHeadless(true))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingChoice, exec.Status())
	assert.NotContains(t, out, "Bye!")
}

func TestRunner_UnresolvedDestination(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	exec, _, err := runWithInput(t, eng, "leave\n")
	require.Error(t, err)

	var derr *domain.DestinationError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.HaltUnresolved, exec.Halt().Reason)
	assert.True(t, exec.Game().Flag("metHero"))
}

func TestRunner_UnknownStart(t *testing.T) {
	eng := newEngine(t, map[string]string{})
	exec, _, err := runWithInput(t, eng, "")
	assert.Nil(t, exec)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestMatchOption(t *testing.T) {
	options := []domain.Option{
		{Label: "Open the Door", Destination: domain.BlockRef("door")},
		{Label: "Walk away", Destination: domain.FileRef("road.story", "")},
	}

	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"1", 0, true},
		{" 2 ", 1, true},
		{"3", 0, false},
		{"0", 0, false},
		{"open the door", 0, true},
		{"WALK AWAY!", 1, true},
		{"door", 0, true},
		{"road.story:", 1, true},
		{"walk", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := MatchOption(tt.input, options)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatchOption_Keywords(t *testing.T) {
	options := []domain.Option{
		{Label: "Take the ferry", Keywords: []string{"boat ride", "@yes"}, Destination: domain.BlockRef("dock")},
		{Label: "Climb", Keywords: []string{"@north", "@UPS"}, Destination: domain.BlockRef("cliff")},
		{Label: "Yes", Destination: domain.BlockRef("agree")},
	}

	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"boat", 0, true},
		{"Boat Ride!", 0, true},
		{"ride", 0, true},
		{"sure", 0, true},
		{"yes", 2, true},
		{"go north", 1, true},
		{"n", 1, true},
		{"ascend", 1, true},
		{"swim", 0, false},
		{"boat ride home", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := MatchOption(tt.input, options)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// rejectingHandler fails its first Input with an InputError, then replays lines.
type rejectingHandler struct {
	*TextHandler
	rejected bool
}

func (h *rejectingHandler) Input(ctx context.Context) (string, error) {
	if !h.rejected {
		h.rejected = true
		return "", &domain.InputError{Reason: "garbled"}
	}
	return h.TextHandler.Input(ctx)
}

func TestRunner_RejectedInputIsNotUnderstood(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	out := &bytes.Buffer{}
	handler := &rejectingHandler{TextHandler: NewTextHandler(strings.NewReader("1\n"), out)}
	exec, err := NewRunner(WithInputHandler(handler)).Run(context.Background(), eng, nil, "hero.story", "")
	require.NoError(t, err)

	assert.Equal(t, "end", exec.Position().Block)
	assert.Equal(t, 1, strings.Count(out.String(), "I didn't understand that."))
}

func TestRunner_ChoosesByKeyword(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": `:- start
The road forks.
*- Follow the river [stream, water] -> river
*- Head into the hills [@north] -> hills

:- river
You follow the water.

:- hills
You climb.
`})

	exec, out, err := runWithInput(t, eng, "forward\n")
	require.NoError(t, err)
	assert.Equal(t, "hills", exec.Position().Block)
	assert.Contains(t, out, "2) Head into the hills\n")

	exec, _, err = runWithInput(t, eng, "stream\n")
	require.NoError(t, err)
	assert.Equal(t, "river", exec.Position().Block)
}
