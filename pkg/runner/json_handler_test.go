package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(line), &evt), line)
		events = append(events, evt)
	}
	return events
}

func TestJSONHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)
	ctx := context.Background()

	require.NoError(t, handler.Render(ctx, domain.Span{Text: "Hello", Color: domain.ColorGreen, LineEnd: true}))
	require.NoError(t, handler.Options(ctx, []domain.Option{
		{Label: "Continue", Destination: domain.FileRef("next.story", "")},
	}))
	require.NoError(t, handler.SystemOutput(ctx, "note"))

	events := decodeEvents(t, buf)
	require.Len(t, events, 3)

	assert.Equal(t, Event{Type: EventText, Text: "Hello", Color: domain.ColorGreen, LineEnd: true}, events[0])
	assert.Equal(t, EventOptions, events[1].Type)
	assert.Equal(t, []OptionView{{Number: 1, Label: "Continue", Destination: "next.story:"}}, events[1].Options)
	assert.Equal(t, Event{Type: EventSystem, Message: "note"}, events[2])
}

func TestJSONHandler_Input(t *testing.T) {
	in := strings.Join([]string{
		`{"choice": 2}`,
		`{"input": "Go north"}`,
		``,
		`"quoted"`,
		`plain text`,
		`{not json`,
	}, "\n")
	handler := NewJSONHandler(strings.NewReader(in), io.Discard)
	ctx := context.Background()

	for _, want := range []string{"2", "Go north", "quoted", "plain text", "{not json"} {
		got, err := handler.Input(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_StateEvents(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": `:- start
=- set flag:metHero
*- Pay -> shop
:- shop
=- decr counter:gold 3
=- incr counter:score
`})

	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewJSONHandler(strings.NewReader(`{"choice": 1}`+"\n"), out)))
	exec, err := r.Run(context.Background(), eng, nil, "hero.story", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHalted, exec.Status())

	var states []*domain.StateDiff
	for _, evt := range decodeEvents(t, out) {
		if evt.Type == EventState {
			states = append(states, evt.State)
		}
	}
	require.Len(t, states, 2)
	assert.Equal(t, &domain.StateDiff{
		Flags:    map[string]bool{"metHero": true},
		Counters: map[string]int{domain.DefaultCounter: 0},
	}, states[0])
	assert.Equal(t, &domain.StateDiff{
		Counters: map[string]int{"gold": -3, domain.DefaultCounter: 1},
	}, states[1])
}

func TestJSONHandler_OversizedLineIsRecoverable(t *testing.T) {
	eng := newEngine(t, map[string]string{"hero.story": heroStory})

	in := strings.Repeat("a", 4097) + "\n" + `{"choice": 1}` + "\n"
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewJSONHandler(strings.NewReader(in), out)))
	exec, err := r.Run(context.Background(), eng, nil, "hero.story", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHalted, exec.Status())
	assert.Equal(t, "end", exec.Position().Block)

	var system []string
	for _, evt := range decodeEvents(t, out) {
		if evt.Type == EventSystem {
			system = append(system, evt.Message)
		}
	}
	require.NotEmpty(t, system)
	assert.Contains(t, system[0], "the limit is 4096")
	assert.Contains(t, system[0], "Please try again.")
}

func TestJSONHandler_InvalidUTF8IsReported(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader("\xff\xfe\n2\n"), out)

	got, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	events := decodeEvents(t, out)
	require.Len(t, events, 1)
	assert.Equal(t, EventSystem, events[0].Type)
	assert.Contains(t, events[0].Message, "not valid UTF-8")
}
