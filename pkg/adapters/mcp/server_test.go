package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/dto"
	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caveStory = `:- start
You wake in a cave.
*- Light a torch -> lit
*- Sleep -> start

:- lit
=- set flag:torch
=- incr counter:score 5
The walls glitter.
*- Leave -> outside
`

func newServer(t *testing.T) *Server {
	t.Helper()
	eng, err := fable.New("", fable.WithLoader(memory.NewLoader(map[string]string{"cave.story": caveStory})))
	require.NoError(t, err)
	require.NoError(t, eng.Sync(context.Background()))
	return NewServer(eng, nil)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListAndGetStory(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleListStories(ctx, call("list_stories", nil))
	require.NoError(t, err)
	var list []dto.StorySummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "start", list[0].Entry)

	res, err = s.handleGetStory(ctx, call("get_story", map[string]any{"file": "cave.story"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"unresolved":["outside"]`)

	res, err = s.handleGetStory(ctx, call("get_story", map[string]any{"file": "nope.story"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetStory(ctx, call("get_story", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetGraph(t *testing.T) {
	res, err := newServer(t).handleGetGraph(context.Background(), call("get_graph", nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "graph TD")
	assert.Contains(t, text(t, res), "missing_outside")
}

func TestPlay(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handlePlay(ctx, call("play", map[string]any{"file": "cave.story", "choices": "2, 1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got PlayResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, "You wake in a cave.\nYou wake in a cave.\nThe walls glitter.\n", got.Output)
	assert.Equal(t, "awaiting_choice", got.Status)
	assert.Equal(t, []string{"Leave"}, got.Options)
	assert.True(t, got.Game.Flags["torch"])
	assert.Equal(t, 5, got.Game.Counters["score"])
	assert.Equal(t, []string{"cave.story:start", "cave.story:start", "cave.story:lit"}, got.History)

	res, err = s.handlePlay(ctx, call("play", map[string]any{"file": "cave.story", "choices": "1,1"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, "halted", got.Status)
	assert.Equal(t, "unresolved destination", got.Halt)
	assert.NotEmpty(t, got.Error)
}

func TestPlay_LogsHaltError(t *testing.T) {
	eng, err := fable.New("", fable.WithLoader(memory.NewLoader(map[string]string{"cave.story": caveStory})))
	require.NoError(t, err)
	require.NoError(t, eng.Sync(context.Background()))

	var buf bytes.Buffer
	s := NewServer(eng, slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err = s.handlePlay(context.Background(), call("play", map[string]any{"file": "cave.story", "choices": "1,1"}))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "MCP play halted with error", entry["msg"])
	assert.Equal(t, "cave.story", entry["file"])
	assert.Contains(t, entry, "err")
	assert.NotContains(t, entry, "error")
}

func TestPlay_BadInput(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	for _, args := range []map[string]any{
		{"file": "cave.story", "choices": "x"},
		{"file": "cave.story", "choices": "9"},
		{"file": "missing.story"},
		{},
	} {
		res, err := s.handlePlay(ctx, call("play", args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "%v", args)
	}
}
