package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "graph", "serve", "mcp", "push", "syntax", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestProjectOptions(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"graph"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--redis-url", "redis://localhost:6379", "--debug"}))

	opts := projectOptions(cmd, []string{"stories"})
	assert.Equal(t, "stories", opts.Dir)
	assert.Equal(t, "redis://localhost:6379", opts.RedisURL)
	assert.True(t, opts.Debug)
}

func TestSyntaxDocCoversTokens(t *testing.T) {
	for _, token := range []string{":-", "?-", "=-", "*-", "->", "//", "{{"} {
		assert.Contains(t, syntaxDoc, token)
	}
}
