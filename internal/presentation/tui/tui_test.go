package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColorFunc(t *testing.T) {
	color := NewColorFunc(termenv.ANSI256, map[string]string{"gold": "#ffd700"})

	red := color(domain.ColorRed, "dragon")
	assert.True(t, strings.HasPrefix(red, "\x1b["), red)
	assert.Contains(t, red, "dragon")

	gold := color("gold", "coin")
	assert.NotEqual(t, "coin", gold)
	assert.Contains(t, gold, "coin")

	assert.Equal(t, "plain", color("unknown", "plain"))
}

func TestNewColorFunc_Ascii(t *testing.T) {
	color := NewColorFunc(termenv.Ascii, nil)
	assert.Equal(t, "dragon", color(domain.ColorRed, "dragon"))
	assert.Equal(t, termenv.Ascii, DetectProfile(true))
}

func TestPrintBanner(t *testing.T) {
	buf := &bytes.Buffer{}
	PrintBanner(buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), len(bannerLines)+2)
}

func TestNewMarkdownRenderer(t *testing.T) {
	render, err := NewMarkdownRenderer(60)
	require.NoError(t, err)

	out, err := render("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}
