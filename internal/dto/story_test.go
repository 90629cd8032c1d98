package dto

import (
	"testing"

	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	p := compiler.NewParser()
	a, err := p.Parse("a.story", []byte(":- start\n*- On -> next\n*- Away -> b.story:\n:- next\n-> ghost\n"))
	require.NoError(t, err)
	b, err := p.Parse("b.story", []byte(":- intro\n?- flag:x\n  -> c.story:\n?- end\n"))
	require.NoError(t, err)

	got := Summarize([]*domain.Story{a, b})
	require.Len(t, got, 2)

	assert.Equal(t, "a.story", got[0].File)
	assert.Equal(t, "start", got[0].Entry)
	assert.Equal(t, BlockSummary{Name: "start", Line: 1, Destinations: []string{"next", "b.story:"}}, got[0].Blocks[0])
	assert.Equal(t, []string{"ghost"}, got[0].Blocks[1].Unresolved)

	assert.Equal(t, []string{"c.story:"}, got[1].Blocks[0].Destinations)
	assert.Equal(t, []string{"c.story:"}, got[1].Blocks[0].Unresolved)
}
