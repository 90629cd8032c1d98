package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_ZeroValues(t *testing.T) {
	g := domain.NewGameState()

	assert.False(t, g.Flag("never_set"))
	assert.Equal(t, 0, g.Counter("never_set"))
	assert.Equal(t, 0, g.Counter(domain.DefaultCounter))
	_, ok := g.Counters[domain.DefaultCounter]
	assert.True(t, ok, "default counter should exist")
}

func TestGameState_IndependentNamespaces(t *testing.T) {
	g := domain.NewGameState()
	g.SetFlag("gold", true)
	g.SetCounter("gold", 7)

	assert.True(t, g.Flag("gold"))
	assert.Equal(t, 7, g.Counter("gold"))

	g.SetFlag("gold", false)
	assert.Equal(t, 7, g.Counter("gold"))
}

func TestGameState_AdjustCounter(t *testing.T) {
	var g domain.GameState // nil maps must still work

	g.AdjustCounter("hp", 3)
	g.AdjustCounter("hp", -5)
	assert.Equal(t, -2, g.Counter("hp"))

	g.SetFlag("x", true)
	assert.True(t, g.Flag("x"))
}

func TestGameState_Snapshot(t *testing.T) {
	g := domain.NewGameState()
	g.SetFlag("a", true)
	g.SetCounter("n", 1)

	snap := g.Snapshot()
	g.SetFlag("a", false)
	g.SetCounter("n", 2)

	assert.True(t, snap.Flag("a"))
	assert.Equal(t, 1, snap.Counter("n"))
}

func TestDirective_Apply(t *testing.T) {
	g := domain.NewGameState()

	domain.Directive{Op: domain.OpSetFlag, Target: "met"}.Apply(g)
	assert.True(t, g.Flag("met"))

	domain.Directive{Op: domain.OpClearFlag, Target: "met"}.Apply(g)
	assert.False(t, g.Flag("met"))

	domain.Directive{Op: domain.OpIncrCounter, Target: "gold", Amount: 5}.Apply(g)
	domain.Directive{Op: domain.OpDecrCounter, Target: "gold", Amount: 2}.Apply(g)
	assert.Equal(t, 3, g.Counter("gold"))

	domain.Directive{Op: domain.OpSetCounter, Target: "gold", Amount: 10}.Apply(g)
	assert.Equal(t, 10, g.Counter("gold"))
}

func TestErrors_Matching(t *testing.T) {
	var err error = &domain.ParseError{Line: 3, Column: 1, Kind: domain.ParseUnknownColor, Msg: "boom"}
	assert.True(t, errors.Is(err, domain.ErrParse))
	assert.Contains(t, err.Error(), "3:1")

	res := &domain.ResolutionError{File: "a.story", Block: "nowhere", Reason: "block not found"}
	dest := &domain.DestinationError{Destination: domain.BlockRef("nowhere"), Err: res}
	assert.True(t, errors.Is(dest, domain.ErrDestination))
	assert.True(t, errors.Is(dest, domain.ErrResolution))

	var target *domain.ResolutionError
	require.True(t, errors.As(dest, &target))
	assert.Equal(t, "nowhere", target.Block)

	assert.True(t, errors.Is(&domain.InputError{Index: 5, Count: 2}, domain.ErrInput))
}
