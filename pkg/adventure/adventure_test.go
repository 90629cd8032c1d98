package adventure_test

import (
	"context"
	"io"
	"testing"

	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	inputs   []string
	rendered []domain.Span
}

func (s *scripted) Render(ctx context.Context, span domain.Span) error {
	s.rendered = append(s.rendered, span)
	return nil
}

func (s *scripted) Input(ctx context.Context) (string, error) {
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Yes, please! ": "yes please",
		"I don't know":    "i dont know",
		"10-4":            "104",
		"ÉAST":            "éast",
		"\t":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, adventure.Normalize(in), in)
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input string
		want  adventure.Answer
	}{
		{"Yes", adventure.Yes},
		{"yeah, sure", adventure.Yes},
		{"10-4", adventure.Yes},
		{"n", adventure.No},
		{"No way!", adventure.No},
		{"I don't know", adventure.Unsure},
		{"maybe", adventure.Unsure},
		{"banana", adventure.AnswerUnknown},
		{"", adventure.AnswerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, adventure.ParseAnswer(tt.input))
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  adventure.Direction
	}{
		{"n", adventure.North},
		{"Go forward", adventure.North},
		{"right", adventure.East},
		{"S", adventure.South},
		{"go left", adventure.West},
		{"climb up", adventure.Up},
		{"descend", adventure.Down},
		{"run away!", adventure.Return},
		{"sideways", adventure.DirectionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, adventure.ParseDirection(tt.input))
		})
	}
}

func TestIsExit(t *testing.T) {
	assert.True(t, adventure.IsExit("Quit"))
	assert.True(t, adventure.IsExit("exit game"))
	assert.False(t, adventure.IsExit("quitter"))
}

func TestAskYesNo(t *testing.T) {
	p := &scripted{inputs: []string{"", "what is this", "huh?"}}

	got, err := adventure.AskYesNo(context.Background(), p, "Open the door?")
	require.NoError(t, err)
	assert.Equal(t, adventure.Unsure, got)

	// The question is shown once per read; an unparseable reply gets the
	// not-understood line.
	var texts []string
	for _, s := range p.rendered {
		texts = append(texts, s.Text)
	}
	assert.Equal(t, []string{
		"Open the door?",
		"Open the door?",
		adventure.NotUnderstood,
		"Open the door?",
	}, texts)
	assert.Equal(t, domain.ColorCyan, p.rendered[0].Color)
}

func TestAskDirection_EOFAndExit(t *testing.T) {
	_, err := adventure.AskDirection(context.Background(), &scripted{}, "Where to?")
	assert.ErrorIs(t, err, io.EOF)

	_, err = adventure.AskDirection(context.Background(), &scripted{inputs: []string{"quit"}}, "Where to?")
	assert.ErrorIs(t, err, io.EOF)

	d, err := adventure.AskDirection(context.Background(), &scripted{inputs: []string{"west"}}, "Where to?")
	require.NoError(t, err)
	assert.Equal(t, adventure.West, d)
}

func TestApplyAnswer(t *testing.T) {
	game := domain.NewGameState()

	assert.True(t, adventure.ApplyAnswer(game, "brave", adventure.Yes))
	assert.True(t, game.Flag("brave"))

	assert.True(t, adventure.ApplyAnswer(game, "brave", adventure.No))
	assert.False(t, game.Flag("brave"))

	game.SetFlag("brave", true)
	assert.False(t, adventure.ApplyAnswer(game, "brave", adventure.Unsure))
	assert.True(t, game.Flag("brave"))
}
