package adventure

import (
	"context"
	"io"
	"strings"

	"github.com/aretw0/fable/pkg/domain"
)

// NotUnderstood is shown when the reader's input matches nothing.
const NotUnderstood = "I didn't understand that."

// Answer is the reading of a yes/no reply.
type Answer int

const (
	AnswerUnknown Answer = iota
	Yes
	No
	Unsure
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Unsure:
		return "unsure"
	}
	return "unknown"
}

// Direction is the reading of a movement command.
type Direction int

const (
	DirectionUnknown Direction = iota
	North
	East
	South
	West
	Up
	Down
	Return
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case Up:
		return "up"
	case Down:
		return "down"
	case Return:
		return "return"
	}
	return "unknown"
}

type vocabulary map[string]bool

func newVocabulary(words []string) vocabulary {
	v := make(vocabulary, len(words))
	for _, w := range words {
		v[Normalize(w)] = true
	}
	return v
}

var (
	answers = []struct {
		words vocabulary
		value Answer
	}{
		{newVocabulary(Affirmatives), Yes},
		{newVocabulary(Negatives), No},
		{newVocabulary(Unsuratives), Unsure},
	}
	directions = []struct {
		words vocabulary
		value Direction
	}{
		{newVocabulary(Norths), North},
		{newVocabulary(Easts), East},
		{newVocabulary(Souths), South},
		{newVocabulary(Wests), West},
		{newVocabulary(Ups), Up},
		{newVocabulary(Downs), Down},
		{newVocabulary(Returns), Return},
	}
	exits = newVocabulary(Exits)

	// named holds the word lists an option keyword can refer to as "@name".
	named = map[string]vocabulary{
		"yes": answers[0].words, "affirmatives": answers[0].words,
		"no": answers[1].words, "negatives": answers[1].words,
		"unsure": answers[2].words, "unsuratives": answers[2].words,
		"north": directions[0].words, "norths": directions[0].words,
		"east": directions[1].words, "easts": directions[1].words,
		"south": directions[2].words, "souths": directions[2].words,
		"west": directions[3].words, "wests": directions[3].words,
		"up": directions[4].words, "ups": directions[4].words,
		"down": directions[5].words, "downs": directions[5].words,
		"return": directions[6].words, "returns": directions[6].words,
		"exit": exits, "exits": exits,
	}
)

// IsVocabulary reports whether name, with or without its leading "@",
// names a word list. Names are case-insensitive and may be the singular
// ("yes", "north") or the list's plural ("affirmatives", "norths").
func IsVocabulary(name string) bool {
	_, ok := named[vocabularyKey(name)]
	return ok
}

// InVocabulary reports whether input is one of the words of the list
// called name. Membership is tested list by list, so "n" is in both @no
// and @north. Unknown names match nothing.
func InVocabulary(name, input string) bool {
	return named[vocabularyKey(name)][Normalize(input)]
}

func vocabularyKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}

// ParseAnswer reads a yes/no reply. Lists are checked in the order
// affirmative, negative, unsure, so "n" is a no.
func ParseAnswer(input string) Answer {
	n := Normalize(input)
	for _, a := range answers {
		if a.words[n] {
			return a.value
		}
	}
	return AnswerUnknown
}

// ParseDirection reads a movement command. "n" is north here.
func ParseDirection(input string) Direction {
	n := Normalize(input)
	for _, d := range directions {
		if d.words[n] {
			return d.value
		}
	}
	return DirectionUnknown
}

// IsExit reports whether input asks to leave the story.
func IsExit(input string) bool {
	return exits[Normalize(input)]
}

// ApplyAnswer records a yes or no as a flag. Other answers leave the
// GameState untouched and report false.
func ApplyAnswer(game *domain.GameState, flag string, a Answer) bool {
	switch a {
	case Yes:
		game.SetFlag(flag, true)
	case No:
		game.SetFlag(flag, false)
	default:
		return false
	}
	return true
}

// Prompter is the reader surface the questions run on.
// The runner's IOHandlers satisfy it.
type Prompter interface {
	Render(ctx context.Context, span domain.Span) error
	Input(ctx context.Context) (string, error)
}

// AskYesNo asks question until the reply reads as yes, no or unsure.
// It returns the Prompter's error unchanged, and io.EOF when the reader
// asks to exit.
func AskYesNo(ctx context.Context, p Prompter, question string) (Answer, error) {
	return ask(ctx, p, question, ParseAnswer, AnswerUnknown)
}

// AskDirection asks question until the reply reads as a direction.
func AskDirection(ctx context.Context, p Prompter, question string) (Direction, error) {
	return ask(ctx, p, question, ParseDirection, DirectionUnknown)
}

func ask[T comparable](ctx context.Context, p Prompter, question string, parse func(string) T, unknown T) (T, error) {
	for {
		if err := p.Render(ctx, domain.Span{Text: question, Color: domain.ColorCyan, LineEnd: true}); err != nil {
			return unknown, err
		}
		input, err := p.Input(ctx)
		if err != nil {
			return unknown, err
		}
		if Normalize(input) == "" {
			continue
		}
		if IsExit(input) {
			return unknown, io.EOF
		}
		if v := parse(input); v != unknown {
			return v, nil
		}
		if err := p.Render(ctx, domain.Span{Text: NotUnderstood, Color: domain.ColorWhite, LineEnd: true}); err != nil {
			return unknown, err
		}
	}
}
