package fable_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
)

// ExampleNew_library runs a story held in memory, without reading from the filesystem.
func ExampleNew_library() {
	loader := memory.NewLoader(map[string]string{
		"hero.story": `:- start
Welcome
=- set flag:metHero
*- Continue -> end when flag:metHero==true

:- end
The hero greets you.
`,
	})

	eng, err := fable.New("", fable.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if err := eng.Sync(ctx); err != nil {
		log.Fatal(err)
	}

	out := ports.RendererFunc(func(ctx context.Context, span domain.Span) error {
		fmt.Print(span.Text)
		if span.LineEnd {
			fmt.Println()
		}
		return nil
	})

	exec, err := eng.Start(ctx, out, nil, "hero.story", "")
	if err != nil {
		log.Fatal(err)
	}
	for i, opt := range exec.Options() {
		fmt.Printf("%d. %s\n", i+1, opt.Label)
	}

	if err := eng.Choose(ctx, out, exec, 0); err != nil {
		log.Fatal(err)
	}
	fmt.Println(exec.Status(), "-", exec.Halt().Reason)

	// Output:
	// Welcome
	// 1. Continue
	// The hero greets you.
	// halted - block exhausted
}

// ExampleEngine_Start shows counters carried across blocks.
func ExampleEngine_Start() {
	eng, err := fable.New("", fable.WithLoader(memory.NewLoader(nil)))
	if err != nil {
		log.Fatal(err)
	}
	_, err = eng.Load("shop.story", []byte(`:- enter
=- incr counter:gold 3
-> counter
:- counter
?- counter:gold >= 5
  You buy the lamp.
?- elif counter:gold > 0
  You cannot afford the lamp.
?- else
  Your purse is empty.
?- end
`))
	if err != nil {
		log.Fatal(err)
	}

	game := domain.NewGameState()
	exec, err := eng.Start(context.Background(), nil, game, "shop.story", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(game.Counter("gold"), exec.History())

	// Output:
	// 3 [shop.story:enter shop.story:counter]
}
