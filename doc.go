/*
Package fable is an interactive-fiction engine for branching stories written in a compact plain-text markup.

A story file is a list of named blocks. Blocks hold narrative text (with optional color spans), directives that mutate a GameState of flags and counters, conditionals over that state, menus of reader options and jumps to other blocks or files.

# Concept

Stories are parsed once into immutable structures held by a registry. Each play-through is an Execution that owns its GameState and is advanced by the engine until it awaits a choice or halts. The host ("Runner") owns input and output: text goes to a ports.Renderer, choices come back as option indexes.

# Markup

	// comments start with two slashes
	:- start
	Welcome, {yellow}traveller{/yellow}.
	=- set flag:metHero
	=- incr counter:gold 5
	?- counter:gold >= 5
	  You can afford the ferry.
	?- end
	*- Take the ferry -> harbour when counter:gold >= 5
	*- Walk -> roads.story:

	:- harbour
	The ferry leaves at dawn.

# Usage

	eng, err := fable.New("./stories")
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

	exec, err := eng.Start(ctx, out, nil, "intro.story", "")
	for err == nil && exec.Status() == domain.StatusAwaitingChoice {
		for i, opt := range exec.Options() {
			fmt.Printf("%d. %s\n", i+1, opt.Label)
		}
		err = eng.Choose(ctx, out, exec, 0)
	}
*/
package fable
