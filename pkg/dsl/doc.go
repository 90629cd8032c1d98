/*
Package dsl provides a Go DSL for programmatically writing Fable stories.

It renders a fluent builder into story markup and checks the result with the
same parser the engine uses, so a story built in code behaves exactly like one
read from disk. This is particularly useful for unit tests and for hosts that
generate stories.

Example usage:

	b := dsl.New()

	b.Story("cave.story").
		Block("entrance").
		Text("A cold wind blows from the dark.").
		Set("visited").
		Option("Go in", "depths").
		OptionWhen("Light the torch", "lit", "flag:torch").
		Block("depths").
		Colored(domain.ColorRed, "Something moves.").
		Incr("score", 1)

	loader, err := b.Build()
	if err != nil {
		return err
	}
	engine, err := fable.New("", fable.WithLoader(loader))
*/
package dsl
