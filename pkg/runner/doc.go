/*
Package runner implements the read-choose loop between the Fable engine and a reader.

The runner starts an execution, shows its options through a pluggable IOHandler,
maps what the reader types to an option and feeds the choice back to the engine
until the story halts or the reader leaves.

# Key Components

  - Runner: drives one execution to completion.
  - IOHandler: decouples how story text is shown and how replies are read.
  - TextHandler: interactive terminal usage, with word wrap and colors.
  - JSONHandler: newline-delimited JSON for other programs.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithWidth(80))),
	)

	exec, err := r.Run(ctx, engine, nil, "intro.story", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(exec.Halt().Reason)
*/
package runner
