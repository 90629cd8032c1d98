package main

import (
	_ "embed"
	"fmt"

	"github.com/aretw0/fable/internal/presentation/tui"
	"github.com/spf13/cobra"
)

//go:embed syntax.md
var syntaxDoc string

var syntaxCmd = &cobra.Command{
	Use:   "syntax",
	Short: "Describe the story markup",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Print(syntaxDoc)
			return nil
		}
		render, err := tui.NewMarkdownRenderer(80)
		if err != nil {
			return err
		}
		out, err := render(syntaxDoc)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syntaxCmd)
	syntaxCmd.Flags().Bool("raw", false, "Print the markdown source")
}
