package main

import (
	"fmt"

	"github.com/aretw0/fable/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the story graph",
	Long:  `Parses every story and prints a Mermaid diagram (graph TD) of blocks and where their options and jumps lead.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cli.Graph(cmd.Context(), projectOptions(cmd, args))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("redis-url", "", "Read stories from Redis instead of the directory")
}
