package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fable/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fable",
	Short: "Fable plays interactive fiction written in plain text",
	Long: `Fable reads story files written in a small line-oriented markup (blocks,
options, conditionals and state directives) and plays them in the terminal.

Run 'fable syntax' for a description of the markup.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the story files")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <dir>/fable.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
}

// projectOptions reads the persistent flags. A positional argument names
// the directory unless --dir was given.
func projectOptions(cmd *cobra.Command, args []string) cli.ProjectOptions {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	opts := cli.ProjectOptions{Dir: dir, ConfigPath: configPath, Debug: debug}
	if f := cmd.Flags().Lookup("redis-url"); f != nil {
		opts.RedisURL = f.Value.String()
	}
	return opts
}
