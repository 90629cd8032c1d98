package main

import (
	"github.com/aretw0/fable/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Play a story",
	Long: `Plays the stories in a directory. The run starts at --file/--block, the
entry of fable.yaml, or the first of start, main, index or <dir name>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := projectOptions(cmd, args)
		opts := cli.RunOptions{
			RepoPath:   project.Dir,
			ConfigPath: project.ConfigPath,
			Debug:      project.Debug,
			RedisURL:   project.RedisURL,
		}
		opts.File, _ = cmd.Flags().GetString("file")
		opts.Block, _ = cmd.Flags().GetString("block")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.NoColor, _ = cmd.Flags().GetBool("no-color")
		opts.Fast, _ = cmd.Flags().GetBool("fast")
		return cli.Execute(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("file", "", "Story file to start in")
	runCmd.Flags().String("block", "", "Block to start at (default: the file's first block)")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no colors)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().BoolP("watch", "w", false, "Restart the story whenever a file changes")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
	runCmd.Flags().Bool("fast", false, "Print text at once, ignoring the typewriter settings")
	runCmd.Flags().String("redis-url", "", "Read stories from Redis instead of the directory")

	// 'run' is the default if no command is provided.
	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
