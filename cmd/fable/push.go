package main

import (
	"fmt"

	"github.com/aretw0/fable/internal/cli"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push [dir]",
	Short: "Upload story files to Redis",
	Long:  `Parses every story in the directory and, when all of them are valid, stores them in Redis for 'fable run --redis-url'.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := cli.Push(cmd.Context(), projectOptions(cmd, args))
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Printf("pushed %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().String("redis-url", "", "Redis URL (default: redis.url from the config)")
}
