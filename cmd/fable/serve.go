package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/fable/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the read-only HTTP server",
	Long: `Serves story summaries, the Mermaid graph, Prometheus metrics and reload
events over HTTP:

  GET /stories          all stories
  GET /stories/{file}   one story
  GET /graph            Mermaid graph (?visited=a.story:x,..&current=a.story:y)
  GET /events           SSE stream of changed story files
  GET /metrics          Prometheus metrics
  GET /healthz          liveness`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, projectOptions(cmd, args), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default: serve.addr or :8080)")
	serveCmd.Flags().String("redis-url", "", "Read stories from Redis instead of the directory")
}
