// Command storyline serves the stories API and runs maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storyline/internal/version"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "storyline",
		Short:         "Short stories with semantic search",
		Long:          "Storyline stores short stories in Redis and finds them by meaning using OpenAI embeddings.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newReindexCmd())
	return root
}
