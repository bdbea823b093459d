package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	indexinguc "github.com/kailas-cloud/storyline/internal/usecase/indexing"
)

type reindexCommander struct {
	dryRun  bool
	rebuild bool
}

func newReindexCmd() *cobra.Command {
	cmder := &reindexCommander{}

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Embed every story that has no embedding of its current text",
		Long: "Embed every story that has no embedding of its current text. " +
			"Picks up stories written in async mode whose background job was dropped or failed.\n\n" +
			"With --rebuild the search index is dropped and created again first, which applies " +
			"changed index settings to existing stories.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Only count stories that need indexing")
	cmd.Flags().BoolVar(&cmder.rebuild, "rebuild", false, "Drop and recreate the search index before the sweep")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "rebuild")

	return cmd
}

func (c *reindexCommander) run(cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, indexinguc.ModeSync)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.rebuild {
		err = a.rebuildIndex(ctx)
	} else {
		err = a.ensureIndex(ctx)
	}
	if err != nil {
		return err
	}

	report, err := a.indexer.Reindex(ctx, c.dryRun)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	out := cmd.OutOrStdout()
	if c.dryRun {
		fmt.Fprintf(out, "%d stories need indexing\n", report.Pending)
		return nil
	}
	fmt.Fprintf(out, "pending %d, indexed %d, skipped %d, failed %d\n",
		report.Pending, report.Indexed, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d stories failed to index", report.Failed)
	}
	return nil
}
