package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ctkirep/internal/config"
	"ctkirep/internal/ingest"
	"ctkirep/internal/store"
)

func newIngestCommand(cmdCtx *commandContext) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load an external report export into the database",
	}

	ingestCmd.AddCommand(newIngestRunCommand(cmdCtx, "reading", "Ingest a reading tracker XML export",
		func(ctx context.Context, ing *ingest.Ingestor, path string) (ingest.Summary, error) {
			return ing.ReadingTime(ctx, path)
		}))
	ingestCmd.AddCommand(newIngestRunCommand(cmdCtx, "status", "Ingest a content status CSV export",
		func(ctx context.Context, ing *ingest.Ingestor, path string) (ingest.Summary, error) {
			return ing.ContentStatus(ctx, path)
		}))
	ingestCmd.AddCommand(newIngestRunCommand(cmdCtx, "journey", "Ingest a learner journey CSV export",
		func(ctx context.Context, ing *ingest.Ingestor, path string) (ingest.Summary, error) {
			return ing.Journey(ctx, path)
		}))

	return ingestCmd
}

func newIngestRunCommand(
	cmdCtx *commandContext,
	use, short string,
	run func(context.Context, *ingest.Ingestor, string) (ingest.Summary, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				ing := ingest.New(cfg, st, logger)
				summary, err := run(cmd.Context(), ing, args[0])
				if err != nil {
					return fmt.Errorf("%s ingest failed (%s): %w", summary.Kind, ingest.Kind(err), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary.String())
				return nil
			})
		},
	}
}
