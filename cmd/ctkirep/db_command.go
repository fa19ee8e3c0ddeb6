package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"ctkirep/internal/config"
	"ctkirep/internal/store"
)

func newDBCommand(cmdCtx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify database integrity and show row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				ctx := cmd.Context()
				health, err := st.CheckHealth(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:         %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:           %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable:         %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Integrity:        %s\n", yesNo(health.IntegrityCheck))
				if len(health.MissingTables) > 0 {
					fmt.Fprintf(out, "Missing tables:   %s\n", strings.Join(health.MissingTables, ", "))
				}

				readingCount, err := st.CountReadingTimes(ctx)
				if err != nil {
					return err
				}
				statusCount, err := st.CountContentStatuses(ctx)
				if err != nil {
					return err
				}
				journeyCount, err := st.CountJourneyEvents(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Students:         %d\n", health.StudentCount)
				fmt.Fprintf(out, "Reading sessions: %d\n", readingCount)
				fmt.Fprintf(out, "Content statuses: %d\n", statusCount)
				fmt.Fprintf(out, "Journey events:   %d\n", journeyCount)
				return nil
			})
		},
	})

	return dbCmd
}
