package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ctkirep/internal/config"
	"ctkirep/internal/report"
	"ctkirep/internal/store"
)

func newReportCommand(cmdCtx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Render progress reports for a course type",
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "reading <course-type>",
		Short: "Reading time against requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				tbl, err := buildReadingTable(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tbl))
				return nil
			})
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "progress <course-type>",
		Short: "Progress test statuses with attempt counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				tbl, err := buildProgressTable(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tbl))
				return nil
			})
		},
	})

	return reportCmd
}

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write progress reports as CSV",
	}

	exportCmd.AddCommand(newExportRunCommand(cmdCtx, "reading", "Export the reading time report", buildReadingTable))
	exportCmd.AddCommand(newExportRunCommand(cmdCtx, "progress", "Export the progress test report", buildProgressTable))

	return exportCmd
}

func newExportRunCommand(
	cmdCtx *commandContext,
	use, short string,
	build func(context.Context, *store.Store, string) (report.Table, error),
) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   use + " <course-type>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				tbl, err := build(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				if outPath == "" {
					return report.WriteCSV(cmd.OutOrStdout(), tbl)
				}
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				if err := report.WriteCSV(file, tbl); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(tbl.Rows), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func resolveCourseType(ctx context.Context, st *store.Store, name string) (store.CourseType, error) {
	courseType, err := st.CourseTypeByName(ctx, name)
	if err != nil {
		return store.CourseType{}, err
	}
	if courseType == nil {
		return store.CourseType{}, fmt.Errorf("course type %q not found", name)
	}
	return *courseType, nil
}

func buildReadingTable(ctx context.Context, st *store.Store, courseTypeName string) (report.Table, error) {
	courseType, err := resolveCourseType(ctx, st, courseTypeName)
	if err != nil {
		return report.Table{}, err
	}
	rows, err := st.ReadingTimeReport(ctx, courseType.ID)
	if err != nil {
		return report.Table{}, err
	}
	return report.ReadingTable(rows), nil
}

func buildProgressTable(ctx context.Context, st *store.Store, courseTypeName string) (report.Table, error) {
	courseType, err := resolveCourseType(ctx, st, courseTypeName)
	if err != nil {
		return report.Table{}, err
	}
	rows, err := st.ProgressReport(ctx, courseType.ID)
	if err != nil {
		return report.Table{}, err
	}
	return report.ProgressTable(rows), nil
}
