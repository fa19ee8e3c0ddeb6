package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ctkirep/internal/config"
	"ctkirep/internal/report"
	"ctkirep/internal/roster"
	"ctkirep/internal/store"
)

func newStudentsCommand(cmdCtx *commandContext) *cobra.Command {
	studentsCmd := &cobra.Command{
		Use:   "students",
		Short: "Roster utilities",
	}

	studentsCmd.AddCommand(&cobra.Command{
		Use:   "list [course-type]",
		Short: "List enrolled students",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				ctx := cmd.Context()

				var (
					students []store.Student
					err      error
				)
				if len(args) == 1 {
					courseType, resolveErr := resolveCourseType(ctx, st, args[0])
					if resolveErr != nil {
						return resolveErr
					}
					students, err = st.StudentsByCourse(ctx, courseType.ID)
				} else {
					students, err = st.Students(ctx)
				}
				if err != nil {
					return err
				}

				tbl := report.Table{
					Headers: []string{"Surname", "Name", "Email", "Reading username", "PT username", "Start date", "Active"},
					Aligns: []report.Alignment{
						report.AlignLeft, report.AlignLeft, report.AlignLeft,
						report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignLeft,
					},
				}
				for _, student := range students {
					tbl.Rows = append(tbl.Rows, []string{
						student.Surname,
						student.Name,
						student.Email,
						student.ReadingUsername,
						student.PTUsername,
						student.StartDate.Format("2006-01-02"),
						yesNo(student.Active),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tbl))
				return nil
			})
		},
	})

	return studentsCmd
}

func newRosterCommand(cmdCtx *commandContext) *cobra.Command {
	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster import",
	}

	rosterCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import a roster CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				imp := roster.New(st, logger)
				summary, err := imp.Import(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("roster import failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary.String())
				return nil
			})
		},
	})

	return rosterCmd
}
