package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matze/zk-spaced/internal/spacedrep"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <identifier> <0-5>",
	Short: "Grade one card without the TUI",
	Long: "Applies a grade to a card that already has state and persists it.\n" +
		"Grades: 0 again, 1 very hard, 2 hard, 3 okay, 4 easy, 5 very easy.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := spacedrep.ParseGrade(args[1])
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		st, err := spacedrep.Open(ctx, e.backend, time.Now(), nil)
		if err != nil {
			return err
		}

		rv, err := st.Lookup(args[0])
		if err != nil {
			return err
		}
		if err := rv.Record.Update(g); err != nil {
			return err
		}
		if err := st.Persist(ctx); err != nil {
			return err
		}

		e.log.Info("card graded",
			zap.String("id", args[0]),
			zap.Stringer("grade", g),
			zap.Int("interval_days", rv.Record.IntervalDays()),
		)
		printf(cmd.OutOrStdout(), "%s: %s, due %s\n",
			args[0], g, rv.Record.DueAt().Local().Format("2006-01-02 15:04"))
		return nil
	},
}
