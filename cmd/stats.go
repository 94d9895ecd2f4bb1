package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		now := time.Now()
		st, err := e.openStore(cmd.Context(), cmd, now)
		if err != nil {
			return err
		}
		s := st.Stats(now)

		out := cmd.OutOrStdout()
		printf(out, "State:          %s\n", st.Location())
		printf(out, "%s\n", strings.Repeat("─", 40))
		printf(out, "Cards:          %d\n", s.Known)
		printf(out, "Due now:        %d\n", s.Due)
		printf(out, "Failed:         %d\n", s.Failed)
		printf(out, "Stale records:  %d\n", s.Stale)
		printf(out, "Mean easiness:  %.2f\n", s.MeanEasiness)
		printf(out, "Longest streak: %d\n", s.LongestStreak)
		if !s.NextDueAt.IsZero() {
			printf(out, "Next due:       %s\n", s.NextDueAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}
