package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all review state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if !yes {
			printf(out, "Delete all review state in %s? [y/N] ", e.backend.Location())
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				printf(out, "Aborted.\n")
				return nil
			}
		}

		if err := e.backend.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset state: %w", err)
		}
		e.log.Info("state reset", zap.String("location", e.backend.Location()))
		printf(out, "Review state deleted.\n")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
