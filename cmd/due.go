package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List the cards that need review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

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

		due := st.Due(now)
		out := cmd.OutOrStdout()

		if asJSON {
			type dueCard struct {
				Identifier string    `json:"identifier"`
				Title      string    `json:"title"`
				DueAt      time.Time `json:"due_at"`
				Failed     bool      `json:"failed"`
			}
			list := make([]dueCard, 0, len(due))
			for _, r := range due {
				list = append(list, dueCard{
					Identifier: r.Item.ID,
					Title:      r.Item.Title,
					DueAt:      r.Record.DueAt(),
					Failed:     r.Record.Failed,
				})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		for _, r := range due {
			printf(out, "%s\n", r.Item.ID)
		}
		return nil
	},
}

func init() {
	dueCmd.Flags().Bool("json", false, "Print due cards as JSON")
}
