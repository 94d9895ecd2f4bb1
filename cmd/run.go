package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matze/zk-spaced/internal/app"
	"github.com/matze/zk-spaced/internal/review"
)

// runReview opens the store over the supplied cards and launches the TUI.
func runReview(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	st, err := e.openStore(ctx, cmd, now)
	if err != nil {
		return err
	}

	session := review.New(st, now, e.log)
	if session.Done() {
		printf(cmd.OutOrStdout(), "Nothing to review.\n")
		return nil
	}

	return app.Run(ctx, app.Options{
		Session: session,
		Logger:  e.log,
		OpenTTY: readsStdin(cmd, e.cfg),
	})
}
