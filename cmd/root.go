package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zk-spaced",
	Short: "Spaced repetition for zk notes",
	Long: "zk-spaced reviews notes with an SM-2 scheduler. Cards are read from a\n" +
		"JSON or YAML list on stdin (e.g. `zk list --format json`) or from a notes directory.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to the state snapshot (overrides ZKSPACED_DB env var)")
	pf.String("backend", "", "Storage backend: auto, json or sqlite")
	pf.String("config", "", "Path to the config file (default $XDG_CONFIG_HOME/zk-spaced/config.yaml)")
	pf.String("log-file", "", "Append JSON logs to this file")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	pf.StringP("input", "i", "-", "Card list file, - for stdin")
	pf.StringP("notes", "n", "", "Read cards from the markdown notes in this directory")
	pf.String("pattern", "", "Glob selecting notes below --notes (default **/*.md)")
	pf.StringP("format", "f", "", "Card list format: json or yaml")

	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
