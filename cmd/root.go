package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wordiz",
	Short: "Terminal vocabulary trainer",
	Long: "Wordiz drills vocabulary books in the terminal: a three-stage study " +
		"session for new words and a spelling review for learned ones.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides WORDIZ_DB env var)")
	flags.String("config", "", "Path to config file (default ./config.yaml or $XDG_CONFIG_HOME/wordiz/config.yaml)")
	flags.String("book", "", "Word book to use (overrides study.book)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(spellCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
