package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/app"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Study the next batch of new words",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartStudy)
	},
}

var spellCmd = &cobra.Command{
	Use:   "spell",
	Short: "Review learned words by spelling them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartSpell)
	},
}

func init() {
	studyCmd.Flags().Int("limit", 0, "Number of words in the session (default study.batch_size)")
	spellCmd.Flags().Int("limit", 0, "Number of words to review (default study.batch_size)")
}
