package cmd

import (
	"github.com/spf13/cobra"
)

var practiceCmd = &cobra.Command{
	Use:     "practice",
	Aliases: []string{"play"},
	Short:   "Start the practice TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	practiceCmd.Flags().Duration("auto-advance", 0, "Delay before moving on after a correct answer; 0 disables (overrides EXAMWEB_AUTO_ADVANCE)")
	practiceCmd.Flags().Bool("unanswered-first", false, "Random runs draw only never-answered questions while any remain")
	practiceCmd.Flags().String("presets", "", "Directory of bank files loaded into an empty store")
}
