package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/importer"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage bundled question banks",
}

var presetsLoadCmd = &cobra.Command{
	Use:   "load <dir>",
	Short: "Load every bank file in a directory into an empty store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := importer.LoadPresets(cmd.Context(), importer.New(logger), st.Banks(), args[0])
		if n == 0 && err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No preset banks loaded; presets only fill an empty store.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d preset banks\n", n)
		return err
	},
}

func init() {
	presetsCmd.AddCommand(presetsLoadCmd)
}
