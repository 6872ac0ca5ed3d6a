package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset saved practice progress",
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List banks with a resumable practice run",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		rows, err := st.Progress().All(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No saved progress.")
			return nil
		}

		fmt.Fprintf(out, "%-30s  %-10s  %8s  %8s  %7s  %s\n", "Bank", "Mode", "Position", "Answered", "Correct", "Saved")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, p := range rows {
			name := p.QuestionBankID
			if b, err := st.Banks().Get(ctx, p.QuestionBankID); err == nil && b != nil {
				name = b.Name
			}
			fmt.Fprintf(out, "%-30s  %-10s  %8s  %8d  %7d  %s\n",
				clip(name, 30), p.Mode,
				fmt.Sprintf("%d/%d", p.CurrentIndex+1, len(p.Questions)),
				len(p.Answers), p.Stats.Correct, humanize.Time(p.Timestamp))
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset <bank-id>",
	Short: "Discard a bank's saved practice run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Progress().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info("progress reset", "bank", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Progress of bank %s reset\n", args[0])
		return nil
	},
}

func init() {
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressResetCmd)
}
