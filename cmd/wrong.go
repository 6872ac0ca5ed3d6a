package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/store"
)

var wrongCmd = &cobra.Command{
	Use:   "wrong",
	Short: "Inspect or clear the wrong question set",
}

var wrongListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wrong questions, most recently missed first",
	RunE: func(cmd *cobra.Command, args []string) error {
		bankID, _ := cmd.Flags().GetString("bank")

		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var wqs []store.WrongQuestion
		if bankID != "" {
			wqs, err = st.Wrong().ByBank(cmd.Context(), bankID)
		} else {
			wqs, err = st.Wrong().All(cmd.Context())
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(wqs) == 0 {
			fmt.Fprintln(out, "No wrong questions.")
			return nil
		}

		fmt.Fprintf(out, "%-24s  %-44s  %5s  %s\n", "Bank", "Question", "Count", "Last wrong")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, wq := range wqs {
			fmt.Fprintf(out, "%-24s  %-44s  %5d  %s\n",
				clip(wq.BankName, 24), clip(wq.Question.Content, 44), wq.WrongCount, humanize.Time(wq.LastWrongTime))
		}
		fmt.Fprintf(out, "\n%d wrong questions\n", len(wqs))
		return nil
	},
}

var wrongClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the wrong question set (or one bank's part of it)",
	RunE: func(cmd *cobra.Command, args []string) error {
		bankID, _ := cmd.Flags().GetString("bank")

		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if bankID != "" {
			if err := st.Wrong().ClearByBank(cmd.Context(), bankID); err != nil {
				return err
			}
			logger.Info("wrong questions cleared", "bank", bankID)
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared wrong questions of bank %s\n", bankID)
			return nil
		}
		if err := st.Wrong().ClearAll(cmd.Context()); err != nil {
			return err
		}
		logger.Info("wrong questions cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all wrong questions")
		return nil
	},
}

func init() {
	wrongListCmd.Flags().String("bank", "", "Only this bank's wrong questions")
	wrongClearCmd.Flags().String("bank", "", "Only clear this bank's wrong questions")

	wrongCmd.AddCommand(wrongListCmd)
	wrongCmd.AddCommand(wrongClearCmd)
}
