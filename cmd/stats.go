package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats [bank-id]",
	Short: "Show answer statistics per bank",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		all, err := st.Answers().Stats(ctx)
		if err != nil {
			return err
		}

		var rows []store.BankStats
		for _, s := range all {
			if len(args) == 0 || s.BankID == args[0] {
				rows = append(rows, s)
			}
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No answers recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-30s  %8s  %8s  %8s  %s\n", "Bank", "Answered", "Correct", "Accuracy", "Last answer")
		fmt.Fprintln(out, strings.Repeat("─", 80))

		var total, correct int
		for _, s := range rows {
			name := s.BankID
			if b, err := st.Banks().Get(ctx, s.BankID); err == nil && b != nil {
				name = b.Name
			}
			fmt.Fprintf(out, "%-30s  %8s  %8s  %7d%%  %s\n",
				clip(name, 30), humanize.Comma(int64(s.Total)), humanize.Comma(int64(s.Correct)),
				s.Accuracy(), humanize.Time(s.Last))
			total += s.Total
			correct += s.Correct
		}

		if len(rows) > 1 {
			fmt.Fprintf(out, "\n%s answers, %d%% correct\n", humanize.Comma(int64(total)), store.Accuracy(correct, total))
		}
		return nil
	},
}
