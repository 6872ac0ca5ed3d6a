package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List, inspect and delete question banks",
}

var banksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all question banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		banks, err := st.Banks().All(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(banks) == 0 {
			fmt.Fprintln(out, "No question banks. Import one with: examweb import <file>")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-30s  %9s  %s\n", "ID", "Name", "Questions", "Imported")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, b := range banks {
			fmt.Fprintf(out, "%-36s  %-30s  %9d  %s\n",
				b.ID, clip(b.Name, 30), len(b.Questions), humanize.Time(b.CreatedAt))
		}
		fmt.Fprintf(out, "\n%d banks\n", len(banks))
		return nil
	},
}

var banksShowCmd = &cobra.Command{
	Use:   "show <bank-id>",
	Short: "Print every question of a bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := st.Banks().MustGet(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bank %q not found", args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  (%d questions, imported %s)\n\n", b.Name, len(b.Questions), humanize.Time(b.CreatedAt))
		for i, q := range b.Questions {
			fmt.Fprintf(out, "%d. [%s] %s\n", i+1, quiz.TypeLabel(q.Type), q.Content)
			for j, opt := range q.Options {
				fmt.Fprintf(out, "   %s. %s\n", quiz.OptionLabel(j), opt)
			}
			fmt.Fprintf(out, "   Answer: %s\n", q.Answer)
			if q.Explanation != "" {
				fmt.Fprintf(out, "   %s\n", q.Explanation)
			}
		}
		return nil
	},
}

var banksDeleteCmd = &cobra.Command{
	Use:   "delete <bank-id>",
	Short: "Delete a bank with its answer records, wrong questions and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := st.Banks().MustGet(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bank %q not found", args[0])
		}
		if err != nil {
			return err
		}
		if err := st.Banks().Delete(cmd.Context(), b.ID); err != nil {
			return err
		}
		logger.Info("bank deleted", "bank", b.ID, "name", b.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", b.Name)
		return nil
	},
}

func init() {
	banksCmd.AddCommand(banksListCmd)
	banksCmd.AddCommand(banksShowCmd)
	banksCmd.AddCommand(banksDeleteCmd)
}

// clip shortens s to n runes for table output.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
