package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repeatio/examweb/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import question banks from .xlsx, .csv or .json files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name != "" && len(args) > 1 {
			return fmt.Errorf("--name can only be used with a single file")
		}

		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		im := importer.New(logger)
		out := cmd.OutOrStdout()
		var errs []error
		for _, path := range args {
			res, err := im.ImportFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if name != "" {
				res.Bank.Name = name
			}
			if err := st.Banks().Save(cmd.Context(), res.Bank); err != nil {
				errs = append(errs, fmt.Errorf("save %s: %w", path, err))
				continue
			}

			fmt.Fprintf(out, "Imported %q (%s): %d questions", res.Bank.Name, res.Bank.ID, len(res.Bank.Questions))
			if len(res.Skipped) > 0 {
				fmt.Fprintf(out, ", %d rows skipped", len(res.Skipped))
			}
			fmt.Fprintln(out)
			for _, sk := range res.Skipped {
				fmt.Fprintf(out, "  row %d: %s\n", sk.Row, sk.Reason)
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	importCmd.Flags().String("name", "", "Bank name (defaults to the file name; JSON files carry their own)")
}
