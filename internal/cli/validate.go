package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/dataware-update/internal/convert"
	"github.com/fairyhunter13/dataware-update/internal/model"
)

func newValidateCommand(a *app) *cobra.Command {
	var (
		in       string
		xmlNames bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check JSON update records without converting them",
		Long: `validate decodes every record and prints one line per invalid record.
It exits non-zero when any record is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := openInput(cmd, in)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			invalid := 0
			c := a.converter()
			c.ContinueOnError = true
			c.OnReject = func(rerr *convert.RecordError) {
				invalid++
				fmt.Fprintf(out, "invalid: %v\n", rerr)
			}
			st, err := c.Each(cmd.Context(), r, func(i int, u *model.Update) error {
				if !xmlNames {
					return nil
				}
				if err := u.ValidateMetaKeys(); err != nil {
					invalid++
					fmt.Fprintf(out, "invalid: record %d (%s): %v\n", i, u.Source(), err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d records read, %d invalid\n", st.Read, invalid)
			if invalid > 0 {
				return fmt.Errorf("%d invalid records", invalid)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&xmlNames, "xml-names", false, "also require metadata keys to be valid XML element names")
	return cmd
}
