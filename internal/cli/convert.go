package cli

import (
	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		in              string
		continueOnError bool
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert JSON update records to the output format",
		Example: `  dsupdate convert --in updates.ndjson --to xml
  cat updates.json | dsupdate convert --to yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := openInput(cmd, in)
			if err != nil {
				return err
			}
			defer r.Close()

			c := a.converter()
			c.ContinueOnError = continueOnError
			_, err = c.Run(cmd.Context(), r, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "skip invalid records instead of stopping")
	return cmd
}
