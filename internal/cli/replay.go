package cli

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/dataware-update/internal/catalog"
	"github.com/fairyhunter13/dataware-update/internal/model"
	"github.com/fairyhunter13/dataware-update/internal/obs"
)

func newReplayCommand(a *app) *cobra.Command {
	var (
		in              string
		continueOnError bool
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply update records in order and print the resulting catalog",
		Long: `replay folds the records into a catalog keyed by source and type.
Creates and updates replace the held item unless they are older (by mtime),
deletes remove it, and reads leave it untouched. The live items are printed
sorted by source and type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := openInput(cmd, in)
			if err != nil {
				return err
			}
			defer r.Close()

			cat := catalog.New()
			c := a.converter()
			c.ContinueOnError = continueOnError
			_, err = c.Each(cmd.Context(), r, func(i int, u *model.Update) error {
				outcome := cat.Apply(u)
				obs.Logger.Debug("record_applied", "index", i, "source", u.Source(), "type", u.Type(), "outcome", outcome.String())
				return nil
			})
			if err != nil {
				return err
			}
			obs.Logger.Info("replay_complete", "applied", cat.Applied(), "live", cat.Len(), "reads", cat.Reads())

			w := a.writer(cmd.OutOrStdout())
			for _, u := range cat.List() {
				if err := w.Write(u); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "skip invalid records instead of stopping")
	return cmd
}
