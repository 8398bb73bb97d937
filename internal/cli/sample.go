package cli

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/dataware-update/internal/obs"
	"github.com/fairyhunter13/dataware-update/internal/sample"
)

func newSampleCommand(a *app) *cobra.Command {
	var (
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Emit random update records for seeding and testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := sample.New(seed)
			w := a.writer(cmd.OutOrStdout())
			for i := 0; i < count; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				if err := w.Write(g.Next()); err != nil {
					return err
				}
			}
			obs.Logger.Info("sample_complete", "count", count, "seed", seed)
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of records")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}
