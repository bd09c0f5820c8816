package cli

import (
	"fmt"

	"github.com/LdDl/speckle-go/speckle"
	"github.com/spf13/cobra"
)

func (a *app) newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <speckles-file>",
		Short: "Report MSD statistics of split tracks for every multiplier from 0 to radius-multiplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}
			cfg, err := proximityConfig(settings)
			if err != nil {
				return err
			}
			tracks, err := speckle.LoadSpeckleTracks(args[0], cfg)
			if err != nil {
				return err
			}
			sweeps, err := speckle.SweepRadii(tracks, settings.Radius, settings.RadiusMultiplier)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "k\ttracks\tmsd_mean\tmsd_std")
			for _, sweep := range sweeps {
				fmt.Fprintf(out, "%d\t%d\t%.5f\t%.5f\n", sweep.K, len(sweep.Tracks), sweep.MSDMean, sweep.MSDStd)
			}
			return nil
		},
	}
	addScaleFlags(cmd)
	addRadiusFlags(cmd)
	return cmd
}
