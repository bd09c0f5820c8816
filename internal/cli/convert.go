package cli

import (
	"fmt"

	"github.com/LdDl/speckle-go/speckle"
	"github.com/spf13/cobra"
)

func (a *app) newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <root>",
		Short: "Convert every raw position log (*_speckles.csv) below root into a track summary (*_tracks.csv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}
			cfg, err := settings.LoaderConfig()
			if err != nil {
				return err
			}
			results, convertErr := speckle.ConvertTree(args[0], cfg)
			out := cmd.OutOrStdout()
			converted := 0
			for _, result := range results {
				if result.Err != nil {
					fmt.Fprintf(out, "failed\t%s\t%v\n", result.Source, result.Err)
					continue
				}
				converted++
				fmt.Fprintf(out, "converted\t%s\t%s\ttracks=%d\n", result.Source, result.Output, result.Tracks)
			}
			fmt.Fprintf(out, "converted %d of %d files (coefficient %.5f)\n", converted, len(results), cfg.AdjustmentCoefficient)
			return convertErr
		},
	}
	addLoaderFlags(cmd)
	return cmd
}

// addLoaderFlags registers flags overriding raw log loading settings
func addLoaderFlags(cmd *cobra.Command) {
	cmd.Flags().Int("duration-threshold", 30, "drop raw tracks spanning fewer frames; 0 disables")
	addScaleFlags(cmd)
}

// addScaleFlags registers footage scaling and smoothing flags
func addScaleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("original-width", 1028, "width of the original footage in pixels")
	cmd.Flags().Int("processed-width", 256, "width of the processed footage in pixels")
	cmd.Flags().Bool("smooth", false, "smooth raw positions with a Kalman filter")
}
