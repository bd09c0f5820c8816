package cli

import (
	"fmt"
	"strings"

	"github.com/LdDl/speckle-go/internal/config"
	"github.com/LdDl/speckle-go/speckle"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// SplitSuffix replaces ".csv" of the input to name split output
const SplitSuffix = "_split.csv"

func (a *app) newSplitCmd() *cobra.Command {
	var (
		output      string
		minDuration int
	)
	cmd := &cobra.Command{
		Use:   "split <speckles-file>",
		Short: "Cut tracks wherever another particle comes closer than radius*multiplier",
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
			split, err := speckle.SplitByRadius(tracks, settings.Radius, settings.RadiusMultiplier)
			if err != nil {
				return err
			}
			if minDuration < 0 {
				return errors.Wrapf(speckle.ErrInvalidArgument, "min duration must be non-negative, got %d", minDuration)
			}
			split = speckle.DropShortTracks(split, minDuration)
			if output == "" {
				output = strings.TrimSuffix(args[0], ".csv") + SplitSuffix
			}
			if err := speckle.SaveSpeckles(output, split); err != nil {
				return systemError{err}
			}
			freqFile := speckle.NewFreqFile(speckle.WithPath(output))
			freqFile.Add(speckle.Summarize(split, cfg.AdjustmentCoefficient)...)
			fmt.Fprintf(cmd.OutOrStdout(), "split %d tracks into %d (cutoff %.5f)\tmsd=%.5f±%.5f\t%s\n",
				len(tracks), len(split), settings.Radius*float64(settings.RadiusMultiplier), freqFile.MSDMean(), freqFile.MSDStd(), output)
			return nil
		},
	}
	addScaleFlags(cmd)
	addRadiusFlags(cmd)
	cmd.Flags().IntVar(&minDuration, "min-duration", 0, "drop split tracks spanning fewer frames; 0 keeps all")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output raw position log (default: <input>"+SplitSuffix+")")
	return cmd
}

// proximityConfig returns loader settings for proximity commands.
// Neighbours of any lifetime must be seen, so no duration threshold applies while loading
func proximityConfig(settings config.Settings) (speckle.Config, error) {
	cfg, err := settings.LoaderConfig()
	if err != nil {
		return speckle.Config{}, err
	}
	cfg.DurationThreshold = 0
	return cfg, nil
}

// addRadiusFlags registers proximity flags
func addRadiusFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("radius", 1.0, "particle radius")
	cmd.Flags().Int("radius-multiplier", 2, "cutoff distance in radii")
}
