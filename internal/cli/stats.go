package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LdDl/speckle-go/speckle"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) newStatsCmd() *cobra.Command {
	var (
		format     string
		filterName string
		params     map[string]string
	)
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print population statistics of a trajectory file, optionally after a named filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileFormat, err := speckle.ParseFileFormat(format)
			if err != nil {
				return err
			}
			settings, err := a.settings()
			if err != nil {
				return err
			}
			cfg, err := settings.LoaderConfig()
			if err != nil {
				return err
			}
			freqFile, err := speckle.LoadFreqFile(args[0], fileFormat, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if filterName != "" {
				fn, err := speckle.LookupFilter(filterName)
				if err != nil {
					return errors.Wrapf(err, "available: %s", strings.Join(speckle.FilterNames(), ", "))
				}
				filterParams, err := parseParams(params)
				if err != nil {
					return err
				}
				erased, remaining, err := freqFile.Filter(fn, filterParams)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "filter %s: erased %d, remaining %d\n", filterName, erased, remaining)
			}
			fmt.Fprintln(out, freqFile.String())
			fmt.Fprintf(out, "tracks\t%d\n", freqFile.Len())
			fmt.Fprintf(out, "sls\t%.5f\t%.5f\n", freqFile.SLSMean(), freqFile.SLSStd())
			fmt.Fprintf(out, "msd\t%.5f\t%.5f\n", freqFile.MSDMean(), freqFile.MSDStd())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", speckle.FormatTracks.String(), "input format: tracks or speckles")
	cmd.Flags().StringVar(&filterName, "filter", "", "named filter to apply: "+strings.Join(speckle.FilterNames(), ", "))
	cmd.Flags().StringToStringVar(&params, "param", nil, "filter parameters, e.g. sls_threshold=0.5")
	addLoaderFlags(cmd)
	return cmd
}

func parseParams(raw map[string]string) (speckle.FilterParams, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	params := make(speckle.FilterParams, len(raw))
	for _, name := range names {
		value, err := strconv.ParseFloat(raw[name], 64)
		if err != nil {
			return nil, errors.Wrapf(speckle.ErrInvalidArgument, "parameter '%s': %v", name, err)
		}
		params[name] = value
	}
	return params, nil
}
