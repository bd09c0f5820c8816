package cli

import (
	"fmt"
	"io"

	"github.com/LdDl/speckle-go/internal/ledger"
	"github.com/LdDl/speckle-go/speckle"
	"github.com/spf13/cobra"
)

func (a *app) newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <root>",
		Short: "Remove Brownian tracks relative to each directory's control file",
		Long:  "Walks the experiment tree depth-first. In every directory holding a control file, tracks\nslower than mean + k*std of the control SLS are removed and the rest written to *.filtered.csv.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}
			pipeline, err := speckle.NewThresholdPipeline(settings.K)
			if err != nil {
				return err
			}
			report, runErr := pipeline.Run(args[0])
			if report == nil {
				return runErr
			}
			printThresholdReport(cmd.OutOrStdout(), report)
			if settings.Ledger != "" {
				if err := recordRun(settings.Ledger, report); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().Float64("k", 0.0, "margin above Brownian motion in standard deviations")
	return cmd
}

func printThresholdReport(w io.Writer, report *speckle.ThresholdReport) {
	for _, result := range report.Files {
		switch result.Status {
		case speckle.StatusFiltered, speckle.StatusOverFiltered:
			fmt.Fprintf(w, "%s\t%s\tthreshold=%.5f\tdropped=%d\tremaining=%d\n", result.Status, result.Path, result.Threshold, result.Dropped, result.Remaining)
		default:
			fmt.Fprintf(w, "%s\t%s\t%v\n", result.Status, result.Path, result.Err)
		}
	}
	for _, dir := range report.NoControl {
		fmt.Fprintf(w, "no-control\t%s\n", dir)
	}
	fmt.Fprintf(w, "run %s: dropped %d of %d tracks (%.2f%%)\n", report.RunID, report.TotalDropped, report.TotalDropped+report.TotalRemaining, report.DroppedPercent())
}

func recordRun(path string, report *speckle.ThresholdReport) error {
	store, err := ledger.Open(path)
	if err != nil {
		return systemError{err}
	}
	defer store.Close()
	if err := store.RecordThresholdRun(report); err != nil {
		return systemError{err}
	}
	return nil
}

