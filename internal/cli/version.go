package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/LdDl/speckle-go"

// Version is overridden at build time via -ldflags
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the speckle version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "speckle v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
