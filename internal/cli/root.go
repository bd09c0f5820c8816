// Package cli implements the speckle command line interface.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/LdDl/speckle-go/internal/config"
	"github.com/LdDl/speckle-go/speckle"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// systemError marks failures of the environment rather than of the input (ledger, output files)
type systemError struct {
	err error
}

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

// exitCode maps command error to process exit code
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var sysErr systemError
	if speckle.IsStructural(err) || errors.As(err, &sysErr) {
		return exitSysError
	}
	return exitUserError
}

// app holds state shared by subcommands of a single invocation
type app struct {
	configDir string
	quiet     bool
	v         *viper.Viper
}

// NewRootCmd creates the top-level "speckle" command with global flags and all subcommands registered
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "speckle",
		Short:         "Reduce particle tracking data into per-track statistics",
		Long:          "speckle converts raw position logs into track summaries, separates field-driven\nmotion from Brownian motion and splits tracks of particles coming too close.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "directory holding speckle.yaml")
	root.PersistentFlags().String("ledger", "", "sqlite database to record threshold runs in")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress progress logs")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newFilterCmd())
	root.AddCommand(a.newConvertCmd())
	root.AddCommand(a.newSplitCmd())
	root.AddCommand(a.newSweepCmd())
	root.AddCommand(a.newStatsCmd())
	return root
}

// setup loads configuration, binds flags of the executing command on top of it and routes logs
func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	for _, key := range config.Keys() {
		flag := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-"))
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "can't bind flag '%s'", flag.Name)
		}
	}
	a.v = v
	if a.quiet {
		speckle.SetLogger(nil)
	} else {
		speckle.SetLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags).Printf)
	}
	return nil
}

// settings resolves configuration for the executing command
func (a *app) settings() (config.Settings, error) {
	return config.Resolve(a.v)
}

// Run executes command line args and returns exit code
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// Execute runs the root command against process arguments and exits with the appropriate code
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
