package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harshul/builder/internal/ui"
	"github.com/spf13/cobra"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// newRootCmd builds the command tree. The root command itself runs the
// build and test phases of the matching project.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "builder",
		Short: "Run the build and test steps configured for the current directory",
		Long: `Builder reads a YAML configuration describing multiple projects, picks
the first project whose path pattern matches the current directory and
runs its build steps, and optionally its test steps, in a shell.

Every step may use {name} placeholders. {os} and {bt} are always defined
and can be overridden together with any other variable using -v.

Usage:
  builder               Build the project matching the current directory
  builder -t            Build, then run the tests
  builder -n -t         Only run the tests
  builder init          Write a starter configuration file
  builder projects      Show which project matches the current directory`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBuild,
	}

	addGlobalFlags(rootCmd)
	addRunFlags(rootCmd)

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newProjectsCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		ui.Error(err)
		os.Exit(1)
	}
	stop()
}
