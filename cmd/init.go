package main

import (
	"fmt"

	"github.com/harshul/builder/internal/config"
	"github.com/harshul/builder/internal/ui"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `The init command writes an example configuration with one project,
global variables and environment, and build and test steps.

The file is written to the --config location, ~/` + config.DefaultFileName + `
by default. An existing file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
	return initCmd
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := newSetup(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteSample(s.cfgPath, force); err != nil {
		return err
	}

	ui.Success(fmt.Sprintf("Configuration written to %s", s.cfgPath))
	ui.Info("Edit the path of the example project, then run 'builder' inside it")
	return nil
}
