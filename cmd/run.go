package main

import (
	"os"
	"runtime"

	"github.com/harshul/builder/internal/config"
	"github.com/harshul/builder/internal/executor"
	"github.com/harshul/builder/internal/logger"
	"github.com/harshul/builder/internal/orchestrator"
	"github.com/harshul/builder/internal/platform"
	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// addGlobalFlags adds the flags shared by every command.
func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (default $BUILDER_CONFIG or ~/"+config.DefaultFileName+")")
	flags.StringArrayP("variable", "v", nil, "Custom variable KEY=VALUE (repeatable)")
	flags.String("operating-system", "", "Operating system type, sets {os} (alias -os, default: detected platform)")
	flags.String("build-type", "", "Build type, sets {bt} (alias -bt, default $BUILDER_BUILD_TYPE or Release)")
	flags.Bool("verbose", false, "Print debug diagnostics to stderr")
}

// addRunFlags adds the flags of the root command.
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolP("no-build", "n", false, "Perform no build")
	flags.BoolP("test", "t", false, "Execute test steps")
	flags.Bool("dry-run", false, "Print the pipelines without executing them")
	flags.String("shell", "", "Shell used to run pipelines: system (sh -c, cmd /C on Windows) or builtin (default $BUILDER_SHELL, else builtin on Windows and system elsewhere)")
}

// setup holds what every command needs after flags are parsed.
type setup struct {
	defaults config.Defaults
	log      *logger.Logger
	opts     orchestrator.Options
	cfgPath  string
}

func newSetup(cmd *cobra.Command) (*setup, error) {
	defaults, err := config.LoadDefaults()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	level := defaults.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}

	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		cfgPath = defaults.ConfigPath
	}

	rawVars, _ := flags.GetStringArray("variable")
	user, err := vars.ParseUser(rawVars)
	if err != nil {
		return nil, err
	}

	osName, _ := flags.GetString("operating-system")
	if !flags.Changed("operating-system") {
		osName = platform.SystemName()
	}
	buildType, _ := flags.GetString("build-type")
	if !flags.Changed("build-type") {
		buildType = defaults.BuildType
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get current directory")
	}

	return &setup{
		defaults: defaults,
		log:      log,
		cfgPath:  cfgPath,
		opts: orchestrator.Options{
			WorkDir:   cwd,
			OS:        osName,
			BuildType: buildType,
			User:      user,
		},
	}, nil
}

// orchestrator loads the configuration and builds an orchestrator around
// exec.
func (s *setup) orchestrator(exec orchestrator.Executor) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("config", s.cfgPath).
		Int("projects", len(cfg.Projects)).
		Str("os", s.opts.OS).
		Str("bt", s.opts.BuildType).
		Msg("configuration loaded")
	return orchestrator.New(cfg, exec, s.log, s.opts)
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := newSetup(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	s.opts.NoBuild, _ = flags.GetBool("no-build")
	s.opts.Test, _ = flags.GetBool("test")
	s.opts.DryRun, _ = flags.GetBool("dry-run")

	shellName, _ := flags.GetString("shell")
	if shellName == "" {
		shellName = s.defaults.Shell
	}
	shell := executor.DefaultShell(runtime.GOOS)
	if shellName != "" {
		if shell, err = executor.ParseShell(shellName); err != nil {
			return err
		}
	}

	exec := executor.New(shell)
	exec.Stdout = cmd.OutOrStdout()
	exec.Stderr = cmd.ErrOrStderr()
	exec.Stdin = cmd.InOrStdin()

	orch, err := s.orchestrator(exec)
	if err != nil {
		return err
	}
	orch.SetOutput(cmd.OutOrStdout())

	return orch.Run(cmd.Context())
}
