package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/harshul/builder/internal/config"
	"github.com/harshul/builder/internal/logger"
	"github.com/harshul/builder/internal/matcher"
	"github.com/harshul/builder/internal/planner"
	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
)

// ErrNoMatch is returned when no project applies to the working directory.
var ErrNoMatch = eris.New("No matching configuration entry found.")

// Executor runs a serialized pipeline.
type Executor interface {
	Execute(ctx context.Context, pipeline, dir string, env vars.Map) error
}

// Options controls how the orchestrator runs the selected project.
type Options struct {
	WorkDir   string
	NoBuild   bool
	Test      bool
	DryRun    bool // print pipelines instead of executing them
	OS        string
	BuildType string
	User      vars.Map
}

type Orchestrator struct {
	cfg    *config.Config
	opts   Options
	exec   Executor
	log    *logger.Logger
	out    io.Writer
	global Scope
}

// Scope is a resolved pair of variable and environment maps.
type Scope struct {
	Variables   vars.Map
	Environment vars.Map
}

// Selection is the project chosen for a run.
type Selection struct {
	Index   int
	Project config.Project
	// Dir is the part of the working directory matched by the project's
	// path. Phases run there.
	Dir       string
	Variables vars.Map
}

// Candidate is the evaluation of one project against the working
// directory, as reported by Candidates.
type Candidate struct {
	Project config.Project
	Pattern string
	Matched string
	OK      bool
	Err     error
}

func New(cfg *config.Config, exec Executor, log *logger.Logger, opts Options) (*Orchestrator, error) {
	if cfg == nil {
		return nil, eris.New("no configuration")
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, eris.Wrap(err, "failed to get current directory")
		}
		opts.WorkDir = wd
	}

	o := &Orchestrator{cfg: cfg, opts: opts, exec: exec, log: log, out: os.Stdout}
	o.global = o.resolveGlobal()
	return o, nil
}

// SetOutput redirects dry-run output.
func (o *Orchestrator) SetOutput(w io.Writer) {
	o.out = w
}

// Global returns the variables and environment shared by all projects.
func (o *Orchestrator) Global() Scope {
	return o.global
}

func (o *Orchestrator) resolveGlobal() Scope {
	base := vars.FromPairs(
		vars.Pair{Key: "os", Value: o.opts.OS},
		vars.Pair{Key: "bt", Value: o.opts.BuildType},
	)
	variables := vars.ExtractVariables(o.cfg.Variables, o.cfg.HasVariables, base, o.opts.User)
	env := vars.ExtractEnvironment(o.cfg.Environment, vars.Map{}, variables, o.opts.User)
	return Scope{Variables: variables, Environment: env}
}

// projectVariables layers a project's own variables over the global ones.
func (o *Orchestrator) projectVariables(p config.Project) vars.Map {
	return vars.ExtractVariables(p.Variables, p.HasVariables, o.global.Variables, o.opts.User)
}

// Select returns the first project, in configuration order, whose path
// matches the working directory. Projects after the first match are never
// evaluated.
func (o *Orchestrator) Select() (Selection, error) {
	for i, p := range o.cfg.Projects {
		computed := o.projectVariables(p)
		dir, ok, err := matcher.Match(p, computed, o.opts.User, o.opts.WorkDir)
		if err != nil {
			return Selection{}, err
		}
		if !ok {
			o.log.Debug().Str("project", p.Name).Msg("path does not match, skipping")
			continue
		}
		o.log.Debug().Str("project", p.Name).Str("dir", dir).Msg("project matched")
		return Selection{Index: i, Project: p, Dir: dir, Variables: computed}, nil
	}
	o.log.Debug().Str("dir", o.opts.WorkDir).Int("projects", len(o.cfg.Projects)).Msg("no project matched")
	return Selection{}, ErrNoMatch
}

// Candidates evaluates every project against the working directory without
// stopping at the first match or at errors.
func (o *Orchestrator) Candidates() []Candidate {
	out := make([]Candidate, 0, len(o.cfg.Projects))
	for _, p := range o.cfg.Projects {
		c := Candidate{Project: p}
		computed := o.projectVariables(p)
		c.Pattern, c.Err = matcher.Pattern(p, computed, o.opts.User)
		if c.Err == nil {
			c.Matched, c.OK, c.Err = matcher.Match(p, computed, o.opts.User, o.opts.WorkDir)
		}
		out = append(out, c)
	}
	return out
}

// Run selects a project and executes its build phase, then its test phase
// when requested. The first failure ends the run.
func (o *Orchestrator) Run(ctx context.Context) error {
	sel, err := o.Select()
	if err != nil {
		return err
	}

	if !o.opts.NoBuild {
		if err := o.RunPhase(ctx, sel, config.PhaseBuild); err != nil {
			return err
		}
	}
	if o.opts.Test {
		if err := o.RunPhase(ctx, sel, config.PhaseTest); err != nil {
			return err
		}
	}
	return nil
}

// Plan assembles the pipeline and environment of one phase of sel.
func (o *Orchestrator) Plan(sel Selection, phase config.Phase) (planner.Pipeline, vars.Map) {
	steps, _ := sel.Project.Steps(phase)
	env := vars.ExtractEnvironment(sel.Project.Environment, o.global.Environment, sel.Variables, o.opts.User)
	return planner.Plan(steps, sel.Variables, o.opts.User), env
}

// RunPhase plans and executes one phase. A phase without steps does
// nothing.
func (o *Orchestrator) RunPhase(ctx context.Context, sel Selection, phase config.Phase) error {
	pipeline, env := o.Plan(sel, phase)
	if pipeline.Empty() {
		o.log.Debug().Str("project", sel.Project.Name).Str("phase", string(phase)).Msg("no steps, skipping")
		return nil
	}

	o.log.Debug().
		Str("project", sel.Project.Name).
		Str("phase", string(phase)).
		Int("steps", len(pipeline.Stages)).
		Str("dir", sel.Dir).
		Msg("running phase")

	if o.opts.DryRun {
		fmt.Fprintln(o.out, pipeline.String())
		return nil
	}
	return o.exec.Execute(ctx, pipeline.String(), sel.Dir, env)
}
