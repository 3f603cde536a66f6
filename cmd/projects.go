package main

import (
	"fmt"

	"github.com/harshul/builder/internal/ui"
	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects and the one matching the current directory",
		Long: `The projects command evaluates every configured project against the
current directory and prints its expanded path pattern. The project a
build would use is marked; nothing is executed.`,
		Args: cobra.NoArgs,
		RunE: runProjects,
	}
}

func runProjects(cmd *cobra.Command, args []string) error {
	s, err := newSetup(cmd)
	if err != nil {
		return err
	}
	orch, err := s.orchestrator(nil)
	if err != nil {
		return err
	}

	selected := -1
	if sel, err := orch.Select(); err == nil {
		selected = sel.Index
	}

	candidates := orch.Candidates()
	rows := make([]ui.ProjectRow, 0, len(candidates))
	for _, c := range candidates {
		row := ui.ProjectRow{Name: c.Project.Name, Pattern: c.Pattern}
		switch {
		case c.Err != nil:
			row.Note = c.Err.Error()
		case c.OK:
			row.Matched = c.Matched
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.ProjectsTable(rows, selected))
	if selected == -1 {
		ui.Warn("No project matches the current directory")
	}
	return nil
}
