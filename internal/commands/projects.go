package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/output"
	"taskforge/internal/service"
)

// projectsShown caps how many server projects are printed.
const projectsShown = 10

// FallbackProjects are shown when the server cannot list projects.
var FallbackProjects = []string{
	"madness_interactive",
	"omnispindle",
	"terraria",
	"inventorium",
	"todomill",
	"hammerspoon",
	"devcrystal",
}

func init() {
	Register(&ProjectsCmd{})
	Register(&ProjectTasksCmd{})
}

// ProjectsCmd implements the projects command.
type ProjectsCmd struct{}

func (c *ProjectsCmd) Name() string      { return "projects" }
func (c *ProjectsCmd) Aliases() []string { return nil }
func (c *ProjectsCmd) Synopsis() string  { return "List projects" }
func (c *ProjectsCmd) Usage() string     { return "taskforge projects" }
func (c *ProjectsCmd) NeedsRemote() bool { return true }

func (c *ProjectsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProjectsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	res := svc.ListProjects(ctx)
	list, ok := res.Unwrap()
	if !ok {
		fmt.Fprintf(errOut, "warning: could not retrieve projects: %s\n", res.Message())
		fmt.Fprintln(out, "known projects:")
		for _, p := range FallbackProjects {
			fmt.Fprintf(out, "  - %s\n", output.ProjectTitle(p))
		}
		return exitcode.Success
	}

	names := list.Names()
	if len(names) == 0 {
		fmt.Fprintln(out, "no projects on server")
		return exitcode.Success
	}

	fmt.Fprintf(out, "found %d projects:\n", len(names))
	for i, name := range names {
		if i == projectsShown {
			fmt.Fprintf(out, "  ... and %d more projects\n", len(names)-projectsShown)
			break
		}
		fmt.Fprintf(out, "  - %s\n", output.ProjectTitle(name))
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "use project names in: taskforge createtask [priority] [project] <description>")
	}
	return exitcode.Success
}

// ProjectTasksCmd implements the projecttasks command.
type ProjectTasksCmd struct{}

func (c *ProjectTasksCmd) Name() string      { return "projecttasks" }
func (c *ProjectTasksCmd) Aliases() []string { return nil }
func (c *ProjectTasksCmd) Synopsis() string  { return "List local crystals for a project" }
func (c *ProjectTasksCmd) Usage() string     { return "taskforge projecttasks <project...>" }
func (c *ProjectTasksCmd) NeedsRemote() bool { return false }

func (c *ProjectTasksCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProjectTasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	project := ProjectArg(args)
	if project == "" {
		fmt.Fprintln(errOut, "error: project name required")
		return exitcode.UserError
	}

	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	matches := inv.ByProject(project)
	if len(matches) == 0 {
		fmt.Fprintf(out, "no crystals for project: %s\n", output.ProjectTitle(project))
		if !cfg.Quiet {
			fmt.Fprintf(out, "forge one with: taskforge createtask medium %s <description>\n", project)
		}
		return exitcode.Success
	}

	st := output.NewStyler(out)
	output.FormatHeader(out, output.ProjectTitle(project))
	for _, m := range matches {
		output.FormatCrystalBrief(out, st, m)
	}
	fmt.Fprintf(out, "total: %d task crystals\n", len(matches))
	return exitcode.Success
}
