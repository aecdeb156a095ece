package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskforge help" }
func (c *HelpCmd) NeedsRemote() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskforge                                          List local task crystals
  taskforge createtask [common flags] [priority] [project] <description...>
  taskforge add [common flags] [priority] [project] <description...>
  taskforge listtasks [common flags]
  taskforge searchcrystals [common flags] [--limit <n>] <query...>
  taskforge complete [common flags] [--comment <text>] <ref>
  taskforge discard [common flags] <ref>
  taskforge projects [common flags]
  taskforge projecttasks [common flags] <project...>
  taskforge status [common flags]
  taskforge login [common flags]
  taskforge logout [common flags]
  taskforge help
  taskforge version

Priorities: low, medium, high, urgent, critical
A <ref> is a number from listtasks or a prefix of a crystal id; a bare
number is read as a position first. Use #<n> for a position only or
id:<id> for an id only (e.g. numeric server ids).

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
