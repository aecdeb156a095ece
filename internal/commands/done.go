package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

func init() {
	Register(&CompleteCmd{})
}

// CompleteCmd implements the complete command.
type CompleteCmd struct {
	comment string
}

// SetComment sets the completion comment (for testing).
func (c *CompleteCmd) SetComment(comment string) {
	c.comment = comment
}

func (c *CompleteCmd) Name() string      { return "complete" }
func (c *CompleteCmd) Aliases() []string { return []string{"done"} }
func (c *CompleteCmd) Synopsis() string  { return "Complete a task crystal" }
func (c *CompleteCmd) Usage() string     { return "taskforge complete [--comment <text>] <ref>" }
func (c *CompleteCmd) NeedsRemote() bool { return true }

func (c *CompleteCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.comment, "comment", "", "")
	fs.StringVar(&c.comment, "m", "", "")
}

func (c *CompleteCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, code := crystalRef(args, errOut)
	if code != exitcode.Success {
		return code
	}

	forge, err := loadForge(cfg, svc)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	done, res, err := forge.Complete(ctx, ref, c.comment)
	if err != nil {
		return refError(err, ref, errOut)
	}
	if err := forge.Inventory().Save(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	if !res.OK() {
		fmt.Fprintf(errOut, "warning: server not updated: %s\n", res.Message())
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "crystal completed: %s\n", done.Description)
	}
	return exitcode.Success
}

// crystalRef extracts the single crystal reference from args.
func crystalRef(args []string, errOut io.Writer) (string, int) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: crystal reference required")
		return "", exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", exitcode.UserError
	}
	return args[0], exitcode.Success
}

// refError reports an inventory lookup failure.
func refError(err error, ref string, errOut io.Writer) int {
	switch {
	case errors.Is(err, crystal.ErrNotFound):
		fmt.Fprintf(errOut, "error: crystal not found: %s\n", ref)
	case errors.Is(err, crystal.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous crystal reference: %s\n", ref)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.UserError
}
