package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/config"
	"taskforge/internal/crystal"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

func init() {
	Register(&DiscardCmd{})
}

// DiscardCmd implements the discard command. It drops a crystal from the
// inventory without telling the server.
type DiscardCmd struct{}

func (c *DiscardCmd) Name() string      { return "discard" }
func (c *DiscardCmd) Aliases() []string { return []string{"rm"} }
func (c *DiscardCmd) Synopsis() string  { return "Drop a crystal locally without completing it" }
func (c *DiscardCmd) Usage() string     { return "taskforge discard <ref>" }
func (c *DiscardCmd) NeedsRemote() bool { return false }

func (c *DiscardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DiscardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, code := crystalRef(args, errOut)
	if code != exitcode.Success {
		return code
	}

	inv, err := crystal.Load(cfg.InventoryPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	target, err := inv.Get(ref)
	if err != nil {
		return refError(err, ref, errOut)
	}
	inv.Remove(target.ID)

	if err := inv.Save(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "crystal discarded: %s\n", target.Description)
	}
	return exitcode.Success
}
