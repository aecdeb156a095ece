package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskforge/internal/backend/googletasks"
	"taskforge/internal/config"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with Google (googletasks backend)" }
func (c *LoginCmd) Usage() string     { return "taskforge login [common flags]" }
func (c *LoginCmd) NeedsRemote() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Backend != config.BackendGoogleTasks {
		if !cfg.Quiet {
			fmt.Fprintf(out, "backend %s needs no login (set token in %s for authenticated servers)\n", cfg.Backend, config.ConfigFile)
		}
		return exitcode.Success
	}

	if !cfg.HasOAuthClient() {
		printOAuthSetup(cfg, errOut)
		return exitcode.AuthError
	}

	if cfg.HasToken() && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if err := googletasks.Login(ctx, cfg, errOut); err != nil {
		if errors.Is(err, googletasks.ErrNoOAuthClient) {
			printOAuthSetup(cfg, errOut)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func printOAuthSetup(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To sync crystals with Google Tasks, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Enable the Google Tasks API:")
	fmt.Fprintln(errOut, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON file")
	fmt.Fprintf(errOut, "4. Save it as %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'taskforge login' again.")
}
