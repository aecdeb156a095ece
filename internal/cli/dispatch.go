package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"taskforge/internal/commands"
	"taskforge/internal/config"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "listtasks"

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch. The returned service must not
// be probed yet.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Look up command
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Parse flags
	remaining := args[1:]
	return d.dispatchCommand(ctx, cmd, remaining, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	// Parse flags
	if err := fs.Parse(args); err != nil {
		// Handle specific error types
		errStr := err.Error()

		// Check for missing flag value
		if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
			if i := strings.LastIndex(errStr, ":"); i >= 0 {
				fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", strings.TrimSpace(errStr[i+1:]))
				return exitcode.UserError
			}
		}

		// Check for unknown flag
		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
			return exitcode.UserError
		}

		// Generic error handling for bad flag values
		if strings.Contains(errStr, "invalid value") {
			fmt.Fprintf(errOut, "error: %s\n", errStr)
			return exitcode.UserError
		}

		fmt.Fprintf(errOut, "error: %s\n", errStr)
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger := newLogger(cfg, errOut)

	var svc service.Service
	if cmd.NeedsRemote() {
		svc = d.connect(ctx, cfg, logger, errOut)
		defer svc.Close()
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// connect builds the backend and, when sync is enabled, waits for the
// connectivity probe. A backend that cannot be built is replaced by
// service.Offline so local commands keep working.
func (d *Dispatcher) connect(ctx context.Context, cfg *config.Config, logger *log.Logger, errOut io.Writer) service.Service {
	if d.factory == nil {
		return service.Offline{}
	}

	svc, err := d.factory(ctx, cfg, logger)
	if err != nil {
		logger.Printf("backend %s unavailable: %v", cfg.Backend, err)
		if !cfg.Quiet {
			fmt.Fprintf(errOut, "warning: remote sync unavailable: %v\n", err)
		}
		return service.Offline{}
	}

	if !cfg.Enabled {
		logger.Printf("remote sync disabled in config")
		return svc
	}

	probe := svc.StartProbe(ctx)
	if !probe.Wait(ctx) {
		logger.Printf("continuing without remote sync")
	}
	return svc
}

// newLogger writes to errOut under --debug and discards otherwise.
func newLogger(cfg *config.Config, errOut io.Writer) *log.Logger {
	if !cfg.Debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(errOut, config.AppName+": ", log.Ltime|log.Lmicroseconds)
}
