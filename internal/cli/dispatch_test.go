package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskforge/internal/cli"
	"taskforge/internal/commands"
	"taskforge/internal/config"
	"taskforge/internal/exitcode"
	"taskforge/internal/service"
	"taskforge/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		return svc, nil
	}
}

// failFactory fails the test if the dispatcher builds a backend.
func failFactory(t *testing.T) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		t.Error("factory must not be called for local commands")
		return nil, errors.New("unexpected")
	}
}

func run(t *testing.T, factory cli.ServiceFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = cli.NewDispatcher(commands.DefaultRegistry, factory).Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, failFactory(t), "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, failFactory(t), "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskforge 0.1.0\n" {
		t.Errorf("expected 'taskforge 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, failFactory(t), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "complete", "--comment")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -comment\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsCrystals(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	stdout, _, code := run(t, failFactory(t))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "no task crystals yet") {
		t.Errorf("expected listtasks output, got %q", stdout)
	}
}

func TestDispatcher_RemoteCommandProbesAndCloses(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetConnected(false)

	stdout, stderr, code := run(t, testFactory(svc), "add", "--config", t.TempDir(), "high", "fix", "it")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if svc.Calls("probe") != 1 {
		t.Errorf("expected one probe, got %d", svc.Calls("probe"))
	}
	if svc.Calls("create") != 1 {
		t.Errorf("expected create after a successful probe, got %d calls", svc.Calls("create"))
	}
	if svc.Closed() != 1 {
		t.Errorf("expected service closed once, got %d", svc.Closed())
	}
	if !strings.Contains(stdout, "synced: todo-1") {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_UnhealthyServiceKeepsLocalCrystal(t *testing.T) {
	dir := t.TempDir()
	svc := testutil.NewFakeService()
	svc.Healthy = false

	_, stderr, code := run(t, testFactory(svc), "createtask", "--config", dir, "--debug", "fix", "it")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "warning: not synced: not connected\n") {
		t.Errorf("expected not-synced warning, got %q", stderr)
	}
	if !strings.Contains(stderr, "taskforge: ") {
		t.Errorf("expected debug log lines, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, config.InventoryFile)); err != nil {
		t.Errorf("expected inventory written: %v", err)
	}
}

func TestDispatcher_SyncDisabledSkipsProbe(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("enabled: false\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	svc := testutil.NewFakeService()

	stdout, _, code := run(t, testFactory(svc), "status", "--config", dir)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.Calls("probe") != 0 {
		t.Errorf("expected no probe with sync disabled, got %d", svc.Calls("probe"))
	}
	if !strings.Contains(stdout, "sync:       disabled") {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_FactoryErrorFallsBackOffline(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		return nil, errors.New("not logged in")
	}

	_, stderr, code := run(t, factory, "createtask", "--config", t.TempDir(), "fix", "it")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "warning: remote sync unavailable: not logged in\nwarning: not synced: not connected\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("port: 0\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, stderr, code := run(t, failFactory(t), "listtasks", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
