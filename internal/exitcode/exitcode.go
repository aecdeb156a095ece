// Package exitcode defines exit codes for the CLI.
package exitcode

// Remote sync failures are reported as warnings and do not change the exit
// code of commands that also work offline.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, crystal not found, ambiguous ref).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a task service error for commands that only
	// make sense online.
	BackendError = 3

	// StorageError indicates the local crystal inventory could not be read
	// or written.
	StorageError = 4
)
