// Package cli implements the docket command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code a failed command should end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input.
func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError marks err as an environment or storage failure.
func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
// Errors from cobra itself, such as unknown flags or wrong argument
// counts, are user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	actor     string
	jsonMode  bool
}

// NewRootCmd creates the top-level "docket" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "docket",
		Short: "Data access and activity log for a law office",
		Long: "docket reads and writes the records of a law office (lawyers, clients,\n" +
			"cases, calendar events, finances, documents, chat) through a storage\n" +
			"backend and keeps the activity log.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: memory, sqlite or remote")
	pf.StringVar(&flags.actor, "actor", "", "lawyer id to record writes under in the activity log")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(flags),
		newGetCmd(flags),
		newSetCmd(flags),
		newPushCmd(flags),
		newRmCmd(flags),
		newListCmd(flags),
		newFirstCmd(flags),
		newWatchCmd(flags),
		newLogsCmd(flags),
		newSeedCmd(flags),
		newMigrateCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "docket:", err)
	}
	return ExitCode(err)
}
