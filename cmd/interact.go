package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newInteractCmd builds `expect interact`: hand the spawned process's
// transport directly to the user's terminal, putting stdin in raw mode
// first when it's a real TTY (SPEC_FULL.md domain-stack entry for
// golang.org/x/term: "cobra CLI raw-mode setup").
func newInteractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interact -- <command> [args...]",
		Short: "Spawn a command and interact with it directly",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spawnFromArgs(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			restore, err := enterRawMode()
			if err != nil {
				return err
			}
			defer restore()

			result, err := s.Interact().Start()
			if err != nil {
				return fmt.Errorf("interact: %w", err)
			}
			if logger != nil {
				logger.Printf("interact ended: %+v", result)
			}
			return nil
		},
	}
	return cmd
}

// enterRawMode puts stdin in raw mode when it's a real TTY and returns a
// restore function; on a non-TTY stdin (piped input, CI), it's a no-op.
func enterRawMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return func() {}, nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, oldState) }, nil
}
