package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcosson/goexpect/internal/session"
)

// splitCommandArgs separates a cobra "--" argument list into program+args,
// falling back to the CLI config's default shell when none is given.
func splitCommandArgs(args []string, fallbackShell string) (string, []string, error) {
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	if fallbackShell != "" {
		return fallbackShell, nil, nil
	}
	return "", nil, fmt.Errorf("no command given (pass one after --, or set cli.default_shell)")
}

// spawnFromArgs builds a session.Config from command-line flags and shared
// config, then spawns it.
func spawnFromArgs(cmd *cobra.Command, args []string) (*session.Session, error) {
	cfg := loadedConfig()
	program, cmdArgs, err := splitCommandArgs(args, cfg.CLI.DefaultShell)
	if err != nil {
		return nil, err
	}

	sessionCfg := session.DefaultConfig(program, cmdArgs)
	sessionCfg.Logger = logger

	return session.SpawnWithConfig(sessionCfg)
}
