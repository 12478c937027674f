// Command expect is the CLI surface over the goexpect library: spawn a
// program under a PTY and either script it (run), hand it over to the
// user's real terminal (interact), or do the latter while recording an
// asciicast v2 transcript (record). Grounded on h2's internal/cmd/root.go
// cobra tree, trimmed to this domain's three subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "expect:", err)
		os.Exit(1)
	}
}
