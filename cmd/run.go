package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dcosson/goexpect/internal/pattern"
)

// newRunCmd builds `expect run`: spawn a command, then walk a list of
// expect/send steps given as paired --expect/--send flags, printing each
// match and finally the process's exit status.
func newRunCmd() *cobra.Command {
	var expects []string
	var sends []string
	var useRegex bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Script a command: spawn it, expect patterns, send responses",
		Long: `run spawns <command> under a PTY and walks --expect/--send pairs in
order: expect the Nth --expect pattern, then (if given) send the Nth --send
text. A trailing --expect with no matching --send simply waits for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := spawnFromArgs(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			for i, src := range expects {
				p, err := compilePattern(src, useRegex)
				if err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
				var matchErr error
				if timeout > 0 {
					m, err := s.ExpectTimeout(p, timeout)
					matchErr = err
					if err == nil {
						fmt.Println(m.Matched)
					}
				} else {
					m, err := s.Expect(p)
					matchErr = err
					if err == nil {
						fmt.Println(m.Matched)
					}
				}
				if matchErr != nil {
					return fmt.Errorf("step %d: expect %q: %w", i, src, matchErr)
				}
				if i < len(sends) {
					if err := s.SendLine(sends[i]); err != nil {
						return fmt.Errorf("step %d: send: %w", i, err)
					}
				}
			}

			status, err := s.Wait()
			if err != nil {
				return fmt.Errorf("wait: %w", err)
			}
			fmt.Println(colorizeStatus(status.String(), status.Success()))
			if !status.Success() {
				return fmt.Errorf("command exited unsuccessfully")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&expects, "expect", nil, "pattern to wait for (repeatable; paired by index with --send)")
	cmd.Flags().StringArrayVar(&sends, "send", nil, "line to send after the matching --expect (repeatable)")
	cmd.Flags().BoolVar(&useRegex, "regex", false, "treat --expect patterns as regular expressions instead of literal text")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-step expect timeout (0 uses the session default)")

	return cmd
}

func compilePattern(src string, useRegex bool) (pattern.Pattern, error) {
	if useRegex {
		return pattern.RegexPattern(src)
	}
	return pattern.Literal(src), nil
}

// colorizeStatus colors the final exit line green/red when stdout is a
// color-capable terminal, and returns text unchanged otherwise — the CLI's
// one user of the termenv color-profile-detection dependency named in
// SPEC_FULL.md's domain stack.
func colorizeStatus(text string, ok bool) string {
	profile := termenv.NewOutput(os.Stdout).ColorProfile()
	if profile == termenv.Ascii {
		return text
	}
	color := termenv.ANSIRed
	if ok {
		color = termenv.ANSIGreen
	}
	return termenv.String(text).Foreground(color).String()
}
