package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcosson/goexpect/internal/interact"
	"github.com/dcosson/goexpect/internal/transcript"
)

// newRecordCmd builds `expect record`: interact with the spawned command
// exactly like `expect interact`, while also appending every output/input/
// resize event to an asciicast v2 file (spec.md §6's external contract,
// implemented by internal/transcript).
func newRecordCmd() *cobra.Command {
	var out string
	var title string

	cmd := &cobra.Command{
		Use:   "record --out <path> -- <command> [args...]",
		Short: "Spawn a command, interact with it, and record an asciicast v2 transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			s, err := spawnFromArgs(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			dims := s.Config().Dimensions
			meta := transcript.NewMetadata(dims.Cols, dims.Rows)
			meta.Command = s.Config().Command
			meta.Title = title

			rec, err := transcript.NewRecorder(out, meta)
			if err != nil {
				return fmt.Errorf("starting recording: %w", err)
			}
			defer rec.Close()

			restore, err := enterRawMode()
			if err != nil {
				return err
			}
			defer restore()

			result, err := s.Interact().
				WithListener(func(ev interact.Event) {
					switch ev.Kind {
					case interact.EventOutput:
						_ = rec.AppendOutput(ev.Data)
					case interact.EventInput:
						_ = rec.AppendInput(ev.Data)
					case interact.EventResize:
						_ = rec.AppendResize(ev.Size.Cols, ev.Size.Rows)
					}
				}).
				Start()
			if err != nil {
				return fmt.Errorf("interact: %w", err)
			}
			if logger != nil {
				logger.Printf("recording %q ended: %+v", out, result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "asciicast v2 output path (required)")
	cmd.Flags().StringVar(&title, "title", "", "recording title stored in the asciicast header")

	return cmd
}
