// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uartmatrix/umxctl/internal/script"
	"github.com/uartmatrix/umxctl/internal/transport"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

var (
	replayRealtime bool
	replayValidate bool
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a display script",
	Long: `Run a YAML (or JSON) display script. A script is a list of steps, each
setting exactly one instruction:

  name: hello
  steps:
    - mode: text
    - text: {row: 0, text: HELLO, font: ibm, color: "#ff8000"}
    - sleep: 2s
    - clear: true

Every step is encoded before anything is sent, so a script with an
invalid step sends nothing. With --dry-run the frames are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

var replayCmd = &cobra.Command{
	Use:   "replay <recording.cbor>",
	Short: "Send the frames of a recording made with --record",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Reproduce the recorded gaps between frames")
	replayCmd.Flags().BoolVar(&replayValidate, "validate", false, "Validate frames against the matrix size and stop on anomalies")
	rootCmd.AddCommand(runCmd, replayCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	sc, err := script.Parse(f)
	if err != nil {
		return err
	}
	ids := cfg.ControlIDs()

	if dryRun {
		frames, err := script.Compile(sc.Steps, ids)
		if err != nil {
			return err
		}
		return sendFrames(cmd.Context(), frames)
	}

	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	name := sc.Name
	if name == "" {
		name = args[0]
	}
	fmt.Printf("Running %s (%d steps) via %s\n", name, len(sc.Steps), s.info)
	logger.Info("run script", zap.String("script", name), zap.Int("steps", len(sc.Steps)))

	if err := script.Run(cmd.Context(), s.sender, sc.Steps, ids); err != nil {
		return err
	}
	fmt.Printf("Done\n")
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := transport.ReadRecording(f)
	if err != nil {
		return err
	}
	frames, err := transport.Frames(records)
	if err != nil {
		return err
	}

	if replayValidate {
		for i, fr := range frames {
			if anomalies := umx.ValidateFrame(fr, cfg.ControlIDs(), cfg.Bounds()); len(anomalies) > 0 {
				return fmt.Errorf("frame %d (%s): %s", i+1, umx.FrameName(fr, cfg.ControlIDs()), anomalies[0].Message)
			}
		}
	}

	if dryRun || !replayRealtime {
		return sendFrames(cmd.Context(), frames)
	}

	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Replaying %d frame(s) via %s\n", len(frames), s.info)
	for i, fr := range frames {
		if i > 0 {
			gap := records[i].Time().Sub(records[i-1].Time())
			if gap > 0 {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(gap):
				}
			}
		}
		if err := s.sender.Send(cmd.Context(), fr); err != nil {
			return fmt.Errorf("frame %d of %d: %w", i+1, len(frames), err)
		}
	}
	fmt.Printf("Done\n")
	return nil
}
