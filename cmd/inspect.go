// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/internal/transport"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

var (
	inspectFormat string
	inspectStats  bool
	inspectLive   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Decode, format and validate UMX frames",
	Long: `Decode a byte stream of UMX frames and print each one in human-readable
form, flagging checksum errors, malformed payloads and coordinates that fall
outside the configured matrix.

Input is read from the file argument or stdin, either as raw bytes or as
hex text ("55 4D 58 00 01 0C 24", "0x55,0x4D,..."). With --live, bytes are
read from the display connection instead, which is useful on a loopback
or bridge that echoes what it receives.

Exits non-zero when any frame fails to decode or validate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "auto", "Input format (auto, hex, binary)")
	inspectCmd.Flags().BoolVar(&inspectStats, "stats", false, "Print statistics at the end")
	inspectCmd.Flags().BoolVar(&inspectLive, "live", false, "Read from the display connection until interrupted")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ins := newInspector(os.Stdout, cfg.ControlIDs(), cfg.Bounds())

	if inspectLive {
		return runInspectLive(cmd, ins)
	}

	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	if data, err = decodeInput(data, inspectFormat); err != nil {
		return err
	}

	ins.feed(data)
	ins.finish()

	if inspectStats {
		fmt.Print(ins.stats.String())
	}
	if n := ins.stats.Errors(); n > 0 {
		return fmt.Errorf("%d invalid frame(s)", n)
	}
	return nil
}

func runInspectLive(cmd *cobra.Command, ins *inspector) error {
	conn, connInfo, err := transport.Open(cmd.Context(), cfg, transport.Password)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("umxctl - Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	go func() {
		<-cmd.Context().Done()
		conn.Close()
	}()

	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, transport.ErrConnectionClosed) || cmd.Context().Err() != nil {
				break
			}
			logger.Sugar().Warnf("read error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		ins.feed(buf[:n])
	}

	if inspectStats {
		fmt.Print(ins.stats.String())
	}
	return nil
}

// decodeInput turns hex text into bytes; binary input is returned as is
func decodeInput(data []byte, format string) ([]byte, error) {
	switch format {
	case "binary":
		return data, nil
	case "hex":
		return parseHex(string(data))
	case "auto":
		if bytes.HasPrefix(data, []byte{umx.MagicU, umx.MagicM, umx.MagicX}) {
			return data, nil
		}
		if b, err := parseHex(string(data)); err == nil {
			return b, nil
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown format %q (auto, hex, binary)", format)
}

// parseHex accepts hex bytes separated by whitespace or commas, with or
// without 0x prefixes
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	}) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if len(field)%2 != 0 {
			field = "0" + field
		}
		b.WriteString(field)
	}
	return hex.DecodeString(b.String())
}

// inspector prints decoded frames and their anomalies
type inspector struct {
	w       io.Writer
	decoder *umx.Decoder
	stats   *umx.Statistics
	ids     umx.ControlIDs
	bounds  umx.Bounds
}

func newInspector(w io.Writer, ids umx.ControlIDs, bounds umx.Bounds) *inspector {
	return &inspector{
		w:       w,
		decoder: umx.NewDecoder(),
		stats:   umx.NewStatistics(),
		ids:     ids,
		bounds:  bounds,
	}
}

func (in *inspector) feed(data []byte) {
	for _, b := range data {
		frame, err := in.decoder.DecodeByte(b)
		if err != nil {
			in.stats.Update(nil, err, nil, in.ids)
			in.printDecodeError(err)
			continue
		}
		if frame == nil {
			continue
		}

		anomalies := umx.ValidateFrame(*frame, in.ids, in.bounds)
		in.stats.Update(frame, nil, anomalies, in.ids)

		fmt.Fprint(in.w, umx.FormatFrameWith(*frame, in.ids))
		if len(anomalies) > 0 {
			in.printValidationErrors(anomalies)
		}
	}
}

// finish reports a frame cut off at the end of the input
func (in *inspector) finish() {
	if pending := in.decoder.GetRawBytes(); len(pending) > 0 {
		err := fmt.Errorf("%w: %d byte(s) pending: % X", umx.ErrTruncated, len(pending), pending)
		in.stats.Update(nil, err, nil, in.ids)
		in.printDecodeError(err)
		in.decoder.Reset()
	}
}

func (in *inspector) printDecodeError(err error) {
	fmt.Fprintf(in.w, "\033[1;31mDECODE ERROR:\033[0m %v\n", err)
	fmt.Fprintf(in.w, "  >>> DECODE FAILED <<<\n\n")
}

func (in *inspector) printValidationErrors(anomalies []umx.ValidationError) {
	for i, a := range anomalies {
		color := "1;33"
		if a.Type == umx.AnomalyLengthMismatch || a.Type == umx.AnomalyUnknownCommand || a.Type == umx.AnomalyEmptyPayload {
			color = "1;31"
		}
		fmt.Fprintf(in.w, "  Issue %d: \033[%sm%s\033[0m (%s)\n", i+1, color, a.Message, a.Type)
	}
	fmt.Fprintf(in.w, "  >>> FRAME REJECTED <<<\n\n")
}
