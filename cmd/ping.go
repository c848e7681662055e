// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/internal/transport"
)

var (
	pingTimeout time.Duration
	pingCount   int
	pingWindow  int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the display answers a ping command",
	Long: `Send the configured ping command and wait for any acknowledgment bytes.

The ping command id is firmware specific and must be configured
(protocol.pingId or UMX_PROTOCOL_PINGID).

Exit codes:
  0 - All pings answered
  1 - One or more pings failed/timed out
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 2*time.Second, "Timeout for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
	pingCmd.Flags().IntVar(&pingWindow, "window", 16, "Maximum acknowledgment bytes to read")
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	frame, err := cfg.ControlIDs().EncodePing()
	if err != nil {
		return err
	}

	conn, connInfo, err := transport.Open(cmd.Context(), cfg, transport.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	opts := append(transport.FromConfig(cfg.Transport),
		transport.WithAck(pingWindow, pingTimeout),
		transport.WithAckOn(),
		transport.WithControlIDs(cfg.ControlIDs()),
		transport.WithLogger(logger),
	)
	sender := transport.NewSender(conn, opts...)

	fmt.Printf("umxctl - Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %v per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		start := time.Now()
		if err := sender.Send(cmd.Context(), frame); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		if ack := sender.LastAck(); len(ack) > 0 {
			fmt.Printf("ACK %q, rtt=%v\n", ack, time.Since(start).Round(time.Millisecond))
			successCount++
		} else {
			fmt.Printf("TIMEOUT (no response in %v)\n", pingTimeout)
			failCount++
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
