// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uartmatrix/umxctl/internal/config"
	"github.com/uartmatrix/umxctl/internal/logging"
)

var (
	configPath string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Transport flags
	recordPath string
	padFrames  bool
	dryRun     bool

	logLevel string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "umxctl",
	Short: "UART LED matrix controller",
	Long: `umxctl - encode and send display commands to a UART LED matrix.

Every command is framed as "UMX" + 16-bit length + payload + CRC-8 and
written to the display verbatim, paced so the controller can keep up.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the UMX_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Settings can also come from a YAML config file (--config, UMX_CONFIG or
./umxctl.yaml) and UMX_* environment variables, e.g. UMX_PROTOCOL_PINGID.`,
	Version:      "1.0.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.InitLogger(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l

		for _, c := range cfg.ControlIDs().Conflicts() {
			logger.Warn("control id overlaps a fixed command", zap.String("conflict", c))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&recordPath, "record", "", "Append every sent frame to a CBOR recording")
	rootCmd.PersistentFlags().BoolVar(&padFrames, "pad", false, "Zero-pad every frame to 512 bytes on the wire")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print frames instead of sending them")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
