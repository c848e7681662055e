// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/internal/transport"
)

var (
	portsJSON    bool
	portsUSBOnly bool
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports that could host the display",
	Long: `List the serial ports present on this machine. USB adapters are shown
with their vendor and product IDs so the display controller can be told
apart from other devices.

Examples:
  umxctl ports
  umxctl ports --usb --json

Exit codes:
  0 - At least one port found
  1 - No ports found
  2 - Enumeration error`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	portsCmd.Flags().BoolVar(&portsJSON, "json", false, "Print ports as JSON")
	portsCmd.Flags().BoolVar(&portsUSBOnly, "usb", false, "Only list USB serial adapters")
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}
	if portsUSBOnly {
		ports = usbPorts(ports)
	}

	if portsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ports); err != nil {
			return err
		}
	} else {
		fmt.Printf("umxctl - Serial Ports\n\n")
		for _, p := range ports {
			fmt.Printf("  %s\n", p)
		}
		fmt.Printf("\nFound %d port(s)\n", len(ports))
	}

	if len(ports) == 0 {
		os.Exit(1)
	}
	return nil
}

func usbPorts(ports []transport.PortInfo) []transport.PortInfo {
	var usb []transport.PortInfo
	for _, p := range ports {
		if p.IsUSB {
			usb = append(usb, p)
		}
	}
	return usb
}
