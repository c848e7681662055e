// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors
//
// umxctl - UART LED Matrix Controller
//
// A CLI tool for encoding, sending and inspecting UMX display frames
// over a serial port or a WebSocket bridge.

package main

import (
	"os"

	"github.com/uartmatrix/umxctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
