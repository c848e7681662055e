// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

// Package umx implements the UMX serial framing used by UART LED-matrix
// display controllers.
//
// Every command is sent as a single frame:
//
//	'U' 'M' 'X' | length (uint16, big-endian) | payload | CRC-8
//
// The payload is a command id followed by the command arguments. The
// checksum is CRC-8/CCITT over the payload only. This package provides
// frame assembly, one encoder per display command, the variant encodings
// shared with the controller firmware, and a frame decoder used to inspect
// and verify frames produced by the encoders.
package umx

// Frame magic
const (
	MagicU = 'U'
	MagicM = 'M'
	MagicX = 'X'
)

// Frame size limits
const (
	MaxFrameSize   = 512 // capacity of the controller's receive buffer
	HeaderSize     = 5   // magic + length
	ChecksumSize   = 1
	FrameOverhead  = HeaderSize + ChecksumSize
	MaxPayloadSize = MaxFrameSize - FrameOverhead
	MaxTextLength  = 255
	MaxRowPixels   = (MaxPayloadSize - 2) / 3 // command id + row byte, then RGB triples
)

// CRC-8/CCITT configuration
const (
	crcPolynomial = 0x07
	crcInitial    = 0x00
)

// CommandID is the first payload byte of every frame.
type CommandID uint8

// Command ids understood by the controller firmware. These values are
// hard-coded on the device and must never be renumbered.
const (
	CmdParamRequest  CommandID = 0x00
	CmdSwitchMode    CommandID = 0x01
	CmdWriteLine     CommandID = 0x02
	CmdSetFont       CommandID = 0x03
	CmdSetColor      CommandID = 0x04
	CmdSetAnimation  CommandID = 0x05
	CmdDrawPixel     CommandID = 0x06
	CmdDrawRow       CommandID = 0x07
	CmdDrawLine      CommandID = 0x08
	CmdDrawRectangle CommandID = 0x09
	CmdDrawTriangle  CommandID = 0x0A
	CmdDrawCircle    CommandID = 0x0B
	CmdClear         CommandID = 0x0C
)

// fixedCommands lists every id with a firmware-defined meaning.
var fixedCommands = []CommandID{
	CmdParamRequest, CmdSwitchMode, CmdWriteLine, CmdSetFont, CmdSetColor,
	CmdSetAnimation, CmdDrawPixel, CmdDrawRow, CmdDrawLine, CmdDrawRectangle,
	CmdDrawTriangle, CmdDrawCircle, CmdClear,
}

// Decoder states (internal)
const (
	stateMagicU = iota
	stateMagicM
	stateMagicX
	stateLengthHi
	stateLengthLo
	statePayload
	stateChecksum
)
