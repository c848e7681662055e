// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"fmt"
	"strings"
)

// CommandName returns the human-readable name for a fixed command id
func CommandName(id CommandID) string {
	switch id {
	case CmdParamRequest:
		return "PARAM_REQUEST"
	case CmdSwitchMode:
		return "SWITCH_MODE"
	case CmdWriteLine:
		return "WRITE_LINE"
	case CmdSetFont:
		return "SET_FONT"
	case CmdSetColor:
		return "SET_COLOR"
	case CmdSetAnimation:
		return "SET_ANIMATION"
	case CmdDrawPixel:
		return "DRAW_PIXEL"
	case CmdDrawRow:
		return "DRAW_ROW"
	case CmdDrawLine:
		return "DRAW_LINE"
	case CmdDrawRectangle:
		return "DRAW_RECTANGLE"
	case CmdDrawTriangle:
		return "DRAW_TRIANGLE"
	case CmdDrawCircle:
		return "DRAW_CIRCLE"
	case CmdClear:
		return "CLEAR"
	default:
		return "UNKNOWN"
	}
}

func (id CommandID) String() string {
	return CommandName(id)
}

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f Frame) string {
	return FormatFrameWith(f, ControlIDs{})
}

// FormatFrameWith formats a frame, naming configured control commands.
func FormatFrameWith(f Frame, ids ControlIDs) string {
	payload := f.Payload()
	name := frameName(payload, ids)

	var id string
	if len(payload) > 0 {
		id = fmt.Sprintf(" (0x%02X)", payload[0])
	}

	result := fmt.Sprintf("%s%s len=%d crc=0x%02X\n", name, id, len(payload), f.Checksum())
	return result + FormatPayload(payload, ids)
}

// FrameName returns the command name of f, naming configured control
// commands.
func FrameName(f Frame, ids ControlIDs) string {
	return frameName(f.Payload(), ids)
}

// frameName resolves the command name of a payload. A one-byte payload
// whose id is configured as a control command is named after it, even when
// the id also has a fixed meaning.
func frameName(payload []byte, ids ControlIDs) string {
	if len(payload) == 0 {
		return "EMPTY"
	}
	id := CommandID(payload[0])
	if name, ok := ids.Lookup(id); ok {
		if !isFixed(id) || len(payload) == 1 {
			return name
		}
	}
	return CommandName(id)
}

// FormatPayload formats the payload fields based on command id
func FormatPayload(payload []byte, ids ControlIDs) string {
	if len(payload) == 0 {
		return "  (empty payload)\n"
	}

	id := CommandID(payload[0])
	if _, ok := ids.Lookup(id); ok && (!isFixed(id) || len(payload) == 1) {
		return "  (no arguments)\n"
	}
	if !isFixed(id) {
		return formatRaw(payload[1:])
	}
	if err := checkLength(payload); err != nil {
		return fmt.Sprintf("  Malformed: %s\n", err.Message) + formatRaw(payload[1:])
	}

	args := payload[1:]
	switch id {
	case CmdParamRequest, CmdClear:
		return "  (no arguments)\n"

	case CmdSwitchMode:
		mode := DisplayMode(args[0])
		return fmt.Sprintf("  Mode: %s (%d)\n", mode, args[0])

	case CmdWriteLine:
		return fmt.Sprintf("  Row: %d, Text: %q (%d bytes)\n", args[0], string(args[1:]), len(args)-1)

	case CmdSetFont:
		font := FontType(args[1])
		return fmt.Sprintf("  Row: %d, Font: %s (%d)\n", args[0], font, args[1])

	case CmdSetColor:
		return fmt.Sprintf("  Row: %d, Color: %s\n", args[0], colorAt(args, 1).Hex())

	case CmdSetAnimation:
		return fmt.Sprintf("  Row: %d, Animation: %s\n", args[0], animationAt(args[1:]))

	case CmdDrawPixel:
		return fmt.Sprintf("  Pixel: %s, Color: %s\n", pointAt(args, 0), colorAt(args, 2).Hex())

	case CmdDrawRow:
		pixels := (len(args) - 1) / 3
		result := fmt.Sprintf("  Row: %d, Pixels: %d\n", args[0], pixels)
		if pixels > 0 {
			result += fmt.Sprintf("  First: %s, Last: %s\n", colorAt(args, 1).Hex(), colorAt(args, 1+3*(pixels-1)).Hex())
		}
		return result

	case CmdDrawLine:
		return fmt.Sprintf("  From: %s, To: %s, Thickness: %d, Color: %s\n",
			pointAt(args, 0), pointAt(args, 2), args[4], colorAt(args, 5).Hex())

	case CmdDrawRectangle:
		return fmt.Sprintf("  Corner: %s, Corner: %s, Thickness: %d, Color: %s, Filled: %s\n",
			pointAt(args, 0), pointAt(args, 2), args[4], colorAt(args, 5).Hex(), formatFilled(args[8]))

	case CmdDrawTriangle:
		return fmt.Sprintf("  Vertices: %s %s %s, Thickness: %d, Color: %s, Filled: %s\n",
			pointAt(args, 0), pointAt(args, 2), pointAt(args, 4), args[6], colorAt(args, 7).Hex(), formatFilled(args[10]))

	case CmdDrawCircle:
		return fmt.Sprintf("  Center: %s, Radius: %d, Thickness: %d, Color: %s, Filled: %s\n",
			pointAt(args, 0), args[2], args[3], colorAt(args, 4).Hex(), formatFilled(args[7]))
	}

	return formatRaw(args)
}

func pointAt(b []byte, i int) string {
	return fmt.Sprintf("(%d,%d)", b[i], b[i+1])
}

func colorAt(b []byte, i int) Color {
	return Color{R: b[i], G: b[i+1], B: b[i+2]}
}

func animationAt(b []byte) string {
	kind := AnimationKind(b[0])
	switch kind {
	case AnimationBlink:
		return Blink(b[1]).String()
	case AnimationSlide:
		return fmt.Sprintf("slide(speed=%d, %s)", b[1], Direction(b[2]))
	}
	return kind.String()
}

func formatFilled(b byte) string {
	if b == 0 {
		return "No"
	}
	return "Yes"
}

// formatRaw renders bytes as a hex dump, 16 per line
func formatRaw(b []byte) string {
	if len(b) == 0 {
		return "  (no arguments)\n"
	}
	var sb strings.Builder
	for i := 0; i < len(b); i += 16 {
		end := min(i+16, len(b))
		fmt.Fprintf(&sb, "  %04X: % X\n", i, b[i:end])
	}
	return sb.String()
}

func isFixed(id CommandID) bool {
	return id <= CmdClear
}
