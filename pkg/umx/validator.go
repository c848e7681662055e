// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"fmt"
	"unicode/utf8"
)

// AnomalyType represents different types of payload anomalies
type AnomalyType int

const (
	AnomalyEmptyPayload AnomalyType = iota
	AnomalyUnknownCommand
	AnomalyLengthMismatch
	AnomalyInvalidValue
	AnomalyInvalidText
	AnomalyOutOfBounds
)

func (a AnomalyType) String() string {
	switch a {
	case AnomalyEmptyPayload:
		return "EMPTY_PAYLOAD"
	case AnomalyUnknownCommand:
		return "UNKNOWN_COMMAND"
	case AnomalyLengthMismatch:
		return "LENGTH_MISMATCH"
	case AnomalyInvalidValue:
		return "INVALID_VALUE"
	case AnomalyInvalidText:
		return "INVALID_TEXT"
	case AnomalyOutOfBounds:
		return "OUT_OF_BOUNDS"
	default:
		return "UNKNOWN"
	}
}

// ValidationError represents a payload validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]any
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// Bounds is the pixel area commands are checked against. A zero Bounds
// disables coordinate checks.
type Bounds struct {
	Width  int
	Height int
	Rows   int // text rows; zero disables row checks
}

// ValidateFrame validates the payload of f.
func ValidateFrame(f Frame, ids ControlIDs, bounds Bounds) []ValidationError {
	return ValidatePayload(f.Payload(), ids, bounds)
}

// ValidatePayload validates payload structure and detects anomalies.
// Returns a slice of validation errors (empty if payload is valid).
func ValidatePayload(payload []byte, ids ControlIDs, bounds Bounds) []ValidationError {
	errors := []ValidationError{}

	if len(payload) == 0 {
		return []ValidationError{{
			Type:    AnomalyEmptyPayload,
			Message: "Empty payload (no command id)",
		}}
	}

	id := CommandID(payload[0])
	if _, ok := ids.Lookup(id); ok && (!isFixed(id) || len(payload) == 1) {
		if len(payload) != 1 {
			errors = append(errors, ValidationError{
				Type:    AnomalyLengthMismatch,
				Message: fmt.Sprintf("Control command 0x%02X carries %d argument bytes", payload[0], len(payload)-1),
				Details: map[string]any{"length": len(payload), "expected": 1},
			})
		}
		return errors
	}

	if !isFixed(id) {
		return []ValidationError{{
			Type:    AnomalyUnknownCommand,
			Message: fmt.Sprintf("Unknown command id 0x%02X", payload[0]),
			Details: map[string]any{"id": payload[0]},
		}}
	}

	if err := checkLength(payload); err != nil {
		return []ValidationError{*err}
	}

	args := payload[1:]
	switch id {
	case CmdSwitchMode:
		if !DisplayMode(args[0]).Valid() {
			errors = append(errors, invalidValue("mode", args[0], 1))
		}

	case CmdWriteLine:
		errors = append(errors, checkRow(args[0], bounds)...)
		if !utf8.Valid(args[1:]) {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidText,
				Message: "WRITE_LINE text is not valid UTF-8",
				Details: map[string]any{"text": fmt.Sprintf("% X", args[1:])},
			})
		}

	case CmdSetFont:
		errors = append(errors, checkRow(args[0], bounds)...)
		if !FontType(args[1]).Valid() {
			errors = append(errors, invalidValue("font", args[1], uint8(FontIBM)))
		}

	case CmdSetColor:
		errors = append(errors, checkRow(args[0], bounds)...)

	case CmdSetAnimation:
		errors = append(errors, checkRow(args[0], bounds)...)
		if AnimationKind(args[1]) == AnimationSlide && !Direction(args[3]).Valid() {
			errors = append(errors, invalidValue("direction", args[3], 1))
		}

	case CmdDrawPixel:
		errors = append(errors, checkPoints(args[:2], bounds)...)

	case CmdDrawRow:
		if bounds.Height > 0 && int(args[0]) >= bounds.Height {
			errors = append(errors, outOfBounds("row", int(args[0]), bounds.Height))
		}
		if pixels := (len(args) - 1) / 3; bounds.Width > 0 && pixels > bounds.Width {
			errors = append(errors, outOfBounds("pixels", pixels, bounds.Width))
		}

	case CmdDrawLine, CmdDrawRectangle:
		errors = append(errors, checkPoints(args[:4], bounds)...)

	case CmdDrawTriangle:
		errors = append(errors, checkPoints(args[:6], bounds)...)

	case CmdDrawCircle:
		errors = append(errors, checkPoints(args[:2], bounds)...)
	}

	return errors
}

// checkLength verifies the payload length expected for a fixed command.
func checkLength(payload []byte) *ValidationError {
	id := CommandID(payload[0])
	n := len(payload)

	var ok bool
	expected := ""
	switch id {
	case CmdParamRequest, CmdClear:
		ok, expected = n == 1, "1"
	case CmdSwitchMode:
		ok, expected = n == 2, "2"
	case CmdWriteLine:
		ok, expected = n >= 2 && n <= 2+MaxTextLength, fmt.Sprintf("2-%d", 2+MaxTextLength)
	case CmdSetFont:
		ok, expected = n == 3, "3"
	case CmdSetColor:
		ok, expected = n == 5, "5"
	case CmdSetAnimation:
		if n < 3 {
			ok, expected = false, "3-5"
			break
		}
		switch AnimationKind(payload[2]) {
		case AnimationNone:
			ok, expected = n == 3, "3"
		case AnimationBlink:
			ok, expected = n == 4, "4"
		case AnimationSlide:
			ok, expected = n == 5, "5"
		default:
			return &ValidationError{
				Type:    AnomalyInvalidValue,
				Message: fmt.Sprintf("Invalid animation tag=%d (max %d)", payload[2], AnimationSlide),
				Details: map[string]any{"animation": payload[2], "max": uint8(AnimationSlide)},
			}
		}
	case CmdDrawPixel:
		ok, expected = n == 6, "6"
	case CmdDrawRow:
		ok, expected = n >= 2 && (n-2)%3 == 0, "2+3n"
	case CmdDrawLine:
		ok, expected = n == 9, "9"
	case CmdDrawCircle:
		ok, expected = n == 9, "9"
	case CmdDrawRectangle:
		ok, expected = n == 10, "10"
	case CmdDrawTriangle:
		ok, expected = n == 12, "12"
	default:
		return nil
	}

	if ok {
		return nil
	}
	return &ValidationError{
		Type:    AnomalyLengthMismatch,
		Message: fmt.Sprintf("%s payload length %d (expected %s bytes)", CommandName(id), n, expected),
		Details: map[string]any{"length": n, "expected": expected},
	}
}

func checkRow(row uint8, bounds Bounds) []ValidationError {
	if bounds.Rows > 0 && int(row) >= bounds.Rows {
		return []ValidationError{outOfBounds("text row", int(row), bounds.Rows)}
	}
	return nil
}

// checkPoints checks x,y pairs against the matrix size
func checkPoints(coords []byte, bounds Bounds) []ValidationError {
	var errors []ValidationError
	for i := 0; i+1 < len(coords); i += 2 {
		if bounds.Width > 0 && int(coords[i]) >= bounds.Width {
			errors = append(errors, outOfBounds("x", int(coords[i]), bounds.Width))
		}
		if bounds.Height > 0 && int(coords[i+1]) >= bounds.Height {
			errors = append(errors, outOfBounds("y", int(coords[i+1]), bounds.Height))
		}
	}
	return errors
}

func invalidValue(field string, value, max uint8) ValidationError {
	return ValidationError{
		Type:    AnomalyInvalidValue,
		Message: fmt.Sprintf("Invalid %s=%d (max %d)", field, value, max),
		Details: map[string]any{field: value, "max": max},
	}
}

func outOfBounds(field string, value, limit int) ValidationError {
	return ValidationError{
		Type:    AnomalyOutOfBounds,
		Message: fmt.Sprintf("%s=%d outside matrix (limit %d)", field, value, limit),
		Details: map[string]any{field: value, "limit": limit},
	}
}
