// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"strings"
	"testing"
)

// ============================================================
// Formatter Tests
// ============================================================

func TestCommandName(t *testing.T) {
	names := map[CommandID]string{
		CmdParamRequest:  "PARAM_REQUEST",
		CmdSwitchMode:    "SWITCH_MODE",
		CmdWriteLine:     "WRITE_LINE",
		CmdSetFont:       "SET_FONT",
		CmdSetColor:      "SET_COLOR",
		CmdSetAnimation:  "SET_ANIMATION",
		CmdDrawPixel:     "DRAW_PIXEL",
		CmdDrawRow:       "DRAW_ROW",
		CmdDrawLine:      "DRAW_LINE",
		CmdDrawRectangle: "DRAW_RECTANGLE",
		CmdDrawTriangle:  "DRAW_TRIANGLE",
		CmdDrawCircle:    "DRAW_CIRCLE",
		CmdClear:         "CLEAR",
		0x7F:             "UNKNOWN",
	}
	for id, expected := range names {
		if got := CommandName(id); got != expected {
			t.Errorf("CommandName(0x%02X) = %s, expected %s", uint8(id), got, expected)
		}
	}
}

func TestFormatFrame(t *testing.T) {
	tests := []struct {
		name     string
		encode   func() (Frame, error)
		contains []string
	}{
		{
			name:     "write line",
			encode:   func() (Frame, error) { return EncodeWriteLine(3, "THISISATEST") },
			contains: []string{"WRITE_LINE (0x02)", "len=13", "crc=0xD6", "Row: 3", `"THISISATEST"`},
		},
		{
			name:     "switch mode",
			encode:   func() (Frame, error) { return EncodeSwitchMode(ModeDirect) },
			contains: []string{"SWITCH_MODE", "Mode: direct (1)"},
		},
		{
			name:     "slide animation",
			encode:   func() (Frame, error) { return EncodeSetAnimation(1, Slide(10, DirectionRight)) },
			contains: []string{"SET_ANIMATION", "slide(speed=10, right)"},
		},
		{
			name: "circle",
			encode: func() (Frame, error) {
				return EncodeDrawCircle(Point{32, 16}, 8, 1, Color{255, 0, 0}, true)
			},
			contains: []string{"DRAW_CIRCLE", "Center: (32,16)", "Radius: 8", "#ff0000", "Filled: Yes"},
		},
		{
			name:     "draw row",
			encode:   func() (Frame, error) { return EncodeDrawRow(4, []Color{{1, 2, 3}, {4, 5, 6}}) },
			contains: []string{"DRAW_ROW", "Row: 4, Pixels: 2", "First: #010203", "Last: #040506"},
		},
		{
			name:     "clear",
			encode:   EncodeClear,
			contains: []string{"CLEAR (0x0C)", "(no arguments)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.encode()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			out := FormatFrame(f)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatFrame_ControlIDs(t *testing.T) {
	ids := ControlIDs{Ping: idp(0x22)}
	f, _ := ids.EncodePing()

	if out := FormatFrameWith(f, ids); !strings.HasPrefix(out, "PING (0x22)") {
		t.Errorf("expected PING prefix, got:\n%s", out)
	}
	if out := FormatFrame(f); !strings.HasPrefix(out, "UNKNOWN (0x22)") {
		t.Errorf("expected UNKNOWN prefix without ids, got:\n%s", out)
	}

	// A legacy id names the control command only when the payload has no arguments
	legacy := LegacyControlIDs()
	rect, _ := EncodeDrawRectangle(Point{}, Point{1, 1}, 1, Color{}, false)
	if out := FormatFrameWith(rect, legacy); !strings.HasPrefix(out, "DRAW_RECTANGLE") {
		t.Errorf("expected DRAW_RECTANGLE, got:\n%s", out)
	}
	enable, _ := legacy.EncodeEnableOutput()
	if out := FormatFrameWith(enable, legacy); !strings.HasPrefix(out, "ENABLE_OUTPUT") {
		t.Errorf("expected ENABLE_OUTPUT, got:\n%s", out)
	}
}

func TestFormatPayload_Malformed(t *testing.T) {
	out := FormatPayload([]byte{byte(CmdSetColor), 0x00, 0xFF}, ControlIDs{})
	if !strings.Contains(out, "Malformed") || !strings.Contains(out, "0000: 00 FF") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

// ============================================================
// Validator Tests
// ============================================================

func TestValidatePayload_EncodedFramesAreValid(t *testing.T) {
	bounds := Bounds{Width: 64, Height: 32, Rows: 3}
	var frames []Frame
	for _, encode := range []func() (Frame, error){
		EncodeParamRequest,
		func() (Frame, error) { return EncodeSwitchMode(ModeText) },
		func() (Frame, error) { return EncodeWriteLine(2, "ok") },
		func() (Frame, error) { return EncodeSetFont(0, FontPro) },
		func() (Frame, error) { return EncodeSetColor(1, DefaultColor()) },
		func() (Frame, error) { return EncodeSetAnimation(1, Blink(2)) },
		func() (Frame, error) { return EncodeSetAnimation(1, Slide(2, DirectionLeft)) },
		func() (Frame, error) { return EncodeDrawPixel(Point{63, 31}, Color{}) },
		func() (Frame, error) { return EncodeDrawRow(31, make([]Color, 64)) },
		func() (Frame, error) { return EncodeDrawLine(Point{}, Point{63, 31}, 1, Color{}) },
		func() (Frame, error) { return EncodeDrawRectangle(Point{}, Point{5, 5}, 1, Color{}, true) },
		func() (Frame, error) { return EncodeDrawTriangle(Point{}, Point{5, 0}, Point{2, 4}, 1, Color{}, false) },
		func() (Frame, error) { return EncodeDrawCircle(Point{32, 16}, 5, 1, Color{}, true) },
		EncodeClear,
	} {
		f, err := encode()
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		frames = append(frames, f)
	}

	for _, f := range frames {
		if errs := ValidateFrame(f, ControlIDs{}, bounds); len(errs) != 0 {
			t.Errorf("%s: unexpected anomalies %v", FormatFrame(f), errs)
		}
	}
}

func TestValidatePayload_Anomalies(t *testing.T) {
	bounds := Bounds{Width: 64, Height: 32, Rows: 3}

	tests := []struct {
		name     string
		payload  []byte
		expected AnomalyType
	}{
		{"empty", []byte{}, AnomalyEmptyPayload},
		{"unknown id", []byte{0x40}, AnomalyUnknownCommand},
		{"short color", []byte{byte(CmdSetColor), 0, 1}, AnomalyLengthMismatch},
		{"ragged row", []byte{byte(CmdDrawRow), 0, 1, 2}, AnomalyLengthMismatch},
		{"bad mode", []byte{byte(CmdSwitchMode), 5}, AnomalyInvalidValue},
		{"bad font", []byte{byte(CmdSetFont), 0, 9}, AnomalyInvalidValue},
		{"bad animation tag", []byte{byte(CmdSetAnimation), 0, 7}, AnomalyInvalidValue},
		{"bad direction", []byte{byte(CmdSetAnimation), 0, 2, 1, 4}, AnomalyInvalidValue},
		{"bad text", []byte{byte(CmdWriteLine), 0, 0xC3}, AnomalyInvalidText},
		{"row out of range", []byte{byte(CmdWriteLine), 3}, AnomalyOutOfBounds},
		{"pixel out of range", []byte{byte(CmdDrawPixel), 64, 0, 0, 0, 0}, AnomalyOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePayload(tt.payload, ControlIDs{}, bounds)
			if len(errs) == 0 {
				t.Fatal("expected an anomaly")
			}
			if errs[0].Type != tt.expected {
				t.Errorf("anomaly = %s (%s), expected %s", errs[0].Type, errs[0].Message, tt.expected)
			}
		})
	}
}

func TestValidatePayload_ZeroBoundsSkipsCoordinates(t *testing.T) {
	payload := []byte{byte(CmdDrawPixel), 200, 200, 0, 0, 0}
	if errs := ValidatePayload(payload, ControlIDs{}, Bounds{}); len(errs) != 0 {
		t.Errorf("unexpected anomalies: %v", errs)
	}
}

func TestValidatePayload_ControlCommand(t *testing.T) {
	ids := ControlIDs{Ping: idp(0x22)}
	if errs := ValidatePayload([]byte{0x22}, ids, Bounds{}); len(errs) != 0 {
		t.Errorf("unexpected anomalies: %v", errs)
	}
	errs := ValidatePayload([]byte{0x22, 0x00}, ids, Bounds{})
	if len(errs) != 1 || errs[0].Type != AnomalyLengthMismatch {
		t.Errorf("expected length mismatch, got %v", errs)
	}
}
