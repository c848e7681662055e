// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"fmt"
	"unicode/utf8"
)

// Command encoders build the payload for one display command and assemble
// it into a frame. They are pure and safe for concurrent use.

// EncodeParamRequest creates a PARAM_REQUEST frame (0x00).
func EncodeParamRequest() (Frame, error) {
	return Assemble([]byte{byte(CmdParamRequest)})
}

// EncodeSwitchMode creates a SWITCH_MODE frame (0x01).
func EncodeSwitchMode(mode DisplayMode) (Frame, error) {
	return Assemble([]byte{byte(CmdSwitchMode), mode.Byte()})
}

// EncodeWriteLine creates a WRITE_LINE frame (0x02) that replaces the text
// of a row. text must be valid UTF-8 of at most MaxTextLength bytes.
func EncodeWriteLine(row uint8, text string) (Frame, error) {
	if len(text) > MaxTextLength {
		return Frame{}, fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLong, len(text), MaxTextLength)
	}
	if !utf8.ValidString(text) {
		return Frame{}, ErrInvalidText
	}

	payload := make([]byte, 0, 2+len(text))
	payload = append(payload, byte(CmdWriteLine), row)
	payload = append(payload, text...)
	return Assemble(payload)
}

// EncodeSetFont creates a SET_FONT frame (0x03).
func EncodeSetFont(row uint8, font FontType) (Frame, error) {
	return Assemble([]byte{byte(CmdSetFont), row, font.Byte()})
}

// EncodeSetColor creates a SET_COLOR frame (0x04).
func EncodeSetColor(row uint8, color Color) (Frame, error) {
	return Assemble([]byte{byte(CmdSetColor), row, color.R, color.G, color.B})
}

// EncodeSetAnimation creates a SET_ANIMATION frame (0x05).
func EncodeSetAnimation(row uint8, animation Animation) (Frame, error) {
	payload := append([]byte{byte(CmdSetAnimation), row}, animation.Bytes()...)
	return Assemble(payload)
}

// EncodeDrawPixel creates a DRAW_PIXEL frame (0x06).
func EncodeDrawPixel(position Point, color Color) (Frame, error) {
	return Assemble([]byte{
		byte(CmdDrawPixel),
		position.X, position.Y,
		color.R, color.G, color.B,
	})
}

// EncodeDrawRow creates a DRAW_ROW frame (0x07) carrying one RGB triple per
// pixel. At most MaxRowPixels pixels fit in a frame.
func EncodeDrawRow(row uint8, pixels []Color) (Frame, error) {
	payload := make([]byte, 0, 2+3*len(pixels))
	payload = append(payload, byte(CmdDrawRow), row)
	for _, p := range pixels {
		payload = append(payload, p.R, p.G, p.B)
	}
	return Assemble(payload)
}

// EncodeDrawLine creates a DRAW_LINE frame (0x08).
func EncodeDrawLine(p1, p2 Point, thickness uint8, color Color) (Frame, error) {
	return Assemble([]byte{
		byte(CmdDrawLine),
		p1.X, p1.Y, p2.X, p2.Y,
		thickness,
		color.R, color.G, color.B,
	})
}

// EncodeDrawRectangle creates a DRAW_RECTANGLE frame (0x09) from two
// opposite corners.
func EncodeDrawRectangle(p1, p2 Point, thickness uint8, color Color, filled bool) (Frame, error) {
	return Assemble([]byte{
		byte(CmdDrawRectangle),
		p1.X, p1.Y, p2.X, p2.Y,
		thickness,
		color.R, color.G, color.B,
		boolByte(filled),
	})
}

// EncodeDrawTriangle creates a DRAW_TRIANGLE frame (0x0A).
func EncodeDrawTriangle(p1, p2, p3 Point, thickness uint8, color Color, filled bool) (Frame, error) {
	return Assemble([]byte{
		byte(CmdDrawTriangle),
		p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y,
		thickness,
		color.R, color.G, color.B,
		boolByte(filled),
	})
}

// EncodeDrawCircle creates a DRAW_CIRCLE frame (0x0B).
func EncodeDrawCircle(center Point, radius, thickness uint8, color Color, filled bool) (Frame, error) {
	return Assemble([]byte{
		byte(CmdDrawCircle),
		center.X, center.Y,
		radius, thickness,
		color.R, color.G, color.B,
		boolByte(filled),
	})
}

// EncodeClear creates a CLEAR frame (0x0C).
func EncodeClear() (Frame, error) {
	return Assemble([]byte{byte(CmdClear)})
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
