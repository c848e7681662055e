// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

// Package abi exposes the encoders with the primitive argument shapes of
// the libumx C header: integer enum tags, byte slices for text and a
// caller-supplied output buffer. Each function returns the number of bytes
// written to buf, or -1 if the arguments are invalid, encoding fails or buf
// is too small. buf is never written on failure.
//
// Enum tags outside their defined range are rejected. The filled argument
// is a C boolean: zero is false, anything else is true.
package abi

import (
	"github.com/uartmatrix/umxctl/pkg/umx"
)

// Failure is returned instead of a length when no frame was written.
const Failure = -1

// SerializeParamRequest writes a PARAM_REQUEST frame.
func SerializeParamRequest(buf []byte) int {
	return emit(buf)(umx.EncodeParamRequest())
}

// SerializeSwitchMode writes a SWITCH_MODE frame. mode is 0 (text) or 1 (direct).
func SerializeSwitchMode(buf []byte, mode int) int {
	m, ok := displayMode(mode)
	if !ok {
		return Failure
	}
	return emit(buf)(umx.EncodeSwitchMode(m))
}

// SerializeWriteLine writes a WRITE_LINE frame. text must be UTF-8.
func SerializeWriteLine(buf []byte, row uint8, text []byte) int {
	return emit(buf)(umx.EncodeWriteLine(row, string(text)))
}

// SerializeSetFont writes a SET_FONT frame. font is 0 (default), 1 (pro) or 2 (ibm).
func SerializeSetFont(buf []byte, row uint8, font uint8) int {
	f := umx.FontType(font)
	if !f.Valid() {
		return Failure
	}
	return emit(buf)(umx.EncodeSetFont(row, f))
}

// SerializeSetColor writes a SET_COLOR frame.
func SerializeSetColor(buf []byte, row uint8, color umx.Color) int {
	return emit(buf)(umx.EncodeSetColor(row, color))
}

// SerializeSetAnimation writes a SET_ANIMATION frame. animation is 0 (none),
// 1 (blink) or 2 (slide); direction is only checked for slide.
func SerializeSetAnimation(buf []byte, row, animation, speed, direction uint8) int {
	a, err := umx.NewAnimation(umx.AnimationKind(animation), speed, umx.Direction(direction))
	if err != nil {
		return Failure
	}
	return emit(buf)(umx.EncodeSetAnimation(row, a))
}

// SerializeDrawPixel writes a DRAW_PIXEL frame.
func SerializeDrawPixel(buf []byte, position umx.Point, color umx.Color) int {
	return emit(buf)(umx.EncodeDrawPixel(position, color))
}

// SerializeDrawRow writes a DRAW_ROW frame.
func SerializeDrawRow(buf []byte, row uint8, pixels []umx.Color) int {
	return emit(buf)(umx.EncodeDrawRow(row, pixels))
}

// SerializeDrawLine writes a DRAW_LINE frame.
func SerializeDrawLine(buf []byte, p1, p2 umx.Point, thickness uint8, color umx.Color) int {
	return emit(buf)(umx.EncodeDrawLine(p1, p2, thickness, color))
}

// SerializeDrawRectangle writes a DRAW_RECTANGLE frame.
func SerializeDrawRectangle(buf []byte, p1, p2 umx.Point, thickness uint8, color umx.Color, filled int) int {
	return emit(buf)(umx.EncodeDrawRectangle(p1, p2, thickness, color, filled != 0))
}

// SerializeDrawTriangle writes a DRAW_TRIANGLE frame.
func SerializeDrawTriangle(buf []byte, p1, p2, p3 umx.Point, thickness uint8, color umx.Color, filled int) int {
	return emit(buf)(umx.EncodeDrawTriangle(p1, p2, p3, thickness, color, filled != 0))
}

// SerializeDrawCircle writes a DRAW_CIRCLE frame.
func SerializeDrawCircle(buf []byte, center umx.Point, radius, thickness uint8, color umx.Color, filled int) int {
	return emit(buf)(umx.EncodeDrawCircle(center, radius, thickness, color, filled != 0))
}

// SerializeClear writes a CLEAR frame.
func SerializeClear(buf []byte) int {
	return emit(buf)(umx.EncodeClear())
}

// SerializeEnableOutput writes an ENABLE_OUTPUT frame using the id from ids.
func SerializeEnableOutput(buf []byte, ids umx.ControlIDs) int {
	return emit(buf)(ids.EncodeEnableOutput())
}

// SerializeDisableOutput writes a DISABLE_OUTPUT frame using the id from ids.
func SerializeDisableOutput(buf []byte, ids umx.ControlIDs) int {
	return emit(buf)(ids.EncodeDisableOutput())
}

// SerializePing writes a PING frame using the id from ids.
func SerializePing(buf []byte, ids umx.ControlIDs) int {
	return emit(buf)(ids.EncodePing())
}

func displayMode(mode int) (umx.DisplayMode, bool) {
	if mode < 0 || mode > 0xFF {
		return 0, false
	}
	m := umx.DisplayMode(mode)
	return m, m.Valid()
}

// emit returns a function copying an encoded frame into buf.
func emit(buf []byte) func(umx.Frame, error) int {
	return func(f umx.Frame, err error) int {
		if err != nil || len(buf) < f.Len() {
			return Failure
		}
		return copy(buf, f.Bytes())
	}
}
