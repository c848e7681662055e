// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a matrix coordinate.
type Point struct {
	X uint8 `json:"x" yaml:"x"`
	Y uint8 `json:"y" yaml:"y"`
}

// Color is an RGB color.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// DefaultColor returns mid-gray, the color rows start with.
func DefaultColor() Color {
	return Color{R: 128, G: 128, B: 128}
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ParseColor accepts "#rrggbb", "rrggbb" or "r,g,b".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid color %q: expected r,g,b", s)
		}
		var rgb [3]uint8
		for i, part := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			rgb[i] = uint8(v)
		}
		return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
