// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"fmt"
	"strings"
)

// DisplayMode selects how the controller renders content.
type DisplayMode uint8

// Display mode values
const (
	ModeText   DisplayMode = 0x00
	ModeDirect DisplayMode = 0x01
)

// Byte returns the wire encoding of the mode.
func (m DisplayMode) Byte() uint8 {
	return uint8(m)
}

func (m DisplayMode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Valid reports whether m is a known display mode.
func (m DisplayMode) Valid() bool {
	return m == ModeText || m == ModeDirect
}

// ParseDisplayMode parses "text" or "direct".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText, nil
	case "direct":
		return ModeDirect, nil
	}
	return 0, fmt.Errorf("%w: display mode %q", ErrUnknownVariant, s)
}

// FontType selects the font of a text row.
type FontType uint8

// Font values
const (
	FontDefault FontType = 0x00
	FontPro     FontType = 0x01
	FontIBM     FontType = 0x02
)

// Byte returns the wire encoding of the font.
func (f FontType) Byte() uint8 {
	return uint8(f)
}

func (f FontType) String() string {
	switch f {
	case FontDefault:
		return "default"
	case FontPro:
		return "pro"
	case FontIBM:
		return "ibm"
	default:
		return fmt.Sprintf("font(%d)", uint8(f))
	}
}

// Valid reports whether f is a known font.
func (f FontType) Valid() bool {
	return f <= FontIBM
}

// ParseFontType parses "default", "pro" or "ibm".
func ParseFontType(s string) (FontType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default":
		return FontDefault, nil
	case "pro":
		return FontPro, nil
	case "ibm":
		return FontIBM, nil
	}
	return 0, fmt.Errorf("%w: font %q", ErrUnknownVariant, s)
}

// Direction is the travel direction of a slide animation.
type Direction uint8

// Direction values
const (
	DirectionLeft  Direction = 0x00
	DirectionRight Direction = 0x01
)

// Byte returns the wire encoding of the direction.
func (d Direction) Byte() uint8 {
	return uint8(d)
}

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// ParseDirection parses "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	}
	return 0, fmt.Errorf("%w: direction %q", ErrUnknownVariant, s)
}

// AnimationKind is the tag byte of an Animation.
type AnimationKind uint8

// Animation tags
const (
	AnimationNone  AnimationKind = 0x00
	AnimationBlink AnimationKind = 0x01
	AnimationSlide AnimationKind = 0x02
)

func (k AnimationKind) String() string {
	switch k {
	case AnimationNone:
		return "none"
	case AnimationBlink:
		return "blink"
	case AnimationSlide:
		return "slide"
	default:
		return fmt.Sprintf("animation(%d)", uint8(k))
	}
}

// Valid reports whether k is a known animation tag.
func (k AnimationKind) Valid() bool {
	return k <= AnimationSlide
}

// ParseAnimationKind parses "none", "blink" or "slide".
func ParseAnimationKind(s string) (AnimationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return AnimationNone, nil
	case "blink":
		return AnimationBlink, nil
	case "slide":
		return AnimationSlide, nil
	}
	return 0, fmt.Errorf("%w: animation %q", ErrUnknownVariant, s)
}

// Animation is a row animation. Blink carries a speed, Slide a speed and
// a direction; the zero value is no animation.
type Animation struct {
	kind      AnimationKind
	speed     uint8
	direction Direction
}

// NoAnimation returns the static animation.
func NoAnimation() Animation {
	return Animation{kind: AnimationNone}
}

// Blink returns a blink animation.
func Blink(speed uint8) Animation {
	return Animation{kind: AnimationBlink, speed: speed}
}

// Slide returns a slide animation. Any direction other than left slides
// right, so the encoded direction byte is always 0 or 1; use NewAnimation
// to reject unknown directions instead.
func Slide(speed uint8, direction Direction) Animation {
	if direction != DirectionLeft {
		direction = DirectionRight
	}
	return Animation{kind: AnimationSlide, speed: speed, direction: direction}
}

// NewAnimation builds an animation from its parts. Parameters that the
// kind does not carry are ignored.
func NewAnimation(kind AnimationKind, speed uint8, direction Direction) (Animation, error) {
	switch kind {
	case AnimationNone:
		return NoAnimation(), nil
	case AnimationBlink:
		return Blink(speed), nil
	case AnimationSlide:
		if !direction.Valid() {
			return Animation{}, fmt.Errorf("%w: %s", ErrUnknownVariant, direction)
		}
		return Slide(speed, direction), nil
	}
	return Animation{}, fmt.Errorf("%w: %s", ErrUnknownVariant, kind)
}

// Kind returns the animation tag.
func (a Animation) Kind() AnimationKind { return a.kind }

// Speed returns the animation speed (zero for no animation).
func (a Animation) Speed() uint8 { return a.speed }

// Direction returns the slide direction (left for non-slide animations).
func (a Animation) Direction() Direction { return a.direction }

// Bytes returns the wire encoding: [0], [1 speed] or [2 speed direction].
func (a Animation) Bytes() []byte {
	switch a.kind {
	case AnimationBlink:
		return []byte{byte(AnimationBlink), a.speed}
	case AnimationSlide:
		return []byte{byte(AnimationSlide), a.speed, a.direction.Byte()}
	default:
		return []byte{byte(AnimationNone)}
	}
}

func (a Animation) String() string {
	switch a.kind {
	case AnimationBlink:
		return fmt.Sprintf("blink(speed=%d)", a.speed)
	case AnimationSlide:
		return fmt.Sprintf("slide(speed=%d, %s)", a.speed, a.direction)
	default:
		return "none"
	}
}
