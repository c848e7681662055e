// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

// Package script describes display content as a list of steps that encode
// to frames. Scripts are written in YAML (or JSON) and are also the request
// body of the HTTP control API.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

// AnimationSpec selects an animation by name
type AnimationSpec struct {
	Kind      string `yaml:"kind" json:"kind"`
	Speed     uint8  `yaml:"speed,omitempty" json:"speed,omitempty"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// Animation resolves the named kind into an umx.Animation
func (a AnimationSpec) Animation() (umx.Animation, error) {
	kind, err := umx.ParseAnimationKind(a.Kind)
	if err != nil {
		return umx.Animation{}, err
	}
	dir := umx.DirectionLeft
	if kind == umx.AnimationSlide && a.Direction != "" {
		if dir, err = umx.ParseDirection(a.Direction); err != nil {
			return umx.Animation{}, err
		}
	}
	return umx.NewAnimation(kind, a.Speed, dir)
}

// TextStep writes a text row, optionally restyling it first
type TextStep struct {
	Row       uint8          `yaml:"row" json:"row"`
	Text      string         `yaml:"text" json:"text"`
	Font      string         `yaml:"font,omitempty" json:"font,omitempty"`
	Color     *Color         `yaml:"color,omitempty" json:"color,omitempty"`
	Animation *AnimationSpec `yaml:"animation,omitempty" json:"animation,omitempty"`
}

// FontStep sets the font of a row
type FontStep struct {
	Row  uint8  `yaml:"row" json:"row"`
	Font string `yaml:"font" json:"font"`
}

// ColorStep sets the color of a row
type ColorStep struct {
	Row   uint8 `yaml:"row" json:"row"`
	Color Color `yaml:"color" json:"color"`
}

// AnimationStep sets the animation of a row
type AnimationStep struct {
	Row           uint8 `yaml:"row" json:"row"`
	AnimationSpec `yaml:",inline"`
}

// PixelStep draws one pixel
type PixelStep struct {
	At    umx.Point `yaml:"at" json:"at"`
	Color Color     `yaml:"color" json:"color"`
}

// RowStep draws a row of pixels
type RowStep struct {
	Row    uint8   `yaml:"row" json:"row"`
	Pixels []Color `yaml:"pixels" json:"pixels"`
}

// LineStep draws a line
type LineStep struct {
	From      umx.Point `yaml:"from" json:"from"`
	To        umx.Point `yaml:"to" json:"to"`
	Thickness uint8     `yaml:"thickness" json:"thickness"`
	Color     Color     `yaml:"color" json:"color"`
}

// RectStep draws a rectangle from two opposite corners
type RectStep struct {
	From      umx.Point `yaml:"from" json:"from"`
	To        umx.Point `yaml:"to" json:"to"`
	Thickness uint8     `yaml:"thickness" json:"thickness"`
	Color     Color     `yaml:"color" json:"color"`
	Filled    bool      `yaml:"filled" json:"filled"`
}

// TriangleStep draws a triangle
type TriangleStep struct {
	Points    [3]umx.Point `yaml:"points" json:"points"`
	Thickness uint8        `yaml:"thickness" json:"thickness"`
	Color     Color        `yaml:"color" json:"color"`
	Filled    bool         `yaml:"filled" json:"filled"`
}

// CircleStep draws a circle
type CircleStep struct {
	Center    umx.Point `yaml:"center" json:"center"`
	Radius    uint8     `yaml:"radius" json:"radius"`
	Thickness uint8     `yaml:"thickness" json:"thickness"`
	Color     Color     `yaml:"color" json:"color"`
	Filled    bool      `yaml:"filled" json:"filled"`
}

// Step is one script instruction. Exactly one field must be set.
type Step struct {
	Mode          string         `yaml:"mode,omitempty" json:"mode,omitempty"`
	Text          *TextStep      `yaml:"text,omitempty" json:"text,omitempty"`
	Font          *FontStep      `yaml:"font,omitempty" json:"font,omitempty"`
	Color         *ColorStep     `yaml:"color,omitempty" json:"color,omitempty"`
	Animation     *AnimationStep `yaml:"animation,omitempty" json:"animation,omitempty"`
	Pixel         *PixelStep     `yaml:"pixel,omitempty" json:"pixel,omitempty"`
	Row           *RowStep       `yaml:"row,omitempty" json:"row,omitempty"`
	Line          *LineStep      `yaml:"line,omitempty" json:"line,omitempty"`
	Rect          *RectStep      `yaml:"rect,omitempty" json:"rect,omitempty"`
	Triangle      *TriangleStep  `yaml:"triangle,omitempty" json:"triangle,omitempty"`
	Circle        *CircleStep    `yaml:"circle,omitempty" json:"circle,omitempty"`
	Clear         bool           `yaml:"clear,omitempty" json:"clear,omitempty"`
	ParamRequest  bool           `yaml:"paramRequest,omitempty" json:"paramRequest,omitempty"`
	EnableOutput  bool           `yaml:"enableOutput,omitempty" json:"enableOutput,omitempty"`
	DisableOutput bool           `yaml:"disableOutput,omitempty" json:"disableOutput,omitempty"`
	Ping          bool           `yaml:"ping,omitempty" json:"ping,omitempty"`
	Sleep         Duration       `yaml:"sleep,omitempty" json:"sleep,omitempty"`
}

// Kind returns the name of the set field, or an error unless exactly one is set
func (s Step) Kind() (string, error) {
	var set []string
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(s.Mode != "", "mode")
	add(s.Text != nil, "text")
	add(s.Font != nil, "font")
	add(s.Color != nil, "color")
	add(s.Animation != nil, "animation")
	add(s.Pixel != nil, "pixel")
	add(s.Row != nil, "row")
	add(s.Line != nil, "line")
	add(s.Rect != nil, "rect")
	add(s.Triangle != nil, "triangle")
	add(s.Circle != nil, "circle")
	add(s.Clear, "clear")
	add(s.ParamRequest, "paramRequest")
	add(s.EnableOutput, "enableOutput")
	add(s.DisableOutput, "disableOutput")
	add(s.Ping, "ping")
	add(s.Sleep > 0, "sleep")

	switch len(set) {
	case 1:
		return set[0], nil
	case 0:
		return "", errors.New("empty step")
	default:
		return "", fmt.Errorf("step sets %s; exactly one is allowed", strings.Join(set, ", "))
	}
}

// Frames encodes the step. Sleep steps encode to no frames.
func (s Step) Frames(ids umx.ControlIDs) ([]umx.Frame, error) {
	kind, err := s.Kind()
	if err != nil {
		return nil, err
	}

	one := func(f umx.Frame, err error) ([]umx.Frame, error) {
		if err != nil {
			return nil, err
		}
		return []umx.Frame{f}, nil
	}

	switch kind {
	case "mode":
		mode, err := umx.ParseDisplayMode(s.Mode)
		if err != nil {
			return nil, err
		}
		return one(umx.EncodeSwitchMode(mode))

	case "text":
		return s.Text.frames()

	case "font":
		font, err := umx.ParseFontType(s.Font.Font)
		if err != nil {
			return nil, err
		}
		return one(umx.EncodeSetFont(s.Font.Row, font))

	case "color":
		return one(umx.EncodeSetColor(s.Color.Row, umx.Color(s.Color.Color)))

	case "animation":
		a, err := s.Animation.Animation()
		if err != nil {
			return nil, err
		}
		return one(umx.EncodeSetAnimation(s.Animation.Row, a))

	case "pixel":
		return one(umx.EncodeDrawPixel(s.Pixel.At, umx.Color(s.Pixel.Color)))

	case "row":
		pixels := make([]umx.Color, len(s.Row.Pixels))
		for i, p := range s.Row.Pixels {
			pixels[i] = umx.Color(p)
		}
		return one(umx.EncodeDrawRow(s.Row.Row, pixels))

	case "line":
		l := s.Line
		return one(umx.EncodeDrawLine(l.From, l.To, l.Thickness, umx.Color(l.Color)))

	case "rect":
		r := s.Rect
		return one(umx.EncodeDrawRectangle(r.From, r.To, r.Thickness, umx.Color(r.Color), r.Filled))

	case "triangle":
		t := s.Triangle
		return one(umx.EncodeDrawTriangle(t.Points[0], t.Points[1], t.Points[2], t.Thickness, umx.Color(t.Color), t.Filled))

	case "circle":
		c := s.Circle
		return one(umx.EncodeDrawCircle(c.Center, c.Radius, c.Thickness, umx.Color(c.Color), c.Filled))

	case "clear":
		return one(umx.EncodeClear())
	case "paramRequest":
		return one(umx.EncodeParamRequest())
	case "enableOutput":
		return one(ids.EncodeEnableOutput())
	case "disableOutput":
		return one(ids.EncodeDisableOutput())
	case "ping":
		return one(ids.EncodePing())
	case "sleep":
		return nil, nil
	}
	return nil, fmt.Errorf("unhandled step %q", kind)
}

// frames emits font, color and animation (when given) before the text
func (t *TextStep) frames() ([]umx.Frame, error) {
	var frames []umx.Frame
	add := func(f umx.Frame, err error) error {
		if err != nil {
			return err
		}
		frames = append(frames, f)
		return nil
	}

	if t.Font != "" {
		font, err := umx.ParseFontType(t.Font)
		if err != nil {
			return nil, err
		}
		if err := add(umx.EncodeSetFont(t.Row, font)); err != nil {
			return nil, err
		}
	}
	if t.Color != nil {
		if err := add(umx.EncodeSetColor(t.Row, umx.Color(*t.Color))); err != nil {
			return nil, err
		}
	}
	if t.Animation != nil {
		a, err := t.Animation.Animation()
		if err != nil {
			return nil, err
		}
		if err := add(umx.EncodeSetAnimation(t.Row, a)); err != nil {
			return nil, err
		}
	}
	if err := add(umx.EncodeWriteLine(t.Row, t.Text)); err != nil {
		return nil, err
	}
	return frames, nil
}

// Script is a named list of steps
type Script struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Parse reads a script: either a bare list of steps or a mapping with a
// steps key. JSON input is accepted as YAML.
func Parse(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}

	var sc Script
	var target any
	switch root.Kind {
	case 0:
		return nil, errors.New("empty script")
	case yaml.SequenceNode:
		target = &sc.Steps
	case yaml.MappingNode:
		target = &sc
	default:
		return nil, errors.New("parse script: expected a list of steps or a mapping with steps")
	}

	// Node.Decode ignores KnownFields, so decode the document again
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	if err := Validate(sc.Steps); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step sets exactly one instruction
func Validate(steps []Step) error {
	for i, s := range steps {
		if _, err := s.Kind(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Compile encodes all steps, dropping sleeps
func Compile(steps []Step, ids umx.ControlIDs) ([]umx.Frame, error) {
	var frames []umx.Frame
	for i, s := range steps {
		f, err := s.Frames(ids)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		frames = append(frames, f...)
	}
	return frames, nil
}

// FrameSender sends encoded frames
type FrameSender interface {
	Send(ctx context.Context, f umx.Frame) error
}

// Run encodes and sends steps in order, honouring sleep steps. All steps
// are encoded before anything is sent, so an invalid step sends nothing.
func Run(ctx context.Context, sender FrameSender, steps []Step, ids umx.ControlIDs) error {
	encoded := make([][]umx.Frame, len(steps))
	for i, s := range steps {
		f, err := s.Frames(ids)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		encoded[i] = f
	}

	for i, s := range steps {
		if s.Sleep > 0 {
			t := time.NewTimer(time.Duration(s.Sleep))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			continue
		}
		for _, f := range encoded[i] {
			if err := sender.Send(ctx, f); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return nil
}
