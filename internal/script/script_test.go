// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package script

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

const demo = `
name: demo
steps:
  - mode: text
  - text:
      row: 3
      text: THISISATEST
  - text:
      row: 0
      text: hi
      font: ibm
      color: "#00ff00"
      animation: {kind: slide, speed: 10, direction: right}
  - sleep: 5ms
  - mode: direct
  - pixel: {at: {x: 1, y: 2}, color: "255,255,255"}
  - line: {from: {x: 0, y: 0}, to: {x: 63, y: 31}, thickness: 1, color: {r: 255, g: 0, b: 0}}
  - circle: {center: {x: 32, y: 16}, radius: 8, thickness: 1, color: "0a141e", filled: true}
  - clear: true
`

func u8(v uint8) *uint8 { return &v }

// sink collects frames
type sink struct {
	frames []umx.Frame
	failAt int
}

func (s *sink) Send(_ context.Context, f umx.Frame) error {
	if s.failAt > 0 && len(s.frames)+1 == s.failAt {
		return errors.New("link down")
	}
	s.frames = append(s.frames, f)
	return nil
}

func TestParse_Mapping(t *testing.T) {
	sc, err := Parse(strings.NewReader(demo))
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.Name)
	require.Len(t, sc.Steps, 9)
	assert.Equal(t, Duration(5*time.Millisecond), sc.Steps[3].Sleep)
	assert.Equal(t, Color{R: 0, G: 255, B: 0}, *sc.Steps[2].Text.Color)
}

func TestParse_BareListAndJSON(t *testing.T) {
	sc, err := Parse(strings.NewReader(`[{"clear": true}, {"mode": "direct"}, {"sleep": "1s"}]`))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 3)
	assert.True(t, sc.Steps[0].Clear)
	assert.Equal(t, Duration(time.Second), sc.Steps[2].Sleep)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty script"},
		{"scalar", "hello", "expected a list"},
		{"unknown field", "- blink: true", "blink"},
		{"two instructions", "- clear: true\n  ping: true", "exactly one"},
		{"empty step", "- {}", "empty step"},
		{"bad color", "- pixel: {at: {x: 0, y: 0}, color: nope}", "invalid color"},
		{"bad duration", "- sleep: soon", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStep_Frames(t *testing.T) {
	sc, err := Parse(strings.NewReader(demo))
	require.NoError(t, err)

	frames, err := Compile(sc.Steps, umx.ControlIDs{})
	require.NoError(t, err)

	var names []string
	for _, f := range frames {
		id, _ := f.Command()
		names = append(names, id.String())
	}
	assert.Equal(t, []string{
		"SWITCH_MODE",
		"WRITE_LINE",
		"SET_FONT", "SET_COLOR", "SET_ANIMATION", "WRITE_LINE",
		"SWITCH_MODE",
		"DRAW_PIXEL",
		"DRAW_LINE",
		"DRAW_CIRCLE",
		"CLEAR",
	}, names)

	assert.Equal(t, []byte{0x55, 0x4D, 0x58, 0x00, 0x0D, 0x02, 0x03,
		'T', 'H', 'I', 'S', 'I', 'S', 'A', 'T', 'E', 'S', 'T', 0xD6}, frames[1].Bytes())
	assert.Equal(t, []byte{5, 0, 2, 10, 1}, frames[4].Payload())
	assert.Equal(t, []byte{11, 32, 16, 8, 1, 10, 20, 30, 1}, frames[9].Payload())
}

func TestStep_ControlFrames(t *testing.T) {
	ids := umx.ControlIDs{EnableOutput: u8(0x20), Ping: u8(0x22)}

	frames, err := Step{EnableOutput: true}.Frames(ids)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20}, frames[0].Payload())

	_, err = Step{DisableOutput: true}.Frames(ids)
	assert.ErrorIs(t, err, umx.ErrCommandIDUnset)
}

func TestStep_InvalidVariant(t *testing.T) {
	_, err := Step{Font: &FontStep{Row: 0, Font: "comic"}}.Frames(umx.ControlIDs{})
	assert.ErrorIs(t, err, umx.ErrUnknownVariant)

	_, err = Step{Text: &TextStep{Text: strings.Repeat("x", 256)}}.Frames(umx.ControlIDs{})
	assert.ErrorIs(t, err, umx.ErrTextTooLong)
}

func TestRun_SendsInOrder(t *testing.T) {
	sc, err := Parse(strings.NewReader(demo))
	require.NoError(t, err)

	var s sink
	require.NoError(t, Run(context.Background(), &s, sc.Steps, umx.ControlIDs{}))
	assert.Len(t, s.frames, 11)
}

func TestRun_InvalidStepSendsNothing(t *testing.T) {
	steps := []Step{{Clear: true}, {Mode: "sideways"}}

	var s sink
	err := Run(context.Background(), &s, steps, umx.ControlIDs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Empty(t, s.frames)
}

func TestRun_SendError(t *testing.T) {
	s := sink{failAt: 2}
	err := Run(context.Background(), &s, []Step{{Clear: true}, {ParamRequest: true}}, umx.ControlIDs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link down")
	assert.Len(t, s.frames, 1)
}

func TestRun_SleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var s sink
	err := Run(ctx, &s, []Step{{Sleep: Duration(time.Hour)}, {Clear: true}}, umx.ControlIDs{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, s.frames)
}

func TestStep_JSON(t *testing.T) {
	var steps []Step
	body := `[{"color": {"row": 1, "color": "#0a141e"}}, {"row": {"row": 2, "pixels": [{"r":1,"g":2,"b":3}, "4,5,6"]}}]`
	require.NoError(t, json.Unmarshal([]byte(body), &steps))
	require.NoError(t, Validate(steps))

	frames, err := Compile(steps, umx.ControlIDs{})
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 1, 10, 20, 30}, frames[0].Payload())
	assert.Equal(t, []byte{7, 2, 1, 2, 3, 4, 5, 6}, frames[1].Payload())

	out, err := json.Marshal(Step{Sleep: Duration(250 * time.Millisecond)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sleep": "250ms"}`, string(out))
}
