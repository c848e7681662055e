// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

type recordingSender struct {
	frames []umx.Frame
	err    error
}

func (r *recordingSender) Send(_ context.Context, f umx.Frame) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, f)
	return nil
}

func press(t *testing.T, m controlModel, msg tea.Msg) (controlModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(controlModel), cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mustEncode(t *testing.T) func(umx.Frame, error) []byte {
	return func(f umx.Frame, err error) []byte {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return f.Bytes()
	}
}

func assertFrames(t *testing.T, got []umx.Frame, want ...[]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sent %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i].Bytes(), want[i]) {
			t.Errorf("frame %d = % X, want % X", i, got[i].Bytes(), want[i])
		}
	}
}

func TestControlModel_SendRow(t *testing.T) {
	rec := &recordingSender{}
	m := initialControlModel(context.Background(), rec, "test", 3)

	m, _ = press(t, m, runes("HI"))
	m, _ = press(t, m, key(tea.KeyCtrlF)) // pro
	m, _ = press(t, m, key(tea.KeyCtrlO)) // white
	m, _ = press(t, m, key(tea.KeyCtrlA)) // blink
	m, _ = press(t, m, key(tea.KeyPgUp))  // speed 6

	m, cmd := press(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if !m.sending {
		t.Error("model not marked as sending")
	}

	msg := cmd()
	blink, err := umx.NewAnimation(umx.AnimationBlink, 6, umx.DirectionLeft)
	if err != nil {
		t.Fatal(err)
	}
	assertFrames(t, rec.frames,
		mustEncode(t)(umx.EncodeSetFont(0, umx.FontPro)),
		mustEncode(t)(umx.EncodeSetColor(0, umx.Color{R: 255, G: 255, B: 255})),
		mustEncode(t)(umx.EncodeSetAnimation(0, blink)),
		mustEncode(t)(umx.EncodeWriteLine(0, "HI")),
	)

	m, _ = press(t, m, msg)
	if m.sending {
		t.Error("model still sending after sentMsg")
	}
	if m.sentCount != 4 {
		t.Errorf("sentCount = %d, want 4", m.sentCount)
	}
	if len(m.eventLog) != 1 || m.eventLog[0].isError {
		t.Errorf("eventLog = %+v, want one info entry", m.eventLog)
	}
}

func TestControlModel_Focus(t *testing.T) {
	m := initialControlModel(context.Background(), &recordingSender{}, "test", 3)

	m, _ = press(t, m, key(tea.KeyTab))
	if m.focus != 1 || !m.rows[1].input.Focused() || m.rows[0].input.Focused() {
		t.Fatalf("focus = %d after tab", m.focus)
	}

	m, _ = press(t, m, key(tea.KeyUp))
	m, _ = press(t, m, key(tea.KeyUp))
	if m.focus != 2 {
		t.Errorf("focus = %d after wrapping up, want 2", m.focus)
	}

	m, _ = press(t, m, runes("X"))
	if m.rows[2].input.Value() != "X" || m.rows[0].input.Value() != "" {
		t.Errorf("typing went to the wrong row")
	}
}

func TestControlModel_SendAll(t *testing.T) {
	rec := &recordingSender{}
	m := initialControlModel(context.Background(), rec, "test", 3)

	m, cmd := press(t, m, key(tea.KeyCtrlR))
	if cmd == nil {
		t.Fatal("ctrl+r returned no command")
	}
	cmd()

	if len(rec.frames) != 12 {
		t.Fatalf("sent %d frames, want 12", len(rec.frames))
	}
	want := mustEncode(t)(umx.EncodeWriteLine(2, ""))
	if !bytes.Equal(rec.frames[11].Bytes(), want) {
		t.Errorf("last frame = % X, want % X", rec.frames[11].Bytes(), want)
	}
}

func TestControlModel_ModeAndClear(t *testing.T) {
	rec := &recordingSender{}
	m := initialControlModel(context.Background(), rec, "test", 3)

	m, cmd := press(t, m, key(tea.KeyCtrlT))
	if m.mode != umx.ModeText {
		t.Errorf("mode = %s before the frame was sent, want text", m.mode)
	}
	m, _ = press(t, m, cmd())
	if m.mode != umx.ModeDirect {
		t.Errorf("mode = %s, want direct", m.mode)
	}

	m, cmd = press(t, m, key(tea.KeyCtrlL))
	m, _ = press(t, m, cmd())

	assertFrames(t, rec.frames,
		mustEncode(t)(umx.EncodeSwitchMode(umx.ModeDirect)),
		mustEncode(t)(umx.EncodeClear()),
	)

	m, cmd = press(t, m, key(tea.KeyCtrlT))
	m, _ = press(t, m, cmd())
	if m.mode != umx.ModeText {
		t.Errorf("mode = %s, want text", m.mode)
	}
}

func TestControlModel_ModeUnchangedOnSendError(t *testing.T) {
	rec := &recordingSender{err: errors.New("port gone")}
	m := initialControlModel(context.Background(), rec, "test", 1)

	m, cmd := press(t, m, key(tea.KeyCtrlT))
	m, _ = press(t, m, cmd())

	if m.mode != umx.ModeText {
		t.Errorf("mode = %s after a failed switch, want text", m.mode)
	}
	if m.errCount != 1 {
		t.Errorf("errCount = %d, want 1", m.errCount)
	}
}

func TestControlModel_SendError(t *testing.T) {
	rec := &recordingSender{err: errors.New("port gone")}
	m := initialControlModel(context.Background(), rec, "test", 1)

	m, cmd := press(t, m, key(tea.KeyEnter))
	m, _ = press(t, m, cmd())

	if m.errCount != 1 || m.sentCount != 0 {
		t.Errorf("errCount = %d, sentCount = %d", m.errCount, m.sentCount)
	}
	if len(m.eventLog) != 1 || !m.eventLog[0].isError {
		t.Fatalf("eventLog = %+v, want one error entry", m.eventLog)
	}
}

func TestControlModel_Connection(t *testing.T) {
	m := initialControlModel(context.Background(), &recordingSender{}, "serial:/dev/ttyUSB0", 1)

	m, _ = press(t, m, connectionLostMsg{err: errors.New("eof")})
	if m.connected {
		t.Error("still connected after connectionLostMsg")
	}

	m, _ = press(t, m, reconnectedMsg{connInfo: "serial:/dev/ttyUSB1"})
	if !m.connected || m.connInfo != "serial:/dev/ttyUSB1" {
		t.Errorf("connected = %v, connInfo = %q", m.connected, m.connInfo)
	}
	if len(m.eventLog) != 2 {
		t.Errorf("eventLog has %d entries, want 2", len(m.eventLog))
	}
}

func TestControlModel_Quit(t *testing.T) {
	m := initialControlModel(context.Background(), &recordingSender{}, "test", 1)
	if m.View() == "" {
		t.Error("empty view before quitting")
	}

	m, cmd := press(t, m, key(tea.KeyEsc))
	if !m.quitting || cmd == nil {
		t.Fatal("esc did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc command is not tea.Quit")
	}
	if m.View() != "" {
		t.Error("view not empty after quitting")
	}
}
