// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uartmatrix/umxctl/internal/script"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	defaultSpeed  = 5
	maxLogEntries = 100
)

// palette is cycled with ctrl+o; rows start mid-gray like the display
var palette = []struct {
	name  string
	color umx.Color
}{
	{"gray", umx.DefaultColor()},
	{"white", umx.Color{R: 255, G: 255, B: 255}},
	{"red", umx.Color{R: 255}},
	{"green", umx.Color{G: 255}},
	{"blue", umx.Color{B: 255}},
	{"yellow", umx.Color{R: 255, G: 255}},
	{"cyan", umx.Color{G: 255, B: 255}},
	{"magenta", umx.Color{R: 255, B: 255}},
	{"orange", umx.Color{R: 255, G: 128}},
}

// animations is cycled with ctrl+a
var animations = []struct {
	kind umx.AnimationKind
	dir  umx.Direction
}{
	{umx.AnimationNone, umx.DirectionLeft},
	{umx.AnimationBlink, umx.DirectionLeft},
	{umx.AnimationSlide, umx.DirectionLeft},
	{umx.AnimationSlide, umx.DirectionRight},
}

var fonts = []umx.FontType{umx.FontDefault, umx.FontPro, umx.FontIBM}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// logEntry is one line of the event log
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// textRow is the editor state of one display row
type textRow struct {
	input     textinput.Model
	font      int // index into fonts
	color     int // index into palette
	animation int // index into animations
	speed     uint8
}

func (r textRow) animationValue() (umx.Animation, error) {
	a := animations[r.animation]
	return umx.NewAnimation(a.kind, r.speed, a.dir)
}

// frames encodes the row as font, color, animation, then text
func (r textRow) frames(row uint8) ([]umx.Frame, error) {
	anim, err := r.animationValue()
	if err != nil {
		return nil, err
	}
	var frames []umx.Frame
	for _, enc := range []func() (umx.Frame, error){
		func() (umx.Frame, error) { return umx.EncodeSetFont(row, fonts[r.font]) },
		func() (umx.Frame, error) { return umx.EncodeSetColor(row, palette[r.color].color) },
		func() (umx.Frame, error) { return umx.EncodeSetAnimation(row, anim) },
		func() (umx.Frame, error) { return umx.EncodeWriteLine(row, r.input.Value()) },
	} {
		f, err := enc()
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// controlModel is the Bubble Tea model for the text-mode editor
type controlModel struct {
	ctx       context.Context
	sender    script.FrameSender
	connInfo  string
	connected bool

	rows  []textRow
	focus int
	mode  umx.DisplayMode

	sending   bool
	sentCount int
	errCount  int
	eventLog  []logEntry

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

// sentMsg reports the outcome of an asynchronous send
type sentMsg struct {
	what   string
	frames int
	err    error
	mode   *umx.DisplayMode // applied once the SWITCH_MODE frame is out
}

// connectionLostMsg is sent when a write fails and reconnection begins
type connectionLostMsg struct {
	err error
}

// reconnectedMsg is sent once a new connection is open
type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(ctx context.Context, sender script.FrameSender, connInfo string, rows int) controlModel {
	m := controlModel{
		ctx:       ctx,
		sender:    sender,
		connInfo:  connInfo,
		connected: true,
		mode:      umx.ModeText,
		width:     80,
		height:    24,
	}
	for i := 0; i < rows; i++ {
		ti := textinput.New()
		ti.Placeholder = fmt.Sprintf("Row %d text", i)
		ti.CharLimit = umx.MaxTextLength
		ti.Width = 40
		m.rows = append(m.rows, textRow{input: ti, speed: defaultSpeed})
	}
	m.rows[0].input.Focus()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case connectionLostMsg:
		m.connected = false
		m.addLogEntry(fmt.Sprintf("Connection lost: %v", msg.err), true)
		return m, nil

	case reconnectedMsg:
		m.connected = true
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected to "+msg.connInfo, false)
		return m, nil

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.errCount++
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.what, msg.err), true)
		} else {
			m.sentCount += msg.frames
			if msg.mode != nil {
				m.mode = *msg.mode
			}
			m.addLogEntry(fmt.Sprintf("%s (%d frame(s))", msg.what, msg.frames), false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.rows[m.focus].input, cmd = m.rows[m.focus].input.Update(msg)
	return m, cmd
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := &m.rows[m.focus]

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "shift+tab":
		return m.moveFocus(-1), nil
	case "down", "tab":
		return m.moveFocus(1), nil

	case "ctrl+f":
		row.font = (row.font + 1) % len(fonts)
		return m, nil
	case "ctrl+o":
		row.color = (row.color + 1) % len(palette)
		return m, nil
	case "ctrl+a":
		row.animation = (row.animation + 1) % len(animations)
		return m, nil
	case "pgup":
		if row.speed < 255 {
			row.speed++
		}
		return m, nil
	case "pgdown":
		if row.speed > 0 {
			row.speed--
		}
		return m, nil

	case "enter":
		frames, err := row.frames(uint8(m.focus))
		if err != nil {
			m.addLogEntry(fmt.Sprintf("Row %d: %v", m.focus, err), true)
			return m, nil
		}
		return m.send(fmt.Sprintf("Row %d sent", m.focus), frames)

	case "ctrl+r":
		var frames []umx.Frame
		for i, r := range m.rows {
			f, err := r.frames(uint8(i))
			if err != nil {
				m.addLogEntry(fmt.Sprintf("Row %d: %v", i, err), true)
				return m, nil
			}
			frames = append(frames, f...)
		}
		return m.send("All rows sent", frames)

	case "ctrl+t":
		next := umx.ModeDirect
		if m.mode == umx.ModeDirect {
			next = umx.ModeText
		}
		f, err := umx.EncodeSwitchMode(next)
		if err != nil {
			m.addLogEntry(err.Error(), true)
			return m, nil
		}
		model, cmd := m.send(fmt.Sprintf("Mode %s", next), []umx.Frame{f})
		return model, withMode(cmd, next)

	case "ctrl+l":
		f, err := umx.EncodeClear()
		if err != nil {
			m.addLogEntry(err.Error(), true)
			return m, nil
		}
		return m.send("Display cleared", []umx.Frame{f})
	}

	var cmd tea.Cmd
	row.input, cmd = row.input.Update(msg)
	return m, cmd
}

func (m controlModel) moveFocus(delta int) controlModel {
	m.rows[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.rows)) % len(m.rows)
	m.rows[m.focus].input.Focus()
	return m
}

// send writes frames in the background and reports back with a sentMsg
func (m controlModel) send(what string, frames []umx.Frame) (tea.Model, tea.Cmd) {
	m.sending = true
	ctx, sender := m.ctx, m.sender
	return m, func() tea.Msg {
		for i, f := range frames {
			if err := sender.Send(ctx, f); err != nil {
				return sentMsg{what: what, frames: i, err: err}
			}
		}
		return sentMsg{what: what, frames: len(frames)}
	}
}

// withMode tags the sentMsg produced by cmd with the mode it switched to
func withMode(cmd tea.Cmd, mode umx.DisplayMode) tea.Cmd {
	return func() tea.Msg {
		msg := cmd()
		if sent, ok := msg.(sentMsg); ok && sent.err == nil {
			sent.mode = &mode
			return sent
		}
		return msg
	}
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	var s strings.Builder

	// Header
	s.WriteString(titleStyle.Render("UMXCTL CONTROL"))
	s.WriteString(" ")
	status := m.connInfo
	if !m.connected {
		status = errorStyle.Render("DISCONNECTED")
	} else if m.sending {
		status = warningStyle.Render("SENDING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | mode: %s", status, m.mode)))
	s.WriteString("\n\n")

	width := m.width - 4
	if width < 40 {
		width = 40
	}

	// Rows
	for i, r := range m.rows {
		anim, _ := r.animationValue()
		c := palette[r.color]
		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.color.Hex())).
			Render("■")

		var content strings.Builder
		content.WriteString(labelStyle.Render(fmt.Sprintf("Row %d ", i)))
		content.WriteString(r.input.View())
		content.WriteString("\n")
		content.WriteString(fmt.Sprintf("%s %s  %s %s %s  %s %s",
			labelStyle.Render("Font:"), valueStyle.Render(fonts[r.font].String()),
			labelStyle.Render("Color:"), swatch, valueStyle.Render(c.name),
			labelStyle.Render("Animation:"), valueStyle.Render(anim.String()),
		))

		style := boxStyle
		if i == m.focus {
			style = focusedBoxStyle
		}
		s.WriteString(style.Width(width).Render(content.String()))
		s.WriteString("\n")
	}

	// Counters
	counters := fmt.Sprintf("%s %s  %s %s",
		labelStyle.Render("Frames sent:"), valueStyle.Render(fmt.Sprintf("%d", m.sentCount)),
		labelStyle.Render("Errors:"), func() string {
			if m.errCount > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", m.errCount))
			}
			return valueStyle.Render("0")
		}(),
	)
	s.WriteString(boxStyle.Width(width).Render(counters))
	s.WriteString("\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, headerStyle, warningStyle, errorStyle, boxStyle.Width(width)))
	s.WriteString("\n")

	s.WriteString(headerStyle.Render(
		"enter: send row | ctrl+r: send all | ↑/↓: row | ctrl+f: font | ctrl+o: color | " +
			"ctrl+a: animation | pgup/pgdn: speed | ctrl+t: mode | ctrl+l: clear | esc: quit"))
	return s.String()
}

func (m controlModel) renderEventLog(labelStyle, headerStyle, warningStyle, errorStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := 6
	start := len(m.eventLog) - logHeight
	if start < 0 {
		start = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.eventLog[start:] {
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyle
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}
	return boxStyle.Render(s.String())
}
