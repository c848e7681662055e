// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import "fmt"

// ControlIDs holds the command ids of the output and ping commands.
//
// Unlike the drawing commands these have no stable id across controller
// firmware builds, so they must be supplied by the deployment. A nil field
// means the command is not available and its encoder returns
// ErrCommandIDUnset.
type ControlIDs struct {
	EnableOutput  *uint8
	DisableOutput *uint8
	Ping          *uint8
}

// LegacyControlIDs returns the ids emitted by the first-generation host
// library: 0x09, 0x0A and 0x0B. They overlap DRAW_RECTANGLE, DRAW_TRIANGLE
// and DRAW_CIRCLE; only use them against firmware known to expect them.
func LegacyControlIDs() ControlIDs {
	enable, disable, ping := uint8(0x09), uint8(0x0A), uint8(0x0B)
	return ControlIDs{EnableOutput: &enable, DisableOutput: &disable, Ping: &ping}
}

// Validate returns ErrDuplicateCommandID if two configured commands share an id.
func (c ControlIDs) Validate() error {
	seen := make(map[uint8]string, 3)
	for _, e := range c.entries() {
		if e.id == nil {
			continue
		}
		if other, ok := seen[*e.id]; ok {
			return fmt.Errorf("%w: 0x%02X used by %s and %s", ErrDuplicateCommandID, *e.id, other, e.name)
		}
		seen[*e.id] = e.name
	}
	return nil
}

// Conflicts returns a description of every configured id that also has a
// fixed meaning in the firmware command table.
func (c ControlIDs) Conflicts() []string {
	var out []string
	for _, e := range c.entries() {
		if e.id == nil {
			continue
		}
		for _, fixed := range fixedCommands {
			if CommandID(*e.id) == fixed {
				out = append(out, fmt.Sprintf("%s id 0x%02X overlaps %s", e.name, *e.id, CommandName(fixed)))
			}
		}
	}
	return out
}

// Lookup returns the configured name for id, if any.
func (c ControlIDs) Lookup(id CommandID) (string, bool) {
	for _, e := range c.entries() {
		if e.id != nil && CommandID(*e.id) == id {
			return e.name, true
		}
	}
	return "", false
}

// EncodeEnableOutput creates an ENABLE_OUTPUT frame.
func (c ControlIDs) EncodeEnableOutput() (Frame, error) {
	return encodeControl(c.EnableOutput, "ENABLE_OUTPUT")
}

// EncodeDisableOutput creates a DISABLE_OUTPUT frame.
func (c ControlIDs) EncodeDisableOutput() (Frame, error) {
	return encodeControl(c.DisableOutput, "DISABLE_OUTPUT")
}

// EncodePing creates a PING frame.
func (c ControlIDs) EncodePing() (Frame, error) {
	return encodeControl(c.Ping, "PING")
}

func encodeControl(id *uint8, name string) (Frame, error) {
	if id == nil {
		return Frame{}, fmt.Errorf("%w: %s", ErrCommandIDUnset, name)
	}
	return Assemble([]byte{*id})
}

type controlEntry struct {
	name string
	id   *uint8
}

func (c ControlIDs) entries() []controlEntry {
	return []controlEntry{
		{"ENABLE_OUTPUT", c.EnableOutput},
		{"DISABLE_OUTPUT", c.DisableOutput},
		{"PING", c.Ping},
	}
}
