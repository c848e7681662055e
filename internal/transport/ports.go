// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port candidate for the display controller
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial,omitempty"`
	Product      string `json:"product,omitempty"`
}

func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s  USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += "  " + p.Product
	}
	if p.SerialNumber != "" {
		s += "  SN " + p.SerialNumber
	}
	return s
}

// ListPorts returns the serial ports present on the system, sorted by name
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return toPortInfo(details), nil
}

func toPortInfo(details []*enumerator.PortDetails) []PortInfo {
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports
}
