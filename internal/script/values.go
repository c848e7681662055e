// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

// Color accepts "#rrggbb", "r,g,b" or a {r, g, b} mapping
type Color umx.Color

// UnmarshalYAML implements yaml.Unmarshaler
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := umx.ParseColor(node.Value)
		if err != nil {
			return err
		}
		*c = Color(parsed)
		return nil
	}
	var rgb umx.Color
	if err := node.Decode(&rgb); err != nil {
		return err
	}
	*c = Color(rgb)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Color) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := umx.ParseColor(s)
		if err != nil {
			return err
		}
		*c = Color(parsed)
		return nil
	}
	var rgb umx.Color
	if err := json.Unmarshal(data, &rgb); err != nil {
		return err
	}
	*c = Color(rgb)
	return nil
}

// MarshalJSON writes the color as #rrggbb
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(umx.Color(c).Hex())
}

// Duration accepts Go duration strings such as "250ms"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"250ms\": %w", err)
	}
	return d.parse(s)
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %s", s)
	}
	*d = Duration(v)
	return nil
}
