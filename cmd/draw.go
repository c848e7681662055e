// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

var (
	drawColor     string
	drawThickness uint8
	drawFilled    bool
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw pixels and shapes (direct mode)",
	Long: `Draw pixels and shapes. The display must be in direct mode
(umxctl mode direct) for drawing commands to take effect.`,
}

var drawPixelCmd = &cobra.Command{
	Use:   "pixel <x> <y>",
	Short: "Draw a single pixel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, color, err := drawArgs(args)
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawPixel(points[0], color)))
	},
}

var drawLineCmd = &cobra.Command{
	Use:   "line <x1> <y1> <x2> <y2>",
	Short: "Draw a line",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, color, err := drawArgs(args)
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawLine(points[0], points[1], drawThickness, color)))
	},
}

var drawRectCmd = &cobra.Command{
	Use:   "rect <x1> <y1> <x2> <y2>",
	Short: "Draw a rectangle from two opposite corners",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, color, err := drawArgs(args)
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawRectangle(points[0], points[1], drawThickness, color, drawFilled)))
	},
}

var drawTriangleCmd = &cobra.Command{
	Use:   "triangle <x1> <y1> <x2> <y2> <x3> <y3>",
	Short: "Draw a triangle",
	Args:  cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, color, err := drawArgs(args)
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawTriangle(points[0], points[1], points[2], drawThickness, color, drawFilled)))
	},
}

var drawCircleCmd = &cobra.Command{
	Use:   "circle <x> <y> <radius>",
	Short: "Draw a circle",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, color, err := drawArgs(args[:2])
		if err != nil {
			return err
		}
		radius, err := parseByte("radius", args[2])
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawCircle(points[0], radius, drawThickness, color, drawFilled)))
	},
}

var drawRowCmd = &cobra.Command{
	Use:   "row <row> <color>...",
	Short: "Draw a row of pixels, one color per pixel from the left edge",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseByte("row", args[0])
		if err != nil {
			return err
		}
		pixels := make([]umx.Color, 0, len(args)-1)
		for _, a := range args[1:] {
			c, err := umx.ParseColor(a)
			if err != nil {
				return err
			}
			pixels = append(pixels, c)
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeDrawRow(row, pixels)))
	},
}

func init() {
	for _, c := range []*cobra.Command{drawPixelCmd, drawLineCmd, drawRectCmd, drawTriangleCmd, drawCircleCmd} {
		c.Flags().StringVar(&drawColor, "color", "#ffffff", "Color (#rrggbb or r,g,b)")
	}
	for _, c := range []*cobra.Command{drawLineCmd, drawRectCmd, drawTriangleCmd, drawCircleCmd} {
		c.Flags().Uint8Var(&drawThickness, "thickness", 1, "Outline thickness")
	}
	for _, c := range []*cobra.Command{drawRectCmd, drawTriangleCmd, drawCircleCmd} {
		c.Flags().BoolVar(&drawFilled, "filled", false, "Fill the shape")
	}

	drawCmd.AddCommand(drawPixelCmd, drawLineCmd, drawRectCmd, drawTriangleCmd, drawCircleCmd, drawRowCmd)
	rootCmd.AddCommand(drawCmd)
}

// drawArgs parses x/y pairs and the --color flag
func drawArgs(args []string) ([]umx.Point, umx.Color, error) {
	if len(args)%2 != 0 {
		return nil, umx.Color{}, fmt.Errorf("expected x y pairs, got %d values", len(args))
	}
	points := make([]umx.Point, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		x, err := parseByte("x", args[i])
		if err != nil {
			return nil, umx.Color{}, err
		}
		y, err := parseByte("y", args[i+1])
		if err != nil {
			return nil, umx.Color{}, err
		}
		points = append(points, umx.Point{X: x, Y: y})
	}
	color, err := umx.ParseColor(drawColor)
	if err != nil {
		return nil, umx.Color{}, err
	}
	return points, color, nil
}

func parseByte(name, s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q (0-255)", name, s)
	}
	return uint8(v), nil
}
