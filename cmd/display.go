// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

var (
	textFont      string
	textColor     string
	textAnimation string
	textSpeed     uint8
	textDirection string
)

var modeCmd = &cobra.Command{
	Use:       "mode <text|direct>",
	Short:     "Switch between text mode and direct drawing mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"text", "direct"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := umx.ParseDisplayMode(args[0])
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeSwitchMode(mode)))
	},
}

var textCmd = &cobra.Command{
	Use:   "text <row> <text>",
	Short: "Write a line of text to a row",
	Long: `Write a line of text (up to 255 bytes of UTF-8) to a text row.

Style flags are sent before the text, in the order font, color, animation:

  umxctl text 0 "HELLO" --font ibm --color "#ff8000" --animation slide --speed 10`,
	Args: cobra.ExactArgs(2),
	RunE: runText,
}

var fontCmd = &cobra.Command{
	Use:   "font <row> <default|pro|ibm>",
	Short: "Set the font of a text row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		font, err := umx.ParseFontType(args[1])
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeSetFont(row, font)))
	},
}

var colorCmd = &cobra.Command{
	Use:   "color <row> <#rrggbb|r,g,b>",
	Short: "Set the color of a text row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		color, err := umx.ParseColor(args[1])
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeSetColor(row, color)))
	},
}

var animationCmd = &cobra.Command{
	Use:   "animation <row> <none|blink|slide>",
	Short: "Set the animation of a text row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		a, err := parseAnimation(args[1], textSpeed, textDirection)
		if err != nil {
			return err
		}
		return sendEncoded(cmd.Context(), enc(umx.EncodeSetAnimation(row, a)))
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the display",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEncoded(cmd.Context(), enc(umx.EncodeClear()))
	},
}

var outputCmd = &cobra.Command{
	Use:   "output <on|off>",
	Short: "Enable or disable the display output",
	Long: `Enable or disable the display output.

The command ids are firmware specific and must be configured
(protocol.enableOutputId / protocol.disableOutputId, or
UMX_PROTOCOL_ENABLEOUTPUTID / UMX_PROTOCOL_DISABLEOUTPUTID).`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := cfg.ControlIDs()
		switch args[0] {
		case "on":
			return sendEncoded(cmd.Context(), enc(ids.EncodeEnableOutput()))
		case "off":
			return sendEncoded(cmd.Context(), enc(ids.EncodeDisableOutput()))
		}
		return fmt.Errorf("expected on or off, got %q", args[0])
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Request the display parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEncoded(cmd.Context(), enc(umx.EncodeParamRequest()))
	},
}

func init() {
	textCmd.Flags().StringVar(&textFont, "font", "", "Font (default, pro, ibm)")
	textCmd.Flags().StringVar(&textColor, "color", "", "Color (#rrggbb or r,g,b)")
	textCmd.Flags().StringVar(&textAnimation, "animation", "", "Animation (none, blink, slide)")
	for _, c := range []*cobra.Command{textCmd, animationCmd} {
		c.Flags().Uint8Var(&textSpeed, "speed", 5, "Animation speed")
		c.Flags().StringVar(&textDirection, "direction", "left", "Slide direction (left, right)")
	}

	rootCmd.AddCommand(modeCmd, textCmd, fontCmd, colorCmd, animationCmd, clearCmd, outputCmd, paramsCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	row, err := parseRow(args[0])
	if err != nil {
		return err
	}

	var results []encoded
	if textFont != "" {
		font, err := umx.ParseFontType(textFont)
		if err != nil {
			return err
		}
		results = append(results, enc(umx.EncodeSetFont(row, font)))
	}
	if textColor != "" {
		color, err := umx.ParseColor(textColor)
		if err != nil {
			return err
		}
		results = append(results, enc(umx.EncodeSetColor(row, color)))
	}
	if textAnimation != "" {
		a, err := parseAnimation(textAnimation, textSpeed, textDirection)
		if err != nil {
			return err
		}
		results = append(results, enc(umx.EncodeSetAnimation(row, a)))
	}
	results = append(results, enc(umx.EncodeWriteLine(row, args[1])))

	if int(row) >= cfg.Matrix.TextRows {
		logger.Sugar().Warnf("row %d is beyond the %d configured text rows", row, cfg.Matrix.TextRows)
	}
	return sendEncoded(cmd.Context(), results...)
}

func parseRow(s string) (uint8, error) {
	return parseByte("row", s)
}

func parseAnimation(kind string, speed uint8, direction string) (umx.Animation, error) {
	k, err := umx.ParseAnimationKind(kind)
	if err != nil {
		return umx.Animation{}, err
	}
	dir := umx.DirectionLeft
	if k == umx.AnimationSlide {
		if dir, err = umx.ParseDirection(direction); err != nil {
			return umx.Animation{}, err
		}
	}
	return umx.NewAnimation(k, speed, dir)
}
