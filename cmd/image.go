// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

var imageSwitchMode bool

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Draw a PNG or JPEG image, one DRAW_ROW per line",
	Long: `Draw a PNG or JPEG image on the matrix.

The image is not resized: pixels beyond the configured matrix size
(matrix.width x matrix.height) are cropped. Scale the image beforehand
to fill the display. Each image line is sent as one DRAW_ROW frame,
paced by transport.rowDelay.`,
	Args: cobra.ExactArgs(1),
	RunE: runImage,
}

func init() {
	imageCmd.Flags().BoolVar(&imageSwitchMode, "switch-mode", true, "Switch the display to direct mode first")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	b := img.Bounds()
	if b.Dx() > cfg.Matrix.Width || b.Dy() > cfg.Matrix.Height {
		fmt.Fprintf(os.Stderr, "Warning: %s image is %dx%d, cropping to %dx%d\n",
			format, b.Dx(), b.Dy(), cfg.Matrix.Width, cfg.Matrix.Height)
	}

	frames, err := imageFrames(img, cfg.Matrix.Width, cfg.Matrix.Height)
	if err != nil {
		return err
	}
	if imageSwitchMode {
		mode, err := umx.EncodeSwitchMode(umx.ModeDirect)
		if err != nil {
			return err
		}
		frames = append([]umx.Frame{mode}, frames...)
	}
	return sendFrames(cmd.Context(), frames)
}

// imageFrames encodes the top-left width x height area of img as one
// DRAW_ROW frame per line
func imageFrames(img image.Image, width, height int) ([]umx.Frame, error) {
	b := img.Bounds()
	w := min(b.Dx(), width, umx.MaxRowPixels)
	h := min(b.Dy(), height, 256)

	frames := make([]umx.Frame, 0, h)
	pixels := make([]umx.Color, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			pixels[x] = umx.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
		}
		f, err := umx.EncodeDrawRow(uint8(y), pixels)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
