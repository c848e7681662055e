// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"image"
	"image/color"
	"testing"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

func TestImageFrames_Crops(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(63, 31, color.RGBA{B: 200, A: 255})
	img.Set(70, 35, color.RGBA{G: 255, A: 255}) // cropped away

	frames, err := imageFrames(img, 64, 32)
	if err != nil {
		t.Fatalf("imageFrames: %v", err)
	}
	if len(frames) != 32 {
		t.Fatalf("got %d rows, want 32", len(frames))
	}

	first := frames[0].Payload()
	if first[0] != byte(umx.CmdDrawRow) || first[1] != 0 {
		t.Errorf("first frame header = % X", first[:2])
	}
	if len(first) != 2+64*3 {
		t.Errorf("row payload length = %d, want %d", len(first), 2+64*3)
	}
	if first[2] != 255 || first[3] != 0 || first[4] != 0 {
		t.Errorf("pixel (0,0) = % X, want FF 00 00", first[2:5])
	}

	last := frames[31].Payload()
	if last[1] != 31 {
		t.Errorf("last row index = %d", last[1])
	}
	if got := last[2+63*3 : 2+64*3]; got[2] != 200 {
		t.Errorf("pixel (63,31) = % X", got)
	}
}

func TestImageFrames_SmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 12))
	img.Set(10, 10, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	frames, err := imageFrames(img, 64, 32)
	if err != nil {
		t.Fatalf("imageFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d rows, want 2", len(frames))
	}
	p := frames[0].Payload()
	if len(p) != 2+4*3 {
		t.Errorf("row payload length = %d", len(p))
	}
	if p[2] != 1 || p[3] != 2 || p[4] != 3 {
		t.Errorf("pixel = % X, want 01 02 03", p[2:5])
	}
}
