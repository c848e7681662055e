// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomColor(rng *rand.Rand) Color {
	return Color{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
}

func randomPoint(rng *rand.Rand) Point {
	return Point{X: uint8(rng.Intn(64)), Y: uint8(rng.Intn(32))}
}

// randomFrame encodes a random display command
func randomFrame(rng *rand.Rand) (Frame, error) {
	row := uint8(rng.Intn(3))
	switch rng.Intn(13) {
	case 0:
		return EncodeParamRequest()
	case 1:
		return EncodeSwitchMode(DisplayMode(rng.Intn(2)))
	case 2:
		text := make([]byte, rng.Intn(MaxTextLength+1))
		for i := range text {
			text[i] = byte(0x20 + rng.Intn(0x5F))
		}
		return EncodeWriteLine(row, string(text))
	case 3:
		return EncodeSetFont(row, FontType(rng.Intn(3)))
	case 4:
		return EncodeSetColor(row, randomColor(rng))
	case 5:
		a, _ := NewAnimation(AnimationKind(rng.Intn(3)), uint8(rng.Intn(256)), Direction(rng.Intn(2)))
		return EncodeSetAnimation(row, a)
	case 6:
		return EncodeDrawPixel(randomPoint(rng), randomColor(rng))
	case 7:
		pixels := make([]Color, rng.Intn(65))
		for i := range pixels {
			pixels[i] = randomColor(rng)
		}
		return EncodeDrawRow(uint8(rng.Intn(32)), pixels)
	case 8:
		return EncodeDrawLine(randomPoint(rng), randomPoint(rng), uint8(rng.Intn(4)), randomColor(rng))
	case 9:
		return EncodeDrawRectangle(randomPoint(rng), randomPoint(rng), uint8(rng.Intn(4)), randomColor(rng), rng.Intn(2) == 1)
	case 10:
		return EncodeDrawTriangle(randomPoint(rng), randomPoint(rng), randomPoint(rng), uint8(rng.Intn(4)), randomColor(rng), rng.Intn(2) == 1)
	case 11:
		return EncodeDrawCircle(randomPoint(rng), uint8(rng.Intn(16)), uint8(rng.Intn(4)), randomColor(rng), rng.Intn(2) == 1)
	default:
		return EncodeClear()
	}
}

// ============================================================
// Round Trip Fuzz Tests
// ============================================================

// TestFuzzRoundTrip_Commands encodes random commands and verifies the
// frame structure and that the decoder reproduces every frame
func TestFuzzRoundTrip_Commands(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	bounds := Bounds{Width: 64, Height: 32, Rows: 3}
	d := NewDecoder()

	for i := 0; i < rounds; i++ {
		f, err := randomFrame(rng)
		if err != nil {
			t.Fatalf("round %d: encode failed: %v", i, err)
		}

		raw := f.Bytes()
		if len(raw) > MaxFrameSize {
			t.Fatalf("round %d: frame of %d bytes", i, len(raw))
		}
		if !bytes.Equal(raw[:3], []byte("UMX")) {
			t.Fatalf("round %d: bad magic % X", i, raw[:3])
		}
		if f.PayloadLength() != len(raw)-FrameOverhead {
			t.Fatalf("round %d: length field %d for %d bytes", i, f.PayloadLength(), len(raw))
		}
		if CRC8(f.Payload()) != f.Checksum() {
			t.Fatalf("round %d: checksum mismatch", i)
		}
		if errs := ValidateFrame(f, ControlIDs{}, bounds); len(errs) != 0 {
			t.Fatalf("round %d: %s anomalies: %v", i, FormatFrame(f), errs)
		}

		var decoded *Frame
		for _, b := range raw {
			out, err := d.DecodeByte(b)
			if err != nil {
				t.Fatalf("round %d: decode error: %v", i, err)
			}
			if out != nil {
				decoded = out
			}
		}
		if decoded == nil || !bytes.Equal(decoded.Bytes(), raw) {
			t.Fatalf("round %d: round trip failed for % X", i, raw)
		}
	}
}

// TestFuzzAssemble_RandomPayloads checks assembly against ParseFrame for
// arbitrary payloads including the size limit
func TestFuzzAssemble_RandomPayloads(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)

	for i := 0; i < rounds; i++ {
		payload := make([]byte, rng.Intn(MaxPayloadSize+8))
		rng.Read(payload)

		f, err := Assemble(payload)
		if len(payload) > MaxPayloadSize {
			if err == nil {
				t.Fatalf("round %d: %d byte payload accepted", i, len(payload))
			}
			continue
		}
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}

		parsed, err := ParseFrame(f.Bytes())
		if err != nil {
			t.Fatalf("round %d: ParseFrame: %v", i, err)
		}
		if !bytes.Equal(parsed.Payload(), payload) {
			t.Fatalf("round %d: payload changed", i)
		}
	}
}

// TestFuzzDecoder_RandomBytes feeds random bytes to the decoder
// and verifies it doesn't crash or panic
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)

	for i := 0; i < rounds; i++ {
		d := NewDecoder()
		data := make([]byte, rng.Intn(600))
		rng.Read(data)

		for _, b := range data {
			f, _ := d.DecodeByte(b)
			if f != nil && CRC8(f.Payload()) != f.Checksum() {
				t.Fatalf("round %d: decoder produced frame with bad checksum", i)
			}
		}
	}
}
