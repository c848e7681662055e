// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"encoding/binary"
	"fmt"
)

// Decoder reassembles frames from a byte stream. It is used to inspect
// captured or recorded traffic and to verify encoder output; the
// controller itself never answers with frames.
type Decoder struct {
	state     int
	length    int
	payload   []byte
	rawBuffer []byte // Accumulate raw bytes of the current frame
}

// NewDecoder creates a new frame decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateMagicU,
		payload:   make([]byte, 0, MaxPayloadSize),
		rawBuffer: make([]byte, 0, MaxFrameSize),
	}
}

// Reset returns the decoder to the idle state
func (d *Decoder) Reset() {
	d.state = stateMagicU
	d.length = 0
	d.payload = d.payload[:0]
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the bytes of the frame currently being decoded
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns an error if decoding fails; the decoder is then reset.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	switch d.state {
	case stateMagicU:
		// Waiting for start of frame
		if b == MagicU {
			d.rawBuffer = append(d.rawBuffer[:0], b)
			d.state = stateMagicM
		}
		return nil, nil

	case stateMagicM:
		if b != MagicM {
			return nil, d.resync(b)
		}
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateMagicX
		return nil, nil

	case stateMagicX:
		if b != MagicX {
			return nil, d.resync(b)
		}
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateLengthHi
		return nil, nil

	case stateLengthHi:
		d.rawBuffer = append(d.rawBuffer, b)
		d.length = int(b) << 8
		d.state = stateLengthLo
		return nil, nil

	case stateLengthLo:
		d.rawBuffer = append(d.rawBuffer, b)
		d.length |= int(b)
		if d.length > MaxPayloadSize {
			length := d.length
			d.Reset()
			return nil, fmt.Errorf("%w: length field %d (max %d)", ErrFrameTooLarge, length, MaxPayloadSize)
		}
		if d.length == 0 {
			d.state = stateChecksum
		} else {
			d.state = statePayload
		}
		return nil, nil

	case statePayload:
		d.rawBuffer = append(d.rawBuffer, b)
		d.payload = append(d.payload, b)
		if len(d.payload) >= d.length {
			d.state = stateChecksum
		}
		return nil, nil

	case stateChecksum:
		calculated := CRC8(d.payload)
		if b != calculated {
			d.Reset()
			return nil, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrChecksumMismatch, calculated, b)
		}
		d.rawBuffer = append(d.rawBuffer, b)
		data := make([]byte, len(d.rawBuffer))
		copy(data, d.rawBuffer)
		d.Reset()
		return &Frame{data: data}, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state: %d", d.state)
	}
}

// resync drops a partial magic and restarts on b if it opens a new frame.
func (d *Decoder) resync(b byte) error {
	err := fmt.Errorf("%w: unexpected 0x%02X after %q", ErrBadMagic, b, d.rawBuffer)
	d.Reset()
	if b == MagicU {
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateMagicM
	}
	return err
}

// DecodeStream feeds data through a fresh decoder and returns every
// complete frame together with the errors encountered on the way.
func DecodeStream(data []byte) ([]Frame, []error) {
	d := NewDecoder()
	var frames []Frame
	var errs []error
	for _, b := range data {
		f, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if f != nil {
			frames = append(frames, *f)
		}
	}
	if len(d.rawBuffer) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d bytes pending", ErrTruncated, len(d.rawBuffer)))
	}
	return frames, errs
}

// ParseFrame parses data as exactly one frame.
func ParseFrame(data []byte) (Frame, error) {
	if len(data) < FrameOverhead {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if data[0] != MagicU || data[1] != MagicM || data[2] != MagicX {
		return Frame{}, fmt.Errorf("%w: % X", ErrBadMagic, data[:3])
	}

	length := int(binary.BigEndian.Uint16(data[3:HeaderSize]))
	if length > MaxPayloadSize {
		return Frame{}, fmt.Errorf("%w: length field %d (max %d)", ErrFrameTooLarge, length, MaxPayloadSize)
	}

	total := FrameOverhead + length
	switch {
	case len(data) < total:
		return Frame{}, fmt.Errorf("%w: have %d of %d bytes", ErrTruncated, len(data), total)
	case len(data) > total:
		return Frame{}, fmt.Errorf("%w: %d extra", ErrTrailingBytes, len(data)-total)
	}

	payload := data[HeaderSize : total-ChecksumSize]
	calculated := CRC8(payload)
	if got := data[total-1]; got != calculated {
		return Frame{}, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrChecksumMismatch, calculated, got)
	}

	out := make([]byte, total)
	copy(out, data)
	return Frame{data: out}, nil
}
