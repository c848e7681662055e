// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame is a complete, checksummed UMX frame ready for transmission.
// Frames are immutable; accessors return copies.
type Frame struct {
	data []byte
}

// Assemble wraps payload (command id followed by arguments) into a frame.
// The payload must leave room for the header and checksum within
// MaxFrameSize, otherwise ErrFrameTooLarge is returned and no frame is built.
func Assemble(payload []byte) (Frame, error) {
	if err := checkPayloadSize(len(payload)); err != nil {
		return Frame{}, err
	}

	data := make([]byte, FrameOverhead+len(payload))
	putFrame(data, payload)

	return Frame{data: data}, nil
}

// AssembleInto writes the frame for payload into dst and returns the number
// of bytes written. dst is left untouched when the payload is too large or
// dst cannot hold the whole frame.
func AssembleInto(dst []byte, payload []byte) (int, error) {
	if err := checkPayloadSize(len(payload)); err != nil {
		return 0, err
	}

	n := FrameOverhead + len(payload)
	if len(dst) < n {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(dst))
	}

	putFrame(dst[:n], payload)
	return n, nil
}

// MustAssemble is like Assemble but panics on error.
// Only use it for payloads known to fit.
func MustAssemble(payload []byte) Frame {
	f, err := Assemble(payload)
	if err != nil {
		panic(fmt.Sprintf("umx: assemble: %v", err))
	}
	return f
}

func checkPayloadSize(n int) error {
	if n > MaxPayloadSize {
		return fmt.Errorf("%w: payload %d bytes (max %d)", ErrFrameTooLarge, n, MaxPayloadSize)
	}
	return nil
}

// putFrame lays out header, payload and checksum. dst must be exactly
// FrameOverhead+len(payload) bytes long.
func putFrame(dst []byte, payload []byte) {
	dst[0] = MagicU
	dst[1] = MagicM
	dst[2] = MagicX
	binary.BigEndian.PutUint16(dst[3:HeaderSize], uint16(len(payload)))
	copy(dst[HeaderSize:], payload)
	dst[len(dst)-1] = CRC8(payload)
}

// Len returns the frame length in bytes.
func (f Frame) Len() int {
	return len(f.data)
}

// IsZero reports whether f was never assembled.
func (f Frame) IsZero() bool {
	return f.data == nil
}

// Bytes returns a copy of the wire bytes.
func (f Frame) Bytes() []byte {
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out
}

// Padded returns the frame zero-filled to MaxFrameSize, matching controllers
// that expect fixed-size writes.
func (f Frame) Padded() []byte {
	out := make([]byte, MaxFrameSize)
	copy(out, f.data)
	return out
}

// Payload returns a copy of the payload bytes.
func (f Frame) Payload() []byte {
	if len(f.data) < FrameOverhead {
		return nil
	}
	p := f.data[HeaderSize : len(f.data)-ChecksumSize]
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

// PayloadLength returns the value of the length field.
func (f Frame) PayloadLength() int {
	if len(f.data) < HeaderSize {
		return 0
	}
	return int(binary.BigEndian.Uint16(f.data[3:HeaderSize]))
}

// Command returns the command id. ok is false for an empty payload.
func (f Frame) Command() (id CommandID, ok bool) {
	if len(f.data) <= FrameOverhead {
		return 0, false
	}
	return CommandID(f.data[HeaderSize]), true
}

// Checksum returns the trailing CRC-8 byte.
func (f Frame) Checksum() uint8 {
	if len(f.data) == 0 {
		return 0
	}
	return f.data[len(f.data)-1]
}

// WriteTo writes the frame to w.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.data)
	return int64(n), err
}
