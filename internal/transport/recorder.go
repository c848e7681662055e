// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

// Record is one frame captured by a Recorder. Records are stored as a
// sequence of CBOR maps with integer keys.
type Record struct {
	TimeMicros int64  `cbor:"0,keyasint"`
	Session    string `cbor:"1,keyasint,omitempty"`
	Frame      []byte `cbor:"2,keyasint"`
}

// Time returns the capture time
func (r Record) Time() time.Time {
	return time.UnixMicro(r.TimeMicros)
}

// Recorder appends sent frames to a CBOR stream
type Recorder struct {
	mu     sync.Mutex
	enc    *cbor.Encoder
	closer io.Closer
	now    func() time.Time
}

// NewRecorder writes records to w
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{enc: cbor.NewEncoder(w), now: time.Now}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// CreateRecorder appends records to the file at path, creating it if needed
func CreateRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return NewRecorder(f), nil
}

// Record appends f
func (r *Recorder) Record(session string, f umx.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(Record{
		TimeMicros: r.now().UnixMicro(),
		Session:    session,
		Frame:      f.Bytes(),
	})
}

// Close closes the underlying writer if it is closable
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadRecording reads every record from rd until EOF
func ReadRecording(rd io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(rd)
	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

// Frames parses the frames of records, failing on the first corrupt one
func Frames(records []Record) ([]umx.Frame, error) {
	frames := make([]umx.Frame, 0, len(records))
	for i, rec := range records {
		f, err := umx.ParseFrame(rec.Frame)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
