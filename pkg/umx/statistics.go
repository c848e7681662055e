// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Statistics tracks frame counts and error rates over a decoded stream.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames      uint64
	ValidFrames      uint64
	ChecksumErrors   uint64
	DecodeErrors     uint64
	MalformedFrames  uint64
	UnknownCommands  uint64
	LengthMismatches uint64
	AnomalousValues  uint64
	OutOfBounds      uint64

	// Per-command frame counts, keyed by display name
	Commands map[string]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec

	now func() time.Time
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	s := &Statistics{now: time.Now}
	s.Reset()
	return s
}

// Update counts one decoded frame, or one decode error when f is nil.
func (s *Statistics) Update(f *Frame, decodeErr error, validationErrors []ValidationError, ids ControlIDs) {
	s.TotalFrames++
	s.LastUpdateTime = s.now()

	if decodeErr != nil {
		if errors.Is(decodeErr, ErrChecksumMismatch) {
			s.ChecksumErrors++
		} else {
			s.DecodeErrors++
		}
		return
	}
	if f == nil {
		return
	}

	s.Commands[FrameName(*f, ids)]++

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	malformed, anomalous := false, false
	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyUnknownCommand:
			s.UnknownCommands++
			malformed = true
		case AnomalyLengthMismatch, AnomalyEmptyPayload:
			s.LengthMismatches++
			malformed = true
		case AnomalyOutOfBounds:
			s.OutOfBounds++
			anomalous = true
		case AnomalyInvalidValue, AnomalyInvalidText:
			anomalous = true
		}
	}
	if malformed {
		s.MalformedFrames++
	}
	if anomalous {
		s.AnomalousValues++
	}
}

// Errors returns the number of frames that failed to decode or validate.
func (s *Statistics) Errors() uint64 {
	return s.ChecksumErrors + s.DecodeErrors + s.MalformedFrames + s.AnomalousValues
}

// CalculateRates calculates frame and error rates.
func (s *Statistics) CalculateRates() {
	elapsed := s.now().Sub(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	pct := func(n uint64) float64 {
		if s.TotalFrames == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalFrames)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Statistics (%.0f seconds) ===\n", s.now().Sub(s.StartTime).Seconds())
	fmt.Fprintf(&b, "Total Frames:    %8d\n", s.TotalFrames)
	fmt.Fprintf(&b, "Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, pct(s.ValidFrames))

	if s.ChecksumErrors > 0 {
		fmt.Fprintf(&b, "CRC Errors:      %8d (%.1f%%)\n", s.ChecksumErrors, pct(s.ChecksumErrors))
	}
	if s.DecodeErrors > 0 {
		fmt.Fprintf(&b, "Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, pct(s.DecodeErrors))
	}
	if s.MalformedFrames > 0 {
		fmt.Fprintf(&b, "Malformed:       %8d (%.1f%%)\n", s.MalformedFrames, pct(s.MalformedFrames))
		if s.UnknownCommands > 0 {
			fmt.Fprintf(&b, "  Unknown Command:  %5d\n", s.UnknownCommands)
		}
		if s.LengthMismatches > 0 {
			fmt.Fprintf(&b, "  Length Mismatch:  %5d\n", s.LengthMismatches)
		}
	}
	if s.AnomalousValues > 0 {
		fmt.Fprintf(&b, "Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, pct(s.AnomalousValues))
		if s.OutOfBounds > 0 {
			fmt.Fprintf(&b, "  Out of Bounds:    %5d\n", s.OutOfBounds)
		}
	}

	if len(s.Commands) > 0 {
		names := make([]string, 0, len(s.Commands))
		for name := range s.Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("By Command:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %-16s %5d\n", name+":", s.Commands[name])
		}
	}

	fmt.Fprintf(&b, "Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	fmt.Fprintf(&b, "Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	b.WriteString("================================\n")
	return b.String()
}

// Reset resets all statistics counters.
func (s *Statistics) Reset() {
	if s.now == nil {
		s.now = time.Now
	}
	now := s.now()
	*s = Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		Commands:       make(map[string]uint64),
		now:            s.now,
	}
}
