// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/uartmatrix/umxctl/internal/config"
	"github.com/uartmatrix/umxctl/internal/metrics"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

// Default pacing of the display controller
const (
	DefaultFrameDelay = 20 * time.Millisecond
	DefaultRowDelay   = 50 * time.Millisecond
	DefaultAckTimeout = 100 * time.Millisecond
)

// Sender writes frames to a connection with the pacing the controller
// needs between frames. It is safe for concurrent use; frames from
// concurrent callers are written one at a time.
type Sender struct {
	mu   sync.Mutex
	conn io.Writer

	limiter    *rate.Limiter
	frameDelay time.Duration
	rowDelay   time.Duration
	holdUntil  time.Time // extra settle time after a DRAW_ROW

	ackWindow  int
	ackTimeout time.Duration
	ackOn      map[umx.CommandID]bool // nil reads after every frame
	lastAck    []byte

	pad      bool
	ids      umx.ControlIDs
	session  string
	logger   *zap.Logger
	metrics  *metrics.TransportMetrics
	recorder *Recorder
}

// Option configures a Sender
type Option func(*Sender)

// WithPacing sets the minimum gap between frames and after DRAW_ROW frames
func WithPacing(frameDelay, rowDelay time.Duration) Option {
	return func(s *Sender) {
		s.frameDelay = frameDelay
		s.rowDelay = rowDelay
	}
}

// WithAck reads up to window acknowledgment bytes after each frame.
// A zero window disables acknowledgment reads.
func WithAck(window int, timeout time.Duration) Option {
	return func(s *Sender) {
		s.ackWindow = window
		s.ackTimeout = timeout
	}
}

// WithAckOn limits acknowledgment reads to frames carrying one of ids.
// With no ids the window is read after every frame.
func WithAckOn(ids ...umx.CommandID) Option {
	return func(s *Sender) {
		if len(ids) == 0 {
			s.ackOn = nil
			return
		}
		s.ackOn = make(map[umx.CommandID]bool, len(ids))
		for _, id := range ids {
			s.ackOn[id] = true
		}
	}
}

// WithPadding zero-fills every write to umx.MaxFrameSize
func WithPadding(pad bool) Option {
	return func(s *Sender) { s.pad = pad }
}

// WithControlIDs names configured control commands in logs and metrics
func WithControlIDs(ids umx.ControlIDs) Option {
	return func(s *Sender) { s.ids = ids }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Sender) { s.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.TransportMetrics) Option {
	return func(s *Sender) { s.metrics = m }
}

// WithRecorder tees every sent frame to r
func WithRecorder(r *Recorder) Option {
	return func(s *Sender) { s.recorder = r }
}

// FromConfig maps transport settings to options
func FromConfig(cfg config.TransportConfig) []Option {
	opts := []Option{
		WithPacing(cfg.FrameDelay, cfg.RowDelay),
		WithAck(cfg.AckWindow, cfg.AckTimeout),
		WithPadding(cfg.PadFrames),
	}
	if cfg.AckTextOnly {
		opts = append(opts, WithAckOn(umx.CmdWriteLine))
	}
	return opts
}

// NewSender creates a Sender writing to conn. Acknowledgments are only
// read when conn is also an io.Reader.
func NewSender(conn io.Writer, opts ...Option) *Sender {
	s := &Sender{
		conn:       conn,
		frameDelay: DefaultFrameDelay,
		rowDelay:   DefaultRowDelay,
		ackTimeout: DefaultAckTimeout,
		session:    uuid.NewString(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.frameDelay > 0 {
		s.limiter = rate.NewLimiter(rate.Every(s.frameDelay), 1)
	} else {
		s.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	s.logger = s.logger.With(zap.String("session", s.session))

	if s.ackWindow > 0 {
		if rt, ok := conn.(ReadTimeouter); ok && s.ackTimeout > 0 {
			if err := rt.SetReadTimeout(s.ackTimeout); err != nil {
				s.logger.Warn("set read timeout failed", zap.Error(err))
			}
		}
	}
	return s
}

// Session returns the id tagging this sender's logs and recordings
func (s *Sender) Session() string {
	return s.session
}

// Send writes one frame, waiting for the pacing gap first
func (s *Sender) Send(ctx context.Context, f umx.Frame) error {
	if f.IsZero() {
		return errors.New("send: empty frame")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := umx.FrameName(f, s.ids)
	start := time.Now()

	if err := s.wait(ctx); err != nil {
		return err
	}

	data := f.Bytes()
	if s.pad {
		data = f.Padded()
	}

	n, err := s.conn.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.SendErrors.WithLabelValues(name).Inc()
		}
		s.logger.Error("write failed", zap.String("command", name), zap.Error(err))
		return fmt.Errorf("write %s: %w", name, err)
	}

	if id, ok := f.Command(); ok && id == umx.CmdDrawRow && s.rowDelay > s.frameDelay {
		s.holdUntil = time.Now().Add(s.rowDelay - s.frameDelay)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(s.session, f); err != nil {
			s.logger.Warn("record failed", zap.Error(err))
		}
	}

	s.lastAck = nil
	if s.wantsAck(f) {
		s.lastAck = s.readAck()
	}

	if s.metrics != nil {
		s.metrics.FramesSent.WithLabelValues(name).Inc()
		s.metrics.BytesSent.Add(float64(n))
		s.metrics.AckBytes.Add(float64(len(s.lastAck)))
		s.metrics.SendLatency.Observe(time.Since(start).Seconds())
	}
	s.logger.Debug("frame sent",
		zap.String("command", name),
		zap.Int("bytes", n),
		zap.Int("ack", len(s.lastAck)),
	)
	return nil
}

// SendAll sends frames in order and stops at the first error
func (s *Sender) SendAll(ctx context.Context, frames []umx.Frame) error {
	for i, f := range frames {
		if err := s.Send(ctx, f); err != nil {
			return fmt.Errorf("frame %d of %d: %w", i+1, len(frames), err)
		}
	}
	return nil
}

// LastAck returns the acknowledgment bytes read after the last frame
func (s *Sender) LastAck() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.lastAck))
	copy(out, s.lastAck)
	return out
}

// wait blocks until the next frame may be written
func (s *Sender) wait(ctx context.Context) error {
	if d := time.Until(s.holdUntil); d > 0 {
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return s.limiter.Wait(ctx)
}

func (s *Sender) wantsAck(f umx.Frame) bool {
	if s.ackOn == nil {
		return true
	}
	id, ok := f.Command()
	return ok && s.ackOn[id]
}

// readAck reads up to ackWindow bytes. Short reads and read timeouts end
// the window early; the controller does not always answer.
func (s *Sender) readAck() []byte {
	if s.ackWindow <= 0 {
		return nil
	}
	r, ok := s.conn.(io.Reader)
	if !ok {
		return nil
	}

	buf := make([]byte, s.ackWindow)
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("ack read failed", zap.Error(err))
			}
			break
		}
		if n == 0 {
			break
		}
	}
	return buf[:total]
}
