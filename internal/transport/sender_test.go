// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uartmatrix/umxctl/internal/config"
	"github.com/uartmatrix/umxctl/internal/metrics"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

// fakeConn records writes and answers reads from a script
type fakeConn struct {
	mu       sync.Mutex
	writes   [][]byte
	acks     [][]byte // one entry per Read; an empty queue reads as a timeout
	timeout  time.Duration
	writeErr error
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, bytes.Clone(p))
	return len(p), nil
}

func (c *fakeConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.acks) == 0 {
		return 0, nil
	}
	next := c.acks[0]
	c.acks = c.acks[1:]
	return copy(p, next), nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) SetReadTimeout(d time.Duration) error {
	c.timeout = d
	return nil
}

// mustFrame unwraps an encoder result
func mustFrame(t *testing.T) func(umx.Frame, error) umx.Frame {
	return func(f umx.Frame, err error) umx.Frame {
		t.Helper()
		require.NoError(t, err)
		return f
	}
}

func TestSender_WritesFramesVerbatim(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(0, 0))

	f := mustFrame(t)(umx.EncodeWriteLine(3, "THISISATEST"))
	require.NoError(t, s.Send(context.Background(), f))

	require.Len(t, conn.writes, 1)
	assert.Equal(t, f.Bytes(), conn.writes[0])
	assert.Empty(t, s.LastAck())
}

func TestSender_Padding(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(0, 0), WithPadding(true))

	f := mustFrame(t)(umx.EncodeClear())
	require.NoError(t, s.Send(context.Background(), f))

	require.Len(t, conn.writes, 1)
	assert.Len(t, conn.writes[0], umx.MaxFrameSize)
	assert.Equal(t, f.Bytes(), conn.writes[0][:f.Len()])
}

func TestSender_Pacing(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(15*time.Millisecond, 15*time.Millisecond))

	frames := []umx.Frame{
		mustFrame(t)(umx.EncodeClear()),
		mustFrame(t)(umx.EncodeSwitchMode(umx.ModeText)),
		mustFrame(t)(umx.EncodeClear()),
	}

	start := time.Now()
	require.NoError(t, s.SendAll(context.Background(), frames))
	elapsed := time.Since(start)

	assert.Len(t, conn.writes, 3)
	assert.GreaterOrEqual(t, elapsed, 25*time.Millisecond, "three frames need two gaps")
}

func TestSender_RowDelay(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(time.Millisecond, 40*time.Millisecond))

	row := mustFrame(t)(umx.EncodeDrawRow(0, make([]umx.Color, 4)))

	start := time.Now()
	require.NoError(t, s.Send(context.Background(), row))
	require.NoError(t, s.Send(context.Background(), row))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestSender_ContextCancelled(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(time.Hour, time.Hour))

	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeClear())))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Send(ctx, mustFrame(t)(umx.EncodeClear()))
	assert.Error(t, err)
	assert.Len(t, conn.writes, 1)
}

func TestSender_ReadsAckWindow(t *testing.T) {
	conn := &fakeConn{acks: [][]byte{[]byte("OK"), []byte(" row 3")}}
	s := NewSender(conn, WithPacing(0, 0), WithAck(20, 30*time.Millisecond))

	assert.Equal(t, 30*time.Millisecond, conn.timeout)

	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeWriteLine(3, "hi"))))
	assert.Equal(t, []byte("OK row 3"), s.LastAck())

	// Nothing more to read: the window ends on the timed-out read
	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeClear())))
	assert.Empty(t, s.LastAck())
}

func TestSender_AckOnlyAfterWriteLine(t *testing.T) {
	conn := &fakeConn{acks: [][]byte{[]byte("OK")}}
	s := NewSender(conn, WithPacing(0, 0), WithAck(20, time.Millisecond), WithAckOn(umx.CmdWriteLine))

	// the queued ack stays unread across the row frame
	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeDrawRow(0, make([]umx.Color, 2)))))
	assert.Empty(t, s.LastAck())
	assert.Len(t, conn.acks, 1)

	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeWriteLine(0, "hi"))))
	assert.Equal(t, []byte("OK"), s.LastAck())
}

func TestFromConfig_AckTextOnly(t *testing.T) {
	conn := &fakeConn{acks: [][]byte{[]byte("OK")}}
	cfg := config.TransportConfig{AckWindow: 20, AckTimeout: time.Millisecond, AckTextOnly: true}
	s := NewSender(conn, FromConfig(cfg)...)

	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeClear())))
	assert.Empty(t, s.LastAck())

	// an empty WithAckOn restores reads after every frame
	s = NewSender(conn, append(FromConfig(cfg), WithAckOn())...)
	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeClear())))
	assert.Equal(t, []byte("OK"), s.LastAck())
}

func TestSender_AckWindowCap(t *testing.T) {
	conn := &fakeConn{acks: [][]byte{[]byte(strings.Repeat("A", 30))}}
	s := NewSender(conn, WithPacing(0, 0), WithAck(20, time.Millisecond))

	require.NoError(t, s.Send(context.Background(), mustFrame(t)(umx.EncodeClear())))
	assert.Len(t, s.LastAck(), 20)
}

func TestSender_WriteError(t *testing.T) {
	conn := &fakeConn{writeErr: errors.New("port gone")}
	reg := prometheus.NewRegistry()
	m := metrics.NewTransportMetrics(reg)
	s := NewSender(conn, WithPacing(0, 0), WithMetrics(m))

	err := s.Send(context.Background(), mustFrame(t)(umx.EncodeClear()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLEAR")
	assert.ErrorIs(t, err, conn.writeErr)
}

func TestSender_RejectsZeroFrame(t *testing.T) {
	s := NewSender(&fakeConn{}, WithPacing(0, 0))
	assert.Error(t, s.Send(context.Background(), umx.Frame{}))
}

func TestSender_RecordsFrames(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	s := NewSender(&fakeConn{}, WithPacing(0, 0), WithRecorder(rec))

	frames := []umx.Frame{
		mustFrame(t)(umx.EncodeSwitchMode(umx.ModeDirect)),
		mustFrame(t)(umx.EncodeDrawPixel(umx.Point{X: 1, Y: 2}, umx.DefaultColor())),
	}
	require.NoError(t, s.SendAll(context.Background(), frames))

	records, err := ReadRecording(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, s.Session(), rec.Session)
		assert.Equal(t, frames[i].Bytes(), rec.Frame)
		assert.False(t, rec.Time().IsZero())
	}
}

func TestSender_ConcurrentSendsDoNotInterleave(t *testing.T) {
	conn := &fakeConn{}
	s := NewSender(conn, WithPacing(0, 0))
	f := mustFrame(t)(umx.EncodeWriteLine(0, "concurrent"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Send(context.Background(), f))
		}()
	}
	wg.Wait()

	require.Len(t, conn.writes, 8)
	for _, w := range conn.writes {
		assert.Equal(t, f.Bytes(), w)
	}
}
