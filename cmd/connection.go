// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/uartmatrix/umxctl/internal/metrics"
	"github.com/uartmatrix/umxctl/internal/transport"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

// session is an open display connection with its paced sender
type session struct {
	conn     transport.Connection
	sender   *transport.Sender
	recorder *transport.Recorder
	info     string
}

// openSession opens the configured connection (WebSocket when a URL is
// set, serial otherwise). Transport metrics are registered on reg when
// it is non-nil.
func openSession(ctx context.Context, reg prometheus.Registerer) (*session, error) {
	conn, info, err := transport.Open(ctx, cfg, transport.Password)
	if err != nil {
		return nil, err
	}

	s := &session{conn: conn, info: info}
	opts := append(transport.FromConfig(cfg.Transport),
		transport.WithControlIDs(cfg.ControlIDs()),
		transport.WithLogger(logger),
	)
	if reg != nil {
		opts = append(opts, transport.WithMetrics(metrics.NewTransportMetrics(reg)))
	}
	if cfg.Transport.Record != "" {
		rec, err := transport.CreateRecorder(cfg.Transport.Record)
		if err != nil {
			conn.Close()
			return nil, err
		}
		s.recorder = rec
		opts = append(opts, transport.WithRecorder(rec))
	}

	s.sender = transport.NewSender(conn, opts...)
	logger.Info("connected", zap.String("connection", info), zap.String("session", s.sender.Session()))
	return s, nil
}

// Close closes the recording and the connection
func (s *session) Close() error {
	var errs []error
	if s.recorder != nil {
		errs = append(errs, s.recorder.Close())
	}
	errs = append(errs, s.conn.Close())
	return errors.Join(errs...)
}

// sendFrames writes frames to the display, or prints them with --dry-run
func sendFrames(ctx context.Context, frames []umx.Frame) error {
	ids := cfg.ControlIDs()

	if dryRun {
		for _, f := range frames {
			fmt.Print(umx.FormatFrameWith(f, ids))
			fmt.Printf("  Raw: % X\n", f.Bytes())
		}
		return nil
	}

	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.sender.SendAll(ctx, frames); err != nil {
		return err
	}

	fmt.Printf("Sent %d frame(s) via %s\n", len(frames), s.info)
	if ack := s.sender.LastAck(); len(ack) > 0 {
		fmt.Printf("Ack: %q\n", ack)
	}
	return nil
}

// sendEncoded unwraps encoder results and sends them
func sendEncoded(ctx context.Context, results ...encoded) error {
	frames := make([]umx.Frame, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return r.err
		}
		frames = append(frames, r.frame)
	}
	return sendFrames(ctx, frames)
}

type encoded struct {
	frame umx.Frame
	err   error
}

func enc(f umx.Frame, err error) encoded {
	return encoded{frame: f, err: err}
}
