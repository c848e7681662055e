// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for editing text rows on the display",
	Long: `Edit the text rows of the display in an interactive terminal UI.

Each row has its own text, font, color and animation. Changes are sent
when a row is submitted with Enter (Ctrl+R sends every row). Ctrl+T
switches between text and direct mode and Ctrl+L clears the display.

When the connection drops the next send reconnects with exponential
backoff before giving up.

Supports both serial and WebSocket connections.`,
	Args: cobra.NoArgs,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager owns the session and reopens it when a send fails
type connectionManager struct {
	mu         sync.Mutex
	s          *session
	p          *tea.Program
	open       func(ctx context.Context) (*session, error)
	maxBackoff time.Duration
	attempts   int
}

func (cm *connectionManager) current() *session {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.s
}

// Send writes f, reconnecting once if the connection was lost
func (cm *connectionManager) Send(ctx context.Context, f umx.Frame) error {
	s := cm.current()
	err := s.sender.Send(ctx, f)
	if err == nil || ctx.Err() != nil {
		return err
	}

	logger.Warn("send failed, reconnecting", zap.Error(err))
	if cm.p != nil {
		cm.p.Send(connectionLostMsg{err: err})
	}
	if rerr := cm.reconnect(ctx, s); rerr != nil {
		return errors.Join(err, rerr)
	}
	return cm.current().sender.Send(ctx, f)
}

// reconnect replaces the failed session, backing off exponentially
func (cm *connectionManager) reconnect(ctx context.Context, failed *session) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// another send already reconnected
	if cm.s != failed {
		return nil
	}
	failed.Close()

	backoff := 250 * time.Millisecond
	var lastErr error
	for i := 0; i < cm.attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		s, err := cm.open(ctx)
		if err == nil {
			cm.s = s
			if cm.p != nil {
				cm.p.Send(reconnectedMsg{connInfo: s.info})
			}
			return nil
		}
		lastErr = err

		backoff *= 2
		if backoff > cm.maxBackoff {
			backoff = cm.maxBackoff
		}
	}
	return fmt.Errorf("reconnect failed after %d attempt(s): %w", cm.attempts, lastErr)
}

func (cm *connectionManager) Close() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.s.Close()
}

func runControl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	open := func(ctx context.Context) (*session, error) {
		return openSession(ctx, nil)
	}
	s, err := open(ctx)
	if err != nil {
		return err
	}

	cm := &connectionManager{
		s:          s,
		open:       open,
		maxBackoff: 8 * time.Second,
		attempts:   5,
	}
	defer cm.Close()

	rows := cfg.Matrix.TextRows
	if rows < 1 {
		rows = 1
	}
	m := initialControlModel(ctx, cm, s.info, rows)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	cm.p = p

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
