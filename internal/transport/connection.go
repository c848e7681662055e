// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"

	"github.com/uartmatrix/umxctl/internal/config"
)

// Connection provides a common interface for writing frames to a serial
// port or a serial-over-WebSocket bridge and reading acknowledgments back
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// ReadTimeouter is implemented by connections whose reads can time out
type ReadTimeouter interface {
	SetReadTimeout(d time.Duration) error
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// SetReadTimeout bounds each Read; a timed-out read returns 0 bytes
func (s *SerialConnection) SetReadTimeout(d time.Duration) error {
	return s.port.SetReadTimeout(d)
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// WebSocketConnection wraps a WebSocket connection for byte-level reading.
// Messages are read by a background goroutine so that a read timeout only
// means "no data yet"; gorilla fails the connection on a missed deadline.
type WebSocketConnection struct {
	conn        *websocket.Conn
	msgs        chan []byte
	done        chan struct{}
	err         error // set before msgs is closed
	buf         []byte
	bufOffset   int
	readTimeout time.Duration
	closeOnce   sync.Once
}

func newWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	w := &WebSocketConnection{
		conn: conn,
		msgs: make(chan []byte, 16),
		done: make(chan struct{}),
	}
	go w.readLoop()
	return w
}

func (w *WebSocketConnection) readLoop() {
	defer close(w.msgs)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.err = err
			return
		}

		// Frames travel as binary messages
		if messageType != websocket.BinaryMessage {
			continue
		}

		select {
		case w.msgs <- data:
		case <-w.done:
			return
		}
	}
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Buffered data from the last message first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	var timeout <-chan time.Time
	if w.readTimeout > 0 {
		t := time.NewTimer(w.readTimeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case data, ok := <-w.msgs:
		if !ok {
			if w.err != nil && !websocket.IsCloseError(w.err, websocket.CloseNormalClosure) {
				return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, w.err)
			}
			return 0, ErrConnectionClosed
		}
		w.buf = data
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	case <-timeout:
		return 0, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return w.conn.Close()
}

// SetReadTimeout bounds each Read.
func (w *WebSocketConnection) SetReadTimeout(d time.Duration) error {
	w.readTimeout = d
	return nil
}

// OpenSerial opens a serial port at 8N1
func OpenSerial(portName string, baudRate int) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocket opens a WebSocket connection with HTTP Basic auth
func OpenWebSocket(ctx context.Context, wsURL, username, password string, skipSSLVerify bool) (*WebSocketConnection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify, //nolint:gosec // opt-in via --no-ssl-verify
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return newWebSocketConnection(conn), nil
}

// ErrNoTarget is returned by Open when neither a port nor a URL is configured
var ErrNoTarget = errors.New("either --port or --url must be specified")

// Open opens a WebSocket connection when a URL is configured, otherwise the
// serial port. password is only called for authenticated WebSocket
// connections. The returned string describes the connection for display.
func Open(ctx context.Context, cfg *config.Config, password func() (string, error)) (Connection, string, error) {
	if ws := cfg.WebSocket; ws.URL != "" {
		pw := ""
		if ws.Username != "" && password != nil {
			var err error
			if pw, err = password(); err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocket(ctx, ws.URL, ws.Username, pw, ws.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", ws.URL), nil
	}

	if s := cfg.Serial; s.Port != "" {
		conn, err := OpenSerial(s.Port, s.Baud)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", s.Port, s.Baud), nil
	}

	return nil, "", ErrNoTarget
}
