// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

// Package httpapi exposes the display over HTTP: scripts posted as JSON
// are encoded and written through a transport sender.
package httpapi

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	cfgpkg "github.com/uartmatrix/umxctl/internal/config"
	"github.com/uartmatrix/umxctl/internal/metrics"
	"github.com/uartmatrix/umxctl/internal/script"
	"github.com/uartmatrix/umxctl/pkg/umx"
)

// RequestIDHeader carries the per-request uuid
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

var errNoSender = errors.New("no display connection")

// Server wraps the gin engine and its http.Server
type Server struct {
	srv     *http.Server
	sender  script.FrameSender
	ids     umx.ControlIDs
	bounds  umx.Bounds
	log     *zap.Logger
	metrics *metrics.APIMetrics

	metricsPath    string
	metricsHandler http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics mounts handler at path and counts requests into m
func WithMetrics(path string, handler http.Handler, m *metrics.APIMetrics) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metricsHandler = handler
		s.metrics = m
	}
}

// WithControlIDs sets the ids used by enableOutput, disableOutput and ping steps
func WithControlIDs(ids umx.ControlIDs) Option {
	return func(s *Server) { s.ids = ids }
}

// WithBounds sets the matrix size used to validate previews
func WithBounds(b umx.Bounds) Option {
	return func(s *Server) { s.bounds = b }
}

// New builds the engine and registers the routes
func New(cfg cfgpkg.HTTPConfig, sender script.FrameSender, opts ...Option) *Server {
	s := &Server{
		sender: sender,
		log:    zap.NewNop(),
		bounds: umx.Bounds{Width: 64, Height: 32, Rows: 3},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.metricsHandler != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(s.metricsHandler))
	}

	v1 := r.Group("/v1")
	v1.POST("/steps", s.handleSteps)
	v1.POST("/preview", s.handlePreview)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until Shutdown; it returns http.ErrServerClosed after a clean stop
func (s *Server) Start() error {
	s.log.Info("http api listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}
		s.log.Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

type stepsResponse struct {
	Frames    int    `json:"frames"`
	RequestID string `json:"requestId"`
}

// PreviewFrame describes one encoded frame
type PreviewFrame struct {
	Command   string   `json:"command"`
	Hex       string   `json:"hex"`
	Length    int      `json:"length"`
	Checksum  string   `json:"checksum"`
	Anomalies []string `json:"anomalies,omitempty"`
}

type previewResponse struct {
	Frames    []PreviewFrame `json:"frames"`
	RequestID string         `json:"requestId"`
}

// bindSteps decodes and encodes the request body, answering 400 on failure
func (s *Server) bindSteps(c *gin.Context) ([]script.Step, []umx.Frame, bool) {
	var steps []script.Step
	if err := c.ShouldBindJSON(&steps); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return nil, nil, false
	}
	if err := script.Validate(steps); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return nil, nil, false
	}
	frames, err := script.Compile(steps, s.ids)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return nil, nil, false
	}
	return steps, frames, true
}

func (s *Server) handleSteps(c *gin.Context) {
	steps, frames, ok := s.bindSteps(c)
	if !ok {
		return
	}
	if s.sender == nil {
		s.fail(c, http.StatusServiceUnavailable, errNoSender)
		return
	}
	if err := script.Run(c.Request.Context(), s.sender, steps, s.ids); err != nil {
		s.log.Warn("send failed", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		s.fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, stepsResponse{Frames: len(frames), RequestID: c.GetString(requestIDKey)})
}

func (s *Server) handlePreview(c *gin.Context) {
	_, frames, ok := s.bindSteps(c)
	if !ok {
		return
	}
	out := make([]PreviewFrame, 0, len(frames))
	for _, f := range frames {
		pf := PreviewFrame{
			Command:  umx.FrameName(f, s.ids),
			Hex:      hex.EncodeToString(f.Bytes()),
			Length:   f.Len(),
			Checksum: fmt.Sprintf("0x%02X", f.Checksum()),
		}
		for _, a := range umx.ValidateFrame(f, s.ids, s.bounds) {
			pf.Anomalies = append(pf.Anomalies, a.Error())
		}
		out = append(out, pf)
	}
	c.JSON(http.StatusOK, previewResponse{Frames: out, RequestID: c.GetString(requestIDKey)})
}

func (s *Server) fail(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, errorResponse{Error: err.Error(), RequestID: c.GetString(requestIDKey)})
}
