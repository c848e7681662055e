// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The umxctl Authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uartmatrix/umxctl/internal/httpapi"
	"github.com/uartmatrix/umxctl/internal/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an HTTP API that sends script steps to the display",
	Long: `Keep the display connection open and serve an HTTP API:

  GET  /healthz      liveness
  GET  /metrics      Prometheus metrics (metrics.enable)
  POST /v1/steps     JSON array of script steps, encoded and sent
  POST /v1/preview   same body, returns the encoded frames without sending

Example:
  curl -d '[{"mode":"text"},{"text":{"row":0,"text":"HI"}}]' localhost:8080/v1/steps`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := metrics.NewRegistry()
	s, err := openSession(ctx, reg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []httpapi.Option{
		httpapi.WithLogger(logger),
		httpapi.WithControlIDs(cfg.ControlIDs()),
		httpapi.WithBounds(cfg.Bounds()),
	}
	if cfg.Metrics.Enable {
		opts = append(opts, httpapi.WithMetrics(cfg.Metrics.Path, metrics.Handler(reg), metrics.NewAPIMetrics(reg)))
	}
	srv := httpapi.New(cfg.HTTP, s.sender, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Printf("Serving %s on %s\n", s.info, cfg.HTTP.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("http api stopped")
	return nil
}
