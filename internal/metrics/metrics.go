// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the Prometheus HTTP handler for reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// TransportMetrics counts frames written to the display
type TransportMetrics struct {
	FramesSent  *prometheus.CounterVec // labels: command
	SendErrors  *prometheus.CounterVec // labels: command
	BytesSent   prometheus.Counter
	AckBytes    prometheus.Counter
	SendLatency prometheus.Histogram
}

// NewTransportMetrics registers and returns the transport metrics
func NewTransportMetrics(reg prometheus.Registerer) *TransportMetrics {
	m := &TransportMetrics{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umx_frames_sent_total",
			Help: "Frames written to the display by command.",
		}, []string{"command"}),
		SendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umx_send_errors_total",
			Help: "Failed frame writes by command.",
		}, []string{"command"}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umx_bytes_sent_total",
			Help: "Bytes written to the display connection.",
		}),
		AckBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umx_ack_bytes_total",
			Help: "Acknowledgment bytes read back from the display.",
		}),
		SendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umx_send_duration_seconds",
			Help:    "Time to write one frame including pacing and acknowledgment.",
			Buckets: []float64{.005, .01, .02, .05, .1, .2, .5, 1},
		}),
	}
	reg.MustRegister(m.FramesSent, m.SendErrors, m.BytesSent, m.AckBytes, m.SendLatency)
	return m
}

// APIMetrics counts control API requests
type APIMetrics struct {
	Requests *prometheus.CounterVec // labels: route, code
}

// NewAPIMetrics registers and returns the API metrics
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umx_api_requests_total",
			Help: "Control API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.Requests)
	return m
}
