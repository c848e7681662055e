// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

// Package config loads umxctl settings from an optional config file,
// UMX_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

// SerialConfig selects the serial port
type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

// WebSocketConfig selects a serial-over-websocket bridge
type WebSocketConfig struct {
	URL         string `mapstructure:"url"`
	Username    string `mapstructure:"username"`
	NoSSLVerify bool   `mapstructure:"noSSLVerify"`
}

// TransportConfig controls how frames are written
type TransportConfig struct {
	FrameDelay  time.Duration `mapstructure:"frameDelay"`
	RowDelay    time.Duration `mapstructure:"rowDelay"`
	AckWindow   int           `mapstructure:"ackWindow"`
	AckTimeout  time.Duration `mapstructure:"ackTimeout"`
	AckTextOnly bool          `mapstructure:"ackTextOnly"` // read acks only after WRITE_LINE
	PadFrames   bool          `mapstructure:"padFrames"`
	Record      string        `mapstructure:"record"`
}

// MatrixConfig describes the attached display
type MatrixConfig struct {
	Width    int `mapstructure:"width"`
	Height   int `mapstructure:"height"`
	TextRows int `mapstructure:"textRows"`
}

// ProtocolConfig holds the firmware-specific control command ids
type ProtocolConfig struct {
	EnableOutputID  *uint8 `mapstructure:"enableOutputId"`
	DisableOutputID *uint8 `mapstructure:"disableOutputId"`
	PingID          *uint8 `mapstructure:"pingId"`
}

// LumberjackConfig configures the rolling log file
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures level and output
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// HTTPConfig configures the control API server
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config is the top-level configuration
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Transport TransportConfig `mapstructure:"transport"`
	Matrix    MatrixConfig    `mapstructure:"matrix"`
	Protocol  ProtocolConfig  `mapstructure:"protocol"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// FlagKeys maps command-line flag names to config keys
var FlagKeys = map[string]string{
	"port":          "serial.port",
	"baud":          "serial.baud",
	"url":           "websocket.url",
	"username":      "websocket.username",
	"no-ssl-verify": "websocket.noSSLVerify",
	"record":        "transport.record",
	"log-level":     "logging.level",
	"pad":           "transport.padFrames",
	"addr":          "http.addr",
}

// optional keys have no default and must be bound to the environment explicitly
var optionalKeys = []string{
	"protocol.enableOutputId",
	"protocol.disableOutputId",
	"protocol.pingId",
}

// Load reads configuration from path (if non-empty, or UMX_CONFIG),
// environment variables prefixed UMX_ and the flags in FlagKeys that are
// present in flags. Flags override the environment, which overrides the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Environment overrides: prefix UMX_, dots become underscores
	v.SetEnvPrefix("UMX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/umxctl")
		v.SetConfigName("umxctl")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; defaults and env still apply
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", 115200)

	v.SetDefault("websocket.url", "")
	v.SetDefault("websocket.username", "")
	v.SetDefault("websocket.noSSLVerify", false)

	v.SetDefault("transport.frameDelay", "20ms")
	v.SetDefault("transport.rowDelay", "50ms")
	v.SetDefault("transport.ackWindow", 0)
	v.SetDefault("transport.ackTimeout", "100ms")
	v.SetDefault("transport.ackTextOnly", true)
	v.SetDefault("transport.padFrames", false)
	v.SetDefault("transport.record", "")

	v.SetDefault("matrix.width", 64)
	v.SetDefault("matrix.height", 32)
	v.SetDefault("matrix.textRows", 3)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 28)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "30s")

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks values that would otherwise fail later at send time
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("invalid serial.baud %d", c.Serial.Baud)
	}
	if c.Matrix.Width <= 0 || c.Matrix.Width > umx.MaxRowPixels {
		return fmt.Errorf("invalid matrix.width %d (1-%d)", c.Matrix.Width, umx.MaxRowPixels)
	}
	if c.Matrix.Height <= 0 || c.Matrix.Height > 256 {
		return fmt.Errorf("invalid matrix.height %d (1-256)", c.Matrix.Height)
	}
	if c.Matrix.TextRows <= 0 || c.Matrix.TextRows > 256 {
		return fmt.Errorf("invalid matrix.textRows %d (1-256)", c.Matrix.TextRows)
	}
	if c.Transport.FrameDelay < 0 || c.Transport.RowDelay < 0 || c.Transport.AckTimeout < 0 {
		return errors.New("transport delays must not be negative")
	}
	if c.Transport.AckWindow < 0 || c.Transport.AckWindow > umx.MaxFrameSize {
		return fmt.Errorf("invalid transport.ackWindow %d (0-%d)", c.Transport.AckWindow, umx.MaxFrameSize)
	}
	return c.ControlIDs().Validate()
}

// ControlIDs returns the configured control command ids
func (c *Config) ControlIDs() umx.ControlIDs {
	return umx.ControlIDs{
		EnableOutput:  c.Protocol.EnableOutputID,
		DisableOutput: c.Protocol.DisableOutputID,
		Ping:          c.Protocol.PingID,
	}
}

// Bounds returns the matrix area used to validate frames
func (c *Config) Bounds() umx.Bounds {
	return umx.Bounds{Width: c.Matrix.Width, Height: c.Matrix.Height, Rows: c.Matrix.TextRows}
}
