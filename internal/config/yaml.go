// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"spectra/internal/fft"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of running the pipeline (e.g., "list").
	Audio     AudioConfig     `yaml:"audio"`             // Audio capture and ring buffer settings.
	FFT       FFTConfig       `yaml:"fft"`               // FFT processing settings.
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`          // Band aggregation and smoothing settings.
	Transport TransportConfig `yaml:"transport"`         // Output sink settings.
}

// TransportConfig holds settings related to sending processed spectrum
// frames to a renderer or over the network.
type TransportConfig struct {
	Sink             string        `yaml:"sink"`               // "tui", "log", "websocket", or "udp".
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the websocket sink (e.g., ":8080").
	WebSocketMinGap  time.Duration `yaml:"websocket_min_gap"`  // Minimum interval between websocket broadcasts.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
}

// NewTransportConfig returns a TransportConfig populated with defaults.
func NewTransportConfig() TransportConfig {
	return TransportConfig{
		Sink:             "tui",
		WebSocketAddress: ":8080",
		WebSocketMinGap:  33 * time.Millisecond, // ~30Hz
		UDPTargetAddress: "127.0.0.1:9090",
		UDPSendInterval:  16 * time.Millisecond, // ~60Hz
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches default locations ("config.yaml"). If no file is found, it
// uses built-in defaults. After loading, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:     false,
		LogLevel:  "info",
		Audio:     NewAudioConfig(),
		FFT:       NewFFTConfig(),
		Analyzer:  NewAnalyzerConfig(),
		Transport: NewTransportConfig(),
	}

	if path == "" {
		candidates := []string{"config.yaml"}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if w, err := fft.ParseWindow(cfg.FFT.WindowName); err == nil {
		cfg.FFT.Window = w
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %d out of range [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Analyzer.NumBands <= 0 {
		return fmt.Errorf("analyzer.num_bands must be positive, got %d", c.Analyzer.NumBands)
	}
	if c.Analyzer.MinFrequency <= 0 || c.Analyzer.MinFrequency >= c.Analyzer.MaxFrequency {
		return fmt.Errorf("analyzer.min_frequency (%v) must be positive and below max_frequency (%v)", c.Analyzer.MinFrequency, c.Analyzer.MaxFrequency)
	}
	switch c.Transport.Sink {
	case "tui", "log", "websocket", "udp":
	default:
		return fmt.Errorf("transport.sink %q is not one of tui, log, websocket, udp", c.Transport.Sink)
	}
	return nil
}

func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SPECTRA_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("SPECTRA_TRANSPORT_SINK"); ok {
		cfg.Transport.Sink = val
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_WEBSOCKET_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
	}
}
