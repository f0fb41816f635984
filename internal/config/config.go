// SPDX-License-Identifier: MIT
// Package config holds the runtime configuration structures for the audio
// capture, FFT, and spectrum analyzer stages, plus their defaults.
package config

import "spectra/internal/fft"

// Core configuration constants that define the boundaries and defaults
// for the analyzer pipeline.
const (
	// Audio capture defaults.
	DefaultChannels        = 1 // Mono audio; spec reduces input to one channel.
	DefaultDeviceID        = MinDeviceID
	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 512
	DefaultLowLatency      = false
	DefaultRingBufferSecs  = 2.0

	// FFT defaults.
	DefaultFFTSize   = 2048
	DefaultUseDB     = true
	DefaultDBFloor   = -80.0
	DefaultDBCeiling = 0.0

	// Analyzer defaults.
	DefaultNumBands      = 32
	DefaultMinFrequency  = 20.0
	DefaultMaxFrequency  = 20000.0
	DefaultSmoothing     = 0.7
	DefaultPeakDecayRate = 0.95
	DefaultLogarithmic   = true

	// Hardware and processing limits.
	MinDeviceID   = -1     // -1 represents the system default device.
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
)

// DefaultWindow is the FFT window used when none is configured.
var DefaultWindow = fft.Hann

// AudioConfig configures the capture device and the ring buffer that
// bridges it to the analyzer.
type AudioConfig struct {
	SampleRate        uint32  `yaml:"sample_rate"`
	BufferFrames      uint32  `yaml:"frames_per_buffer"`
	Channels          uint32  `yaml:"channels"`
	RingBufferSeconds float32 `yaml:"ring_buffer_seconds"`
	DeviceID          int     `yaml:"device_id"`
	LowLatency        bool    `yaml:"low_latency"`
}

// NewAudioConfig returns an AudioConfig populated with defaults.
func NewAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:        DefaultSampleRate,
		BufferFrames:      DefaultFramesPerBuffer,
		Channels:          DefaultChannels,
		RingBufferSeconds: DefaultRingBufferSecs,
		DeviceID:          DefaultDeviceID,
		LowLatency:        DefaultLowLatency,
	}
}

// FFTConfig configures the FFT processor.
type FFTConfig struct {
	FFTSize        int        `yaml:"fft_size"`
	Window         fft.Window `yaml:"-"`
	WindowName     string     `yaml:"window"`
	UseMagnitudeDB bool       `yaml:"use_magnitude_db"`
	DBFloor        float64    `yaml:"db_floor"`
	DBCeiling      float64    `yaml:"db_ceiling"`
}

// NewFFTConfig returns an FFTConfig populated with defaults.
func NewFFTConfig() FFTConfig {
	return FFTConfig{
		FFTSize:        DefaultFFTSize,
		Window:         DefaultWindow,
		WindowName:     DefaultWindow.String(),
		UseMagnitudeDB: DefaultUseDB,
		DBFloor:        DefaultDBFloor,
		DBCeiling:      DefaultDBCeiling,
	}
}

// AnalyzerConfig configures band aggregation and temporal smoothing.
type AnalyzerConfig struct {
	NumBands             int     `yaml:"num_bands"`
	MinFrequency         float64 `yaml:"min_frequency"`
	MaxFrequency         float64 `yaml:"max_frequency"`
	SmoothingFactor      float64 `yaml:"smoothing_factor"`
	PeakDecayRate        float64 `yaml:"peak_decay_rate"`
	LogarithmicFrequency bool    `yaml:"logarithmic_frequency"`
}

// NewAnalyzerConfig returns an AnalyzerConfig populated with defaults.
func NewAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		NumBands:             DefaultNumBands,
		MinFrequency:         DefaultMinFrequency,
		MaxFrequency:         DefaultMaxFrequency,
		SmoothingFactor:      DefaultSmoothing,
		PeakDecayRate:        DefaultPeakDecayRate,
		LogarithmicFrequency: DefaultLogarithmic,
	}
}
