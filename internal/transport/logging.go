// SPDX-License-Identifier: MIT
package transport

import (
	"spectra/internal/analyzer"
	applog "spectra/internal/log"
)

// LoggingSink logs a one-line summary of each frame. Useful during
// development when no renderer is attached.
type LoggingSink struct{}

// NewLoggingSink creates a LoggingSink.
func NewLoggingSink() *LoggingSink {
	applog.Info("transport: using logging sink")
	return &LoggingSink{}
}

// Send logs RMS/peak levels and the band count. Never fails.
func (s *LoggingSink) Send(data analyzer.SpectrumData) error {
	applog.Debugf("spectrum: bands=%d rms=%.4f peak=%.4f", len(data.Magnitudes), data.RMSLevel, data.PeakLevel)
	return nil
}

// Close is a no-op.
func (s *LoggingSink) Close() error { return nil }

var _ Sink = (*LoggingSink)(nil)
