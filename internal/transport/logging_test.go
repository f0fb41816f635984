// SPDX-License-Identifier: MIT
package transport

import (
	"testing"
	"time"

	"spectra/internal/analyzer"
)

func TestLoggingSinkSendNeverFails(t *testing.T) {
	sink := NewLoggingSink()
	data := analyzer.SpectrumData{
		Magnitudes: []float64{0.1, 0.2, 0.3},
		Peaks:      []float64{0.2, 0.3, 0.4},
		RMSLevel:   0.05,
		PeakLevel:  0.4,
		Timestamp:  time.Now(),
	}
	if err := sink.Send(data); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestLoggingSinkCloseIsNoop(t *testing.T) {
	sink := NewLoggingSink()
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
