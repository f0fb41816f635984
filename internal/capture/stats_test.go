// SPDX-License-Identifier: MIT
package capture

import (
	"sync"
	"testing"
)

func TestRaisePeakOnlyIncreases(t *testing.T) {
	var s AudioStats
	s.raisePeak(0.3)
	s.raisePeak(0.1)
	if got := s.Load().PeakAmplitude; got != 0.3 {
		t.Errorf("PeakAmplitude = %v, want 0.3 (lower value must not overwrite)", got)
	}
	s.raisePeak(0.7)
	if got := s.Load().PeakAmplitude; got != 0.7 {
		t.Errorf("PeakAmplitude = %v, want 0.7", got)
	}
}

func TestRaisePeakConcurrent(t *testing.T) {
	var s AudioStats
	var wg sync.WaitGroup
	values := []float32{0.1, 0.9, 0.5, 0.2, 0.3, 0.95, 0.4}

	for _, v := range values {
		wg.Add(1)
		go func(v float32) {
			defer wg.Done()
			s.raisePeak(v)
		}(v)
	}
	wg.Wait()

	if got := s.Load().PeakAmplitude; got != 0.95 {
		t.Errorf("PeakAmplitude = %v, want 0.95 (max of concurrent raises)", got)
	}
}

func TestBatchPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float32
	}{
		{"empty", nil, 0},
		{"all positive", []float32{0.1, 0.5, 0.2}, 0.5},
		{"with negatives", []float32{-0.9, 0.1, 0.4}, 0.9},
		{"all negative", []float32{-0.1, -0.2, -0.3}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batchPeak(tt.samples); got != tt.want {
				t.Errorf("batchPeak(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestStatsCountersAccumulate(t *testing.T) {
	var s AudioStats
	s.addFramesCaptured(512)
	s.addFramesCaptured(512)
	s.incCallbackCount()
	s.incCallbackCount()
	s.addOverrun()

	snap := s.Load()
	if snap.FramesCaptured != 1024 {
		t.Errorf("FramesCaptured = %d, want 1024", snap.FramesCaptured)
	}
	if snap.CallbackCount != 2 {
		t.Errorf("CallbackCount = %d, want 2", snap.CallbackCount)
	}
	if snap.Overruns != 1 {
		t.Errorf("Overruns = %d, want 1", snap.Overruns)
	}
}
