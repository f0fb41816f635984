// SPDX-License-Identifier: MIT
package analyzer

import (
	"testing"

	"spectra/internal/capture"
	"spectra/internal/config"
	"spectra/internal/fft"
	"spectra/internal/ring"
	"spectra/pkg/testsignal"
)

type fakeSource struct {
	buf *ring.Buffer[float32]
}

func newFakeSource(capacity int) *fakeSource {
	return &fakeSource{buf: ring.New[float32](capacity)}
}

func (f *fakeSource) Start() error                 { return nil }
func (f *fakeSource) Stop() error                  { return nil }
func (f *fakeSource) Close() error                 { return nil }
func (f *fakeSource) Stats() capture.Snapshot       { return capture.Snapshot{} }
func (f *fakeSource) Buffer() *ring.Buffer[float32] { return f.buf }

func newTestAnalyzer(t *testing.T, src *fakeSource, fftSize, numBands int) *Analyzer {
	t.Helper()
	audioCfg := config.NewAudioConfig()
	audioCfg.SampleRate = 48000

	fftCfg := config.NewFFTConfig()
	fftCfg.FFTSize = fftSize
	fftCfg.UseMagnitudeDB = false

	analyzerCfg := config.NewAnalyzerConfig()
	analyzerCfg.NumBands = numBands
	analyzerCfg.MinFrequency = 100
	analyzerCfg.MaxFrequency = 10000
	analyzerCfg.SmoothingFactor = 0
	analyzerCfg.PeakDecayRate = 1.0

	proc, err := fft.NewProcessor(fft.Config{
		FFTSize:        fftCfg.FFTSize,
		Window:         fftCfg.Window,
		UseMagnitudeDB: fftCfg.UseMagnitudeDB,
		DBFloor:        fftCfg.DBFloor,
		DBCeiling:      fftCfg.DBCeiling,
	})
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	a := &Analyzer{
		capture:         src,
		fftProc:         proc,
		audioCfg:        audioCfg,
		fftCfg:          fftCfg,
		cfg:             analyzerCfg,
		peekScratch:     make([]float32, fftCfg.FFTSize),
		sampleBuffer:    make([]float64, fftCfg.FFTSize),
		magnitudeBuffer: make([]float64, proc.BinCount()),
		smoothed:        make([]float64, analyzerCfg.NumBands),
		peaks:           make([]float64, analyzerCfg.NumBands),
	}
	a.rebuildMapping()
	return a
}

func TestUpdateStarvationHoldsPreviousState(t *testing.T) {
	src := newFakeSource(4096)
	a := newTestAnalyzer(t, src, 512, 4)

	result := a.Update()
	for _, m := range result.Magnitudes {
		if m != 0 {
			t.Errorf("expected zero magnitudes on starvation, got %v", result.Magnitudes)
			break
		}
	}
	if result.RMSLevel != 0 || result.PeakLevel != 0 {
		t.Errorf("expected zero RMS/peak on starvation, got rms=%v peak=%v", result.RMSLevel, result.PeakLevel)
	}
}

func TestUpdateFindsToneInCorrectBand(t *testing.T) {
	const fftSize = 512
	const numBands = 4
	src := newFakeSource(8192)
	a := newTestAnalyzer(t, src, fftSize, numBands)

	samples := testsignal.GenerateSineWave(fftSize*2, float64(a.audioCfg.SampleRate), 1000)
	float32Samples := make([]float32, len(samples))
	for i, s := range samples {
		float32Samples[i] = float32(s)
	}
	src.buf.TryPushSlice(float32Samples)

	result := a.Update()

	peakBand := 0
	for i, m := range result.Magnitudes {
		if m > result.Magnitudes[peakBand] {
			peakBand = i
		}
	}

	r := a.mapping[peakBand]
	loFreq := a.fftProc.BinToFrequency(r.Lo, float64(a.audioCfg.SampleRate))
	hiFreq := a.fftProc.BinToFrequency(r.Hi, float64(a.audioCfg.SampleRate))
	if !(1000 >= loFreq && 1000 <= hiFreq) {
		t.Errorf("peak band %d covers [%.1f, %.1f) Hz, expected it to contain 1000 Hz", peakBand, loFreq, hiFreq)
	}
}

func TestUpdateDiscardsExcessSamples(t *testing.T) {
	const fftSize = 256
	src := newFakeSource(4096)
	a := newTestAnalyzer(t, src, fftSize, 4)

	src.buf.TryPushSlice(make([]float32, fftSize*3))
	a.Update()

	if got := src.buf.Size(); got != 0 {
		t.Errorf("ring buffer size after update = %d, want 0 (all consumed)", got)
	}
}

func TestSetConfigSmoothingOnlyKeepsMapping(t *testing.T) {
	src := newFakeSource(4096)
	a := newTestAnalyzer(t, src, 512, 4)

	before := a.mapping
	cfg := a.cfg
	cfg.SmoothingFactor = 0.9
	a.SetConfig(cfg)

	if len(a.mapping) != len(before) {
		t.Fatalf("mapping length changed on smoothing-only update")
	}
	for i := range before {
		if a.mapping[i] != before[i] {
			t.Errorf("mapping[%d] changed on smoothing-only update: %+v vs %+v", i, a.mapping[i], before[i])
		}
	}
}

func TestSetConfigNumBandsRebuildsState(t *testing.T) {
	src := newFakeSource(4096)
	a := newTestAnalyzer(t, src, 512, 4)
	a.smoothed[0] = 0.5
	a.peaks[0] = 0.7

	cfg := a.cfg
	cfg.NumBands = 8
	a.SetConfig(cfg)

	if len(a.smoothed) != 8 || len(a.peaks) != 8 || len(a.mapping) != 8 {
		t.Fatalf("expected resized state of length 8, got smoothed=%d peaks=%d mapping=%d",
			len(a.smoothed), len(a.peaks), len(a.mapping))
	}
	if a.smoothed[0] != 0.5 {
		t.Errorf("existing band 0 state was not preserved across resize")
	}
}

func TestBandMappingRangesWithinBinCount(t *testing.T) {
	src := newFakeSource(4096)
	a := newTestAnalyzer(t, src, 2048, 32)

	for i, r := range a.mapping {
		if !(r.Lo < r.Hi && r.Hi <= a.fftProc.BinCount()) {
			t.Errorf("band %d range %+v violates bin_lo < bin_hi <= bin_count", i, r)
		}
	}
}
