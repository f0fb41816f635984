// SPDX-License-Identifier: MIT
/*
Package analyzer orchestrates the audio-to-spectrum pipeline: it drains the
capture ring buffer, runs the FFT, aggregates bins into display bands, and
applies exponential smoothing and peak-hold-with-decay. It owns no
real-time resources itself — Update is meant to be driven once per
rendered frame on the visualization thread.
*/
package analyzer

import (
	"math"
	"time"

	"spectra/internal/band"
	"spectra/internal/capture"
	"spectra/internal/config"
	"spectra/internal/fft"
	"spectra/internal/ring"
)

// SpectrumData is one frame of analyzer output.
type SpectrumData struct {
	Magnitudes []float64
	Peaks      []float64
	RMSLevel   float64
	PeakLevel  float64
	Timestamp  time.Time
}

// source is the subset of *capture.Capture the analyzer depends on. It
// exists so tests can drive Update against a fake ring buffer without a
// real audio device.
type source interface {
	Start() error
	Stop() error
	Close() error
	Stats() capture.Snapshot
	Buffer() *ring.Buffer[float32]
}

// Analyzer owns the capture handle, FFT processor, band mapping, and the
// smoothing/peak state produced across successive Update calls. Not safe
// for concurrent use: callers must sequence Update and SetConfig on a
// single (visualization) thread.
type Analyzer struct {
	capture source
	fftProc *fft.Processor

	audioCfg config.AudioConfig
	fftCfg   config.FFTConfig
	cfg      config.AnalyzerConfig

	peekScratch     []float32
	sampleBuffer    []float64
	magnitudeBuffer []float64
	mapping         band.Mapping

	smoothed []float64
	peaks    []float64
}

// New constructs an Analyzer: it opens the audio capture device, builds
// the FFT processor, sizes every scratch buffer, and computes the initial
// band mapping.
func New(audioCfg config.AudioConfig, fftCfg config.FFTConfig, analyzerCfg config.AnalyzerConfig) (*Analyzer, error) {
	cp, err := capture.New(audioCfg)
	if err != nil {
		return nil, err
	}

	proc, err := fft.NewProcessor(fft.Config{
		FFTSize:        fftCfg.FFTSize,
		Window:         fftCfg.Window,
		UseMagnitudeDB: fftCfg.UseMagnitudeDB,
		DBFloor:        fftCfg.DBFloor,
		DBCeiling:      fftCfg.DBCeiling,
	})
	if err != nil {
		cp.Close()
		return nil, err
	}

	a := &Analyzer{
		capture:         cp,
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
	return a, nil
}

// Start begins audio capture. Idempotent.
func (a *Analyzer) Start() error { return a.capture.Start() }

// Stop halts audio capture. Idempotent.
func (a *Analyzer) Stop() error { return a.capture.Stop() }

// Close stops capture and releases backend resources.
func (a *Analyzer) Close() error { return a.capture.Close() }

// Stats exposes the underlying capture's atomic counters.
func (a *Analyzer) Stats() capture.Snapshot { return a.capture.Stats() }

// SetConfig applies a new AnalyzerConfig. The smoothing/peak state and the
// band mapping are only rebuilt when NumBands, the frequency range, or the
// log/linear flag actually change; a smoothing-only change is free.
func (a *Analyzer) SetConfig(cfg config.AnalyzerConfig) {
	structuralChange := cfg.NumBands != a.cfg.NumBands ||
		cfg.MinFrequency != a.cfg.MinFrequency ||
		cfg.MaxFrequency != a.cfg.MaxFrequency ||
		cfg.LogarithmicFrequency != a.cfg.LogarithmicFrequency

	a.cfg = cfg
	if structuralChange {
		a.smoothed = resize(a.smoothed, cfg.NumBands)
		a.peaks = resize(a.peaks, cfg.NumBands)
		a.rebuildMapping()
	}
}

func resize(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}

func (a *Analyzer) rebuildMapping() {
	binCount := a.fftProc.BinCount()
	if a.cfg.LogarithmicFrequency {
		a.mapping = band.Logarithmic(a.cfg.NumBands, binCount, a.fftCfg.FFTSize,
			float64(a.audioCfg.SampleRate), a.cfg.MinFrequency, a.cfg.MaxFrequency)
	} else {
		a.mapping = band.Linear(a.cfg.NumBands, binCount)
	}
}

// Update drains the ring buffer, runs one FFT, aggregates into bands, and
// advances smoothing/peak state. It never blocks and never fails.
func (a *Analyzer) Update() SpectrumData {
	now := time.Now()
	buf := a.capture.Buffer()

	available := buf.Size()
	needed := a.fftCfg.FFTSize

	if available < needed/4 {
		return SpectrumData{
			Magnitudes: append([]float64(nil), a.smoothed...),
			Peaks:      append([]float64(nil), a.peaks...),
			RMSLevel:   0,
			PeakLevel:  0,
			Timestamp:  now,
		}
	}

	if available > needed {
		buf.Discard(available - needed)
	}

	readCount := buf.Peek(a.peekScratch)

	for i := 0; i < readCount; i++ {
		a.sampleBuffer[i] = float64(a.peekScratch[i])
	}
	samples := a.sampleBuffer[:readCount]

	var sumSquares, peakLevel float64
	for _, s := range samples {
		sumSquares += s * s
		if abs := math.Abs(s); abs > peakLevel {
			peakLevel = abs
		}
	}
	rmsLevel := 0.0
	if readCount > 0 {
		rmsLevel = math.Sqrt(sumSquares / float64(readCount))
	}

	a.fftProc.Compute(samples, a.magnitudeBuffer)

	result := SpectrumData{
		Magnitudes: make([]float64, a.cfg.NumBands),
		Peaks:      make([]float64, a.cfg.NumBands),
		RMSLevel:   rmsLevel,
		PeakLevel:  peakLevel,
		Timestamp:  now,
	}

	s := a.cfg.SmoothingFactor
	for i, r := range a.mapping {
		raw := band.Magnitude(a.magnitudeBuffer, r)

		a.smoothed[i] = (1-s)*raw + s*a.smoothed[i]
		if a.smoothed[i] > a.peaks[i] {
			a.peaks[i] = a.smoothed[i]
		} else {
			a.peaks[i] *= a.cfg.PeakDecayRate
		}

		result.Magnitudes[i] = a.smoothed[i]
		result.Peaks[i] = a.peaks[i]
	}

	buf.Discard(readCount)
	return result
}
