// SPDX-License-Identifier: MIT
/*
Package fft turns a window of real audio samples into a normalized
magnitude spectrum. All buffers are pre-allocated at construction (or on a
config change that resizes them) so that Compute performs no allocation,
matching the real-time constraints of the caller.
*/
package fft

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"

	"spectra/pkg/bitint"
)

// Window selects the coefficient shape applied to the input signal before
// the transform.
type Window int

const (
	Rectangular Window = iota
	Hann
	Hamming
	Blackman
	FlatTop
)

// String returns the canonical name of the window.
func (w Window) String() string {
	switch w {
	case Rectangular:
		return "rectangular"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case FlatTop:
		return "flattop"
	default:
		return "unknown"
	}
}

// ParseWindow converts a case-insensitive name to a Window.
func ParseWindow(name string) (Window, error) {
	switch strings.ToLower(name) {
	case "rectangular", "rect", "none":
		return Rectangular, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "flattop", "flat-top", "flat_top":
		return FlatTop, nil
	default:
		return Hann, fmt.Errorf("fft: unknown window %q", name)
	}
}

// Kind classifies a construction error the way spec §7 does.
type Kind int

const (
	InvalidArgument Kind = iota
	ResourceExhausted
)

// Error wraps a Kind with a message, comparable via errors.As.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Config holds the mutable parameters of a Processor.
type Config struct {
	FFTSize        int
	Window         Window
	UseMagnitudeDB bool
	DBFloor        float64
	DBCeiling      float64
}

// workspace holds the pre-allocated buffers a Processor reuses across calls.
type workspace struct {
	input     []float64
	fftOutput []complex128
	window    []float64
}

// Processor owns a planned real-to-complex forward transform plus the
// scratch buffers Compute writes into. It is not safe for concurrent use;
// spec assigns it exclusively to the visualization thread.
type Processor struct {
	cfg      Config
	plan     *fourier.FFT
	ws       workspace
	binCount int
}

// NewProcessor validates cfg.FFTSize and allocates all buffers and the
// window up front.
func NewProcessor(cfg Config) (*Processor, error) {
	if !bitint.IsPowerOfTwo(cfg.FFTSize) {
		return nil, newError(InvalidArgument, "fft: size must be a power of two, got %d", cfg.FFTSize)
	}

	p := &Processor{}
	p.reallocate(cfg)
	return p, nil
}

func (p *Processor) reallocate(cfg Config) {
	binCount := cfg.FFTSize/2 + 1

	p.cfg = cfg
	p.plan = fourier.NewFFT(cfg.FFTSize)
	p.binCount = binCount
	p.ws = workspace{
		input:     make([]float64, cfg.FFTSize),
		fftOutput: make([]complex128, binCount),
		window:    make([]float64, cfg.FFTSize),
	}
	computeWindow(p.ws.window, cfg.Window)
}

// SetConfig applies cfg. Buffers and the plan are only rebuilt when
// FFTSize changes; the window is always recomputed.
func (p *Processor) SetConfig(cfg Config) error {
	if !bitint.IsPowerOfTwo(cfg.FFTSize) {
		return newError(InvalidArgument, "fft: size must be a power of two, got %d", cfg.FFTSize)
	}
	if cfg.FFTSize != p.cfg.FFTSize {
		p.reallocate(cfg)
		return nil
	}
	p.cfg = cfg
	computeWindow(p.ws.window, cfg.Window)
	return nil
}

// FFTSize returns the configured transform length.
func (p *Processor) FFTSize() int { return p.cfg.FFTSize }

// BinCount returns fft_size/2 + 1, the number of independent real-transform bins.
func (p *Processor) BinCount() int { return p.binCount }

// computeWindow fills coeffs (length N) per the formulas in spec §4.2, using
// x = i/(N-1). A single-sample window is defined as an all-ones coefficient
// to avoid a division by zero.
func computeWindow(coeffs []float64, w Window) {
	n := len(coeffs)
	if n == 1 {
		coeffs[0] = 1
		return
	}
	denom := float64(n - 1)
	for i := range coeffs {
		x := float64(i) / denom
		switch w {
		case Rectangular:
			coeffs[i] = 1
		case Hann:
			coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*x))
		case Hamming:
			coeffs[i] = 0.54 - 0.46*math.Cos(2*math.Pi*x)
		case Blackman:
			coeffs[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
		case FlatTop:
			coeffs[i] = 0.21557895 -
				0.41663158*math.Cos(2*math.Pi*x) +
				0.277263158*math.Cos(4*math.Pi*x) -
				0.083578947*math.Cos(6*math.Pi*x) +
				0.006947368*math.Cos(8*math.Pi*x)
		default:
			coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*x))
		}
	}
}

// Compute windows samples (right-aligned: the most recent min(len(samples),
// FFTSize) samples are used, the head is zero-padded), runs the forward
// transform, and writes BinCount() normalized magnitudes into out. It
// returns BinCount(). out must have length >= BinCount(); that is a
// programmer error, not a runtime failure.
func (p *Processor) Compute(samples []float64, out []float64) int {
	n := p.cfg.FFTSize
	copyCount := len(samples)
	if copyCount > n {
		copyCount = n
	}
	offset := n - copyCount

	for i := 0; i < offset; i++ {
		p.ws.input[i] = 0
	}
	tail := samples[len(samples)-copyCount:]
	for i, s := range tail {
		p.ws.input[offset+i] = s * p.ws.window[offset+i]
	}

	p.plan.Coefficients(p.ws.fftOutput, p.ws.input)

	scale := 2.0 / float64(n)
	last := p.binCount - 1
	for i := 0; i < p.binCount; i++ {
		c := p.ws.fftOutput[i]
		mag := math.Hypot(real(c), imag(c)) * scale
		if i == 0 || i == last {
			mag *= 0.5
		}

		if p.cfg.UseMagnitudeDB {
			db := 20 * math.Log10(mag+1e-10)
			if db < p.cfg.DBFloor {
				db = p.cfg.DBFloor
			}
			if db > p.cfg.DBCeiling {
				db = p.cfg.DBCeiling
			}
			out[i] = (db - p.cfg.DBFloor) / (p.cfg.DBCeiling - p.cfg.DBFloor)
		} else {
			out[i] = mag
		}
	}

	return p.binCount
}

// BinToFrequency returns the center frequency in Hz of bin i for the given
// sample rate.
func (p *Processor) BinToFrequency(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(p.cfg.FFTSize)
}

// FrequencyToBin returns the bin index closest to f, clamped to
// [0, BinCount()-1].
func (p *Processor) FrequencyToBin(f, sampleRate float64) int {
	bin := int(math.Round(f * float64(p.cfg.FFTSize) / sampleRate))
	if bin < 0 {
		return 0
	}
	if bin > p.binCount-1 {
		return p.binCount - 1
	}
	return bin
}
