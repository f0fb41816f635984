// SPDX-License-Identifier: MIT
// Package band maps linear FFT bins onto a small number of display bands,
// either logarithmically or linearly spaced across a frequency range.
package band

import "math"

// Range is an inclusive-low, exclusive-high span of FFT bin indices.
type Range struct {
	Lo int
	Hi int
}

// Mapping is an ordered sequence of bin ranges, one per display band.
type Mapping []Range

// Logarithmic builds a mapping with band edges evenly spaced in log10(Hz)
// between minFrequency and maxFrequency.
func Logarithmic(numBands, binCount, fftSize int, sampleRate, minFrequency, maxFrequency float64) Mapping {
	logMin := math.Log10(minFrequency)
	logMax := math.Log10(maxFrequency)
	step := (logMax - logMin) / float64(numBands)

	m := make(Mapping, numBands)
	for i := 0; i < numBands; i++ {
		freqLo := math.Pow(10, logMin+float64(i)*step)
		freqHi := math.Pow(10, logMin+float64(i+1)*step)

		lo := frequencyToBinClamped(freqLo, fftSize, sampleRate, binCount)
		hi := frequencyToBinClamped(freqHi, fftSize, sampleRate, binCount)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > binCount {
			hi = binCount
		}
		m[i] = Range{Lo: lo, Hi: hi}
	}
	return m
}

// Linear splits the bins into numBands contiguous spans of binCount/numBands
// bins each (integer division). The trailing binCount%numBands bins belong
// to no band, and when binCount < numBands every span is empty.
func Linear(numBands, binCount int) Mapping {
	bandWidth := binCount / numBands
	m := make(Mapping, numBands)
	for i := 0; i < numBands; i++ {
		lo := i * bandWidth
		hi := (i + 1) * bandWidth
		if hi > binCount {
			hi = binCount
		}
		m[i] = Range{Lo: lo, Hi: hi}
	}
	return m
}

func frequencyToBinClamped(f float64, fftSize int, sampleRate float64, binCount int) int {
	bin := int(math.Floor(f * float64(fftSize) / sampleRate))
	if bin < 0 {
		return 0
	}
	if bin > binCount-1 {
		return binCount - 1
	}
	return bin
}

// Magnitude returns the arithmetic mean of magnitudes[r.Lo:r.Hi], or 0 if
// the range is empty.
func Magnitude(magnitudes []float64, r Range) float64 {
	if r.Hi <= r.Lo {
		return 0
	}
	sum := 0.0
	for _, v := range magnitudes[r.Lo:r.Hi] {
		sum += v
	}
	return sum / float64(r.Hi-r.Lo)
}
