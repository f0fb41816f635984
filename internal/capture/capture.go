// SPDX-License-Identifier: MIT
/*
Package capture wraps the PortAudio input backend: it opens the default (or
a requested) input device, streams samples into a lock-free ring buffer from
a real-time callback, and exposes atomic capture statistics.

Thread Safety:
  - The callback executes on a PortAudio-owned real-time thread and must
    not allocate or block.
  - Start/Stop/IsRunning/Stats/Buffer are safe to call from any goroutine.
*/
package capture

import (
	"runtime"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"spectra/internal/config"
	"spectra/internal/ring"
)

// Capture owns one open input stream and the ring buffer its callback feeds.
type Capture struct {
	cfg    config.AudioConfig
	device *portaudio.DeviceInfo
	stream *portaudio.Stream

	buffer *ring.Buffer[float32]
	stats  AudioStats

	monoScratch []float32 // reused across callbacks to downmix to mono
	running     atomic.Bool
}

// New acquires the process-wide PortAudio library, resolves the requested
// device, and opens (but does not start) an input stream.
func New(cfg config.AudioConfig) (*Capture, error) {
	if err := acquireLibrary(); err != nil {
		return nil, err
	}

	device, err := inputDeviceInfo(cfg.DeviceID)
	if err != nil {
		releaseLibrary()
		return nil, err
	}

	capacity := int(float32(cfg.SampleRate) * cfg.RingBufferSeconds)
	c := &Capture{
		cfg:         cfg,
		device:      device,
		buffer:      ring.New[float32](capacity),
		monoScratch: make([]float32, cfg.BufferFrames),
	}

	latency := device.DefaultHighInputLatency
	if cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: int(cfg.Channels),
			Latency:  latency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: int(cfg.BufferFrames),
	}

	stream, err := portaudio.OpenStream(params, c.onSamples)
	if err != nil {
		releaseLibrary()
		return nil, newError(ResourceExhausted, err, "capture: open stream failed")
	}
	c.stream = stream

	return c, nil
}

// Start begins streaming. Idempotent.
func (c *Capture) Start() error {
	if c.running.Load() {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		return newError(ResourceExhausted, err, "capture: start stream failed")
	}
	c.running.Store(true)
	return nil
}

// Stop halts streaming. Idempotent; safe to call during teardown.
func (c *Capture) Stop() error {
	if !c.running.Load() {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		return newError(ResourceExhausted, err, "capture: stop stream failed")
	}
	c.running.Store(false)
	return nil
}

// Close stops the stream if running, closes it, and releases the
// process-wide library reference. Safe to call more than once.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	_ = c.Stop()
	err := c.stream.Close()
	c.stream = nil
	if relErr := releaseLibrary(); err == nil {
		err = relErr
	}
	return err
}

// IsRunning reports whether the stream is currently started.
func (c *Capture) IsRunning() bool { return c.running.Load() }

// Stats returns an atomic snapshot of capture activity.
func (c *Capture) Stats() Snapshot { return c.stats.Load() }

// Buffer returns the shared consumer handle to the ring buffer. The
// returned buffer must only be drained by a single consumer goroutine.
func (c *Capture) Buffer() *ring.Buffer[float32] { return c.buffer }

// DeviceName returns the name of the opened input device.
func (c *Capture) DeviceName() string { return c.device.Name }

// onSamples is the real-time callback: no allocation, no blocking.
func (c *Capture) onSamples(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mono := in
	if c.cfg.Channels > 1 {
		mono = c.downmix(in)
	}

	peak := batchPeak(mono)
	c.stats.raisePeak(peak)

	accepted := c.buffer.TryPushSlice(mono)
	if accepted < len(mono) {
		c.stats.addOverrun()
	}

	c.stats.addFramesCaptured(uint64(len(mono)))
	c.stats.incCallbackCount()
}

// downmix averages interleaved channels into monoScratch, reused across
// calls to avoid allocation in the callback.
func (c *Capture) downmix(in []float32) []float32 {
	channels := int(c.cfg.Channels)
	frames := len(in) / channels
	out := c.monoScratch
	if cap(out) < frames {
		out = make([]float32, frames)
		c.monoScratch = out
	}
	out = out[:frames]

	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += in[i*channels+ch]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
