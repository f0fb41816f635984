// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"

	"spectra/internal/analyzer"
	applog "spectra/internal/log"
)

const defaultPublishInterval = 16 * time.Millisecond // ~60Hz

/*
Packet layout (BigEndian):

	Sequence Number   uint32      4 bytes
	Timestamp         int64       8 bytes  (UnixNano)
	Band Count        uint16      2 bytes
	Magnitudes        []float32   4*N bytes
	Peaks             []float32   4*N bytes
*/
type Publisher struct {
	sender   *Sender
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32
	f32Scratch  []float32
	packetBuf   *bytes.Buffer
}

// NewPublisher creates a Publisher that periodically pulls a frame via
// the fetch function passed to Start and sends it through sender. An
// interval <= 0 defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender *Sender) *Publisher {
	if interval <= 0 {
		interval = defaultPublishInterval
		applog.Warnf("udp: invalid publish interval, defaulting to %s", interval)
	}
	return &Publisher{
		sender:    sender,
		interval:  interval,
		packetBuf: new(bytes.Buffer),
	}
}

// Start launches a goroutine that calls fetch and sends its result on
// every tick, until Stop is called. Safe to call once per Start/Stop
// cycle; a call while already running is a no-op.
func (p *Publisher) Start(fetch func() analyzer.SpectrumData) {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp: publisher Start called but already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	done := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("udp: publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSend(fetch())
			case <-done:
				applog.Infof("udp: publisher received stop signal")
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to exit and waits for it. Idempotent.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Publisher) buildAndSend(data analyzer.SpectrumData) {
	n := len(data.Magnitudes)
	if cap(p.f32Scratch) < 2*n {
		p.f32Scratch = make([]float32, 2*n)
	}
	buf := p.f32Scratch[:2*n]
	for i, v := range data.Magnitudes {
		buf[i] = float32(v)
	}
	for i, v := range data.Peaks {
		buf[n+i] = float32(v)
	}

	p.sequenceNum++
	p.packetBuf.Reset()

	err := binary.Write(p.packetBuf, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, data.Timestamp.UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, uint16(n))
	}
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, buf)
	}
	if err != nil {
		applog.Errorf("udp: pack packet %d: %v", p.sequenceNum, err)
		return
	}

	if err := p.sender.Send(p.packetBuf.Bytes()); err != nil {
		applog.Debugf("udp: send packet %d failed: %v", p.sequenceNum, err)
		return
	}
	applog.Debugf("udp: sent packet %d (%d bytes)", p.sequenceNum, p.packetBuf.Len())
}

// Close stops the publisher.
func (p *Publisher) Close() error { return p.Stop() }
