// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"spectra/cmd"
	"spectra/internal/analyzer"
	"spectra/internal/build"
	"spectra/internal/capture"
	"spectra/internal/config"
	applog "spectra/internal/log"
	"spectra/internal/transport"
	"spectra/internal/transport/udp"
	"spectra/internal/tui"
)

const updateInterval = 16 * time.Millisecond // ~60Hz visualization tick

// main is the entry point for the spectrum analyzer. The program flow is
// divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments / config file
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start audio capture
//   - Run the analyzer update loop
//   - Feed the configured output sink
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Fatalf("build: %v", err)
	}

	// One thread for the analyzer's hot path, one for I/O and rendering.
	runtime.GOMAXPROCS(2)

	args, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	cfg := args.Config

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if args.Command == "list" {
		if err := executeCommand(args.Command); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	an, err := analyzer.New(cfg.Audio, cfg.FFT, cfg.Analyzer)
	if err != nil {
		applog.Fatalf("analyzer: %v", err)
	}

	// CRITICAL: Start triggers the audio backend to begin invoking the
	// real-time capture callback, marking the start of the hot path.
	if err := an.Start(); err != nil {
		applog.Fatalf("capture: %v", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	holder := &frameHolder{}
	stopUpdates := make(chan struct{})
	var wg sync.WaitGroup

	sink, err := newSink(cfg.Transport)
	if err != nil {
		applog.Fatalf("transport: %v", err)
	}

	var publisher *udp.Publisher
	if cfg.Transport.Sink == "udp" {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("udp: %v", err)
		}
		publisher = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender)
		publisher.Start(func() analyzer.SpectrumData {
			data, _ := holder.Load()
			return data
		})
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(updateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				data := an.Update()
				holder.Store(data)
				if sink != nil {
					if err := sink.Send(data); err != nil {
						applog.Debugf("transport: send failed: %v", err)
					}
				}
			case <-stopUpdates:
				return
			}
		}
	}()

	if cfg.Transport.Sink == "tui" {
		fmt.Printf("%s: starting TUI. Press q to quit.\n", build.GetBuildFlags().Name)
		if err := tui.StartSpectrumUI(holder.Load); err != nil {
			applog.Errorf("tui: %v", err)
		}
	} else {
		fmt.Printf("%s: running with sink %q, Ctrl-C to quit.\n", build.GetBuildFlags().Name, cfg.Transport.Sink)
		<-done
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	close(stopUpdates)
	wg.Wait()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			applog.Errorf("udp: close publisher: %v", err)
		}
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			applog.Errorf("transport: close sink: %v", err)
		}
	}
	if err := an.Close(); err != nil {
		applog.Errorf("analyzer: close: %v", err)
	}
}

// frameHolder bridges the update loop (producer) to consumers that pull
// frames on their own schedule (the TUI render loop, the UDP publisher).
type frameHolder struct {
	mu    sync.RWMutex
	data  analyzer.SpectrumData
	ready bool
}

func (h *frameHolder) Store(data analyzer.SpectrumData) {
	h.mu.Lock()
	h.data = data
	h.ready = true
	h.mu.Unlock()
}

func (h *frameHolder) Load() (analyzer.SpectrumData, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data, h.ready
}

// newSink builds the push-based transport.Sink for the configured
// transport, if any. The "tui" and "udp" sinks pull frames instead and
// are wired up separately in main.
func newSink(cfg config.TransportConfig) (transport.Sink, error) {
	switch cfg.Sink {
	case "log":
		return transport.NewLoggingSink(), nil
	case "websocket":
		return transport.NewWebSocketSink(cfg.WebSocketAddress, cfg.WebSocketMinGap), nil
	case "tui", "udp":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}

// executeCommand handles one-off commands that don't require the
// analyzer to be running, such as listing available audio devices.
func executeCommand(command string) error {
	switch command {
	case "list":
		devices, err := capture.ListInputDevices()
		if err != nil {
			return fmt.Errorf("list devices: %w", err)
		}
		if len(devices) == 0 {
			fmt.Println("No input devices found.")
			return nil
		}
		for _, d := range devices {
			fmt.Printf("[%d] %s (channels=%d, default rate=%.0f Hz)\n",
				d.ID, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
