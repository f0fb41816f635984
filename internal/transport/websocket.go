// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"spectra/internal/analyzer"
	applog "spectra/internal/log"
)

// wireFrame is the JSON representation of a SpectrumData frame sent to
// browser clients.
type wireFrame struct {
	Magnitudes []float64 `json:"magnitudes"`
	Peaks      []float64 `json:"peaks"`
	RMSLevel   float64   `json:"rms_level"`
	PeakLevel  float64   `json:"peak_level"`
	TimestampNs int64    `json:"timestamp_ns"`
}

// WebSocketSink broadcasts SpectrumData frames to every connected browser
// client over a single /ws endpoint. Sends are rate-limited so a
// fast-ticking analyzer cannot flood a slow client.
type WebSocketSink struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	broadcast chan wireFrame

	minSendInterval time.Duration
	lastSend        time.Time
}

// NewWebSocketSink starts an HTTP server on addr exposing /ws and begins
// the broadcast loop. minSendInterval of 0 disables rate limiting.
func NewWebSocketSink(addr string, minSendInterval time.Duration) *WebSocketSink {
	s := &WebSocketSink{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:         make(map[*websocket.Conn]bool),
		broadcast:       make(chan wireFrame, 256),
		minSendInterval: minSendInterval,
	}
	s.start()
	return s
}

func (s *WebSocketSink) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		applog.Infof("transport: websocket sink listening on %s", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: websocket server error: %v", err)
		}
	}()

	go s.handleBroadcasts()
}

func (s *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("transport: websocket upgrade error: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	applog.Debugf("transport: client connected, total %d", len(s.clients))

	go func() {
		_, _, err := conn.ReadMessage()
		if err != nil {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			conn.Close()
			applog.Debugf("transport: client disconnected, total %d", len(s.clients))
		}
	}()
}

func (s *WebSocketSink) handleBroadcasts() {
	for frame := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteJSON(frame); err != nil {
				applog.Errorf("transport: error sending to client: %v", err)
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

// Send queues data for broadcast, subject to rate limiting. A send that
// arrives before minSendInterval has elapsed since the last queued send is
// dropped silently, as is one that finds the broadcast channel full.
func (s *WebSocketSink) Send(data analyzer.SpectrumData) error {
	if s.minSendInterval > 0 {
		now := time.Now()
		if now.Sub(s.lastSend) < s.minSendInterval {
			return nil
		}
		s.lastSend = now
	}

	frame := wireFrame{
		Magnitudes:  data.Magnitudes,
		Peaks:       data.Peaks,
		RMSLevel:    data.RMSLevel,
		PeakLevel:   data.PeakLevel,
		TimestampNs: data.Timestamp.UnixNano(),
	}

	select {
	case s.broadcast <- frame:
	default:
	}
	return nil
}

// Close disconnects every client and shuts down the HTTP server.
func (s *WebSocketSink) Close() error {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

var _ Sink = (*WebSocketSink)(nil)
