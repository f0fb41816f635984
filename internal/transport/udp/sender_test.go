// SPDX-License-Identifier: MIT
package udp

import (
	"net"
	"testing"
	"time"
)

func listenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSenderSendDeliversBytes(t *testing.T) {
	listener := listenUDP(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	t.Cleanup(func() { sender.Close() })

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	if err := sender.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	listener.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 16)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("got %d bytes, want %d", n, len(payload))
	}
	for i, b := range payload {
		if buf[i] != b {
			t.Errorf("byte %d: got %x, want %x", i, buf[i], b)
		}
	}
}

func TestSenderSendAfterCloseFails(t *testing.T) {
	listener := listenUDP(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := sender.Send([]byte{0x00}); err == nil {
		t.Fatal("expected error sending on closed sender")
	}
}

func TestSenderCloseIsIdempotent(t *testing.T) {
	listener := listenUDP(t)

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNewSenderRejectsUnresolvableAddress(t *testing.T) {
	if _, err := NewSender("not a valid address::::"); err == nil {
		t.Fatal("expected resolve error")
	}
}
