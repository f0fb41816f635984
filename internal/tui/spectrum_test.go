// SPDX-License-Identifier: MIT
package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"spectra/internal/analyzer"
)

func TestClampUnitClampsToUnitRange(t *testing.T) {
	cases := []struct {
		v    float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
		{1.5, 1},
		{-0.5, 0},
	}
	for _, c := range cases {
		got := clampUnit(c.v)
		if got != c.want {
			t.Errorf("clampUnit(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSpectrumModelViewWithoutFrameShowsWaiting(t *testing.T) {
	m := NewSpectrumModel(func() (analyzer.SpectrumData, bool) { return analyzer.SpectrumData{}, false })
	view := m.View()
	if !strings.Contains(view, "Waiting") {
		t.Errorf("expected waiting message, got %q", view)
	}
}

func TestSpectrumModelUpdatePullsFrameOnTick(t *testing.T) {
	frame := analyzer.SpectrumData{
		Magnitudes: []float64{0.2, 0.8},
		Peaks:      []float64{0.4, 0.9},
		RMSLevel:   0.3,
		PeakLevel:  0.9,
		Timestamp:  time.Now(),
	}
	m := NewSpectrumModel(func() (analyzer.SpectrumData, bool) { return frame, true })
	m.width, m.height = 10, 5

	updated, cmd := m.Update(pollTickMsg{})
	sm := updated.(SpectrumModel)
	if len(sm.frame.Magnitudes) != 2 {
		t.Fatalf("frame not applied: %+v", sm.frame)
	}
	if cmd == nil {
		t.Fatal("expected a follow-up poll command")
	}

	view := sm.View()
	if !strings.Contains(view, "RMS") {
		t.Errorf("expected RMS summary line, got %q", view)
	}
}

func TestSpectrumModelQuitsOnQ(t *testing.T) {
	m := NewSpectrumModel(func() (analyzer.SpectrumData, bool) { return analyzer.SpectrumData{}, false })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestSpectrumModelWindowSizeMsgUpdatesDimensions(t *testing.T) {
	m := NewSpectrumModel(func() (analyzer.SpectrumData, bool) { return analyzer.SpectrumData{}, false })
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	sm := updated.(SpectrumModel)
	if sm.width != 120 || sm.height != 40 {
		t.Errorf("dimensions not applied: %dx%d", sm.width, sm.height)
	}
}
