// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spectra/internal/analyzer"
)

var barChars = []rune{' ', '░', '▒', '▓', '█'}

var (
	peakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
)

// FrameMsg carries one analyzer frame into the Bubble Tea update loop.
type FrameMsg analyzer.SpectrumData

// SpectrumModel renders a bar-per-band view of the most recent
// SpectrumData frame, with a one-row peak-hold marker above each bar.
type SpectrumModel struct {
	width, height int
	frame         analyzer.SpectrumData
	fetch         func() (analyzer.SpectrumData, bool)
	err           error
}

// NewSpectrumModel creates a model that polls fetch on every tick. fetch
// returns ok=false when no frame is available yet.
func NewSpectrumModel(fetch func() (analyzer.SpectrumData, bool)) SpectrumModel {
	return SpectrumModel{fetch: fetch, width: 80, height: 24}
}

func (m SpectrumModel) Init() tea.Cmd {
	return m.poll()
}

type pollTickMsg struct{}

func (m SpectrumModel) poll() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case pollTickMsg:
		if data, ok := m.fetch(); ok {
			m.frame = data
		}
		return m, m.poll()
	}
	return m, nil
}

func (m SpectrumModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	bands := len(m.frame.Magnitudes)
	if bands == 0 {
		return "Waiting for audio...\n"
	}

	height := m.height - 3
	if height < 1 {
		height = 1
	}

	var out strings.Builder
	for row := 0; row < height; row++ {
		rowFromBottom := height - 1 - row
		for band := 0; band < bands; band++ {
			level := clampUnit(m.frame.Magnitudes[band])
			fill := level*float64(height) - float64(rowFromBottom)

			peakLevel := clampUnit(m.frame.Peaks[band])
			peakRow := height - 1 - int(peakLevel*float64(height-1))

			switch {
			case row == peakRow && peakLevel > 0.02:
				out.WriteString(peakStyle.Render("▀"))
			case fill >= 0.95:
				out.WriteString(levelStyle.Render(string(barChars[len(barChars)-1])))
			case fill > 0:
				idx := int(fill * float64(len(barChars)-1))
				if idx >= len(barChars) {
					idx = len(barChars) - 1
				}
				out.WriteString(levelStyle.Render(string(barChars[idx])))
			default:
				out.WriteRune(' ')
			}
		}
		out.WriteByte('\n')
	}

	out.WriteString(fmt.Sprintf("RMS %.3f  Peak %.3f  q: quit\n", m.frame.RMSLevel, m.frame.PeakLevel))
	return out.String()
}

// clampUnit clamps a magnitude/peak value to [0, 1]. Values already come out
// of the analyzer in that range; this only guards against a slightly
// over/undershooting float from smoothing or an unclamped custom dB config.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// StartSpectrumUI launches the Bubble Tea TUI for the real-time spectrum
// view. fetch is called on every tick to obtain the latest frame.
func StartSpectrumUI(fetch func() (analyzer.SpectrumData, bool)) error {
	p := tea.NewProgram(NewSpectrumModel(fetch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
