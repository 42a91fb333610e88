// Package tui provides a terminal viewer for encoded note-sequence tensors
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/noteroll/pkg/converter"
	"github.com/james-see/noteroll/pkg/sequence"
)

var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	hitStyle  = lipgloss.NewStyle().Foreground(acidGreen).Bold(true)
	restStyle = lipgloss.NewStyle().Foreground(darkGray)
	stepStyle = lipgloss.NewStyle().Foreground(silverGray)
	norStyle  = lipgloss.NewStyle().Foreground(acidYellow)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// Model renders an encoded tensor as a scrollable step grid: one line per
// quantized step, one cell per tensor column.
type Model struct {
	title    string
	grid     string
	viewport viewport.Model
	ready    bool
}

// New creates a viewer model for a row-major tensor. markLast styles the
// final column separately (the drum roll's no-hit column).
func New(title string, rows [][]float64, markLast bool) Model {
	return Model{
		title: title,
		grid:  renderGrid(rows, markLast),
	}
}

// Init initializes the viewer model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles terminal events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.grid)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewer
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m Model) headerView() string {
	return titleStyle.Render("noteroll — " + m.title)
}

func (m Model) footerView() string {
	return helpStyle.Render("↑/↓ scroll • q quit")
}

func renderGrid(rows [][]float64, markLast bool) string {
	var b strings.Builder
	for step, row := range rows {
		b.WriteString(stepStyle.Render(fmt.Sprintf("%4d ", step)))
		for col, v := range row {
			cell := "·"
			style := restStyle
			if v > 0.5 {
				cell = "█"
				style = hitStyle
				if markLast && col == len(row)-1 {
					style = norStyle
				}
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Run loads a MIDI file, encodes it with the given converter spec, and shows
// the resulting tensor in an alt-screen viewer.
func Run(path string, spec converter.Spec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	seq, err := sequence.FromSMF(data, sequence.DefaultStepsPerQuarter)
	if err != nil {
		return err
	}
	if spec.Args.StepCount == 0 {
		spec.Args.StepCount = seq.TotalSteps
	}

	conv, err := converter.New(spec)
	if err != nil {
		return err
	}
	enc, err := conv.Encode(seq)
	if err != nil {
		return err
	}

	markLast := spec.Kind == converter.KindDrums || spec.Kind == converter.KindDrumRoll
	m := New(filepath.Base(path), enc.Rows(), markLast)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
