// Package tui provides a terminal user interface for noteseq
package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/seqforge/noteseq/pkg/converter"
	"github.com/seqforge/noteseq/pkg/midifile"
	"github.com/seqforge/noteseq/pkg/pianoroll"
	"github.com/seqforge/noteseq/pkg/sequence"
)

var (
	ivoryWhite = lipgloss.Color("#F8F8F0")
	keyGold    = lipgloss.Color("#FFD75F")
	feltGreen  = lipgloss.Color("#5FD787")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(keyGold).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(ivoryWhite).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(keyGold).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(feltGreen).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(feltGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(keyGold).
			Padding(1, 2)

	// One color per pianoroll voice.
	voiceStyles = [pianoroll.NumVoices]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")),
		lipgloss.NewStyle().Foreground(feltGreen),
		lipgloss.NewStyle().Foreground(keyGold),
	}

	gridDotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// Conversion modes offered by the menu.
type mode int

const (
	modeMidiToSeq mode = iota
	modeSeqToMidi
	modeMidiToRoll
	modeExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Mode        mode
	Extensions  []string
}

var menuItems = []MenuItem{
	{Title: "MIDI → Sequence", Description: "Convert a MIDI file to a NoteSequence JSON document", Mode: modeMidiToSeq, Extensions: []string{".mid", ".midi"}},
	{Title: "Sequence → MIDI", Description: "Export a NoteSequence JSON document as a MIDI file", Mode: modeSeqToMidi, Extensions: []string{".json"}},
	{Title: "MIDI → Pianoroll", Description: "Preview a MIDI file as a step/pitch/voice grid", Mode: modeMidiToRoll, Extensions: []string{".mid", ".midi"}},
	{Title: "Exit", Description: "Exit the application", Mode: modeExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	preview      string
	conversion   MenuItem
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	preview    string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".json"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(keyGold)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.preview = msg.preview
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		item := menuItems[m.menuIndex]
		if item.Mode == modeExit {
			return m, tea.Quit
		}
		m.conversion = item
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = item.Extensions
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.preview = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	selected := m.selectedFile
	conversion := m.conversion
	return func() tea.Msg {
		switch conversion.Mode {
		case modeMidiToSeq:
			return convertMidiToSeq(selected)
		case modeSeqToMidi:
			return convertSeqToMidi(selected)
		case modeMidiToRoll:
			return previewRoll(selected)
		}
		return conversionDoneMsg{err: fmt.Errorf("unknown conversion")}
	}
}

func convertMidiToSeq(path string) tea.Msg {
	f, err := midifile.ParseFile(path)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	data, err := json.MarshalIndent(ns, "", "  ")
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	output := replaceExt(path, ".json")
	if err := os.WriteFile(output, data, 0644); err != nil {
		return conversionDoneMsg{err: err}
	}
	return conversionDoneMsg{outputFile: output}
}

func convertSeqToMidi(path string) tea.Msg {
	data, err := os.ReadFile(path)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	var ns sequence.NoteSequence
	if err := json.Unmarshal(data, &ns); err != nil {
		return conversionDoneMsg{err: err}
	}
	f, err := converter.SequenceToMidi(&ns)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	output := replaceExt(path, ".mid")
	if err := midifile.WriteFile(f, output); err != nil {
		return conversionDoneMsg{err: err}
	}
	return conversionDoneMsg{outputFile: output}
}

func previewRoll(path string) tea.Msg {
	f, err := midifile.ParseFile(path)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	quantized, err := ns.Quantize(4)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	roll, err := pianoroll.FromSequence(quantized, quantized.TotalQuantizedSteps)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	return conversionDoneMsg{preview: renderRoll(roll)}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// renderRoll draws the roll as a pitch-by-step grid, one row per pitch
// from high to low, colored per voice. Wide rolls are truncated to the
// first 64 steps.
func renderRoll(roll pianoroll.Roll) string {
	const maxCols = 64
	noteNames := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

	cols := roll.Steps()
	truncated := false
	if cols > maxCols {
		cols = maxCols
		truncated = true
	}

	var s strings.Builder
	for p := pianoroll.NumPitches - 1; p >= 0; p-- {
		pitch := p + pianoroll.MinPitch
		s.WriteString(fmt.Sprintf("%2s%d ", noteNames[pitch%12], pitch/12))
		for step := 0; step < cols; step++ {
			voice := -1
			for v := 0; v < pianoroll.NumVoices; v++ {
				if roll[step][p][v] != 0 {
					voice = v
					break
				}
			}
			if voice < 0 {
				s.WriteString(gridDotStyle.Render("·"))
			} else {
				s.WriteString(voiceStyles[voice].Render("●"))
			}
		}
		s.WriteString("\n")
	}
	if truncated {
		s.WriteString(helpStyle.Render(fmt.Sprintf("(showing %d of %d steps)", cols, roll.Steps())))
		s.WriteString("\n")
	}
	return s.String()
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT CONVERSION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(feltGreen).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT FILE — %s ", strings.ToUpper(m.conversion.Title))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.conversion.Title)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	case m.preview != "":
		s.WriteString(titleStyle.Render(" PIANOROLL "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input: %s\n\n", filepath.Base(m.selectedFile)))
		s.WriteString(m.preview)
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   _   _  ___ _____ _____ ____  _____ ___
  | \ | |/ _ \_   _| ____/ ___|| ____/ _ \
  |  \| | | | || | |  _| \___ \|  _|| | | |
  | |\  | |_| || | | |___ ___) | |__| |_| |
  |_| \_|\___/ |_| |_____|____/|_____\__\_\
`
	return lipgloss.NewStyle().Foreground(keyGold).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
