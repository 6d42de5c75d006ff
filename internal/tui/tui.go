// internal/tui/tui.go

// Package tui implements the full-screen keyboard-driven front end:
// folder and preset panels, a preview of the pending job, and a
// blocking conversion state with a spinner. The bubbletea model is the
// state machine, so every transition is testable by feeding key
// messages to Update without a terminal.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"frogmpeg/internal/command"
	"frogmpeg/internal/config"
	"frogmpeg/internal/runner"
	"frogmpeg/internal/scanner"
	"frogmpeg/internal/ui"
)

type state int

const (
	stateBrowsing state = iota
	statePresets
	stateConverting
	stateDone
)

type convertDoneMsg struct {
	job    command.Job
	result runner.Result
	err    error
}

// Model is the interactive front end state machine.
type Model struct {
	cfg    *config.Config
	runner *runner.Runner
	styles ui.Styles

	state     state
	folders   []scanner.Folder
	presets   []config.Preset
	folderIdx int
	presetIdx int

	spinner  spinner.Model
	scanErr  error
	lastJob  *command.Job
	lastErr  error
	fellBack bool
}

// New builds the initial model: Browsing, with the folder list freshly
// scanned and the first preset highlighted. When auto_select_latest is
// enabled the most recently modified folder starts highlighted.
func New(cfg *config.Config, run *runner.Runner) Model {
	styles := ui.ForTheme(cfg.UI.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Success

	m := Model{
		cfg:     cfg,
		runner:  run,
		styles:  styles,
		state:   stateBrowsing,
		spinner: sp,
		presets: presetList(cfg),
	}
	m.rescan()
	return m
}

// presetList returns the selectable presets, falling back to a single
// synthetic entry built from the defaults when none are configured.
func presetList(cfg *config.Config) []config.Preset {
	if len(cfg.Presets) > 0 {
		return cfg.Presets
	}
	p, _ := cfg.ResolvePreset("")
	return []config.Preset{p}
}

func (m *Model) rescan() {
	folders, err := scanner.Scan(m.cfg.RendersFolder, m.cfg.Defaults.FileExtension)
	m.folders = folders
	m.scanErr = err
	if len(m.folders) == 0 {
		m.folderIdx = 0
		return
	}
	if m.cfg.UI.AutoSelectLatest {
		m.folderIdx = scanner.Latest(m.folders)
	} else if m.folderIdx >= len(m.folders) {
		m.folderIdx = len(m.folders) - 1
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case convertDoneMsg:
		m.state = stateDone
		m.lastJob = &msg.job
		m.lastErr = msg.err
		m.fellBack = msg.err == nil && msg.result.FellBack()
		return m, nil

	case spinner.TickMsg:
		if m.state == stateConverting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works from every state. During a conversion the child
	// process is not killed; it runs to completion after the screen
	// is restored.
	if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
		return m, tea.Quit
	}

	switch m.state {
	case stateConverting:
		// Input is limited to quit while a job runs.
		return m, nil

	case stateDone:
		// Any key returns to browsing.
		m.state = stateBrowsing
		return m, nil
	}

	// Browsing / preset selection.
	switch msg.String() {
	case "tab":
		if m.state == stateBrowsing {
			m.state = statePresets
		} else {
			m.state = stateBrowsing
		}

	case "up", "k":
		if m.state == stateBrowsing {
			m.folderIdx = clamp(m.folderIdx-1, len(m.folders))
		} else {
			m.presetIdx = clamp(m.presetIdx-1, len(m.presets))
		}

	case "down", "j":
		if m.state == stateBrowsing {
			m.folderIdx = clamp(m.folderIdx+1, len(m.folders))
		} else {
			m.presetIdx = clamp(m.presetIdx+1, len(m.presets))
		}

	case "r":
		m.rescan()

	case "s":
		if len(m.folders) == 0 {
			return m, nil
		}
		m.state = stateConverting
		return m, tea.Batch(m.spinner.Tick, m.startConversion())
	}

	return m, nil
}

// clamp keeps an index inside [0, n); indices clamp at list ends
// rather than wrapping.
func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// startConversion plans and runs the selected job. The returned
// command blocks in bubbletea's goroutine until the encoder exits, so
// the UI keeps repainting the spinner while exactly one job runs.
func (m Model) startConversion() tea.Cmd {
	cfg := m.cfg
	run := m.runner
	folder := m.folders[m.folderIdx]
	preset := m.presets[m.presetIdx]

	return func() tea.Msg {
		seq, err := scanner.DetectSequence(folder.Path, cfg.Defaults.FileExtension)
		if err != nil {
			return convertDoneMsg{err: err}
		}
		if cfg.AutoCreateOutput {
			if err := os.MkdirAll(cfg.OutputFolder, 0o755); err != nil {
				return convertDoneMsg{err: fmt.Errorf("creating output folder: %v", err)}
			}
		}
		out := command.OutputPath(cfg.OutputFolder, folder.Name, func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		})
		job := command.NewJob(cfg, folder.Name, seq, preset, out)
		result, err := run.Run(job)
		return convertDoneMsg{job: job, result: result, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("🐸 FrogMPEG · " + m.cfg.ProjectName))
	b.WriteString("\n")

	switch m.state {
	case stateConverting:
		folder := m.folders[m.folderIdx]
		preset := m.presets[m.presetIdx]
		b.WriteString(fmt.Sprintf("\n%s Converting %s with preset %s...\n",
			m.spinner.View(), folder.Name, preset.Name))
		b.WriteString(m.styles.Subtle.Render("Only q quits while the encoder runs."))
		return b.String()

	case stateDone:
		if m.lastErr != nil {
			b.WriteString(m.styles.Error.Render("Conversion failed") + "\n\n")
			b.WriteString(m.lastErr.Error() + "\n")
		} else {
			b.WriteString(m.styles.Success.Render("Ribbiting success!") + "\n\n")
			b.WriteString("Saved to " + m.lastJob.OutputPath + "\n")
			if fi, err := os.Stat(m.lastJob.OutputPath); err == nil {
				b.WriteString(m.styles.Subtle.Render(ui.FormatFileSize(fi.Size())) + "\n")
			}
			if m.fellBack {
				b.WriteString(m.styles.Subtle.Render("NVENC failed; encoded with libx264 instead.") + "\n")
			}
		}
		b.WriteString("\n" + m.styles.Subtle.Render("Press any key to return."))
		return b.String()
	}

	left := m.foldersPanel()
	right := m.presetsPanel()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(m.previewPanel())
	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render("[S] Start  [Tab] Switch  [↑↓] Navigate  [R] Refresh  [Q] Quit"))
	return b.String()
}

func (m Model) foldersPanel() string {
	var rows []string
	if m.scanErr != nil {
		rows = append(rows, m.styles.Error.Render(m.scanErr.Error()))
	} else if len(m.folders) == 0 {
		rows = append(rows, m.styles.Subtle.Render("No sequence folders found"))
	}
	for i, f := range m.folders {
		line := f.Name
		if m.cfg.UI.ShowFileCount {
			line = fmt.Sprintf("%-20s %5d  %s", f.Name, f.FrameCount, f.ModTime.Format("2006-01-02 15:04"))
		}
		if i == m.folderIdx {
			line = m.styles.Highlight.Render("► " + line)
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	panel := m.styles.PanelDim
	title := "Folders"
	if m.state == stateBrowsing {
		panel = m.styles.Panel
		title = "Folders (↑↓)"
	}
	return panel.Render(m.styles.Prompt.Render(title) + "\n" + strings.Join(rows, "\n"))
}

func (m Model) presetsPanel() string {
	var rows []string
	for i, p := range m.presets {
		line := fmt.Sprintf("%-14s %s@%dfps %s", p.Name, p.Resolution, p.FPS, p.Bitrate)
		if i == m.presetIdx {
			line = m.styles.Highlight.Render("► " + line)
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	panel := m.styles.PanelDim
	title := "Presets"
	if m.state == statePresets {
		panel = m.styles.Panel
		title = "Presets (↑↓)"
	}
	return panel.Render(m.styles.Prompt.Render(title) + "\n" + strings.Join(rows, "\n"))
}

func (m Model) previewPanel() string {
	preset := m.presets[m.presetIdx]
	var rows []string
	if len(m.folders) > 0 {
		folder := m.folders[m.folderIdx]
		rows = append(rows,
			fmt.Sprintf("Folder:     %s", folder.Name),
			fmt.Sprintf("Frames:     %d", folder.FrameCount),
			fmt.Sprintf("Duration:   ~%s (%d fps)", ui.FormatDuration(ui.EstimateDuration(folder.FrameCount, preset.FPS)), preset.FPS),
		)
	}
	rows = append(rows,
		fmt.Sprintf("Resolution: %s", preset.Resolution),
		fmt.Sprintf("Bitrate:    %s", preset.Bitrate),
	)
	gpu := "CPU encoding (libx264)"
	if m.cfg.Encoding.UseGPU {
		gpu = "⚡ NVENC with libx264 fallback"
	}
	rows = append(rows, "Encoder:    "+gpu)
	return m.styles.PanelDim.Render(m.styles.Prompt.Render("Preview") + "\n" + strings.Join(rows, "\n"))
}

// Run launches the front end in the alternate screen and blocks until
// the user quits.
func Run(cfg *config.Config) error {
	if err := cfg.CheckEncoder(); err != nil {
		return err
	}
	m := New(cfg, runner.New(cfg.FFmpegPath))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %v", err)
	}
	return nil
}
