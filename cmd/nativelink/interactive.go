package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/linker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func render(styled bool, s lipgloss.Style, text string) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

// formatArgv renders argv one argument per line, options highlighted.
func formatArgv(styled bool, argv []string) string {
	var b strings.Builder
	for i, arg := range argv {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  ")
		if strings.HasPrefix(arg, "-") {
			b.WriteString(render(styled, flagStyle, arg))
		} else {
			b.WriteString(arg)
		}
	}
	return b.String()
}

type interactiveModel struct {
	ctx     context.Context
	linker  *linker.Linker
	backend string
	cc      nativelink.StaticContext
	opts    nativelink.LinkerOptions
	plan    nativelink.Invocation
	planErr error
	result  *nativelink.Result
	linkErr error
	input   textinput.Model
	spinner spinner.Model
	linking bool
}

type linkResultMsg struct {
	err    error
	result nativelink.Result
}

func newInteractiveModel(ctx context.Context, l *linker.Linker, backendName string, cfg config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "library name"
	ti.Prompt = "-l "
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = flagStyle

	m := &interactiveModel{
		ctx:     ctx,
		linker:  l,
		backend: backendName,
		cc:      cfg.context(),
		opts:    cfg.linkerOptions(),
		input:   ti,
		spinner: sp,
	}
	m.replan()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) replan() {
	m.plan, m.planErr = m.linker.Plan(m.cc, m.opts)
}

// setLibraries replaces the library list without touching slices a
// running link may still read.
func (m *interactiveModel) setLibraries(libs []string) {
	m.opts = nativelink.LinkerOptions{LibraryDirs: m.opts.LibraryDirs, Libraries: libs}
	m.replan()
}

func (m *interactiveModel) link(inv nativelink.Invocation) tea.Cmd {
	ctx, l := m.ctx, m.linker
	return func() tea.Msg {
		res, err := l.Run(ctx, inv)
		return linkResultMsg{result: res, err: err}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			lib := strings.TrimSpace(m.input.Value())
			if lib != "" {
				libs := append(append([]string(nil), m.opts.Libraries...), lib)
				m.setLibraries(libs)
				m.input.Reset()
			}
			return m, nil

		case "ctrl+d":
			if n := len(m.opts.Libraries); n > 0 {
				m.setLibraries(append([]string(nil), m.opts.Libraries[:n-1]...))
			}
			return m, nil

		case "ctrl+l":
			if m.linking || m.planErr != nil {
				return m, nil
			}
			m.linking = true
			m.result = nil
			m.linkErr = nil
			return m, tea.Batch(m.spinner.Tick, m.link(m.plan.Clone()))
		}

	case spinner.TickMsg:
		if !m.linking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case linkResultMsg:
		m.linking = false
		m.linkErr = msg.err
		if msg.err == nil {
			res := msg.result
			m.result = &res
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Native Link"))
	b.WriteString(" ")
	b.WriteString(m.cc.Output)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "target:    %s\n", m.cc.Triple)
	fmt.Fprintf(&b, "backend:   %s\n", m.backend)
	fmt.Fprintf(&b, "libraries: %s\n\n", strings.Join(m.opts.Libraries, " "))

	if m.planErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.planErr)))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "strategy:  %s (flavor %s)\n", m.plan.Strategy, m.plan.Flavor)
		fmt.Fprintf(&b, "output:    %s\n", outputStyle.Render(m.plan.Output))
		for _, dir := range m.plan.Omitted {
			b.WriteString(warnStyle.Render("warning: " + dir + " not found, omitted"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(formatArgv(true, m.plan.Argv()))
		b.WriteString("\n\n")
	}

	switch {
	case m.linking:
		b.WriteString(m.spinner.View())
		b.WriteString(" linking...\n\n")
	case m.linkErr != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.linkErr)))
		b.WriteString("\n\n")
	case m.result != nil && m.result.Success:
		b.WriteString(resultStyle.Render("linked " + m.result.Output))
		b.WriteString("\n\n")
	case m.result != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("link failed (exit %d)", m.result.ExitCode)))
		b.WriteString("\n")
		if m.result.Diagnostics != "" {
			b.WriteString(strings.TrimRight(m.result.Diagnostics, "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter add library • ctrl+d drop last • ctrl+l link • esc quit"))

	return b.String()
}

func runInteractive(ctx context.Context, cfg config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	b, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	l := linker.New(b, linker.Options{Strategy: cfg.strategy})
	p := tea.NewProgram(newInteractiveModel(ctx, l, b.Name(), cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
