package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cudaruntime "github.com/accelkit/cuda-runtime"
	"github.com/accelkit/cuda-runtime/cuctx"
	"github.com/accelkit/cuda-runtime/device"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#76B900")).
			Padding(0, 1)

	settingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#76B900"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// ctxWorker owns the demo context. The context stack is per OS thread and
// bubbletea runs commands on arbitrary goroutines, so every driver call is
// funneled through one pinned goroutine that keeps the context current.
type ctxWorker struct {
	reqs chan func()
}

func newCtxWorker() *ctxWorker {
	w := &ctxWorker{reqs: make(chan func())}
	go w.loop()
	return w
}

func (w *ctxWorker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for fn := range w.reqs {
		fn()
	}
}

// do runs fn on the worker thread and waits for it.
func (w *ctxWorker) do(fn func() error) error {
	errc := make(chan error, 1)
	w.reqs <- func() { errc <- fn() }
	return <-errc
}

func (w *ctxWorker) close() {
	close(w.reqs)
}

type setting struct {
	name    string
	limit   cuctx.Limit
	isLimit bool // false for the two enumerated configs
}

var settings = []setting{
	{name: "stack size", limit: cuctx.LimitStackSize, isLimit: true},
	{name: "printf FIFO size", limit: cuctx.LimitPrintfFifoSize, isLimit: true},
	{name: "malloc heap size", limit: cuctx.LimitMallocHeapSize, isLimit: true},
	{name: "dev-runtime sync depth", limit: cuctx.LimitDevRuntimeSyncDepth, isLimit: true},
	{name: "dev-runtime pending launches", limit: cuctx.LimitDevRuntimePendingLaunchCount, isLimit: true},
	{name: "max L2 fetch granularity", limit: cuctx.LimitMaxL2FetchGranularity, isLimit: true},
	{name: "cache config", isLimit: false},
	{name: "shared memory banks", isLimit: false},
}

type modelState int

const (
	stateSelect modelState = iota
	stateInput
	stateShowResult
)

type interactiveModel struct {
	err      error
	worker   *ctxWorker
	ctx      *cuctx.Context
	ordinal  int
	header   string
	values   []string
	input    textinput.Model
	result   string
	selected int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	err    error
	ctx    *cuctx.Context
	header string
	values []string
}

type appliedMsg struct {
	err    error
	result string
	values []string
}

func newInteractiveModel(ordinal int) *interactiveModel {
	return &interactiveModel{
		ordinal: ordinal,
		worker:  newCtxWorker(),
		state:   stateSelect,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	var msg loadedMsg
	err := m.worker.do(func() error {
		if err := cudaruntime.Init(cudaruntime.InitDefault); err != nil {
			return err
		}
		dev, err := device.Get(m.ordinal)
		if err != nil {
			return err
		}
		name, err := dev.Name()
		if err != nil {
			return err
		}
		ctx, err := cuctx.CreateAndPush(cuctx.MapHost|cuctx.SchedAuto, dev)
		if err != nil {
			return err
		}
		version, err := ctx.APIVersion()
		if err != nil {
			ctx.Close()
			return err
		}
		msg.ctx = ctx
		msg.header = fmt.Sprintf("%s (device %d, API %s)", name, dev.Ordinal(), version)
		msg.values = readValues()
		return nil
	})
	msg.err = err
	return msg
}

// readValues renders the current value of every setting. Runs on the worker
// thread.
func readValues() []string {
	values := make([]string, len(settings))
	for i, s := range settings {
		switch {
		case s.isLimit:
			v, err := cuctx.GetLimit(s.limit)
			if err != nil {
				values[i] = fmt.Sprintf("error: %v", err)
			} else {
				values[i] = strconv.FormatUint(v, 10)
			}
		case s.name == "cache config":
			cfg, err := cuctx.GetCacheConfig()
			if err != nil {
				values[i] = fmt.Sprintf("error: %v", err)
			} else {
				values[i] = cfg.String()
			}
		default:
			cfg, err := cuctx.GetSharedMemConfig()
			if err != nil {
				values[i] = fmt.Sprintf("error: %v", err)
			} else {
				values[i] = cfg.String()
			}
		}
	}
	return values
}

func (m *interactiveModel) apply(value string) tea.Cmd {
	return func() tea.Msg {
		s := settings[m.selected]
		var msg appliedMsg
		err := m.worker.do(func() error {
			switch {
			case s.isLimit:
				requested, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
				if err != nil {
					return fmt.Errorf("parse %q: %w", value, err)
				}
				if err := cuctx.SetLimit(s.limit, requested); err != nil {
					return err
				}
				granted, err := cuctx.GetLimit(s.limit)
				if err != nil {
					return err
				}
				msg.result = fmt.Sprintf("requested %d, granted %d", requested, granted)
			case s.name == "cache config":
				next, err := nextCacheConfig()
				if err != nil {
					return err
				}
				if err := cuctx.SetCacheConfig(next); err != nil {
					return err
				}
				got, err := cuctx.GetCacheConfig()
				if err != nil {
					return err
				}
				msg.result = fmt.Sprintf("requested %s, driver reports %s", next, got)
			default:
				next, err := nextSharedMemConfig()
				if err != nil {
					return err
				}
				if err := cuctx.SetSharedMemConfig(next); err != nil {
					return err
				}
				got, err := cuctx.GetSharedMemConfig()
				if err != nil {
					return err
				}
				msg.result = fmt.Sprintf("requested %s, driver reports %s", next, got)
			}
			msg.values = readValues()
			return nil
		})
		msg.err = err
		return msg
	}
}

func nextCacheConfig() (cuctx.CacheConfig, error) {
	cur, err := cuctx.GetCacheConfig()
	if err != nil {
		return 0, err
	}
	return (cur + 1) % 4, nil
}

func nextSharedMemConfig() (cuctx.SharedMemConfig, error) {
	cur, err := cuctx.GetSharedMemConfig()
	if err != nil {
		return 0, err
	}
	return (cur + 1) % 3, nil
}

func (m *interactiveModel) shutdown() {
	m.worker.do(func() error {
		if m.ctx != nil {
			m.ctx.Close()
		}
		return nil
	})
	m.worker.close()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInput && msg.String() == "q" {
				break // let the text input consume it
			}
			m.shutdown()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(settings)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if !m.loaded {
					break
				}
				if settings[m.selected].isLimit {
					ti := textinput.New()
					ti.Placeholder = "new value (bytes or count)"
					ti.Prompt = settings[m.selected].name + ": "
					ti.Width = 40
					ti.Focus()
					m.input = ti
					m.state = stateInput
				} else {
					return m, m.apply("")
				}

			case stateInput:
				value := m.input.Value()
				m.state = stateShowResult
				return m, m.apply(value)

			case stateShowResult:
				m.state = stateSelect
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInput:
				m.state = stateSelect
			case stateShowResult:
				m.state = stateSelect
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ctx = msg.ctx
		m.header = msg.header
		m.values = msg.values
		m.loaded = true

	case appliedMsg:
		m.result = msg.result
		m.err = msg.err
		if msg.values != nil {
			m.values = msg.values
		}
		m.state = stateShowResult
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if !m.loaded {
		return "Creating context..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("CUDA Context Inspector"))
	b.WriteString(" ")
	b.WriteString(m.header)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		b.WriteString("Current context configuration:\n\n")
		for i, s := range settings {
			line := settingStyle.Render(s.name) + " = " + valueStyle.Render(m.values[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter change • q quit"))

	case stateInput:
		b.WriteString(fmt.Sprintf("Set %s\n\n", settingStyle.Render(settings[m.selected].name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result for %s:\n\n", settingStyle.Render(settings[m.selected].name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(ordinal int) error {
	p := tea.NewProgram(newInteractiveModel(ordinal), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
