package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quasilyte/ptmod"
)

const refreshRate = time.Second / 30

type keyMap struct {
	PlayStop key.Binding
	Pattern  key.Binding
	Restart  key.Binding
	PrevPos  key.Binding
	NextPos  key.Binding
	RowsUp   key.Binding
	RowsDown key.Binding
	LED      key.Binding
	Model    key.Binding
	Mute     key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayStop, k.PrevPos, k.NextPos, k.Mute, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayStop, k.Pattern, k.Restart},
		{k.PrevPos, k.NextPos, k.RowsUp, k.RowsDown},
		{k.LED, k.Model, k.Mute},
		{k.Faster, k.Slower, k.Help, k.Quit},
	}
}

var keys = keyMap{
	PlayStop: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/stop")),
	Pattern:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pattern")),
	Restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	PrevPos:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev order")),
	NextPos:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next order")),
	RowsUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "rows up")),
	RowsDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "rows down")),
	LED:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "LED filter")),
	Model:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "A500/A1200")),
	Mute:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "mute")),
	Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "tempo up")),
	Slower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "tempo down")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	meterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tickMsg time.Time

type model struct {
	engine   *ptmod.Engine
	logger   *slog.Logger
	filename string
	info     ptmod.SongInfo
	width    int
	help     help.Model

	state   ptmod.Snapshot
	lastErr error
}

func newModel(engine *ptmod.Engine, logger *slog.Logger, filename string, width int) model {
	return model{
		engine:   engine,
		logger:   logger,
		filename: filename,
		info:     engine.SongInfo(),
		width:    width,
		help:     help.New(),
		state:    engine.Snapshot(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.state = m.engine.Snapshot()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.engine.Stop()
			return m, tea.Quit
		}
		if key.Matches(msg, keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.lastErr = m.handleKey(msg)
		if m.lastErr != nil {
			m.logger.Warn("control operation failed", "key", msg.String(), "err", m.lastErr)
		}
		m.state = m.engine.Snapshot()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) error {
	e := m.engine
	s := m.state
	switch {
	case key.Matches(msg, keys.PlayStop):
		if s.Playing {
			e.Stop()
		} else {
			e.Play()
		}
	case key.Matches(msg, keys.Pattern):
		return e.PlayPattern(s.Pattern, 0)
	case key.Matches(msg, keys.Restart):
		e.Restart()
	case key.Matches(msg, keys.PrevPos):
		return e.SetPosition(max(s.Order-1, 0), 0)
	case key.Matches(msg, keys.NextPos):
		return e.SetPosition(min(s.Order+1, s.SongLength-1), 0)
	case key.Matches(msg, keys.RowsUp):
		return e.SetPosition(s.Order, max(s.Row-4, 0))
	case key.Matches(msg, keys.RowsDown):
		return e.SetPosition(s.Order, min(s.Row+4, ptmod.NumRows-1))
	case key.Matches(msg, keys.LED):
		e.SetLEDFilter(!s.LEDFilter)
	case key.Matches(msg, keys.Model):
		if s.FilterModel == ptmod.FilterA500 {
			e.SetFilterModel(ptmod.FilterA1200)
		} else {
			e.SetFilterModel(ptmod.FilterA500)
		}
	case key.Matches(msg, keys.Mute):
		ch := int(msg.String()[0] - '1')
		return e.SetChannelMuted(ch, !s.Channels[ch].Muted)
	case key.Matches(msg, keys.Faster):
		return e.SetTempo(min(s.Tempo+5, 255))
	case key.Matches(msg, keys.Slower):
		return e.SetTempo(max(s.Tempo-5, 32))
	}
	return nil
}

func (m model) View() string {
	s := m.state
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.info.Name))
	b.WriteString(labelStyle.Render("  " + m.filename))
	b.WriteString("\n\n")

	status := "stopped"
	switch {
	case s.Ended:
		status = "song is over"
	case s.Playing:
		status = "playing " + s.PlayMode.String()
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("status"), status)
	fmt.Fprintf(&b, "%s %03d/%03d  %s %02d  %s %02d\n",
		labelStyle.Render("order"), s.Order, s.SongLength,
		labelStyle.Render("pattern"), s.Pattern,
		labelStyle.Render("row"), s.Row)
	fmt.Fprintf(&b, "%s %d  %s %d %s\n",
		labelStyle.Render("speed"), s.Speed,
		labelStyle.Render("tempo"), s.Tempo, s.TempoMode)
	led := "off"
	if s.LEDFilter {
		led = "on"
	}
	fmt.Fprintf(&b, "%s %s  %s %s  %s %.1fs\n",
		labelStyle.Render("filter"), s.FilterModel,
		labelStyle.Render("LED"), led,
		labelStyle.Render("time"), s.Time)

	meterWidth := max(m.width-40, 8)
	var channels strings.Builder
	for i, ch := range s.Channels {
		line := fmt.Sprintf("%d %s %02X %02d ", i+1, ptmod.NoteName(ch.Note), ch.Sample, ch.Volume)
		if ch.Muted {
			channels.WriteString(mutedStyle.Render(line))
		} else {
			channels.WriteString(line)
			if ch.Active {
				channels.WriteString(meterStyle.Render(strings.Repeat("█", ch.Volume*meterWidth/64)))
			}
		}
		if i != len(s.Channels)-1 {
			channels.WriteByte('\n')
		}
	}
	b.WriteString(borderStyle.Render(channels.String()))
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}
