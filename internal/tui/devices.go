// SPDX-License-Identifier: MIT
// Package tui renders an interactive driver/device picker over the radio
// adapter's enumeration, for operators who'd rather browse what SoapySDR
// sees than pass --driver blind.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sdrwatch/internal/radio"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// DeviceListModel is the Bubble Tea model for browsing enumerated radio
// devices and picking one to use as the selected driver identifier.
type DeviceListModel struct {
	driver        radio.Driver
	devices       []radio.DeviceInfo
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error

	// Chosen is set to the picked device's Driver key when the user
	// confirms a selection with enter; it remains empty if the user quits
	// without picking one.
	Chosen string
}

type devicesMsg struct{ devices []radio.DeviceInfo }
type errMsg struct{ err error }

// NewDeviceListModel returns a model that enumerates devices through
// driver when started.
func NewDeviceListModel(driver radio.Driver) DeviceListModel {
	return DeviceListModel{driver: driver}
}

func (m DeviceListModel) Init() tea.Cmd {
	return m.fetchDevices
}

func (m DeviceListModel) fetchDevices() tea.Msg {
	devices, err := radio.ListDevices(m.driver)
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.viewport.SetContent(m.renderDevices())
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
				m.viewport.SetContent(m.renderDevices())
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.devices) > 0 {
				m.Chosen = m.devices[m.selectedIndex].Driver
				return m, tea.Quit
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}

	title := titleStyle.Render("Radio Devices")
	help := infoStyle.Render("↑/↓: Navigate • Enter: Select • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceListModel) renderDevices() string {
	var sb strings.Builder

	if len(m.devices) == 0 {
		return "No radio devices found."
	}

	for i, dev := range m.devices {
		line := fmt.Sprintf("[%s] %s\n", dev.Driver, dev.Label)
		var args []string
		for k, v := range dev.Args {
			args = append(args, fmt.Sprintf("%s=%s", k, v))
		}
		if len(args) > 0 {
			line += "    " + strings.Join(args, ", ") + "\n"
		}

		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// Run launches the device picker over driver and returns the chosen
// driver identifier, or an empty string if the user quit without picking
// one.
func Run(driver radio.Driver) (string, error) {
	m := NewDeviceListModel(driver)
	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return "", err
	}
	final := result.(DeviceListModel)
	return final.Chosen, nil
}
