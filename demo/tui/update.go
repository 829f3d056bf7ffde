package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case HealthMsg:
		return m.handleHealth(msg)
	case ScenarioResultMsg:
		return m.handleScenarioResult(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r", "R":
		if m.State == StateRunning || len(m.Scenarios) == 0 {
			return m, nil
		}
		m.State = StateRunning
		m.Err = nil
		m.Results = make([]ScenarioResult, 0, len(m.Scenarios))
		return m, runScenario(m.Client, 0, m.Scenarios[0])
	case "h", "H":
		return m, checkHealth(m.Client)
	}
	return m, nil
}

// handleHealth records the server status
func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	m.Health = msg.Health
	if msg.Err != nil {
		m.Err = msg.Err
		if m.State != StateRunning {
			m.State = StateError
		}
		return m, nil
	}
	if m.State == StateError {
		m.State = StateIdle
		m.Err = nil
	}
	return m, nil
}

// handleScenarioResult stores one result and starts the next scenario
func (m Model) handleScenarioResult(msg ScenarioResultMsg) (tea.Model, tea.Cmd) {
	if m.State != StateRunning || msg.Index != len(m.Results) {
		return m, nil
	}
	m.Results = append(m.Results, msg.Result)

	if msg.Result.Err != nil {
		m.State = StateError
		m.Err = msg.Result.Err
		return m, nil
	}

	next := msg.Index + 1
	if next >= len(m.Scenarios) {
		m.State = StateComplete
		return m, nil
	}
	return m, runScenario(m.Client, next, m.Scenarios[next])
}
