package tui

import (
	"transcriptdedup/demo/client"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents the application state machine
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateError    State = "error"
)

// Strategies are queried for every scenario, in column order.
var Strategies = []string{"quick", "fullscan"}

// ScenarioResult holds the server's decisions for one scenario.
type ScenarioResult struct {
	Scenario  Scenario
	Decisions []client.FragmentDecision // parallel to Strategies
	Err       error
}

// Passed reports whether the quick strategy returned the expected answer.
func (r ScenarioResult) Passed() bool {
	return r.Err == nil && len(r.Decisions) > 0 && r.Decisions[0].Similar == r.Scenario.Expected
}

// Model represents the TUI client state
type Model struct {
	Client    *client.Client
	Scenarios []Scenario
	Results   []ScenarioResult

	State  State
	Health *client.Health
	Err    error
}

// NewModel creates a new TUI model
func NewModel(serverURL string) Model {
	return Model{
		Client:    client.NewClient(serverURL),
		Scenarios: Scenarios(),
		State:     StateIdle,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return checkHealth(m.Client)
}

// Passed counts scenarios whose quick-strategy answer matched the expectation.
func (m Model) Passed() int {
	n := 0
	for _, r := range m.Results {
		if r.Passed() {
			n++
		}
	}
	return n
}
