package tui

import "transcriptdedup/demo/client"

// Messages for the tea program

// HealthMsg is sent when the server health check returns
type HealthMsg struct {
	Health *client.Health
	Err    error
}

// ScenarioResultMsg is sent when one scenario has been checked with every strategy
type ScenarioResultMsg struct {
	Index  int
	Result ScenarioResult
}
