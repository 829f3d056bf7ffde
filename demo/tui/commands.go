package tui

import (
	"context"
	"time"

	"transcriptdedup/demo/client"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 5 * time.Second

// checkHealth creates a command that pings the server
func checkHealth(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		h, err := c.Health(ctx)
		return HealthMsg{Health: h, Err: err}
	}
}

// runScenario creates a command that checks scenario idx with every strategy
func runScenario(c *client.Client, idx int, s Scenario) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		minSample := demoMinSampleLength
		result := ScenarioResult{Scenario: s}
		for _, strategy := range Strategies {
			d, err := c.CheckFragments(ctx, client.FragmentCheck{
				ShortText:       s.Short,
				LongText:        s.Long,
				Strategy:        strategy,
				MinSampleLength: &minSample,
			})
			if err != nil {
				result.Err = err
				break
			}
			result.Decisions = append(result.Decisions, *d)
		}
		return ScenarioResultMsg{Index: idx, Result: result}
	}
}
