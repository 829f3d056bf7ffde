package tui

import (
	"fmt"
	"strings"
)

const nameWidth = 20

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if len(m.Results) > 0 {
		b.WriteString(BoxStyle.Render(m.renderTable()))
		b.WriteString("\n\n")
	}

	if m.State == StateComplete {
		summary := fmt.Sprintf("%d/%d scenarios matched the expected answer", m.Passed(), len(m.Scenarios))
		if m.Passed() == len(m.Scenarios) {
			b.WriteString(StatusStyle.Render(summary))
		} else {
			b.WriteString(ErrorStyle.Render(summary))
		}
		b.WriteString("\n\n")
	}

	switch m.State {
	case StateRunning:
		b.WriteString(InfoStyle.Render(TextFooterRunning))
	case StateComplete:
		b.WriteString(InfoStyle.Render(TextFooterDone))
	default:
		b.WriteString(InfoStyle.Render(TextFooterIdle))
	}
	return b.String()
}

// getStateText returns the status line
func (m Model) getStateText() string {
	switch m.State {
	case StateError:
		errMsg := "unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render("Error: " + errMsg)
	case StateRunning:
		return StatusStyle.Render(fmt.Sprintf("Checking scenario %d of %d...", len(m.Results)+1, len(m.Scenarios)))
	}

	if m.Health == nil {
		return InfoStyle.Render("Connecting to " + m.Client.BaseURL() + "...")
	}
	return StatusStyle.Render(fmt.Sprintf("Connected to %s (%s, default strategy %s, up %s)",
		m.Client.BaseURL(), m.Health.Status, m.Health.Strategy, m.Health.Uptime))
}

// renderTable lays out one row per finished scenario
func (m Model) renderTable() string {
	var b strings.Builder

	header := padRight("Scenario", nameWidth) + padRight("Expected", 10)
	for _, s := range Strategies {
		header += padRight(s, 22)
	}
	b.WriteString(HeaderStyle.Render(header))

	for _, r := range m.Results {
		b.WriteString("\n")
		row := padRight(r.Scenario.Name, nameWidth) + padRight(yesNo(r.Scenario.Expected), 10)
		if r.Err != nil {
			b.WriteString(row + ErrorStyle.Render(r.Err.Error()))
			continue
		}
		for _, d := range r.Decisions {
			cell := yesNo(d.Similar)
			if d.Reason != "" {
				cell += " (" + d.Reason + ")"
			}
			row += padRight(cell, 22)
		}
		if r.Passed() {
			b.WriteString(row + StatusStyle.Render("ok"))
		} else {
			b.WriteString(row + ErrorStyle.Render("mismatch"))
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "similar"
	}
	return "distinct"
}

// padRight pads by display width; CJK characters occupy two cells.
func padRight(s string, width int) string {
	w := displayWidth(s)
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w)
}
