package tui

// UI Text Constants
const (
	TextTitle = "Fragment Similarity Demo"

	// Footer
	TextFooterIdle    = "Press 'r' to run scenarios | 'h' to re-check the server | 'q' to quit"
	TextFooterRunning = "Running scenarios... | Press 'q' to quit"
	TextFooterDone    = "Press 'r' to run again | 'q' to quit"
)
