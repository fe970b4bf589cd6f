// Package tui provides the Bubble Tea front end: the interactive match,
// the run history table, and SSH sessions that host both.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a match tick. Match tags the tick loop it
// belongs to so a loop left over from an earlier match is dropped.
type TickMsg struct {
	Match uint64
	At    time.Time
}

var matchSeq atomic.Uint64

func nextMatchTag() uint64 { return matchSeq.Add(1) }

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tag uint64, tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 10
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Match: tag, At: t}
	})
}
