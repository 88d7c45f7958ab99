package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	counterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CD992"))
	todoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// ConsoleReporter prints one styled line per event with a completion bar.
type ConsoleReporter struct {
	mutex sync.Mutex
	out   io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (cr *ConsoleReporter) Report(e Event) {
	line := renderLine(e)
	cr.mutex.Lock()
	defer cr.mutex.Unlock()
	fmt.Fprintln(cr.out, line)
}

func renderLine(e Event) string {
	width := len(fmt.Sprint(e.Total))
	counter := counterStyle.Render(fmt.Sprintf("[%*d/%d]", width, e.Completed, e.Total))
	if e.Failed() {
		return lipgloss.JoinHorizontal(lipgloss.Top, counter, " ", failStyle.Render(fmt.Sprintf("frame %d failed: %s", e.Index, e.Error)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		counter, " ",
		bar(e.Completed, e.Total), " ",
		nameStyle.Render(fmt.Sprintf("%s %s", e.Name, e.Elapsed.Round(time.Millisecond))),
	)
}

func bar(completed int, total int) string {
	filled := 0
	if total > 0 {
		filled = min(barWidth, max(0, completed*barWidth/total))
	}
	return doneStyle.Render(strings.Repeat("█", filled)) + todoStyle.Render(strings.Repeat("░", barWidth-filled))
}
