package progress

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

// Event describes one finished (or failed) frame of a run.
type Event struct {
	Run       string        `json:"run"`
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed"`
	Error     string        `json:"error,omitempty"`
}

func (e Event) Failed() bool {
	return e.Error != ""
}

func (e Event) String() string {
	if e.Failed() {
		return fmt.Sprintf("Frame %d (%s) failed: %s", e.Index, e.Name, e.Error)
	}
	return fmt.Sprintf("Frame %d saved to %s in %s [%d/%d]", e.Index, e.Name, e.Elapsed.Round(time.Millisecond), e.Completed, e.Total)
}

// Reporter receives progress events. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(Event)
}

type multi []Reporter

// Multi fans every event out to all reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return multi(slices.Clone(reporters))
}

func (m multi) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

type LogReporter struct {
	mutex  sync.Mutex
	logger bslogger.Logger
}

func NewLogReporter(logger bslogger.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (lr *LogReporter) Report(e Event) {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()
	if e.Failed() {
		lr.logger.Error(e.String())
		return
	}
	lr.logger.Info(e.String())
}

// MemoryReporter keeps every event it receives.
type MemoryReporter struct {
	mutex  sync.Mutex
	events []Event
}

func (mr *MemoryReporter) Report(e Event) {
	mr.mutex.Lock()
	defer mr.mutex.Unlock()
	mr.events = append(mr.events, e)
}

func (mr *MemoryReporter) Events() []Event {
	mr.mutex.Lock()
	defer mr.mutex.Unlock()
	return slices.Clone(mr.events)
}
