// Package telemetry times multi-step operations and reports slow ones.
package telemetry

import (
	"sync/atomic"
	"time"

	"github.com/PeterCxy/itte/pkg/logger"
)

type Step struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration_ms"`
}

type Trace struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	Steps    []Step    `json:"steps"`
	TotalMS  float64   `json:"total_ms"`
	lastMark time.Time
	tel      *Telemetry
}

// Telemetry reports traces slower than its threshold.
type Telemetry struct {
	slow   time.Duration
	report func(*Trace)
}

var tel atomic.Pointer[Telemetry]

// Init installs the global instance. A zero threshold reports nothing.
func Init(slowThreshold time.Duration) {
	tel.Store(New(slowThreshold, nil))
}

// Track starts a new trace using the global telemetry instance.
func Track(name string) *Trace {
	return tel.Load().Track(name)
}

// New returns a Telemetry that passes slow traces to report, or logs them
// when report is nil.
func New(slowThreshold time.Duration, report func(*Trace)) *Telemetry {
	if report == nil {
		report = logSlow
	}
	return &Telemetry{slow: slowThreshold, report: report}
}

// Track starts a new trace. A nil receiver returns a trace that records
// steps but never reports.
func (t *Telemetry) Track(name string) *Trace {
	now := time.Now()
	return &Trace{
		Name:     name,
		Start:    now,
		lastMark: now,
		tel:      t,
	}
}

// Mark records the elapsed duration since last mark.
func (tr *Trace) Mark(label string) {
	now := time.Now()
	delta := now.Sub(tr.lastMark).Seconds() * 1000
	tr.Steps = append(tr.Steps, Step{Name: label, Duration: delta})
	tr.lastMark = now
}

// Finish finalizes the trace. Safe to call multiple times or via defer.
func (tr *Trace) Finish() {
	t := tr.tel
	if t == nil {
		return
	}
	tr.tel = nil
	total := time.Since(tr.Start)
	tr.TotalMS = total.Seconds() * 1000

	var sum float64
	for _, s := range tr.Steps {
		sum += s.Duration
	}
	if remaining := tr.TotalMS - sum; remaining > 0.001 {
		tr.Steps = append(tr.Steps, Step{Name: "unmarked", Duration: remaining})
	}

	if t.slow > 0 && total >= t.slow {
		t.report(tr)
	}
}

func logSlow(tr *Trace) {
	args := []any{"op", tr.Name, "total_ms", tr.TotalMS}
	for _, s := range tr.Steps {
		args = append(args, "step_"+s.Name+"_ms", s.Duration)
	}
	logger.Warn("slow_operation", args...)
}
