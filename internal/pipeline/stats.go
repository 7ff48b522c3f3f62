package pipeline

import (
	"context"
	"sync"
	"time"
)

// RunStats describes one finished run.
type RunStats struct {
	RunID       string
	Variant     Variant
	Database    string
	Model       string
	Corrections int
	Duration    time.Duration
	Kind        ErrorKind
}

// Succeeded reports whether the run produced a RunResult.
func (s RunStats) Succeeded() bool {
	return s.Kind == KindNone
}

// StatsRecorder receives one RunStats per finished run.
// Implementations must be safe for concurrent use.
type StatsRecorder interface {
	RecordRun(ctx context.Context, stats RunStats)
}

// Stats is an in-memory StatsRecorder. The zero value is ready to use.
type Stats struct {
	mu          sync.Mutex
	runs        int
	succeeded   int
	corrections int
	failures    map[ErrorKind]int
	total       time.Duration
}

// NewStats creates an empty accumulator.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) RecordRun(ctx context.Context, rs RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.corrections += rs.Corrections
	s.total += rs.Duration
	if rs.Succeeded() {
		s.succeeded++
	} else {
		if s.failures == nil {
			s.failures = make(map[ErrorKind]int)
		}
		s.failures[rs.Kind]++
	}
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Runs            int               `json:"runs"`
	Succeeded       int               `json:"succeeded"`
	Failed          int               `json:"failed"`
	Corrections     int               `json:"corrections"`
	FailuresByKind  map[ErrorKind]int `json:"failures_by_kind,omitempty"`
	AverageDuration time.Duration     `json:"average_duration"`
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Runs:           s.runs,
		Succeeded:      s.succeeded,
		Failed:         s.runs - s.succeeded,
		Corrections:    s.corrections,
		FailuresByKind: make(map[ErrorKind]int, len(s.failures)),
	}
	for k, v := range s.failures {
		snap.FailuresByKind[k] = v
	}
	if s.runs > 0 {
		snap.AverageDuration = s.total / time.Duration(s.runs)
	}
	return snap
}

// MultiStats forwards each RunStats to every recorder in order.
type MultiStats []StatsRecorder

func (m MultiStats) RecordRun(ctx context.Context, rs RunStats) {
	for _, r := range m {
		if r != nil {
			r.RecordRun(ctx, rs)
		}
	}
}

type nopStats struct{}

func (nopStats) RecordRun(context.Context, RunStats) {}

var (
	_ StatsRecorder = (*Stats)(nil)
	_ StatsRecorder = MultiStats(nil)
)
