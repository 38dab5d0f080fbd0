// Package scheduler implements §4.8's optional driver: interval-based
// agent runs and heartbeats, single-threaded and with no background
// execution. Both deadlines are plain unix-second comparisons against
// an injected clock rather than a ticker goroutine, so a caller can
// drive the whole thing from one loop iteration at a time.
package scheduler

import (
	"context"
	"time"

	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

// Scheduler tracks the last agent run and heartbeat, per §4.8.
type Scheduler struct {
	clock contracts.Clock

	intervalS   int
	heartbeatS  int
	maxRuns     int
	prompt      string
	lastRun     int64
	lastBeat    int64
	runCount    int
	initialized bool
}

// New builds a scheduler from the runtime config. clock defaults to the
// system wall clock when nil.
func New(cfg types.Config, clock contracts.Clock) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		clock:      clock,
		intervalS:  cfg.CronIntervalS,
		heartbeatS: cfg.HeartbeatS,
		maxRuns:    cfg.CronMaxRuns,
		prompt:     cfg.CronPrompt,
	}
}

// Prompt returns the configured agent-run prompt.
func (s *Scheduler) Prompt() string { return s.prompt }

// ShouldRunAgent reports whether an agent run is due: interval enabled,
// enough time elapsed since the last run (or never run), and the run
// count budget not exhausted. A true result advances the last-run
// timestamp and increments the run count as a side effect, so a caller
// that checks and then skips the run still consumes the tick.
func (s *Scheduler) ShouldRunAgent() bool {
	if s.intervalS <= 0 {
		return false
	}
	if s.maxRuns > 0 && s.runCount >= s.maxRuns {
		return false
	}
	now := s.clock.Now()
	if s.initialized && now-s.lastRun < int64(s.intervalS) {
		return false
	}
	s.lastRun = now
	s.initialized = true
	s.runCount++
	metrics.SchedulerRuns.Inc()
	return true
}

// ShouldHeartbeat is ShouldRunAgent's analogue for the heartbeat
// interval: no run-count budget, no prompt, just a liveness tick.
func (s *Scheduler) ShouldHeartbeat() bool {
	if s.heartbeatS <= 0 {
		return false
	}
	now := s.clock.Now()
	if s.lastBeat != 0 && now-s.lastBeat < int64(s.heartbeatS) {
		return false
	}
	s.lastBeat = now
	metrics.SchedulerHeartbeats.Inc()
	return true
}

// SleepUntilNext blocks until the earlier of the next agent-run or
// heartbeat deadline, or returns immediately if neither is enabled. It
// also returns early if ctx is cancelled, so a driver loop notices
// shutdown signals without waiting out a full interval.
func (s *Scheduler) SleepUntilNext(ctx context.Context) {
	wait := s.nextDeadline()
	if wait <= 0 {
		return
	}
	t := time.NewTimer(time.Duration(wait) * time.Second)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (s *Scheduler) nextDeadline() int64 {
	now := s.clock.Now()
	var deadlines []int64
	if s.intervalS > 0 && (s.maxRuns <= 0 || s.runCount < s.maxRuns) {
		next := s.lastRun + int64(s.intervalS)
		if !s.initialized {
			next = now
		}
		deadlines = append(deadlines, next)
	}
	if s.heartbeatS > 0 {
		next := s.lastBeat + int64(s.heartbeatS)
		if s.lastBeat == 0 {
			next = now
		}
		deadlines = append(deadlines, next)
	}
	if len(deadlines) == 0 {
		return 0
	}
	earliest := deadlines[0]
	for _, d := range deadlines[1:] {
		if d < earliest {
			earliest = d
		}
	}
	wait := earliest - now
	if wait < 0 {
		wait = 0
	}
	return wait
}
