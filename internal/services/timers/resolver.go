package timers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
)

// elapsedSeconds is the whole number of seconds between from and to.
// A negative span (clock moved backwards) counts as zero.
func elapsedSeconds(from, to time.Time) int64 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// LiveSeconds is the banked time of log plus the running interval up to now.
// Both the status and report views use it.
func LiveSeconds(log *db.TimeLog, now time.Time) int64 {
	if log.EndTime != nil || log.StartTime == nil {
		return log.AccumulatedSeconds
	}
	return log.AccumulatedSeconds + elapsedSeconds(*log.StartTime, now)
}

// RemainingSeconds is the time left before the estimate of a capped project
// log runs out. Uncapped logs report zero.
func RemainingSeconds(log *db.TimeLog, now time.Time) int64 {
	if log.EstimatedSeconds <= 0 {
		return 0
	}
	left := log.EstimatedSeconds - LiveSeconds(log, now)
	if left < 0 {
		return 0
	}
	return left
}

// Exhausted reports whether a running capped project log has used its
// estimate and must be stopped.
func Exhausted(log *db.TimeLog, now time.Time) bool {
	return log.Category == db.CategoryProject &&
		log.EstimatedSeconds > 0 &&
		StateOf(log) == StateRunning &&
		LiveSeconds(log, now) >= log.EstimatedSeconds
}

// Snapshot is the resolved view of one open time log at a given instant.
type Snapshot struct {
	Log              db.TimeLog
	State            State
	LiveSeconds      int64
	RemainingSeconds int64
	Expired          bool
	At               time.Time
}

func (s *Snapshot) IsRunning() bool {
	return s.State == StateRunning
}

func newSnapshot(log *db.TimeLog, now time.Time) *Snapshot {
	return &Snapshot{
		Log:              *log,
		State:            StateOf(log),
		LiveSeconds:      LiveSeconds(log, now),
		RemainingSeconds: RemainingSeconds(log, now),
		Expired:          log.EstimatedSeconds > 0 && LiveSeconds(log, now) >= log.EstimatedSeconds,
		At:               now,
	}
}

// Resolve returns the open timer of owner for category. A missing timer is
// reported as ErrNotFound, which callers treat as "no active session".
func (s *TimerService) Resolve(ctx context.Context, owner db.Owner, category db.Category) (*Snapshot, error) {
	log, err := s.repo.FindOpen(ctx, owner, category)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, notFoundError(category)
		}
		return nil, fmt.Errorf("resolve %s timer: %w", category, err)
	}
	return newSnapshot(log, s.clock.Now()), nil
}

// Status holds both timers of one owner; nil means absent.
type Status struct {
	General *Snapshot
	Project *Snapshot
	At      time.Time
}

// Status resolves both timers of owner against a single clock reading.
func (s *TimerService) Status(ctx context.Context, owner db.Owner) (*Status, error) {
	logs, err := s.repo.ListOpen(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	status := &Status{At: now}
	for i := range logs {
		snap := newSnapshot(&logs[i], now)
		switch logs[i].Category {
		case db.CategoryProject:
			status.Project = snap
		default:
			status.General = snap
		}
	}
	return status, nil
}
