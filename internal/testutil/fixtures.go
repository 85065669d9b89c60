package testutil

import (
	"sync"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/google/uuid"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// LogOption customises a TimeLog built by NewTestLog.
type LogOption func(*db.TimeLog)

// NewTestLog builds an open, running general log started at start.
func NewTestLog(owner db.Owner, start time.Time, opts ...LogOption) *db.TimeLog {
	s := start
	log := &db.TimeLog{
		ID:               uuid.New().String(),
		OwnerID:          owner.ID,
		OwnerRole:        owner.Role,
		Category:         db.CategoryGeneral,
		InitialStartTime: start,
		StartTime:        &s,
		CompletionStatus: db.StatusInProgress,
		LogDate:          start.Format(db.LogDateLayout),
		CreatedAt:        start,
		UpdatedAt:        start,
	}
	for _, opt := range opts {
		opt(log)
	}
	return log
}

func WithProject(name string, estimatedSeconds int64) LogOption {
	return func(l *db.TimeLog) {
		l.Category = db.CategoryProject
		l.ProjectName = &name
		l.EstimatedSeconds = estimatedSeconds
	}
}

func WithAccumulated(seconds int64) LogOption {
	return func(l *db.TimeLog) { l.AccumulatedSeconds = seconds }
}

func Paused() LogOption {
	return func(l *db.TimeLog) { l.StartTime = nil }
}

func Closed(end time.Time, status db.CompletionStatus) LogOption {
	return func(l *db.TimeLog) {
		l.StartTime = nil
		l.EndTime = &end
		l.CompletionStatus = status
	}
}

func WithLogDate(date string) LogOption {
	return func(l *db.TimeLog) { l.LogDate = date }
}
