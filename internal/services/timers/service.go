package timers

import (
	"log/slog"
	"time"

	"github.com/JorgeSaicoski/pgconnect"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/JorgeSaicoski/timekeeper/internal/services/timers"

// Clock is the time source for every elapsed-time computation.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = systemClock{}

// TimerService owns the general and project timers of every account.
type TimerService struct {
	repo   *db.TimeLogRepository
	clock  Clock
	loc    *time.Location
	tracer trace.Tracer
	log    *slog.Logger
}

type Option func(*TimerService)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *TimerService) { s.clock = c }
}

// WithLocation sets the time zone used for LogDate and report windows.
func WithLocation(loc *time.Location) Option {
	return func(s *TimerService) { s.loc = loc }
}

func NewTimerService(database *pgconnect.DB, opts ...Option) *TimerService {
	s := &TimerService{
		repo:   db.NewTimeLogRepository(database),
		clock:  SystemClock,
		loc:    time.UTC,
		tracer: otel.Tracer(tracerName),
		log: slog.Default().With(
			slog.String("layer", "service"),
			slog.String("service", "TimerService"),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock reading.
func (s *TimerService) Now() time.Time {
	return s.clock.Now()
}

// today returns the calendar date of t in the service time zone.
func (s *TimerService) today(t time.Time) string {
	return t.In(s.loc).Format(db.LogDateLayout)
}
