package timers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AutoStopDescription is recorded on project timers stopped because their
// estimate ran out.
const AutoStopDescription = "Project ended automatically: Time limit reached."

const maxProjectNameLen = 255

// StartInput describes a new timer. A non-empty ProjectName makes it a
// project timer; Category may be given to make the intent explicit.
type StartInput struct {
	Category           db.Category
	Description        string
	ProjectName        string
	ProjectDescription string
	EstimatedSeconds   int64
}

// StopInput carries the optional fields of a stop command.
type StopInput struct {
	Description      string
	CompletionStatus db.CompletionStatus
}

var errNotExhausted = errors.New("estimate not exhausted")

func (in StartInput) category() (db.Category, error) {
	name := strings.TrimSpace(in.ProjectName)
	switch {
	case in.Category != "" && !in.Category.Valid():
		return "", validationError("", "unknown timer category %q", in.Category)
	case in.Category == db.CategoryProject && name == "":
		return "", validationError(db.CategoryProject, "project name is required to start a project timer")
	case in.Category == db.CategoryGeneral && name != "":
		return "", validationError(db.CategoryGeneral, "a general timer cannot carry a project name")
	case name != "":
		return db.CategoryProject, nil
	default:
		return db.CategoryGeneral, nil
	}
}

func (in StartInput) validate(category db.Category) error {
	if in.EstimatedSeconds < 0 {
		return validationError(category, "estimated duration cannot be negative")
	}
	if category == db.CategoryGeneral && in.EstimatedSeconds > 0 {
		return validationError(category, "estimated duration only applies to project timers")
	}
	if len(strings.TrimSpace(in.ProjectName)) > maxProjectNameLen {
		return validationError(category, "project name exceeds %d characters", maxProjectNameLen)
	}
	return nil
}

func (in StopInput) normalize(category db.Category) (StopInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	switch in.CompletionStatus {
	case "":
		in.CompletionStatus = db.StatusFinished
	case db.StatusFinished, db.StatusNotCompleted:
	default:
		return in, validationError(category, "invalid completion status %q: use finished or not_completed", in.CompletionStatus)
	}
	return in, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Start opens a new running timer for owner. It fails with ErrConflict when
// a timer of the same category is already open.
func (s *TimerService) Start(ctx context.Context, owner db.Owner, in StartInput) (*db.TimeLog, error) {
	category, err := in.category()
	if err != nil {
		return nil, err
	}
	if err := in.validate(category); err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, CommandStart, owner, category)
	defer span.End()

	var created *db.TimeLog
	err = s.repo.Transaction(ctx, func(tx *db.TimeLogRepository) error {
		current, err := loadOpen(ctx, tx, owner, category)
		if err != nil {
			return err
		}
		if _, err := Next(StateOf(current), CommandStart, category); err != nil {
			return err
		}

		now := s.clock.Now()
		started := now
		log := &db.TimeLog{
			ID:               uuid.New().String(),
			OwnerID:          owner.ID,
			OwnerRole:        owner.Role,
			Category:         category,
			InitialStartTime: now,
			StartTime:        &started,
			CompletionStatus: db.StatusInProgress,
			WorkDescription:  optional(in.Description),
			LogDate:          s.today(now),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if category == db.CategoryProject {
			log.ProjectName = optional(in.ProjectName)
			log.ProjectDescription = optional(in.ProjectDescription)
			log.EstimatedSeconds = in.EstimatedSeconds
		}

		if err := tx.Create(ctx, log); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return conflictError(category)
			}
			return fmt.Errorf("create time log: %w", err)
		}
		created = log
		return nil
	})
	if err != nil {
		s.fail(span, CommandStart, owner, category, err)
		return nil, err
	}

	s.log.Info("start:success", "owner", owner.ID, "role", owner.Role, "category", category, "timeLogID", created.ID)
	return created, nil
}

// Pause banks the running interval and leaves the timer paused.
func (s *TimerService) Pause(ctx context.Context, owner db.Owner, category db.Category) (*db.TimeLog, error) {
	return s.transition(ctx, owner, category, CommandPause, func(log *db.TimeLog, now time.Time) error {
		applyPause(log, now)
		return nil
	})
}

// Resume restarts a paused timer from now.
func (s *TimerService) Resume(ctx context.Context, owner db.Owner, category db.Category) (*db.TimeLog, error) {
	return s.transition(ctx, owner, category, CommandResume, func(log *db.TimeLog, now time.Time) error {
		applyResume(log, now)
		return nil
	})
}

// Stop closes the open timer, banking any running interval first.
func (s *TimerService) Stop(ctx context.Context, owner db.Owner, category db.Category, in StopInput) (*db.TimeLog, error) {
	in, err := in.normalize(category)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, owner, category, CommandStop, func(log *db.TimeLog, now time.Time) error {
		applyStop(log, now, in)
		return nil
	})
}

// AutoStop stops the project timer of owner when it is running and its
// estimate is used up. It goes through the same write path as Stop and
// reports whether a timer was stopped.
func (s *TimerService) AutoStop(ctx context.Context, owner db.Owner) (bool, error) {
	in := StopInput{Description: AutoStopDescription, CompletionStatus: db.StatusNotCompleted}
	_, err := s.transition(ctx, owner, db.CategoryProject, CommandStop, func(log *db.TimeLog, now time.Time) error {
		if !Exhausted(log, now) {
			return errNotExhausted
		}
		applyStop(log, now, in)
		return nil
	})
	switch {
	case err == nil:
		s.log.Info("auto-stop:success", "owner", owner.ID, "role", owner.Role)
		return true, nil
	case errors.Is(err, errNotExhausted), errors.Is(err, ErrInvalidState):
		return false, nil
	default:
		return false, err
	}
}

// ExpireOverdue stops every running project timer whose estimate is used
// up and returns how many were stopped.
func (s *TimerService) ExpireOverdue(ctx context.Context) (int, error) {
	candidates, err := s.repo.ListRunningCapped(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	stopped := 0
	var errs []error
	for i := range candidates {
		if !Exhausted(&candidates[i], now) {
			continue
		}
		ok, err := s.AutoStop(ctx, candidates[i].Owner())
		if err != nil {
			errs = append(errs, fmt.Errorf("auto-stop %s: %w", candidates[i].ID, err))
			continue
		}
		if ok {
			stopped++
		}
	}
	return stopped, errors.Join(errs...)
}

// transition runs one command against the open timer of owner+category as a
// single locked read-modify-write.
func (s *TimerService) transition(
	ctx context.Context,
	owner db.Owner,
	category db.Category,
	cmd Command,
	apply func(log *db.TimeLog, now time.Time) error,
) (*db.TimeLog, error) {
	ctx, span := s.startSpan(ctx, cmd, owner, category)
	defer span.End()

	var updated *db.TimeLog
	err := s.repo.Transaction(ctx, func(tx *db.TimeLogRepository) error {
		current, err := loadOpen(ctx, tx, owner, category)
		if err != nil {
			return err
		}
		if _, err := Next(StateOf(current), cmd, category); err != nil {
			return err
		}

		if err := apply(current, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Update(ctx, current); err != nil {
			return fmt.Errorf("update time log: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		if !errors.Is(err, errNotExhausted) {
			s.fail(span, cmd, owner, category, err)
		}
		return nil, err
	}

	s.log.Info(cmd.String()+":success", "owner", owner.ID, "role", owner.Role, "category", category, "timeLogID", updated.ID)
	return updated, nil
}

// loadOpen reads the open log under a row lock. Absent is returned as nil.
func loadOpen(ctx context.Context, tx *db.TimeLogRepository, owner db.Owner, category db.Category) (*db.TimeLog, error) {
	log, err := tx.FindOpenForUpdate(ctx, owner, category)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load open %s timer: %w", category, err)
	}
	return log, nil
}

func (s *TimerService) startSpan(ctx context.Context, cmd Command, owner db.Owner, category db.Category) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "timers."+cmd.String(), trace.WithAttributes(
		attribute.String("owner.id", owner.ID),
		attribute.String("owner.role", string(owner.Role)),
		attribute.String("timer.category", string(category)),
	))
}

func (s *TimerService) fail(span trace.Span, cmd Command, owner db.Owner, category db.Category, err error) {
	var terr *TimerError
	if errors.As(err, &terr) {
		s.log.Warn(cmd.String()+":rejected", "owner", owner.ID, "role", owner.Role, "category", category, "reason", terr.Message)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error(cmd.String()+":failed", "owner", owner.ID, "role", owner.Role, "category", category, "err", err)
}
