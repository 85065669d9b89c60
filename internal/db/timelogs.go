package db

import (
	"context"
	"fmt"

	"github.com/JorgeSaicoski/pgconnect"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateFilter restricts queries on TimeLog.LogDate. Empty fields are ignored.
type DateFilter struct {
	On    string // LogDate == On
	Since string // LogDate >= Since
}

func (f DateFilter) apply(q *gorm.DB) *gorm.DB {
	if f.On != "" {
		q = q.Where("log_date = ?", f.On)
	}
	if f.Since != "" {
		q = q.Where("log_date >= ?", f.Since)
	}
	return q
}

// TimeLogRepository stores time logs and answers the lookups the timer
// service needs. Plain CRUD goes through pgconnect.Repository; the locked
// and aggregate queries are written against the gorm handle directly.
type TimeLogRepository struct {
	conn *pgconnect.DB
}

func NewTimeLogRepository(conn *pgconnect.DB) *TimeLogRepository {
	return &TimeLogRepository{conn: conn}
}

// DB exposes the handle bound to ctx for queries the helpers do not cover.
func (r *TimeLogRepository) DB(ctx context.Context) *gorm.DB {
	return r.conn.WithContext(ctx)
}

// records binds the generic pgconnect repository to ctx. When r belongs to
// a transaction the repository joins it.
func (r *TimeLogRepository) records(ctx context.Context) *pgconnect.Repository[TimeLog] {
	return pgconnect.NewRepository[TimeLog](&pgconnect.DB{DB: r.DB(ctx)})
}

func (r *TimeLogRepository) Create(ctx context.Context, log *TimeLog) error {
	return translate(r.records(ctx).Create(log))
}

// Update saves every column of log.
func (r *TimeLogRepository) Update(ctx context.Context, log *TimeLog) error {
	return translate(r.records(ctx).Update(log))
}

// Transaction runs fn against a repository bound to a single database
// transaction. Returning an error rolls every write back.
func (r *TimeLogRepository) Transaction(ctx context.Context, fn func(tx *TimeLogRepository) error) error {
	return r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewTimeLogRepository(&pgconnect.DB{DB: tx}))
	})
}

func (r *TimeLogRepository) openQuery(ctx context.Context, owner Owner, category Category) *gorm.DB {
	return r.DB(ctx).
		Where("owner_id = ? AND owner_role = ? AND category = ? AND end_time IS NULL",
			owner.ID, owner.Role, category)
}

// FindOpen returns the open log of owner for category, or ErrNotFound.
func (r *TimeLogRepository) FindOpen(ctx context.Context, owner Owner, category Category) (*TimeLog, error) {
	var log TimeLog
	if err := r.openQuery(ctx, owner, category).First(&log).Error; err != nil {
		return nil, translate(err)
	}
	return &log, nil
}

// FindOpenForUpdate is FindOpen with a row lock held until the surrounding
// transaction ends. Dialects without row locks ignore the clause.
func (r *TimeLogRepository) FindOpenForUpdate(ctx context.Context, owner Owner, category Category) (*TimeLog, error) {
	var log TimeLog
	err := r.openQuery(ctx, owner, category).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&log).Error
	if err != nil {
		return nil, translate(err)
	}
	return &log, nil
}

// ListOpen returns every open log of owner (at most one per category).
func (r *TimeLogRepository) ListOpen(ctx context.Context, owner Owner) ([]TimeLog, error) {
	var logs []TimeLog
	err := r.records(ctx).FindWhere(&logs, "owner_id = ? AND owner_role = ? AND end_time IS NULL", owner.ID, owner.Role)
	if err != nil {
		return nil, fmt.Errorf("query open time logs: %w", err)
	}
	return logs, nil
}

// ListByOwner returns the owner's logs matching filter, newest first.
func (r *TimeLogRepository) ListByOwner(ctx context.Context, owner Owner, filter DateFilter) ([]TimeLog, error) {
	var logs []TimeLog
	q := r.DB(ctx).Where("owner_id = ? AND owner_role = ?", owner.ID, owner.Role)
	err := filter.apply(q).Order("created_at DESC").Order("id DESC").Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("query time logs: %w", err)
	}
	return logs, nil
}

// ListByRole returns logs of every owner with the given role matching filter.
func (r *TimeLogRepository) ListByRole(ctx context.Context, role OwnerRole, filter DateFilter) ([]TimeLog, error) {
	var logs []TimeLog
	q := r.DB(ctx).Where("owner_role = ?", role)
	err := filter.apply(q).Order("owner_id").Order("created_at DESC").Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("query time logs by role: %w", err)
	}
	return logs, nil
}

// ListRunning returns the running logs of every owner with the given role.
func (r *TimeLogRepository) ListRunning(ctx context.Context, role OwnerRole) ([]TimeLog, error) {
	var logs []TimeLog
	err := r.records(ctx).FindWhere(&logs,
		"owner_role = ? AND end_time IS NULL AND start_time IS NOT NULL", role)
	if err != nil {
		return nil, fmt.Errorf("query running timers: %w", err)
	}
	return logs, nil
}

// ListRunningCapped returns running project logs that carry an estimate.
func (r *TimeLogRepository) ListRunningCapped(ctx context.Context) ([]TimeLog, error) {
	var logs []TimeLog
	err := r.records(ctx).FindWhere(&logs,
		"category = ? AND end_time IS NULL AND start_time IS NOT NULL AND estimated_seconds > 0",
		CategoryProject)
	if err != nil {
		return nil, fmt.Errorf("query capped timers: %w", err)
	}
	return logs, nil
}

// BankedTotals returns the number of distinct owners of the given role with
// at least one log and the sum of their banked seconds. Running intervals
// are not banked yet, so callers add them on top.
func (r *TimeLogRepository) BankedTotals(ctx context.Context, role OwnerRole) (owners int64, seconds int64, err error) {
	var row struct {
		Owners  int64
		Seconds int64
	}
	err = r.DB(ctx).Model(&TimeLog{}).
		Select("COUNT(DISTINCT owner_id) AS owners, COALESCE(SUM(accumulated_seconds), 0) AS seconds").
		Where("owner_role = ?", role).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate time logs: %w", err)
	}
	return row.Owners, row.Seconds, nil
}
