package db

import (
	"time"
)

// Category separates the two timers an owner can run side by side
type Category string

const (
	CategoryGeneral Category = "general"
	CategoryProject Category = "project"
)

func (c Category) Valid() bool {
	return c == CategoryGeneral || c == CategoryProject
}

// OwnerRole is the account kind that owns a time log
type OwnerRole string

const (
	RoleUser  OwnerRole = "user"
	RoleAdmin OwnerRole = "admin"
)

func (r OwnerRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CompletionStatus constants
type CompletionStatus string

const (
	StatusInProgress   CompletionStatus = "in_progress"
	StatusFinished     CompletionStatus = "finished"
	StatusNotCompleted CompletionStatus = "not_completed"
)

// LogDateLayout is the calendar format stored in TimeLog.LogDate
const LogDateLayout = "2006-01-02"

// Owner identifies the account a time log belongs to.
type Owner struct {
	ID   string
	Role OwnerRole
}

// TimeLog is one tracked session (general or project) of a single owner.
//
// A row with EndTime == nil is "open". At most one open row exists per
// (OwnerID, OwnerRole, Category); the partial unique index below backs the
// check done inside every command transaction.
type TimeLog struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID            string           `json:"ownerId" gorm:"not null;uniqueIndex:idx_time_logs_open,where:end_time IS NULL;index:idx_time_logs_owner_date,priority:1"`
	OwnerRole          OwnerRole        `json:"ownerRole" gorm:"type:varchar(10);not null;uniqueIndex:idx_time_logs_open;index:idx_time_logs_owner_date,priority:2"`
	Category           Category         `json:"category" gorm:"type:varchar(10);not null;uniqueIndex:idx_time_logs_open"`
	InitialStartTime   time.Time        `json:"initialStartTime" gorm:"not null"`                 // never updated
	StartTime          *time.Time       `json:"startTime"`                                       // nil while paused or closed
	AccumulatedSeconds int64            `json:"accumulatedSeconds" gorm:"not null;default:0"`    // banked running time
	EndTime            *time.Time       `json:"endTime"`                                         // nil for open logs
	ProjectName        *string          `json:"projectName"`                                     // set => project category
	ProjectDescription *string          `json:"projectDescription"`                              // optional
	EstimatedSeconds   int64            `json:"estimatedSeconds" gorm:"not null;default:0"`      // 0 = no cap
	CompletionStatus   CompletionStatus `json:"completionStatus" gorm:"type:varchar(20);not null;default:'in_progress'"`
	WorkDescription    *string          `json:"workDescription"`
	LogDate            string           `json:"logDate" gorm:"type:varchar(10);not null;index:idx_time_logs_owner_date,priority:3"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func (TimeLog) TableName() string {
	return "time_logs"
}

// Owner returns the owner key of the log.
func (l *TimeLog) Owner() Owner {
	return Owner{ID: l.OwnerID, Role: l.OwnerRole}
}

// IsOpen reports whether the log has not been closed yet.
func (l *TimeLog) IsOpen() bool {
	return l.EndTime == nil
}
