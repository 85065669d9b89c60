package timers

import (
	"time"

	"github.com/JorgeSaicoski/microservice-commons/utils"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
)

// Request DTOs

// CategoryRequest selects the timer a command acts on. Category wins over
// IsProject when both are given.
type CategoryRequest struct {
	IsProject bool   `json:"isProject"`
	Category  string `json:"category"`
}

type StartTimerRequest struct {
	Category           string `json:"category"`
	Description        string `json:"description"`
	ProjectName        string `json:"projectName"`
	ProjectDescription string `json:"projectDescription"`
	EstimatedSeconds   int64  `json:"estimatedSeconds"`
}

type StopTimerRequest struct {
	CategoryRequest
	Description      string `json:"description"`
	CompletionStatus string `json:"completionStatus"`
}

// ToInput normalises the category the same way the other commands do.
func (r StartTimerRequest) ToInput() timersService.StartInput {
	return timersService.StartInput{
		Category:           db.Category(utils.TrimAndLower(r.Category)),
		Description:        r.Description,
		ProjectName:        r.ProjectName,
		ProjectDescription: r.ProjectDescription,
		EstimatedSeconds:   r.EstimatedSeconds,
	}
}

func (r StopTimerRequest) ToInput() timersService.StopInput {
	return timersService.StopInput{
		Description:      r.Description,
		CompletionStatus: db.CompletionStatus(r.CompletionStatus),
	}
}

// Response DTOs

type TimeLogResponse struct {
	ID                 string     `json:"id"`
	Category           string     `json:"category"`
	OwnerID            string     `json:"ownerId"`
	OwnerRole          string     `json:"ownerRole"`
	InitialStartTime   time.Time  `json:"initialStartTime"`
	StartTime          *time.Time `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	AccumulatedSeconds int64      `json:"accumulatedSeconds"`
	WorkDescription    *string    `json:"workDescription"`
	ProjectName        *string    `json:"projectName"`
	ProjectDescription *string    `json:"projectDescription"`
	EstimatedSeconds   int64      `json:"estimatedSeconds"`
	CompletionStatus   string     `json:"completionStatus"`
	LogDate            string     `json:"logDate"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// SessionView is the status of one category. Only Active is set when no
// timer is open.
type SessionView struct {
	Active             bool       `json:"active"`
	ID                 string     `json:"id,omitempty"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	AccumulatedSeconds int64      `json:"accumulatedSeconds"`
	LiveSeconds        int64      `json:"liveSeconds"`
	IsRunning          bool       `json:"isRunning"`
	Description        *string    `json:"description,omitempty"`
	ProjectName        *string    `json:"projectName,omitempty"`
	ProjectDescription *string    `json:"projectDescription,omitempty"`
	EstimatedSeconds   int64      `json:"estimatedSeconds"`
	RemainingSeconds   int64      `json:"remainingSeconds"`
	CompletionStatus   string     `json:"completionStatus,omitempty"`
}

type StatusResponse struct {
	General SessionView `json:"general"`
	Project SessionView `json:"project"`
	At      time.Time   `json:"at"`
}

type ReportRecordResponse struct {
	TimeLogResponse
	LiveTotalSeconds int64 `json:"liveTotalSeconds"`
	IsRunning        bool  `json:"isRunning"`
}

type ReportResponse struct {
	Records        []ReportRecordResponse `json:"records"`
	TotalSeconds   int64                  `json:"totalSeconds"`
	TotalHours     string                 `json:"totalHours"`
	TargetUserID   string                 `json:"targetUserId"`
	TargetUserName string                 `json:"targetUserName"`
	Filter         string                 `json:"filter"`
	GeneratedAt    time.Time              `json:"generatedAt"`
}

// Conversion methods

func TimeLogToResponse(log *db.TimeLog) TimeLogResponse {
	return TimeLogResponse{
		ID:                 log.ID,
		Category:           string(log.Category),
		OwnerID:            log.OwnerID,
		OwnerRole:          string(log.OwnerRole),
		InitialStartTime:   log.InitialStartTime,
		StartTime:          log.StartTime,
		EndTime:            log.EndTime,
		AccumulatedSeconds: log.AccumulatedSeconds,
		WorkDescription:    log.WorkDescription,
		ProjectName:        log.ProjectName,
		ProjectDescription: log.ProjectDescription,
		EstimatedSeconds:   log.EstimatedSeconds,
		CompletionStatus:   string(log.CompletionStatus),
		LogDate:            log.LogDate,
		CreatedAt:          log.CreatedAt,
		UpdatedAt:          log.UpdatedAt,
	}
}

func SnapshotToView(snap *timersService.Snapshot) SessionView {
	if snap == nil {
		return SessionView{Active: false}
	}
	log := snap.Log
	return SessionView{
		Active:             true,
		ID:                 log.ID,
		StartTime:          log.StartTime,
		AccumulatedSeconds: log.AccumulatedSeconds,
		LiveSeconds:        snap.LiveSeconds,
		IsRunning:          snap.IsRunning(),
		Description:        log.WorkDescription,
		ProjectName:        log.ProjectName,
		ProjectDescription: log.ProjectDescription,
		EstimatedSeconds:   log.EstimatedSeconds,
		RemainingSeconds:   snap.RemainingSeconds,
		CompletionStatus:   string(log.CompletionStatus),
	}
}

func StatusToResponse(status *timersService.Status) StatusResponse {
	return StatusResponse{
		General: SnapshotToView(status.General),
		Project: SnapshotToView(status.Project),
		At:      status.At,
	}
}

func ReportToResponse(report *timersService.Report, targetName string) ReportResponse {
	records := make([]ReportRecordResponse, len(report.Entries))
	for i := range report.Entries {
		entry := &report.Entries[i]
		records[i] = ReportRecordResponse{
			TimeLogResponse:  TimeLogToResponse(&entry.Log),
			LiveTotalSeconds: entry.LiveTotalSeconds,
			IsRunning:        entry.IsRunning,
		}
	}
	return ReportResponse{
		Records:        records,
		TotalSeconds:   report.TotalSeconds,
		TotalHours:     report.TotalHours,
		TargetUserID:   report.Owner.ID,
		TargetUserName: targetName,
		Filter:         string(report.Window),
		GeneratedAt:    report.GeneratedAt,
	}
}
