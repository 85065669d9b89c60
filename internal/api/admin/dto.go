package admin

import (
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
)

type UserReportResponse struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Sessions     int    `json:"sessions"`
	TotalSeconds int64  `json:"totalSeconds"`
	TotalHours   string `json:"totalHours"`
}

type TeamReportResponse struct {
	Users        []UserReportResponse `json:"users"`
	TotalSeconds int64                `json:"totalSeconds"`
	TotalHours   string               `json:"totalHours"`
	Filter       string               `json:"filter"`
}

type DashboardResponse struct {
	TotalUsers   int64   `json:"totalUsers"`
	TotalSeconds int64   `json:"totalSeconds"`
	TotalHours   float64 `json:"totalHours"`
}

func SummaryToResponse(summary timersService.OwnerSummary, name string) UserReportResponse {
	return UserReportResponse{
		UserID:       summary.OwnerID,
		UserName:     name,
		Sessions:     summary.Sessions,
		TotalSeconds: summary.TotalSeconds,
		TotalHours:   summary.TotalHours,
	}
}

func DashboardToResponse(d *timersService.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalUsers:   d.TotalUsers,
		TotalSeconds: d.TotalSeconds,
		TotalHours:   d.TotalHours,
	}
}
