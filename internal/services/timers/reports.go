package timers

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
)

// Window selects the LogDate range of a report.
type Window string

const (
	WindowAll   Window = "all"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow maps a filter name to a Window. Unknown names mean all-time.
func ParseWindow(filter string) Window {
	switch Window(strings.ToLower(strings.TrimSpace(filter))) {
	case WindowDay:
		return WindowDay
	case WindowWeek:
		return WindowWeek
	case WindowMonth:
		return WindowMonth
	default:
		return WindowAll
	}
}

// Filter turns the window into a LogDate filter relative to now in loc.
func (w Window) Filter(now time.Time, loc *time.Location) db.DateFilter {
	today := now.In(loc)
	switch w {
	case WindowDay:
		return db.DateFilter{On: today.Format(db.LogDateLayout)}
	case WindowWeek:
		return db.DateFilter{Since: today.AddDate(0, 0, -7).Format(db.LogDateLayout)}
	case WindowMonth:
		return db.DateFilter{Since: today.AddDate(0, 0, -30).Format(db.LogDateLayout)}
	default:
		return db.DateFilter{}
	}
}

// FormatHours renders seconds as hours with two decimals, for display only.
func FormatHours(seconds int64) string {
	return strconv.FormatFloat(float64(seconds)/3600, 'f', 2, 64)
}

// ReportEntry is one time log annotated with its live total.
type ReportEntry struct {
	Log              db.TimeLog
	LiveTotalSeconds int64
	IsRunning        bool
}

type Report struct {
	Owner        db.Owner
	Window       Window
	Entries      []ReportEntry
	TotalSeconds int64
	TotalHours   string
	GeneratedAt  time.Time
}

// Report lists the time logs of owner inside window, newest first, with
// open timers counted up to now.
func (s *TimerService) Report(ctx context.Context, owner db.Owner, window Window) (*Report, error) {
	now := s.clock.Now()
	logs, err := s.repo.ListByOwner(ctx, owner, window.Filter(now, s.loc))
	if err != nil {
		s.log.Error("report:query-failed", "owner", owner.ID, "role", owner.Role, "err", err)
		return nil, err
	}

	report := &Report{
		Owner:       owner,
		Window:      window,
		Entries:     make([]ReportEntry, 0, len(logs)),
		GeneratedAt: now,
	}
	for i := range logs {
		live := LiveSeconds(&logs[i], now)
		report.Entries = append(report.Entries, ReportEntry{
			Log:              logs[i],
			LiveTotalSeconds: live,
			IsRunning:        StateOf(&logs[i]) == StateRunning,
		})
		report.TotalSeconds += live
	}
	report.TotalHours = FormatHours(report.TotalSeconds)

	s.log.Debug("report:success", "owner", owner.ID, "window", window, "records", len(report.Entries))
	return report, nil
}

// OwnerSummary is the per-account line of the team report.
type OwnerSummary struct {
	OwnerID      string
	OwnerRole    db.OwnerRole
	Sessions     int
	TotalSeconds int64
	TotalHours   string
}

// TeamReport totals the time of every user account inside window.
func (s *TimerService) TeamReport(ctx context.Context, window Window) ([]OwnerSummary, error) {
	now := s.clock.Now()
	logs, err := s.repo.ListByRole(ctx, db.RoleUser, window.Filter(now, s.loc))
	if err != nil {
		return nil, err
	}

	byOwner := map[string]*OwnerSummary{}
	for i := range logs {
		sum := byOwner[logs[i].OwnerID]
		if sum == nil {
			sum = &OwnerSummary{OwnerID: logs[i].OwnerID, OwnerRole: logs[i].OwnerRole}
			byOwner[logs[i].OwnerID] = sum
		}
		sum.Sessions++
		sum.TotalSeconds += LiveSeconds(&logs[i], now)
	}

	summaries := make([]OwnerSummary, 0, len(byOwner))
	for _, sum := range byOwner {
		sum.TotalHours = FormatHours(sum.TotalSeconds)
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].OwnerID < summaries[j].OwnerID
	})
	return summaries, nil
}

type Dashboard struct {
	TotalUsers   int64
	TotalSeconds int64
	TotalHours   float64
}

// Dashboard reports how many user accounts tracked time and their total,
// with running timers counted up to now like every other view.
func (s *TimerService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock.Now()
	owners, seconds, err := s.repo.BankedTotals(ctx, db.RoleUser)
	if err != nil {
		return nil, err
	}
	running, err := s.repo.ListRunning(ctx, db.RoleUser)
	if err != nil {
		return nil, err
	}
	for i := range running {
		seconds += LiveSeconds(&running[i], now) - running[i].AccumulatedSeconds
	}
	return &Dashboard{
		TotalUsers:   owners,
		TotalSeconds: seconds,
		TotalHours:   float64(seconds) / 3600,
	}, nil
}
