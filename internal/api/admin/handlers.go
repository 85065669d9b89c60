package admin

import (
	"log/slog"

	"github.com/JorgeSaicoski/microservice-commons/responses"
	clients "github.com/JorgeSaicoski/timekeeper/internal/client"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
	"github.com/gin-gonic/gin"
)

const unknownUserName = "Unknown User"

type AdminHandler struct {
	timerService *timersService.TimerService
	accounts     clients.AccountDirectory
	log          *slog.Logger
}

func NewAdminHandler(timerService *timersService.TimerService, accounts clients.AccountDirectory) *AdminHandler {
	return &AdminHandler{
		timerService: timerService,
		accounts:     accounts,
		log:          slog.Default().With(slog.String("layer", "handler"), slog.String("handler", "AdminHandler")),
	}
}

// GetTeamReport totals the tracked time of every user account.
func (h *AdminHandler) GetTeamReport(c *gin.Context) {
	window := timersService.ParseWindow(c.Query("filter"))

	summaries, err := h.timerService.TeamReport(c.Request.Context(), window)
	if err != nil {
		h.log.Error("team-report:failed", "err", err)
		responses.InternalError(c, "internal error")
		return
	}

	res := TeamReportResponse{
		Users:  make([]UserReportResponse, 0, len(summaries)),
		Filter: string(window),
	}
	for _, summary := range summaries {
		name, err := h.accounts.DisplayName(c.Request.Context(), db.Owner{ID: summary.OwnerID, Role: summary.OwnerRole})
		if err != nil {
			name = unknownUserName
		}
		res.Users = append(res.Users, SummaryToResponse(summary, name))
		res.TotalSeconds += summary.TotalSeconds
	}
	res.TotalHours = timersService.FormatHours(res.TotalSeconds)

	responses.Success(c, "Team report generated", res)
}

func (h *AdminHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.timerService.Dashboard(c.Request.Context())
	if err != nil {
		h.log.Error("dashboard:failed", "err", err)
		responses.InternalError(c, "internal error")
		return
	}

	responses.Success(c, "Dashboard stats retrieved", DashboardToResponse(dashboard))
}
