package timers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/JorgeSaicoski/microservice-commons/responses"
	"github.com/JorgeSaicoski/microservice-commons/utils"
	"github.com/JorgeSaicoski/timekeeper/internal/api"
	clients "github.com/JorgeSaicoski/timekeeper/internal/client"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
	"github.com/gin-gonic/gin"
)

const (
	adminFallbackName   = "Administrator"
	unknownFallbackName = "Unknown User"
)

type TimerHandler struct {
	timerService *timersService.TimerService
	accounts     clients.AccountDirectory
	log          *slog.Logger
}

func NewTimerHandler(timerService *timersService.TimerService, accounts clients.AccountDirectory) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
		accounts:     accounts,
		log:          slog.Default().With(slog.String("layer", "handler"), slog.String("handler", "TimerHandler")),
	}
}

func (h *TimerHandler) StartTimer(c *gin.Context) {
	var req StartTimerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	principal, exists := api.GetPrincipal(c)
	if !exists {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	log, err := h.timerService.Start(c.Request.Context(), principal.Owner(), req.ToInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses.Created(c, "Timer started", TimeLogToResponse(log))
}

func (h *TimerHandler) PauseTimer(c *gin.Context) {
	h.categoryCommand(c, "Timer paused", h.timerService.Pause)
}

func (h *TimerHandler) ResumeTimer(c *gin.Context) {
	h.categoryCommand(c, "Timer resumed", h.timerService.Resume)
}

func (h *TimerHandler) StopTimer(c *gin.Context) {
	var req StopTimerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	category, ok := resolveCategory(c, req.CategoryRequest)
	if !ok {
		return
	}

	principal, exists := api.GetPrincipal(c)
	if !exists {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	log, err := h.timerService.Stop(c.Request.Context(), principal.Owner(), category, req.ToInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses.Success(c, "Timer stopped", TimeLogToResponse(log))
}

func (h *TimerHandler) GetStatus(c *gin.Context) {
	principal, exists := api.GetPrincipal(c)
	if !exists {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	status, err := h.timerService.Status(c.Request.Context(), principal.Owner())
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses.Success(c, "ok", StatusToResponse(status))
}

// GetReports lists the caller's time logs. Admins may pass userId to read
// the report of a user account instead.
func (h *TimerHandler) GetReports(c *gin.Context) {
	principal, exists := api.GetPrincipal(c)
	if !exists {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	target := principal.Owner()
	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		if !principal.IsAdmin() {
			responses.Forbidden(c, "only admins can read other users' reports")
			return
		}
		target = db.Owner{ID: userID, Role: db.RoleUser}
	}

	window := timersService.ParseWindow(c.Query("filter"))
	report, err := h.timerService.Report(c.Request.Context(), target, window)
	if err != nil {
		h.writeError(c, err)
		return
	}

	name := h.displayName(c, target, principal)
	responses.Success(c, "Report generated", ReportToResponse(report, name))
}

func (h *TimerHandler) displayName(c *gin.Context, target db.Owner, principal api.Principal) string {
	name, err := h.accounts.DisplayName(c.Request.Context(), target)
	if err == nil {
		return name
	}
	if !errors.Is(err, clients.ErrAccountNotFound) {
		h.log.Warn("report:name-lookup-failed", "target", target.ID, "err", err)
	}
	if principal.IsAdmin() {
		return adminFallbackName
	}
	return unknownFallbackName
}

func (h *TimerHandler) categoryCommand(
	c *gin.Context,
	message string,
	run func(ctx context.Context, owner db.Owner, category db.Category) (*db.TimeLog, error),
) {
	var req CategoryRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	category, ok := resolveCategory(c, req)
	if !ok {
		return
	}

	principal, exists := api.GetPrincipal(c)
	if !exists {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	log, err := run(c.Request.Context(), principal.Owner(), category)
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses.Success(c, message, TimeLogToResponse(log))
}

// writeError maps timer errors onto HTTP statuses. Anything unexpected is
// logged and reported as a bare 500.
func (h *TimerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timersService.ErrConflict):
		responses.Conflict(c, err.Error())
	case errors.Is(err, timersService.ErrInvalidState),
		errors.Is(err, timersService.ErrValidation):
		responses.BadRequest(c, err.Error())
	case errors.Is(err, timersService.ErrNotFound):
		responses.NotFound(c, err.Error())
	default:
		h.log.Error("request:failed", "path", c.FullPath(), "err", err)
		responses.InternalError(c, "internal error")
	}
}

// bindOptionalJSON binds the body into dest, accepting an empty body.
func bindOptionalJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		responses.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func resolveCategory(c *gin.Context, req CategoryRequest) (db.Category, bool) {
	if req.Category != "" {
		category := db.Category(utils.TrimAndLower(req.Category))
		if !category.Valid() {
			responses.BadRequest(c, "unknown timer category: use general or project")
			return "", false
		}
		return category, true
	}
	if req.IsProject {
		return db.CategoryProject, true
	}
	return db.CategoryGeneral, true
}
