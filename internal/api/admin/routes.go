package admin

import (
	"github.com/JorgeSaicoski/microservice-commons/middleware"
	"github.com/JorgeSaicoski/timekeeper/internal/api"
	clients "github.com/JorgeSaicoski/timekeeper/internal/client"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the admin-only reporting routes.
func RegisterRoutes(router *gin.RouterGroup, auth config.AuthConfig, timerService *timersService.TimerService, accounts clients.AccountDirectory) {
	handler := NewAdminHandler(timerService, accounts)

	adminGroup := router.Group("/admin")
	adminGroup.Use(
		middleware.DefaultLoggingMiddleware(),
		api.AuthMiddleware(auth),
		api.RequireRole(db.RoleAdmin),
	)
	{
		adminGroup.GET("/reports", handler.GetTeamReport)
		adminGroup.GET("/dashboard", handler.GetDashboard)
	}
}
