package timers

import (
	"github.com/JorgeSaicoski/microservice-commons/middleware"
	"github.com/JorgeSaicoski/timekeeper/internal/api"
	clients "github.com/JorgeSaicoski/timekeeper/internal/client"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the timer command, status and report routes.
func RegisterRoutes(router *gin.RouterGroup, auth config.AuthConfig, timerService *timersService.TimerService, accounts clients.AccountDirectory) {
	handler := NewTimerHandler(timerService, accounts)

	timersGroup := router.Group("/timers")
	timersGroup.Use(
		middleware.DefaultLoggingMiddleware(),
		api.AuthMiddleware(auth),
	)
	{
		timersGroup.POST("/start", handler.StartTimer)
		timersGroup.POST("/pause", handler.PauseTimer)
		timersGroup.POST("/resume", handler.ResumeTimer)
		timersGroup.POST("/stop", handler.StopTimer)

		timersGroup.GET("/status", handler.GetStatus)
		timersGroup.GET("/reports", handler.GetReports)
	}
}
