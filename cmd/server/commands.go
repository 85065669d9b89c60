package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JorgeSaicoski/microservice-commons/middleware"
	"github.com/JorgeSaicoski/pgconnect"
	"github.com/JorgeSaicoski/timekeeper/internal/api/admin"
	"github.com/JorgeSaicoski/timekeeper/internal/api/timers"
	clients "github.com/JorgeSaicoski/timekeeper/internal/client"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/JorgeSaicoski/timekeeper/internal/database"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/JorgeSaicoski/timekeeper/internal/server"
	timersService "github.com/JorgeSaicoski/timekeeper/internal/services/timers"
	"github.com/JorgeSaicoski/timekeeper/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// app is what every subcommand shares once configuration is loaded.
type app struct {
	cfg  *config.Config
	conn *pgconnect.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "timekeeper",
		Short:         "Time tracking service with general and project timers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(os.Stdout, cfg.LogLevel))
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSweepCmd(a),
	)
	return root
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the estimate sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.migrate(); err != nil {
				return err
			}

			shutdown, err := telemetry.Setup(cmd.Context(), a.cfg.Telemetry, a.cfg.ServiceName, a.cfg.ServiceVersion)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Warn("telemetry:shutdown-failed", "err", err)
				}
			}()

			svc, err := a.timerService()
			if err != nil {
				return err
			}
			accounts := clients.NewAccountHTTPClient(a.cfg.Accounts.BaseURL, a.cfg.Accounts.Timeout)
			sweeper := timersService.NewSweeper(svc, a.cfg.Timers.SweepInterval)

			srv := server.New(server.Options{
				Config: a.cfg,
				SetupRoutes: func(router *gin.Engine, cfg *config.Config) {
					setupRoutes(router, cfg, svc, accounts)
				},
				HealthCheckers: map[string]middleware.HealthChecker{
					"database": middleware.DatabaseHealthChecker(a.conn.Ping),
				},
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			swept := make(chan struct{})
			go func() {
				defer close(swept)
				sweeper.Run(ctx)
			}()

			err = srv.Start()
			cancel()
			<-swept
			return err
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Stop every running project timer whose estimate is used up, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			svc, err := a.timerService()
			if err != nil {
				return err
			}
			stopped, err := svc.ExpireOverdue(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "stopped %d timer(s)\n", stopped)
			return err
		},
	}
}

func setupRoutes(router *gin.Engine, cfg *config.Config, svc *timersService.TimerService, accounts clients.AccountDirectory) {
	api := router.Group("/api")
	timers.RegisterRoutes(api, cfg.Auth, svc, accounts)
	admin.RegisterRoutes(api, cfg.Auth, svc, accounts)
}

func (a *app) connect() error {
	if a.conn != nil {
		return nil
	}
	conn, err := database.Connect(a.cfg.DatabaseConfig)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.conn = conn
	return nil
}

func (a *app) migrate() error {
	if err := a.connect(); err != nil {
		return err
	}
	return database.Migrate(a.conn, &db.TimeLog{})
}

func (a *app) timerService() (*timersService.TimerService, error) {
	loc, err := a.cfg.Timers.Location()
	if err != nil {
		return nil, err
	}
	return timersService.NewTimerService(a.conn, timersService.WithLocation(loc)), nil
}
