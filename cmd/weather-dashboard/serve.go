package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
)

type ServeCmd struct {
	NoScheduler bool `help:"Disable the background refresher."`
}

func (s *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cli.Provider)
	if err != nil {
		return err
	}
	defer a.Close()

	if !s.NoScheduler {
		sched := scheduler.New(a.cfg.Queries(), a.cfg.Scheduler.Interval, cli.Provider, a.service, a.logger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           a.cfg.Server.ReadTimeout,
		WriteTimeout:          a.cfg.Server.WriteTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:     a.service,
		History:     a.history,
		Preferences: a.preferences,
		Proxy:       a.proxy,
		Logger:      a.logger.Named("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", a.cfg.ServerAddr()), zap.Strings("providers", a.service.Providers()))
		errCh <- app.Listen(a.cfg.ServerAddr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
