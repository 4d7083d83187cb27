package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/deskops/support-desk/internal/api/http"
	"github.com/deskops/support-desk/internal/api/http/handlers"
	"github.com/deskops/support-desk/internal/auth"
	"github.com/deskops/support-desk/internal/cache"
	"github.com/deskops/support-desk/internal/events"
	"github.com/deskops/support-desk/internal/observability"
	"github.com/deskops/support-desk/internal/persistence"
	"github.com/deskops/support-desk/internal/service"
	"github.com/deskops/support-desk/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.postgres.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartEventWorker(dispatcher, metrics, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      rt.store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	tagService := service.NewTagService(service.TagDependencies{
		Store:      rt.store,
		Cache:      cache.NewTagCache(redis.Handle(), cfg.Redis.TagCacheTTL),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	customerService := service.NewCustomerService(rt.store, logger)

	if cfg.Postgres.UsesMemoryStore() {
		if _, err := tagService.SeedDefaultTags(ctx); err != nil {
			logger.Warn("failed to seed default tags", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, rt.postgres, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService, cfg.Listing.DefaultPerPage),
		Tags:           handlers.NewTagsHandler(tagService),
		Customers:      handlers.NewCustomersHandler(customerService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, rt.store.Users()),
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
	}

	return app.Shutdown()
}
