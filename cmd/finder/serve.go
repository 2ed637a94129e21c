package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpDelivery "github.com/instafinder/backend/internal/delivery/http"
	"github.com/instafinder/backend/internal/infrastructure/analysis"
	"github.com/instafinder/backend/internal/infrastructure/cache"
	"github.com/instafinder/backend/internal/render"
	"github.com/instafinder/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd runs the web page and its JSON endpoints
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the product finder page",
	Long: `Starts the HTTP server. Each browser gets its own session; a submitted
URL is forwarded to the analysis service and the page refreshes until the
result arrives.

With proxy.enabled, /api/* is forwarded to proxy.target with the /api prefix
removed.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting instagram product finder",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	client := analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.EndpointPath, analysis.Options{
		Timeout:       cfg.Analysis.Timeout,
		RatePerSecond: cfg.Analysis.RatePerSecond,
		Logger:        logger,
	})
	logger.Info("analysis service configured",
		zap.String("endpoint", client.Endpoint()),
		zap.Duration("timeout", cfg.Analysis.Timeout),
		zap.Float64("rate_per_second", cfg.Analysis.RatePerSecond))

	var service *usecase.SubmissionService
	store := cache.NewMemoryStore(cfg.Session.CleanupInterval, cache.WithEvictFunc(func(key string, value interface{}) {
		service.OnEvict(key, value)
	}))
	defer store.Close()

	service = usecase.NewSubmissionService(store, client, logger, usecase.SubmissionServiceConfig{
		SessionTTL: cfg.Session.TTL,
	})

	handler := httpDelivery.NewHandler(service, logger, httpDelivery.HandlerConfig{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Server.Environment == "production",
		Render: render.Options{
			FallbackImage:   cfg.Render.FallbackImage,
			RefreshInterval: cfg.Render.RefreshInterval,
		},
	})

	router, err := httpDelivery.SetupRouter(cfg, handler, logger)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}
	if cfg.Proxy.Enabled {
		logger.Info("dev proxy enabled", zap.String("target", cfg.Proxy.Target))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func shutdownTimeout() time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
