// Command server runs the factory statement reconciliation service: a
// read-only HTTP API that joins the order-detail and factory-ledger
// upstreams and returns reconciled period statements.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	statementapp "github.com/garment-erp/statement/internal/application/statement"
	"github.com/garment-erp/statement/internal/infrastructure/config"
	"github.com/garment-erp/statement/internal/infrastructure/logger"
	"github.com/garment-erp/statement/internal/infrastructure/upstream"
	"github.com/garment-erp/statement/internal/interfaces/http/handler"
	"github.com/garment-erp/statement/internal/interfaces/http/middleware"
	"github.com/garment-erp/statement/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer log.Sync() //nolint:errcheck

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	orderClient := upstream.NewOrderClient(upstream.ClientConfig{
		BaseURL: cfg.Upstream.OrderBaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	ledgerClient := upstream.NewLedgerClient(upstream.ClientConfig{
		BaseURL: cfg.Upstream.LedgerBaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	service := statementapp.NewStatementService(orderClient, ledgerClient, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	systemHandler := handler.NewSystemHandler()
	engine.GET("/healthz", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewStatementHandler(service))
	r.Setup()

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("starting server",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("port", cfg.App.Port),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
