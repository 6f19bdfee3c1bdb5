package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlevchenko/riskscan/internal/config"
	"github.com/mlevchenko/riskscan/internal/handler"
	"github.com/mlevchenko/riskscan/internal/repository"
	"github.com/mlevchenko/riskscan/internal/service"
	"github.com/mlevchenko/riskscan/internal/tiktok"
	"github.com/mlevchenko/riskscan/internal/utils"
	"github.com/mlevchenko/riskscan/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	tokenManager := utils.NewConnectionTokenManager(
		cfg.Session.Secret,
		cfg.Session.CookieExpiry.Duration,
	)

	sessions := service.NewSessionStore(cfg.Session.PKCETTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	remote := tiktok.NewClient(cfg.TikTok)

	connectService := service.NewConnectService(cfg.TikTok, sessions, remote, repos.Identity)
	ingestService := service.NewIngestService(repos.Identity, repos.Content, remote)
	contentService := service.NewContentService(repos.Content)

	connectHandler := handler.NewConnectHandler(connectService, tokenManager, cfg.TikTok)
	ingestHandler := handler.NewIngestHandler(ingestService, tokenManager)
	contentHandler := handler.NewContentHandler(contentService)
	scanHandler := handler.NewScanHandler()

	router := gin.Default()
	router.Use(otelgin.Middleware("riskscan"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, connectHandler, ingestHandler, contentHandler, scanHandler, rateLimiter, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	connectHandler *handler.ConnectHandler,
	ingestHandler *handler.IngestHandler,
	contentHandler *handler.ContentHandler,
	scanHandler *handler.ScanHandler,
	rateLimiter *service.RateLimiter,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/tiktok")
		{
			auth.GET("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				connectHandler.Login,
			)
			auth.GET("/callback", connectHandler.Callback)
			auth.GET("/debug", connectHandler.Debug)
		}

		api.POST("/ingest",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			ingestHandler.Ingest,
		)

		api.GET("/content", contentHandler.List)
		api.GET("/content/:external_item_id", contentHandler.Get)

		api.POST("/posts/scan",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			scanHandler.Scan,
		)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
