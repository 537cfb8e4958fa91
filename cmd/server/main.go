package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/idtoken"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	taskUC "github.com/fastygo/taskboard/usecase/task"
	teamUC "github.com/fastygo/taskboard/usecase/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(context.Background(), cfg.Context.ShutdownTimeout, zapLogger)
	manager.ListenSignals()
	appCtx := manager.Context()

	mon := monitor.New(10*time.Second, zapLogger)

	taskRepo, timelineRepo := openTaskStore(appCtx, cfg, manager, mon, zapLogger)
	sessionRepo, teamRepo := openTeamStore(appCtx, cfg, manager, mon, zapLogger)

	verifier, err := idtoken.NewHMAC(cfg.Identity.Secret, cfg.Identity.Issuer)
	if err != nil {
		zapLogger.Fatal("identity verifier unavailable", zap.Error(err))
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	authUseCase := authUC.New(verifier, sessionRepo, cfg.Identity.SessionTTL, zapLogger)
	taskUseCase := taskUC.New(taskRepo, timelineRepo, zapLogger)
	teamUseCase := teamUC.New(teamRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Timeline: apiHandler.NewTimelineHandler(taskUseCase, ctxAdapter, zapLogger),
		Team:     apiHandler.NewTeamHandler(teamUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	middlewares := []router.Middleware{
		middleware.AccessLog(zapLogger),
		middleware.CORS(cfg.HTTP.CORSOrigin),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = middleware.MetricsHandler()
		middlewares = append(middlewares, middleware.Metrics)
	}

	requireIdentity := middleware.RequireIdentity(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	routes := router.New(handlers, requireIdentity)

	server := &fasthttp.Server{
		Handler:      router.Chain(routes, middlewares...),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func(ctx context.Context) error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openTaskStore(
	ctx context.Context,
	cfg *config.Config,
	manager *lifecycle.Manager,
	mon *monitor.Monitor,
	zapLogger *zap.Logger,
) (repository.TaskRepository, repository.TimelineRepository) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		mon.Register("postgresql", 3*time.Second, pool.Ping)
		return postgres.NewTaskRepository(pool), postgres.NewTimelineRepository(pool)

	default:
		db, err := sqliteInfra.Open(ctx, cfg.Storage.SQLitePath, zapLogger)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(context.Context) error {
			return db.Close()
		})
		mon.Register("sqlite", 3*time.Second, db.PingContext)
		return sqliteRepo.NewTaskRepository(db), sqliteRepo.NewTimelineRepository(db)
	}
}

// openTeamStore connects Redis, or keeps teams and sessions in process when REDIS_URL is empty.
func openTeamStore(
	ctx context.Context,
	cfg *config.Config,
	manager *lifecycle.Manager,
	mon *monitor.Monitor,
	zapLogger *zap.Logger,
) (repository.SessionRepository, repository.TeamRepository) {
	if cfg.Redis.URL == "" {
		zapLogger.Warn("REDIS_URL is empty, sessions and teams are kept in memory")
		return memory.NewSessionRepository(cfg.Identity.SessionTTL), memory.NewTeamRepository()
	}

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})
	mon.Register("redis", 3*time.Second, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	return redisRepo.NewSessionRepository(redisClient, cfg.Identity.SessionTTL), redisRepo.NewTeamRepository(redisClient)
}
