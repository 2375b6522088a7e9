package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/config"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	appHTTP "github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/repository/postgresql"
	accessService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/access"
	serviceAuth "github.com/cmlabs-hris/timetrack-backend-go/internal/service/auth"
	clockService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/clock"
	kpiService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/kpi"
	planningService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/planning"
	teamService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/team"
	userService "github.com/cmlabs-hris/timetrack-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timetrack"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	response.SetExposeDetails(cfg.ExposeErrorDetails())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var scopeCache access.ScopeCache
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		scopeCache = cache.NewScopeCache(rdb, cfg.Redis.Prefix, cfg.Redis.ScopeTTL)
		slog.Info("manager scope cache enabled", "ttl", cfg.Redis.ScopeTTL)
	}

	loc := cfg.Location()

	userRepo := postgresql.NewUserRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	clockRepo := postgresql.NewClockRepository(db)
	planningRepo := postgresql.NewPlanningRepository(db)
	kpiRepo := postgresql.NewKPIRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	resolver := accessService.NewResolver(teamRepo, scopeCache)
	evaluator := accessService.NewEvaluator(teamRepo, resolver)
	engine := kpiService.NewMetricsEngine(clockRepo, planningRepo, loc)

	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	usersSvc := userService.NewUserService(userRepo, evaluator)
	teamsSvc := teamService.NewTeamService(teamRepo, userRepo, evaluator)
	clocksSvc := clockService.NewClockService(clockRepo, userRepo, planningRepo, evaluator, transactor, loc)
	planningSvc := planningService.NewPlanningService(planningRepo, userRepo, evaluator, transactor, loc)
	kpisSvc := kpiService.NewKPIService(kpiRepo, userRepo, teamRepo, engine, evaluator, loc, cfg.KPI.Workers)

	router := appHTTP.NewRouter(logger, cfg.App.AllowedOrigins, JWTService, appHTTP.Handlers{
		Auth:     appHTTP.NewAuthHandler(authService),
		User:     appHTTP.NewUserHandler(usersSvc),
		Team:     appHTTP.NewTeamHandler(teamsSvc),
		Clock:    appHTTP.NewClockHandler(clocksSvc, loc),
		Planning: appHTTP.NewPlanningHandler(planningSvc, loc),
		KPI:      appHTTP.NewKPIHandler(kpisSvc),
	})

	scheduler := cron.NewScheduler()
	cron.NewLatenessJobs(userRepo, loc).RegisterJobs(scheduler, cfg.Cron.LatenessReconcileInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "timezone", loc.String())
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
