package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callcenter-relance/internal/actions"
	"callcenter-relance/internal/audit"
	"callcenter-relance/internal/auth"
	"callcenter-relance/internal/config"
	"callcenter-relance/internal/flow"
	"callcenter-relance/internal/httpapi"
	"callcenter-relance/internal/leads"
	"callcenter-relance/internal/reporting"
	"callcenter-relance/pkg/logger"
	"callcenter-relance/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Error("timezone init failed", "err", err)
		os.Exit(1)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services over Postgres repos.
	leadSvc := leads.NewService(leads.NewPostgresRepo(db), loc)
	actionSvc := actions.NewService(actions.NewPostgresRepo(db), loc)
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db), loc)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	// No dialing integration is wired; numbers arrive via the phone
	// capture step.
	flowSvc := flow.NewService(
		flow.NewLeadCreator(leadSvc),
		flow.NewActionRecorder(actionSvc),
		flow.NewFollowUpStore(actionSvc),
		nil,
		loc,
	)

	sessions := httpapi.NewSessionRegistry()
	go pruneSessions(rootCtx, log, sessions)

	h := httpapi.Handlers{
		Auth:      authManager,
		Leads:     leadSvc,
		Actions:   actionSvc,
		Reporting: reportSvc,
		Flow:      flowSvc,
		Audit:     auditSvc,
		Sessions:  sessions,
		Guard:     httpapi.NewSubmitGuard(rdb, 10*time.Second),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// pruneSessions drops abandoned flow sessions so the registry cannot
// grow without bound.
func pruneSessions(ctx context.Context, log *slog.Logger, sessions *httpapi.SessionRegistry) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Prune(30 * time.Minute); n > 0 {
				log.Info("pruned idle flow sessions", "count", n)
			}
		}
	}
}
