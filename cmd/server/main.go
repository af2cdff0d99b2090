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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hrms/internal/db"
	"hrms/internal/domain/attendance"
	"hrms/internal/domain/audit"
	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/org"
	"hrms/internal/domain/payroll"
	"hrms/internal/platform/config"
	"hrms/internal/platform/crypto"
	"hrms/internal/platform/email"
	"hrms/internal/platform/jobs"
	"hrms/internal/transport/http/api"
	attendancehandler "hrms/internal/transport/http/handlers/attendance"
	audithandler "hrms/internal/transport/http/handlers/audit"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	notificationshandler "hrms/internal/transport/http/handlers/notifications"
	orghandler "hrms/internal/transport/http/handlers/org"
	payrollhandler "hrms/internal/transport/http/handlers/payroll"
	sessionhandler "hrms/internal/transport/http/handlers/session"
	"hrms/internal/transport/http/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, db.SeedParams{
			TenantName:    cfg.SeedTenantName,
			AdminEmail:    cfg.SeedAdminEmail,
			AdminPassword: cfg.SeedAdminPassword,
		}); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("invalid data encryption key", "err", err)
		os.Exit(1)
	}
	if !cryptoSvc.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, salaries stored unencrypted")
	}

	authStore := domainauth.NewStore(pool)
	authService := domainauth.NewService(authStore, cfg.JWTSecret)
	orgStore := org.NewStore(pool, cryptoSvc)
	attendanceStore := attendance.NewStore(pool)
	auditService := audit.NewService(pool)
	notificationService := notifications.NewService(
		notifications.NewStore(pool), email.NewMailer(cfg, pool))

	leaveService := leave.NewService(leave.NewStore(pool), leaveDirectory{orgStore}, authStore)
	payrollService := payroll.NewService(
		payroll.NewStore(pool), payrollDirectory{orgStore}, attendanceStore, authStore)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, r, map[string]string{"status": "ok"})
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			api.Fail(w, r, http.StatusServiceUnavailable, "not_ready", "database unreachable")
			return
		}
		api.Success(w, r, map[string]string{"status": "ready"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		sessionhandler.NewHandler(authService).Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTSecret))

			leavehandler.NewHandler(leaveService, notificationService, auditService).Register(r, authStore)
			payrollhandler.NewHandler(payrollService, notificationService, auditService).Register(r, authStore)
			attendancehandler.NewHandler(attendanceStore, orgStore, authStore).Register(r, authStore)
			orghandler.NewHandler(orgStore).Register(r, authStore)
			notificationshandler.NewHandler(notificationService).Register(r)
			audithandler.NewHandler(auditService).Register(r, authStore)
		})
	})

	runner := jobs.NewRunner(pool, orgStore, payrollService, cfg.PayrollDraftInterval)
	go runner.Start(ctx)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "err", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
