package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/ozo-extended/ozo-agent/internal/config"
	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	appHTTP "github.com/ozo-extended/ozo-agent/internal/handler/http"
	"github.com/ozo-extended/ozo-agent/internal/pkg/browser"
	"github.com/ozo-extended/ozo-agent/internal/pkg/cron"
	"github.com/ozo-extended/ozo-agent/internal/pkg/database"
	"github.com/ozo-extended/ozo-agent/internal/pkg/flight"
	"github.com/ozo-extended/ozo-agent/internal/pkg/holiday"
	"github.com/ozo-extended/ozo-agent/internal/pkg/jwt"
	"github.com/ozo-extended/ozo-agent/internal/pkg/netcheck"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
	"github.com/ozo-extended/ozo-agent/internal/portal"
	"github.com/ozo-extended/ozo-agent/internal/repository/jsonfile"
	"github.com/ozo-extended/ozo-agent/internal/repository/postgresql"
	"github.com/ozo-extended/ozo-agent/internal/repository/sqlite"
	attendanceService "github.com/ozo-extended/ozo-agent/internal/service/attendance"
	serviceAuth "github.com/ozo-extended/ozo-agent/internal/service/auth"
	notificationService "github.com/ozo-extended/ozo-agent/internal/service/notification"
	settingsService "github.com/ozo-extended/ozo-agent/internal/service/settings"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent: scheduler, portal automation and the local API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ozo-agent"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.App.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// Tokens do not survive a restart; clients request a new one.
		if jwtSecret, err = randomHex(32); err != nil {
			return err
		}
	}
	jwtService := jwt.NewJWTService(jwtSecret, cfg.JWT.AccessExpiration)

	secretHash, err := clientSecretHash(cfg)
	if err != nil {
		return err
	}
	authService := serviceAuth.NewAuthService(secretHash, jwtService)

	historyRepo, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	urls, err := portal.NewURLs(cfg.Portal.BaseURL)
	if err != nil {
		return err
	}
	launcher := browser.NewPlaywrightLauncher(browser.PlaywrightConfig{
		ProfileDir: cfg.ProfileDir(),
		Channel:    cfg.Portal.BrowserChannel,
	})
	opener := portal.NewOpener(launcher, urls)

	hub := sse.NewHub()
	notifService := notificationService.NewNotificationService(hub, notificationService.Config{})
	defer notifService.Stop()

	coord := flight.NewCoordinator()
	network := netcheck.NewHTTPChecker(cfg.Portal.BaseURL, netcheck.DefaultTimeout)

	settingsSvc := settingsService.NewSettingsService(
		jsonfile.NewSettingsRepository(cfg.SettingsPath()),
		opener,
		coord,
		network,
	)

	store := attendanceService.NewStore(hub)
	attendanceSvc := attendanceService.NewAttendanceService(
		store,
		opener,
		coord,
		settingsSvc,
		notifService,
		network,
		historyRepo,
		attendanceService.Config{},
	)
	dailyReset := attendanceService.NewDailyReset(
		attendanceSvc,
		settingsSvc,
		holiday.New(cfg.Holiday.Calendar, cfg.Holiday.Dates),
		attendanceService.DailyResetConfig{MinHour: cfg.Scheduler.AutoClockInMinHour},
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, dailyReset, cron.JobsConfig{
		FetchInterval:       cfg.Scheduler.FetchInterval,
		ResetBuffer:         cfg.Scheduler.ResetBuffer,
		ResumeCheckInterval: cfg.Scheduler.ResumeCheckInterval,
		ResumeDelay:         cfg.Scheduler.ResumeDelay,
	}).RegisterJobs(scheduler)

	// New credentials take effect on the next fetch instead of half an hour later.
	settingsSvc.OnSave(func(settings.Settings) {
		scheduler.Reset(cron.JobRefreshWorkInfo)
	})

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Logger:         logger,
		},
		jwtService,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(authService),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Settings:   appHTTP.NewSettingsHandler(settingsSvc),
			System:     appHTTP.NewSystemHandler(network, notifService),
			Events:     appHTTP.NewEventsHandler(hub, notifService, jwtService),
		},
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end with the signal context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", "http://"+cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	return nil
}

// clientSecretHash prefers CLIENT_SECRET_HASH and falls back to the generated secret file.
func clientSecretHash(cfg *config.Config) (string, error) {
	if cfg.Auth.ClientSecretHash != "" {
		return cfg.Auth.ClientSecretHash, nil
	}
	secret, err := serviceAuth.LoadOrCreateSecret(cfg.SecretPath())
	if err != nil {
		return "", err
	}
	return serviceAuth.HashSecret(secret)
}

// openHistory picks PostgreSQL when HISTORY_DATABASE_URL is set and the local SQLite file otherwise.
func openHistory(ctx context.Context, cfg *config.Config) (attendance.HistoryRepository, func(), error) {
	if cfg.History.DatabaseURL != "" {
		db, err := database.NewPostgreSQLDB(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to history database: %w", err)
		}
		slog.Info("Attendance history stored in PostgreSQL")
		return postgresql.NewHistoryRepository(db, cfg.History.Retention), db.Close, nil
	}

	db, err := database.OpenSQLite(cfg.HistoryDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	slog.Info("Attendance history stored in SQLite", "path", cfg.HistoryDBPath())
	return sqlite.NewHistoryRepository(db, cfg.History.Retention), func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close history database", "error", err)
		}
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
