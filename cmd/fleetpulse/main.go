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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetpulse/fleetpulse/internal/config"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/handlers"
	"github.com/fleetpulse/fleetpulse/internal/jobs"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/middleware"
	"github.com/fleetpulse/fleetpulse/internal/notify"
	"github.com/fleetpulse/fleetpulse/internal/seed"
	"github.com/fleetpulse/fleetpulse/internal/services"
	"github.com/fleetpulse/fleetpulse/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fleetpulse",
		Short:         "Device fleet monitoring API",
		Version:       handlers.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			zap.L().Info("database migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var (
		force       bool
		seedValue   uint64
		profilePath string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with generated demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			if profilePath == "" {
				profilePath = app.cfg.SeedProfile
			}
			var profile *seed.Profile
			if profilePath != "" {
				profile, err = seed.LoadProfile(profilePath)
			} else {
				profile, err = seed.DefaultProfile()
			}
			if err != nil {
				return fmt.Errorf("load seed profile: %w", err)
			}

			summary, err := seed.New(app.db, profile, seedValue).Run(ctx, force)
			if err != nil {
				return err
			}
			if summary.Skipped {
				zap.L().Info("database already seeded, use --force to reseed")
				return nil
			}
			zap.L().Info("database seeded",
				zap.Int("customers", summary.Customers),
				zap.Int("devices", summary.Devices),
				zap.Int("telemetry", summary.Telemetry),
				zap.Int("tickets", summary.Tickets),
				zap.Int("events", summary.Events),
				zap.Int("analytics", summary.Analytics),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Empty every table before seeding")
	cmd.Flags().Uint64Var(&seedValue, "seed", 1, "Random seed for generated data")
	cmd.Flags().StringVar(&profilePath, "profile", "", "YAML seed profile (defaults to SEED_PROFILE or the built-in profile)")
	return cmd
}

// app is the state shared by every command
type app struct {
	cfg         *config.Config
	db          *gorm.DB
	restoreLogs func()
}

// bootstrap loads configuration, installs the logger, connects to the
// database and runs migrations.
func bootstrap() (*app, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	restore := logging.Install(log)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		zap.L().Warn("could not load .env file", zap.Error(envErr))
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger.Warn)
	if err != nil {
		restore()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		restore()
		return nil, fmt.Errorf("run database migrations: %w", err)
	}

	return &app{cfg: cfg, db: db, restoreLogs: restore}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		zap.L().Warn("close database", zap.Error(err))
	}
	_ = zap.L().Sync()
	a.restoreLogs()
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()
	cfg := app.cfg

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}

	var notifier notify.Notifier
	if cfg.SlackEnabled() {
		slackNotifier, err := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel)
		if err != nil {
			return fmt.Errorf("create slack notifier: %w", err)
		}
		notifier = slackNotifier
		zap.L().Info("slack notifications enabled", zap.String("channel", cfg.SlackChannel))
	} else {
		zap.L().Info("slack notifications disabled, notifications are logged")
	}

	eventService := services.NewEventService(app.db)
	customerService := services.NewCustomerService(app.db)
	deviceService := services.NewDeviceService(app.db, eventService, notifier)
	ticketService := services.NewTicketService(app.db, eventService)
	analyticsService := services.NewAnalyticsService(app.db)

	httpHandler := handlers.NewHTTPHandler(app.db)
	apiHandler := handlers.NewAPIHandler(customerService, deviceService, ticketService, eventService, analyticsService)

	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	apiHandler.SetupRoutes(mux)

	// Metrics must see the mux directly so r.Pattern is set for its labels
	handler := middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins...).Wrap(
		middleware.RequestIDMiddleware(
			middleware.AccessLog(
				tp.Middleware(
					middleware.Metrics(mux),
				),
			),
		),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	jobsDone := make(chan struct{})
	if cfg.RollupInterval > 0 {
		rollup := jobs.NewAnalyticsRollup(analyticsService, eventService)
		go func() {
			rollup.Start(cfg.RollupInterval, ctx.Done())
			close(jobsDone)
		}()
		zap.L().Info("analytics rollup scheduled", zap.Duration("interval", cfg.RollupInterval))
	} else {
		close(jobsDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("starting HTTP server", zap.String("addr", httpServer.Addr), zap.String("version", handlers.Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("received shutdown signal, cleaning up")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("shut down HTTP server", zap.Error(err))
	}
	<-jobsDone
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("flush traces", zap.Error(err))
	}

	zap.L().Info("shutdown complete")
	return runErr
}
