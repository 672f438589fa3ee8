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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/cmd/cli/commands"
	"github.com/jakechorley/catering-ops/internal/config"
	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/clients/gmailclient"
	"github.com/jakechorley/catering-ops/pkg/core/assignee"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/core/services"
	"github.com/jakechorley/catering-ops/pkg/notify"
	"github.com/jakechorley/catering-ops/pkg/postgres"
	"github.com/jakechorley/catering-ops/pkg/utils"
	"github.com/jakechorley/catering-ops/pkg/utils/logging"
)

var (
	env         string
	providerID  string
	userID      string
	metricsAddr string
	verbose     bool
	noColor     bool

	app      = &commands.AppContext{Out: os.Stdout}
	database *postgres.DB
	closeLog func()
	metrics  *http.Server
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:           "catering-ops",
		Short:         "Catering Ops CLI - Manage shifts, staff and service areas",
		Long:          `A CLI tool for catering providers to schedule shifts, manage their team and workers, and review business metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	flags.StringVar(&providerID, "provider", "", "Provider id to act for (overrides session.providerID)")
	flags.StringVar(&userID, "user-id", "", "Signed-in user id (overrides session.userID)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides metricsAddr)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging on the console")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(
		commands.ShiftsCmd(app),
		commands.TeamCmd(app),
		commands.InvitationsCmd(app),
		commands.WorkersCmd(app),
		commands.LocationsCmd(app),
		commands.DashboardCmd(app),
		commands.MigrateCmd(app),
		commands.InteractiveCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, cache, mutation controller and mailer
func initApp(cmd *cobra.Command) error {
	var err error

	app.Logger, closeLog, err = logging.InitLogger(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := app.Logger
	logger.Debug("Starting application", zap.String("command", cmd.CommandPath()))

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Configuration loaded successfully")

	app.Session = model.Session{ProviderID: app.Cfg.Session.ProviderID, UserID: app.Cfg.Session.UserID}
	if providerID != "" {
		app.Session.ProviderID = providerID
	}
	if userID != "" {
		app.Session.UserID = userID
	}
	app.Color = !noColor

	if metricsAddr == "" {
		metricsAddr = app.Cfg.MetricsAddr
	}
	if metricsAddr != "" {
		startMetricsServer(metricsAddr, logger)
	}

	database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Cfg.MaxDBConns, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = database
	app.Migrator = database

	app.Cache = cache.NewQueryCache(app.Cfg.CacheStaleTime(), logger)
	resolver := assignee.NewResolver(database, logger, app.Cfg.MaxConcurrentLookups)
	services.RegisterFetchers(app.Cache, database, resolver, logger)

	notifier := notify.Multi{notify.NewConsole(os.Stdout, app.Color), notify.NewLog(logger)}
	app.Controller = optimistic.NewController(app.Cache, notifier, logger)

	if app.Cfg.Invitations.SendEmails && commands.NeedsMailer(cmd) {
		mailer, err := newMailer(logger)
		if err != nil {
			return err
		}
		app.Mailer = mailer
	}

	logger.Debug("Application initialized",
		zap.String("provider_id", app.Session.ProviderID),
		zap.Bool("emails", app.Mailer != nil))
	return nil
}

func newMailer(logger *zap.Logger) (*gmailclient.Client, error) {
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, err
	}

	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, env, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	client, err := gmailclient.NewClient(app.Ctx, oauthCfg, token, app.Cfg.Invitations, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	logger.Debug("Gmail client initialized successfully")
	return client, nil
}

func startMetricsServer(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))
}

func shutdown() {
	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		metrics.Shutdown(ctx)
		cancel()
		metrics = nil
	}
	if database != nil {
		database.Close()
		database = nil
	}
	if closeLog != nil {
		closeLog()
		closeLog = nil
	}
}
