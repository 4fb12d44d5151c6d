package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	authservice "github.com/conmuninw/gameruleTh-Bot/internal/application/auth"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/dispatcher"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/escrow"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/reporting"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/sessionstate"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/database"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/idgen"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/messenger"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/promptpay"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/reportrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/transactionrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/server"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/handlers"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/middleware"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/websocket"
	"github.com/conmuninw/gameruleTh-Bot/internal/worker"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
	"github.com/conmuninw/gameruleTh-Bot/pkg/logger"
)

type repositories struct {
	transactions transactionrepo.ITransactionRepository
	reports      reportrepo.IReportRepository
	admins       adminrepo.IAdminRepository
	db           *database.DBManager
}

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the YAML config file")
	issueToken := pflag.String("issue-token", "", "print an admin console token for this admin id and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lg := logger.NewWithConfig(cfg.Logger)
	log.Logger = lg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to open storage")
	}
	if repos.db != nil {
		defer repos.db.ShutDown()
	}

	clk := clock.Real()
	authSvc := authservice.NewAuthService(cfg.JWT, cfg.Admin, repos.admins, clk, lg)

	if *issueToken != "" {
		token, err := authSvc.IssueToken(ctx, *issueToken)
		if err != nil {
			lg.Fatal().Err(err).Msg("Failed to issue admin token")
		}
		fmt.Fprintln(os.Stdout, token)
		return
	}

	hub := websocket.NewWsHub(lg)
	notifier := messenger.NewClient(cfg.Messenger, lg)
	ids := idgen.New(clk)
	sessions := sessionstate.New(nil, clk, cfg.Session, lg)

	reports := reporting.New(repos.reports, notifier, ids, hub, clk, cfg.Admin, cfg.Escrow, lg)
	escrowSvc := escrow.New(escrow.Dependencies{
		Transactions: repos.transactions,
		Sessions:     sessions,
		Notifier:     notifier,
		Renderer:     promptpay.NewRenderer(cfg.PromptPay, lg),
		Payees:       promptpay.NewPayeeResolver(repos.admins, cfg.Admin.NotifyID(), cfg.PromptPay.PayeeID, lg),
		IDs:          ids,
		Disputes:     reports,
		Publisher:    hub,
		Clock:        clk,
	}, cfg.Admin, cfg.Escrow, lg)

	bot := dispatcher.New(dispatcher.Dependencies{
		Escrow:   escrowSvc,
		Reports:  reports,
		Sessions: sessions,
		Notifier: notifier,
	}, cfg.Admin, cfg.Escrow, lg)

	pool := worker.NewPool(cfg.Server.DispatchQueue, bot, 0, lg)
	pool.Start(cfg.Server.DispatchWorkers)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, lg)

	var background sync.WaitGroup
	runLoop := func(name string, run func(context.Context) error) {
		background.Add(1)
		go func() {
			defer background.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error().Err(err).Str("loop", name).Msg("Background loop stopped")
			}
		}()
	}
	runLoop("ws_hub", hub.Run)
	runLoop("session_sweep", sessions.Run)
	runLoop("retention_sweep", escrowSvc.StartRetentionSweep)
	runLoop("rate_limit_eviction", limiter.Run)

	h := &handlers.Handlers{
		EscrowSvc:  escrowSvc,
		ReportSvc:  reports,
		AdminRepo:  repos.admins,
		Queue:      pool,
		Hub:        hub,
		Middleware: middleware.NewMiddleware(authSvc, lg),
		Limiter:    limiter,
		Logger:     lg,
		Config:     cfg,
		Version:    "1.0.0",
	}
	if repos.db != nil {
		h.DB = repos.db
	}

	srv := server.New(cfg, h, lg)
	if err := srv.Start(ctx); err != nil {
		lg.Error().Err(err).Msg("Server stopped with error")
		stop()
	}

	pool.Shutdown()
	background.Wait()
	lg.Info().Msg("Bot stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (repositories, error) {
	if cfg.Database.Driver == "memory" {
		lg.Warn().Msg("Using in-memory storage; data is lost on restart")
		return repositories{
			transactions: transactionrepo.NewMemory(),
			reports:      reportrepo.NewMemory(),
			admins:       adminrepo.NewMemory(),
		}, nil
	}

	db, err := database.New(&cfg.Database, lg)
	if err != nil {
		return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.ShutDown()
			return repositories{}, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return repositories{
		transactions: transactionrepo.New(db, lg),
		reports:      reportrepo.New(db, lg),
		admins:       adminrepo.New(db, lg),
		db:           db,
	}, nil
}
