package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/app"
	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/attendance/memstore"
	"github.com/dis-cadets/srt-bot/internal/cache"
	"github.com/dis-cadets/srt-bot/internal/config"
	"github.com/dis-cadets/srt-bot/internal/ctxutil"
	"github.com/dis-cadets/srt-bot/internal/db"
	"github.com/dis-cadets/srt-bot/internal/jobs"
	"github.com/dis-cadets/srt-bot/internal/logging"
	"github.com/dis-cadets/srt-bot/internal/observability"
)

func newServeCmd() *cobra.Command {
	var memory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with long polling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep data in memory instead of Postgres")
	return cmd
}

func serve(parent context.Context, memory bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(!memory); err != nil {
		return err
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer lg.Closer()
	log := lg.Base

	if _, err := maxprocs.Set(maxprocs.Logger(lg.Sugar.Infof)); err != nil {
		log.Warn("maxprocs", zap.Error(err))
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		log.Warn("sentry disabled", zap.Error(err))
	} else {
		defer flush()
	}

	ctxutil.SetDBTimeout(cfg.DBTimeout)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store  attendance.Store
		pinger app.Pinger
	)
	if memory {
		log.Warn("using in-memory store, data is lost on restart")
		store = memstore.New()
	} else {
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()
		if err := db.Migrate(ctx, database, "up"); err != nil {
			return err
		}
		pg := db.NewStore(database)
		store, pinger = pg, pg
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		store = cache.New(store, rdb, cfg.ActivityCacheTTL, log)
	}

	engine := attendance.NewEngine(cfg.CutoffHour, cfg.Location)
	roster := attendance.NewRoster(store, engine, log)
	conv := app.NewConversation(app.Deps{
		Registry:   attendance.NewRegistry(store, log),
		Ledger:     attendance.NewLedger(store, engine, log),
		Roster:     roster,
		Activities: store,
		Engine:     engine,
		Scope:      cfg.RosterScope,
		IsAdmin:    cfg.IsAdmin,
		Log:        log,
	})

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Env != "prod"
	log.Info("bot started",
		zap.String("username", bot.Self.UserName),
		zap.String("version", version),
		zap.Bool("memory", memory),
		zap.String("roster_scope", string(cfg.RosterScope)),
	)

	app.StartHTTP(ctx, cfg.HTTPAddr, pinger, log)

	runner := jobs.New(ctx, log)
	runner.Every(cfg.RosterGaugeInterval, jobs.RosterGaugeJob, jobs.RosterGauge(roster))
	defer func() {
		stop()
		runner.Wait()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	app.NewDispatcher(bot, conv, log).Run(ctx, updates)
	log.Info("shutting down")
	return nil
}
