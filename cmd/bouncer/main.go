package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"infinite-experiment/bouncer/internal/api"
	"infinite-experiment/bouncer/internal/commands"
	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/config"
	"infinite-experiment/bouncer/internal/db"
	"infinite-experiment/bouncer/internal/db/repositories"
	"infinite-experiment/bouncer/internal/discord"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	"infinite-experiment/bouncer/internal/routes"
	"infinite-experiment/bouncer/internal/services"
	"infinite-experiment/bouncer/internal/state"
	"infinite-experiment/bouncer/internal/workers"

	"golang.org/x/sync/errgroup"
)

const usage = `Usage: bouncer <command> [flags]

Commands:
  start    connect to Discord and start moderating

Run 'bouncer start -h' for the flags of start.
`

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "start":
		if err := start(os.Args[2:]); err != nil {
			log.Fatalf("❌ %v", err)
		}
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func start(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	defaultConfig := os.Getenv("CONFIG")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	configPath := fs.String("config", defaultConfig, "path to the YAML config file (env CONFIG)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Close()

	logging.Info("Bouncer starting up",
		"environment", cfg.Env,
		"config", *configPath,
		"guild_id", cfg.Discord.GuildID,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	reportingDB, err := db.OpenReporting(cfg.Database, gormDB)
	if err != nil {
		return err
	}

	var (
		cache     common.CacheInterface
		cachePing api.Pinger
	)
	if cfg.Redis.Addr != "" {
		redisCache, err := common.NewRedisCacheService(common.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
		if err != nil {
			return fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		cache, cachePing = redisCache, redisCache
	} else {
		cache = common.NewCacheService(24*time.Hour, 10*time.Minute)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry()

	records := repositories.NewRecordRepository(gormDB)
	stats := repositories.NewStatsRepository(reportingDB)
	shared := state.New(records)

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	platform := discord.NewPlatform(session)

	enrollment := services.NewEnrollmentService(shared, shared.Store(), platform, cache, metricsReg)
	interviews := services.NewInterviewService(shared.Store(), platform, metricsReg)

	registry := commands.NewRegistry(metricsReg,
		commands.Ping{},
		commands.Meow{},
		commands.DateOfBirth{},
		commands.Interview{Service: interviews},
		commands.Approve(interviews),
		commands.Reject(interviews),
		commands.Status{Records: records},
	)

	bot := discord.New(session, cfg.Discord, shared, enrollment, registry, metricsReg)

	router := routes.RegisterRoutes(&api.Dependencies{
		Records: records,
		Stats:   stats,
		State:   shared,
		Cache:   cachePing,
		UpSince: time.Now(),
	}, routes.Options{
		AllowedOrigins: cfg.Ops.AllowedOrigins,
		Signer:         common.NewTokenSigner([]byte(cfg.Ops.JWTSecret)),
		Metrics:        metricsReg,
	})
	server := &http.Server{
		Addr:              cfg.Ops.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		logging.Info("Ops server starting", "addr", cfg.Ops.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	workers.InitWorkers(gctx, g, stats, metricsReg)

	if err := g.Wait(); err != nil {
		logging.Error("Bouncer stopped with error", "error", err.Error())
		return err
	}

	logging.Info("Bouncer stopped")
	return nil
}
