package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/analytics"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/keystroke-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/wordlist"
	"github.com/comitanigiacomo/keystroke-engine/internal/config"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/workers"
)

// stores groups the repositories of the selected storage backend.
type stores struct {
	db        *sqlx.DB
	users     domain.UserRepository
	summaries domain.SummaryRepository
	sessions  domain.SessionRepository
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		log.Println("Using in-memory storage, data will not survive a restart.")
		mem := repository.NewInMemorySummaryRepository()
		return &stores{
			users:     repository.NewInMemoryUserRepository(),
			summaries: mem,
			sessions:  mem,
		}, nil
	}

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Database connected successfully.")

	return &stores{
		db:        db,
		users:     repository.NewPostgresUserRepository(db),
		summaries: repository.NewPostgresSummaryRepository(db),
		sessions:  repository.NewPostgresSessionRepository(db),
	}, nil
}

func openRedis(cfg config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := cache.NewRedisClient(cache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, running without cache and rate limiting: %v", err)
		return nil
	}
	log.Println("[CACHE] Redis connected.")
	return rdb
}

// startExport wires the ClickHouse export when enabled. The returned worker is nil otherwise.
func startExport(ctx context.Context, cfg config.Config) (*workers.ExportWorker, func()) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}
	}

	sink, err := analytics.NewClickHouseSessionSink(ctx, analytics.Config{
		Host:     cfg.ClickHouse.Host,
		Port:     cfg.ClickHouse.Port,
		Database: cfg.ClickHouse.Database,
		Username: cfg.ClickHouse.Username,
		Password: cfg.ClickHouse.Password,
	})
	if err != nil {
		log.Printf("[ANALYTICS] ClickHouse unavailable, export disabled: %v", err)
		return nil, func() {}
	}
	if err := sink.EnsureSchema(ctx); err != nil {
		log.Printf("[ANALYTICS] %v, export disabled", err)
		_ = sink.Close()
		return nil, func() {}
	}

	worker := workers.NewExportWorker(sink, cfg.ClickHouse.BatchSize, cfg.ClickHouse.FlushInterval)
	worker.Start(ctx)

	return worker, func() {
		<-worker.Done()
		_ = sink.Close()
	}
}

func serve(cfg config.Config) error {
	startTime := time.Now()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	st, err := openStores(workerCtx, cfg)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb := openRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	summaries := st.summaries
	if rdb != nil {
		summaries = repository.NewCachedSummaryRepository(summaries, rdb, cfg.Redis.CacheTTL)
	}

	streakWorker := workers.NewStreakWorker(summaries, st.sessions)
	streakWorker.Start(workerCtx)

	exportWorker, closeExport := startExport(workerCtx, cfg)
	var exporter services.SessionExporter
	if exportWorker != nil {
		exporter = exportWorker
	}

	corpus := wordlist.NewCorpus(cfg.Practice.WordlistPath, cfg.Practice.Lang)
	if _, err := corpus.Words(); err != nil {
		return err
	}

	tokenService := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, st.users)
	authService := services.NewAuthService(st.users, summaries, tokenService)
	summaryService := services.NewSummaryService(summaries, st.sessions, streakWorker, exporter)
	textService := services.NewTextService(summaries, corpus, textgen.New(), services.TextDefaults{
		WordLimit: cfg.Practice.WordLimit,
		MinLen:    cfg.Practice.MinLen,
		MaxLen:    cfg.Practice.MaxLen,
	})

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService),
		SessionHandler: adapterHTTP.NewSessionHandler(summaryService),
		SummaryHandler: adapterHTTP.NewSummaryHandler(summaryService),
		TextHandler:    adapterHTTP.NewTextHandler(textService),
		TokenService:   tokenService,
		DB:             st.db,
		Redis:          rdb,
		RateLimit:      cfg.RateLimit.Requests,
		Window:         cfg.RateLimit.Window,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Keystroke Engine running on http://localhost:%s (storage: %s)", cfg.Port, cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Stop signal received. Shutting down...")
	case err := <-serverErr:
		stopWorkers()
		closeExport()
		return fmt.Errorf("critical server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	stopWorkers()
	closeExport()

	log.Println("Server stopped gracefully.")
	return nil
}
