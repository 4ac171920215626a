package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/aiudex/aiudexd/internal/adapter/deepseek"
	"github.com/aiudex/aiudexd/internal/adapter/filekv"
	"github.com/aiudex/aiudexd/internal/adapter/gemini"
	aiudexhttp "github.com/aiudex/aiudexd/internal/adapter/http"
	aiudexnats "github.com/aiudex/aiudexd/internal/adapter/nats"
	"github.com/aiudex/aiudexd/internal/adapter/natskv"
	aiudexotel "github.com/aiudex/aiudexd/internal/adapter/otel"
	"github.com/aiudex/aiudexd/internal/adapter/postgres"
	"github.com/aiudex/aiudexd/internal/adapter/ristretto"
	"github.com/aiudex/aiudexd/internal/adapter/ws"
	"github.com/aiudex/aiudexd/internal/config"
	"github.com/aiudex/aiudexd/internal/logger"
	"github.com/aiudex/aiudexd/internal/port/kvstore"
	"github.com/aiudex/aiudexd/internal/port/llm"
	"github.com/aiudex/aiudexd/internal/resilience"
	"github.com/aiudex/aiudexd/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"default_model", cfg.LLM.DefaultModel,
		"snapshot_backend", cfg.Snapshot.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := aiudexotel.InitTracer(cfg.Logging.Service)
	defer func() { _ = shutdownTracer(context.Background()) }()

	metrics, err := aiudexotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := aiudexnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	var kv kvstore.KV
	switch cfg.Snapshot.Backend {
	case "natskv":
		kv, err = natskv.New(ctx, queue.JetStream(), cfg.Snapshot.Bucket)
	default:
		kv, err = filekv.New(cfg.Snapshot.Dir)
	}
	if err != nil {
		return fmt.Errorf("snapshot kv (%s): %w", cfg.Snapshot.Backend, err)
	}

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- LLM providers ---

	geminiClient := gemini.NewClient(cfg.Gemini.URL, cfg.Gemini.APIKey, cfg.LLM.Timeout)
	geminiClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	deepseekClient := deepseek.NewClient(cfg.DeepSeek.URL, cfg.DeepSeek.APIKey, cfg.LLM.Timeout)
	deepseekClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	clients := map[string]llm.Client{
		geminiClient.Name():   geminiClient,
		deepseekClient.Name(): deepseekClient,
	}

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	notifySvc := service.NewNotificationService(ws.NewNotifier(hub))

	timerSvc := service.NewTimerService(store, kv, queue, notifySvc, service.TimerOptions{
		TickInterval:      cfg.Timer.TickInterval,
		CreditOfflineTime: cfg.Timer.CreditOfflineTime,
	})
	timerSvc.SetMetrics(metrics)

	taskSvc := service.NewTaskService(store, queue, timerSvc)
	officeSvc := service.NewOfficeService(store, cache, cfg.Cache.OfficeTTL)
	docSvc := service.NewDocumentService(store)

	progress := func(ctx context.Context, stage string, percent int) {
		hub.BroadcastEvent(ctx, ws.EventGenerationProgress, ws.GenerationProgressEvent{
			Stage:   stage,
			Percent: percent,
		})
	}
	genSvc := service.NewGenerationService(store, store, clients, cfg.LLM.DefaultModel, officeSvc, queue, notifySvc, progress)
	genSvc.SetMetrics(metrics)

	if err := timerSvc.Restore(ctx); err != nil {
		return fmt.Errorf("timer restore: %w", err)
	}

	// Bridge timer state events from the queue to connected frontends.
	cancelBridge, err := queue.Subscribe(ctx, "tasks.timer.>", func(ctx context.Context, subject string, data []byte) error {
		var ev service.TimerEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode timer event %s: %w", subject, err)
		}
		hub.BroadcastEvent(ctx, ws.EventTimerState, ws.TimerStateEvent{
			TaskID:      ev.TaskID,
			TimeSeconds: ev.TimeSeconds,
			Running:     ev.Running,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("timer event bridge: %w", err)
	}
	defer cancelBridge()

	// --- HTTP ---

	handlers := &aiudexhttp.Handlers{
		Tasks:      taskSvc,
		Timer:      timerSvc,
		Documents:  docSvc,
		Generation: genSvc,
		Office:     officeSvc,
		Credits:    store,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(aiudexhttp.RequestID)
	r.Use(aiudexhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(aiudexhttp.Logger)
	r.Use(aiudexotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.Recoverer)
	// Generation waits on the LLM; the route timeout must outlive it.
	r.Use(chimw.Timeout(cfg.LLM.Timeout + 30*time.Second))

	r.Get("/ws", hub.HandleWS)
	aiudexhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 60*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		timerSvc.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		timerSvc.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
