package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"adr.app/ledger/common/id"
	"adr.app/ledger/common/logger"
	"adr.app/ledger/common/otel"
	"adr.app/ledger/core/config"
	"adr.app/ledger/core/db"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
	"adr.app/ledger/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	slog.InfoContext(ctx, "ledger worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.Group,
		"consumer_name", cfg.Pipeline.Consumer)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.ChangeStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.ChangeStream,
		Group:        cfg.Pipeline.Group,
		Consumer:     cfg.Pipeline.Consumer,
		DLQStream:    cfg.Pipeline.DLQStream,
		BatchSize:    cfg.Worker.BatchSize,
		Block:        cfg.Worker.Block,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		RequeueDelay: cfg.Worker.RequeueDelay,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	producer := queue.NewRedisProducer(redisClient, cfg.Pipeline.ChangeStream, slog.Default())
	defer producer.Close()

	stores := store.NewStores(database.Queries())
	verifier := worker.NewVerifier(worker.NewTxRunner(database), stores.Changes())

	w := worker.New(consumer, verifier, worker.Config{
		MaxAttempts: cfg.Worker.MaxAttempts,
	})

	reclaimer := worker.NewReclaimer(consumer, consumer, w.ProcessMessage, worker.ReclaimerConfig{
		Claimant:    cfg.Pipeline.Consumer + "-reclaimer",
		MinIdle:     cfg.Worker.ReclaimMinIdle,
		Interval:    cfg.Worker.ReclaimInterval,
		BatchSize:   cfg.Worker.BatchSize,
		MaxAttempts: cfg.Worker.MaxAttempts,
	})

	reconciler := worker.NewReconciler(
		stores.Changes(),
		producer,
		worker.NewRedisLocker(redislock.New(redisClient)),
		worker.ReconcilerConfig{
			Schedule:    cfg.Reconcile.Schedule,
			StaleAfter:  cfg.Reconcile.StaleAfter,
			BatchSize:   cfg.Reconcile.BatchSize,
			MaxAttempts: cfg.Reconcile.MaxAttempts,
			LockKey:     cfg.Reconcile.LockKey,
			LockTTL:     cfg.Reconcile.LockTTL,
		},
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := w.Run(runCtx); err != nil {
			slog.ErrorContext(ctx, "worker stopped with error", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		reclaimer.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		if err := reconciler.Run(runCtx); err != nil {
			slog.ErrorContext(ctx, "reconciler stopped with error", "error", err)
		}
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Reclaimer first: it is quick and must not hand messages to a stopping worker.
	reclaimer.Stop()
	w.Stop()
	cancelRun()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case <-done:
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
██╗     ███████╗██████╗  ██████╗ ███████╗██████╗     ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██║     ██╔════╝██╔══██╗██╔════╝ ██╔════╝██╔══██╗    ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██║     █████╗  ██║  ██║██║  ███╗█████╗  ██████╔╝    ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██║     ██╔══╝  ██║  ██║██║   ██║██╔══╝  ██╔══██╗    ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
███████╗███████╗██████╔╝╚██████╔╝███████╗██║  ██║    ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
╚══════╝╚══════╝╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝     ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
