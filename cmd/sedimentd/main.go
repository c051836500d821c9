package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/sediment-tracker/internal/app"
	"github.com/joseph-ayodele/sediment-tracker/internal/async"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/ingest"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
)

// serviceName is reported by the health service next to the overall status.
const serviceName = "sediment.Pipeline"

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("debug", false, "debug logging")
	initial := flag.Bool("initial-scan", true, "process PDFs already present in the watched directories")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if len(cfg.Server.WatchDirs) == 0 {
		logger.Error("WATCH_DIRS env var is required")
		return 2
	}

	a, err := app.New(ctx, cfg, app.Options{}, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return 1
	}
	defer a.Close()

	if err := a.DB.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("DB health failed", "error", err)
		return 1
	}
	logger.Info("DB health OK")

	// gRPC server with health + reflection for grpcurl
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		return 1
	}
	go func() {
		logger.Info("gRPC serving", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()
	go watchDB(ctx, a, hs, logger)

	var stats statsCounter
	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Server.QueueWorkers),
		async.WithProcessTimeout(cfg.Server.ProcessTimeout),
		async.WithOnDone(func(_ async.Job, o pipeline.Outcome) { stats.add(o, logger) }),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Server.WatchDirs,
		InitialScan: *initial,
		Debounce:    cfg.Server.WatchDebounce,
		SkipHidden:  true,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		grpcServer.Stop()
		return 1
	}

	forward(ctx, events, errs, queue, uuid.NewString(), logger)

	logger.Info("shutting down...")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	logger.Info("stopped", "stats", stats.snapshot())
	return 0
}

// forward queues watcher events until ctx is done or the watcher closes its
// event channel. A closed error channel is dropped from the select.
func forward(ctx context.Context, events <-chan string, errs <-chan error, q async.Queue, runID string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			if err := q.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now(), TraceID: runID}); err != nil {
				logger.Warn("file not queued", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher reported error", "error", err)
		}
	}
}

// watchDB flips the health status when the store stops answering.
func watchDB(ctx context.Context, a *app.App, hs *health.Server, logger *slog.Logger) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			status := healthpb.HealthCheckResponse_SERVING
			if err := a.DB.HealthCheck(ctx, 3*time.Second); err != nil {
				logger.Warn("DB health failed", "error", err)
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			hs.SetServingStatus(serviceName, status)
		}
	}
}
