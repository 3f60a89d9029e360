package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/config"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/notify"
	"github.com/Raimguhinov/sleep-monster/internal/storage"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/internal/widget"
	"github.com/Raimguhinov/sleep-monster/pkg/grpcserver"
	"github.com/Raimguhinov/sleep-monster/pkg/httpserver"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

var errShutdown = errors.New("shutdown requested")

func Run(cfg *config.Config) {
	l := logger.New(cfg.Log.Level, cfg.App.Env)
	if err := run(cfg, l); err != nil && !errors.Is(err, errShutdown) {
		l.Error("app - Run", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *logger.Logger) error {
	l.Info("starting",
		slog.String("name", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)

	loc, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("app - Run - Location: %w", err)
	}
	progression, err := creature.ProgressionFor(cfg.App.Progression)
	if err != nil {
		return fmt.Errorf("app - Run - ProgressionFor: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repository
	store, err := storage.NewFromURL(ctx, cfg.Storage.URL, cfg.Storage.PoolMax, l)
	if err != nil {
		return fmt.Errorf("app - Run - storage.NewFromURL: %w", err)
	}
	defer store.Close()

	// Use case
	center := notify.NewMemory(loc, nil)
	scheduler := alarm.NewScheduler(center, alarm.Settings{
		ChainCount:     cfg.Notify.ChainCount,
		ChainInterval:  cfg.Notify.ChainInterval,
		SentinelDelay:  cfg.Notify.SentinelDelay,
		SnoozeDuration: cfg.Notify.SnoozeDuration,
	}, loc, cfg.Notify.RegisterAttempts, l)

	svc := usecase.NewService(store, scheduler, creature.NewEngine(progression), l,
		usecase.WithCreatureName(cfg.App.CreatureName),
		usecase.WithPublisher(widget.NewFileWriter(cfg.App.SummaryPath)),
	)

	warnings, err := svc.RescheduleAll(ctx)
	if err != nil {
		return fmt.Errorf("app - Run - RescheduleAll: %w", err)
	}
	if len(warnings) > 0 {
		l.Warn("some alarms were not fully scheduled", slog.String("warnings", strings.Join(warnings, "; ")))
	}
	if _, err = svc.Resume(ctx); err != nil {
		return fmt.Errorf("app - Run - Resume: %w", err)
	}

	worker := notify.NewWorker(center, cfg.Notify.Tick, nil, l)
	worker.Subscribe(svc.OnDelivered)

	// HTTP Server
	router, err := NewRouter(svc, l, cfg)
	if err != nil {
		return fmt.Errorf("app - Run - NewRouter: %w", err)
	}
	httpServer := httpserver.New(router,
		httpserver.Addr(cfg.HTTP.IP, cfg.HTTP.Port),
		httpserver.Timeout(cfg.HTTP.Timeout),
		httpserver.IdleTimeout(cfg.HTTP.IdleTimout),
	)

	// gRPC Server
	grpcServer := grpcserver.New(cfg.GRPC.IP, cfg.GRPC.Port)
	grpcServer.SetServing(true, cfg.App.Name)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		httpServer.Start()
		l.Info("http server started", slog.String("addr", httpServer.Addr()))
		select {
		case <-gctx.Done():
		case err, ok := <-httpServer.Notify():
			if ok {
				return fmt.Errorf("app - Run - httpServer.Notify: %w", err)
			}
		}
		if err := httpServer.Shutdown(); err != nil {
			return fmt.Errorf("app - Run - httpServer.Shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		l.Info("grpc server started", slog.String("addr", grpcServer.Addr()))
		return grpcServer.Serve()
	})

	g.Go(func() error {
		<-gctx.Done()
		grpcServer.SetServing(false)
		grpcServer.Stop()
		if ctx.Err() != nil {
			l.Info("app - Run - signal received")
			return errShutdown
		}
		return nil
	})

	return g.Wait()
}
