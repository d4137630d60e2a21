package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engboard/internal/events"
	"engboard/internal/notify"
	"engboard/internal/seed"
	"engboard/internal/server"
	"engboard/internal/service"
	"engboard/internal/storage/sqlite"
	"engboard/internal/util"
)

func main() {
	addrFlag := flag.String("addr", util.EnvOrDefault("ENGBOARD_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("ENGBOARD_DB_PATH", "data/engboard.db"), "Path to sqlite database file")
	seedFlag := flag.String("seed", util.EnvOrDefault("ENGBOARD_SEED", ""), "YAML file with employees and projects for an empty store")
	notifyFlag := flag.String("notify-url", util.EnvOrDefault("ENGBOARD_NOTIFY_URL", ""), "Webhook receiving event notifications")
	notifyTimeout := flag.Duration("notify-timeout", util.DurationOrDefault("ENGBOARD_NOTIFY_TIMEOUT", 5*time.Second), "Webhook request timeout")
	scanFlag := flag.Duration("deadline-scan", util.DurationOrDefault("ENGBOARD_DEADLINE_SCAN", time.Hour), "Interval between deadline alert scans")
	levelFlag := flag.String("log-level", util.EnvOrDefault("ENGBOARD_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: util.ParseLevel(*levelFlag)}))
	logger.Info("engboard starting", slog.String("db", *dbFlag))

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	bus := events.NewBus(256, logger)
	bus.Subscribe(notify.NewLogNotifier(logger))
	if *notifyFlag != "" {
		bus.Subscribe(notify.NewWebhookNotifier(*notifyFlag, *notifyTimeout))
		logger.Info("webhook notifications enabled", slog.String("url", *notifyFlag))
	}
	go bus.Run(context.Background())

	svc, err := service.New(context.Background(), store, service.Options{Logger: logger, Events: bus})
	if err != nil {
		logger.Error("unable to load state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	initial, err := seed.Load(*seedFlag)
	if err != nil {
		logger.Error("unable to read seed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := svc.Seed(context.Background(), initial.Employees, initial.Projects); err != nil {
		logger.Error("unable to seed store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scanCtx, stopScan := context.WithCancel(context.Background())
	defer stopScan()
	go svc.RunDeadlineScanner(scanCtx, *scanFlag)

	srv := server.New(svc, logger)

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	stopScan()
	if err := bus.Close(ctx); err != nil {
		logger.Warn("pending events not delivered", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
