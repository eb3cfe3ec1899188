package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/accountsd/internal/config"
	"github.com/dropDatabas3/accountsd/internal/http/server"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/reset"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Ruta al YAML de configuración (opcional)")
	envFile := flag.String("env-file", ".env", "Archivo .env a cargar si existe")
	flag.Parse()

	// .env es opcional; las variables del sistema tienen prioridad.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.L().Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.L()

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, a.handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return reset.NewSweeper(a.tokens, cfg.Reset.SweepInterval).Run(gctx) })

	log.Info("accountsd listening",
		logger.String("addr", cfg.Server.Addr),
		logger.String("env", cfg.App.Env),
		logger.String("profiles", cfg.Profiles.Driver),
		logger.String("reset_store", cfg.Reset.Store),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("accountsd stopped")
	return nil
}
