package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/essgate/internal/config"
	"github.com/dropDatabas3/essgate/internal/http/server"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/store"
)

// version se pisa con -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH; vacío = sólo env)")
		flagEnvFile    = flag.String("env-file", ".env", "archivo .env a cargar si existe")
		flagMigrate    = flag.Bool("migrate", false, "aplicar migraciones antes de servir (sólo postgres)")
	)
	flag.Parse()

	if err := godotenv.Load(*flagEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "env file %s: %v\n", *flagEnvFile, err)
		os.Exit(1)
	}

	path := *flagConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "essgate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *flagMigrate); err != nil {
		logger.L().Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, logger.L())
	log := logger.L()

	if migrate {
		if err := migrateUp(cfg); err != nil {
			return err
		}
	}

	app, err := server.Build(ctx, cfg, version)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("cleanup", logger.Err(err))
		}
	}()

	srv := app.HTTPServer(cfg)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func migrateUp(cfg *config.Config) error {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "postgres", "pg", "postgresql":
	default:
		logger.Named("migrate").Info("migrate skipped", zap.String("driver", cfg.Storage.Driver))
		return nil
	}
	m, err := store.NewMigrator(cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Named("migrate").Info("migrations applied", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}
