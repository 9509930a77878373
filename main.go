package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgettracker/internal/auth"
	"budgettracker/internal/config"
	"budgettracker/internal/logging"
	"budgettracker/internal/notify"
	"budgettracker/internal/server"
	"budgettracker/internal/store"
	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Support a lightweight migrate command: `./budgettracker migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(cfg, log); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("migration completed")
		return
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, log *slog.Logger) (*store.Store, error) {
	level := logger.Error
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	return store.Open(store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN, LogLevel: level, Logger: log})
}

func migrate(cfg *config.Config, log *slog.Logger) error {
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Migrate()
}

func newPublisher(cfg *config.Config, log *slog.Logger) notify.Publisher {
	if cfg.AMQPURL == "" {
		return notify.Noop{Logger: log}
	}
	p, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
	if err != nil {
		// alerts are best effort; the API keeps working without a broker
		log.Warn("budget alerts disabled", "error", err)
		return notify.Noop{Logger: log}
	}
	log.Info("budget alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return p
}

func run(cfg *config.Config, log *slog.Logger) error {
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	if cfg.DBAutoMigrate {
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	alerts := newPublisher(cfg, log)
	defer alerts.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	svc := tracker.New(st, alerts, log)
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)
	srv := server.New(cfg, svc, issuer, log).HTTPServer(":" + cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "driver", cfg.DBDriver, "api_prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
