package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"budgettracker/internal/config"
	"budgettracker/internal/importer"
	"budgettracker/internal/logging"
	"budgettracker/internal/notify"
	"budgettracker/internal/store"
	"budgettracker/internal/tracker"
)

func main() {
	dir := flag.String("dir", "imports", "directory holding date,category,amount,notes CSV files")
	email := flag.String("email", "", "email of the user owning the expenses")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	dryRun := flag.Bool("dry-run", false, "check rows without storing them")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if *email == "" {
		logger.Error("--email is required")
		os.Exit(2)
	}
	if err := run(cfg, logger, *dir, *email, *watch, *dryRun); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, dir, email string, watch, dryRun bool) error {
	st, err := store.Open(store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN, Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()

	var alerts notify.Publisher
	if cfg.AMQPURL != "" && !dryRun {
		p, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("budget alerts disabled", "error", err)
		} else {
			alerts = p
			defer p.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := tracker.New(st, alerts, logger)
	user, err := svc.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	im := importer.New(svc, user.ID, logger)
	im.DryRun = dryRun

	results, err := im.ImportDir(ctx, dir)
	if err != nil {
		return err
	}
	var imported, failed int
	for _, r := range results {
		imported += r.Imported
		failed += r.Failed
	}
	logger.Info("initial import finished", "files", len(results), "imported", imported, "failed", failed)

	if !watch {
		return nil
	}
	return im.Watch(ctx, dir)
}
