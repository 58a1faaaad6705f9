// remindd sweeps the store for due reminders on a cron schedule and
// delivers them by email.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"meetseries/config"
	"meetseries/reminder"
	"meetseries/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "remindd.yaml", "path to the YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var sender reminder.Sender = reminder.NoopSender{}
	if cfg.SMTP != nil {
		sender = &reminder.SMTPSender{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}
	} else {
		logger.Warn("no smtp configuration, reminders will be discarded")
	}

	dispatcher := reminder.NewDispatcher(store, sender, logger)

	c := cron.New()
	_, err = c.AddFunc(cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sent, err := dispatcher.RunOnce(ctx)
		if err != nil {
			logger.Error("reminder sweep failed", "error", err)
			return
		}
		if sent > 0 {
			logger.Info("reminder sweep finished", "sent", sent)
		}
	})
	if err != nil {
		logger.Error("invalid reminder cron expression", "cron", cfg.ReminderCron, "error", err)
		os.Exit(1)
	}

	c.Start()
	logger.Info("remindd started", "cron", cfg.ReminderCron, "database", cfg.DatabasePath)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	<-c.Stop().Done()
}
