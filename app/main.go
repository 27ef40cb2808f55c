package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yonwatch/hklisting/app/cfg"
	"github.com/yonwatch/hklisting/app/classify"
	"github.com/yonwatch/hklisting/app/dedup"
	"github.com/yonwatch/hklisting/app/notify"
	"github.com/yonwatch/hklisting/app/pipeline"
	"github.com/yonwatch/hklisting/app/record"
	"github.com/yonwatch/hklisting/app/source"
)

func main() {
	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting listing monitor", "version", appCfg.Version)

	rules, err := classify.LoadRuleSet(appCfg.RulesFile)
	if err != nil {
		slog.Error("Failed to load classification rules", "file", appCfg.RulesFile, "error", err)
		os.Exit(1)
	}
	if len(appCfg.Aliases) > 0 {
		rules.Aliases = appCfg.Aliases
	}

	client := &http.Client{Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second}

	// Source adapters
	opts := source.Options{
		Client:      client,
		UserAgent:   appCfg.UserAgent,
		CompanyName: appCfg.CompanyName,
		StockCode:   appCfg.StockCode,
	}
	var adapters []source.Adapter
	entityScoped := make(map[record.Source]bool)
	for _, name := range appCfg.Sources {
		adapter, err := source.NewFromName(name, opts)
		if err != nil {
			slog.Error("Failed to configure source", "source", name, "error", err)
			os.Exit(1)
		}
		entityScoped[adapter.Source()] = adapter.EntityScoped()
		adapters = append(adapters, adapter)
	}
	slog.Info("Sources configured", "count", len(adapters))

	// Notification channels
	var channels []notify.Channel
	if appCfg.TelegramToken != "" && appCfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegram(appCfg.TelegramToken, appCfg.TelegramChatID, client)
		if err != nil {
			slog.Error("Failed to configure Telegram channel", "error", err)
			os.Exit(1)
		}
		channels = append(channels, telegram)
	}
	for i, url := range appCfg.WebhookURLs {
		name := "webhook"
		if len(appCfg.WebhookURLs) > 1 {
			name = fmt.Sprintf("webhook-%d", i+1)
		}
		channels = append(channels, notify.NewWebhook(name, url, client))
	}

	notifier, err := notify.NewNotifier(channels, appCfg.AlertHeader, appCfg.RetryAttempts)
	if err != nil {
		slog.Error("No notification channel configured", "error", err)
		os.Exit(1)
	}
	slog.Info("Channels configured", "count", len(channels))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(appCfg.RunTimeout)*time.Second)
	defer cancel()

	if appCfg.TestNotify {
		if err := pipeline.ConnectivityTest(ctx, notifier); err != nil {
			slog.Error("Connectivity test failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Connectivity test passed")
		return
	}

	store := dedup.Open(appCfg.DBPath)
	defer store.Close()

	var detail pipeline.DetailFetcher
	if appCfg.FetchDetail {
		detail = source.NewDetailFetcher(client, appCfg.UserAgent)
	}

	classifier := classify.NewClassifier(rules, entityScoped)
	p, err := pipeline.New(adapters, classifier, store, notifier, pipeline.Config{
		LookbackDays: appCfg.LookbackDays,
		PruneDays:    appCfg.PruneDays,
		Detail:       detail,
	})
	if err != nil {
		slog.Error("Failed to construct pipeline", "error", err)
		os.Exit(1)
	}

	summary := p.Run(ctx)

	// A completed pass is a success even when individual providers or
	// channels failed; those are visible in the summary and the logs.
	slog.Info("Run finished",
		"notified", summary.Notified,
		"failed_sources", len(summary.FailedSources),
		"failed_deliveries", summary.FailedDeliveries)
}
