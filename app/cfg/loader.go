package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Tracked entity
	CompanyName string   `long:"company-name" env:"COMPANY_NAME" default:"Yonyou" description:"Company name used in provider queries"`
	Aliases     []string `long:"alias" env:"COMPANY_ALIASES" env-delim:"," default:"用友" default:"YONYOU" default:"Yonyou" description:"Company name aliases used for relevance matching"`
	StockCode   string   `long:"stock-code" env:"STOCK_CODE" default:"600588" description:"A-share stock code used by entity-scoped providers"`
	AlertHeader string   `long:"alert-header" env:"ALERT_HEADER" default:"【用友港股上市 · 关键进展】" description:"First line of every alert message"`

	// Source configuration
	Sources      []string `long:"source" env:"SOURCES" env-delim:"," default:"hkexnews" default:"eastmoney" description:"Enabled source adapters (hkexnews, eastmoney, cninfo)"`
	LookbackDays int      `long:"lookback-days" env:"LOOKBACK_DAYS" default:"7" description:"How many days back to request announcements"`
	FetchDetail  bool     `long:"fetch-detail" env:"FETCH_DETAIL" description:"Fetch announcement pages to extract additional fields"`

	// Notification channels
	TelegramToken  string   `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (enables the Telegram channel)"`
	TelegramChatID int64    `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID to deliver alerts to"`
	WebhookURLs    []string `long:"webhook-url" env:"WEBHOOK_URLS" env-delim:"," description:"Webhook endpoints to POST alerts to"`

	// Durable state
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./data/seen.db" description:"Path to the deduplication database file"`
	PruneDays int    `long:"prune-days" env:"PRUNE_DAYS" default:"180" description:"Drop fingerprints older than this many days (0 disables pruning)"`

	// Classifier rules
	RulesFile string `long:"rules-file" env:"RULES_FILE" description:"Optional YAML file overriding the built-in classification rules"`

	// HTTP behavior
	HTTPTimeout   int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for provider and channel requests"`
	RetryAttempts int    `long:"retry-attempts" env:"RETRY_ATTEMPTS" default:"3" description:"Delivery attempts per channel before giving up"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"hklisting-monitor/1.0" description:"User agent string for HTTP requests"`

	// Run behavior
	RunTimeout int  `long:"run-timeout" env:"RUN_TIMEOUT" default:"300" description:"Wall clock budget in seconds for one pipeline pass"`
	TestNotify bool `long:"test-notify" env:"TEST_NOTIFY" description:"Send one synthetic alert to verify channel connectivity, then exit"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Shanghai)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		CompanyName:    raw.CompanyName,
		Aliases:        raw.Aliases,
		StockCode:      raw.StockCode,
		AlertHeader:    raw.AlertHeader,
		Sources:        raw.Sources,
		LookbackDays:   raw.LookbackDays,
		FetchDetail:    raw.FetchDetail,
		TelegramToken:  raw.TelegramToken,
		TelegramChatID: raw.TelegramChatID,
		WebhookURLs:    raw.WebhookURLs,
		DBPath:         raw.DBPath,
		PruneDays:      raw.PruneDays,
		RulesFile:      raw.RulesFile,
		HTTPTimeout:    raw.HTTPTimeout,
		RetryAttempts:  raw.RetryAttempts,
		UserAgent:      raw.UserAgent,
		RunTimeout:     raw.RunTimeout,
		TestNotify:     raw.TestNotify,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
