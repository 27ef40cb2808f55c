package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/yonwatch/hklisting/app/record"
)

const defaultHKEXBaseURL = "https://www.hkexnews.hk"

// HKEXNews polls the HKEX disclosure RSS feed for new listing documents of
// the tracked company.
type HKEXNews struct {
	baseURL     string
	client      *http.Client
	userAgent   string
	companyName string
	parser      *gofeed.Parser
}

func NewHKEXNews(opts Options) *HKEXNews {
	return &HKEXNews{
		baseURL:     defaultHKEXBaseURL,
		client:      opts.Client,
		userAgent:   opts.UserAgent,
		companyName: opts.CompanyName,
		parser:      gofeed.NewParser(),
	}
}

func (a *HKEXNews) Name() string          { return "hkexnews" }
func (a *HKEXNews) Source() record.Source { return record.SourceHKEXNews }

// The RSS query filters by company name, but the feed can still carry
// similarly named issuers, so titles go through the alias match.
func (a *HKEXNews) EntityScoped() bool { return false }

func (a *HKEXNews) Fetch(ctx context.Context, lookbackDays int) ([]record.Record, error) {
	feedURL := fmt.Sprintf("%s/di/rss/rss.asp?alertId=1&companyName=%s&documentType=NEW_LISTING",
		a.baseURL, url.QueryEscape(a.companyName))

	data, err := fetchURL(ctx, a.client, feedURL, a.userAgent, "application/rss+xml, text/xml")
	if err != nil {
		return nil, fmt.Errorf("hkexnews feed unavailable: %w", err)
	}

	return a.parse(data, lookbackCutoff(lookbackDays))
}

func (a *HKEXNews) parse(data []byte, cutoff time.Time) ([]record.Record, error) {
	feed, err := a.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hkexnews feed: %w", err)
	}

	records := make([]record.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(records) >= maxRecords {
			break
		}
		if item.Title == "" {
			slog.Warn("Skipping feed entry without title", "source", a.Name(), "link", item.Link)
			continue
		}

		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}

		records = append(records, record.Record{
			Source:      a.Source(),
			Title:       item.Title,
			PublishedAt: published,
			Link:        item.Link,
		})
	}

	return records, nil
}

func lookbackCutoff(lookbackDays int) time.Time {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return time.Now().AddDate(0, 0, -lookbackDays)
}
