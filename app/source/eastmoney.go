package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yonwatch/hklisting/app/record"
)

const defaultEastmoneyAPIURL = "https://np-anotice-stock.eastmoney.com/api/security/ann"

// Eastmoney polls the Eastmoney announcement API for the tracked A-share
// stock code. Queries are keyed by stock code, so every result belongs to
// the tracked entity.
type Eastmoney struct {
	apiURL    string
	client    *http.Client
	userAgent string
	stockCode string
}

func NewEastmoney(opts Options) *Eastmoney {
	return &Eastmoney{
		apiURL:    defaultEastmoneyAPIURL,
		client:    opts.Client,
		userAgent: opts.UserAgent,
		stockCode: opts.StockCode,
	}
}

func (a *Eastmoney) Name() string          { return "eastmoney" }
func (a *Eastmoney) Source() record.Source { return record.SourceEastmoney }
func (a *Eastmoney) EntityScoped() bool    { return true }

type eastmoneyResponse struct {
	Data struct {
		List []eastmoneyAnnouncement `json:"list"`
	} `json:"data"`
}

type eastmoneyAnnouncement struct {
	ArtCode    string `json:"art_code"`
	Title      string `json:"title"`
	NoticeDate string `json:"notice_date"`
}

func (a *Eastmoney) Fetch(ctx context.Context, lookbackDays int) ([]record.Record, error) {
	query := url.Values{
		"sr":            {"-1"},
		"page_size":     {fmt.Sprintf("%d", maxRecords)},
		"page_index":    {"1"},
		"ann_type":      {"A"},
		"client_source": {"web"},
		"stock_list":    {a.stockCode},
		"f_node":        {"0"},
		"s_node":        {"0"},
	}

	data, err := fetchURL(ctx, a.client, a.apiURL+"?"+query.Encode(), a.userAgent, "application/json")
	if err != nil {
		return nil, fmt.Errorf("eastmoney API unavailable: %w", err)
	}

	return a.parse(data, lookbackCutoff(lookbackDays))
}

func (a *Eastmoney) parse(data []byte, cutoff time.Time) ([]record.Record, error) {
	var resp eastmoneyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse eastmoney response: %w", err)
	}

	records := make([]record.Record, 0, len(resp.Data.List))
	for _, ann := range resp.Data.List {
		if len(records) >= maxRecords {
			break
		}
		if ann.Title == "" {
			slog.Warn("Skipping announcement without title", "source", a.Name(), "art_code", ann.ArtCode)
			continue
		}

		published, err := parseNoticeDate(ann.NoticeDate)
		if err != nil {
			slog.Warn("Skipping announcement with unparseable date",
				"source", a.Name(), "title", ann.Title, "notice_date", ann.NoticeDate)
			continue
		}
		if published.Before(cutoff) {
			continue
		}

		records = append(records, record.Record{
			Source:      a.Source(),
			Title:       ann.Title,
			PublishedAt: published,
			Link:        fmt.Sprintf("https://data.eastmoney.com/notices/detail/%s/%s.html", a.stockCode, ann.ArtCode),
			RawID:       ann.ArtCode,
		})
	}

	return records, nil
}

// parseNoticeDate accepts both "2026-03-01 00:00:00" and "2026-03-01".
func parseNoticeDate(s string) (time.Time, error) {
	date, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	return time.Parse("2006-01-02", date)
}
