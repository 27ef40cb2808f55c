package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonwatch/hklisting/app/record"
)

const defaultCNInfoBaseURL = "http://www.cninfo.com.cn"

// CNInfo scrapes the cninfo full-text announcement search for the tracked
// company. Search is keyed by company name, so results are entity-scoped.
type CNInfo struct {
	baseURL     string
	client      *http.Client
	userAgent   string
	companyName string
}

func NewCNInfo(opts Options) *CNInfo {
	return &CNInfo{
		baseURL:     defaultCNInfoBaseURL,
		client:      opts.Client,
		userAgent:   opts.UserAgent,
		companyName: opts.CompanyName,
	}
}

func (a *CNInfo) Name() string          { return "cninfo" }
func (a *CNInfo) Source() record.Source { return record.SourceCNInfo }
func (a *CNInfo) EntityScoped() bool    { return true }

func (a *CNInfo) Fetch(ctx context.Context, lookbackDays int) ([]record.Record, error) {
	searchURL := fmt.Sprintf("%s/new/fulltextSearch?notautosubmit=&keyword=%s",
		a.baseURL, url.QueryEscape(a.companyName))

	data, err := fetchURL(ctx, a.client, searchURL, a.userAgent, "text/html")
	if err != nil {
		return nil, fmt.Errorf("cninfo search unavailable: %w", err)
	}

	return a.parse(data, lookbackCutoff(lookbackDays))
}

func (a *CNInfo) parse(data []byte, cutoff time.Time) ([]record.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cninfo response: %w", err)
	}

	var records []record.Record
	doc.Find(".result-item, .news-item, tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(records) >= maxRecords {
			return false
		}

		link := row.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(link.AttrOr("title", ""))
		}
		if title == "" {
			return true
		}

		dateText := strings.TrimSpace(row.Find(".date, time").First().Text())
		published, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			slog.Warn("Skipping search result with unparseable date",
				"source", a.Name(), "title", title, "date", dateText)
			return true
		}
		if published.Before(cutoff) {
			return true
		}

		if strings.HasPrefix(href, "/") {
			href = a.baseURL + href
		}

		records = append(records, record.Record{
			Source:      a.Source(),
			Title:       title,
			PublishedAt: published,
			Link:        href,
		})
		return true
	})

	return records, nil
}
