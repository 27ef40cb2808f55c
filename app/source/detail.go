package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// DetailFetcher pulls the announcement document page behind a record's link
// and extracts its readable text, so field extraction sees more than the
// title. Enrichment is best-effort: callers treat a failure as "no content".
type DetailFetcher struct {
	client    *http.Client
	userAgent string
}

func NewDetailFetcher(client *http.Client, userAgent string) *DetailFetcher {
	return &DetailFetcher{client: client, userAgent: userAgent}
}

func (f *DetailFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("record has no link")
	}

	data, err := fetchURL(ctx, f.client, pageURL, f.userAgent, "text/html")
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from %s", pageURL)
	}

	return text, nil
}
