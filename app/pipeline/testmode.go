package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yonwatch/hklisting/app/classify"
	"github.com/yonwatch/hklisting/app/notify"
	"github.com/yonwatch/hklisting/app/record"
)

// ConnectivityTest pushes one synthetic record through the notifier only,
// bypassing fetch, classification and the dedup store. It validates channel
// configuration without consuming any announcement.
func ConnectivityTest(ctx context.Context, notifier Deliverer) error {
	rec := record.Record{
		Source:      record.SourceHKEXNews,
		Title:       "通道连通性测试 / Connectivity Test",
		PublishedAt: time.Now(),
	}
	cls := classify.Classification{
		IsRelevant:    true,
		Category:      classify.CategoryOther,
		CategoryLabel: "通道连通性测试",
		Severity:      classify.SeverityLow,
	}

	results := notifier.Deliver(ctx, rec, cls)
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("Connectivity test failed on channel",
				"channel", result.Channel, "terminal", result.Terminal, "error", result.Err)
		} else {
			slog.Info("Connectivity test passed on channel", "channel", result.Channel)
		}
	}

	if !notify.Delivered(results) {
		return errors.New("connectivity test failed on every channel")
	}
	return nil
}
