package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yonwatch/hklisting/app/classify"
	"github.com/yonwatch/hklisting/app/record"
)

// ErrNoChannels is returned when a notifier is constructed without any
// configured delivery backend.
var ErrNoChannels = errors.New("no notification channels configured")

// Notifier fans a formatted alert out to every configured channel, each with
// its own bounded retry budget. Channels fail independently: one channel's
// outcome never affects another's.
type Notifier struct {
	channels []Channel
	header   string
	attempts int
	backoff  time.Duration
}

func NewNotifier(channels []Channel, header string, attempts int) (*Notifier, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &Notifier{
		channels: channels,
		header:   header,
		attempts: attempts,
		backoff:  2 * time.Second,
	}, nil
}

// Deliver sends the alert for one classified record to all channels and
// reports per-channel results. Deliveries run concurrently purely as a
// latency optimization; results are positionally stable.
func (n *Notifier) Deliver(ctx context.Context, rec record.Record, cls classify.Classification) []DeliveryResult {
	text := Format(n.header, rec, cls)

	results := make([]DeliveryResult, len(n.channels))
	var g errgroup.Group
	for i, channel := range n.channels {
		g.Go(func() error {
			results[i] = n.deliverOne(ctx, channel, text)
			return nil
		})
	}
	g.Wait()

	for _, result := range results {
		if result.Err == nil {
			slog.Info("Alert delivered",
				"channel", result.Channel, "title", rec.Title, "attempts", result.Attempts)
			continue
		}
		if result.Terminal {
			slog.Error("Channel configuration error",
				"channel", result.Channel, "title", rec.Title, "error", result.Err)
		} else {
			slog.Warn("Alert delivery failed",
				"channel", result.Channel, "title", rec.Title,
				"attempts", result.Attempts, "error", result.Err)
		}
	}

	return results
}

func (n *Notifier) deliverOne(ctx context.Context, channel Channel, text string) DeliveryResult {
	result := DeliveryResult{Channel: channel.Name()}

	for attempt := 1; attempt <= n.attempts; attempt++ {
		result.Attempts = attempt
		result.Err = channel.Send(ctx, text)
		if result.Err == nil {
			return result
		}

		if IsTerminal(result.Err) {
			result.Terminal = true
			return result
		}

		if attempt == n.attempts {
			break
		}

		// Exponential backoff between transient failures.
		wait := n.backoff * time.Duration(1<<(attempt-1))
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
			return result
		case <-time.After(wait):
		}
	}

	return result
}
