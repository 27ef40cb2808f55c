package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tele "gopkg.in/telebot.v4"
)

// Telegram delivers alerts through the Telegram Bot API to a single chat.
type Telegram struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegram constructs the channel without touching the network; the token
// is only exercised on the first Send.
func NewTelegram(token string, chatID int64, client *http.Client) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat ID is not set")
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// newTelegramWithURL is used by tests to point the bot at a fake API server.
func newTelegramWithURL(token string, chatID int64, client *http.Client, apiURL string) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		URL:     apiURL,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, text string) error {
	_, err := t.bot.Send(tele.ChatID(t.chatID), text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
	if err == nil {
		return nil
	}

	// Flood control is transient even though it reports a 4xx code.
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return fmt.Errorf("telegram flood control, retry after %ds: %w", flood.RetryAfter, err)
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) &&
		apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return Terminal(fmt.Errorf("telegram rejected request: %w", err))
	}

	return fmt.Errorf("telegram delivery failed: %w", err)
}
