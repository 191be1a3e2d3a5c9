package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/hamed0406/httprobe/internal/domain"
)

type telegramSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram sends alerts to one chat through a bot.
type Telegram struct {
	sender telegramSender
	chatID int64
}

// NewTelegram returns nil when token is empty.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	if chatID == 0 {
		return nil, errors.New("telegram: chat id is required")
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{sender: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, a domain.Alert) error {
	if t == nil {
		return errors.New("telegram disabled")
	}
	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   title(a) + "\n" + text(a),
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
