package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramChannel mirrors alerts into an operations chat so on-call staff see
// threshold crossings without checking email.
type TelegramChannel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramChannel(token string, chatID int64) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramChannel{bot: bot, chatID: chatID}, nil
}

func (c *TelegramChannel) Name() string { return ChannelTelegram }

func (c *TelegramChannel) Send(ctx context.Context, n Notification) error {
	msg := tgbotapi.NewMessage(c.chatID, fmt.Sprintf("%s\n\n%s", n.Subject, n.Body))
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
