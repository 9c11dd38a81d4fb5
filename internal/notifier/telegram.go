// Package notifier sends best-effort Telegram messages to the shop operators.
package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/models"
)

// Bot wraps the Telegram API for order notifications. A nil *Bot is valid
// and ignores all calls, so callers do not need to check whether
// notifications are enabled.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewBot creates the notification bot, or (nil, nil) when notifications are
// disabled in the configuration.
func NewBot(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	if !cfg.Notifications.Enabled || cfg.Notifications.TelegramBotToken == "" {
		logger.Info("Telegram notifications are disabled")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{api: api, chatID: cfg.Notifications.ChatID, logger: logger}, nil
}

// NotifyOrderPlaced sends a short message about a freshly placed order.
// Failures are logged and swallowed; notifications never fail a request.
func (b *Bot) NotifyOrderPlaced(order *models.Order, userEmail string) {
	if b == nil {
		return
	}

	text := fmt.Sprintf("New order %s\nCustomer: %s\nTotal: %.2f", order.Reference, userEmail, order.Total)
	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.logger.Error("Failed to send order notification", zap.String("reference", order.Reference), zap.Error(err))
	}
}

// Start listens for incoming updates so operators can discover the chat ID
// to configure: the bot replies to any message with the chat's ID. It blocks
// until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			reply := tgbotapi.NewMessage(update.Message.Chat.ID,
				fmt.Sprintf("This chat's ID is %d", update.Message.Chat.ID))
			if _, err := b.api.Send(reply); err != nil {
				b.logger.Error("Failed to reply to message", zap.Error(err))
			}
		}
	}
}
