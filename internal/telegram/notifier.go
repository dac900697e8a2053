// Package telegram pushes complaint events to an operations chat. The
// notifier is a plain bus subscriber; when no bot token is configured the
// server simply runs without it.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"urbaneye/backend/internal/events"
	"urbaneye/backend/internal/models"
)

// Notifier forwards selected complaint events to one Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	bus    *events.Bus
	logger *zap.Logger
}

func NewNotifier(token string, chatID int64, bus *events.Bus, logger *zap.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to start telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, bus: bus, logger: logger}, nil
}

// Run consumes bus events until ctx is cancelled. New critical complaints
// and every status change are forwarded; routine creations are skipped to
// keep the chat usable.
func (n *Notifier) Run(ctx context.Context) {
	subID, ch := n.bus.Subscribe()
	defer n.bus.Unsubscribe(subID)

	n.logger.Info("telegram notifier started", zap.Int64("chat_id", n.chatID))

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			text := n.render(e)
			if text == "" {
				continue
			}
			msg := tgbotapi.NewMessage(n.chatID, text)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := n.bot.Send(msg); err != nil {
				n.logger.Warn("telegram send failed", zap.Error(err))
			}
		}
	}
}

func (n *Notifier) render(e events.Event) string {
	switch e.Type {
	case events.ComplaintCreated:
		if e.Severity != models.SeverityCritical {
			return ""
		}
		return fmt.Sprintf("🚨 *Critical complaint* in %s\n%s", e.Division, e.Title)
	case events.StatusChanged:
		return fmt.Sprintf("📋 *%s*: %s → %s (%s)", e.Title, e.OldStatus, e.Status, e.Division)
	}
	return ""
}
