package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Notifier posts validation summaries to a Telegram chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewNotifier authorizes the bot token against the Telegram API.
func NewNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return NewNotifierWithAPI(api, chatID, logger), nil
}

// NewNotifierWithAPI uses an already authorized client.
func NewNotifierWithAPI(api *tgbotapi.BotAPI, chatID int64, logger *zap.Logger) *Notifier {
	logger.Info("telegram notifier ready", zap.String("bot", api.Self.UserName), zap.Int64("chat", chatID))
	return &Notifier{
		api:    api,
		chatID: chatID,
		logger: logger,
	}
}

// Notify sends the summary of report.
func (n *Notifier) Notify(ctx context.Context, report *entity.ValidationReport) error {
	_ = ctx
	msg := tgbotapi.NewMessage(n.chatID, Summary(report))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	return nil
}

// Summary renders the report as a short plain-text message.
func Summary(report *entity.ValidationReport) string {
	total := len(report.Matches)
	if report.AllEqual() {
		return fmt.Sprintf("✅ Regression check Ok! %d/%d images match the reference.", total, total)
	}

	mismatched := report.Mismatched()
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Regression check failed: %d/%d images differ from the reference.\n", len(mismatched), total)
	for _, name := range mismatched {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ port.ReportNotifier = (*Notifier)(nil)
