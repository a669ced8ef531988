package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ytdlsync/src/features/syncing"
)

// maxReportedFailures caps how many per-file failures a message lists.
const maxReportedFailures = 10

// TelegramNotifier sends a run summary message to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyRun sends the summary of a finished run.
func (n *TelegramNotifier) NotifyRun(ctx context.Context, summary *syncing.RunSummary) error {
	var problems []syncing.FileResult
	for _, f := range summary.Files {
		if f.Status != syncing.StatusPlaced {
			problems = append(problems, f)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎵 Sync finished: %d listed, %d placed, %d failed\n",
		summary.Listed, summary.Placed(), summary.Failed())
	for i, f := range problems {
		if i == maxReportedFailures {
			fmt.Fprintf(&b, "… and %d more\n", len(problems)-i)
			break
		}
		fmt.Fprintf(&b, "• %s: %s\n", f.Filename, f.Status)
	}

	msg := tgbotapi.NewMessage(n.chatID, b.String())
	_, err := n.bot.Send(msg)
	return err
}
