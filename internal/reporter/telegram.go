// Package reporter sends run summaries to Telegram. Reporting is
// optional: without a token the runner just logs.
package reporter

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"krjobs-scraper/internal/runner"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func summaryText(summary *runner.Summary) string {
	msgText := "📦 *Job scrape complete*\n"
	msgText += fmt.Sprintf("🆕 New postings: %d\n", summary.TotalNew)
	msgText += fmt.Sprintf("⏱ Duration: %s\n", escapeMarkdown(fmt.Sprintf("%.1fs", summary.Duration().Seconds())))

	for site, result := range summary.Sites {
		if result.Status == "ok" {
			msgText += fmt.Sprintf("✅ %s: %d new\n", escapeMarkdown(site), result.NewPostings)
		} else {
			msgText += fmt.Sprintf("❌ %s: %s\n", escapeMarkdown(site), escapeMarkdown(result.Error))
		}
	}

	if summary.StorageStats != nil {
		msgText += fmt.Sprintf("💾 Stored total: %d\n", summary.StorageStats.Total)
	}
	return msgText
}

func errorText(err error) string {
	return fmt.Sprintf("❌ Error: %v", err)
}

// SendSummary posts one message covering the whole run.
func (b *Bot) SendSummary(summary *runner.Summary) error {
	msg := tgbotapi.NewMessage(b.chatID, summaryText(summary))
	msg.ParseMode = "MarkdownV2"

	_, err := b.api.Send(msg)
	return err
}

// SendError posts a plain-text failure notice.
func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, errorText(err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}
