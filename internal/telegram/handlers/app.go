package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// AppHandler handles the /app command, pointing the employee at the
// attendance dashboard.
type AppHandler struct {
	webAppURL string
	logger    *logrus.Logger
}

// NewAppHandler creates a new /app command handler.
func NewAppHandler(webAppURL string, logger *logrus.Logger) *AppHandler {
	return &AppHandler{webAppURL: webAppURL, logger: logger}
}

func (h *AppHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if h.webAppURL == "" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "⚠️ The dashboard isn't configured yet — ask your administrator.")
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send app message: %w", err)
		}
		return nil
	}

	text := fmt.Sprintf("🌐 Open your dashboard: %s", h.webAppURL)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send app message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"chat_id": message.Chat.ID}).Info("sent app message")
	return nil
}
