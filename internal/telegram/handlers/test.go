package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TestHandler handles the /test command, a plain liveness check.
type TestHandler struct {
	logger *logrus.Logger
}

// NewTestHandler creates a new /test command handler.
func NewTestHandler(logger *logrus.Logger) *TestHandler {
	return &TestHandler{logger: logger}
}

func (h *TestHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := fmt.Sprintf("✅ I'm up. Server time: %s", time.Now().UTC().Format(time.RFC3339))

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send test message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"chat_id": message.Chat.ID}).Info("sent test message")
	return nil
}
