// Package handlers implements the command surface named in spec §6:
// /start, /test, /app, /location, /live. None of them touch the
// geofencing core directly — they exist so the bot has something to
// say back to an employee outside of location events.
package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// StartHandler handles the /start command.
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new /start command handler.
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := `👋 <b>Welcome to GeoClock</b>

I track your location while you're clocked in and keep your attendance record in sync with your working area.

<b>Commands:</b>
• /location — send your current location once
• /live — instructions for sharing your live location
• /app — open your attendance dashboard
• /test — check that I'm responding`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"chat_id": message.Chat.ID}).Info("sent start message")
	return nil
}
