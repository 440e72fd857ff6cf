package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// LocationHandler handles the /location command: it prompts the
// employee for a one-off static location share via Telegram's
// request-location keyboard button, which is the only way a bot can
// trigger that native share sheet.
type LocationHandler struct {
	logger *logrus.Logger
}

// NewLocationHandler creates a new /location command handler.
func NewLocationHandler(logger *logrus.Logger) *LocationHandler {
	return &LocationHandler{logger: logger}
}

func (h *LocationHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, "📍 Tap the button below to send your current location.")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation("Send my location"),
		),
	)

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send location prompt: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"chat_id": message.Chat.ID}).Info("sent location prompt")
	return nil
}
