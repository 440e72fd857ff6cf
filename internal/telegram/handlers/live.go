package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// LiveHandler handles the /live command. Telegram gives bots no way to
// request live location the way it does for a one-off static share, so
// this just walks the employee through the native flow.
type LiveHandler struct {
	logger *logrus.Logger
}

// NewLiveHandler creates a new /live command handler.
func NewLiveHandler(logger *logrus.Logger) *LiveHandler {
	return &LiveHandler{logger: logger}
}

func (h *LiveHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := `🔴 <b>Share live location</b>

1. Tap the 📎 attachment icon in this chat
2. Choose <b>Location</b>
3. Choose <b>Share My Live Location</b>

I'll track your location for as long as you keep it live, and stop automatically when it ends.`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send live message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"chat_id": message.Chat.ID}).Info("sent live instructions")
	return nil
}
