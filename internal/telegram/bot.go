package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/mwangi254/geoclock/internal/ingestion"
)

// Bot wraps the Telegram bot API.
type Bot struct {
	api      *tgbotapi.BotAPI
	logger   *logrus.Logger
	router   *Router
	ingestor *ingestion.Ingestor
}

// NewBot creates a new Telegram bot instance. ingestor may be nil in
// tests that only exercise command routing.
func NewBot(token string, ingestor *ingestion.Ingestor, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		logger:   logger,
		router:   NewRouter(logger),
		ingestor: ingestor,
	}, nil
}

// Start starts the bot with long polling.
func (b *Bot) Start(ctx context.Context) error {
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes incoming updates: a shared location (static or
// live-start) arrives on Message, a live-location edit arrives on
// EditedMessage (spec §6 "two event channels").
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.Location != nil:
		b.handleLocation(ctx, update.Message.Chat.ID, update.Message.MessageID, update.Message.Location, false)
	case update.EditedMessage != nil && update.EditedMessage.Location != nil:
		b.handleLocation(ctx, update.EditedMessage.Chat.ID, update.EditedMessage.MessageID, update.EditedMessage.Location, true)
	case update.Message != nil:
		b.router.HandleMessage(b.api, update.Message)
	}
}

func (b *Bot) handleLocation(ctx context.Context, chatID int64, messageID int, loc *tgbotapi.Location, isEdit bool) {
	if b.ingestor == nil {
		return
	}

	event := ingestion.LocationEvent{
		ChatID:    chatID,
		MessageID: int64(messageID),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		IsEdit:    isEdit,
	}
	if loc.HorizontalAccuracy != 0 {
		v := loc.HorizontalAccuracy
		event.Accuracy = &v
	}
	if loc.Heading != 0 {
		v := float64(loc.Heading)
		event.Heading = &v
	}
	// Telegram's location object carries no speed field; event.Speed
	// stays nil, matching the transport (spec §3 "speed ... or null").
	if loc.LivePeriod != 0 {
		v := loc.LivePeriod
		event.LivePeriodSeconds = &v
	}

	if err := b.ingestor.OnLocationEvent(ctx, event); err != nil {
		b.logger.WithFields(logrus.Fields{"chat_id": chatID, "message_id": messageID, "error": err}).Warn("location event not ingested")
	}
}

// SendMessage implements notifier.Sender: sends a plain-text message with
// HTML parse mode to a chat id given as a string, per spec §6.
func (b *Bot) SendMessage(ctx context.Context, chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", chatID, err)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err = b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// EditMessage edits an existing message.
func (b *Bot) EditMessage(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// RegisterCommand registers a command handler on the router.
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

// SendRaw sends a raw tgbotapi.Chattable message.
func (b *Bot) SendRaw(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}
