package handler

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"team-portal/internal/models"
	"team-portal/internal/service"
	"team-portal/pkg/telegram"
)

const (
	callbackClockIn  = "command_clock_in"
	callbackClockOut = "command_clock_out"
)

// Handler serves the Telegram bot front of the time clock.
type Handler struct {
	client  *telegram.Client
	users   *service.UserService
	entries *service.TimeEntryService
	status  *service.StatusService
	logger  *logrus.Logger
	now     func() time.Time
}

func NewHandler(
	client *telegram.Client,
	users *service.UserService,
	entries *service.TimeEntryService,
	status *service.StatusService,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		client:  client,
		users:   users,
		entries: entries,
		status:  status,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleUpdates consumes updates until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// inline buttons
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	// remove the keyboard so the button cannot be pressed twice
	editMsg := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	h.request(editMsg)

	switch callback.Data {
	case callbackClockIn:
		h.clockIn(ctx, chatID)
	case callbackClockOut:
		h.clockOut(ctx, chatID)
	default:
		h.logger.WithField("data", callback.Data).Warn("Unknown callback data")
	}

	h.request(tgbotapi.NewCallback(callback.ID, ""))
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	fields := logrus.Fields{"chat_id": message.Chat.ID}
	if message.From != nil {
		fields["from"] = message.From.UserName
	}
	h.logger.WithFields(fields).Debug(message.Text)

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.send(message.Chat.ID, "Não entendi. Use /help para ver os comandos disponíveis.")
}

// currentUser resolves the account linked to the chat and answers the chat
// itself when there is none.
func (h *Handler) currentUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.users.GetByTelegramChatID(ctx, chatID)
	if errors.Is(err, models.ErrUserNotFound) {
		h.send(chatID, "❌ Este chat não está vinculado a uma conta.\nUse /link <usuário> <senha> para vincular.")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to resolve chat user")
		h.send(chatID, "❌ Erro interno. Tente novamente mais tarde.")
		return nil, false
	}
	if !user.Active {
		h.send(chatID, "⏳ Sua conta ainda não foi aprovada ou está desativada.")
		return nil, false
	}
	return user, true
}

func (h *Handler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	h.sendMessage(msg)
}

func (h *Handler) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := h.client.Sender.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", msg.ChatID).Error("Failed to send message")
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.client.Sender.Request(c); err != nil {
		h.logger.WithError(err).Debug("Telegram request failed")
	}
}

func clockKeyboard(clockedIn bool) tgbotapi.InlineKeyboardMarkup {
	if clockedIn {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⏰ Registrar saída", callbackClockOut),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Registrar entrada", callbackClockIn),
		),
	)
}
