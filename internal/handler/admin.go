package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-portal/internal/models"
)

// linkAccount ties the chat to an account. The message carrying the password
// is deleted once read.
func (h *Handler) linkAccount(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	h.request(tgbotapi.NewDeleteMessage(chatID, message.MessageID))

	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.send(chatID, "❌ Uso: /link <usuário> <senha>")
		return
	}

	user, err := h.users.LinkTelegram(ctx, parts[0], parts[1], chatID)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		h.send(chatID, "❌ Usuário ou senha inválidos.")
		return
	case errors.Is(err, models.ErrAccountInactive):
		h.send(chatID, "⏳ Sua conta ainda não foi aprovada ou está desativada.")
		return
	case errors.Is(err, models.ErrChatAlreadyLinked):
		h.send(chatID, "⚠️ Este chat já está vinculado a outra conta.")
		return
	case err != nil:
		h.replyError(chatID, "vincular conta", err)
		return
	}

	clockedIn, err := h.entries.IsClockedIn(ctx, user.ID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to check open entry")
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Chat vinculado à conta %s (%s).\n\nUse /help para ver os comandos.",
		user.Username, user.Sector.Label()))
	msg.ReplyMarkup = clockKeyboard(clockedIn)
	h.sendMessage(msg)
}

func (h *Handler) showPending(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	pending, err := h.users.ListPending(ctx, user.Identity())
	if errors.Is(err, models.ErrForbidden) {
		h.send(chatID, "❌ Acesso negado. Comando disponível apenas para a gestão.")
		return
	}
	if err != nil {
		h.replyError(chatID, "carregar cadastros pendentes", err)
		return
	}
	if len(pending) == 0 {
		h.send(chatID, "✅ Nenhum cadastro pendente.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Cadastros pendentes (%d):\n\n", len(pending))
	for _, u := range pending {
		fmt.Fprintf(&b, "#%d %s <%s> - %s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format("02/01/2006"))
	}
	b.WriteString("\nUse /aprovar <id> para aprovar.")

	h.send(chatID, b.String())
}

func (h *Handler) approveUser(ctx context.Context, chatID int64, args string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil || id == 0 {
		h.send(chatID, "❌ Uso: /aprovar <id>")
		return
	}

	approved, err := h.users.Approve(ctx, user.Identity(), uint(id))
	switch {
	case errors.Is(err, models.ErrForbidden):
		h.send(chatID, "❌ Acesso negado. Comando disponível apenas para a gestão.")
	case errors.Is(err, models.ErrUserNotFound):
		h.send(chatID, fmt.Sprintf("❌ Usuário #%d não encontrado.", id))
	case errors.Is(err, models.ErrAlreadyApproved):
		h.send(chatID, fmt.Sprintf("ℹ️ %s já estava aprovado.", approved.Username))
	case err != nil:
		h.replyError(chatID, "aprovar usuário", err)
	default:
		h.send(chatID, fmt.Sprintf("✅ %s aprovado como membro.", approved.Username))
	}
}
