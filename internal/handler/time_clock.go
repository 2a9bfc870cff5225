package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-portal/internal/models"
	"team-portal/internal/service"
)

const maxHistory = 50

// clockIn registers the start of a work session.
func (h *Handler) clockIn(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	res, err := h.entries.ClockIn(ctx, user.Identity(), h.now())
	if errors.Is(err, models.ErrAlreadyClockedIn) {
		msg := tgbotapi.NewMessage(chatID, "⚠️ Você já registrou entrada. Registre a saída antes de uma nova entrada.")
		msg.ReplyMarkup = clockKeyboard(true)
		h.sendMessage(msg)
		return
	}
	if err != nil {
		h.replyError(chatID, "registrar entrada", err)
		return
	}

	text := fmt.Sprintf("✅ Entrada registrada às %s (%s).",
		res.Entry.StartTime.Format("15:04"),
		res.Entry.StartTime.Format("02/01/2006"),
	)
	if day, ok := user.WorkSchedule.On(res.Entry.StartTime); ok {
		text += "\n🗓 Horário de hoje: " + day.String()
	}
	if res.OutsideWorkHours {
		text += "\n\n⚠️ Atenção: você está registrando entrada fora do seu horário de trabalho."
	}
	text += "\n\n💡 Não esqueça de registrar a saída com /out"

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = clockKeyboard(true)
	h.sendMessage(msg)
}

// clockOut closes the open session and reports the hour bank.
func (h *Handler) clockOut(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	res, err := h.entries.ClockOut(ctx, user.Identity(), h.now())
	if errors.Is(err, models.ErrNotClockedIn) {
		msg := tgbotapi.NewMessage(chatID, "⚠️ Você não tem uma entrada em aberto.")
		msg.ReplyMarkup = clockKeyboard(false)
		h.sendMessage(msg)
		return
	}
	if err != nil {
		h.replyError(chatID, "registrar saída", err)
		return
	}

	rec := res.Reconciliation
	text := fmt.Sprintf(`✅ Saída registrada às %s.

⏱ Trabalhado nesta sessão: %s
📊 Total acumulado: %s`,
		res.Entry.EndTime.Format("15:04"),
		models.FormatMinutes(res.DurationMinutes),
		models.FormatMinutes(rec.TotalMinutes),
	)
	if rec.BankUpdated {
		text += fmt.Sprintf("\n🏦 Banco de horas: %s (previsto hoje: %s)",
			models.FormatMinutes(rec.BankMinutes),
			models.FormatMinutes(rec.ExpectedMinutes),
		)
	} else {
		text += "\n🏦 Sem horário definido para hoje, banco de horas mantido."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = clockKeyboard(false)
	h.sendMessage(msg)
}

func (h *Handler) registerOccurrence(ctx context.Context, chatID int64, args string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	entry, err := h.entries.RegisterOccurrence(ctx, user.Identity(), 0, args, h.now())
	if errors.Is(err, models.ErrDescriptionRequired) {
		h.send(chatID, "❌ Informe a descrição da ocorrência.\nExemplo: /ocorrencia Cheguei atrasado por causa do trânsito")
		return
	}
	if err != nil {
		h.replyError(chatID, "registrar ocorrência", err)
		return
	}

	h.send(chatID, fmt.Sprintf("📝 Ocorrência registrada às %s:\n%s",
		entry.StartTime.Format("15:04"), entry.Description))
}

func (h *Handler) showToday(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	now := h.now()
	entries, err := h.entries.EntriesOn(ctx, user.ID, now)
	if err != nil {
		h.replyError(chatID, "carregar registros", err)
		return
	}

	var b strings.Builder
	b.WriteString("📅 Hoje\n")
	if day, ok := user.WorkSchedule.On(now); ok {
		b.WriteString("🗓 Horário: " + day.String() + "\n")
	}
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString("Nenhum registro hoje.")
	}
	worked := 0
	clockedIn := false
	for _, e := range entries {
		b.WriteString(formatEntry(e))
		b.WriteString("\n")
		worked += e.DurationMinutes()
		if e.IsOpen() {
			clockedIn = true
		}
	}
	if worked > 0 {
		b.WriteString("\n⏱ Trabalhado: " + models.FormatMinutes(worked))
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = clockKeyboard(clockedIn)
	h.sendMessage(msg)
}

func (h *Handler) showHistory(ctx context.Context, chatID int64, args string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	limit := service.DefaultRecentEntries
	if args = strings.TrimSpace(args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			h.send(chatID, "❌ Informe um número válido. Exemplo: /historico 5")
			return
		}
		limit = min(n, maxHistory)
	}

	entries, err := h.entries.RecentEntries(ctx, user.ID, limit)
	if err != nil {
		h.replyError(chatID, "carregar histórico", err)
		return
	}
	if len(entries) == 0 {
		h.send(chatID, "📭 Nenhum registro encontrado.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 Últimos %d registros:\n\n", len(entries))
	for _, e := range entries {
		b.WriteString(e.StartTime.Format("02/01") + " ")
		b.WriteString(formatEntry(e))
		b.WriteString("\n")
	}

	h.send(chatID, b.String())
}

func (h *Handler) showSchedule(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	var b strings.Builder
	b.WriteString("🗓 Seu horário semanal:\n\n")
	for _, day := range models.Weekdays {
		if d, ok := user.WorkSchedule.For(day); ok {
			fmt.Fprintf(&b, "%s: %s\n", day.Label(), d.String())
		} else {
			fmt.Fprintf(&b, "%s: -\n", day.Label())
		}
	}
	fmt.Fprintf(&b, "\n⏳ Carga semanal: %s", models.FormatMinutes(user.WorkSchedule.WeeklyMinutes()))
	fmt.Fprintf(&b, "\n📊 Total trabalhado: %s", models.FormatMinutes(user.TotalHoursWorked))
	fmt.Fprintf(&b, "\n🏦 Banco de horas: %s", models.FormatMinutes(user.BankOfHours))

	h.send(chatID, b.String())
}

func (h *Handler) showTeam(ctx context.Context, chatID int64) {
	if _, ok := h.currentUser(ctx, chatID); !ok {
		return
	}

	feed, err := h.status.TeamStatus(ctx, h.now())
	if err != nil {
		h.replyError(chatID, "carregar status da equipe", err)
		return
	}
	if len(feed) == 0 {
		h.send(chatID, "👥 Nenhum membro ativo.")
		return
	}

	icons := map[service.WorkStatus]string{
		service.StatusWorking:      "🟢",
		service.StatusNotClockedIn: "⚪️",
		service.StatusNoSchedule:   "⚫️",
	}

	var b strings.Builder
	b.WriteString("👥 Equipe agora:\n\n")
	for _, m := range feed {
		fmt.Fprintf(&b, "%s %s (%s) - %s", icons[m.Status], m.Username, m.Sector, m.Message)
		if m.TodaySchedule != "" {
			fmt.Fprintf(&b, " [%s]", m.TodaySchedule)
		}
		b.WriteString("\n")
	}

	h.send(chatID, b.String())
}

func formatEntry(e *models.TimeEntry) string {
	switch {
	case e.Kind == models.KindOccurrence:
		return fmt.Sprintf("📝 %s %s", e.StartTime.Format("15:04"), e.Description)
	case e.IsOpen():
		return fmt.Sprintf("🟢 %s - em andamento", e.StartTime.Format("15:04"))
	default:
		return fmt.Sprintf("⏰ %s - %s (%s)",
			e.StartTime.Format("15:04"), e.EndTime.Format("15:04"), e.FormatDuration())
	}
}

func (h *Handler) replyError(chatID int64, action string, err error) {
	h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to " + action)
	h.send(chatID, fmt.Sprintf("❌ Erro ao %s. Tente novamente mais tarde.", action))
}
