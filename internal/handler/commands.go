package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-portal/internal/metrics"
)

const helpText = `📋 Comandos disponíveis:

🔗 Conta:
/link <usuário> <senha> - Vincular este chat à sua conta

⏰ Ponto:
/in - Registrar entrada
/out - Registrar saída
/ocorrencia <texto> - Registrar uma ocorrência
/hoje - Registros de hoje
/historico [N] - Últimos N registros (padrão 10)
/horario - Seu horário semanal e banco de horas
/equipe - Quem está trabalhando agora

👑 Gestão:
/pendentes - Cadastros aguardando aprovação
/aprovar <id> - Aprovar um cadastro

/help - Mostrar esta mensagem`

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command := message.Command()
	args := message.CommandArguments()

	metrics.BotCommandsTotal.WithLabelValues(knownCommand(command)).Inc()

	switch command {
	case "start", "help":
		h.send(chatID, helpText)
	case "link":
		h.linkAccount(ctx, message, args)

	case "in", "entrada":
		h.clockIn(ctx, chatID)
	case "out", "saida":
		h.clockOut(ctx, chatID)
	case "ocorrencia":
		h.registerOccurrence(ctx, chatID, args)
	case "hoje":
		h.showToday(ctx, chatID)
	case "historico":
		h.showHistory(ctx, chatID, args)
	case "horario":
		h.showSchedule(ctx, chatID)
	case "equipe":
		h.showTeam(ctx, chatID)

	case "pendentes":
		h.showPending(ctx, chatID)
	case "aprovar":
		h.approveUser(ctx, chatID, args)

	default:
		h.send(chatID, "❌ Comando desconhecido. Use /help para ver a lista de comandos.")
	}
}

// knownCommand keeps the metric label set bounded.
func knownCommand(command string) string {
	switch command {
	case "start", "help", "link", "in", "entrada", "out", "saida", "ocorrencia",
		"hoje", "historico", "horario", "equipe", "pendentes", "aprovar":
		return command
	}
	return "unknown"
}
