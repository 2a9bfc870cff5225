package handler

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-portal/internal/models"
	"team-portal/internal/repository"
	"team-portal/internal/service"
	"team-portal/internal/testdb"
	"team-portal/pkg/logger"
	"team-portal/pkg/telegram"
)

type stubSender struct {
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (s *stubSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *stubSender) last(t *testing.T) string {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("no message sent")
	}
	return s.sent[len(s.sent)-1].Text
}

type testBot struct {
	*Handler
	sender *stubSender
	store  *repository.Store
	admin  *models.User
	now    time.Time
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	store := testdb.Store(t)
	log := logger.Discard()
	users := service.NewUserService(store.Users, log)
	entries := service.NewTimeEntryService(store, time.UTC, log)
	status := service.NewStatusService(store, time.UTC)

	admin, err := users.InitializeAdmin(context.Background(), "admin", "admin@example.com", "admin-pass")
	if err != nil {
		t.Fatalf("init admin: %v", err)
	}

	sender := &stubSender{}
	bot := &testBot{
		Handler: NewHandler(telegram.NewClientWithSender(sender), users, entries, status, log),
		sender:  sender,
		store:   store,
		admin:   admin,
		now:     time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), // Monday
	}
	bot.Handler.now = func() time.Time { return bot.now }
	return bot
}

// member registers and approves an account with a Monday 08:00-17:00 schedule.
func (b *testBot) member(t *testing.T, username string) *models.User {
	t.Helper()
	ctx := context.Background()

	user, err := b.users.Register(ctx, username, username+"@example.com", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := b.users.Approve(ctx, b.admin.Identity(), user.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	schedule := models.WeekSchedule{models.Monday: {Start: "08:00", End: "17:00"}}
	user, err = b.users.SetSchedule(ctx, models.Identity{UserID: user.ID, Role: models.RoleMember}, schedule)
	if err != nil {
		t.Fatalf("set schedule: %v", err)
	}
	return user
}

func (b *testBot) command(chatID int64, text string) {
	cmd := strings.SplitN(text, " ", 2)[0]
	b.HandleUpdate(context.Background(), tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 42,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
		},
	})
}

func TestUnlinkedChat(t *testing.T) {
	bot := newTestBot(t)

	bot.command(100, "/in")

	if got := bot.sender.last(t); !strings.Contains(got, "não está vinculado") {
		t.Errorf("reply = %q", got)
	}
}

func TestLinkAndClockFlow(t *testing.T) {
	bot := newTestBot(t)
	user := bot.member(t, "ana")

	bot.command(100, "/link ana secret")
	if got := bot.sender.last(t); !strings.Contains(got, "Chat vinculado") {
		t.Fatalf("link reply = %q", got)
	}
	if _, ok := bot.sender.requests[0].(tgbotapi.DeleteMessageConfig); !ok {
		t.Errorf("password message not deleted: %T", bot.sender.requests[0])
	}

	bot.command(100, "/in")
	if got := bot.sender.last(t); !strings.Contains(got, "Entrada registrada às 08:00") {
		t.Fatalf("clock-in reply = %q", got)
	}

	bot.command(100, "/in")
	if got := bot.sender.last(t); !strings.Contains(got, "já registrou entrada") {
		t.Errorf("second clock-in reply = %q", got)
	}

	bot.now = bot.now.Add(500 * time.Minute)
	bot.command(100, "/out")
	got := bot.sender.last(t)
	if !strings.Contains(got, "8h 20m") || !strings.Contains(got, "Banco de horas: 0h 40m") {
		t.Errorf("clock-out reply = %q", got)
	}

	stored, err := bot.store.Users.GetByID(context.Background(), user.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.TotalHoursWorked != 500 || stored.BankOfHours != 40 {
		t.Errorf("total = %d bank = %d, want 500 and 40", stored.TotalHoursWorked, stored.BankOfHours)
	}

	bot.command(100, "/out")
	if got := bot.sender.last(t); !strings.Contains(got, "não tem uma entrada em aberto") {
		t.Errorf("second clock-out reply = %q", got)
	}
}

func TestLinkPendingAccount(t *testing.T) {
	bot := newTestBot(t)
	if _, err := bot.users.Register(context.Background(), "bia", "bia@example.com", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	bot.command(200, "/link bia secret")

	if got := bot.sender.last(t); !strings.Contains(got, "não foi aprovada") {
		t.Errorf("reply = %q", got)
	}
}

func TestLinkWrongPassword(t *testing.T) {
	bot := newTestBot(t)
	bot.member(t, "caio")

	bot.command(300, "/link caio nope")

	if got := bot.sender.last(t); !strings.Contains(got, "inválidos") {
		t.Errorf("reply = %q", got)
	}
}

func TestOccurrenceRequiresDescription(t *testing.T) {
	bot := newTestBot(t)
	bot.member(t, "duda")
	bot.command(400, "/link duda secret")

	bot.command(400, "/ocorrencia")
	if got := bot.sender.last(t); !strings.Contains(got, "Informe a descrição") {
		t.Errorf("empty reply = %q", got)
	}

	bot.command(400, "/ocorrencia reunião externa")
	if got := bot.sender.last(t); !strings.Contains(got, "reunião externa") {
		t.Errorf("occurrence reply = %q", got)
	}
}

func TestPendingAndApprove(t *testing.T) {
	bot := newTestBot(t)
	bot.member(t, "edu")
	bot.command(500, "/link edu secret")

	bot.command(500, "/pendentes")
	if got := bot.sender.last(t); !strings.Contains(got, "Acesso negado") {
		t.Errorf("member reply = %q", got)
	}

	pending, err := bot.users.Register(context.Background(), "fabi", "fabi@example.com", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	bot.command(600, "/link admin admin-pass")
	bot.command(600, "/pendentes")
	if got := bot.sender.last(t); !strings.Contains(got, "fabi") {
		t.Errorf("pending reply = %q", got)
	}

	bot.command(600, "/aprovar abc")
	if got := bot.sender.last(t); !strings.Contains(got, "Uso: /aprovar") {
		t.Errorf("bad id reply = %q", got)
	}

	bot.command(600, "/aprovar "+itoa(pending.ID))
	if got := bot.sender.last(t); !strings.Contains(got, "fabi aprovado") {
		t.Errorf("approve reply = %q", got)
	}

	bot.command(600, "/aprovar "+itoa(pending.ID))
	if got := bot.sender.last(t); !strings.Contains(got, "já estava aprovado") {
		t.Errorf("repeat approve reply = %q", got)
	}
}

func TestClockInCallback(t *testing.T) {
	bot := newTestBot(t)
	user := bot.member(t, "gil")
	bot.command(700, "/link gil secret")

	bot.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			Data: callbackClockIn,
			Message: &tgbotapi.Message{
				MessageID: 7,
				Chat:      &tgbotapi.Chat{ID: 700},
			},
		},
	})

	open, err := bot.entries.IsClockedIn(context.Background(), user.ID)
	if err != nil || !open {
		t.Fatalf("IsClockedIn = %v, %v", open, err)
	}
	if _, ok := bot.sender.requests[len(bot.sender.requests)-1].(tgbotapi.CallbackConfig); !ok {
		t.Errorf("callback not answered")
	}
}

func TestTeamAndUnknownCommand(t *testing.T) {
	bot := newTestBot(t)
	bot.member(t, "hugo")
	bot.command(800, "/link hugo secret")
	bot.command(800, "/in")

	bot.command(800, "/equipe")
	if got := bot.sender.last(t); !strings.Contains(got, "🟢 hugo") {
		t.Errorf("team reply = %q", got)
	}

	bot.command(800, "/voar")
	if got := bot.sender.last(t); !strings.Contains(got, "Comando desconhecido") {
		t.Errorf("unknown reply = %q", got)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
