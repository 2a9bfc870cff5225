package service

import (
	"context"
	"sort"
	"time"

	"team-portal/internal/models"
	"team-portal/internal/repository"
)

type WorkStatus string

const (
	StatusWorking      WorkStatus = "working"
	StatusNotClockedIn WorkStatus = "not_clocked_in"
	StatusNoSchedule   WorkStatus = "no_schedule"
)

var statusMessages = map[WorkStatus]string{
	StatusWorking:      "Trabalhando",
	StatusNotClockedIn: "Fora do expediente",
	StatusNoSchedule:   "Sem horário hoje",
}

// MemberStatus is one row of the team status feed.
type MemberStatus struct {
	UserID        uint       `json:"user_id"`
	Username      string     `json:"username"`
	Sector        string     `json:"sector"`
	Status        WorkStatus `json:"status"`
	Message       string     `json:"message"`
	TodaySchedule string     `json:"today_schedule,omitempty"`
	TotalHours    string     `json:"total_hours"`
	WeeklyHours   string     `json:"weekly_hours"`
	BankOfHours   string     `json:"bank_of_hours"`
}

type StatusService struct {
	store *repository.Store
	loc   *time.Location
}

func NewStatusService(store *repository.Store, loc *time.Location) *StatusService {
	if loc == nil {
		loc = time.Local
	}
	return &StatusService{store: store, loc: loc}
}

// TeamStatus reports every active user, working ones first and then by name.
// A user without a schedule for today is reported as no_schedule even while
// clocked in.
func (s *StatusService) TeamStatus(ctx context.Context, now time.Time) ([]MemberStatus, error) {
	now = now.In(s.loc)

	users, err := s.store.Users.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	open, err := s.store.Entries.OpenUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]MemberStatus, 0, len(users))
	for _, u := range users {
		feed = append(feed, memberStatus(u, open[u.ID], now))
	}

	sort.SliceStable(feed, func(i, j int) bool {
		wi, wj := feed[i].Status == StatusWorking, feed[j].Status == StatusWorking
		if wi != wj {
			return wi
		}
		return feed[i].Username < feed[j].Username
	})

	return feed, nil
}

func memberStatus(u *models.User, clockedIn bool, now time.Time) MemberStatus {
	row := MemberStatus{
		UserID:      u.ID,
		Username:    u.Username,
		Sector:      u.Sector.Label(),
		TotalHours:  models.FormatMinutes(u.TotalHoursWorked),
		WeeklyHours: models.FormatMinutes(u.WorkSchedule.WeeklyMinutes()),
		BankOfHours: models.FormatMinutes(u.BankOfHours),
	}

	today, ok := u.WorkSchedule.On(now)
	switch {
	case !ok:
		row.Status = StatusNoSchedule
	case clockedIn:
		row.Status = StatusWorking
	default:
		row.Status = StatusNotClockedIn
	}
	if ok {
		row.TodaySchedule = today.String()
	}
	row.Message = statusMessages[row.Status]

	return row
}
