package service

import (
	"time"

	"team-portal/internal/models"
)

// Reconciliation is the effect of one clock-out on the user's totals.
type Reconciliation struct {
	AddedMinutes    int  `json:"added_minutes"`
	TotalMinutes    int  `json:"total_minutes"`
	ExpectedMinutes int  `json:"expected_minutes"`
	BankMinutes     int  `json:"bank_minutes"`
	BankUpdated     bool `json:"bank_updated"`
}

// Reconcile computes the new totals for a closed session of duration minutes.
//
// The worked total always accumulates. The hour bank is overwritten with the
// difference between today's expected minutes and this session, where today
// is the calendar day of now (not the day the session started). When today
// has no usable schedule the bank keeps its previous value.
func Reconcile(user *models.User, duration int, now time.Time) Reconciliation {
	rec := Reconciliation{
		AddedMinutes: duration,
		TotalMinutes: user.TotalHoursWorked + duration,
		BankMinutes:  user.BankOfHours,
	}

	expected, ok := ExpectedMinutesOn(user.WorkSchedule, now)
	if !ok {
		return rec
	}

	rec.ExpectedMinutes = expected
	rec.BankMinutes = expected - duration
	rec.BankUpdated = true
	return rec
}

func (r Reconciliation) bank() *int {
	if !r.BankUpdated {
		return nil
	}
	bank := r.BankMinutes
	return &bank
}
