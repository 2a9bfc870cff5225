package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWeekScheduleRejectsUnknownDay(t *testing.T) {
	var w WeekSchedule
	err := json.Unmarshal([]byte(`{"segunda":{"start":"08:00","end":"17:00"},"monday":{"start":"08:00","end":"17:00"}}`), &w)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestWeekScheduleScanRoundTrip(t *testing.T) {
	w := WeekSchedule{Monday: {Start: "08:00", End: "12:00"}, Friday: {Start: "13:00", End: "17:30"}}
	v, err := w.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var back WeekSchedule
	if err := back.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := back.WeeklyMinutes(); got != 510 {
		t.Errorf("WeeklyMinutes = %d, want 510", got)
	}
	if d, ok := back.For(Friday); !ok || d.End != "17:30" {
		t.Errorf("friday = %+v, %v", d, ok)
	}
}

func TestWeeklyMinutesSkipsInvertedAndMalformed(t *testing.T) {
	w := WeekSchedule{
		Monday:  {Start: "08:00", End: "10:00"},
		Tuesday: {Start: "18:00", End: "08:00"},
		Friday:  {Start: "8h", End: "10:00"},
	}
	if got := w.WeeklyMinutes(); got != 120 {
		t.Errorf("WeeklyMinutes = %d, want 120", got)
	}
	if err := w.Validate(); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("Validate = %v, want ErrInvalidSchedule", err)
	}
}

func TestDayScheduleContainsIsInclusive(t *testing.T) {
	d := DaySchedule{Start: "08:00", End: "17:00"}
	day := func(h, m, s int) time.Time { return time.Date(2024, 3, 4, h, m, s, 0, time.UTC) }

	cases := map[time.Time]bool{
		day(8, 0, 0):   true,
		day(17, 0, 0):  true,
		day(17, 0, 1):  false,
		day(7, 59, 59): false,
	}
	for at, want := range cases {
		if got, ok := d.Contains(at); !ok || got != want {
			t.Errorf("Contains(%s) = %v, %v, want %v", at.Format("15:04:05"), got, ok, want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	open := &TimeEntry{Kind: KindClockIn, StartTime: start}
	if open.DurationMinutes() != 0 || !open.IsOpen() {
		t.Errorf("open entry: duration %d open %v", open.DurationMinutes(), open.IsOpen())
	}

	end := start.Add(90*time.Minute + 59*time.Second)
	closed := &TimeEntry{StartTime: start, EndTime: &end}
	if got := closed.DurationMinutes(); got != 90 {
		t.Errorf("DurationMinutes = %d, want 90", got)
	}

	before := start.Add(-time.Hour)
	skewed := &TimeEntry{StartTime: start, EndTime: &before}
	if got := skewed.DurationMinutes(); got != 0 {
		t.Errorf("negative duration = %d, want 0", got)
	}
}

func TestOrderTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderOpen, OrderInProgress},
		{OrderInProgress, OrderCompleted},
		{OrderInProgress, OrderCancelled},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	if OrderOpen.CanTransitionTo(OrderCancelled) {
		t.Error("open -> cancelled should be rejected")
	}
	if OrderCompleted.CanTransitionTo(OrderOpen) || !OrderCompleted.IsTerminal() {
		t.Error("completed must be terminal")
	}
	if _, err := ParseOrderStatus("archived"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestParseRoleAndSector(t *testing.T) {
	if _, err := ParseRole("owner"); !IsValidation(err) {
		t.Errorf("ParseRole(owner) = %v", err)
	}
	if _, err := ParseSector("finance"); !IsValidation(err) {
		t.Errorf("ParseSector(finance) = %v", err)
	}
	if s, err := ParseSector("powertrain"); err != nil || s.Label() != "PowerTrain" {
		t.Errorf("ParseSector(powertrain) = %v, %v", s, err)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{0: "0h 0m", 500: "8h 20m", -40: "-0h 40m", -125: "-2h 5m"}
	for in, want := range cases {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}
