package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "segunda"
	Tuesday   Weekday = "terca"
	Wednesday Weekday = "quarta"
	Thursday  Weekday = "quinta"
	Friday    Weekday = "sexta"
	Saturday  Weekday = "sabado"
	Sunday    Weekday = "domingo"
)

// Weekdays lists the week starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayLabels = map[Weekday]string{
	Monday:    "Segunda-feira",
	Tuesday:   "Terça-feira",
	Wednesday: "Quarta-feira",
	Thursday:  "Quinta-feira",
	Friday:    "Sexta-feira",
	Saturday:  "Sábado",
	Sunday:    "Domingo",
}

func ParseWeekday(s string) (Weekday, error) {
	day := Weekday(s)
	if _, ok := weekdayLabels[day]; !ok {
		return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, s)
	}
	return day, nil
}

// WeekdayOf maps a calendar date to its schedule key.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

func (d Weekday) Label() string {
	return weekdayLabels[d]
}

// DaySchedule is the configured work interval for one weekday, as "HH:MM".
type DaySchedule struct {
	Start string `json:"start" binding:"required,hhmm"`
	End   string `json:"end" binding:"required,hhmm"`
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ExpectedMinutes returns end minus start. ok is false when either side does
// not parse; the difference may be negative for an inverted interval.
func (d DaySchedule) ExpectedMinutes() (int, bool) {
	start, ok := ParseClock(d.Start)
	if !ok {
		return 0, false
	}
	end, ok := ParseClock(d.End)
	if !ok {
		return 0, false
	}
	return end - start, true
}

// Contains reports whether the time of day of t lies in [Start, End].
// parsed is false when the interval itself is malformed.
func (d DaySchedule) Contains(t time.Time) (within bool, parsed bool) {
	start, ok := ParseClock(d.Start)
	if !ok {
		return false, false
	}
	end, ok := ParseClock(d.End)
	if !ok {
		return false, false
	}

	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	from := time.Duration(start) * time.Minute
	to := time.Duration(end) * time.Minute

	return offset >= from && offset <= to, true
}

func (d DaySchedule) Validate() error {
	if _, ok := ParseClock(d.Start); !ok {
		return fmt.Errorf("%w: malformed start time %q", ErrInvalidSchedule, d.Start)
	}
	if _, ok := ParseClock(d.End); !ok {
		return fmt.Errorf("%w: malformed end time %q", ErrInvalidSchedule, d.End)
	}
	return nil
}

func (d DaySchedule) String() string {
	return d.Start + " - " + d.End
}

// WeekSchedule maps weekdays to optional work intervals. It is persisted as
// a single JSON column.
type WeekSchedule map[Weekday]DaySchedule

func (w WeekSchedule) For(day Weekday) (DaySchedule, bool) {
	d, ok := w[day]
	return d, ok
}

// On returns the interval configured for the weekday of t.
func (w WeekSchedule) On(t time.Time) (DaySchedule, bool) {
	return w.For(WeekdayOf(t))
}

// WeeklyMinutes sums the expected minutes of every configured day. Malformed
// days and non-positive intervals contribute nothing.
func (w WeekSchedule) WeeklyMinutes() int {
	total := 0
	for _, d := range w {
		minutes, ok := d.ExpectedMinutes()
		if ok && minutes > 0 {
			total += minutes
		}
	}
	return total
}

func (w WeekSchedule) Validate() error {
	for day, d := range w {
		if _, err := ParseWeekday(string(day)); err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

// UnmarshalJSON rejects unknown weekday keys.
func (w *WeekSchedule) UnmarshalJSON(data []byte) error {
	var raw map[string]DaySchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	schedule := make(WeekSchedule, len(raw))
	for key, d := range raw {
		day, err := ParseWeekday(key)
		if err != nil {
			return err
		}
		schedule[day] = d
	}
	*w = schedule
	return nil
}

func (w WeekSchedule) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[Weekday]DaySchedule(w))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (w *WeekSchedule) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*w = WeekSchedule{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("%w: unexpected column type %T", ErrInvalidSchedule, src)
	}

	if len(data) == 0 {
		*w = WeekSchedule{}
		return nil
	}
	return w.UnmarshalJSON(data)
}
