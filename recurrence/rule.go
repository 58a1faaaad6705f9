// Package recurrence implements the recurrence-rule sublanguage used by
// meeting series: a minimal, canonical subset of the iCalendar RRULE
// grammar that can be built from structured inputs, parsed leniently, and
// rendered as a short human sentence.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the repetition base of a rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

// MonthlyMode selects which of the two monthly shapes a rule uses.
type MonthlyMode string

const (
	// MonthDay repeats on a fixed day of the month (BYMONTHDAY).
	MonthDay MonthlyMode = "monthday"
	// NthWeekday repeats on the nth weekday of the month (BYDAY + BYSETPOS).
	NthWeekday MonthlyMode = "nth_weekday"
)

// Interval bounds accepted by Build.
const (
	MinInterval = 1
	MaxInterval = 365
)

// ISO weekday codes, Monday first.
var weekdayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Rule is an immutable, validated recurrence rule. Construct one with
// Build; do not mutate it afterwards. A Rule carries no timezone or start
// time, those are supplied at generation time.
type Rule struct {
	Frequency Frequency
	Interval  int

	// Weekly only: ordered-unique ISO weekday codes.
	Days []string

	// Monthly only: exactly one of the two shapes is populated,
	// according to MonthlyMode.
	MonthlyMode  MonthlyMode
	DayOfMonth   int
	Weekday      string
	SetPositions []int
}

// BuildInput holds the structured inputs for Build. DTStart supplies the
// defaults for fields that are omitted (weekday, day of month).
type BuildInput struct {
	Frequency Frequency
	Interval  int
	DTStart   time.Time

	// Weekly. Values are upper-cased, de-duplicated preserving first-seen
	// order, and validated. Empty defaults to DTStart's weekday.
	WeeklyDays []string

	// Monthly. Mode defaults to MonthDay.
	MonthlyMode MonthlyMode
	// DayOfMonth is optional; nil defaults to DTStart's day of month.
	DayOfMonth *int
	// Weekday is optional; empty defaults to DTStart's weekday.
	Weekday string
	// SetPositions is optional; empty defaults to [1]. Each value must be
	// one of -1, 1, 2, 3, 4, 5 (-1 means "last").
	SetPositions []int
}

// Build validates the input and returns a Rule. Two builds with equivalent
// input (duplicates removed, case folded) produce rules whose Canonical
// forms are byte-identical.
func Build(in BuildInput) (*Rule, error) {
	freq := Frequency(strings.ToUpper(strings.TrimSpace(string(in.Frequency))))
	switch freq {
	case Daily, Weekly, Monthly:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, in.Frequency)
	}

	if in.Interval < MinInterval || in.Interval > MaxInterval {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInterval, in.Interval)
	}

	rule := &Rule{Frequency: freq, Interval: in.Interval}

	switch freq {
	case Weekly:
		days, err := normalizeWeeklyDays(in.WeeklyDays, in.DTStart)
		if err != nil {
			return nil, err
		}
		rule.Days = days
	case Monthly:
		if err := applyMonthly(rule, in); err != nil {
			return nil, err
		}
	}

	return rule, nil
}

// Canonical returns the serialized wire form of the rule: semicolon-joined
// KEY=VALUE pairs with uppercase keys and comma-joined multi-values, e.g.
// "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE". This is the form persisted in the
// store and re-parsed on read.
func (r *Rule) Canonical() string {
	parts := []string{
		"FREQ=" + string(r.Frequency),
		"INTERVAL=" + strconv.Itoa(r.Interval),
	}

	switch r.Frequency {
	case Weekly:
		parts = append(parts, "BYDAY="+strings.Join(r.Days, ","))
	case Monthly:
		if r.MonthlyMode == MonthDay {
			parts = append(parts, "BYMONTHDAY="+strconv.Itoa(r.DayOfMonth))
		} else {
			parts = append(parts,
				"BYDAY="+r.Weekday,
				"BYSETPOS="+joinInts(r.SetPositions),
			)
		}
	}

	return strings.Join(parts, ";")
}

func normalizeWeeklyDays(raw []string, dtstart time.Time) ([]string, error) {
	days := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.ToUpper(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		days = []string{weekdayCode(dtstart)}
	}
	days = uniqueStrings(days)

	for _, d := range days {
		if !validWeekdayCode(d) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, d)
		}
	}
	return days, nil
}

func applyMonthly(rule *Rule, in BuildInput) error {
	mode := in.MonthlyMode
	if mode == "" {
		mode = MonthDay
	}

	switch mode {
	case MonthDay:
		day := in.DTStart.Day()
		if in.DayOfMonth != nil {
			day = *in.DayOfMonth
		}
		if day < 1 || day > 31 {
			return fmt.Errorf("%w: got %d", ErrInvalidDayOfMonth, day)
		}
		rule.MonthlyMode = MonthDay
		rule.DayOfMonth = day

	case NthWeekday:
		weekday := strings.ToUpper(strings.TrimSpace(in.Weekday))
		if weekday == "" {
			weekday = weekdayCode(in.DTStart)
		}
		if !validWeekdayCode(weekday) {
			return fmt.Errorf("%w: %q", ErrInvalidWeekday, weekday)
		}

		positions := in.SetPositions
		if len(positions) == 0 {
			positions = []int{1}
		}
		positions = uniqueInts(positions)
		for _, p := range positions {
			if !validSetPosition(p) {
				return fmt.Errorf("%w: %d", ErrInvalidSetPosition, p)
			}
		}

		rule.MonthlyMode = NthWeekday
		rule.Weekday = weekday
		rule.SetPositions = positions

	default:
		return fmt.Errorf("%w: %q", ErrInvalidMonthlyMode, in.MonthlyMode)
	}
	return nil
}

// weekdayCode maps a time to its ISO weekday code (Monday = "MO").
func weekdayCode(t time.Time) string {
	return weekdayCodes[(int(t.Weekday())+6)%7]
}

func validWeekdayCode(code string) bool {
	for _, c := range weekdayCodes {
		if c == code {
			return true
		}
	}
	return false
}

func validSetPosition(p int) bool {
	return p == -1 || (p >= 1 && p <= 5)
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueInts(values []int) []int {
	out := make([]int, 0, len(values))
	seen := make(map[int]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
