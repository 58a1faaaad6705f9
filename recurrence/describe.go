package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var weekdayLabels = map[string]string{
	"MO": "Mon",
	"TU": "Tue",
	"WE": "Wed",
	"TH": "Thu",
	"FR": "Fri",
	"SA": "Sat",
	"SU": "Sun",
}

var setPositionLabels = map[int]string{
	1:  "1st",
	2:  "2nd",
	3:  "3rd",
	4:  "4th",
	5:  "5th",
	-1: "last",
}

// DescribeOptions carries the optional context for Describe.
type DescribeOptions struct {
	// DTStart, when non-zero, supplies defaults for omitted weekday /
	// day-of-month parts and appends an " at HH:MM" suffix.
	DTStart time.Time
	// Timezone is an opaque label appended verbatim after the time suffix.
	// The caller is responsible for its formatting.
	Timezone string
}

// Describe renders a short, user-facing sentence for the subset of rules
// this engine builds itself. Anything outside that subset degrades to
// "Custom recurrence" rather than failing; description is display-only and
// must never break a page render.
func Describe(rrule string, opts DescribeOptions) string {
	parts := ParseParts(rrule)

	freq := ""
	if v, ok := parts["FREQ"]; ok {
		freq = strings.ToUpper(v[0])
	}

	interval := coerceInterval(parts)
	suffix := timeSuffix(opts)

	switch Frequency(freq) {
	case Daily:
		if interval == 1 {
			return "Daily" + suffix
		}
		return fmt.Sprintf("Every %d days%s", interval, suffix)
	case Weekly:
		return describeWeekly(parts["BYDAY"], opts.DTStart, interval, suffix)
	case Monthly:
		return describeMonthly(parts, opts.DTStart, interval, suffix)
	}

	return "Custom recurrence"
}

// coerceInterval reads INTERVAL, coercing garbage or out-of-range values
// to 1 rather than failing.
func coerceInterval(parts map[string][]string) int {
	values, ok := parts["INTERVAL"]
	if !ok {
		return 1
	}
	interval, err := strconv.Atoi(values[0])
	if err != nil || interval < 1 {
		return 1
	}
	return interval
}

func timeSuffix(opts DescribeOptions) string {
	if opts.DTStart.IsZero() {
		return ""
	}
	suffix := " at " + opts.DTStart.Format("15:04")
	if opts.Timezone != "" {
		suffix += " " + opts.Timezone
	}
	return suffix
}

func describeWeekly(byday []string, dtstart time.Time, interval int, suffix string) string {
	labels := weeklyDayLabels(byday, dtstart)
	if len(labels) == 0 {
		return "Weekly"
	}

	days := strings.Join(labels, ", ")
	if interval == 1 {
		return fmt.Sprintf("Weekly on %s%s", days, suffix)
	}
	return fmt.Sprintf("Every %d weeks on %s%s", interval, days, suffix)
}

// weeklyDayLabels resolves the day list (falling back to the start
// instant's weekday) into display labels, keeping first-supplied order.
// Display order deliberately differs from generation order, which is
// calendar order.
func weeklyDayLabels(byday []string, dtstart time.Time) []string {
	days := byday
	if len(days) == 0 && !dtstart.IsZero() {
		days = []string{weekdayCode(dtstart)}
	}
	if len(days) == 0 {
		return nil
	}

	labels := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.ToUpper(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if label, ok := weekdayLabels[d]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, d)
		}
	}
	return uniqueStrings(labels)
}

func describeMonthly(parts map[string][]string, dtstart time.Time, interval int, suffix string) string {
	monthDays := parts["BYMONTHDAY"]
	byday := parts["BYDAY"]
	setPositions, hasSetPositions := parts["BYSETPOS"]

	if monthDays == nil && !dtstart.IsZero() {
		monthDays = []string{strconv.Itoa(dtstart.Day())}
	}
	if byday == nil && !dtstart.IsZero() {
		byday = []string{weekdayCode(dtstart)}
	}

	if monthDays != nil && !hasSetPositions {
		day := monthDays[0]
		if interval == 1 {
			return fmt.Sprintf("Monthly on day %s%s", day, suffix)
		}
		return fmt.Sprintf("Every %d months on day %s%s", interval, day, suffix)
	}

	if len(byday) > 0 && len(setPositions) > 0 {
		weekday := strings.ToUpper(byday[0])
		if label, ok := weekdayLabels[weekday]; ok {
			weekday = label
		}
		positions := formatSetPositions(setPositions)
		if positions == "" {
			return "Monthly"
		}
		if interval == 1 {
			return fmt.Sprintf("Monthly on the %s %s%s", positions, weekday, suffix)
		}
		return fmt.Sprintf("Every %d months on the %s %s%s", interval, positions, weekday, suffix)
	}

	return "Monthly"
}

// formatSetPositions renders BYSETPOS values as ordinal labels. Values are
// de-duplicated and sorted with -1 ("last") always after the positive
// values; tokens that are not integers are skipped. Returns "" when no
// valid integer survives.
func formatSetPositions(raw []string) string {
	positions := make([]int, 0, len(raw))
	for _, token := range raw {
		p, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		positions = append(positions, p)
	}
	if len(positions) == 0 {
		return ""
	}

	positions = uniqueInts(positions)
	sort.SliceStable(positions, func(i, j int) bool {
		iLast, jLast := positions[i] == -1, positions[j] == -1
		if iLast != jLast {
			return jLast
		}
		return positions[i] < positions[j]
	})

	labels := make([]string, len(positions))
	for i, p := range positions {
		if label, ok := setPositionLabels[p]; ok {
			labels[i] = label
		} else {
			labels[i] = strconv.Itoa(p)
		}
	}

	if len(labels) <= 2 {
		return strings.Join(labels, " and ")
	}
	return strings.Join(labels, ", ")
}
