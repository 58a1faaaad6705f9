// Package occurrence expands a canonical recurrence rule into concrete,
// timezone-correct occurrence instants.
package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"meetseries/recurrence"
)

// ErrEmptyExpansion is returned when a non-zero count was requested but
// the rule structurally cannot produce a single instant. This should not
// happen for validly-built rules; it is a defensive check against a
// malformed stored or externally-supplied rule. Treat it as a defect in
// the originating rule, not a transient condition.
var ErrEmptyExpansion = errors.New("recurrence rule produced no occurrences")

// Generate expands a rule anchored at dtstart into at most count instants
// in strictly ascending order. Each instant keeps dtstart's wall-clock
// time-of-day and location. A count of zero or less yields an empty
// result and no error. Months that lack a requested nth weekday (a "5th
// Friday" in a four-Friday month) contribute no instant and expansion
// silently continues with the next qualifying month.
func Generate(rruleStr string, dtstart time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, nil
	}

	normalized := recurrence.Normalize(rruleStr)
	rule, err := rrule.StrToRRule(normalized)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", normalized, err)
	}
	rule.DTStart(dtstart.Truncate(time.Second))

	out := make([]time.Time, 0, count)
	next := rule.Iterator()
	for len(out) < count {
		instant, ok := next()
		if !ok {
			break
		}
		out = append(out, instant)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyExpansion, normalized)
	}
	return out, nil
}
