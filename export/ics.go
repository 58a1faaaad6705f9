// Package export renders meeting series as iCalendar documents for
// calendar-subscription collaborators.
package export

import (
	"bytes"
	"fmt"

	"github.com/emersion/go-ical"

	"meetseries/recurrence"
	"meetseries/storage"
)

const productID = "-//meetseries//Recurring Meetings//EN"

// Calendar renders a series as a VCALENDAR: a master VEVENT carrying the
// series' DTSTART and RRULE, plus one VEVENT per materialized occurrence.
// Clients following the subscription form use the master event; clients
// wanting the concrete truth (occurrences are never regenerated after
// materialization) use the per-occurrence events, keyed by their UIDs.
func Calendar(series *storage.Series, occurrences []*storage.Occurrence) (*ical.Calendar, error) {
	if series == nil {
		return nil, fmt.Errorf("export: nil series")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropName, series.Title)

	master := ical.NewComponent(ical.CompEvent)
	master.Props.SetText(ical.PropUID, series.ID.String())
	master.Props.SetText(ical.PropSummary, series.Title)
	master.Props.SetDateTime(ical.PropDateTimeStart, series.RecurrenceDTStart)
	master.Props.SetDateTime(ical.PropDateTimeStamp, series.CreatedAt)
	master.Props.SetText(ical.PropDescription, recurrence.Describe(series.RecurrenceRule, recurrence.DescribeOptions{
		DTStart:  series.RecurrenceDTStart,
		Timezone: series.RecurrenceTimezone,
	}))

	if rule := recurrence.Normalize(series.RecurrenceRule); rule != "" {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rule
		master.Props.Set(prop)
	}
	cal.Children = append(cal.Children, master)

	for _, occ := range occurrences {
		cal.Children = append(cal.Children, occurrenceEvent(series, occ))
	}

	return cal, nil
}

func occurrenceEvent(series *storage.Series, occ *storage.Occurrence) *ical.Component {
	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, occ.ID.String())
	event.Props.SetText(ical.PropSummary, series.Title)
	event.Props.SetDateTime(ical.PropDateTimeStart, occ.ScheduledAt)
	event.Props.SetDateTime(ical.PropDateTimeStamp, occ.CreatedAt)
	if occ.Notes != "" {
		event.Props.SetText(ical.PropDescription, occ.Notes)
	}
	event.Props.SetText(ical.PropStatus, "CONFIRMED")
	return event
}

// Encode serializes a calendar into its iCalendar text form.
func Encode(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}
