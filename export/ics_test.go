package export

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetseries/storage"
)

func testSeries() *storage.Series {
	return &storage.Series{
		ID:                 uuid.New(),
		OwnerID:            uuid.New(),
		Title:              "Design Review",
		RecurrenceRule:     "FREQ=WEEKLY;INTERVAL=1;BYDAY=WE",
		RecurrenceDTStart:  time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC),
		RecurrenceTimezone: "UTC",
		CreatedAt:          time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalendar(t *testing.T) {
	series := testSeries()
	occ := &storage.Occurrence{
		ID:          uuid.New(),
		SeriesID:    series.ID,
		ScheduledAt: series.RecurrenceDTStart,
		Notes:       "kickoff",
		CreatedAt:   series.CreatedAt,
	}

	cal, err := Calendar(series, []*storage.Occurrence{occ})
	require.NoError(t, err)

	// Master event plus one per occurrence.
	require.Len(t, cal.Children, 2)
	master, event := cal.Children[0], cal.Children[1]

	uid, err := master.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, series.ID.String(), uid)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;BYDAY=WE", master.Props.Get(ical.PropRecurrenceRule).Value)

	desc, err := master.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "Weekly on Wed at 10:00 UTC", desc)

	uid, err = event.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, occ.ID.String(), uid)
	notes, err := event.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "kickoff", notes)
}

func TestCalendar_NilSeries(t *testing.T) {
	_, err := Calendar(nil, nil)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	series := testSeries()
	occ := &storage.Occurrence{
		ID:          uuid.New(),
		SeriesID:    series.ID,
		ScheduledAt: series.RecurrenceDTStart,
		CreatedAt:   series.CreatedAt,
	}

	cal, err := Calendar(series, []*storage.Occurrence{occ})
	require.NoError(t, err)

	out, err := Encode(cal)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=WE")
	assert.Contains(t, out, "SUMMARY:Design Review")
	assert.Contains(t, out, "UID:"+series.ID.String())
	assert.Contains(t, out, "UID:"+occ.ID.String())
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "END:VCALENDAR")
}
