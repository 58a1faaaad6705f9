package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetseries/storage"
)

var ctx = context.Background()

func seedOccurrence(t *testing.T, s *Store, seriesID uuid.UUID, at time.Time) *storage.Occurrence {
	t.Helper()
	occ := &storage.Occurrence{
		ID:          uuid.New(),
		SeriesID:    seriesID,
		ScheduledAt: at,
		CreatedAt:   at,
	}
	require.NoError(t, s.CreateOccurrence(ctx, occ))
	return occ
}

func TestStore_SeriesLifecycle(t *testing.T) {
	s := New()
	series := &storage.Series{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		Title:          "Standup",
		RecurrenceRule: "FREQ=DAILY;INTERVAL=1",
	}
	require.NoError(t, s.CreateSeries(ctx, series))

	err := s.CreateSeries(ctx, series)
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.ErrAlreadyExists, serr.Type)

	got, err := s.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)

	// Mutating the returned copy must not leak into the store.
	got.Title = "changed"
	again, err := s.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", again.Title)

	_, err = s.GetSeries(ctx, uuid.New())
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_ListOccurrencesSorted(t *testing.T) {
	s := New()
	seriesID := uuid.New()
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	// Insert out of order.
	third := seedOccurrence(t, s, seriesID, base.AddDate(0, 0, 14))
	first := seedOccurrence(t, s, seriesID, base)
	second := seedOccurrence(t, s, seriesID, base.AddDate(0, 0, 7))
	seedOccurrence(t, s, uuid.New(), base) // other series

	out, err := s.ListOccurrences(ctx, seriesID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, first.ID, out[0].ID)
	assert.Equal(t, second.ID, out[1].ID)
	assert.Equal(t, third.ID, out[2].ID)
}

func TestStore_NextOccurrence(t *testing.T) {
	s := New()
	seriesID := uuid.New()
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	first := seedOccurrence(t, s, seriesID, base)
	second := seedOccurrence(t, s, seriesID, base.AddDate(0, 0, 7))

	next, err := s.NextOccurrence(ctx, seriesID, base.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID)

	// Strictly after: an occurrence at exactly `after` is skipped.
	next, err = s.NextOccurrence(ctx, seriesID, base)
	require.NoError(t, err)
	assert.Equal(t, second.ID, next.ID)

	_, err = s.NextOccurrence(ctx, seriesID, second.ScheduledAt)
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_MarkOccurrenceCompleted(t *testing.T) {
	s := New()
	occ := seedOccurrence(t, s, uuid.New(), time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, s.MarkOccurrenceCompleted(ctx, occ.ID))
	got, err := s.GetOccurrence(ctx, occ.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	err = s.MarkOccurrenceCompleted(ctx, uuid.New())
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_MoveTask(t *testing.T) {
	s := New()
	seriesID := uuid.New()
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	from := seedOccurrence(t, s, seriesID, base)
	to := seedOccurrence(t, s, seriesID, base.AddDate(0, 0, 7))

	task := &storage.Task{
		ID:           uuid.New(),
		SeriesID:     seriesID,
		OccurrenceID: from.ID,
		Title:        "send agenda",
		DueAt:        base,
		CreatedAt:    base,
	}
	require.NoError(t, s.CreateTask(ctx, task))

	newDue := to.ScheduledAt
	require.NoError(t, s.MoveTask(ctx, task.ID, to.ID, &newDue))

	moved, err := s.ListOpenTasks(ctx, to.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.True(t, newDue.Equal(moved[0].DueAt))

	// A nil due time keeps the existing one.
	require.NoError(t, s.MoveTask(ctx, task.ID, from.ID, nil))
	back, err := s.ListOpenTasks(ctx, from.ID)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.True(t, newDue.Equal(back[0].DueAt))

	err = s.MoveTask(ctx, uuid.New(), to.ID, nil)
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_ListOpenTasksExcludesDone(t *testing.T) {
	s := New()
	occ := seedOccurrence(t, s, uuid.New(), time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))

	open := &storage.Task{ID: uuid.New(), OccurrenceID: occ.ID, Title: "open", CreatedAt: occ.CreatedAt}
	done := &storage.Task{ID: uuid.New(), OccurrenceID: occ.ID, Title: "done", Done: true, CreatedAt: occ.CreatedAt}
	require.NoError(t, s.CreateTask(ctx, open))
	require.NoError(t, s.CreateTask(ctx, done))

	out, err := s.ListOpenTasks(ctx, occ.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, open.ID, out[0].ID)
}

func TestStore_MoveAgendaItem(t *testing.T) {
	s := New()
	seriesID := uuid.New()
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	from := seedOccurrence(t, s, seriesID, base)
	to := seedOccurrence(t, s, seriesID, base.AddDate(0, 0, 7))

	item := &storage.AgendaItem{ID: uuid.New(), OccurrenceID: from.ID, Body: "budget", CreatedAt: base}
	require.NoError(t, s.CreateAgendaItem(ctx, item))

	require.NoError(t, s.MoveAgendaItem(ctx, item.ID, to.ID))
	out, err := s.ListOpenAgendaItems(ctx, to.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, item.ID, out[0].ID)

	err = s.MoveAgendaItem(ctx, uuid.New(), to.ID)
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_DueReminders(t *testing.T) {
	s := New()
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	occID := uuid.New()

	past := &storage.Reminder{ID: uuid.New(), OccurrenceID: occID, Channel: storage.ChannelEmail, SendAt: now.Add(-time.Hour)}
	exact := &storage.Reminder{ID: uuid.New(), OccurrenceID: occID, Channel: storage.ChannelEmail, SendAt: now}
	future := &storage.Reminder{ID: uuid.New(), OccurrenceID: occID, Channel: storage.ChannelEmail, SendAt: now.Add(time.Hour)}
	require.NoError(t, s.CreateReminder(ctx, past))
	require.NoError(t, s.CreateReminder(ctx, exact))
	require.NoError(t, s.CreateReminder(ctx, future))

	due, err := s.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, past.ID, due[0].ID)
	assert.Equal(t, exact.ID, due[1].ID)

	require.NoError(t, s.MarkReminderSent(ctx, past.ID, now))
	due, err = s.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, exact.ID, due[0].ID)
}
